package vision

import (
	"fmt"
	"image"
	"math"

	"go.uber.org/zap"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/domain/port"
)

// StageAttempt результат одной стадии поиска очага.
type StageAttempt struct {
	Method       entity.Method
	Accepted     bool
	Reason       string
	AreaFraction float64
}

// Outcome итог поиска: либо принятая сегментация, либо отказ. Attempts хранит все пройденные стадии.
type Outcome struct {
	Result    *entity.SegmentationResult
	Attempts  []StageAttempt
	Rejection *entity.Rejection
}

// Accepted сообщает, что очаг найден.
func (o Outcome) Accepted() bool {
	return o.Result != nil && o.Rejection == nil
}

// locator цепочка стадий: grabcut → адаптивный порог → круг в центре.
// Первая стадия, прошедшая проверку, завершает поиск.
type locator struct {
	policy    Policy
	segmenter port.ForegroundSegmenter
	validator contourValidator
	logger    *zap.Logger
}

func newLocator(p Policy, segmenter port.ForegroundSegmenter, logger *zap.Logger) *locator {
	return &locator{
		policy:    p,
		segmenter: segmenter,
		validator: contourValidator{policy: p},
		logger:    logger,
	}
}

func (l *locator) locate(w *workImage) Outcome {
	if w == nil || w.width() == 0 || w.height() == 0 {
		return rejectOutcome(nil, entity.RejectEmptyImage, "image has zero size")
	}
	if c := contrastRange(w); c < l.policy.BlankContrastMin {
		if ch := chromaRange(w); ch < l.policy.BlankChromaMin {
			return rejectOutcome(nil, entity.RejectBlankFrame,
				fmt.Sprintf("luminance range %.1f below %.1f, chroma range %.1f below %.1f",
					c, l.policy.BlankContrastMin, ch, l.policy.BlankChromaMin))
		}
	}

	var attempts []StageAttempt
	stages := []struct {
		method entity.Method
		run    func(*workImage) (*entity.Mask, error)
		shape  bool
	}{
		{entity.MethodGrabCut, l.grabCut, true},
		{entity.MethodAdaptiveThreshold, l.adaptive, true},
		{entity.MethodCenterFallback, l.circle, false},
	}

	for _, stage := range stages {
		mask, err := stage.run(w)
		attempt := StageAttempt{Method: stage.method}
		if err == nil {
			attempt.AreaFraction = mask.Fraction()
			var contour entity.Contour
			contour, err = l.validator.validate(mask, stage.shape)
			if err == nil {
				attempt.Accepted = true
				attempts = append(attempts, attempt)
				return Outcome{
					Result: &entity.SegmentationResult{
						Mask:       mask,
						Contour:    contour,
						Method:     stage.method,
						Confidence: entity.ConfidenceFor(stage.method),
						Scale:      w.scale,
					},
					Attempts: attempts,
				}
			}
		}
		attempt.Reason = err.Error()
		attempts = append(attempts, attempt)
		l.logger.Debug("segmentation stage rejected",
			zap.String("method", string(stage.method)),
			zap.Float64("area_fraction", attempt.AreaFraction),
			zap.Error(err),
		)
	}

	return rejectOutcome(attempts, entity.RejectNoValidContour, "no segmentation stage produced a valid contour")
}

func (l *locator) grabCut(w *workImage) (*entity.Mask, error) {
	if l.segmenter == nil {
		return nil, fmt.Errorf("no foreground segmenter configured")
	}
	raw, err := l.segmenter.Segment(w.rgb, centerWindow(w.width(), w.height(), l.policy.CenterWindow))
	if err != nil {
		return nil, fmt.Errorf("%s grabcut: %w", l.segmenter.Name(), err)
	}
	if raw == nil || raw.Width != w.width() || raw.Height != w.height() {
		return nil, fmt.Errorf("%s grabcut: mask size mismatch", l.segmenter.Name())
	}
	return fillHoles(largestRegion(raw)), nil
}

func (l *locator) adaptive(w *workImage) (*entity.Mask, error) {
	binary := closeOpen(adaptiveMask(w, l.policy.AdaptiveBlock, l.policy.AdaptiveOffset))
	labels, regions := labelRegions(binary)
	ranked := rankCandidates(regions, w.width(), w.height(), l.validator.minArea(w.width(), w.height()))
	if len(ranked) == 0 {
		return nil, ErrEmptyCandidate
	}
	return fillHoles(regionMask(labels, ranked[0].label, w.width(), w.height())), nil
}

func (l *locator) circle(w *workImage) (*entity.Mask, error) {
	return centerDisk(w.width(), w.height(), l.policy.CircleRadius), nil
}

// centerWindow центральный прямоугольник, занимающий fraction каждой стороны.
func centerWindow(width, height int, fraction float64) image.Rectangle {
	ww := maxInt(1, int(math.Round(float64(width)*fraction)))
	wh := maxInt(1, int(math.Round(float64(height)*fraction)))
	x0 := (width - ww) / 2
	y0 := (height - wh) / 2
	return image.Rect(x0, y0, x0+ww, y0+wh)
}

func rejectOutcome(attempts []StageAttempt, reason entity.RejectionReason, detail string) Outcome {
	return Outcome{
		Attempts:  attempts,
		Rejection: &entity.Rejection{Reason: reason, Detail: detail},
	}
}
