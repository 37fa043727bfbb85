package vision

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/domain/port"
)

// Engine движок оценки ABCDE. Значение неизменяемо после создания,
// методы можно вызывать из нескольких горутин.
type Engine struct {
	policy     Policy
	segmenter  port.ForegroundSegmenter
	calibrator port.Calibrator
	logger     *zap.Logger
}

var _ port.LesionAnalyzer = (*Engine)(nil)

// Option настраивает Engine.
type Option func(*Engine)

// WithSegmenter подменяет реализацию GrabCut.
func WithSegmenter(s port.ForegroundSegmenter) Option {
	return func(e *Engine) { e.segmenter = s }
}

// WithCalibrator подменяет калибровку диаметра.
func WithCalibrator(c port.Calibrator) Option {
	return func(e *Engine) { e.calibrator = c }
}

// WithLogger включает отладочные логи стадий сегментации.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// NewEngine создаёт движок. По умолчанию используются NativeGrabCut и TieredCalibrator.
func NewEngine(p Policy, opts ...Option) (*Engine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		policy: p,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.segmenter == nil {
		e.segmenter = NewNativeGrabCut(p)
	}
	if e.calibrator == nil {
		e.calibrator = NewTieredCalibrator(p)
	}
	return e, nil
}

// Policy возвращает пороги движка.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Measure декодирует снимок, находит очаг и вычисляет признаки.
func (e *Engine) Measure(imageData []byte) *entity.Measurement {
	img, err := decodeImage(imageData)
	if err != nil {
		return &entity.Measurement{Rejection: &entity.Rejection{Reason: entity.RejectDecode, Detail: err.Error()}}
	}
	return e.MeasureImage(img)
}

// MeasureImage то же, что Measure, для уже декодированного изображения.
func (e *Engine) MeasureImage(img image.Image) *entity.Measurement {
	var w *workImage
	if img != nil {
		w = newWorkImage(img, e.policy.WorkMaxSide)
	}
	outcome := e.locate(w)
	if !outcome.Accepted() {
		return &entity.Measurement{Rejection: outcome.Rejection}
	}

	seg := outcome.Result
	features, mean := extractFeatures(w, seg, e.policy)
	cal := e.calibrator.Calibrate(features.DiameterPx, w.origW, w.origH)
	if cal.Anomaly {
		e.logger.Debug("implausible diameter replaced",
			zap.Float64("raw_mm", cal.RawMM),
			zap.Float64("diameter_mm", cal.DiameterMM),
			zap.String("tier", cal.Tier),
		)
	}

	return &entity.Measurement{
		Segmentation: seg,
		Features:     features,
		Calibration:  cal,
		MeanColor:    mean,
		AreaFraction: seg.Mask.Fraction(),
	}
}

// Locate выполняет только поиск очага и возвращает журнал стадий.
func (e *Engine) Locate(img image.Image) Outcome {
	if img == nil {
		return e.locate(nil)
	}
	return e.locate(newWorkImage(img, e.policy.WorkMaxSide))
}

func (e *Engine) locate(w *workImage) Outcome {
	return newLocator(e.policy, e.segmenter, e.logger).locate(w)
}

// Score сводит измерение и сигнал изменения в оценку.
func (e *Engine) Score(m *entity.Measurement, change entity.ChangeSignal) *entity.RiskAssessment {
	if m.Rejected() {
		return aggregate(m, entity.EvolutionResult{}, e.policy)
	}
	return aggregate(m, scoreEvolution(change, e.policy), e.policy)
}

// Assess полный анализ одного снимка.
func (e *Engine) Assess(imageData []byte, change entity.ChangeSignal) *entity.RiskAssessment {
	return e.Score(e.Measure(imageData), change)
}

// String для логов.
func (e *Engine) String() string {
	return fmt.Sprintf("vision.Engine{segmenter=%s work_max_side=%d}", e.segmenter.Name(), e.policy.WorkMaxSide)
}
