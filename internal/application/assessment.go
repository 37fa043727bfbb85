package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/domain/port"
)

// AssessmentRequest входные данные одной проверки.
// Без LesionID и BodyLocation оценка не сохраняется в историю.
type AssessmentRequest struct {
	ImageData    []byte
	LesionID     string
	BodyLocation string
}

// AssessmentOutput содержит оценку, предупреждения и картинку с контуром.
type AssessmentOutput struct {
	Assessment     *entity.RiskAssessment
	Entry          *entity.TimelineEntry
	Alerts         []entity.Alert
	Interpretation *entity.Interpretation
	Highlighted    []byte
}

// AssessmentService проводит снимок через анализ, историю и интерпретацию.
type AssessmentService struct {
	analyzer  port.LesionAnalyzer
	tracker   *ProgressionTracker
	describer port.Describer
	logger    *zap.Logger
	now       func() time.Time
}

// NewAssessmentService создаёт сервис. describer может быть nil.
func NewAssessmentService(analyzer port.LesionAnalyzer, tracker *ProgressionTracker, describer port.Describer, logger *zap.Logger) *AssessmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssessmentService{
		analyzer:  analyzer,
		tracker:   tracker,
		describer: describer,
		logger:    logger,
		now:       time.Now,
	}
}

// Assess анализирует снимок. Отказ анализа не является ошибкой: он возвращается в Assessment.Rejection.
func (s *AssessmentService) Assess(ctx context.Context, req AssessmentRequest) (*AssessmentOutput, error) {
	if s.analyzer == nil {
		return nil, errors.New("analyzer is not configured")
	}

	m := s.analyzer.Measure(req.ImageData)
	if m.Rejected() {
		a := s.analyzer.Score(m, entity.NoHistory())
		a.AssessedAt = s.now()
		s.logger.Info("assessment rejected",
			zap.String("reason", string(a.Rejection.Reason)),
			zap.String("detail", a.Rejection.Detail),
		)
		return &AssessmentOutput{Assessment: a}, nil
	}

	track := s.tracker != nil && (req.LesionID != "" || req.BodyLocation != "")

	var prev *entity.TimelineEntry
	if track {
		var err error
		if prev, err = s.tracker.Previous(ctx, req.LesionID); err != nil {
			return nil, err
		}
	}

	a := s.analyzer.Score(m, ChangeFrom(prev, m))
	a.ID = uuid.NewString()
	a.AssessedAt = s.now()

	out := &AssessmentOutput{Assessment: a}
	if track {
		location := req.BodyLocation
		if prev != nil && location == "" {
			location = prev.BodyLocation
		}
		var entry *entity.TimelineEntry
		var err error
		if req.LesionID == "" {
			entry, err = s.tracker.RecordNew(ctx, location, a, m)
		} else {
			entry, err = s.tracker.Record(ctx, req.LesionID, location, a, m)
		}
		if err != nil {
			return nil, fmt.Errorf("record assessment: %w", err)
		}
		a.LesionID = entry.LesionID
		out.Entry = entry
		out.Alerts = CheckAlerts(prev, entry)
	}

	if s.describer != nil {
		interpretation, err := s.describer.Describe(ctx, a)
		if err != nil {
			s.logger.Warn("interpretation failed", zap.String("assessment_id", a.ID), zap.Error(err))
		} else {
			out.Interpretation = interpretation
		}
	}

	highlighted, err := s.analyzer.HighlightLesion(req.ImageData, m)
	if err != nil {
		s.logger.Warn("failed to highlight lesion", zap.String("assessment_id", a.ID), zap.Error(err))
	} else {
		out.Highlighted = highlighted
	}

	s.logger.Info("assessment completed",
		zap.String("assessment_id", a.ID),
		zap.String("lesion_id", a.LesionID),
		zap.Int("total", a.Total),
		zap.String("risk_level", string(a.RiskLevel)),
		zap.String("method", string(a.SegmentationMethod)),
		zap.Int("alerts", len(out.Alerts)),
	)
	return out, nil
}

// History возвращает историю очага.
func (s *AssessmentService) History(ctx context.Context, lesionID string) ([]entity.TimelineEntry, error) {
	if s.tracker == nil {
		return nil, errors.New("progression tracking is not configured")
	}
	return s.tracker.History(ctx, lesionID)
}
