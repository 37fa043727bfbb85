package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/infrastructure/storage"
)

// fakeAnalyzer возвращает заранее заданные измерения по очереди.
type fakeAnalyzer struct {
	mu           sync.Mutex
	measurements []*entity.Measurement
	calls        int
	changes      []entity.ChangeSignal
	highlightErr error
}

func (f *fakeAnalyzer) Measure(imageData []byte) *entity.Measurement {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.measurements[f.calls%len(f.measurements)]
	f.calls++
	return m
}

func (f *fakeAnalyzer) Score(m *entity.Measurement, change entity.ChangeSignal) *entity.RiskAssessment {
	f.mu.Lock()
	f.changes = append(f.changes, change)
	f.mu.Unlock()
	if m.Rejected() {
		return &entity.RiskAssessment{Rejection: m.Rejection}
	}
	scores := entity.Scores{
		Asymmetry: m.Features.Asymmetry,
		Border:    m.Features.Border,
		Color:     m.Features.Color,
		Diameter:  m.Calibration.Score,
	}
	level := entity.RiskLow
	if scores.Total() >= 4 {
		level = entity.RiskMedium
	}
	return &entity.RiskAssessment{
		Scores:              scores,
		Total:               scores.Total(),
		RiskLevel:           level,
		DiameterMM:          m.Calibration.DiameterMM,
		InsufficientHistory: !change.HasHistory,
	}
}

func (f *fakeAnalyzer) HighlightLesion(imageData []byte, m *entity.Measurement) ([]byte, error) {
	if f.highlightErr != nil {
		return nil, f.highlightErr
	}
	return []byte("highlighted"), nil
}

func measured(diameterMM float64, total int) *entity.Measurement {
	return &entity.Measurement{
		Segmentation: &entity.SegmentationResult{Method: entity.MethodGrabCut, Confidence: entity.ConfidenceHigh},
		Features:     entity.LesionFeatures{Asymmetry: total / 2, Border: total - total/2},
		Calibration:  entity.Calibration{DiameterMM: diameterMM},
		MeanColor:    [3]float64{120, 80, 60},
		AreaFraction: 0.05,
	}
}

// placeholder измерение, в котором калибратор подставил диаметр по умолчанию.
func placeholder(total int) *entity.Measurement {
	m := measured(6, total)
	m.Calibration.Anomaly = true
	return m
}

// slowCountRepo замедляет подсчёт очагов, чтобы параллельные запросы пересеклись.
type slowCountRepo struct {
	*storage.MemoryTimelineRepository
	delay time.Duration
}

func (r *slowCountRepo) CountByLocation(ctx context.Context, bodyLocation string) (int, error) {
	n, err := r.MemoryTimelineRepository.CountByLocation(ctx, bodyLocation)
	time.Sleep(r.delay)
	return n, err
}

type fakeDescriber struct {
	err   error
	calls int
}

func (f *fakeDescriber) Describe(ctx context.Context, a *entity.RiskAssessment) (*entity.Interpretation, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &entity.Interpretation{Text: "explanation", Provider: "fake"}, nil
}

var errUnavailable = errors.New("provider unavailable")
