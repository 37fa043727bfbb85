package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/infrastructure/storage"
)

func TestNormalizeLocation(t *testing.T) {
	require.Equal(t, "left_shoulder", NormalizeLocation("  Left   Shoulder "))
	require.Equal(t, "back", NormalizeLocation("back"))
	require.Equal(t, DefaultBodyLocation, NormalizeLocation(""))
	require.Equal(t, "левое_плечо", NormalizeLocation("Левое Плечо"))
	// "й" в разложенной форме совпадает с составной
	require.Equal(t, "шейный", NormalizeLocation("шеи\u0306ный"))
}

func TestChangeFrom(t *testing.T) {
	m := measured(6, 2)

	require.Equal(t, entity.NoHistory(), ChangeFrom(nil, m))

	prev := &entity.TimelineEntry{DiameterMM: 4, MeanColor: m.MeanColor, AreaFraction: 0.05}
	change := ChangeFrom(prev, m)
	require.True(t, change.HasHistory)
	require.InDelta(t, 0.5, change.SizeChange, 1e-9)
	require.Zero(t, change.ColorShift)

	prev.MeanColor = [3]float64{m.MeanColor[0] + 255, m.MeanColor[1] + 255, m.MeanColor[2] + 255}
	require.InDelta(t, 1.0, ChangeFrom(prev, m).ColorShift, 1e-9)
}

func TestChangeFrom_UncalibratedUsesArea(t *testing.T) {
	m := measured(6, 2)
	m.Calibration.Anomaly = true
	m.AreaFraction = 0.04

	prev := &entity.TimelineEntry{DiameterMM: 3, AreaFraction: 0.01}
	require.InDelta(t, 1.0, ChangeFrom(prev, m).SizeChange, 1e-9)
}

func TestChangeFrom_PlaceholderHistoryUsesArea(t *testing.T) {
	m := measured(3, 2)
	prev := &entity.TimelineEntry{DiameterMM: 6, AreaFraction: m.AreaFraction, MeanColor: m.MeanColor, CalibrationAnomaly: true}

	change := ChangeFrom(prev, m)
	require.True(t, change.HasHistory)
	require.Zero(t, change.SizeChange)
	require.Zero(t, change.ColorShift)
}

func TestChangeFrom_PlaceholderWithoutAreaKeepsSize(t *testing.T) {
	m := placeholder(2)
	m.AreaFraction = 0
	prev := &entity.TimelineEntry{DiameterMM: 3, AreaFraction: 0.05, MeanColor: m.MeanColor}

	change := ChangeFrom(prev, m)
	require.True(t, change.HasHistory)
	require.Zero(t, change.SizeChange)
}

func TestCheckAlerts_PlaceholderDiameterRaisesNoSizeAlerts(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	calibrated := &entity.TimelineEntry{DiameterMM: 3, Total: 2, RecordedAt: base}
	guessed := &entity.TimelineEntry{DiameterMM: 6, Total: 2, RecordedAt: base.AddDate(0, 0, 7), CalibrationAnomaly: true}

	require.Empty(t, CheckAlerts(calibrated, guessed))
	require.Empty(t, CheckAlerts(guessed, &entity.TimelineEntry{DiameterMM: 12, Total: 2, RecordedAt: base.AddDate(0, 0, 14)}))

	guessed.Total = 5
	alerts := CheckAlerts(calibrated, guessed)
	require.Len(t, alerts, 1)
	require.Equal(t, entity.AlertScoreIncrease, alerts[0].Type)
}

func TestCheckAlerts(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	prev := &entity.TimelineEntry{DiameterMM: 5, Total: 3, RecordedAt: base}

	t.Run("no change", func(t *testing.T) {
		cur := &entity.TimelineEntry{DiameterMM: 5, Total: 3, RecordedAt: base.AddDate(0, 0, 10)}
		require.Empty(t, CheckAlerts(prev, cur))
	})

	t.Run("slow moderate growth", func(t *testing.T) {
		cur := &entity.TimelineEntry{DiameterMM: 6.25, Total: 4, RecordedAt: base.AddDate(0, 3, 0)}
		alerts := CheckAlerts(prev, cur)
		require.Len(t, alerts, 1)
		require.Equal(t, entity.AlertSizeIncrease, alerts[0].Type)
		require.Equal(t, "medium", alerts[0].Severity)
	})

	t.Run("rapid growth and score jump", func(t *testing.T) {
		cur := &entity.TimelineEntry{DiameterMM: 7, Total: 6, RecordedAt: base.AddDate(0, 0, 14)}
		alerts := CheckAlerts(prev, cur)

		types := make([]entity.AlertType, 0, len(alerts))
		for _, a := range alerts {
			types = append(types, a.Type)
			require.Equal(t, "high", a.Severity)
		}
		require.Equal(t, []entity.AlertType{entity.AlertSizeIncrease, entity.AlertScoreIncrease, entity.AlertRapidGrowth}, types)
		require.Contains(t, alerts[0].Message, "40.0% in 14 days")
	})

	require.Nil(t, CheckAlerts(nil, prev))
}

func TestProgressionTracker_NewLesionID(t *testing.T) {
	repo := storage.NewMemoryTimelineRepository()
	tracker := NewProgressionTracker(repo, nil)
	ctx := context.Background()

	id, err := tracker.NewLesionID(ctx, "Left Shoulder")
	require.NoError(t, err)
	require.Equal(t, "left_shoulder_001", id)

	a := &entity.RiskAssessment{Total: 2, DiameterMM: 4}
	_, err = tracker.Record(ctx, id, "Left Shoulder", a, measured(4, 2))
	require.NoError(t, err)

	id, err = tracker.NewLesionID(ctx, "left shoulder")
	require.NoError(t, err)
	require.Equal(t, "left_shoulder_002", id)
}

func TestProgressionTracker_RecordKeepsCalibrationAnomaly(t *testing.T) {
	repo := storage.NewMemoryTimelineRepository()
	tracker := NewProgressionTracker(repo, nil)
	ctx := context.Background()

	entry, err := tracker.RecordNew(ctx, "Back", &entity.RiskAssessment{Total: 2, DiameterMM: 6}, placeholder(2))
	require.NoError(t, err)
	require.Equal(t, "back_001", entry.LesionID)
	require.True(t, entry.CalibrationAnomaly)

	latest, err := repo.Latest(ctx, "back_001")
	require.NoError(t, err)
	require.True(t, latest.CalibrationAnomaly)
}

func TestProgressionTracker_RecordRejectsRejected(t *testing.T) {
	tracker := NewProgressionTracker(storage.NewMemoryTimelineRepository(), nil)
	rejected := &entity.RiskAssessment{Rejection: &entity.Rejection{Reason: entity.RejectBlankFrame}}

	_, err := tracker.Record(context.Background(), "back_001", "back", rejected, &entity.Measurement{Rejection: rejected.Rejection})
	require.Error(t, err)
}

func TestProgressionTracker_PreviousWithoutHistory(t *testing.T) {
	tracker := NewProgressionTracker(storage.NewMemoryTimelineRepository(), nil)

	prev, err := tracker.Previous(context.Background(), "back_001")
	require.NoError(t, err)
	require.Nil(t, prev)

	_, err = tracker.History(context.Background(), "back_001")
	require.ErrorIs(t, err, storage.ErrLesionNotFound)
}
