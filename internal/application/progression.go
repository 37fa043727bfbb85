package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/domain/port"
	"dermacheck/internal/infrastructure/storage"
)

// Пороги предупреждений о прогрессии.
const (
	sizeAlertPercent      = 20.0
	sizeHighPercent       = 30.0
	scoreAlertIncrease    = 2
	rapidGrowthPercent    = 10.0
	rapidGrowthWindowDays = 30
)

// DefaultBodyLocation подставляется, когда локализация не указана.
const DefaultBodyLocation = "unspecified"

// ProgressionTracker ведёт историю очагов и сравнивает новые снимки с предыдущими.
type ProgressionTracker struct {
	repo   port.TimelineRepository
	now    func() time.Time
	logger *zap.Logger

	// выдача номера и запись нового очага идут под замком локализации
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewProgressionTracker создаёт трекер поверх хранилища истории.
func NewProgressionTracker(repo port.TimelineRepository, logger *zap.Logger) *ProgressionTracker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressionTracker{
		repo:   repo,
		now:    time.Now,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (t *ProgressionTracker) lockLocation(location string) func() {
	t.mu.Lock()
	l, ok := t.locks[location]
	if !ok {
		l = &sync.Mutex{}
		t.locks[location] = l
	}
	t.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Previous возвращает последнюю запись очага или nil, если истории нет.
func (t *ProgressionTracker) Previous(ctx context.Context, lesionID string) (*entity.TimelineEntry, error) {
	if lesionID == "" {
		return nil, nil
	}
	entry, err := t.repo.Latest(ctx, lesionID)
	if errors.Is(err, storage.ErrLesionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest entry of %s: %w", lesionID, err)
	}
	return entry, nil
}

// History возвращает все записи очага в порядке добавления.
func (t *ProgressionTracker) History(ctx context.Context, lesionID string) ([]entity.TimelineEntry, error) {
	return t.repo.List(ctx, lesionID)
}

// ChangeFrom вычисляет сигнал изменения относительно предыдущей записи.
// Если диаметр хотя бы одного снимка не откалиброван, размер сравнивается по корню
// из доли площади; без площади изменение размера считается нулевым.
func ChangeFrom(prev *entity.TimelineEntry, m *entity.Measurement) entity.ChangeSignal {
	if prev == nil || m.Rejected() {
		return entity.NoHistory()
	}

	var size float64
	switch {
	case m.Calibration.Anomaly || prev.CalibrationAnomaly:
		if prev.AreaFraction > 0 && m.AreaFraction > 0 {
			size = math.Sqrt(m.AreaFraction/prev.AreaFraction) - 1
		}
	case prev.DiameterMM > 0:
		size = (m.Calibration.DiameterMM - prev.DiameterMM) / prev.DiameterMM
	}

	var dist float64
	for i := 0; i < 3; i++ {
		d := m.MeanColor[i] - prev.MeanColor[i]
		dist += d * d
	}

	return entity.ChangeSignal{
		HasHistory: true,
		SizeChange: size,
		ColorShift: math.Sqrt(dist) / (255 * math.Sqrt(3)),
	}
}

var lowerCaser = cases.Lower(language.Und)

// NormalizeLocation приводит локализацию к виду left_shoulder.
// Составные символы нормализуются в NFC, чтобы "й" из разных клиентов давал один ключ.
func NormalizeLocation(location string) string {
	location = lowerCaser.String(norm.NFC.String(location))
	location = strings.Join(strings.Fields(location), "_")
	if location == "" {
		return DefaultBodyLocation
	}
	return location
}

// NewLesionID выдаёт идентификатор следующего очага на данной локализации: left_shoulder_003.
// Номер не резервируется; для записи нового очага используйте RecordNew.
func (t *ProgressionTracker) NewLesionID(ctx context.Context, bodyLocation string) (string, error) {
	return t.nextLesionID(ctx, NormalizeLocation(bodyLocation))
}

func (t *ProgressionTracker) nextLesionID(ctx context.Context, location string) (string, error) {
	count, err := t.repo.CountByLocation(ctx, location)
	if err != nil {
		return "", fmt.Errorf("count lesions at %s: %w", location, err)
	}
	return fmt.Sprintf("%s_%03d", location, count+1), nil
}

// RecordNew заводит новый очаг на локализации и сохраняет в него оценку.
// Параллельные вызовы для одной локализации получают разные идентификаторы.
func (t *ProgressionTracker) RecordNew(ctx context.Context, bodyLocation string, a *entity.RiskAssessment, m *entity.Measurement) (*entity.TimelineEntry, error) {
	location := NormalizeLocation(bodyLocation)
	unlock := t.lockLocation(location)
	defer unlock()

	lesionID, err := t.nextLesionID(ctx, location)
	if err != nil {
		return nil, err
	}
	return t.Record(ctx, lesionID, location, a, m)
}

// Record сохраняет принятую оценку в историю очага. Отказы не записываются.
func (t *ProgressionTracker) Record(ctx context.Context, lesionID, bodyLocation string, a *entity.RiskAssessment, m *entity.Measurement) (*entity.TimelineEntry, error) {
	if a.Rejected() || m.Rejected() {
		return nil, errors.New("rejected assessment cannot be recorded")
	}

	recordedAt := a.AssessedAt
	if recordedAt.IsZero() {
		recordedAt = t.now()
	}
	id := a.ID
	if id == "" {
		id = uuid.NewString()
	}

	entry := &entity.TimelineEntry{
		ID:           id,
		LesionID:     lesionID,
		BodyLocation: NormalizeLocation(bodyLocation),
		RecordedAt:   recordedAt,
		Scores:       a.Scores,
		Total:        a.Total,
		RiskLevel:    a.RiskLevel,
		DiameterMM:   a.DiameterMM,
		AreaFraction: m.AreaFraction,
		MeanColor:    m.MeanColor,

		CalibrationAnomaly: m.Calibration.Anomaly,
	}
	if err := t.repo.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append timeline entry: %w", err)
	}

	t.logger.Info("timeline entry recorded",
		zap.String("lesion_id", lesionID),
		zap.String("entry_id", entry.ID),
		zap.Int("total", entry.Total),
	)
	return entry, nil
}

// CheckAlerts сравнивает две записи одного очага.
// Предупреждения о размере не поднимаются, если диаметр любой из записей подставлен по умолчанию.
func CheckAlerts(prev, cur *entity.TimelineEntry) []entity.Alert {
	if prev == nil || cur == nil {
		return nil
	}

	var sizePercent float64
	if prev.DiameterMM > 0 && !prev.CalibrationAnomaly && !cur.CalibrationAnomaly {
		sizePercent = (cur.DiameterMM - prev.DiameterMM) / prev.DiameterMM * 100
	}
	scoreChange := cur.Total - prev.Total
	days := int(cur.RecordedAt.Sub(prev.RecordedAt).Hours() / 24)

	var alerts []entity.Alert
	if sizePercent > sizeAlertPercent {
		severity := "medium"
		if sizePercent > sizeHighPercent {
			severity = "high"
		}
		alerts = append(alerts, entity.Alert{
			Type:     entity.AlertSizeIncrease,
			Severity: severity,
			Message:  fmt.Sprintf("Lesion size increased by %.1f%% in %d days", sizePercent, days),
		})
	}
	if scoreChange >= scoreAlertIncrease {
		alerts = append(alerts, entity.Alert{
			Type:     entity.AlertScoreIncrease,
			Severity: "high",
			Message:  fmt.Sprintf("Risk score increased by %d points", scoreChange),
		})
	}
	if days <= rapidGrowthWindowDays && sizePercent > rapidGrowthPercent {
		alerts = append(alerts, entity.Alert{
			Type:     entity.AlertRapidGrowth,
			Severity: "high",
			Message:  fmt.Sprintf("Rapid growth detected: %.1f%% in %d days", sizePercent, days),
		})
	}
	return alerts
}
