package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"dermacheck/internal/domain/entity"
	"dermacheck/internal/domain/port"
)

// Dialect SQL-диалект хранилища
type Dialect string

const (
	DialectSQLite Dialect = "sqlite3"
	DialectMySQL  Dialect = "mysql"
)

var schemas = map[Dialect][]string{
	DialectSQLite: {
		`CREATE TABLE IF NOT EXISTS lesion_timeline (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL UNIQUE,
			lesion_id TEXT NOT NULL,
			body_location TEXT NOT NULL,
			recorded_at INTEGER NOT NULL,
			asymmetry INTEGER NOT NULL,
			border INTEGER NOT NULL,
			color INTEGER NOT NULL,
			diameter INTEGER NOT NULL,
			evolution INTEGER NOT NULL,
			total INTEGER NOT NULL,
			risk_level TEXT NOT NULL,
			diameter_mm REAL NOT NULL,
			area_fraction REAL NOT NULL,
			mean_r REAL NOT NULL,
			mean_g REAL NOT NULL,
			mean_b REAL NOT NULL,
			calibration_anomaly INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_timeline_lesion ON lesion_timeline(lesion_id)`,
		`CREATE INDEX IF NOT EXISTS idx_timeline_location ON lesion_timeline(body_location)`,
	},
	DialectMySQL: {
		`CREATE TABLE IF NOT EXISTS lesion_timeline (
			seq BIGINT AUTO_INCREMENT PRIMARY KEY,
			id VARCHAR(36) NOT NULL UNIQUE,
			lesion_id VARCHAR(128) NOT NULL,
			body_location VARCHAR(128) NOT NULL,
			recorded_at BIGINT NOT NULL,
			asymmetry TINYINT NOT NULL,
			border TINYINT NOT NULL,
			color TINYINT NOT NULL,
			diameter TINYINT NOT NULL,
			evolution TINYINT NOT NULL,
			total TINYINT NOT NULL,
			risk_level VARCHAR(16) NOT NULL,
			diameter_mm DOUBLE NOT NULL,
			area_fraction DOUBLE NOT NULL,
			mean_r DOUBLE NOT NULL,
			mean_g DOUBLE NOT NULL,
			mean_b DOUBLE NOT NULL,
			calibration_anomaly TINYINT(1) NOT NULL DEFAULT 0,
			INDEX idx_timeline_lesion (lesion_id),
			INDEX idx_timeline_location (body_location)
		)`,
	},
}

const selectColumns = `id, lesion_id, body_location, recorded_at, asymmetry, border, color, diameter, evolution,
	total, risk_level, diameter_mm, area_fraction, mean_r, mean_g, mean_b, calibration_anomaly`

// SQLTimelineRepository история очагов в SQLite или MySQL.
// Время записи хранится в наносекундах Unix, одинаково для обоих диалектов.
type SQLTimelineRepository struct {
	db      *sql.DB
	dialect Dialect
	logger  *zap.Logger
}

// NewSQLTimelineRepository открывает базу и создаёт схему
func NewSQLTimelineRepository(dialect Dialect, dsn string, logger *zap.Logger) (*SQLTimelineRepository, error) {
	stmts, ok := schemas[dialect]
	if !ok {
		return nil, fmt.Errorf("unsupported SQL dialect: %s", dialect)
	}

	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// одна база на соединение, для ":memory:" это обязательно
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}

	return &SQLTimelineRepository{db: db, dialect: dialect, logger: logger}, nil
}

// Append добавляет запись
func (r *SQLTimelineRepository) Append(ctx context.Context, e *entity.TimelineEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO lesion_timeline (`+selectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.LesionID, e.BodyLocation, e.RecordedAt.UnixNano(),
		e.Scores.Asymmetry, e.Scores.Border, e.Scores.Color, e.Scores.Diameter, e.Scores.Evolution,
		e.Total, string(e.RiskLevel), e.DiameterMM, e.AreaFraction,
		e.MeanColor[0], e.MeanColor[1], e.MeanColor[2], e.CalibrationAnomaly,
	)
	if err != nil {
		return fmt.Errorf("failed to insert timeline entry: %w", err)
	}
	return nil
}

// Latest возвращает последнюю запись очага
func (r *SQLTimelineRepository) Latest(ctx context.Context, lesionID string) (*entity.TimelineEntry, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+selectColumns+`
		FROM lesion_timeline
		WHERE lesion_id = ?
		ORDER BY recorded_at DESC, seq DESC
		LIMIT 1
	`, lesionID)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrLesionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest entry: %w", err)
	}
	return e, nil
}

// List возвращает историю очага по времени записи
func (r *SQLTimelineRepository) List(ctx context.Context, lesionID string) ([]entity.TimelineEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+selectColumns+`
		FROM lesion_timeline
		WHERE lesion_id = ?
		ORDER BY recorded_at ASC, seq ASC
	`, lesionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline: %w", err)
	}
	defer rows.Close()

	var out []entity.TimelineEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timeline entry: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read timeline: %w", err)
	}
	if len(out) == 0 {
		return nil, ErrLesionNotFound
	}
	return out, nil
}

// CountByLocation число разных очагов с данной локализацией
func (r *SQLTimelineRepository) CountByLocation(ctx context.Context, bodyLocation string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT lesion_id) FROM lesion_timeline WHERE body_location = ?
	`, bodyLocation).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count lesions: %w", err)
	}
	return n, nil
}

// Close закрывает соединение с базой
func (r *SQLTimelineRepository) Close() error {
	if err := r.db.Close(); err != nil {
		r.logger.Error("Failed to close timeline database", zap.String("dialect", string(r.dialect)), zap.Error(err))
		return err
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(s rowScanner) (*entity.TimelineEntry, error) {
	var e entity.TimelineEntry
	var recordedAt int64
	var risk string
	err := s.Scan(
		&e.ID, &e.LesionID, &e.BodyLocation, &recordedAt,
		&e.Scores.Asymmetry, &e.Scores.Border, &e.Scores.Color, &e.Scores.Diameter, &e.Scores.Evolution,
		&e.Total, &risk, &e.DiameterMM, &e.AreaFraction,
		&e.MeanColor[0], &e.MeanColor[1], &e.MeanColor[2], &e.CalibrationAnomaly,
	)
	if err != nil {
		return nil, err
	}
	e.RecordedAt = time.Unix(0, recordedAt).UTC()
	e.RiskLevel = entity.RiskLevel(risk)
	return &e, nil
}

var _ port.TimelineRepository = (*SQLTimelineRepository)(nil)
