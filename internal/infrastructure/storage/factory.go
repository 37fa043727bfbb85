package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"dermacheck/config"
	"dermacheck/internal/domain/port"
)

// TimelineFactory создаёт хранилище истории по конфигурации
type TimelineFactory struct {
	cfg    config.StorageConfig
	logger *zap.Logger
}

// NewTimelineFactory создаёт фабрику
func NewTimelineFactory(cfg *config.Config, logger *zap.Logger) *TimelineFactory {
	return &TimelineFactory{cfg: cfg.Storage, logger: logger}
}

// CreateTimelineRepository возвращает хранилище и функцию его закрытия
func (f *TimelineFactory) CreateTimelineRepository() (port.TimelineRepository, func() error, error) {
	noop := func() error { return nil }

	switch f.cfg.Type {
	case "memory", "":
		return NewMemoryTimelineRepository(), noop, nil
	case "sqlite":
		if dir := filepath.Dir(f.cfg.SQLitePath); dir != "." && f.cfg.SQLitePath != ":memory:" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, nil, fmt.Errorf("failed to create SQLite directory: %w", err)
			}
		}
		repo, err := NewSQLTimelineRepository(DialectSQLite, f.cfg.SQLitePath, f.logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	case "mysql":
		repo, err := NewSQLTimelineRepository(DialectMySQL, f.cfg.MySQLDSN, f.logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", f.cfg.Type)
	}
}
