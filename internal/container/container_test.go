package container

import (
	"testing"

	"github.com/stretchr/testify/require"

	"dermacheck/config"
	"dermacheck/internal/api/rest"
	app "dermacheck/internal/application"
	"dermacheck/internal/domain/port"
	"dermacheck/internal/infrastructure/vision"
)

func testConfig(t *testing.T, mutate func(*config.Config)) func() (*config.Config, error) {
	t.Helper()
	return func() (*config.Config, error) {
		cfg, err := config.FromViper(config.NewDefaultViper())
		if err != nil {
			return nil, err
		}
		if mutate != nil {
			mutate(cfg)
		}
		return cfg, nil
	}
}

func TestBuild_DefaultConfig(t *testing.T) {
	c, err := build(testConfig(t, nil))
	require.NoError(t, err)

	err = c.Invoke(func(server *rest.Server, svc *app.AssessmentService, users *app.UserService, intake *app.ImageIntake, analyzer port.LesionAnalyzer, res Resources) {
		require.NotNil(t, server)
		require.Equal(t, 100, intake.MinSide())
		require.NotNil(t, svc)
		require.NotNil(t, users)
		require.IsType(t, &vision.Engine{}, analyzer)
		// хранилище и интерпретатор
		require.Len(t, res.Closers, 2)
		for _, closeFn := range res.Closers {
			require.NoError(t, closeFn())
		}
	})
	require.NoError(t, err)
}

func TestBuild_SQLiteAndOpenCV(t *testing.T) {
	c, err := build(testConfig(t, func(cfg *config.Config) {
		cfg.Storage.Type = "sqlite"
		cfg.Storage.SQLitePath = ":memory:"
		cfg.VisionBackend = "opencv"
	}))
	require.NoError(t, err)

	err = c.Invoke(func(segmenter port.ForegroundSegmenter, repo port.TimelineRepository, res Resources) {
		require.Equal(t, "opencv", segmenter.Name())
		require.NotNil(t, repo)
		for _, closeFn := range res.Closers {
			require.NoError(t, closeFn())
		}
	})
	require.NoError(t, err)
}

func TestBuild_InvalidPolicyPath(t *testing.T) {
	c, err := build(testConfig(t, func(cfg *config.Config) {
		cfg.PolicyPath = "testdata/missing.toml"
	}))
	require.NoError(t, err)

	err = c.Invoke(func(port.LesionAnalyzer) {})
	require.Error(t, err)
}
