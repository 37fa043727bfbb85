package container

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"dermacheck/config"
	"dermacheck/internal/api/rest"
	app "dermacheck/internal/application"
	"dermacheck/internal/domain/port"
	"dermacheck/internal/infrastructure/describer"
	"dermacheck/internal/infrastructure/storage"
	"dermacheck/internal/infrastructure/vision"
	"dermacheck/internal/logging"
)

type timelineResult struct {
	dig.Out

	Repo   port.TimelineRepository
	Closer func() error `group:"closers"`
}

type describerResult struct {
	dig.Out

	Describer port.Describer
	Closer    func() error `group:"closers"`
}

// Resources всё, что нужно закрыть при остановке приложения.
type Resources struct {
	dig.In

	Closers []func() error `group:"closers"`
}

// BuildContainer регистрирует зависимости приложения
func BuildContainer() (*dig.Container, error) {
	return build(config.Load)
}

func build(loadConfig func() (*config.Config, error)) (*dig.Container, error) {
	c := dig.New()

	providers := []any{
		loadConfig,
		logging.InitLogger,
		newPolicy,
		newSegmenter,
		newAnalyzer,
		storage.NewTimelineFactory,
		newTimelineRepository,
		describer.NewFactory,
		newDescriber,
		func() port.UserRepository { return storage.NewMemoryUserRepository() },
		app.NewUserService,
		app.NewProgressionTracker,
		app.NewAssessmentService,
		newIntake,
		rest.NewServer,
	}
	for _, p := range providers {
		if err := c.Provide(p); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func newPolicy(cfg *config.Config) (vision.Policy, error) {
	return config.LoadPolicy(cfg.PolicyPath)
}

func newIntake(cfg *config.Config) *app.ImageIntake {
	return app.NewImageIntake(cfg.Intake.MinImageSide, cfg.Intake.MaxImageBytes)
}

func newSegmenter(cfg *config.Config, policy vision.Policy, logger *zap.Logger) port.ForegroundSegmenter {
	if cfg.VisionBackend == "opencv" {
		if !vision.OpenCVAvailable {
			logger.Warn("opencv backend requested but binary is built without the gocv tag, grabcut stage will be skipped")
		}
		return vision.NewOpenCVGrabCut(policy)
	}
	return vision.NewNativeGrabCut(policy)
}

func newAnalyzer(policy vision.Policy, segmenter port.ForegroundSegmenter, logger *zap.Logger) (port.LesionAnalyzer, error) {
	engine, err := vision.NewEngine(policy,
		vision.WithSegmenter(segmenter),
		vision.WithLogger(logger.Named("vision")),
	)
	if err != nil {
		return nil, err
	}
	logger.Info("vision engine ready", zap.Stringer("engine", engine))
	return engine, nil
}

func newTimelineRepository(f *storage.TimelineFactory) (timelineResult, error) {
	repo, closeFn, err := f.CreateTimelineRepository()
	if err != nil {
		return timelineResult{}, err
	}
	return timelineResult{Repo: repo, Closer: closeFn}, nil
}

func newDescriber(f *describer.Factory) (describerResult, error) {
	d, closeFn, err := f.CreateDescriber()
	if err != nil {
		return describerResult{}, err
	}
	return describerResult{Describer: d, Closer: closeFn}, nil
}
