package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"dermacheck/config"
	"dermacheck/internal/api/rest"
	"dermacheck/internal/api/telegram"
	app "dermacheck/internal/application"
	"dermacheck/internal/container"
)

const shutdownTimeout = 10 * time.Second

func main() {
	c, err := container.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := c.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

func run(
	cfg *config.Config,
	logger *zap.Logger,
	server *rest.Server,
	users *app.UserService,
	assessments *app.AssessmentService,
	intake *app.ImageIntake,
	res container.Resources,
) error {
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 2)

	var httpServer *http.Server
	if cfg.HTTPAddr != "" {
		httpServer = &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           server.SetupRouter(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		go func() {
			logger.Info("HTTP API listening", zap.String("addr", cfg.HTTPAddr))
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("http server: %w", err)
			}
		}()
	}

	if cfg.TelegramToken != "" {
		bot, err := telegram.NewBot(cfg.TelegramToken, users, assessments, intake, logger.Named("telegram"))
		if err != nil {
			return err
		}
		go func() {
			logger.Info("Bot is running")
			if err := bot.Run(ctx); err != nil {
				errCh <- fmt.Errorf("telegram bot: %w", err)
			}
		}()
	} else {
		logger.Info("TELEGRAM_TOKEN is not set, bot is disabled")
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down...")
	case runErr = <-errCh:
		logger.Error("Component failed", zap.Error(runErr))
	}
	stop()

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Failed to stop HTTP server", zap.Error(err))
		}
		cancel()
	}

	for _, closeFn := range res.Closers {
		if err := closeFn(); err != nil {
			logger.Error("Failed to close resource", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return runErr
}
