package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/examready/backend/internal/adapter/postgres"
	"github.com/examready/backend/internal/adapter/postgres/cramstate"
	"github.com/examready/backend/internal/adapter/postgres/learnerstate"
	"github.com/examready/backend/internal/config"
	"github.com/examready/backend/internal/service/cram"
	"github.com/examready/backend/internal/service/predictor"
	"github.com/examready/backend/internal/service/tracker"
	"github.com/examready/backend/internal/transport/middleware"
	"github.com/examready/backend/internal/transport/rest"
)

// Run is the application entry point. It loads configuration, connects to
// the database, wires the services, and serves HTTP until a shutdown
// signal arrives.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)

	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
	)

	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	learnerStates := learnerstate.New(pool)
	cramStates := cramstate.New(pool)

	trackerSvc := tracker.NewService(logger, learnerStates, cfg.Engine)
	predictorSvc := predictor.NewService(logger, learnerStates, cfg.Predictor, cfg.Engine)
	cramSvc := cram.NewService(logger, cramStates, cfg.Cram)

	limiter := middleware.NewRateLimiter(time.Minute)
	defer limiter.Stop()

	router := rest.NewRouter(rest.RouterDeps{
		Tracker:   rest.NewTrackerHandler(trackerSvc, logger),
		Predictor: rest.NewPredictorHandler(predictorSvc, logger),
		Cram:      rest.NewCramHandler(cramSvc, logger),
		Health:    rest.NewHealthHandler(pool, BuildVersion()),
		Logger:    logger,
		Server:    cfg.Server,
		CORS:      cfg.CORS,
		Limiter:   limiter,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		logger.Info("shutting down", slog.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", slog.String("reason", "context canceled"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
