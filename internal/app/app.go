package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/polyglothq/adaptive-srs/internal/adapter/postgres"
	itemrepo "github.com/polyglothq/adaptive-srs/internal/adapter/postgres/item"
	learnerrepo "github.com/polyglothq/adaptive-srs/internal/adapter/postgres/learner"
	memoryrepo "github.com/polyglothq/adaptive-srs/internal/adapter/postgres/memory"
	placementrepo "github.com/polyglothq/adaptive-srs/internal/adapter/postgres/placement"
	reviewlogrepo "github.com/polyglothq/adaptive-srs/internal/adapter/postgres/reviewlog"
	"github.com/polyglothq/adaptive-srs/internal/config"
	"github.com/polyglothq/adaptive-srs/internal/service/placement"
	"github.com/polyglothq/adaptive-srs/internal/service/placement/cat"
	"github.com/polyglothq/adaptive-srs/internal/service/stats"
	"github.com/polyglothq/adaptive-srs/internal/service/study"
	"github.com/polyglothq/adaptive-srs/internal/service/study/credit"
	"github.com/polyglothq/adaptive-srs/internal/service/study/fsrs"
	"github.com/polyglothq/adaptive-srs/internal/transport/middleware"
)

// Run is the application entry point. It loads configuration, connects to the
// database, wires repositories and services, and serves HTTP until the
// context is cancelled.
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

	txm := postgres.NewTxManager(pool)

	learners := learnerrepo.New(pool)
	items := itemrepo.New(pool)
	memories := memoryrepo.New(pool)
	reviewlogs := reviewlogrepo.New(pool)
	placements := placementrepo.New(pool)

	studyService, err := study.NewService(
		logger, learners, items, memories, reviewlogs,
		credit.NewDistributor(), txm,
		study.Config{
			BandWidth:        cfg.Study.BandWidth,
			DefaultQueueSize: cfg.Study.DefaultQueueSize,
			MaxQueueSize:     cfg.Study.MaxQueueSize,
		},
		fsrsParamsFromConfig(cfg.SRS),
	)
	if err != nil {
		return fmt.Errorf("create study service: %w", err)
	}

	placementService := placement.NewService(
		logger, learners, items, placements, txm,
		catParamsFromConfig(cfg.Placement),
	)

	statsService := stats.NewService(logger, learners, reviewlogs)

	mux := NewRouter(logger, pool, studyService, placementService, statsService)

	mws := []middleware.Middleware{
		middleware.RequestID,
		middleware.Logger(logger),
		middleware.Recovery(logger),
		middleware.CORS(cfg.CORS),
	}
	var limiter *middleware.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = middleware.NewRateLimiter(cfg.RateLimit.CleanupInterval)
		defer limiter.Stop()
		mws = append(mws, limiter.Limit(cfg.RateLimit.MaxPerMinute))
	}

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      middleware.Chain(mws...)(mux),
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

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	logger.Info("stopped cleanly")
	return nil
}

// fsrsParamsFromConfig overlays configured scheduler settings onto the
// reference defaults.
func fsrsParamsFromConfig(cfg config.SRSConfig) fsrs.Parameters {
	params := fsrs.DefaultParameters()
	if cfg.Weights != nil {
		params.W = *cfg.Weights
	}
	if len(cfg.LearningSteps) > 0 {
		params.LearningSteps = cfg.LearningSteps
	}
	if len(cfg.RelearningSteps) > 0 {
		params.RelearningSteps = cfg.RelearningSteps
	}
	params.GraduatingIntervalGood = cfg.GraduatingIntervalGood
	params.GraduatingIntervalEasy = cfg.GraduatingIntervalEasy
	params.MaximumIntervalDays = cfg.MaxIntervalDays
	params.HardIntervalFactor = cfg.HardIntervalFactor
	return params
}

func catParamsFromConfig(cfg config.PlacementConfig) cat.Parameters {
	params := cat.DefaultParameters()
	params.MinItems = cfg.MinItems
	params.MaxItems = cfg.MaxItems
	params.TargetSE = cfg.TargetSE
	return params
}
