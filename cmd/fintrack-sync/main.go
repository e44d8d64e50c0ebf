package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fintrackhq/fintrack-sync/internal/api"
	"github.com/fintrackhq/fintrack-sync/internal/auth"
	"github.com/fintrackhq/fintrack-sync/internal/config"
	"github.com/fintrackhq/fintrack-sync/internal/database"
	"github.com/fintrackhq/fintrack-sync/internal/finapi"
	"github.com/fintrackhq/fintrack-sync/internal/models"
	"github.com/fintrackhq/fintrack-sync/internal/repository"
	"github.com/fintrackhq/fintrack-sync/internal/scheduler"
	"github.com/fintrackhq/fintrack-sync/internal/service"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("application error", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close(db)

	logger.Info("database connected")

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		return err
	}
	logger.Info("migrations applied")

	// Initialize repositories
	jobRepo := repository.NewSyncJobRepository(db)
	syncLogRepo := repository.NewSyncLogRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	accountRepo := repository.NewAccountRepository(db)
	historyRepo := repository.NewAccountHistoryRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	statsRepo := repository.NewEntityStatsRepository(db)

	// Token store, optionally seeded from the environment on first boot
	tokens := auth.NewTokenStore(cfg.TokenPath())
	if seeded, err := tokens.BootstrapFromEnv(); err != nil {
		return err
	} else if seeded {
		logger.Info("api token bootstrapped from environment")
	}

	// The client resolves the token per request, so a token saved through
	// the setup endpoint takes effect without a restart.
	client := finapi.NewClientWithSource(cfg.FinAPIURL, tokens.TokenSource())

	// Setup graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := service.NewRunner(
		ctx,
		client,
		jobRepo,
		accountRepo,
		historyRepo,
		categoryRepo,
		transactionRepo,
		budgetRepo,
		syncLogRepo,
		statsRepo,
		logger,
	)

	// Apply the persisted auto-sync interval at boot
	sched := scheduler.New(ctx, runner, logger)
	defer sched.Stop()

	raw, err := settingRepo.Get(ctx, models.SettingSyncIntervalHours, "0")
	if err != nil {
		return err
	}
	if hours, err := strconv.Atoi(raw); err == nil && hours > 0 {
		sched.Reschedule(hours)
	}

	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(api.Deps{
		Runner:    runner,
		Jobs:      jobRepo,
		SyncLog:   syncLogRepo,
		Settings:  settingRepo,
		Scheduler: sched,
		Tokens:    tokens,
		ValidateToken: func(ctx context.Context, token string) error {
			return finapi.NewClient(cfg.FinAPIURL, token).Validate(ctx)
		},
		Logger: logger,
	})

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: router,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for shutdown signal or server error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeout)*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("http server shutdown incomplete", zap.Error(err))
		}

		logger.Info("application stopped")
		return nil

	case err := <-errChan:
		return err
	}
}
