package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fintrackhq/fintrack-sync/internal/models"
)

// SyncStarter triggers sync runs. Implemented by service.Runner.
type SyncStarter interface {
	Start(ctx context.Context, entities []string, fullRefresh bool) (uint, error)
}

// JobReader reads sync job records.
type JobReader interface {
	GetByID(ctx context.Context, jobID uint) (*models.SyncJob, error)
	ListRecent(ctx context.Context, limit int) ([]models.SyncJob, error)
}

// SyncLogReader reads per-entity watermarks.
type SyncLogReader interface {
	List(ctx context.Context) ([]models.SyncLogEntry, error)
}

// SettingsStore reads and writes persisted settings.
type SettingsStore interface {
	Get(ctx context.Context, key, fallback string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Rescheduler applies a new auto-sync interval. Implemented by
// scheduler.Scheduler.
type Rescheduler interface {
	Reschedule(hours int)
}

// TokenStore manages the persisted API token.
type TokenStore interface {
	Save(token string) error
	Configured() bool
}

// TokenValidator checks a candidate token against the live API before it is
// saved.
type TokenValidator func(ctx context.Context, token string) error

// Deps collects everything the HTTP layer needs.
type Deps struct {
	Runner        SyncStarter
	Jobs          JobReader
	SyncLog       SyncLogReader
	Settings      SettingsStore
	Scheduler     Rescheduler
	Tokens        TokenStore
	ValidateToken TokenValidator
	Logger        *zap.Logger
}

// NewRouter builds the gin engine with all routes and middleware mounted.
func NewRouter(deps Deps) *gin.Engine {
	s := &server{deps: deps}

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), RequestLogger(deps.Logger))

	apiGroup := engine.Group("/api")
	{
		syncGroup := apiGroup.Group("/sync")
		syncGroup.POST("/start", s.startSync)
		syncGroup.GET("/status/:id", s.syncStatus)
		syncGroup.GET("/history", s.syncHistory)
		syncGroup.GET("/last-status", s.lastStatus)

		apiGroup.GET("/settings", s.getSettings)
		apiGroup.POST("/settings", s.updateSettings)

		setupGroup := apiGroup.Group("/setup")
		setupGroup.GET("/status", s.setupStatus)
		setupGroup.POST("/token", s.saveToken)
	}

	return engine
}

type server struct {
	deps Deps
}
