package server

import (
	"database/sql"
	"time"

	"mediabank/internal/auth"
	"mediabank/internal/config"
	"mediabank/internal/logger"
	"mediabank/internal/services"
	"mediabank/internal/storage"
)

// App holds all application state and dependencies.
type App struct {
	Config    *config.Config
	Logger    *logger.Logger
	DB        *sql.DB
	FileStore *storage.FileStore
	Guard     *auth.Guard
	Issuer    *auth.TokenIssuer
	StartedAt time.Time

	// Services layer for business logic
	Services *services.Services
}

// NewApp creates a new application instance. The database and file store
// must already be initialized.
func NewApp(cfg *config.Config, log *logger.Logger, db *sql.DB, store *storage.FileStore) *App {
	app := &App{
		Config:    cfg,
		Logger:    log,
		DB:        db,
		FileStore: store,
		Guard:     auth.NewGuard(db, log),
		Issuer:    auth.NewTokenIssuer(cfg.Token.SigningKey, cfg.Token.TTLHours),
		StartedAt: time.Now(),
	}

	app.Services = services.NewServices(app, log)
	return app
}

// AppState implementation for the services layer.

func (a *App) GetDB() *sql.DB                   { return a.DB }
func (a *App) GetFileStore() *storage.FileStore { return a.FileStore }
func (a *App) GetConfig() *config.Config        { return a.Config }
func (a *App) GetLogger() *logger.Logger        { return a.Logger }
func (a *App) GetStartedAt() time.Time          { return a.StartedAt }
