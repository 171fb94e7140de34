// Package services provides the business logic layer for mediabank.
// Services orchestrate operations across the database, file store, and
// config packages. HTTP handlers delegate to services for all business
// logic.
package services

import (
	"database/sql"
	"time"

	"mediabank/internal/config"
	"mediabank/internal/logger"
	"mediabank/internal/storage"
)

// AppState provides access to shared application state.
// This interface decouples services from the concrete App type.
type AppState interface {
	GetDB() *sql.DB
	GetFileStore() *storage.FileStore
	GetConfig() *config.Config
	GetLogger() *logger.Logger
	GetStartedAt() time.Time
}

// Services holds all service instances for the application.
// It acts as a service container that is initialized once at startup.
type Services struct {
	app    AppState
	logger *logger.Logger

	Account *AccountService
	Media   *MediaService
	Event   *EventService
	Stats   *StatsService
	Export  *ExportService
}

// NewServices creates a new service container with all services initialized.
func NewServices(app AppState, log *logger.Logger) *Services {
	return &Services{
		app:     app,
		logger:  log,
		Account: NewAccountService(app, log),
		Media:   NewMediaService(app, log),
		Event:   NewEventService(app, log),
		Stats:   NewStatsService(app, log),
		Export:  NewExportService(app, log),
	}
}
