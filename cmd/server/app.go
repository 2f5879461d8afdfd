package main

import (
	"fmt"
	"log/slog"

	"database/sql"

	"github.com/traincore/traincore-api/internal/config"
	"github.com/traincore/traincore-api/internal/platform/logger"
	"github.com/traincore/traincore-api/internal/platform/postgres"
	"github.com/traincore/traincore-api/internal/service/auth"
	"github.com/traincore/traincore-api/internal/service/content"
	"github.com/traincore/traincore-api/internal/service/progress"
	"github.com/traincore/traincore-api/internal/service/submission"
	"github.com/traincore/traincore-api/internal/store"
)

// application holds the assembled dependency graph: configuration, the
// database handle, stores, and services. Handlers are created per router
// setup from these.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	materialStore     store.MaterialStore
	relationshipStore store.RelationshipStore
	historyStore      store.HistoryStore
	programStore      store.ProgramStore
	transactor        store.Transactor

	jwtService         auth.JWTService
	contentService     *content.Service
	submissionService  *submission.Service
	progressAggregator *progress.Aggregator
}

// newApplication loads configuration and wires every component of the
// server. It fails fast: a missing secret or unreachable database aborts
// startup rather than limping along.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	slog.Info("Server configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel)

	db, err := setupAppDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	materialStore := postgres.NewPostgresMaterialStore(db, log)
	relationshipStore := postgres.NewPostgresRelationshipStore(db, log)
	historyStore := postgres.NewPostgresHistoryStore(db, log)
	programStore := postgres.NewPostgresProgramStore(db, log)
	transactor := store.NewTransactor(db)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to set up JWT service: %w", err)
	}

	app := &application{
		config: cfg,
		logger: log,
		db:     db,

		materialStore:     materialStore,
		relationshipStore: relationshipStore,
		historyStore:      historyStore,
		programStore:      programStore,
		transactor:        transactor,

		jwtService:         jwtService,
		contentService:     content.NewService(materialStore, relationshipStore, transactor, log),
		submissionService:  submission.NewService(materialStore, historyStore, programStore, transactor, log),
		progressAggregator: progress.NewAggregator(historyStore, programStore, log),
	}
	return app, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Failed to close database connection", "error", err)
		}
	}
}
