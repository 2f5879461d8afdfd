package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pressly/goose/v3"
)

// defaultMigrationsDir is where goose looks for SQL migrations unless
// TRAINCORE_MIGRATIONS_DIR overrides it.
const defaultMigrationsDir = "migrations"

// slogGooseLogger adapts goose's logger interface to slog.
type slogGooseLogger struct{}

func (l *slogGooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error(fmt.Sprintf(format, v...), "source", "goose")
	os.Exit(1)
}

func (l *slogGooseLogger) Printf(format string, v ...interface{}) {
	slog.Info(fmt.Sprintf(format, v...), "source", "goose")
}

// runMigrations executes the given goose command (up, down, status) against
// the application's database.
func (app *application) runMigrations(command string) error {
	goose.SetLogger(&slogGooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	dir := os.Getenv("TRAINCORE_MIGRATIONS_DIR")
	if dir == "" {
		dir = defaultMigrationsDir
	}

	app.logger.Info("Running migrations",
		"command", command,
		"dir", dir)

	switch command {
	case "up":
		return goose.Up(app.db, dir)
	case "down":
		return goose.Down(app.db, dir)
	case "status":
		return goose.Status(app.db, dir)
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
}
