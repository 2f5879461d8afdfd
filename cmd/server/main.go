// Package main implements the entry point for the traincore API server,
// which manages training materials, their relationship graph, and learner
// submissions and progress.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status) and exit")
	flag.Parse()

	app, err := newApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	if *migrateCmd != "" {
		if err := app.runMigrations(*migrateCmd); err != nil {
			slog.Error("Migration failed", "command", *migrateCmd, "error", err)
			app.cleanup()
			log.Fatalf("Migration failed: %v", err)
		}
		return
	}

	if err := app.startHTTPServer(context.Background(), app.setupRouter()); err != nil {
		slog.Error("Server exited with error", "error", err)
		app.cleanup()
		log.Fatalf("Server exited with error: %v", err)
	}
}
