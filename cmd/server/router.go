package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/traincore/traincore-api/internal/api"
	apiMiddleware "github.com/traincore/traincore-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	materialHandler := api.NewMaterialHandler(app.contentService, app.logger)
	relationshipHandler := api.NewRelationshipHandler(app.contentService, app.logger)
	submissionHandler := api.NewSubmissionHandler(app.submissionService, app.historyStore, app.logger)
	progressHandler := api.NewProgressHandler(app.progressAggregator, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)

		// Material authoring and read endpoints
		r.Post("/materials", materialHandler.CreateMaterial)
		r.Get("/materials/{id}", materialHandler.GetMaterial)
		r.Put("/materials/{id}", materialHandler.ReplaceMaterial)
		r.Delete("/materials/{id}", materialHandler.DeleteMaterial)

		// Relationship graph endpoints
		r.Post("/materials/{id}/relationships", relationshipHandler.Link)
		r.Get("/materials/{id}/relationships", relationshipHandler.ListRelated)
		r.Put("/materials/{id}/relationships", relationshipHandler.ReplaceRelated)
		r.Get("/materials/{id}/parents", relationshipHandler.ListParents)
		r.Delete("/relationships/{id}", relationshipHandler.Unlink)

		// Submission endpoints
		r.Post("/materials/{id}/submissions", submissionHandler.Submit)
		r.Get("/materials/{id}/submissions/me", submissionHandler.GetHistory)
		r.Get("/materials/{id}/score", submissionHandler.GetScore)

		// Progress endpoints
		r.Get("/materials/{id}/progress", progressHandler.GetMaterialProgress)
		r.Get("/programs/{id}/progress", progressHandler.GetProgramProgress)
		r.Get("/learning-paths/{id}/progress", progressHandler.GetPathProgress)
	})

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
