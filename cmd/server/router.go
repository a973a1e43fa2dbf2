package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/kanban-api/internal/api"
	apiMiddleware "github.com/phrazzld/kanban-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.NewTraceMiddleware(app.logger))

	issueHandler := api.NewIssueHandler(app.boardService, app.logger)
	boardHandler := api.NewBoardHandler(app.hub, app.logger)

	r.Route("/api", func(r chi.Router) {
		// All board mutations require a resolved actor and tenant.
		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.ActorMiddleware)

			r.Post("/issues", issueHandler.CreateIssue)
			r.Post("/issues/{id}/move", issueHandler.MoveIssue)
			r.Delete("/issues/{id}", issueHandler.DeleteIssue)
		})

		// Reads carry no actor requirement.
		r.Get("/issues/{id}", issueHandler.GetIssue)
		r.Get("/projects/{id}/issues", issueHandler.ListProjectIssues)

		// Board change notification stream
		r.Get("/ws/boards/{id}", boardHandler.SubscribeBoard)
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
