package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sohanasz/viote/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/projects", func(r chi.Router) {
		r.Get("/", h.ListProjects)
		r.Post("/", h.CreateProject)

		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", h.GetProject)

			r.Get("/notes", h.ListNotes)
			r.Post("/notes", h.CreateNote)
			r.Post("/notes/import", h.ImportNote)
			r.Get("/notes/{noteID}", h.GetNote)
			r.Put("/notes/{noteID}", h.UpdateNote)
			r.Delete("/notes/{noteID}", h.DeleteNote)
			r.Get("/notes/{noteID}/markdown", h.ExportNote)
		})
	})

	r.Get("/search", h.Search)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
