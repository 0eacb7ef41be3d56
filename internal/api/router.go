package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/credential"
	"github.com/starford/raido/internal/workflow"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced on the local
// surface; keeper, if non-nil, persists the remote credential on login.
func NewRouter(wf *workflow.Workflow, keeper credential.Keeper, authEnabled bool, token string) chi.Router {
	h := NewHandler(wf, keeper)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Session lifecycle.
	r.Post("/session", h.Login)
	r.Get("/session", h.Session)
	r.Delete("/session", h.Logout)

	// Note directory and notes.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Post("/notes/{id}/open", h.OpenNote)

	// Editor buffer.
	r.Get("/buffer", h.Buffer)
	r.Put("/buffer", h.Edit)
	r.Delete("/buffer", h.ClearBuffer)
	r.Post("/buffer/save", h.Save)

	// Markdown preview of the buffer.
	r.Get("/preview", h.Preview)

	return r
}
