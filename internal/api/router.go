package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/starford/gebo/internal/noteservice"
	"github.com/starford/gebo/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, receives change notifications and is mounted at
// GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, events *sse.Broker) chi.Router {
	h := NewHandler(svc, events)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Post("/notes/rename", h.RenameNote)
	r.Get("/notes/*", h.GetNote)
	r.Put("/notes/*", h.UpdateNote)
	r.Delete("/notes/*", h.DeleteNote)

	// Folders.
	r.Post("/folders", h.CreateFolder)

	// Reconciliation.
	r.Post("/sync", h.Sync)

	// Link queries.
	r.Get("/links/backlinks", h.Backlinks)
	r.Get("/links/outgoing", h.OutgoingLinks)

	// Graph.
	r.Get("/graph", h.Graph)
	r.Get("/graph/orphans", h.Orphans)
	r.Get("/graph/broken", h.BrokenLinks)

	// SSE endpoint (protected by same auth middleware).
	if events != nil {
		r.Get("/events", func(w http.ResponseWriter, req *http.Request) {
			events.ServeHTTP(w, req)
		})
	}

	return r
}
