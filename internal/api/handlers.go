package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/starford/gebo/internal/apperr"
	"github.com/starford/gebo/internal/models"
	"github.com/starford/gebo/internal/noteservice"
	"github.com/starford/gebo/internal/sse"
)

// Handler holds API route handlers. events may be nil when SSE is disabled.
type Handler struct {
	svc    *noteservice.Service
	events *sse.Broker
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service, events *sse.Broker) *Handler {
	return &Handler{svc: svc, events: events}
}

func (h *Handler) notify(kind, path string) {
	if h.events != nil {
		h.events.PublishNoteEvent(kind, path)
	}
}

// notePath extracts the note path from the URL (everything after /notes/).
// Supports encoded slashes from generated clients (e.g. topics%2Fnote.md).
func notePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// writeServiceError maps service-layer errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, op, path string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusConflict, errorBody("already exists"))
	case errors.Is(err, apperr.ErrConflict):
		writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
	case errors.Is(err, apperr.ErrNotReady):
		writeJSON(w, http.StatusServiceUnavailable, errorBody("store not ready"))
	default:
		slog.Error(op+" failed", slog.String("path", path), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListNotes handles GET /notes.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.ListNotes(r.Context())
	if err != nil {
		writeServiceError(w, "list notes", "", err)
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// GetNote handles GET /notes/*.
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.svc.GetNote(r.Context(), path)
	if err != nil {
		writeServiceError(w, "get note", path, err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /notes.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	note, err := h.svc.CreateNote(r.Context(), req.Path, []byte(req.Content))
	if err != nil {
		writeServiceError(w, "create note", req.Path, err)
		return
	}
	h.notify("created", note.Path)
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /notes/*. The If-Match header carries the checksum
// for optimistic concurrency.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	var req UpdateNoteRequest
	if err := json.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	note, err := h.svc.UpdateNote(r.Context(), path, []byte(req.Content), ifMatch)
	if err != nil {
		writeServiceError(w, "update note", path, err)
		return
	}
	h.notify("updated", path)
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /notes/*. Notes are soft-deleted into the vault
// trash directory.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	path := notePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.TrashNote(r.Context(), path); err != nil {
		writeServiceError(w, "delete note", path, err)
		return
	}
	h.notify("deleted", path)
	w.WriteHeader(http.StatusNoContent)
}

// CreateFolder handles POST /folders.
func (h *Handler) CreateFolder(w http.ResponseWriter, r *http.Request) {
	var req CreateFolderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	if err := h.svc.CreateFolder(r.Context(), req.Path); err != nil {
		writeServiceError(w, "create folder", req.Path, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

// RenameNote handles POST /notes/rename.
func (h *Handler) RenameNote(w http.ResponseWriter, r *http.Request) {
	var req RenameNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Path == "" || req.NewName == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path and new_name are required"))
		return
	}
	newPath, err := h.svc.RenameNote(r.Context(), req.Path, req.NewName)
	if err != nil {
		writeServiceError(w, "rename note", req.Path, err)
		return
	}
	h.notify("renamed", newPath)
	writeJSON(w, http.StatusOK, RenameNoteResponse{Path: newPath})
}

// Sync handles POST /sync: a full vault reconciliation.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	res := h.svc.Sync(r.Context())
	if h.events != nil {
		h.events.PublishSync(res)
	}
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}

// Backlinks handles GET /links/backlinks?path=.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	h.linksQuery(w, r, h.svc.Backlinks)
}

// OutgoingLinks handles GET /links/outgoing?path=.
func (h *Handler) OutgoingLinks(w http.ResponseWriter, r *http.Request) {
	h.linksQuery(w, r, h.svc.OutgoingLinks)
}

func (h *Handler) linksQuery(w http.ResponseWriter, r *http.Request, query func(context.Context, string) ([]string, error)) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'path' is required"))
		return
	}
	links, err := query(r.Context(), path)
	if err != nil {
		writeServiceError(w, "links query", path, err)
		return
	}
	if links == nil {
		links = []string{}
	}
	writeJSON(w, http.StatusOK, LinksResponse{Path: path, Links: links})
}

// Graph handles GET /graph.
func (h *Handler) Graph(w http.ResponseWriter, r *http.Request) {
	nodes, links, err := h.svc.Graph(r.Context())
	if err != nil {
		writeServiceError(w, "graph", "", err)
		return
	}
	if links == nil {
		links = []models.Edge{}
	}
	writeJSON(w, http.StatusOK, GraphResponse{Nodes: nodes, Links: links})
}

// Orphans handles GET /graph/orphans.
func (h *Handler) Orphans(w http.ResponseWriter, r *http.Request) {
	orphans, err := h.svc.Orphans(r.Context())
	if err != nil {
		writeServiceError(w, "orphans", "", err)
		return
	}
	if orphans == nil {
		orphans = []string{}
	}
	writeJSON(w, http.StatusOK, OrphansResponse{Orphans: orphans})
}

// BrokenLinks handles GET /graph/broken.
func (h *Handler) BrokenLinks(w http.ResponseWriter, r *http.Request) {
	broken, err := h.svc.BrokenLinks(r.Context())
	if err != nil {
		writeServiceError(w, "broken links", "", err)
		return
	}
	if broken == nil {
		broken = []models.Edge{}
	}
	writeJSON(w, http.StatusOK, BrokenLinksResponse{Broken: broken})
}
