package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/sohanasz/viote/internal/noteservice"
)

const maxBodyBytes = 10 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

func projectID(r *http.Request) string { return chi.URLParam(r, "projectID") }
func noteID(r *http.Request) string    { return chi.URLParam(r, "noteID") }

// ListNotes handles GET /api/projects/{projectID}/notes.
//
//	@Summary		List a project's notes, most recently updated first
//	@Tags			notes
//	@Produce		json
//	@Param			projectID	path		string	true	"Project ID"
//	@Param			limit		query		int		false	"Page size"
//	@Param			offset		query		int		false	"Page offset"
//	@Success		200			{object}	NoteListResponse
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{projectID}/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListNotes(r.Context(), projectID(r), limit, offset)
	if err != nil {
		writeServiceError(w, "list notes", err, slog.String("project_id", projectID(r)))
		return
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: items, Total: total})
}

// GetNote handles GET /api/projects/{projectID}/notes/{noteID}.
//
//	@Summary		Get a single note with its blocks
//	@Tags			notes
//	@Produce		json
//	@Param			projectID	path		string	true	"Project ID"
//	@Param			noteID		path		string	true	"Note ID"
//	@Success		200			{object}	NoteDetail
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{projectID}/notes/{noteID} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.GetNote(r.Context(), projectID(r), noteID(r))
	if err != nil {
		writeServiceError(w, "get note", err, slog.String("note_id", noteID(r)))
		return
	}
	w.Header().Set("ETag", `"`+note.Checksum+`"`)
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/projects/{projectID}/notes.
//
//	@Summary		Create a note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			projectID	path		string		true	"Project ID"
//	@Param			body		body		NoteRequest	true	"Note to create"
//	@Success		201			{object}	NoteDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		422			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{projectID}/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeNoteRequest(w, r)
	if !ok {
		return
	}
	note, err := h.svc.CreateNote(r.Context(), projectID(r), req.Title, req.Content)
	if err != nil {
		writeServiceError(w, "create note", err, slog.String("project_id", projectID(r)))
		return
	}
	w.Header().Set("ETag", `"`+note.Checksum+`"`)
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/projects/{projectID}/notes/{noteID}.
//
//	@Summary		Replace a note with optimistic concurrency
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			projectID	path		string		true	"Project ID"
//	@Param			noteID		path		string		true	"Note ID"
//	@Param			If-Match	header		string		false	"Checksum the client last saw"
//	@Param			body		body		NoteRequest	true	"Updated note"
//	@Success		200			{object}	NoteDetail
//	@Failure		400			{object}	errResponse
//	@Failure		404			{object}	errResponse
//	@Failure		409			{object}	errResponse
//	@Failure		422			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{projectID}/notes/{noteID} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeNoteRequest(w, r)
	if !ok {
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	note, err := h.svc.UpdateNote(r.Context(), projectID(r), noteID(r), req.Title, req.Content, ifMatch)
	if err != nil {
		writeServiceError(w, "update note", err, slog.String("note_id", noteID(r)))
		return
	}
	w.Header().Set("ETag", `"`+note.Checksum+`"`)
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/projects/{projectID}/notes/{noteID}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			projectID	path	string	true	"Project ID"
//	@Param			noteID		path	string	true	"Note ID"
//	@Success		204			"Note deleted"
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{projectID}/notes/{noteID} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteNote(r.Context(), projectID(r), noteID(r)); err != nil {
		writeServiceError(w, "delete note", err, slog.String("note_id", noteID(r)))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ImportNote handles POST /api/projects/{projectID}/notes/import.
//
//	@Summary		Create a note from a Markdown document
//	@Tags			notes
//	@Accept			text/markdown
//	@Produce		json
//	@Param			projectID	path		string	true	"Project ID"
//	@Param			title		query		string	false	"Title used when the document has none"
//	@Success		201			{object}	NoteDetail
//	@Failure		404			{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{projectID}/notes/import [post]
func (h *Handler) ImportNote(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("failed to read body"))
		return
	}
	note, err := h.svc.ImportMarkdown(r.Context(), projectID(r), data, r.URL.Query().Get("title"))
	if err != nil {
		writeServiceError(w, "import note", err, slog.String("project_id", projectID(r)))
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// ExportNote handles GET /api/projects/{projectID}/notes/{noteID}/markdown.
//
//	@Summary		Render a note as Markdown
//	@Tags			notes
//	@Produce		text/markdown
//	@Param			projectID	path	string	true	"Project ID"
//	@Param			noteID		path	string	true	"Note ID"
//	@Success		200
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/projects/{projectID}/notes/{noteID}/markdown [get]
func (h *Handler) ExportNote(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.ExportMarkdown(r.Context(), projectID(r), noteID(r))
	if err != nil {
		writeServiceError(w, "export note", err, slog.String("note_id", noteID(r)))
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across notes
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			project	query		string	false	"Limit to one project"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, r.URL.Query().Get("project"), limit)
	if err != nil {
		writeServiceError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

func decodeNoteRequest(w http.ResponseWriter, r *http.Request) (NoteRequest, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	var req NoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return req, false
	}
	return req, true
}
