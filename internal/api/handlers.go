package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/credential"
	"github.com/starford/raido/internal/markdown"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/workflow"
)

// Handler holds API route handlers.
type Handler struct {
	wf     *workflow.Workflow
	keeper credential.Keeper // optional; persists the credential on login
}

// NewHandler creates a new Handler. keeper may be nil.
func NewHandler(wf *workflow.Workflow, keeper credential.Keeper) *Handler {
	return &Handler{wf: wf, keeper: keeper}
}

// errStatus maps a workflow error onto an HTTP status.
func errStatus(err error) int {
	switch {
	case errors.Is(err, apperr.ErrAuth), errors.Is(err, apperr.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperr.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperr.ErrNoNoteOpen):
		return http.StatusPreconditionFailed
	case errors.Is(err, apperr.ErrTransport), errors.Is(err, apperr.ErrDecode):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errStatus(err), errorBody(err.Error()))
}

// noteID extracts the note identifier from the URL, tolerating encoded
// characters from generated clients.
func noteID(r *http.Request) models.NoteID {
	raw := chi.URLParam(r, "id")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return models.NoteID(raw)
	}
	return models.NoteID(decoded)
}

// Login handles POST /session.
//
//	@Summary		Authenticate against the remote store
//	@Tags			session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		AuthRequest	true	"Credential"
//	@Success		200		{object}	SessionResponse
//	@Failure		401		{object}	errResponse
//	@Router			/session [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Token == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("token is required"))
		return
	}
	identity, err := h.wf.Authenticate(r.Context(), req.Token)
	if err != nil {
		slog.Warn("login failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	if h.keeper != nil {
		if err := h.keeper.Store(req.Token); err != nil {
			slog.Warn("credential not persisted", slog.String("error", err.Error()))
		}
	}
	slog.Info("session started", slog.String("identity", identity))
	writeJSON(w, http.StatusOK, h.wf.Status())
}

// Session handles GET /session.
//
//	@Summary	Current session state
//	@Tags		session
//	@Produce	json
//	@Success	200	{object}	SessionResponse
//	@Router		/session [get]
func (h *Handler) Session(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.wf.Status())
}

// Logout handles DELETE /session.
//
//	@Summary	End the session and discard its state
//	@Tags		session
//	@Success	204
//	@Router		/session [delete]
func (h *Handler) Logout(w http.ResponseWriter, _ *http.Request) {
	h.wf.Logout()
	w.WriteHeader(http.StatusNoContent)
}

// ListNotes handles GET /notes. It re-lists the remote directory on every
// call; there is no cached listing to serve.
//
//	@Summary	List notes from the remote store
//	@Tags		notes
//	@Produce	json
//	@Success	200	{object}	NoteListResponse
//	@Failure	401	{object}	errResponse
//	@Router		/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	ids, err := h.wf.Refresh(r.Context())
	if err != nil {
		slog.Error("list notes failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	if ids == nil {
		ids = []models.NoteID{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: ids})
}

// CreateNote handles POST /notes.
//
//	@Summary	Create a note and open it
//	@Tags		notes
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateNoteRequest	true	"Note to create"
//	@Success	201		{object}	NoteResponse
//	@Failure	409		{object}	errResponse
//	@Router		/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("name is required"))
		return
	}
	id, err := h.wf.CreateNote(r.Context(), req.Name, req.Content)
	if err != nil {
		slog.Error("create note failed", slog.String("name", req.Name), slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	text, _ := h.wf.Text()
	writeJSON(w, http.StatusCreated, NoteResponse{ID: id, Content: text})
}

// OpenNote handles POST /notes/{id}/open. Opening replaces the buffer;
// unsaved edits to a previously open note are discarded.
//
//	@Summary	Open a note into the editor buffer
//	@Tags		notes
//	@Produce	json
//	@Param		id	path		string	true	"Note identifier"
//	@Success	200	{object}	NoteResponse
//	@Failure	404	{object}	errResponse
//	@Router		/notes/{id}/open [post]
func (h *Handler) OpenNote(w http.ResponseWriter, r *http.Request) {
	id := noteID(r)
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("id is required"))
		return
	}
	content, err := h.wf.OpenNote(r.Context(), id)
	if err != nil {
		slog.Error("open note failed", slog.String("id", string(id)), slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, NoteResponse{ID: id, Content: content})
}

// Buffer handles GET /buffer.
//
//	@Summary	Current editor buffer
//	@Tags		buffer
//	@Produce	json
//	@Success	200	{object}	BufferResponse
//	@Failure	412	{object}	errResponse
//	@Router		/buffer [get]
func (h *Handler) Buffer(w http.ResponseWriter, _ *http.Request) {
	text, err := h.wf.Text()
	if err != nil {
		writeError(w, err)
		return
	}
	st := h.wf.Status()
	writeJSON(w, http.StatusOK, BufferResponse{ID: st.Open, Content: text, Dirty: st.Dirty})
}

// Edit handles PUT /buffer.
//
//	@Summary	Replace the buffer content with a local edit
//	@Tags		buffer
//	@Accept		json
//	@Success	204
//	@Failure	412	{object}	errResponse
//	@Router		/buffer [put]
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 10<<20)
	var req EditRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if err := h.wf.SetText(req.Content); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearBuffer handles DELETE /buffer.
//
//	@Summary	Clear the selection, discarding the buffer
//	@Tags		buffer
//	@Success	204
//	@Router		/buffer [delete]
func (h *Handler) ClearBuffer(w http.ResponseWriter, _ *http.Request) {
	h.wf.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// Save handles POST /buffer/save. A 409 means the note changed remotely
// since it was opened; the buffer keeps the unsaved edits.
//
//	@Summary	Save the buffer back to the remote store
//	@Tags		buffer
//	@Produce	json
//	@Success	200	{object}	SaveResponse
//	@Failure	409	{object}	errResponse
//	@Failure	412	{object}	errResponse
//	@Router		/buffer/save [post]
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	file, err := h.wf.SaveNote(r.Context())
	if err != nil {
		slog.Error("save failed", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}
	st := h.wf.Status()
	writeJSON(w, http.StatusOK, SaveResponse{ID: st.Open, VersionTag: file.SHA})
}

// Preview handles GET /preview.
//
//	@Summary	Render the buffer as HTML
//	@Tags		buffer
//	@Produce	json
//	@Success	200	{object}	PreviewResponse
//	@Failure	412	{object}	errResponse
//	@Router		/preview [get]
func (h *Handler) Preview(w http.ResponseWriter, _ *http.Request) {
	text, err := h.wf.Text()
	if err != nil {
		writeError(w, err)
		return
	}
	html, err := markdown.Render(text)
	if err != nil {
		slog.Error("preview failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, PreviewResponse{HTML: html})
}
