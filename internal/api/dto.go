package api

import (
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/workflow"
)

// AuthRequest carries the remote-store credential for login.
type AuthRequest struct {
	Token string `json:"token" validate:"required"`
}

// SessionResponse is the session snapshot (aliased from the domain layer).
type SessionResponse = workflow.Status

// NoteListResponse wraps the note directory.
type NoteListResponse struct {
	Notes []models.NoteID `json:"notes" validate:"required"`
}

// CreateNoteRequest is the request body for creating a note. Content may be
// empty; the starter template is used then.
type CreateNoteRequest struct {
	Name    string `json:"name" example:"Shopping" validate:"required"`
	Content string `json:"content" example:"# Shopping\n\n- milk"`
}

// NoteResponse is returned when a note is created or opened.
type NoteResponse struct {
	ID      models.NoteID `json:"id" example:"Shopping"`
	Content string        `json:"content"`
}

// BufferResponse describes the open editor buffer.
type BufferResponse struct {
	ID      models.NoteID `json:"id"`
	Content string        `json:"content"`
	Dirty   bool          `json:"dirty"`
}

// EditRequest replaces the buffer content with a local edit.
type EditRequest struct {
	Content string `json:"content"`
}

// SaveResponse is returned after a successful save.
type SaveResponse struct {
	ID         models.NoteID `json:"id"`
	VersionTag string        `json:"version_tag"`
}

// PreviewResponse carries the rendered HTML for the buffer.
type PreviewResponse struct {
	HTML string `json:"html"`
}
