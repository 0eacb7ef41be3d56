// Package workflow implements the note synchronization workflow: the
// multi-step operations that keep the session, the note directory, and the
// editor buffer consistent with the remote store.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/models"
	"github.com/starford/raido/internal/remote"
	"github.com/starford/raido/internal/session"
)

// placeholderContent is written once to provision the notes path; the store
// cannot represent an empty directory.
const placeholderContent = "# My Notebook\n\nThis folder contains my notes."

// Status is a snapshot of the workflow state for rendering.
type Status struct {
	State    string          `json:"state"`
	Identity string          `json:"identity,omitempty"`
	NoteOpen bool            `json:"note_open"`
	Open     models.NoteID   `json:"open_note,omitempty"`
	Dirty    bool            `json:"dirty"`
	Notes    []models.NoteID `json:"notes"`
}

// buffer is the single open note's editable content. At most one note is
// open at a time.
type buffer struct {
	id    models.NoteID
	text  string
	dirty bool
	open  bool
}

// Workflow orchestrates the remote store, session, directory, and buffer.
// All operations are serialized behind mu, so no two of them can interleave
// mutations of the buffer.
type Workflow struct {
	mu        sync.Mutex
	store     remote.Store
	sess      *session.Session
	notesPath string

	dir models.Directory
	buf buffer
}

// New creates a workflow over store, scoped to notesPath within the
// repository.
func New(store remote.Store, sess *session.Session, notesPath string) *Workflow {
	return &Workflow{store: store, sess: sess, notesPath: notesPath}
}

// Authenticate validates the credential by fetching the identity profile,
// then loads the note directory. On rejection the session stays
// unauthenticated and no listing is attempted. A listing failure after a
// successful identity check leaves the session authenticated; the caller
// may Refresh.
func (w *Workflow) Authenticate(ctx context.Context, token string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sess.SetToken(token)
	user, err := w.store.CurrentUser(ctx)
	if err != nil {
		w.sess.End()
		return "", err
	}
	w.sess.Begin(user.Login)

	if _, err := w.refreshLocked(ctx); err != nil {
		return user.Login, err
	}
	return user.Login, nil
}

// Logout discards the credential, identity, buffer, and directory. These
// are all session-scoped.
func (w *Workflow) Logout() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.sess.End()
	w.buf = buffer{}
	w.dir = models.Directory{}
}

// Refresh rebuilds the note directory from a full listing.
func (w *Workflow) Refresh(ctx context.Context) ([]models.NoteID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireAuthLocked(); err != nil {
		return nil, err
	}
	return w.refreshLocked(ctx)
}

// OpenNote reads the note and makes it the open buffer. Whatever the buffer
// held before is discarded without prompting, saved or not. On failure the
// previous buffer is left in place.
func (w *Workflow) OpenNote(ctx context.Context, id models.NoteID) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireAuthLocked(); err != nil {
		return "", err
	}
	return w.openLocked(ctx, id)
}

// ClearSelection closes the open note, discarding the buffer.
func (w *Workflow) ClearSelection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.buf = buffer{}
}

// CreateNote writes a new note, re-lists the directory so it stays
// consistent, and opens the new note. An empty content gets the starter
// template. The name must not contain path separators; notes are flat.
func (w *Workflow) CreateNote(ctx context.Context, name, content string) (models.NoteID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireAuthLocked(); err != nil {
		return "", err
	}
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("workflow: invalid note name %q", name)
	}
	if content == "" {
		content = "# " + name + "\n\nStart writing here..."
	}
	id := models.NoteID(name)
	if _, err := w.store.Create(ctx, w.notePath(id), content, "Create "+id.Filename()); err != nil {
		return "", err
	}
	if _, err := w.refreshLocked(ctx); err != nil {
		return "", err
	}
	if _, err := w.openLocked(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}

// SaveNote writes the buffer back to the store. The version tag is
// re-fetched immediately before the write, because the buffer may be stale
// relative to the store; a concurrent remote change therefore surfaces as
// ErrConflict instead of being overwritten. On any failure the buffer is
// left untouched so the edits survive for a retry.
func (w *Workflow) SaveNote(ctx context.Context) (*models.NoteFile, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.requireAuthLocked(); err != nil {
		return nil, err
	}
	if !w.buf.open {
		return nil, fmt.Errorf("workflow: %w", apperr.ErrNoNoteOpen)
	}
	p := w.notePath(w.buf.id)
	current, err := w.store.Read(ctx, p)
	if err != nil {
		return nil, err
	}
	file, err := w.store.Update(ctx, p, w.buf.text, current.SHA, "Update "+w.buf.id.Filename())
	if err != nil {
		return nil, err
	}
	w.buf.dirty = false
	return file, nil
}

// SetText replaces the buffer content with a local edit.
func (w *Workflow) SetText(text string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.buf.open {
		return fmt.Errorf("workflow: %w", apperr.ErrNoNoteOpen)
	}
	w.buf.text = text
	w.buf.dirty = true
	return nil
}

// Text returns the open buffer's content.
func (w *Workflow) Text() (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.buf.open {
		return "", fmt.Errorf("workflow: %w", apperr.ErrNoNoteOpen)
	}
	return w.buf.text, nil
}

// Directory returns the known note identifiers in listing order.
func (w *Workflow) Directory() []models.NoteID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.dir.IDs()
}

// Status returns a snapshot of the workflow state.
func (w *Workflow) Status() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	st := Status{
		State:    w.sess.State().String(),
		Identity: w.sess.Identity(),
		NoteOpen: w.buf.open,
		Dirty:    w.buf.dirty,
		Notes:    w.dir.IDs(),
	}
	if w.buf.open {
		st.Open = w.buf.id
	}
	return st
}

func (w *Workflow) openLocked(ctx context.Context, id models.NoteID) (string, error) {
	file, err := w.store.Read(ctx, w.notePath(id))
	if err != nil {
		return "", err
	}
	w.buf = buffer{id: id, text: file.Content, open: true}
	return file.Content, nil
}

func (w *Workflow) notePath(id models.NoteID) string {
	return w.notesPath + "/" + id.Filename()
}

func (w *Workflow) requireAuthLocked() error {
	if !w.sess.Authenticated() {
		return fmt.Errorf("workflow: %w", apperr.ErrNotAuthenticated)
	}
	return nil
}

// refreshLocked rebuilds the directory from a full listing. A missing notes
// path triggers the one-time bootstrap write before retrying; every other
// failure propagates.
func (w *Workflow) refreshLocked(ctx context.Context) ([]models.NoteID, error) {
	entries, err := w.store.List(ctx, w.notesPath)
	if errors.Is(err, apperr.ErrNotFound) {
		if berr := w.bootstrapLocked(ctx); berr != nil {
			return nil, berr
		}
		entries, err = w.store.List(ctx, w.notesPath)
	}
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type == "file" {
			names = append(names, e.Name)
		}
	}
	w.dir = models.NewDirectory(names)
	return w.dir.IDs(), nil
}

// bootstrapLocked provisions the notes path by writing the placeholder
// marker. A conflict means another session bootstrapped first, which is
// just as good.
func (w *Workflow) bootstrapLocked(ctx context.Context) error {
	_, err := w.store.Create(ctx, w.notesPath+"/README.md", placeholderContent, "Create notes folder")
	if err != nil && !errors.Is(err, apperr.ErrConflict) {
		return err
	}
	return nil
}
