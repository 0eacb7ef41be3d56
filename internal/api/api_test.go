package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/starford/raido/internal/credential"
	"github.com/starford/raido/internal/remote"
	"github.com/starford/raido/internal/session"
	"github.com/starford/raido/internal/testutil"
	"github.com/starford/raido/internal/workflow"
)

// testEnv wires a fake remote store, a workflow, and the router.
// localToken enables the local Bearer middleware when non-empty.
func testEnv(t *testing.T, localToken string, keeper credential.Keeper) (http.Handler, *testutil.Store) {
	t.Helper()
	store := testutil.NewStore(t)
	sess := session.New()
	client := remote.New(store.URL(), testutil.OwnerRepo, testutil.Branch, sess.Token)
	wf := workflow.New(client, sess, "notes")
	router := NewRouter(wf, keeper, localToken != "", localToken)
	return router, store
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		rd = bytes.NewReader(payload)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, router http.Handler) {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/session", map[string]string{"token": testutil.Token})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body = %s", w.Code, w.Body.String())
	}
}

func TestLoginAndSession(t *testing.T) {
	router, store := testEnv(t, "", nil)
	store.Seed("notes/a.md", "a")

	login(t, router)

	w := doJSON(t, router, http.MethodGet, "/session", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("session status = %d", w.Code)
	}
	var st SessionResponse
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.State != "authenticated" || st.Identity != testutil.Login {
		t.Errorf("session = %+v", st)
	}
	if len(st.Notes) != 1 || st.Notes[0] != "a" {
		t.Errorf("notes = %v", st.Notes)
	}
}

func TestLoginRejected(t *testing.T) {
	router, _ := testEnv(t, "", nil)

	w := doJSON(t, router, http.MethodPost, "/session", map[string]string{"token": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	w = doJSON(t, router, http.MethodGet, "/session", nil)
	var st SessionResponse
	_ = json.Unmarshal(w.Body.Bytes(), &st)
	if st.State != "unauthenticated" {
		t.Errorf("state = %q", st.State)
	}
}

func TestLoginPersistsCredential(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	router, _ := testEnv(t, "", credential.File{Path: path})

	login(t, router)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("token file: %v", err)
	}
	if strings.TrimSpace(string(data)) != testutil.Token {
		t.Errorf("persisted = %q", data)
	}
}

func TestEditingFlow(t *testing.T) {
	router, store := testEnv(t, "", nil)
	store.Seed("notes/todo.md", "# Todo\n\n- first")
	login(t, router)

	// List.
	w := doJSON(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Notes) != 1 || list.Notes[0] != "todo" {
		t.Fatalf("notes = %v", list.Notes)
	}

	// Open.
	w = doJSON(t, router, http.MethodPost, "/notes/todo/open", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("open status = %d, body = %s", w.Code, w.Body.String())
	}
	var note NoteResponse
	_ = json.Unmarshal(w.Body.Bytes(), &note)
	if note.Content != "# Todo\n\n- first" {
		t.Errorf("content = %q", note.Content)
	}

	// Edit.
	w = doJSON(t, router, http.MethodPut, "/buffer", map[string]string{"content": "# Todo\n\n- first\n- second"})
	if w.Code != http.StatusNoContent {
		t.Fatalf("edit status = %d", w.Code)
	}

	// Buffer reflects the edit and is dirty.
	w = doJSON(t, router, http.MethodGet, "/buffer", nil)
	var buf BufferResponse
	_ = json.Unmarshal(w.Body.Bytes(), &buf)
	if !buf.Dirty || !strings.Contains(buf.Content, "- second") {
		t.Errorf("buffer = %+v", buf)
	}

	// Save.
	w = doJSON(t, router, http.MethodPost, "/buffer/save", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", w.Code, w.Body.String())
	}
	var saved SaveResponse
	_ = json.Unmarshal(w.Body.Bytes(), &saved)
	if saved.VersionTag == "" || saved.ID != "todo" {
		t.Errorf("saved = %+v", saved)
	}
	if got, _ := store.Content("notes/todo.md"); !strings.Contains(got, "- second") {
		t.Errorf("remote = %q", got)
	}
}

func TestCreateNote(t *testing.T) {
	router, _ := testEnv(t, "", nil)
	login(t, router)

	w := doJSON(t, router, http.MethodPost, "/notes", map[string]string{"name": "Foo", "content": "bar"})
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var note NoteResponse
	_ = json.Unmarshal(w.Body.Bytes(), &note)
	if note.ID != "Foo" || note.Content != "bar" {
		t.Errorf("note = %+v", note)
	}

	// Duplicate create conflicts.
	w = doJSON(t, router, http.MethodPost, "/notes", map[string]string{"name": "Foo", "content": "bar"})
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate create = %d, want 409", w.Code)
	}
}

func TestListBootstrapsMissingPath(t *testing.T) {
	router, store := testEnv(t, "", nil)
	login(t, router) // login already bootstrapped the notes path

	if _, ok := store.Content("notes/README.md"); !ok {
		t.Fatal("placeholder was not written")
	}
	w := doJSON(t, router, http.MethodGet, "/notes", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("list status = %d", w.Code)
	}
	var list NoteListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Notes) != 1 || list.Notes[0] != "README" {
		t.Errorf("notes = %v", list.Notes)
	}
}

func TestSaveWithoutOpenNote(t *testing.T) {
	router, store := testEnv(t, "", nil)
	store.Seed("notes/a.md", "a")
	login(t, router)

	w := doJSON(t, router, http.MethodPost, "/buffer/save", nil)
	if w.Code != http.StatusPreconditionFailed {
		t.Errorf("status = %d, want 412", w.Code)
	}
}

func TestPreview(t *testing.T) {
	router, store := testEnv(t, "", nil)
	store.Seed("notes/p.md", "# Title\n\nbody")
	login(t, router)

	if w := doJSON(t, router, http.MethodPost, "/notes/p/open", nil); w.Code != http.StatusOK {
		t.Fatalf("open status = %d", w.Code)
	}
	w := doJSON(t, router, http.MethodGet, "/preview", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("preview status = %d", w.Code)
	}
	var p PreviewResponse
	_ = json.Unmarshal(w.Body.Bytes(), &p)
	if !strings.Contains(p.HTML, "<h1>Title</h1>") {
		t.Errorf("html = %q", p.HTML)
	}
}

func TestClearBuffer(t *testing.T) {
	router, store := testEnv(t, "", nil)
	store.Seed("notes/a.md", "a")
	login(t, router)

	if w := doJSON(t, router, http.MethodPost, "/notes/a/open", nil); w.Code != http.StatusOK {
		t.Fatalf("open status = %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodDelete, "/buffer", nil); w.Code != http.StatusNoContent {
		t.Fatalf("clear status = %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/buffer", nil); w.Code != http.StatusPreconditionFailed {
		t.Errorf("buffer status = %d, want 412", w.Code)
	}
}

func TestLogout(t *testing.T) {
	router, store := testEnv(t, "", nil)
	store.Seed("notes/a.md", "a")
	login(t, router)

	if w := doJSON(t, router, http.MethodDelete, "/session", nil); w.Code != http.StatusNoContent {
		t.Fatalf("logout status = %d", w.Code)
	}
	if w := doJSON(t, router, http.MethodGet, "/notes", nil); w.Code != http.StatusUnauthorized {
		t.Errorf("list after logout = %d, want 401", w.Code)
	}
}

func TestLocalAuthMiddleware(t *testing.T) {
	router, _ := testEnv(t, "local-secret", nil)

	// No bearer token.
	w := doJSON(t, router, http.MethodGet, "/session", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	// With bearer token.
	req := httptest.NewRequest(http.MethodGet, "/session", nil)
	req.Header.Set("Authorization", "Bearer local-secret")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
