// Package testutil provides a shared in-memory double of the remote
// contents API for tests. It mimics the store's semantics: bearer-token
// checks, directory listings, base64 content, and SHA-conditional writes.
package testutil

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Default fixture values accepted by the fake store.
const (
	Token     = "test-token"
	Login     = "octocat"
	OwnerRepo = "octocat/notebook"
	Branch    = "main"
)

// Store is an in-memory contents-API server. Fields under mu model the
// remote repository; the exported counters let tests assert which remote
// operations a workflow step issued.
type Store struct {
	mu    sync.Mutex
	files map[string]string // path -> text content
	shas  map[string]string // path -> current version tag
	revs  map[string]int    // path -> write count, feeds the tag

	srv *httptest.Server

	ListCalls int
	ReadCalls int
	PutCalls  int
	UserCalls int
}

// NewStore starts a fake store that is torn down with the test.
func NewStore(t *testing.T) *Store {
	t.Helper()
	s := &Store{
		files: make(map[string]string),
		shas:  make(map[string]string),
		revs:  make(map[string]int),
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

// URL returns the base URL clients should be pointed at.
func (s *Store) URL() string { return s.srv.URL }

// Seed writes a file directly on the remote side, bypassing the API. Used
// to set up fixtures and to simulate a concurrent writer: the version tag
// changes on every call.
func (s *Store) Seed(p, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.write(p, content)
}

// Content returns the remote-side content of a file.
func (s *Store) Content(p string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.files[p]
	return c, ok
}

// SHA returns the current version tag of a file, or "".
func (s *Store) SHA(p string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shas[p]
}

// write must be called with mu held.
func (s *Store) write(p, content string) string {
	s.revs[p]++
	sum := sha256.Sum256([]byte(p + "#" + strconv.Itoa(s.revs[p])))
	sha := hex.EncodeToString(sum[:])
	s.files[p] = content
	s.shas[p] = sha
	return sha
}

func (s *Store) handle(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "token "+Token {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
		return
	}
	if r.URL.Path == "/user" {
		s.mu.Lock()
		s.UserCalls++
		s.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]string{"login": Login})
		return
	}
	prefix := "/repos/" + OwnerRepo + "/contents/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	p := strings.TrimPrefix(r.URL.Path, prefix)

	switch r.Method {
	case http.MethodGet:
		s.get(w, p)
	case http.MethodPut:
		s.put(w, r, p)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"message": "nope"})
	}
}

func (s *Store) get(w http.ResponseWriter, p string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if content, ok := s.files[p]; ok {
		s.ReadCalls++
		writeJSON(w, http.StatusOK, fileJSON(p, content, s.shas[p]))
		return
	}

	// Directory listing: direct children of p, like git, a directory only
	// exists while it has files under it.
	children := map[string]string{} // name -> type
	for fp := range s.files {
		rest, ok := strings.CutPrefix(fp, p+"/")
		if !ok {
			continue
		}
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			children[rest[:i]] = "dir"
		} else {
			children[rest] = "file"
		}
	}
	if len(children) == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	s.ListCalls++
	names := make([]string, 0, len(children))
	for name := range children {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]map[string]string, 0, len(names))
	for _, name := range names {
		fp := p + "/" + name
		entries = append(entries, map[string]string{
			"name": name,
			"path": fp,
			"sha":  s.shas[fp],
			"type": children[name],
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Store) put(w http.ResponseWriter, r *http.Request, p string) {
	var body struct {
		Message string `json:"message"`
		Content string `json:"content"`
		Branch  string `json:"branch"`
		SHA     string `json:"sha"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "bad body"})
		return
	}
	raw, err := base64.StdEncoding.DecodeString(body.Content)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "content is not base64"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.PutCalls++

	_, exists := s.files[p]
	switch {
	case exists && body.SHA == "":
		// Create against an existing path.
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": `"sha" wasn't supplied`})
		return
	case exists && body.SHA != s.shas[p]:
		writeJSON(w, http.StatusConflict, map[string]string{"message": "is at " + s.shas[p] + " but expected " + body.SHA})
		return
	case !exists && body.SHA != "":
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "sha supplied for new file"})
		return
	}

	sha := s.write(p, string(raw))
	status := http.StatusOK
	if !exists {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{"content": fileJSON(p, string(raw), sha)})
}

// fileJSON builds the single-file payload, line-wrapping the base64 the way
// the real API does.
func fileJSON(p, content, sha string) map[string]string {
	enc := base64.StdEncoding.EncodeToString([]byte(content))
	var b strings.Builder
	for len(enc) > 60 {
		b.WriteString(enc[:60])
		b.WriteByte('\n')
		enc = enc[60:]
	}
	b.WriteString(enc)
	b.WriteByte('\n')
	return map[string]string{
		"name":     path.Base(p),
		"path":     p,
		"sha":      sha,
		"content":  b.String(),
		"encoding": "base64",
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
