// Package remote implements the typed client for the remote contents API
// that stores the notes. Transport failures and status codes are normalized
// into the apperr sentinels so callers never inspect HTTP details.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/codec"
	"github.com/starford/raido/internal/models"
)

// Store is the interface the workflow programs against.
type Store interface {
	// List returns the entries under dir (relative to the repository root).
	List(ctx context.Context, dir string) ([]Entry, error)
	// Read fetches a single file's decoded content and version tag.
	Read(ctx context.Context, path string) (*models.NoteFile, error)
	// Create writes a new file. The path must not already exist.
	Create(ctx context.Context, path, content, message string) (*models.NoteFile, error)
	// Update overwrites an existing file. sha must be the version tag from
	// the most recent Read of path; a stale tag yields ErrConflict.
	Update(ctx context.Context, path, content, sha, message string) (*models.NoteFile, error)
	// CurrentUser fetches the identity the credential belongs to.
	CurrentUser(ctx context.Context) (*User, error)
}

// TokenFunc supplies the bearer credential for each request.
type TokenFunc func() string

// Client talks to a GitHub-style contents API.
type Client struct {
	base   string // e.g. https://api.github.com
	repo   string // "owner/name"
	branch string
	token  TokenFunc
	http   *http.Client
}

var _ Store = (*Client)(nil)

// New creates a client for the given repository and branch. token is
// consulted on every request, so credential changes take effect immediately.
func New(baseURL, ownerRepo, branch string, token TokenFunc) *Client {
	return &Client{
		base:   baseURL,
		repo:   ownerRepo,
		branch: branch,
		token:  token,
		// The timeout is arbitrary; it only guards against a server that
		// never closes the connection.
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// contentsURL escapes each path segment but keeps separators, so nested
// paths like notes/todo.md stay addressable.
func (c *Client) contentsURL(path string) string {
	parts := strings.Split(path, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return c.base + "/repos/" + c.repo + "/contents/" + strings.Join(parts, "/")
}

// do attaches the credential and executes the request. Network errors are
// normalized to ErrTransport.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	req.Header.Set("Authorization", "token "+c.token())
	req.Header.Set("Accept", "application/vnd.github+json")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote: %w: %v", apperr.ErrTransport, err)
	}
	return resp, nil
}

// checkStatus maps a non-success status to a sentinel error. Unauthorized
// and forbidden both mean the credential was rejected and are never
// conflated with a missing path.
func checkStatus(code int) error {
	switch code {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("remote: %w", apperr.ErrAuth)
	case http.StatusNotFound:
		return fmt.Errorf("remote: %w", apperr.ErrNotFound)
	case http.StatusConflict, http.StatusUnprocessableEntity:
		return fmt.Errorf("remote: %w", apperr.ErrConflict)
	default:
		return fmt.Errorf("remote: %w: unexpected status %d", apperr.ErrTransport, code)
	}
}

// List returns the directory entries under dir.
func (c *Client) List(ctx context.Context, dir string) ([]Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.contentsURL(dir)+"?ref="+url.QueryEscape(c.branch), nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("remote: %w: %v", apperr.ErrDecode, err)
	}
	return entries, nil
}

// Read fetches a single file and decodes its content.
func (c *Client) Read(ctx context.Context, path string) (*models.NoteFile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.contentsURL(path)+"?ref="+url.QueryEscape(c.branch), nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	var body fileBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("remote: %w: %v", apperr.ErrDecode, err)
	}
	text, err := codec.Decode(body.Content)
	if err != nil {
		return nil, err
	}
	return &models.NoteFile{Name: body.Name, Content: text, SHA: body.SHA}, nil
}

// Create writes a new file at path.
func (c *Client) Create(ctx context.Context, path, content, message string) (*models.NoteFile, error) {
	return c.put(ctx, path, putBody{
		Message: message,
		Content: codec.Encode(content),
		Branch:  c.branch,
	})
}

// Update overwrites the file at path, conditional on sha.
func (c *Client) Update(ctx context.Context, path, content, sha, message string) (*models.NoteFile, error) {
	return c.put(ctx, path, putBody{
		Message: message,
		Content: codec.Encode(content),
		Branch:  c.branch,
		SHA:     sha,
	})
}

func (c *Client) put(ctx context.Context, path string, body putBody) (*models.NoteFile, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("remote: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.contentsURL(path), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	var result putResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("remote: %w: %v", apperr.ErrDecode, err)
	}
	// Write responses carry metadata only; the content we just sent is
	// authoritative.
	return &models.NoteFile{Name: result.Content.Name, Content: "", SHA: result.Content.SHA}, nil
}

// CurrentUser fetches the identity profile for the held credential.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/user", nil)
	if err != nil {
		return nil, fmt.Errorf("remote: build request: %w", err)
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	var user User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("remote: %w: %v", apperr.ErrDecode, err)
	}
	return &user, nil
}
