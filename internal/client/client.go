// Package client is an HTTP client for the viote REST API. Client
// implements editor.Persister, so an editor session can save straight to a
// running server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sohanasz/viote/internal/apperr"
	"github.com/sohanasz/viote/internal/editor"
	"github.com/sohanasz/viote/internal/models"
)

// Client talks to one viote server. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	authToken  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithToken sends a bearer token with every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.authToken = token
	}
}

// New returns a client for the server at baseURL, e.g.
// "http://localhost:8080". The /api prefix is added per request.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusError is returned for any response outside the expected status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("client: %s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}

// Unwrap maps well-known statuses to the shared sentinel errors.
func (e *StatusError) Unwrap() error {
	switch e.Code {
	case http.StatusNotFound:
		return apperr.ErrNotFound
	case http.StatusConflict:
		return apperr.ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return apperr.ErrInvalidContent
	}
	return nil
}

type errorBody struct {
	Error string `json:"error"`
}

func (c *Client) doRequest(ctx context.Context, method, path string, body any, header http.Header) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("client: encode request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("client: new request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	return resp, nil
}

// decodeResponse checks the status against want and decodes the body into
// target when target is non-nil.
func decodeResponse(resp *http.Response, want int, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode != want {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		msg := strings.TrimSpace(string(raw))
		var eb errorBody
		if json.Unmarshal(raw, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		return &StatusError{
			Method: resp.Request.Method,
			Path:   resp.Request.URL.Path,
			Code:   resp.StatusCode,
			Body:   msg,
		}
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("client: decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) call(ctx context.Context, method, path string, body any, want int, target any) error {
	resp, err := c.doRequest(ctx, method, path, body, nil)
	if err != nil {
		return err
	}
	return decodeResponse(resp, want, target)
}

// Projects

// CreateProject creates a project.
func (c *Client) CreateProject(ctx context.Context, name, description string) (*models.Project, error) {
	body := map[string]string{"name": name, "description": description}
	var p models.Project
	if err := c.call(ctx, http.MethodPost, "/projects", body, http.StatusCreated, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListProjects returns all projects.
func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out struct {
		Projects []models.Project `json:"projects"`
	}
	if err := c.call(ctx, http.MethodGet, "/projects", nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Projects, nil
}

// Notes

// CreateNote stores a new note and returns its id.
func (c *Client) CreateNote(ctx context.Context, projectID string, p editor.Payload) (string, error) {
	var n models.Note
	if err := c.call(ctx, http.MethodPost, notesPath(projectID), p, http.StatusCreated, &n); err != nil {
		return "", err
	}
	return n.ID, nil
}

// UpdateNote replaces a note's title and content. Only a 200 response
// counts as success.
func (c *Client) UpdateNote(ctx context.Context, projectID, noteID string, p editor.Payload) error {
	return c.call(ctx, http.MethodPut, notePath(projectID, noteID), p, http.StatusOK, nil)
}

// UpdateNoteIfMatch is UpdateNote guarded by the checksum the caller last
// saw; a mismatch fails with apperr.ErrConflict.
func (c *Client) UpdateNoteIfMatch(ctx context.Context, projectID, noteID, checksum string, p editor.Payload) (*models.Note, error) {
	h := http.Header{}
	h.Set("If-Match", checksum)
	resp, err := c.doRequest(ctx, http.MethodPut, notePath(projectID, noteID), p, h)
	if err != nil {
		return nil, err
	}
	var n models.Note
	if err := decodeResponse(resp, http.StatusOK, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// GetNote fetches a note with its content.
func (c *Client) GetNote(ctx context.Context, projectID, noteID string) (*models.Note, error) {
	var n models.Note
	if err := c.call(ctx, http.MethodGet, notePath(projectID, noteID), nil, http.StatusOK, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// ListNotes returns the notes of a project.
func (c *Client) ListNotes(ctx context.Context, projectID string) ([]models.NoteSummary, error) {
	var out struct {
		Notes []models.NoteSummary `json:"notes"`
	}
	if err := c.call(ctx, http.MethodGet, notesPath(projectID), nil, http.StatusOK, &out); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

// DeleteNote removes a note.
func (c *Client) DeleteNote(ctx context.Context, projectID, noteID string) error {
	return c.call(ctx, http.MethodDelete, notePath(projectID, noteID), nil, http.StatusNoContent, nil)
}

func notesPath(projectID string) string {
	return "/projects/" + url.PathEscape(projectID) + "/notes"
}

func notePath(projectID, noteID string) string {
	return notesPath(projectID) + "/" + url.PathEscape(noteID)
}

var _ editor.Persister = (*Client)(nil)
