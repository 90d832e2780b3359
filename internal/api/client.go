// Package api is the REST gateway for a JSONPlaceholder-style posts API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pders01/postr/internal/config"
	"github.com/pders01/postr/internal/debuglog"
	"github.com/pders01/postr/internal/storage"
)

const maxErrorBody = 512

type Client struct {
	baseURL   string
	userAgent string
	attempts  int
	baseDelay time.Duration
	client    *http.Client
}

func NewClient(cfg config.APIConfig) *Client {
	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	attempts := cfg.Retries
	if attempts < 1 {
		attempts = defaultAttempts
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		attempts:  attempts,
		baseDelay: defaultBaseDelay,
		client:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) BaseURL() string { return c.baseURL }

type postPayload struct {
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID *int   `json:"userId,omitempty"`
}

func (c *Client) FetchPosts(ctx context.Context) ([]storage.Post, error) {
	var posts []storage.Post
	err := retry(ctx, c.attempts, c.baseDelay, func() error {
		return c.do(ctx, http.MethodGet, "/posts", nil, &posts)
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (c *Client) FetchUsers(ctx context.Context) ([]storage.User, error) {
	var users []storage.User
	err := retry(ctx, c.attempts, c.baseDelay, func() error {
		return c.do(ctx, http.MethodGet, "/users", nil, &users)
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// CreatePost is not retried: a lost response could otherwise create the
// post twice. The returned post carries the server-assigned id.
func (c *Client) CreatePost(ctx context.Context, draft storage.Post) (storage.Post, error) {
	var created storage.Post
	payload := postPayload{Title: draft.Title, Body: draft.Body, UserID: draft.UserID}
	if err := c.do(ctx, http.MethodPost, "/posts", payload, &created); err != nil {
		return storage.Post{}, err
	}
	return created, nil
}

// DeletePost returns an error wrapping storage.ErrNotFound on 404.
func (c *Client) DeletePost(ctx context.Context, id int) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/posts/%d", id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	}

	log := debuglog.WithFields(map[string]interface{}{"method": method, "path": path, "request_id": requestID})
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		log.Warnf("request failed: %v", err)
		return &TransportError{Method: method, Path: path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	log.Debugf("%d in %s", resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", method, path, storage.ErrNotFound)
	}
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(string(respBody))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Method: method, Path: path, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}
