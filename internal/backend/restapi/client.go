// Package restapi implements the service.Service interface over the task
// API's HTTP endpoints.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"taskboard/internal/config"
	"taskboard/internal/service"
)

const (
	// DefaultTimeout is the timeout for API calls when none is configured.
	DefaultTimeout = 10 * time.Second

	// RequestIDHeader carries a per-request ID for server-side correlation.
	RequestIDHeader = "X-Request-ID"

	// maxErrorBody bounds how much of an error response is read.
	maxErrorBody = 64 << 10
)

// Client implements service.Service over HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	oauth   oauth2.Config
	timeout time.Duration
	log     zerolog.Logger
}

// New creates a client for the API at cfg.Env.APIURL.
func New(cfg *config.Config, log zerolog.Logger) (*Client, error) {
	c, err := NewWithHTTPClient(cfg.Env.APIURL, &http.Client{})
	if err != nil {
		return nil, err
	}
	c.timeout = cfg.Env.Timeout
	c.log = log
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api url: %q", baseURL)
	}
	c := &Client{
		base:    base,
		http:    httpClient,
		timeout: DefaultTimeout,
		log:     zerolog.Nop(),
	}
	c.oauth = oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.endpoint("/token"),
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return c, nil
}

func (c *Client) endpoint(path string) string {
	u := *c.base
	u.Path = c.base.Path + path
	return u.String()
}

// Login implements service.Service with the OAuth2 password grant against
// POST /token.
func (c *Client) Login(ctx context.Context, username, password string) (*oauth2.Token, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.http)

	start := time.Now()
	tok, err := c.oauth.PasswordCredentialsToken(ctx, username, password)
	c.log.Debug().
		Str("method", http.MethodPost).
		Str("path", "/token").
		Dur("duration", time.Since(start)).
		Err(err).
		Msg("token request")
	if err != nil {
		return nil, wrapTokenError(err)
	}
	return tok, nil
}

type credentialsBody struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register implements service.Service.
func (c *Client) Register(ctx context.Context, username, password string) error {
	return c.do(ctx, http.MethodPost, "/register", nil, credentialsBody{username, password}, nil)
}

type taskBody struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

func newTaskBody(in service.TaskInput) taskBody {
	return taskBody{Title: in.Title, Description: in.Description, Priority: string(in.Priority)}
}

type taskResponse struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Priority    string  `json:"priority"`
}

func (r taskResponse) task() service.Task {
	t := service.Task{ID: r.ID, Title: r.Title, Priority: service.DefaultPriority}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if p, err := service.ParsePriority(r.Priority); err == nil {
		t.Priority = p
	}
	return t
}

// ListTasks implements service.Service.
// The response may be a bare array or an object with a "tasks" array.
func (c *Client) ListTasks(ctx context.Context, tok *oauth2.Token) ([]service.Task, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/tasks/", tok, nil, &raw); err != nil {
		return nil, err
	}

	var items []taskResponse
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")):
		return nil, nil
	case trimmed[0] == '[':
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("invalid tasks response: %w", err)
		}
	default:
		var page struct {
			Tasks []taskResponse `json:"tasks"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("invalid tasks response: %w", err)
		}
		items = page.Tasks
	}

	tasks := make([]service.Task, 0, len(items))
	for _, item := range items {
		tasks = append(tasks, item.task())
	}
	return tasks, nil
}

// CreateTask implements service.Service.
func (c *Client) CreateTask(ctx context.Context, tok *oauth2.Token, in service.TaskInput) (service.Task, error) {
	var resp taskResponse
	if err := c.do(ctx, http.MethodPost, "/tasks/", tok, newTaskBody(in), &resp); err != nil {
		return service.Task{}, err
	}
	return resp.task(), nil
}

// UpdateTask implements service.Service.
// If the server answers without a body, the input is taken as the new state.
func (c *Client) UpdateTask(ctx context.Context, tok *oauth2.Token, id int, in service.TaskInput) (service.Task, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodPut, "/tasks/"+strconv.Itoa(id), tok, newTaskBody(in), &raw); err != nil {
		return service.Task{}, err
	}
	var resp taskResponse
	if len(bytes.TrimSpace(raw)) == 0 || json.Unmarshal(raw, &resp) != nil || resp.Title == "" {
		return service.Task{ID: id, Title: in.Title, Description: in.Description, Priority: in.Priority}, nil
	}
	t := resp.task()
	t.ID = id
	return t, nil
}

// DeleteTask implements service.Service.
func (c *Client) DeleteTask(ctx context.Context, tok *oauth2.Token, id int) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+strconv.Itoa(id), tok, nil, nil)
}

// do sends one request. body is JSON-encoded when non-nil; out receives the
// decoded response when non-nil. tok, when non-nil, is sent as the bearer
// credential.
func (c *Client) do(ctx context.Context, method, path string, tok *oauth2.Token, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != nil {
		tok.SetAuthHeader(req)
	}
	requestID := uuid.NewString()
	req.Header.Set(RequestIDHeader, requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Debug().
			Str("request_id", requestID).
			Str("method", method).
			Str("path", path).
			Err(err).
			Msg("request failed")
		return wrapNetworkError(method+" "+path, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request done")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &service.RemoteError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil {
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return wrapNetworkError(method+" "+path, err)
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = data
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("invalid response from %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts the server's error text from a response body.
// Accepted shapes: {"detail": "..."}, {"detail": [{"msg": "..."}]},
// {"message": "..."}, {"error": "..."}.
func errorMessage(data []byte) string {
	var body struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}

	if len(body.Detail) > 0 {
		var s string
		if json.Unmarshal(body.Detail, &s) == nil && s != "" {
			return s
		}
		var items []struct {
			Msg string `json:"msg"`
		}
		if json.Unmarshal(body.Detail, &items) == nil {
			var msgs []string
			for _, item := range items {
				if item.Msg != "" {
					msgs = append(msgs, item.Msg)
				}
			}
			if len(msgs) > 0 {
				return strings.Join(msgs, "; ")
			}
		}
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// wrapNetworkError wraps transport failures with user-friendly messages.
func wrapNetworkError(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &service.NetworkError{Op: op, Err: errors.New("request timed out")}
	}
	return &service.NetworkError{Op: op, Err: err}
}

// wrapTokenError maps failures of the token endpoint into the error taxonomy.
func wrapTokenError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) {
		status := http.StatusBadRequest
		if rerr.Response != nil {
			status = rerr.Response.StatusCode
		}
		msg := errorMessage(rerr.Body)
		if msg == "" {
			msg = rerr.ErrorDescription
		}
		return &service.RemoteError{StatusCode: status, Message: msg}
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		return wrapNetworkError("POST /token", uerr.Err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return wrapNetworkError("POST /token", err)
	}
	// A 2xx response without an access token.
	return &service.RemoteError{StatusCode: http.StatusOK, Message: err.Error()}
}
