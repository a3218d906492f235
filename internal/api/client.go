package api

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Ref-Hub/refhub-cli/internal/errors"
	"github.com/Ref-Hub/refhub-cli/internal/log"
)

// Messages substituted for upload errors the backend reports with bare
// status codes.
const (
	MsgFileTooLarge        = "file too large"
	MsgUnsupportedFileType = "unsupported file type"
)

// TokenSource supplies the current access token for outgoing requests.
// An empty string means no Authorization header is attached.
type TokenSource interface {
	Token() string
}

// Refresher exchanges the refresh token for a new access token when a
// request comes back 401. The session manager implements it.
type Refresher interface {
	// RefreshAccessToken returns a fresh access token, or an error if
	// the exchange failed (in which case the session has been cleared).
	RefreshAccessToken(ctx context.Context) (string, error)

	// Invalidate clears the session after a terminal auth failure.
	Invalidate()
}

// Client is the RefHub API client
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	refresher  Refresher
	logger     *log.Logger
}

// NewClient creates a new RefHub API client
func NewClient(baseURL string, tokens TokenSource, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		tokens: tokens,
		logger: logger,
	}
}

// SetRefresher wires the session manager in after construction.
// The client and the manager reference each other, so one side has to
// be attached late.
func (c *Client) SetRefresher(r Refresher) {
	c.refresher = r
}

// BaseURL returns the configured API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// reqOpts controls per-request interceptor behavior
type reqOpts struct {
	// noAuth skips the Authorization header (login, signup, refresh)
	noAuth bool
	// noRetry disables the 401 refresh-and-retry cycle; set on the
	// refresh exchange itself and on already-retried requests
	noRetry bool
}

// send performs a request with the interceptor behavior applied:
// bearer attachment, and on 401 a single refresh-and-replay. The
// payload is retained as bytes so the replay reuses the identical
// body, multipart boundary included.
func (c *Client) send(ctx context.Context, method, path, contentType string, payload []byte, opts reqOpts) (*http.Response, error) {
	bearer := ""
	if !opts.noAuth && c.tokens != nil {
		bearer = c.tokens.Token()
	}

	resp, err := c.roundTrip(ctx, method, path, contentType, payload, bearer)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized || opts.noRetry || c.refresher == nil {
		return resp, nil
	}

	// 401: refresh once and replay the original request exactly once.
	_ = resp.Body.Close()
	c.logger.DebugContext(ctx, "received 401, refreshing access token", "method", method, "path", path)

	token, err := c.refresher.RefreshAccessToken(ctx)
	if err != nil {
		return nil, apperrors.NewRefreshFailedError(err)
	}

	retry, err := c.roundTrip(ctx, method, path, contentType, payload, token)
	if err != nil {
		return nil, err
	}
	if retry.StatusCode == http.StatusUnauthorized {
		// A second 401 is terminal; no further retries.
		_ = retry.Body.Close()
		c.refresher.Invalidate()
		return nil, apperrors.NewSessionExpiredError()
	}

	return retry, nil
}

// roundTrip builds and performs one HTTP request
func (c *Client) roundTrip(ctx context.Context, method, path, contentType string, payload []byte, bearer string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewNetworkError(err)
	}

	return resp, nil
}

// doJSON sends an optional JSON body and decodes the response into out
func (c *Client) doJSON(ctx context.Context, method, path string, reqBody, out any, opts reqOpts) error {
	var payload []byte
	contentType := ""
	if reqBody != nil {
		var err error
		payload, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		contentType = "application/json"
	}

	resp, err := c.send(ctx, method, path, contentType, payload, opts)
	if err != nil {
		return err
	}

	return parseResponse(resp, out)
}

// APIError is the uniform shape every non-2xx response is normalized
// into before being surfaced to callers.
type APIError struct {
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
	ErrorCode  string `json:"errorCode,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.ErrorCode != "" {
		return fmt.Sprintf("%s (status %d, code %s)", e.Message, e.StatusCode, e.ErrorCode)
	}
	return fmt.Sprintf("%s (status %d)", e.Message, e.StatusCode)
}

// IsNotFound reports whether err is an APIError for a missing resource
func IsNotFound(err error) bool {
	var apiErr *APIError
	return stderrors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// parseResponse parses the response body into the target struct,
// normalizing non-2xx responses into *APIError.
func parseResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return normalizeError(resp)
	}

	if target != nil {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// normalizeError converts an error response into *APIError, applying
// the fixed substitutions for 413 and 415.
func normalizeError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	apiErr := &APIError{StatusCode: resp.StatusCode}

	var payload struct {
		Message   string `json:"message"`
		Error     string `json:"error"`
		ErrorCode string `json:"errorCode"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Message != "" {
			apiErr.Message = payload.Message
		} else if payload.Error != "" {
			apiErr.Message = payload.Error
		}
		apiErr.ErrorCode = payload.ErrorCode
	}

	if apiErr.Message == "" {
		if s := strings.TrimSpace(string(body)); s != "" {
			apiErr.Message = s
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}

	switch resp.StatusCode {
	case http.StatusRequestEntityTooLarge:
		apiErr.Message = MsgFileTooLarge
	case http.StatusUnsupportedMediaType:
		apiErr.Message = MsgUnsupportedFileType
	}

	return apiErr
}
