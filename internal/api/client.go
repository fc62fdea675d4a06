// Package api provides the HTTP client for the career portal backend.
// It centralizes request construction, bearer authentication and error decoding
// for the profile, recommendation and account endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/career-portal/internal/schemas"
	"github.com/jonathan/career-portal/internal/types"
)

// DefaultTimeout is the default HTTP request timeout.
// Recommendation generation is slow, so this is generous.
const DefaultTimeout = 90 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "CareerPortal/1.0"

// RequestIDHeader carries a per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// ExportFormats lists the formats accepted by GET /export/{format}.
var ExportFormats = []string{"csv", "json", "xlsx"}

// Client talks to the backend over HTTP.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a client for the backend rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", baseURL)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend root the client was created with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Login exchanges username and password for a bearer credential.
func (c *Client) Login(ctx context.Context, req types.LoginRequest) (*types.TokenResponse, error) {
	body, err := c.doJSON(ctx, "login", http.MethodPost, "/token", "", req)
	if err != nil {
		return nil, err
	}

	var resp types.TokenResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Op: "login", Cause: fmt.Errorf("failed to decode token response: %w", err)}
	}
	if resp.AccessToken == "" {
		return nil, &Error{Op: "login", Cause: fmt.Errorf("token response has no access_token")}
	}
	return &resp, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req types.RegisterRequest) error {
	_, err := c.doJSON(ctx, "register", http.MethodPost, "/register", "", req)
	return err
}

// GetMe reads the current user's record and returns its profile.
// A nil profile with a nil error means the user has not submitted one yet.
func (c *Client) GetMe(ctx context.Context, credential string) (*types.Profile, error) {
	body, err := c.do(ctx, "fetch profile", http.MethodGet, "/users/me", credential, nil, "")
	if err != nil {
		return nil, err
	}
	if err := schemas.Validate(schemas.UserMe, body); err != nil {
		return nil, &Error{Op: "fetch profile", Cause: err}
	}

	var resp struct {
		Profile *types.Profile `json:"profile"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Op: "fetch profile", Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	return resp.Profile, nil
}

// SubmitProfile writes the whole draft as the user's profile.
func (c *Client) SubmitProfile(ctx context.Context, credential string, draft types.ProfileDraft) error {
	_, err := c.doJSON(ctx, "submit profile", http.MethodPost, "/profile", credential, draft)
	return err
}

// GetRecommendations reads the recommendation set for the current profile.
// When force is set the backend regenerates instead of serving its cached result.
func (c *Client) GetRecommendations(ctx context.Context, credential string, force bool) (types.RecommendationSet, error) {
	path := "/recommendations"
	if force {
		path += "?refresh=true"
	}

	body, err := c.do(ctx, "fetch recommendations", http.MethodGet, path, credential, nil, "")
	if err != nil {
		return types.RecommendationSet{}, err
	}
	if err := schemas.Validate(schemas.Recommendations, body); err != nil {
		return types.RecommendationSet{}, &Error{Op: "fetch recommendations", Cause: err}
	}

	var set types.RecommendationSet
	if err := json.Unmarshal(body, &set); err != nil {
		return types.RecommendationSet{}, &Error{Op: "fetch recommendations", Cause: fmt.Errorf("failed to decode response: %w", err)}
	}
	if set.Courses == nil {
		set.Courses = []types.Course{}
	}
	if set.Jobs == nil {
		set.Jobs = []types.Job{}
	}
	return set, nil
}

// UploadResume sends a resume file as multipart form data.
func (c *Client) UploadResume(ctx context.Context, credential, filename string, r io.Reader) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return &Error{Op: "upload resume", Cause: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return &Error{Op: "upload resume", Cause: fmt.Errorf("failed to read resume: %w", err)}
	}
	if err := mw.Close(); err != nil {
		return &Error{Op: "upload resume", Cause: err}
	}

	_, err = c.do(ctx, "upload resume", http.MethodPost, "/profile/resume", credential, &buf, mw.FormDataContentType())
	return err
}

// Export downloads the user's data in the given format.
func (c *Client) Export(ctx context.Context, credential, format string) ([]byte, error) {
	if !slices.Contains(ExportFormats, format) {
		return nil, &Error{Op: "export", Cause: fmt.Errorf("unsupported format %q", format)}
	}
	return c.do(ctx, "export "+format, http.MethodGet, "/export/"+format, credential, nil, "")
}

func (c *Client) doJSON(ctx context.Context, op, method, path, credential string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Op: op, Cause: fmt.Errorf("failed to encode request: %w", err)}
	}
	return c.do(ctx, op, method, path, credential, bytes.NewReader(data), "application/json")
}

// do executes a request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, path, credential string, body io.Reader, contentType string) ([]byte, error) {
	target, err := c.baseURL.Parse(c.baseURL.Path + path)
	if err != nil {
		return nil, &Error{Op: op, Cause: fmt.Errorf("invalid request path %q: %w", path, err)}
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return nil, &Error{Op: op, Cause: fmt.Errorf("failed to create request: %w", err)}
	}

	requestID := uuid.NewString()
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, StatusCode: resp.StatusCode, Cause: fmt.Errorf("failed to read response body: %w", err)}
	}

	c.logger.Debug("api call",
		"op", op,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &Error{Op: op, StatusCode: resp.StatusCode, Detail: decodeDetail(respBody)}
	}
	return respBody, nil
}

// decodeDetail extracts the "detail" field of an error body.
// Validation failures carry a list there rather than a string.
func decodeDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		return s
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, payload.Detail); err != nil {
		return string(payload.Detail)
	}
	return compact.String()
}
