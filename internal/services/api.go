// Movie API client
package services

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

	"github.com/charmbracelet/log"
	"github.com/desertthunder/flix/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "http://localhost:8080"
	requestIDKey   = "X-Request-ID"
)

// Options configures a [MovieAPI].
type Options struct {
	BaseURL   string
	Client    *http.Client
	RateLimit float64 // requests per second; 0 disables throttling
	UserAgent string
	Logger    *log.Logger
}

// OptionsFromConfig maps the [api] config section to [Options].
func OptionsFromConfig(cfg shared.APIConfig, logger *log.Logger) Options {
	return Options{
		BaseURL:   cfg.BaseURL,
		Client:    &http.Client{Timeout: cfg.Timeout()},
		RateLimit: cfg.RateLimit,
		UserAgent: cfg.UserAgent,
		Logger:    logger,
	}
}

// MovieAPI talks to the remote movie catalog and user service.
type MovieAPI struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	logger     *log.Logger
}

// NewMovieAPI creates a new client. Zero options fall back to localhost, [http.DefaultClient] and no throttling.
func NewMovieAPI(opts Options) *MovieAPI {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	limit := rate.Inf
	if opts.RateLimit > 0 {
		limit = rate.Limit(opts.RateLimit)
	}

	return &MovieAPI{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: opts.Client,
		limiter:    rate.NewLimiter(limit, 1),
		userAgent:  opts.UserAgent,
		logger:     opts.Logger,
	}
}

// BaseURL returns the API root without a trailing slash.
func (a *MovieAPI) BaseURL() string { return a.baseURL }

// clientFor returns a client that attaches token as a bearer credential.
func (a *MovieAPI) clientFor(ctx context.Context, token string) *http.Client {
	if token == "" {
		return a.httpClient
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}))
	client.Timeout = a.httpClient.Timeout
	return client
}

// send performs one request and returns the status and body. Only transport failures are errors.
func (a *MovieAPI) send(ctx context.Context, method, path, token string, body []byte) (*APIResponse, error) {
	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", shared.ErrRemoteUnavailable, err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	requestID := shared.GenerateID()
	req.Header.Set(requestIDKey, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.userAgent != "" {
		req.Header.Set("User-Agent", a.userAgent)
	}

	start := time.Now()
	resp, err := a.clientFor(ctx, token).Do(req)
	if err != nil {
		a.logger.Debug("request failed", "method", method, "path", path, "request_id", requestID, "error", err)
		return nil, fmt.Errorf("%w: %w", shared.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %w", shared.ErrRemoteUnavailable, err)
	}

	a.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode,
		"request_id", requestID, "duration", time.Since(start))

	apiResp := &APIResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header,
		Body:       data,
	}

	var jsonData any
	if err := json.Unmarshal(data, &jsonData); err == nil {
		apiResp.IsJSON = true
		apiResp.JSONData = jsonData
	}

	return apiResp, nil
}

// call performs a request and interprets the response: non-2xx becomes a [RemoteError].
func (a *MovieAPI) call(ctx context.Context, method, path, token string, in any) ([]byte, error) {
	var body []byte
	if in != nil {
		var err error
		if body, err = json.Marshal(in); err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
	}

	resp, err := a.send(ctx, method, path, token, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newRemoteError(resp.StatusCode, resp.Body)
	}
	return resp.Body, nil
}

// authed is [MovieAPI.call] for endpoints that require a bearer token.
func (a *MovieAPI) authed(ctx context.Context, method, path, token string, in any) ([]byte, error) {
	if token == "" {
		return nil, shared.ErrMissingCredential
	}
	return a.call(ctx, method, path, token, in)
}

func decodeInto[T any](body []byte, what string) (T, error) {
	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s: %w", what, err)
	}
	return out, nil
}

// Do performs a raw request and returns the response without interpreting the status.
//
// A non-empty token is sent as a bearer credential.
func (a *MovieAPI) Do(ctx context.Context, method, path, token string, body []byte) (*APIResponse, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return a.send(ctx, method, path, token, body)
}

// Get performs a raw GET request.
func (a *MovieAPI) Get(ctx context.Context, path, token string) (*APIResponse, error) {
	return a.Do(ctx, http.MethodGet, path, token, nil)
}

// Post performs a raw POST request with the given JSON data.
func (a *MovieAPI) Post(ctx context.Context, path, token string, data []byte) (*APIResponse, error) {
	return a.Do(ctx, http.MethodPost, path, token, data)
}

func segment(parts ...string) string {
	var b strings.Builder
	for _, p := range parts {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(p))
	}
	return b.String()
}
