package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the Yahoo Finance API.
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// DefaultSessionURL issues the session cookie the crumb is bound to.
	DefaultSessionURL = "https://fc.yahoo.com"

	crumbPath = "/v1/test/getcrumb"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultInterval is the default minimum spacing between requests.
	DefaultInterval = 250 * time.Millisecond

	// DefaultUserAgent is sent with every request; the API rejects empty agents.
	DefaultUserAgent = "Mozilla/5.0 (compatible; equitas/1.0)"
)

// Client is a Yahoo Finance API client.
// Requests carry a session cookie and a crumb query parameter. Both are
// obtained on first use and the crumb is refreshed once when a request is
// rejected with 401.
type Client struct {
	baseURL    string
	sessionURL string
	userAgent  string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter

	mu    sync.Mutex
	crumb string
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithSessionURL sets the URL visited to obtain the session cookie.
func WithSessionURL(sessionURL string) ClientOption {
	return func(c *Client) {
		if sessionURL != "" {
			c.sessionURL = sessionURL
		}
	}
}

// WithHTTPClient sets a custom HTTP client. A cookie jar is attached if it has none.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request HTTP timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(userAgent string) ClientOption {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithRateLimit sets the minimum interval between outbound requests.
func WithRateLimit(interval time.Duration) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// NewClient creates a new Yahoo Finance API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		sessionURL: DefaultSessionURL,
		userAgent:  DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(DefaultInterval), 1),
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, _ := cookiejar.New(nil)
		c.httpClient.Jar = jar
	}

	return c
}

// get performs an authenticated GET request to the API, refreshing the crumb
// once if the API rejects it.
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	err := c.getWithCrumb(ctx, path, params, result)

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
		if c.logger != nil {
			c.logger.Debug().Str("endpoint", path).Msg("Yahoo Finance crumb rejected, refreshing session")
		}
		c.resetCrumb()
		return c.getWithCrumb(ctx, path, params, result)
	}
	return err
}

func (c *Client) getWithCrumb(ctx context.Context, path string, params url.Values, result interface{}) error {
	crumb, err := c.sessionCrumb(ctx)
	if err != nil {
		return fmt.Errorf("failed to obtain crumb: %w", err)
	}

	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("crumb", crumb)

	if err := c.limiter.Wait(ctx); err != nil {
		return &RateLimitError{RetryAfter: c.limiterInterval()}
	}

	reqURL := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Msg("Yahoo Finance API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// sessionCrumb returns the cached crumb, performing the session handshake
// when none is cached.
func (c *Client) sessionCrumb(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.crumb != "" {
		return c.crumb, nil
	}

	if err := c.primeSession(ctx); err != nil {
		return "", err
	}

	crumb, err := c.fetchCrumb(ctx)
	if err != nil {
		return "", err
	}

	c.crumb = crumb
	return crumb, nil
}

func (c *Client) resetCrumb() {
	c.mu.Lock()
	c.crumb = ""
	c.mu.Unlock()
}

// primeSession visits the session URL so the jar holds the session cookie.
// The response status is ignored; only the Set-Cookie header matters.
func (c *Client) primeSession(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.sessionURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create session request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to open session: %w", err)
	}
	io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))
	resp.Body.Close()

	return nil
}

func (c *Client) fetchCrumb(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+crumbPath, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create crumb request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute crumb request: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode != http.StatusOK {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   crumbPath,
		}
	}

	crumb := strings.TrimSpace(string(body))
	if crumb == "" || strings.ContainsAny(crumb, "<{") {
		return "", fmt.Errorf("unexpected crumb response: %q", crumb)
	}

	if c.logger != nil {
		c.logger.Debug().Msg("Yahoo Finance session established")
	}
	return crumb, nil
}

func (c *Client) limiterInterval() time.Duration {
	if limit := c.limiter.Limit(); limit > 0 {
		return time.Duration(float64(time.Second) / float64(limit))
	}
	return time.Second
}

// QuoteSummary retrieves the requested modules for a symbol.
// Symbol format: bare exchange symbol (e.g., "AAL", "MSFT").
func (c *Client) QuoteSummary(ctx context.Context, symbol string, modules ...string) (*QuoteSummaryResult, error) {
	if symbol == "" {
		return nil, ErrSymbolNotFound
	}
	if len(modules) == 0 {
		modules = []string{ModulePrice, ModuleSummaryDetail}
	}

	params := url.Values{}
	params.Set("modules", strings.Join(modules, ","))

	var envelope quoteSummaryResponse
	if err := c.get(ctx, "/v10/finance/quoteSummary/"+url.PathEscape(symbol), params, &envelope); err != nil {
		return nil, err
	}

	if e := envelope.QuoteSummary.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return nil, fmt.Errorf("%s: %w", e.Description, ErrSymbolNotFound)
		}
		return nil, fmt.Errorf("quote summary error %s: %s", e.Code, e.Description)
	}
	if len(envelope.QuoteSummary.Result) == 0 {
		return nil, ErrSymbolNotFound
	}

	return &envelope.QuoteSummary.Result[0], nil
}
