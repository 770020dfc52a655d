package cijene

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// API is the subset of the Cijene REST API the application consumes.
// It is implemented by *Client and can be faked in tests.
type API interface {
	SearchProducts(ctx context.Context, query ProductSearch) (ProductSearchResult, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	GetProductByEAN(ctx context.Context, ean string) (Product, error)
	SuggestProducts(ctx context.Context, query string, limit int) ([]Product, error)
	SearchStores(ctx context.Context, query StoreSearch) (StoreSearchResult, error)
	GetStore(ctx context.Context, id string) (Store, error)
	ListChains(ctx context.Context) ([]Chain, error)
	ComparePrices(ctx context.Context, product Product, query PriceQuery) (PriceComparison, error)
	ListArchives(ctx context.Context) ([]Archive, error)
	DownloadArchive(ctx context.Context, date string, w io.Writer) (int64, error)
	Health(ctx context.Context) (HealthStatus, error)
	Version(ctx context.Context) (string, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Options configures a Client. Zero values fall back to the defaults below,
// except RetryAttempts where zero disables retries.
type Options struct {
	BaseURL           string
	Token             string
	Timeout           time.Duration
	DownloadTimeout   time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
	RequestsPerSecond float64
	UserAgent         string
	HTTPClient        *http.Client
	Logger            zerolog.Logger
}

// Client talks to the Cijene HTTP API.
type Client struct {
	baseURL         *url.URL
	http            *http.Client
	token           string
	userAgent       string
	timeout         time.Duration
	downloadTimeout time.Duration
	retryAttempts   int
	retryDelay      time.Duration
	limiter         *rate.Limiter
	logger          zerolog.Logger

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

const (
	DefaultBaseURL         = "https://cijene.searxngmate.tk"
	DefaultTimeout         = 10 * time.Second
	DefaultDownloadTimeout = 30 * time.Second
	DefaultRetryAttempts   = 3
	DefaultRetryDelay      = time.Second
	defaultUserAgent       = "cijene/0.1"
	maxErrorBody           = 64 * 1024
)

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base, err := parseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	userAgent := strings.TrimSpace(opts.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	downloadTimeout := opts.DownloadTimeout
	if downloadTimeout <= 0 {
		downloadTimeout = DefaultDownloadTimeout
	}
	retryAttempts := opts.RetryAttempts
	if retryAttempts < 0 {
		retryAttempts = 0
	}
	retryDelay := opts.RetryDelay
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}

	limit := rate.Inf
	burst := 1
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
		if opts.RequestsPerSecond > 1 {
			burst = int(opts.RequestsPerSecond)
		}
	}

	return &Client{
		baseURL:         base,
		http:            httpClient,
		token:           strings.TrimSpace(opts.Token),
		userAgent:       userAgent,
		timeout:         timeout,
		downloadTimeout: downloadTimeout,
		retryAttempts:   retryAttempts,
		retryDelay:      retryDelay,
		limiter:         rate.NewLimiter(limit, burst),
		logger:          opts.Logger.With().Str("component", "api").Logger(),
		now:             time.Now,
		sleep:           sleepCtx,
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) getJSON(ctx context.Context, rel *url.URL, dest any) error {
	return c.execute(ctx, rel, c.timeout, func(body io.Reader) error {
		if dest == nil {
			return nil
		}
		if err := json.NewDecoder(body).Decode(dest); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	})
}

// execute runs a GET request, retrying server errors with a delay that grows
// linearly with the attempt number. The retry budget belongs to this call.
func (c *Client) execute(ctx context.Context, rel *url.URL, timeout time.Duration, consume func(io.Reader) error) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	reqURL := c.baseURL.ResolveReference(rel)

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("request %s: %w", rel.Path, err)
		}

		err := c.attempt(ctx, reqURL, timeout, consume)
		if err == nil {
			return nil
		}

		apiErr, ok := AsError(err)
		if !ok || apiErr.Kind != KindServer || attempt >= c.retryAttempts {
			if ok {
				c.logger.Warn().
					Str("url", reqURL.String()).
					Str("code", apiErr.Code).
					Int("status", apiErr.Status).
					Str("kind", apiErr.Kind.String()).
					Msg("api request failed")
			}
			return err
		}

		delay := c.retryDelay * time.Duration(attempt+1)
		c.logger.Warn().
			Int("attempt", attempt+1).
			Int("max_attempts", c.retryAttempts+1).
			Int("status", apiErr.Status).
			Dur("delay", delay).
			Str("url", reqURL.String()).
			Msg("retryable status")

		if err := c.sleep(ctx, delay); err != nil {
			return fmt.Errorf("request %s: %w", rel.Path, err)
		}
	}
}

func (c *Client) attempt(ctx context.Context, reqURL *url.URL, timeout time.Duration, consume func(io.Reader) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", "Bearer "+c.token)

	started := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("execute request: %w", ctxErr)
		}
		return classifyTransport(err, c.now())
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug().
		Str("url", reqURL.String()).
		Int("status", resp.StatusCode).
		Dur("elapsed", c.now().Sub(started)).
		Msg("api response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return classifyStatus(resp.StatusCode, body, c.now())
	}

	if err := consume(resp.Body); err != nil {
		if ctx.Err() == nil && attemptCtx.Err() != nil {
			return classifyTransport(attemptCtx.Err(), c.now())
		}
		return err
	}
	return nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		trimmed = DefaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", raw)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
