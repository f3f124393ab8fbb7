// Package client provides the HTTP transport for the employee API together
// with its error normalizer and the read retry policy.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/employee-client/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for API requests.
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "employee_client_requests_total",
		Help: "Total employee API requests by method and status",
	}, []string{"method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "employee_client_request_duration_seconds",
		Help:    "Employee API request duration in seconds by method",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"method"})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "employee_client_errors_total",
		Help: "Total employee API errors by class",
	}, []string{"class"})
)

// Client performs single-attempt calls against the employee API. Retrying is
// layered on top by the caller through Retry.
type Client struct {
	httpClient *http.Client
	baseURL    string
	cache      *cache.Manager
	retrier    *Retrier
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, e.g. "http://localhost:3000/api".
	BaseURL string

	// UserAgent is sent with every request.
	UserAgent string

	// Timeout bounds a single HTTP attempt.
	Timeout time.Duration

	// Redis enables the conditional-GET response cache when set.
	Redis *redis.Client

	// Retry is the read retry policy.
	Retry RetryConfig
}

// DefaultConfig returns a default configuration for the given base URL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: "employee-client/0.1.0",
		Timeout:   30 * time.Second,
		Retry:     DefaultRetryConfig(),
	}
}

// New creates a new API client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("base url must be http or https (got %q)", cfg.BaseURL)
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "employee-client").Logger()

	var cacheManager *cache.Manager
	if cfg.Redis != nil {
		cacheManager = cache.NewManager(cfg.Redis)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		cache:   cacheManager,
		retrier: NewRetrier(cfg.Retry, logger),
		config:  cfg,
		logger:  logger,
	}, nil
}

// GetJSON performs one GET request and decodes the JSON body into out.
// When a cache is configured the request is made conditional and a 304
// answer is served from the cached body.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	target := c.url(path, query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return c.fail(http.MethodGet, Failure{URL: target, Message: err.Error()})
	}

	cacheKey := c.CacheKey(path, query)
	var cached *cache.CacheEntry
	if c.cache != nil {
		cached, err = c.cache.Get(ctx, cacheKey)
		if err != nil && err != cache.ErrCacheMiss {
			c.logger.Warn().Err(err).Str("path", path).Msg("Cache get error")
		}
		if cached != nil && cache.ShouldMakeConditionalRequest(cached) {
			cache.AddConditionalHeaders(req, cached)
			cache.ConditionalRequestsSent.Inc()
			c.logger.Debug().
				Str("path", path).
				Str("etag", cached.ETag).
				Msg("Making conditional request")
		}
	}

	resp, body, err := c.do(req)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		c.logger.Debug().Str("path", path).Msg("304 Not Modified - using cache")
		cache.NotModifiedResponses.Inc()
		if err := c.cache.UpdateTTL(ctx, cacheKey, cache.ParseExpires(resp.Header)); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to update cache TTL")
		}
		body = cached.Data
	} else if c.cache != nil && resp.StatusCode == http.StatusOK {
		entry := cache.NewEntry(resp, body)
		if cache.ShouldMakeConditionalRequest(entry) {
			if err := c.cache.Set(ctx, cacheKey, entry); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to cache response")
			}
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return c.fail(http.MethodGet, Failure{URL: target, Message: fmt.Sprintf("decode response: %v", err)})
	}
	return nil
}

// Send performs one request with an optional JSON body and discards the
// response body. It is used for mutations, which are never retried.
func (c *Client) Send(ctx context.Context, method, path string, payload any) error {
	target := c.url(path, nil)

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return c.fail(method, Failure{URL: target, Message: fmt.Sprintf("encode request: %v", err)})
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return c.fail(method, Failure{URL: target, Message: err.Error()})
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	_, _, err = c.do(req)
	return err
}

// do executes req once. Any network error or status >= 400 comes back as an
// *APIError.
func (c *Client) do(req *http.Request) (*http.Response, []byte, error) {
	method := req.Method
	target := req.URL.String()

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(method).Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("method", method).
		Str("url", target).
		Msg("Executing API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(method, "network_error").Inc()
		return nil, nil, c.fail(method, Failure{URL: target, Message: err.Error()})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		requestsTotal.WithLabelValues(method, "network_error").Inc()
		return nil, nil, c.fail(method, Failure{URL: target, Message: fmt.Sprintf("read response: %v", err)})
	}

	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode >= 400 {
		return nil, nil, c.fail(method, Failure{
			Status:  resp.StatusCode,
			URL:     target,
			Body:    body,
			Message: resp.Status,
		})
	}

	return resp, body, nil
}

// fail normalizes f, records it and returns it.
func (c *Client) fail(method string, f Failure) *APIError {
	apiErr := Normalize(f)
	errorsTotal.WithLabelValues(string(apiErr.Class)).Inc()

	c.logger.Warn().
		Str("method", method).
		Str("url", apiErr.URL).
		Int("status", apiErr.Status).
		Str("error_class", string(apiErr.Class)).
		Str("transport_message", f.Message).
		Msg("API request error")

	return apiErr
}

func (c *Client) url(path string, query url.Values) string {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	return target
}

// CacheKey returns the key under which the response to a GET of path is
// cached. Keys are scoped to the client's base URL.
func (c *Client) CacheKey(path string, query url.Values) cache.CacheKey {
	return cache.CacheKey{Origin: c.baseURL, Endpoint: path, QueryParams: query}
}

// Retrier returns the read retry policy of this client.
func (c *Client) Retrier() *Retrier {
	return c.retrier
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// GetCache returns the cache manager, nil when caching is disabled.
func (c *Client) GetCache() *cache.Manager {
	return c.cache
}
