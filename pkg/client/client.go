// Package client provides the HTTP adapter for the paginated users
// listing endpoint, with error classification, metrics and opt-in retries.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/users-pagination/pkg/logging"
	"github.com/Sternrassler/users-pagination/pkg/ratelimit"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for listing requests.
var (
	usersRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_requests_total",
		Help: "Total users listing requests by endpoint and status",
	}, []string{"endpoint", "status"})

	usersRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "users_request_duration_seconds",
		Help:    "Users listing request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	usersErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "users_errors_total",
		Help: "Total users listing errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 Too Many Requests.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassDecode represents 2xx responses with an unusable body.
	ErrorClassDecode ErrorClass = "decode"

	// ErrorClassUnexpected represents any other non-2xx status.
	ErrorClassUnexpected ErrorClass = "unexpected"
)

// DefaultUsersPath is the listing endpoint path on the backend.
const DefaultUsersPath = "/api/v1/users"

// RequestIDHeader carries a per-request id; retries of one request reuse it.
const RequestIDHeader = "X-Request-ID"

var validate = validator.New()

// Client is the users listing client.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	config     Config
	limiter    *ratelimit.Tracker
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL of the backend, e.g. "http://localhost:8080". Required.
	BaseURL string

	// UsersPath is appended to BaseURL for listing requests.
	UsersPath string

	// UserAgent header sent with every request.
	UserAgent string

	// Timeout for the underlying http.Client. Zero leaves timing to the
	// caller's context.
	Timeout time.Duration

	// Retry (disabled when MaxRetries is 0)
	MaxRetries     int
	InitialBackoff time.Duration
}

// DefaultConfig returns a configuration for baseURL with retries disabled
// and no timeout override.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		UsersPath:      DefaultUsersPath,
		UserAgent:      "users-pagination/0.1.0",
		MaxRetries:     0,
		InitialBackoff: 1 * time.Second,
	}
}

// New creates a new users client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base url is required")
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, fmt.Errorf("base url must be an absolute http(s) url (got %q)", cfg.BaseURL)
	}

	if cfg.UsersPath == "" {
		cfg.UsersPath = DefaultUsersPath
	}

	if cfg.MaxRetries < 0 {
		return nil, fmt.Errorf("max_retries must be >= 0 (got %d)", cfg.MaxRetries)
	}

	if cfg.MaxRetries > 0 && cfg.InitialBackoff <= 0 {
		return nil, fmt.Errorf("initial_backoff must be > 0 when retries are enabled")
	}

	logger := logging.NewLogger(logging.ComponentClient)

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: base,
		config:  cfg,
		limiter: ratelimit.NewTracker(logger),
		logger:  logger,
	}, nil
}

// FetchUsers requests one page of the users listing.
// Any failure is returned as a *TransportError, except an out of range
// query which fails with ErrInvalidQuery before a request is made.
func (c *Client) FetchUsers(ctx context.Context, q Query) (*PageResponse, error) {
	if err := validate.Struct(q); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.usersURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var page PageResponse
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, c.malformed(req.URL.Path, resp.StatusCode, "decode response body", err)
	}

	if err := validate.Struct(&page); err != nil {
		return nil, c.malformed(req.URL.Path, resp.StatusCode, "validate response body", err)
	}

	c.logger.Debug().
		Str("name", q.Name).
		Int("page", page.Data.Number).
		Int("size", page.Data.Size).
		Int("total_pages", page.Data.TotalPages).
		Int64("total_elements", page.Data.TotalElements).
		Msg("Fetched users page")

	return &page, nil
}

// usersURL builds the listing URL. All three parameters are always sent.
func (c *Client) usersURL(q Query) string {
	u := c.baseURL.JoinPath(c.config.UsersPath)
	params := url.Values{}
	params.Set("name", q.Name)
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("size", strconv.Itoa(q.Size))
	u.RawQuery = params.Encode()
	return u.String()
}

func (c *Client) malformed(endpoint string, status int, msg string, err error) error {
	usersErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
	c.logger.Warn().
		Err(err).
		Str("endpoint", endpoint).
		Int("status", status).
		Msg("Malformed users response")
	return &TransportError{
		StatusCode: status,
		ErrorClass: ErrorClassDecode,
		Message:    msg,
		Err:        fmt.Errorf("%w: %w", ErrMalformedResponse, err),
	}
}

// Do performs an HTTP request with error classification, metrics and the
// configured retry policy. A nil error guarantees a 2xx response whose body
// the caller must close.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	endpoint := req.URL.Path

	startTime := time.Now()
	defer func() {
		usersRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, uuid.NewString())
	}
	requestID := req.Header.Get(RequestIDHeader)

	c.logger.Debug().
		Str("endpoint", endpoint).
		Str("request_id", requestID).
		Str("method", req.Method).
		Str("query", req.URL.RawQuery).
		Msg("Executing users request")

	var resp *http.Response
	var errClass ErrorClass

	err := retryWithBackoff(ctx, c.retryConfig(), func() ErrorClass {
		return errClass
	}, func() error {
		if allowed, wait := c.limiter.ShouldAllowRequest(); !allowed {
			errClass = ErrorClassRateLimit
			usersErrorsTotal.WithLabelValues(string(errClass)).Inc()
			return &TransportError{
				StatusCode: http.StatusTooManyRequests,
				ErrorClass: errClass,
				Message:    fmt.Sprintf("backing off for %s", wait.Round(time.Millisecond)),
				Err:        ErrBackoffActive,
			}
		}

		var reqErr error
		resp, reqErr = c.httpClient.Do(req)

		if reqErr != nil {
			errClass = c.classifyError(nil, reqErr)
			usersErrorsTotal.WithLabelValues(string(errClass)).Inc()
			usersRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
			c.logger.Error().Err(reqErr).Str("endpoint", endpoint).Str("request_id", requestID).Msg("HTTP request failed")
			return &TransportError{
				ErrorClass: errClass,
				Message:    "request failed",
				Err:        reqErr,
			}
		}

		usersRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()
		c.limiter.UpdateFromResponse(resp.StatusCode, resp.Header)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			errClass = c.classifyError(resp, nil)
			usersErrorsTotal.WithLabelValues(string(errClass)).Inc()

			c.logger.Warn().
				Str("endpoint", endpoint).
				Int("status", resp.StatusCode).
				Str("request_id", requestID).
				Str("error_class", string(errClass)).
				Msg("Users request error")

			resp.Body.Close()
			return &TransportError{
				StatusCode: resp.StatusCode,
				ErrorClass: errClass,
				Message:    resp.Status,
			}
		}

		return nil
	})
	if err != nil {
		var te *TransportError
		if errors.As(err, &te) && te.ErrorClass == ErrorClassNetwork && ctx.Err() != nil {
			c.logger.Debug().Err(ctx.Err()).Str("endpoint", endpoint).Msg("Request abandoned by caller")
		}
		return nil, err
	}

	return resp, nil
}

func (c *Client) retryConfig() RetryConfig {
	rc := DefaultRetryConfig()
	rc.MaxAttempts = c.config.MaxRetries + 1
	if c.config.InitialBackoff > 0 {
		rc.InitialBackoff = c.config.InitialBackoff
	}
	return rc
}

// classifyError categorizes a failure for observability and retry decisions.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return ""
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return ErrorClassClient
	case resp.StatusCode >= 500:
		return ErrorClassServer
	default:
		return ErrorClassUnexpected
	}
}
