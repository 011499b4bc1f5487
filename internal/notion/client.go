package notion

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

	"github.com/avast/retry-go/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.notion.com/v1"
	DefaultVersion = "2022-06-28"

	defaultPageSize        = 100
	defaultRetryAttempts   = 3
	defaultRetryDelay      = 200 * time.Millisecond
	defaultBreakerFailures = 5
	defaultBreakerTimeout  = 30 * time.Second
)

var (
	// ErrMissingToken is returned by every call when no integration token is configured.
	ErrMissingToken = errors.New("notion: integration token is not configured")
	// ErrBackendUnavailable is returned while the circuit breaker is open.
	ErrBackendUnavailable = errors.New("notion: backend unavailable")
	// ErrMalformedResponse wraps response bodies that could not be decoded.
	ErrMalformedResponse = errors.New("notion: malformed response")
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("notion: http %d", e.Status)
	}
	return fmt.Sprintf("notion: http %d %s: %s", e.Status, e.Code, e.Message)
}

// Transient reports whether the request may succeed when repeated.
func (e *APIError) Transient() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// IsNotFound reports whether err is an API 404.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// ClientConfig configures a Client. Zero values fall back to defaults.
type ClientConfig struct {
	Token           string
	BaseURL         string
	Version         string
	HTTPClient      *http.Client
	Logger          *zap.Logger
	RetryAttempts   uint
	RetryDelay      time.Duration
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// Client talks to the Notion REST API.
type Client struct {
	token      string
	baseURL    string
	version    string
	httpClient *http.Client
	logger     *zap.Logger
	attempts   uint
	delay      time.Duration
	breaker    *gobreaker.CircuitBreaker
}

// NewClient builds a client. A missing token is reported on first use, not here.
func NewClient(cfg ClientConfig) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = DefaultVersion
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	attempts := cfg.RetryAttempts
	if attempts == 0 {
		attempts = defaultRetryAttempts
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = defaultBreakerFailures
	}
	breakerTimeout := cfg.BreakerTimeout
	if breakerTimeout <= 0 {
		breakerTimeout = defaultBreakerTimeout
	}

	client := &Client{
		token:      strings.TrimSpace(cfg.Token),
		baseURL:    baseURL,
		version:    version,
		httpClient: httpClient,
		logger:     logger,
		attempts:   attempts,
		delay:      delay,
	}
	client.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notion",
		MaxRequests: 1,
		Timeout:     breakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !isTransient(err)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("notion circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return client
}

// QueryDatabase returns one cursor page of the database's pages.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, cursor string) (PageList, error) {
	body := map[string]any{"page_size": defaultPageSize}
	if cursor != "" {
		body["start_cursor"] = cursor
	}
	var list PageList
	err := c.do(ctx, http.MethodPost, "/databases/"+url.PathEscape(NormalizeID(databaseID))+"/query", nil, body, &list)
	return list, err
}

// RetrievePage returns a page's metadata and properties.
func (c *Client) RetrievePage(ctx context.Context, pageID string) (Page, error) {
	var page Page
	err := c.do(ctx, http.MethodGet, "/pages/"+url.PathEscape(NormalizeID(pageID)), nil, nil, &page)
	return page, err
}

// ListBlockChildren returns one cursor page of a block's direct children.
func (c *Client) ListBlockChildren(ctx context.Context, blockID string, cursor string) (BlockList, error) {
	query := url.Values{}
	query.Set("page_size", strconv.Itoa(defaultPageSize))
	if cursor != "" {
		query.Set("start_cursor", cursor)
	}
	var list BlockList
	err := c.do(ctx, http.MethodGet, "/blocks/"+url.PathEscape(NormalizeID(blockID))+"/children", query, nil, &list)
	return list, err
}

// RetrieveBlock returns a single block without its children.
func (c *Client) RetrieveBlock(ctx context.Context, blockID string) (Block, error) {
	var block Block
	err := c.do(ctx, http.MethodGet, "/blocks/"+url.PathEscape(NormalizeID(blockID)), nil, nil, &block)
	return block, err
}

func (c *Client) do(ctx context.Context, method string, path string, query url.Values, body any, out any) error {
	if c.token == "" {
		return ErrMissingToken
	}
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, retry.Do(
			func() error {
				return c.send(ctx, method, path, query, body, out)
			},
			retry.Context(ctx),
			retry.Attempts(c.attempts),
			retry.Delay(c.delay),
			retry.DelayType(retry.BackOffDelay),
			retry.LastErrorOnly(true),
			retry.RetryIf(isTransient),
			retry.OnRetry(func(attempt uint, err error) {
				c.logger.Debug("retrying notion request",
					zap.String("method", method),
					zap.String("path", path),
					zap.Uint("attempt", attempt+1),
					zap.Error(err))
			}),
		)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return err
}

func (c *Client) send(ctx context.Context, method string, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return retry.Unrecoverable(fmt.Errorf("notion: encode request: %w", err))
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	request, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return retry.Unrecoverable(fmt.Errorf("notion: build request: %w", err))
	}
	request.Header.Set("Authorization", "Bearer "+c.token)
	request.Header.Set("Notion-Version", c.version)
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		apiErr := &APIError{}
		if decodeErr := json.NewDecoder(io.LimitReader(response.Body, 64<<10)).Decode(apiErr); decodeErr != nil {
			apiErr.Message = ""
		}
		apiErr.Status = response.StatusCode
		return apiErr
	}

	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return nil
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrMissingToken) || errors.Is(err, ErrMalformedResponse) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Transient()
	}
	return true
}
