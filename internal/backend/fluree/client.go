// Package fluree is the remote store client: it issues query and transact
// calls against a Fluree-style ledger over HTTP.
package fluree

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"golang.org/x/oauth2"

	"todolists/internal/config"
)

const (
	// APITimeout is the default timeout for remote calls.
	APITimeout = config.DefaultTimeout

	// maxErrorBody caps how much of an error response is kept.
	maxErrorBody = 512

	opQuery    = "query"
	opTransact = "transact"
)

// Client talks to one ledger.
type Client struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	timeout    time.Duration
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBreaker replaces the circuit breaker settings.
func WithBreaker(failures uint32, cooldown time.Duration) Option {
	return func(c *Client) {
		c.breaker = newBreaker(failures, cooldown, c.logger)
	}
}

// New creates a client for the ledger configured in cfg. When cfg.Token is
// set every request carries it as a bearer token.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	httpClient := &http.Client{}
	if cfg.Token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
		httpClient = oauth2.NewClient(ctx, ts)
	}

	return NewWithHTTPClient(cfg.BaseURL(), httpClient,
		WithLogger(logger),
		WithTimeout(cfg.Timeout),
		WithBreaker(cfg.BreakerFailures, cfg.BreakerCooldown),
	), nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// baseURL is the ledger prefix, e.g. http://localhost:8080/fdb/todo/lists.
func NewWithHTTPClient(baseURL string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		timeout:    APITimeout,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = newBreaker(config.DefaultBreakerFailures, config.DefaultBreakerCooldown, c.logger)
	}
	return c
}

// newBreaker opens after `failures` consecutive unavailability errors.
// Rejections and query errors are answers from a live store and do not count.
func newBreaker(failures uint32, cooldown time.Duration, logger *slog.Logger) *gobreaker.CircuitBreaker {
	if failures == 0 {
		failures = config.DefaultBreakerFailures
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "remote-store",
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, ErrRemoteUnavailable)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if logger != nil {
				logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
			}
		},
	})
}

// Query runs q and decodes the response array into out.
func (c *Client) Query(ctx context.Context, q Query, out any) error {
	return c.post(ctx, opQuery, "/query", q, out, ErrRemoteError)
}

// QueryLists fetches every list with nested tasks and assignees, ascending by id.
func (c *Client) QueryLists(ctx context.Context) ([]ListRecord, error) {
	var lists []ListRecord
	if err := c.Query(ctx, ListsQuery(), &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

// Transact submits items as one atomic batch and returns the tempid mapping.
func (c *Client) Transact(ctx context.Context, items []TxItem) (TxResult, error) {
	if len(items) == 0 {
		return TxResult{}, fmt.Errorf("%s: empty transaction", opTransact)
	}
	var result TxResult
	if err := c.post(ctx, opTransact, "/transact", items, &result, ErrTransactionRejected); err != nil {
		return TxResult{}, err
	}
	if result.TempIDs == nil {
		result.TempIDs = map[string]ID{}
	}
	return result, nil
}

// post sends body as JSON through the breaker. statusKind classifies non-2xx
// responses.
func (c *Client) post(ctx context.Context, op, path string, body, out any, statusKind error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", op, err)
	}

	requestID := uuid.NewString()
	start := time.Now()

	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.do(ctx, op, path, requestID, payload, out, statusKind)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		err = wrapError(op, err)
	}

	c.logger.Debug("remote call",
		"op", op,
		"request_id", requestID,
		"duration", time.Since(start),
		"error", err,
	)
	return err
}

func (c *Client) do(ctx context.Context, op, path, requestID string, payload []byte, out any, statusKind error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%s: %w: %v", op, ErrRemoteUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return wrapError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(data)),
			Kind:       statusKind,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		// A deadline or cancellation while reading the body is a transport
		// failure, not a malformed response.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return wrapError(op, ctxErr)
		}
		return fmt.Errorf("%s: %w: decode response: %w", op, ErrRemoteError, err)
	}
	return nil
}
