// Package backend is a client for the SmartGwiza prediction backend.
package backend

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

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/smartgwiza/reports-cli/internal/model"
	"github.com/smartgwiza/reports-cli/internal/resilience"
)

// DefaultBaseURL is the hosted backend.
const DefaultBaseURL = "https://smartgwiza-be-1.onrender.com"

var (
	// ErrUnauthorized means the token is missing, expired or rejected. The
	// caller should drop the session.
	ErrUnauthorized = eris.New("backend: session expired, please log in again")
	// ErrForbidden means the user lacks admin privileges.
	ErrForbidden = eris.New("backend: access denied, admin privileges required")
)

// APIError is a non-retryable error response. 401 and 403 unwrap to
// ErrUnauthorized and ErrForbidden.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend: status %d: %s", e.Status, e.Message)
}

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token() (string, error)
}

// StaticToken is a fixed TokenSource.
type StaticToken string

// Token returns the token itself.
func (s StaticToken) Token() (string, error) { return string(s), nil }

// Client reads the admin and prediction endpoints.
type Client interface {
	Login(ctx context.Context, phone, password string) (*model.Session, error)
	Farmers(ctx context.Context, page, limit int) (*model.FarmerPage, error)
	RecentSubmissions(ctx context.Context, limit int) ([]model.RawRecord, error)
	YieldTrends(ctx context.Context, days int) ([]model.RawRecord, error)
	Stats(ctx context.Context) (*model.AdminStats, error)
	PredictionHistory(ctx context.Context, limit int) ([]model.RawRecord, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides DefaultBaseURL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) { c.http = hc }
}

// WithTokenSource sets where bearer tokens come from.
func WithTokenSource(ts TokenSource) Option {
	return func(c *httpClient) { c.tokens = ts }
}

// WithRateLimit caps outgoing requests per second.
func WithRateLimit(perSec float64, burst int) Option {
	return func(c *httpClient) {
		if perSec > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(perSec), max(burst, 1))
		}
	}
}

// WithRetryPolicy overrides resilience.DefaultPolicy.
func WithRetryPolicy(p resilience.Policy) Option {
	return func(c *httpClient) { c.retry = p }
}

// WithBreaker shares a circuit breaker across clients.
func WithBreaker(b *resilience.Breaker) Option {
	return func(c *httpClient) { c.breaker = b }
}

type httpClient struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	limiter *rate.Limiter
	retry   resilience.Policy
	breaker *resilience.Breaker
}

// NewClient creates a backend client.
func NewClient(opts ...Option) Client {
	c := &httpClient{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(5, 5),
		retry:   resilience.DefaultPolicy(),
		breaker: resilience.NewBreaker(5, 30*time.Second),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// do sends one request with limiting, circuit breaking and retries and
// returns the response body of a 2xx reply.
func (c *httpClient) do(ctx context.Context, method, path string, query url.Values, payload any, auth bool) ([]byte, error) {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return nil, eris.Wrap(err, "backend: marshal request")
		}
	}

	var token string
	if auth {
		if c.tokens == nil {
			return nil, ErrUnauthorized
		}
		t, err := c.tokens.Token()
		if err != nil || t == "" {
			return nil, ErrUnauthorized
		}
		token = t
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	p := c.retry
	if p.OnRetry == nil {
		p.OnRetry = resilience.LogRetry(method + " " + path)
	}
	return resilience.Do(ctx, p, func(ctx context.Context) ([]byte, error) {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, eris.Wrap(err, "backend: rate limit wait")
		}
		if err := c.breaker.Allow(); err != nil {
			return nil, err
		}
		out, err := c.send(ctx, method, target, body, token)
		if err != nil && ctx.Err() != nil {
			c.breaker.Release()
			return out, err
		}
		c.breaker.Record(err)
		return out, err
	})
}

func (c *httpClient) send(ctx context.Context, method, target string, body []byte, token string) ([]byte, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return nil, eris.Wrap(err, "backend: create request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "backend: send request")
	}
	defer resp.Body.Close() //nolint:errcheck

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resilience.Transient(eris.Wrap(err, "backend: read response"), 0)
	}

	zap.L().Debug("backend request",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, nil
	case resilience.IsTransientStatus(resp.StatusCode):
		return nil, resilience.Transient(eris.Errorf("backend: unexpected status %d", resp.StatusCode), resp.StatusCode)
	}
	return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(respBody, resp.StatusCode)}
}

// errorMessage pulls "detail" or "message" out of an error body.
func errorMessage(body []byte, status int) string {
	var m map[string]any
	if json.Unmarshal(body, &m) == nil {
		for _, k := range []string{"detail", "message", "error"} {
			if s, ok := m[k].(string); ok && s != "" {
				return s
			}
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) < 200 {
		return text
	}
	return http.StatusText(status)
}

func limitQuery(key string, n int) url.Values {
	q := url.Values{}
	if n > 0 {
		q.Set(key, strconv.Itoa(n))
	}
	return q
}
