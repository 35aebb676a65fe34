// Package httpclient is the HTTP transport used for Bot API calls. It logs
// every call by API method name and retries the calls that are safe to
// repeat.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"time"

	"telegraphbot/internal/shared"
	"telegraphbot/pkg/retry"
)

// DefaultIdempotent lists Bot API methods whose repetition has no visible
// effect for users. Sending methods are deliberately absent: a retried
// sendMessage whose first attempt reached Telegram shows up twice in chat.
var DefaultIdempotent = []string{"getMe", "getUpdates", "setWebhook", "deleteWebhook", "setMyCommands", "getFile"}

// Client wraps http.Client. It satisfies bot.HttpClient.
type Client struct {
	hc         *http.Client
	log        *slog.Logger
	retry      retry.Config
	idempotent map[string]struct{}
}

// Option configures Client.
type Option func(*Client)

// WithTimeout sets the overall per-request timeout. For long polling it
// must exceed the poll timeout.
func WithTimeout(t time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = t }
}

// WithLogger sets logger used by client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTransport sets custom transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.hc.Transport = rt
		}
	}
}

// WithRetry replaces the retry policy for idempotent methods.
func WithRetry(cfg retry.Config) Option {
	return func(c *Client) { c.retry = cfg }
}

// WithIdempotentMethods replaces the set of Bot API methods that may be
// retried.
func WithIdempotentMethods(methods ...string) Option {
	return func(c *Client) {
		c.idempotent = make(map[string]struct{}, len(methods))
		for _, m := range methods {
			c.idempotent[m] = struct{}{}
		}
	}
}

// New creates configured Client.
func New(opts ...Option) *Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.MaxIdleConnsPerHost = 16
	tr.IdleConnTimeout = 90 * time.Second
	tr.TLSHandshakeTimeout = 10 * time.Second

	c := &Client{
		hc:  &http.Client{Timeout: 75 * time.Second, Transport: tr},
		log: slog.Default(),
		retry: retry.Config{
			MaxAttempts:  3,
			InitialDelay: 300 * time.Millisecond,
			MaxDelay:     3 * time.Second,
			Multiplier:   2,
			Jitter:       true,
		},
	}
	WithIdempotentMethods(DefaultIdempotent...)(c)
	for _, o := range opts {
		o(c)
	}
	return c
}

// StatusError reports a 5xx answer that was retried away.
type StatusError struct {
	Method string
	Code   int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("telegram %s: unexpected status %d", e.Method, e.Code)
}

// Do performs req. Transport failures are marked shared.KindDependencyFailure.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	method := APIMethod(req)
	if !c.canRetry(req, method) {
		resp, err := c.once(req, method, 1)
		if err != nil {
			return nil, shared.MarkKind(err, shared.KindDependencyFailure)
		}
		return resp, nil
	}

	var (
		resp    *http.Response
		attempt int
	)
	cfg := c.retry
	cfg.OnRetry = func(n int, err error, delay time.Duration) {
		c.log.Warn("telegram api retry",
			slog.String("method", method),
			slog.Int("attempt", n),
			slog.Duration("wait", delay),
			slog.Any("err", err))
	}
	err := retry.DoWithRetryable(req.Context(), cfg, func(ctx context.Context) error {
		attempt++
		r := req
		if attempt > 1 {
			r = req.Clone(ctx)
			if req.GetBody != nil {
				body, err := req.GetBody()
				if err != nil {
					return retry.Permanent(err)
				}
				r.Body = body
			}
		}
		res, err := c.once(r, method, attempt)
		if err != nil {
			return err
		}
		if res.StatusCode >= http.StatusInternalServerError && attempt < cfg.MaxAttempts {
			drainAndClose(res.Body)
			return &StatusError{Method: method, Code: res.StatusCode}
		}
		resp = res
		return nil
	}, retryable)
	if err != nil {
		return nil, shared.MarkKind(err, shared.KindDependencyFailure)
	}
	return resp, nil
}

func (c *Client) once(req *http.Request, method string, attempt int) (*http.Response, error) {
	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		lvl := slog.LevelWarn
		if shared.IsCanceled(err) {
			lvl = slog.LevelDebug
		}
		c.log.Log(req.Context(), lvl, "telegram api error",
			slog.String("method", method),
			slog.Int("attempt", attempt),
			slog.Any("err", err))
		return nil, err
	}
	c.log.Debug("telegram api",
		slog.String("method", method),
		slog.Int("status", resp.StatusCode),
		slog.Duration("dur", time.Since(start)),
		slog.Int("attempt", attempt))
	return resp, nil
}

func (c *Client) canRetry(req *http.Request, method string) bool {
	if _, ok := c.idempotent[method]; !ok {
		return false
	}
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

func retryable(err error) bool {
	var se *StatusError
	return errors.As(err, &se) || retry.DefaultRetryable(err)
}

// APIMethod returns the Bot API method a request targets: the last element
// of ".../bot<token>/<method>".
func APIMethod(req *http.Request) string {
	return path.Base(req.URL.Path)
}

func drainAndClose(b io.ReadCloser) {
	if b == nil {
		return
	}
	_, _ = io.CopyN(io.Discard, b, 64<<10)
	_ = b.Close()
}
