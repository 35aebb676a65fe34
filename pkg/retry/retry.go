package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"syscall"
	"time"
)

// Config defines retry behaviour.
type Config struct {
	// MaxAttempts counts the first call too.
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	// Jitter spreads each delay uniformly over [delay/2, delay].
	Jitter bool
	// OnRetry is called before each wait.
	OnRetry func(attempt int, err error, delay time.Duration)
	// After replaces time.After in tests.
	After func(d time.Duration) <-chan time.Time
}

// DefaultConfig returns three attempts starting at 200ms.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		Jitter:       true,
	}
}

func (c *Config) normalize() error {
	if c.MaxAttempts <= 0 {
		return errors.New("retry: MaxAttempts must be positive")
	}
	if c.InitialDelay <= 0 {
		return errors.New("retry: InitialDelay must be positive")
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = c.InitialDelay
	}
	if c.MaxDelay < c.InitialDelay {
		return errors.New("retry: MaxDelay must not be less than InitialDelay")
	}
	if c.Multiplier == 0 {
		c.Multiplier = 2
	}
	if c.Multiplier < 1 {
		return errors.New("retry: Multiplier must be >= 1")
	}
	if c.After == nil {
		c.After = time.After
	}
	return nil
}

// Delay returns the wait before attempt+1, without jitter.
func (c Config) Delay(attempt int) time.Duration {
	d := float64(c.InitialDelay)
	for i := 1; i < attempt; i++ {
		d *= c.Multiplier
		if d >= float64(c.MaxDelay) {
			return c.MaxDelay
		}
	}
	return time.Duration(d)
}

func (c Config) jitter(d time.Duration) time.Duration {
	if !c.Jitter || d < 2 {
		return d
	}
	half := d / 2
	return half + rand.N(d-half+1)
}

// Func is an operation that may be retried.
type Func func(ctx context.Context) error

// ExhaustedError is returned when every attempt failed.
type ExhaustedError struct {
	Attempts int
	Last     error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("retry: %d attempts failed: %v", e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error { return e.Last }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Do runs fn until it succeeds, returns a non-retryable error, the context
// ends or attempts run out. Retryability is decided by DefaultRetryable.
func Do(ctx context.Context, cfg Config, fn Func) error {
	return DoWithRetryable(ctx, cfg, fn, DefaultRetryable)
}

// DoWithRetryable is Do with a custom retryability check. Errors wrapped
// with Permanent are never retried and are returned unwrapped.
func DoWithRetryable(ctx context.Context, cfg Config, fn Func, retryable func(error) bool) error {
	if err := cfg.normalize(); err != nil {
		return err
	}

	var last error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if last != nil {
				return last
			}
			return err
		}

		last = fn(ctx)
		if last == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(last, &perm) {
			return perm.err
		}
		if !retryable(last) {
			return last
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		delay := cfg.jitter(cfg.Delay(attempt))
		if deadline, ok := ctx.Deadline(); ok {
			if remaining := time.Until(deadline); delay > remaining {
				return last
			}
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, last, delay)
		}
		select {
		case <-ctx.Done():
			return last
		case <-cfg.After(delay):
		}
	}
	return &ExhaustedError{Attempts: cfg.MaxAttempts, Last: last}
}

// DefaultRetryable reports transient network failures: timeouts, resets,
// refused connections and truncated responses. Cancellation is never retried.
func DefaultRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) && dnsErr.IsTemporary {
		return true
	}
	for _, target := range []error{
		io.EOF, io.ErrUnexpectedEOF, net.ErrClosed,
		syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ECONNABORTED,
		syscall.EPIPE, syscall.ENETUNREACH, syscall.EHOSTUNREACH, syscall.ETIMEDOUT,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
