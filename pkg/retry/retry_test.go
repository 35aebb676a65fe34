package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"
	"time"
)

func instant(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

func testConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 10 * time.Millisecond, After: instant}
}

func TestDo_SucceedsAfterTransientErrors(t *testing.T) {
	calls := 0
	var delays []time.Duration
	cfg := testConfig(5)
	cfg.OnRetry = func(_ int, _ error, d time.Duration) { delays = append(delays, d) }

	err := Do(context.Background(), cfg, func(context.Context) error {
		calls++
		if calls < 3 {
			return io.ErrUnexpectedEOF
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
	if len(delays) != 2 || delays[0] != time.Millisecond || delays[1] != 2*time.Millisecond {
		t.Fatalf("delays = %v", delays)
	}
}

func TestDo_NonRetryableReturnsImmediately(t *testing.T) {
	want := errors.New("bad request")
	calls := 0
	err := Do(context.Background(), testConfig(5), func(context.Context) error {
		calls++
		return want
	})
	if err != want {
		t.Fatalf("err = %v, want %v", err, want)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDo_Permanent(t *testing.T) {
	want := io.EOF
	calls := 0
	err := Do(context.Background(), testConfig(5), func(context.Context) error {
		calls++
		return Permanent(want)
	})
	if err != want || calls != 1 {
		t.Fatalf("err = %v calls = %d", err, calls)
	}
	if Permanent(nil) != nil {
		t.Fatal("Permanent(nil) should be nil")
	}
}

func TestDo_Exhausted(t *testing.T) {
	calls := 0
	err := Do(context.Background(), testConfig(3), func(context.Context) error {
		calls++
		return io.EOF
	})
	var ex *ExhaustedError
	if !errors.As(err, &ex) {
		t.Fatalf("expected ExhaustedError, got %T", err)
	}
	if ex.Attempts != 3 || calls != 3 {
		t.Fatalf("attempts = %d calls = %d", ex.Attempts, calls)
	}
	if !errors.Is(err, io.EOF) {
		t.Fatal("ExhaustedError should unwrap to the last error")
	}
}

func TestDo_ContextCanceledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cfg := testConfig(5)
	cfg.After = func(time.Duration) <-chan time.Time {
		cancel()
		return make(chan time.Time)
	}
	calls := 0
	err := Do(ctx, cfg, func(context.Context) error {
		calls++
		return io.EOF
	})
	if err != io.EOF {
		t.Fatalf("err = %v, want last operation error", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestDo_CanceledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, testConfig(3), func(context.Context) error {
		t.Fatal("fn must not run")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestDo_InvalidConfig(t *testing.T) {
	for _, cfg := range []Config{
		{MaxAttempts: 0, InitialDelay: time.Millisecond},
		{MaxAttempts: 1},
		{MaxAttempts: 1, InitialDelay: time.Second, MaxDelay: time.Millisecond},
		{MaxAttempts: 1, InitialDelay: time.Millisecond, Multiplier: 0.5},
	} {
		if err := Do(context.Background(), cfg, func(context.Context) error { return nil }); err == nil {
			t.Errorf("expected error for %+v", cfg)
		}
	}
}

func TestDelay(t *testing.T) {
	cfg := Config{InitialDelay: 100 * time.Millisecond, MaxDelay: time.Second, Multiplier: 2}
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond, time.Second, time.Second}
	for i, w := range want {
		if got := cfg.Delay(i + 1); got != w {
			t.Errorf("Delay(%d) = %v, want %v", i+1, got, w)
		}
	}
}

func TestJitterBounds(t *testing.T) {
	cfg := Config{Jitter: true}
	for i := 0; i < 100; i++ {
		d := cfg.jitter(time.Second)
		if d < 500*time.Millisecond || d > time.Second {
			t.Fatalf("jitter out of range: %v", d)
		}
	}
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestDefaultRetryable(t *testing.T) {
	reset := &net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)}
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"net timeout", timeoutErr{}, true},
		{"eof", fmt.Errorf("read body: %w", io.EOF), true},
		{"conn reset", reset, true},
		{"temporary dns", &net.DNSError{IsTemporary: true}, true},
		{"plain", errors.New("400 bad request"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultRetryable(tt.err); got != tt.want {
				t.Errorf("DefaultRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
