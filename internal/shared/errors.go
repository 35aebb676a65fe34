// Package shared contains error sentinels and classification used across
// the bot's layers.
package shared

import (
	"context"
	"errors"
	"fmt"
	"net"
)

var (
	// ErrValidation indicates invalid input or configuration.
	ErrValidation = errors.New("validation failed")

	// ErrForbidden indicates that the sender may not use the bot.
	ErrForbidden = errors.New("forbidden")

	// ErrTimeout indicates that an operation timed out.
	ErrTimeout = errors.New("operation timed out")

	// ErrDependencyFailure indicates that the Telegram Bot API or another
	// remote dependency failed.
	ErrDependencyFailure = errors.New("dependency failure")

	// ErrInternal indicates a bug or an unexpected condition.
	ErrInternal = errors.New("internal error")
)

// Kind is a coarse error category used for logging and exit decisions.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindForbidden
	KindTimeout
	KindDependencyFailure
	KindInternal
	KindCanceled
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "Validation"
	case KindForbidden:
		return "Forbidden"
	case KindTimeout:
		return "Timeout"
	case KindDependencyFailure:
		return "DependencyFailure"
	case KindInternal:
		return "Internal"
	case KindCanceled:
		return "Canceled"
	default:
		return "Unknown"
	}
}

// Checked in order; the first match wins.
var sentinels = []struct {
	kind Kind
	err  error
}{
	{KindValidation, ErrValidation},
	{KindForbidden, ErrForbidden},
	{KindDependencyFailure, ErrDependencyFailure},
	{KindInternal, ErrInternal},
}

// KindOf classifies err. Cancellation and timeouts take precedence over
// sentinel matches, so a canceled API call reports KindCanceled even when
// the transport marked it as a dependency failure.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindUnknown
	case IsCanceled(err):
		return KindCanceled
	case IsTimeout(err):
		return KindTimeout
	}
	for _, s := range sentinels {
		if errors.Is(err, s.err) {
			return s.kind
		}
	}
	return KindUnknown
}

// SentinelOf returns the sentinel for kind, or nil for KindUnknown and
// KindCanceled.
func SentinelOf(kind Kind) error {
	if kind == KindTimeout {
		return ErrTimeout
	}
	for _, s := range sentinels {
		if s.kind == kind {
			return s.err
		}
	}
	return nil
}

// MarkKind wraps err with the sentinel for kind, keeping err in the chain.
// Errors that already classify as kind are returned unchanged.
func MarkKind(err error, kind Kind) error {
	sentinel := SentinelOf(kind)
	if err == nil {
		return sentinel
	}
	if sentinel == nil || KindOf(err) == kind {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}

// Wrap returns "msg: err", or nil when err is nil.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	if msg == "" {
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf is Wrap with a formatted message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// IsCanceled reports whether err stems from a canceled context.
func IsCanceled(err error) bool {
	return err != nil && errors.Is(err, context.Canceled)
}

// IsTimeout reports deadline, ErrTimeout and net timeout errors.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
