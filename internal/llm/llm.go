// Package llm defines the completion contract shared by provider adapters.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Client sends one prompt and returns the completion text.
type Client interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrProviderUnavailable covers missing credentials, transport failures,
	// timeouts, non-2xx responses and blocked prompts.
	ErrProviderUnavailable = errors.New("llm provider unavailable")
	// ErrEmptyCompletion is returned when the provider answered without text.
	ErrEmptyCompletion = errors.New("llm returned empty completion")
)

// ProviderConfig is built once at startup and handed to an adapter.
type ProviderConfig struct {
	Provider        string
	Model           string
	APIKey          string
	BaseURL         string
	SafetyThreshold string
	Temperature     float64
	Timeout         time.Duration
}

// Unavailable wraps a provider failure so it matches ErrProviderUnavailable.
func Unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrProviderUnavailable, fmt.Sprintf(format, args...))
}

// Unconfigured fails every call. It lets the server start without credentials.
type Unconfigured struct {
	Provider string
}

// Complete returns ErrProviderUnavailable.
func (u Unconfigured) Complete(context.Context, string) (string, error) {
	return "", Unavailable("%s api key is not configured", u.Provider)
}

// Func adapts a function to Client.
type Func func(ctx context.Context, prompt string) (string, error)

// Complete calls f.
func (f Func) Complete(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// TruncateRunes trims s and caps it at n runes.
func TruncateRunes(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
