// Package ai wraps the chat-completion providers used to draft journal reviews.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrNotConfigured   = errors.New("ai provider not configured")
	ErrEmptyCompletion = errors.New("ai provider returned no content")
)

// Completer turns one prompt into one completion.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int) (string, error)
}

type Options struct {
	Provider string
	BaseURL  string
	APIKey   string
	Model    string
	Timeout  time.Duration
}

const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

// New returns the completer for opts.Provider. A missing API key yields a
// completer that always fails with ErrNotConfigured so reviews still record a
// fallback entry.
func New(ctx context.Context, opts Options) (Completer, error) {
	provider := strings.ToLower(strings.TrimSpace(opts.Provider))
	if provider == "" {
		provider = ProviderOpenAI
	}
	if provider == ProviderNone || strings.TrimSpace(opts.APIKey) == "" {
		return Unavailable{Provider: provider}, nil
	}
	switch provider {
	case ProviderOpenAI:
		return NewOpenAICompleter(opts), nil
	case ProviderGemini:
		return NewGeminiCompleter(ctx, opts)
	case ProviderAnthropic:
		return NewAnthropicCompleter(opts), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", opts.Provider)
	}
}

// Unavailable is the completer used when no provider is configured.
type Unavailable struct {
	Provider string
}

func (u Unavailable) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return "", fmt.Errorf("%w: %s", ErrNotConfigured, u.Provider)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, prompt string, maxTokens int) (string, error)

func (f CompleterFunc) Complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	return f(ctx, prompt, maxTokens)
}

func checkText(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrEmptyCompletion
	}
	return s, nil
}
