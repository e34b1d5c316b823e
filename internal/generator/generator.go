// Package generator provides the pluggable text-generation capability used by
// the analysis and recommendation stages.
package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pet-doctor/internal/common/config"
	apperrors "pet-doctor/internal/common/errors"
)

// ErrUnavailable is returned by backends that cannot serve requests.
var ErrUnavailable = errors.New("generator unavailable")

// Generator produces text for a prompt with optional supporting context.
type Generator interface {
	Generate(ctx context.Context, prompt, context string) (string, error)
	Name() string
}

// New builds the configured backend. Provider "none" yields a generator that
// always reports ErrUnavailable so the stages take their deterministic path.
func New(ctx context.Context, cfg config.GeneratorConfig) (Generator, error) {
	switch cfg.Provider {
	case "", "none":
		return Unavailable{}, nil
	case "genai":
		return NewGenAIClient(cfg), nil
	case "ollama":
		return NewOllamaClient(cfg), nil
	case "gemini":
		return NewGeminiClient(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown generator provider: %s", cfg.Provider)
	}
}

// Unavailable is the generator used when no backend is configured.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string, string) (string, error) {
	return "", ErrUnavailable
}

func (Unavailable) Name() string { return "none" }

// Call runs g bounded by timeout. Every failure is returned as a
// StandardError: GENERATOR_TIMEOUT when the deadline passed, otherwise
// GENERATOR_UNAVAILABLE. Blank output counts as a failure.
func Call(ctx context.Context, g Generator, timeout time.Duration, prompt, supporting string) (string, error) {
	if g == nil {
		return "", apperrors.NewGeneratorUnavailableError(ErrUnavailable)
	}

	callCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	text, err := g.Generate(callCtx, prompt, supporting)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return "", apperrors.NewGeneratorTimeoutError(timeout)
		}
		return "", apperrors.NewGeneratorUnavailableError(err)
	}
	if callCtx.Err() != nil {
		return "", apperrors.NewGeneratorTimeoutError(timeout)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", apperrors.NewGeneratorUnavailableError(errors.New("empty completion"))
	}
	return text, nil
}

// Budget bounds timeout by the caller's deadline minus reserve, the time kept
// back for the stages that still have to run after the call. It returns zero
// when nothing is left.
func Budget(ctx context.Context, timeout, reserve time.Duration) time.Duration {
	deadline, ok := ctx.Deadline()
	if !ok {
		return timeout
	}
	left := time.Until(deadline) - reserve
	if left <= 0 {
		return 0
	}
	if timeout <= 0 || left < timeout {
		return left
	}
	return timeout
}

// CallWithin is Call bounded by Budget. When the caller has no time left
// beyond reserve, g is not called and a GENERATOR_TIMEOUT error is returned
// so the stage falls back.
func CallWithin(ctx context.Context, g Generator, timeout, reserve time.Duration, prompt, supporting string) (string, error) {
	budget := Budget(ctx, timeout, reserve)
	if budget <= 0 {
		return "", apperrors.NewGeneratorTimeoutError(0)
	}
	return Call(ctx, g, budget, prompt, supporting)
}

// FallbackReason labels a Call error for metrics.
func FallbackReason(err error) string {
	switch {
	case apperrors.HasCode(err, apperrors.ErrCodeGeneratorTimeout):
		return "timeout"
	case errors.Is(err, ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}
