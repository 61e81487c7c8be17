package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ivlev/animchat/internal/config"
)

// ErrGenerationFailure matches every *GenerationError.
var ErrGenerationFailure = errors.New("generation failure")

// Generator is an opaque text-in/text-out service.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
	Name() string
}

// GenerationError reports a failed generator call. Callers decide the
// fallback policy.
type GenerationError struct {
	Backend string
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrGenerationFailure, e.Backend, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

func (e *GenerationError) Is(target error) bool {
	return target == ErrGenerationFailure
}

// New picks the hosted backend when an API key is configured and the local
// one otherwise.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var g Generator
	if cfg.HasAPIKey() {
		gem, err := NewGeminiGenerator(ctx, cfg.LLM)
		if err != nil {
			return nil, err
		}
		g = gem
	} else {
		logger.Info("no API key configured, using local generator")
		g = &LocalGenerator{}
	}
	return WithTimeout(g, cfg.LLM.Timeout), nil
}

type timeoutGenerator struct {
	Generator
	timeout time.Duration
}

// WithTimeout bounds every Generate call of g. A zero timeout returns g unchanged.
func WithTimeout(g Generator, timeout time.Duration) Generator {
	if timeout <= 0 {
		return g
	}
	return &timeoutGenerator{Generator: g, timeout: timeout}
}

func (g *timeoutGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.Generator.Generate(ctx, system, prompt)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		var ge *GenerationError
		if !errors.As(err, &ge) {
			err = &GenerationError{Backend: g.Name(), Err: err}
		}
	}
	return text, err
}
