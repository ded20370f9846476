package questions

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/ankitpasayat/confident-trivia/game/engine"
)

// ErrUnavailable reports that a source (or every source in a chain) could
// not supply questions.
var ErrUnavailable = errors.New("question source unavailable")

// Options narrows generation to specific categories or difficulties. Empty
// slices mean "anything".
type Options struct {
	Categories   []string
	Difficulties []engine.Difficulty
}

// Source supplies a sequence of questions for a round count.
type Source interface {
	// Name identifies the source in logs and chain errors.
	Name() string
	// Generate returns up to count questions, or ErrUnavailable.
	Generate(ctx context.Context, count int, opts Options) ([]engine.Question, error)
}

// Chain tries each source in order and returns the first usable result.
type Chain struct {
	sources []Source
}

// NewChain builds a fallback chain; sources are tried in argument order.
func NewChain(sources ...Source) *Chain {
	return &Chain{sources: sources}
}

func (c *Chain) Name() string { return "chain" }

// Generate walks the chain. Individual failures are logged and swallowed;
// the combined error surfaces only when every source fails.
func (c *Chain) Generate(ctx context.Context, count int, opts Options) ([]engine.Question, error) {
	errs := []error{ErrUnavailable}
	for _, src := range c.sources {
		qs, err := src.Generate(ctx, count, opts)
		if err == nil && len(qs) > 0 {
			return qs, nil
		}
		if err == nil {
			err = errors.New("returned no questions")
		}
		log.Printf("[QUESTIONS] source %s failed, trying next: %v", src.Name(), err)
		errs = append(errs, fmt.Errorf("%s: %w", src.Name(), err))
	}
	return nil, errors.Join(errs...)
}
