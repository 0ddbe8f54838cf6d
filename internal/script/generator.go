package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/paper2gal/paper2gal/internal/providers"
)

const (
	fallbackEmptyChunk = "This part looks empty... did you upload a scanned copy, maybe?"
	fallbackExhausted  = "Ugh... the author wrote this part so tangled that I couldn't shape it into a proper script. Let's keep reading with a simplified version, nya!"

	// excerptRunes is how much of the original chunk the degraded script
	// carries as a hint.
	excerptRunes = 260
)

var errEmptyScript = errors.New("normalization produced no items")

// GeneratorConfig configures a Generator.
type GeneratorConfig struct {
	// Client is the chat backend. Required.
	Client providers.ChatClient

	// Model overrides the client default model if set.
	Model string

	// Temperature for generation (default: 0.7).
	Temperature float64

	// MaxRetries is the number of extra attempts after the first failure
	// (default: 2, i.e. 3 attempts total).
	MaxRetries int

	// RequestTimeout bounds a single model call (default: 60s).
	RequestTimeout time.Duration

	// Logger for attempt-level diagnostics.
	Logger *slog.Logger
}

// Generator turns one chunk of paper text into a playable Script via a
// single LLM call, with bounded retries and a degraded fallback. Generate
// never fails outward: every failure mode ends in a valid Script.
type Generator struct {
	client      providers.ChatClient
	model       string
	temperature float64
	maxRetries  int
	timeout     time.Duration
	logger      *slog.Logger
}

// NewGenerator creates a Generator. A missing client is the one error
// class that propagates; everything at generation time degrades instead.
func NewGenerator(cfg GeneratorConfig) (*Generator, error) {
	if cfg.Client == nil {
		return nil, fmt.Errorf("chat client is required")
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 2
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Generator{
		client:      cfg.Client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		timeout:     cfg.RequestTimeout,
		logger:      logger.With("component", "generator"),
	}, nil
}

// Generate produces the Script for one chunk. Empty chunk text short
// circuits to a fallback without a model call; transient failures
// (network, malformed JSON, empty normalization) are retried, and an
// exhausted retry budget degrades to an apologetic dialogue carrying an
// excerpt of the source text.
func (g *Generator) Generate(ctx context.Context, chunkText string, chunkIndex int, sectionTitle string) Script {
	chunkText = strings.TrimSpace(chunkText)
	if chunkText == "" {
		return FallbackScript(fallbackEmptyChunk, chunkIndex, "")
	}

	userPrompt := UserPrompt(chunkText, chunkIndex, sectionTitle)

	var out Script
	err := retry.Do(
		func() error {
			result, err := g.client.Chat(ctx, &providers.ChatRequest{
				Messages: []providers.Message{
					{Role: "system", Content: SystemPrompt()},
					{Role: "user", Content: userPrompt},
				},
				Model:       g.model,
				Temperature: g.temperature,
				Timeout:     g.timeout,
			})
			if err != nil {
				return err
			}

			items, err := ExtractArray(result.Content)
			if err != nil {
				return err
			}

			normalized := normalizeItems(items)
			if len(normalized) == 0 {
				return errEmptyScript
			}
			out = normalized
			return nil
		},
		retry.Attempts(uint(g.maxRetries+1)),
		retry.Context(ctx),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(attempt uint, err error) {
			g.logger.Warn("script generation attempt failed",
				"chunk_index", chunkIndex, "attempt", attempt+1, "error", err)
		}),
	)
	if err != nil {
		g.logger.Warn("script generation exhausted retries, using fallback",
			"chunk_index", chunkIndex, "error", err)
		return FallbackScript(fallbackExhausted, chunkIndex, excerpt(chunkText))
	}

	return out
}

// excerpt returns the first excerptRunes runes of text.
func excerpt(text string) string {
	runes := []rune(text)
	if len(runes) <= excerptRunes {
		return text
	}
	return string(runes[:excerptRunes])
}
