package quiz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"google.golang.org/genai"

	"focus-hub/pkg/rest"
)

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func NewGeminiGenerator(ctx context.Context, apiKey string, model string) (Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &geminiGenerator{client: client, model: model}, nil
}

func (g *geminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{ThinkingBudget: genai.Ptr[int32](0)},
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content with %s: %w", g.model, err)
	}

	return resp.Text(), nil
}

type disabledGenerator struct{}

// Disabled answers every prompt as unavailable. It stands in when no API key
// is configured.
func Disabled() Generator {
	return disabledGenerator{}
}

func (disabledGenerator) Generate(context.Context, string) (string, error) {
	return "", rest.Unavailable("quiz generation is not configured")
}

type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

type breakerGenerator struct {
	cb   *gobreaker.CircuitBreaker
	next Generator
}

// WithBreaker trips after repeated failures of next and then fails fast with
// rest.ErrUnavailable until the breaker half-opens.
func WithBreaker(config BreakerConfig, next Generator) Generator {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < config.MinRequests {
				return false
			}

			return float64(counts.TotalFailures)/float64(counts.Requests) >= config.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn().Str("component", "quiz").Str("breaker", name).
				Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &breakerGenerator{cb: cb, next: next}
}

func (b *breakerGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := b.cb.Execute(func() (any, error) {
		return b.next.Generate(ctx, prompt)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "", rest.Unavailable("%s: %v", b.cb.Name(), err)
	case err != nil:
		return "", err
	}

	return text.(string), nil
}
