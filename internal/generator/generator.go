// Package generator orchestrates the test case generation pipeline:
// compose prompt, invoke the model, extract records, validate, and retry
// with temperature escalation until success or exhaustion.
package generator

import (
	"context"
	"log/slog"
	"time"

	"tcgen/internal/extract"
	"tcgen/internal/llm"
	"tcgen/internal/prompt"
	"tcgen/internal/validate"
	"tcgen/pkg/schema"
)

// Gateway is the completion backend the generator invokes. *llm.Client
// satisfies it; tests use a scripted mock.
type Gateway interface {
	Generate(ctx context.Context, prompt string, params llm.SamplingParams) (string, error)
}

// Options configure a Generator.
type Options struct {
	// MaxAttempts bounds the retry loop. Minimum 1; default 5.
	MaxAttempts int

	// Temperature is the base sampling temperature. Attempt k (0-indexed)
	// uses Temperature + 0.1*k, clamped at 1.0. Nil takes the client
	// default; an explicit 0 means deterministic sampling and is honored.
	Temperature *float64

	// TopP passes through to the gateway unchanged. Nil takes the client
	// default; an explicit 0 is honored.
	TopP *float64

	// MaxTokens passes through to the gateway unchanged; zero takes the
	// client default.
	MaxTokens int

	// IncludeEdgeCases and IncludeNegativeTests configure prompt coverage.
	IncludeEdgeCases     bool
	IncludeNegativeTests bool

	// StrictValidation enforces canonical ID/label formats and full
	// criteria coverage.
	StrictValidation bool

	// RetryDelay is the fixed pause between failed attempts. Default 2s.
	// No backoff, no jitter; the delay exists to let transient backend
	// issues clear.
	RetryDelay time.Duration

	// Model is the model identifier, used only in progress and error text.
	Model string

	// Notifier receives progress notices. May be nil.
	Notifier Notifier
}

// Generator runs the full generation pipeline for one user story. Each
// invocation owns its own prompt, attempt counter, and result; a Generator
// holds no mutable state across runs, so a hosting surface may run one
// independent invocation per incoming request.
type Generator struct {
	gateway   Gateway
	composer  *prompt.Composer
	validator *validate.Validator
	opts      Options

	// sleep is injectable for tests. It must honor ctx cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a Generator. Zero-valued options take defaults.
func New(gateway Gateway, opts Options) *Generator {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 5
	}
	if opts.Temperature == nil {
		t := llm.DefaultSampling().Temperature
		opts.Temperature = &t
	}
	if opts.TopP == nil {
		p := llm.DefaultSampling().TopP
		opts.TopP = &p
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = llm.DefaultSampling().MaxTokens
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 2 * time.Second
	}

	return &Generator{
		gateway: gateway,
		composer: &prompt.Composer{
			IncludeEdgeCases:     opts.IncludeEdgeCases,
			IncludeNegativeTests: opts.IncludeNegativeTests,
		},
		validator: &validate.Validator{Strict: opts.StrictValidation},
		opts:      opts,
		sleep:     sleepContext,
	}
}

// Run generates a validated test case sequence, retrying on retryable
// failures up to MaxAttempts. The prompt is composed exactly once and
// reused; only the temperature varies across attempts.
func (g *Generator) Run(ctx context.Context, userStory string, criteria []string) ([]schema.TestCase, error) {
	composed := g.composer.Compose(userStory, criteria)
	expected := schema.CriterionLabels(len(criteria))

	var lastErr error
	for attempt := 0; attempt < g.opts.MaxAttempts; attempt++ {
		temperature := *g.opts.Temperature + 0.1*float64(attempt)
		if temperature > 1.0 {
			temperature = 1.0
		}

		g.notify(Event{
			Type:        EventAttemptStart,
			Attempt:     attempt + 1,
			MaxAttempts: g.opts.MaxAttempts,
			Temperature: temperature,
		})

		records, err := g.Once(ctx, composed, expected, temperature)
		if err == nil {
			g.notify(Event{
				Type:        EventSucceeded,
				Attempt:     attempt + 1,
				MaxAttempts: g.opts.MaxAttempts,
				Records:     len(records),
			})
			return records, nil
		}

		if !retryable(err) {
			return nil, err
		}
		lastErr = err

		slog.Warn("generation attempt failed",
			"attempt", attempt+1,
			"max_attempts", g.opts.MaxAttempts,
			"error", err,
		)
		g.notify(Event{
			Type:        EventAttemptFailed,
			Attempt:     attempt + 1,
			MaxAttempts: g.opts.MaxAttempts,
			Err:         err,
		})

		if attempt < g.opts.MaxAttempts-1 {
			g.notify(Event{
				Type:        EventWaiting,
				Attempt:     attempt + 1,
				MaxAttempts: g.opts.MaxAttempts,
			})
			if err := g.sleep(ctx, g.opts.RetryDelay); err != nil {
				return nil, err
			}
		}
	}

	return nil, &ExhaustedError{
		Attempts: g.opts.MaxAttempts,
		Model:    g.opts.Model,
		LastErr:  lastErr,
	}
}

// Once performs a single generation cycle with a fixed temperature:
// gateway, extraction, validation. No retry behavior.
func (g *Generator) Once(ctx context.Context, composedPrompt string, expectedLabels []string, temperature float64) ([]schema.TestCase, error) {
	params := llm.SamplingParams{
		Temperature: temperature,
		TopP:        *g.opts.TopP,
		MaxTokens:   g.opts.MaxTokens,
	}

	raw, err := g.gateway.Generate(ctx, composedPrompt, params)
	if err != nil {
		return nil, err
	}

	records, err := extract.Extract(raw)
	if err != nil {
		return nil, err
	}

	if err := g.validator.Validate(records, expectedLabels); err != nil {
		return nil, err
	}

	return records, nil
}

func (g *Generator) notify(e Event) {
	if g.opts.Notifier != nil {
		g.opts.Notifier.Notify(e)
	}
}

// sleepContext pauses for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
