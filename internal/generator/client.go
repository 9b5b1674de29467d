package generator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dshills/paragen/pkg/types"
)

// Options configures a generation client.
type Options struct {
	// TargetCount is the exact number of paraphrases requested per call.
	TargetCount int

	// MaxAttempts bounds requests per Generate call.
	MaxAttempts int

	// ShortfallDelay is the base wait after a response with too few lines.
	ShortfallDelay time.Duration

	// FaultDelay is the base wait after a transport or service fault.
	// Faults wait longer than shortfalls.
	FaultDelay time.Duration
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		TargetCount:    200,
		MaxAttempts:    3,
		ShortfallDelay: 2 * time.Second,
		FaultDelay:     5 * time.Second,
	}
}

// Sleeper abstracts retry waits so tests can run without real delays.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealSleeper waits on the wall clock, honoring context cancellation.
type RealSleeper struct{}

// Sleep blocks for d or until the context is done.
func (RealSleeper) Sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// Client drives a Provider with bounded retries and response validation.
type Client struct {
	provider Provider
	opts     Options
	sleeper  Sleeper
	logger   *zap.Logger
}

// NewClient creates a generation client around a provider.
func NewClient(provider Provider, opts Options, logger *zap.Logger) *Client {
	if opts.TargetCount <= 0 {
		opts.TargetCount = DefaultOptions().TargetCount
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultOptions().MaxAttempts
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		provider: provider,
		opts:     opts,
		sleeper:  RealSleeper{},
		logger:   logger,
	}
}

// SetSleeper replaces the retry wait implementation. Intended for tests.
func (c *Client) SetSleeper(s Sleeper) {
	c.sleeper = s
}

// Generate asks the provider for exactly TargetCount paraphrased questions
// for the tag, contextualized by the answer and example questions. A short
// response or service fault is retried up to MaxAttempts with increasing
// delays. On success exactly TargetCount entries are returned, truncating
// any excess. Exhausted attempts yield types.ErrGenerationFailed. The second
// return value is the number of provider calls made.
func (c *Client) Generate(ctx context.Context, answer, tag string, examples []string) ([]string, int, error) {
	prompt := c.buildPrompt(answer, examples)

	var lastErr error
	for attempt := 1; attempt <= c.opts.MaxAttempts; attempt++ {
		raw, err := c.provider.Complete(ctx, prompt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, attempt, ctx.Err()
			}
			c.logger.Warn("generation call failed",
				zap.String("tag", tag),
				zap.Int("attempt", attempt),
				zap.Error(err))
			lastErr = err
			delay := c.opts.FaultDelay
			if IsShortfall(err) {
				// An empty completion is a formatting problem, not an outage.
				delay = c.opts.ShortfallDelay
			}
			if err := c.wait(ctx, attempt, delay); err != nil {
				return nil, attempt, err
			}
			continue
		}

		questions := ParseNumberedList(raw)
		if len(questions) < c.opts.TargetCount {
			c.logger.Warn("generation returned too few questions",
				zap.String("tag", tag),
				zap.Int("attempt", attempt),
				zap.Int("got", len(questions)),
				zap.Int("want", c.opts.TargetCount))
			lastErr = fmt.Errorf("%w: got %d, want %d", types.ErrShortResponse, len(questions), c.opts.TargetCount)
			if err := c.wait(ctx, attempt, c.opts.ShortfallDelay); err != nil {
				return nil, attempt, err
			}
			continue
		}

		return questions[:c.opts.TargetCount], attempt, nil
	}

	return nil, c.opts.MaxAttempts, fmt.Errorf("%w for tag %q after %d attempts: %w",
		types.ErrGenerationFailed, tag, c.opts.MaxAttempts, lastErr)
}

// wait sleeps before the next retry, scaling the base delay by the attempt
// number. No wait follows the final attempt.
func (c *Client) wait(ctx context.Context, attempt int, base time.Duration) error {
	if attempt >= c.opts.MaxAttempts {
		return nil
	}
	delay := base * time.Duration(attempt)
	if err := c.sleeper.Sleep(ctx, delay); err != nil {
		return err
	}
	return nil
}

// buildPrompt assembles the generation request: example questions first (the
// primary style reference), then the answer for context, then the output
// contract.
func (c *Client) buildPrompt(answer string, examples []string) string {
	var b strings.Builder

	b.WriteString("You are creating training data for a question-answering system.\n\n")

	if len(examples) > 0 {
		fmt.Fprintf(&b, "Here are %d real example questions from users asking about this topic:\n\n", len(examples))
		for i, example := range examples {
			fmt.Fprintf(&b, "Example %d: %s\n", i+1, example)
		}
		b.WriteString("\n")
	}

	n := c.opts.TargetCount
	b.WriteString("INSTRUCTIONS:\n\n")
	b.WriteString("1. Analyze the question patterns, structure, phrasing, and word choices in the example questions above. They are your primary reference for style and meaning.\n")
	fmt.Fprintf(&b, "2. Generate %d NEW questions that are semantically equivalent to the examples: same core topic and intent, all leading to the same answer, but with different wording, sentence structure, and question format.\n", n)
	b.WriteString("3. Ensure high diversity: vary synonyms, sentence length, register, and phrasing. Avoid repeating words or formulaic patterns. Every question must be distinct and natural-sounding.\n")
	fmt.Fprintf(&b, "4. OUTPUT FORMAT: Output exactly %d questions, one per line, numbered 1-%d. Do not include any other text.\n", n, n)

	fmt.Fprintf(&b, "\nNote: All these questions lead to the following answer (provided for context only):\n%s\n", answer)
	fmt.Fprintf(&b, "\nGenerate %d diverse questions now:", n)

	return b.String()
}

// IsShortfall reports whether the error chain stems from an undersized or
// empty response rather than a transport fault.
func IsShortfall(err error) bool {
	return errors.Is(err, types.ErrShortResponse) || errors.Is(err, types.ErrEmptyResponse)
}
