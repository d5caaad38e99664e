// Package answer turns retrieved passages into a single-sentence answer
// using a generative model.
package answer

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/docqa-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const (
	NoContextAnswer = "The provided document does not contain information relevant to this question."
	FailureAnswer   = "An error occurred while generating the answer."

	defaultAttempts  = 3
	defaultBaseDelay = time.Second
)

const (
	OutcomeAnswered  = "answered"
	OutcomeNoContext = "no_context"
	OutcomeFailed    = "failed"
)

// Generator produces text for a prompt.
// Implementations must return an error wrapping entity.ErrRateLimited when
// the model rejects the call for quota reasons.
type Generator interface {
	Generate(ctx context.Context, prompt string, cfg entity.GenerationConfig) (string, error)
}

// Recorder receives answer outcomes and retry events
type Recorder interface {
	AnswerOutcome(outcome string)
	GenerationRetry()
}

type nopRecorder struct{}

func (nopRecorder) AnswerOutcome(string) {}
func (nopRecorder) GenerationRetry()     {}

type realTimer struct{}

func (realTimer) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Synthesizer answers questions from retrieved context. It never fails:
// model errors are reported as FailureAnswer.
type Synthesizer struct {
	generator Generator
	genCfg    entity.GenerationConfig
	attempts  uint
	baseDelay time.Duration
	timer     retry.Timer
	jitter    func() time.Duration
	recorder  Recorder
}

type Option func(*Synthesizer)

// WithAttempts sets the maximum number of model calls per question
func WithAttempts(n uint) Option {
	return func(s *Synthesizer) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// WithBaseDelay sets the wait after the first rate-limited attempt; it doubles after each further one
func WithBaseDelay(d time.Duration) Option {
	return func(s *Synthesizer) {
		s.baseDelay = d
	}
}

// WithTimer replaces the timer used between attempts
func WithTimer(t retry.Timer) Option {
	return func(s *Synthesizer) {
		s.timer = t
	}
}

// WithJitter replaces the random jitter source added to each backoff
func WithJitter(f func() time.Duration) Option {
	return func(s *Synthesizer) {
		s.jitter = f
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Synthesizer) {
		if r != nil {
			s.recorder = r
		}
	}
}

func WithGenerationConfig(cfg entity.GenerationConfig) Option {
	return func(s *Synthesizer) {
		s.genCfg = cfg
	}
}

func NewSynthesizer(generator Generator, opts ...Option) *Synthesizer {
	s := &Synthesizer{
		generator: generator,
		genCfg:    entity.DefaultGenerationConfig(),
		attempts:  defaultAttempts,
		baseDelay: defaultBaseDelay,
		timer:     realTimer{},
		jitter:    uniformJitter,
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Answer returns a single-sentence answer to question grounded on matches
func (s *Synthesizer) Answer(ctx context.Context, question string, matches []entity.RetrievalMatch) string {
	if len(matches) == 0 {
		ctxzap.Info(ctx, "no relevant context, skipping model call")
		s.recorder.AnswerOutcome(OutcomeNoContext)
		return NoContextAnswer
	}

	prompt := BuildPrompt(question, matches)

	text, err := retry.DoWithData(
		func() (string, error) {
			return s.generate(ctx, prompt)
		},
		s.retryOptions(ctx)...,
	)
	if err != nil {
		ctxzap.Error(ctx, "answer generation failed", zap.Error(err))
		s.recorder.AnswerOutcome(OutcomeFailed)
		return FailureAnswer
	}

	s.recorder.AnswerOutcome(OutcomeAnswered)
	return text
}

func (s *Synthesizer) generate(ctx context.Context, prompt string) (string, error) {
	raw, err := s.generator.Generate(ctx, prompt, s.genCfg)
	if err != nil {
		return "", err
	}
	text := normalize(raw)
	if text == "" {
		return "", fmt.Errorf("%w: %w", entity.ErrGeneration, entity.ErrEmptyAnswer)
	}
	return text, nil
}

func (s *Synthesizer) retryOptions(ctx context.Context) []retry.Option {
	var failed uint
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.LastErrorOnly(true),
		retry.WithTimer(s.timer),
		retry.RetryIf(func(err error) bool {
			return errors.Is(err, entity.ErrRateLimited)
		}),
		// only consulted when another attempt follows
		retry.DelayType(func(_ uint, _ error, _ *retry.Config) time.Duration {
			failed++
			s.recorder.GenerationRetry()
			return s.backoff(failed)
		}),
		retry.OnRetry(func(n uint, err error) {
			ctxzap.Warn(ctx, "model rate limited",
				zap.Uint("attempt", n+1),
				zap.Error(err),
			)
		}),
	}
}

// backoff returns the wait after the n-th failed attempt, n starting at 1
func (s *Synthesizer) backoff(n uint) time.Duration {
	return s.baseDelay<<(n-1) + s.jitter()
}

func uniformJitter() time.Duration {
	return time.Duration(rand.Int64N(int64(time.Second)))
}
