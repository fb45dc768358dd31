package services

import (
	"context"
	"fmt"
	"math"
	"time"

	"cvwizard-backend/domain/resume"
	"cvwizard-backend/infrastructure/generation"
	"cvwizard-backend/pkg/auth"
	apperrors "cvwizard-backend/pkg/errors"
	"cvwizard-backend/pkg/observability"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// Generator is the outbound text-generation dependency
type Generator interface {
	Generate(ctx context.Context, req generation.Request) (generation.Result, error)
}

// GenerateInput carries the caller identity and prompt hints for one
// generation request.
type GenerateInput struct {
	AnonKey       string
	ClientIP      string
	CorrelationID string
	TargetRole    string
	Tone          string
}

// GenerateOutput is what the wizard shows the user. Generated is false
// when the text is the canned fallback.
type GenerateOutput struct {
	Text      string `json:"text"`
	Generated bool   `json:"generated"`
	Tokens    *int   `json:"tokens,omitempty"`
}

// GenerationService produces the two free-text resume sections. It rate
// limits per caller, degrades to a fixed template when the generation
// service fails (the wizard never blocks on upstream availability), and
// persists whatever text it returns.
type GenerationService struct {
	profiles  *ProfileService
	generator Generator
	limiter   auth.RateLimiter
	breaker   *gobreaker.CircuitBreaker
	metrics   *observability.Metrics
	logger    *zap.Logger

	limit  int
	window time.Duration
}

// NewGenerationService creates a new generation service
func NewGenerationService(
	profiles *ProfileService,
	generator Generator,
	limiter auth.RateLimiter,
	breaker *gobreaker.CircuitBreaker,
	metrics *observability.Metrics,
	logger *zap.Logger,
	limit int,
	window time.Duration,
) *GenerationService {
	return &GenerationService{
		profiles:  profiles,
		generator: generator,
		limiter:   limiter,
		breaker:   breaker,
		metrics:   metrics,
		logger:    logger,
		limit:     limit,
		window:    window,
	}
}

// NewGenerationBreaker creates the circuit breaker guarding the
// generation service. When open, calls short-circuit straight to the
// canned fallback.
func NewGenerationBreaker(logger *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "generation",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.8
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
}

// SelfPromotion generates (or falls back to) the self-promotion section
func (s *GenerationService) SelfPromotion(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	return s.generate(ctx, in, resume.FieldSelfPromotion)
}

// Summary generates (or falls back to) the career summary section
func (s *GenerationService) Summary(ctx context.Context, in GenerateInput) (*GenerateOutput, error) {
	return s.generate(ctx, in, resume.FieldCareerSummary)
}

func (s *GenerationService) generate(ctx context.Context, in GenerateInput, field string) (*GenerateOutput, error) {
	key := auth.RateLimitKey(in.AnonKey, in.ClientIP)
	res, err := s.limiter.Consume(ctx, key)
	if err != nil {
		return nil, apperrors.NewInternalError("rate limiter failure").WithCause(err)
	}
	if res.Limited {
		s.metrics.RateLimited.Inc()
		s.metrics.GenerationRequests.WithLabelValues("limited").Inc()
		retryAfter := int(math.Ceil(res.RetryAfter.Seconds()))
		return nil, apperrors.NewRateLimitError(s.limit, s.window.String()).
			WithDetails(map[string]interface{}{
				"retry_after_seconds": retryAfter,
			})
	}

	profile, err := s.profiles.Get(ctx, in.AnonKey)
	if err != nil {
		return nil, err
	}
	experiences, err := s.profiles.ListExperience(ctx, in.AnonKey)
	if err != nil {
		return nil, err
	}

	var prompt string
	var fallback string
	switch field {
	case resume.FieldSelfPromotion:
		prompt = buildSelfPromotionPrompt(profile, experiences, in.TargetRole, in.Tone)
		fallback = fallbackSelfPromotion
	case resume.FieldCareerSummary:
		prompt = buildSummaryPrompt(profile, experiences, in.TargetRole, in.Tone)
		fallback = fallbackSummary
	default:
		return nil, apperrors.NewInternalError(fmt.Sprintf("unknown generation field %q", field))
	}

	out := &GenerateOutput{}

	result, genErr := s.breaker.Execute(func() (interface{}, error) {
		return s.generator.Generate(ctx, generation.Request{
			Prompt:        prompt,
			CorrelationID: in.CorrelationID,
		})
	})
	if genErr != nil {
		// Product rule: generation failures degrade to the canned
		// template, they never surface to the user.
		s.logger.Warn("Generation failed, using fallback template",
			zap.String("field", field),
			zap.String("correlationID", in.CorrelationID),
			zap.Error(genErr),
		)
		s.metrics.GenerationRequests.WithLabelValues("fallback").Inc()
		out.Text = fallback
		out.Generated = false
	} else {
		genResult := result.(generation.Result)
		s.metrics.GenerationRequests.WithLabelValues("generated").Inc()
		if genResult.Tokens != nil {
			s.metrics.GenerationTokens.Add(float64(*genResult.Tokens))
		}
		out.Text = genResult.Text
		out.Generated = true
		out.Tokens = genResult.Tokens
	}

	// Storage failures do surface: there is no safe substitute for
	// persisted data, and the caller must be able to tell "generated
	// but not saved" apart from success.
	if err := s.profiles.SetGeneratedText(ctx, in.AnonKey, field, out.Text); err != nil {
		return nil, err
	}

	return out, nil
}
