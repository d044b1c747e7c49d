package classify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hyperjump/bidsift/internal/models"
)

// ResilientClassifier shields a backend from overload and hides transient
// failures: every call is rate limited, retried with exponential backoff,
// and guarded by a circuit breaker so a dead backend fails fast instead
// of burning the retry budget on every document.
type ResilientClassifier struct {
	inner       Classifier
	limiter     *rate.Limiter
	breaker     *gobreaker.CircuitBreaker[[]models.ClassificationResult]
	maxRetries  int
	baseBackoff time.Duration
	logger      *zap.Logger
}

// ResilientOption configures a ResilientClassifier.
type ResilientOption func(*ResilientClassifier)

// WithResilientLogger sets the logger.
func WithResilientLogger(logger *zap.Logger) ResilientOption {
	return func(r *ResilientClassifier) {
		r.logger = logger
	}
}

// NewResilientClassifier wraps inner with the rate, retry, and breaker
// policy from config. A nil config uses defaults.
func NewResilientClassifier(inner Classifier, config *ClassifierConfig, opts ...ResilientOption) *ResilientClassifier {
	if config == nil {
		config = DefaultClassifierConfig()
	}
	config.ApplyDefaults()

	r := &ResilientClassifier{
		inner:       inner,
		limiter:     rate.NewLimiter(rate.Limit(config.RateLimitRPS), config.RateLimitBurst),
		maxRetries:  config.MaxRetries,
		baseBackoff: time.Duration(config.RetryBackoffMS) * time.Millisecond,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	failures := uint32(config.BreakerFailures)
	r.breaker = gobreaker.NewCircuitBreaker[[]models.ClassificationResult](gobreaker.Settings{
		Name:        "classifier",
		MaxRequests: 1,
		Timeout:     time.Duration(config.BreakerCooldownMS) * time.Millisecond,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about backend health.
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			r.logger.Warn("classifier breaker state change",
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return r
}

// Classify runs one guarded call: the breaker wraps the whole retry loop,
// so a logical call that exhausts its retries counts as a single failure.
func (r *ResilientClassifier) Classify(ctx context.Context, filenames []string, trade string) ([]models.ClassificationResult, error) {
	return r.breaker.Execute(func() ([]models.ClassificationResult, error) {
		return r.classifyWithRetry(ctx, filenames, trade)
	})
}

func (r *ResilientClassifier) classifyWithRetry(ctx context.Context, filenames []string, trade string) ([]models.ClassificationResult, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := r.baseBackoff * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		results, err := r.inner.Classify(ctx, filenames, trade)
		if err == nil {
			return results, nil
		}

		lastErr = err
		if !isRetryable(err) {
			return nil, err
		}
		r.logger.Warn("classification attempt failed",
			zap.String("trade", trade),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", r.maxRetries+1),
			zap.Error(err))
	}
	return nil, fmt.Errorf("classification failed after %d attempts: %w", r.maxRetries+1, lastErr)
}

// isRetryable reports whether another attempt could plausibly succeed.
// Context errors mean the caller gave up, not that the backend is flaky.
func isRetryable(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// IsCircuitOpen reports whether err came from an open circuit breaker,
// letting callers tell backend outage apart from a bad request.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
