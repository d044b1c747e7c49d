package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/bidsift/internal/models"
)

func fastResilienceConfig() *ClassifierConfig {
	return &ClassifierConfig{
		Provider:          ProviderNone,
		BatchSize:         25,
		RateLimitRPS:      1000,
		RateLimitBurst:    1000,
		MaxRetries:        3,
		RetryBackoffMS:    1,
		BreakerFailures:   2,
		BreakerCooldownMS: 60000,
	}
}

func TestResilientClassifier_retriesTransientFailure(t *testing.T) {
	calls := 0
	inner := Func(func(ctx context.Context, filenames []string, trade string) ([]models.ClassificationResult, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("transient")
		}
		return []models.ClassificationResult{{Filename: filenames[0], PredictedTrade: trade, Confidence: 0.7}}, nil
	})

	r := NewResilientClassifier(inner, fastResilienceConfig())
	results, err := r.Classify(context.Background(), []string{"sign schedule.pdf"}, "signage")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if calls != 3 {
		t.Errorf("inner called %d times, want 3", calls)
	}
	if len(results) != 1 || results[0].Confidence != 0.7 {
		t.Errorf("unexpected results %+v", results)
	}
}

func TestResilientClassifier_exhaustsRetries(t *testing.T) {
	boom := errors.New("still down")
	calls := 0
	inner := Func(func(ctx context.Context, filenames []string, trade string) ([]models.ClassificationResult, error) {
		calls++
		return nil, boom
	})

	cfg := fastResilienceConfig()
	cfg.BreakerFailures = 100
	r := NewResilientClassifier(inner, cfg)
	_, err := r.Classify(context.Background(), []string{"a.pdf"}, "signage")
	if !errors.Is(err, boom) {
		t.Fatalf("Classify() error = %v, want wrapped %v", err, boom)
	}
	if calls != 4 {
		t.Errorf("inner called %d times, want 4 (1 try + 3 retries)", calls)
	}
}

func TestResilientClassifier_contextErrorNotRetried(t *testing.T) {
	calls := 0
	inner := Func(func(ctx context.Context, filenames []string, trade string) ([]models.ClassificationResult, error) {
		calls++
		return nil, context.DeadlineExceeded
	})

	r := NewResilientClassifier(inner, fastResilienceConfig())
	_, err := r.Classify(context.Background(), []string{"a.pdf"}, "signage")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Classify() error = %v, want DeadlineExceeded", err)
	}
	if calls != 1 {
		t.Errorf("inner called %d times, want 1", calls)
	}
}

func TestResilientClassifier_breakerOpensAfterConsecutiveFailures(t *testing.T) {
	calls := 0
	inner := Func(func(ctx context.Context, filenames []string, trade string) ([]models.ClassificationResult, error) {
		calls++
		return nil, errors.New("hard down")
	})

	r := NewResilientClassifier(inner, fastResilienceConfig())

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := r.Classify(ctx, []string{"a.pdf"}, "signage"); err == nil {
			t.Fatalf("call %d unexpectedly succeeded", i)
		}
	}
	callsBeforeOpen := calls

	_, err := r.Classify(ctx, []string{"a.pdf"}, "signage")
	if !IsCircuitOpen(err) {
		t.Fatalf("Classify() error = %v, want open circuit", err)
	}
	if calls != callsBeforeOpen {
		t.Errorf("inner reached through an open breaker (%d calls, want %d)", calls, callsBeforeOpen)
	}
}

func TestResilientClassifier_cancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewResilientClassifier(NewStub(nil), fastResilienceConfig())
	_, err := r.Classify(ctx, []string{"a.pdf"}, "signage")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Classify() error = %v, want context.Canceled", err)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"generic error", errors.New("boom"), true},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
		{"wrapped cancelled", errors.Join(errors.New("rpc"), context.Canceled), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isRetryable(tt.err); got != tt.want {
				t.Errorf("isRetryable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
