package classify

import (
	"context"

	"go.uber.org/zap"

	"github.com/hyperjump/bidsift/internal/models"
)

// BatchClassifier splits large filename lists into fixed-size batches so
// no single request to the backend grows unbounded. Results accumulated
// before a failure are returned alongside the error.
type BatchClassifier struct {
	inner     Classifier
	batchSize int
	logger    *zap.Logger
}

// BatchOption configures a BatchClassifier.
type BatchOption func(*BatchClassifier)

// WithBatchLogger sets the logger.
func WithBatchLogger(logger *zap.Logger) BatchOption {
	return func(b *BatchClassifier) {
		b.logger = logger
	}
}

// NewBatchClassifier wraps inner so calls are chunked into batches of at
// most batchSize filenames. Sizes below one fall back to the default.
func NewBatchClassifier(inner Classifier, batchSize int, opts ...BatchOption) *BatchClassifier {
	if batchSize <= 0 {
		batchSize = DefaultClassifierConfig().BatchSize
	}
	b := &BatchClassifier{
		inner:     inner,
		batchSize: batchSize,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Classify forwards filenames to the inner classifier in batches. The
// context is checked between batches; on cancellation or an inner error
// the results gathered so far are returned with the error.
func (b *BatchClassifier) Classify(ctx context.Context, filenames []string, trade string) ([]models.ClassificationResult, error) {
	results := make([]models.ClassificationResult, 0, len(filenames))
	for start := 0; start < len(filenames); start += b.batchSize {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		end := start + b.batchSize
		if end > len(filenames) {
			end = len(filenames)
		}
		batch, err := b.inner.Classify(ctx, filenames[start:end], trade)
		results = append(results, batch...)
		if err != nil {
			b.logger.Warn("classification batch failed",
				zap.String("trade", trade),
				zap.Int("batch_start", start),
				zap.Int("batch_size", end-start),
				zap.Error(err))
			return results, err
		}
	}
	return results, nil
}
