package classify

import (
	"context"

	"go.uber.org/zap"

	"github.com/hyperjump/bidsift/internal/models"
)

// ClassificationStore is the slice of persistence the cache needs: lookup
// and write-through of past classifications keyed by trade and filename.
type ClassificationStore interface {
	GetClassification(ctx context.Context, trade, filename string) (models.ClassificationResult, bool, error)
	PutClassification(ctx context.Context, trade string, result models.ClassificationResult) error
}

// CachedClassifier answers repeat filenames from the store and only sends
// misses to the inner classifier. Bid sets reuse the same sheet names
// across revisions, so hit rates are high in practice. Store failures are
// logged and treated as misses; caching never breaks classification.
type CachedClassifier struct {
	inner  Classifier
	store  ClassificationStore
	logger *zap.Logger
}

// CachedOption configures a CachedClassifier.
type CachedOption func(*CachedClassifier)

// WithCachedLogger sets the logger.
func WithCachedLogger(logger *zap.Logger) CachedOption {
	return func(c *CachedClassifier) {
		c.logger = logger
	}
}

// NewCachedClassifier wraps inner with a write-through cache backed by
// store.
func NewCachedClassifier(inner Classifier, store ClassificationStore, opts ...CachedOption) *CachedClassifier {
	c := &CachedClassifier{
		inner:  inner,
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify serves hits from the store, forwards misses to the inner
// classifier, and writes fresh results back. Cached hits are returned
// even when the inner call errors.
func (c *CachedClassifier) Classify(ctx context.Context, filenames []string, trade string) ([]models.ClassificationResult, error) {
	results := make([]models.ClassificationResult, 0, len(filenames))
	var misses []string
	for _, name := range filenames {
		cached, ok, err := c.store.GetClassification(ctx, trade, name)
		if err != nil {
			c.logger.Warn("classification cache lookup failed",
				zap.String("trade", trade),
				zap.String("filename", name),
				zap.Error(err))
		} else if ok {
			results = append(results, cached)
			continue
		}
		misses = append(misses, name)
	}
	if len(misses) == 0 {
		return results, nil
	}

	fresh, err := c.inner.Classify(ctx, misses, trade)
	results = append(results, fresh...)
	for _, res := range fresh {
		if putErr := c.store.PutClassification(ctx, trade, res); putErr != nil {
			c.logger.Warn("classification cache write failed",
				zap.String("trade", trade),
				zap.String("filename", res.Filename),
				zap.Error(putErr))
		}
	}
	return results, err
}
