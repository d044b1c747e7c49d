package classify

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/bidsift/internal/embedding"
	"github.com/hyperjump/bidsift/internal/models"
)

// LocalClassifier predicts trades without any network call by comparing
// filename embeddings against per-trade prototype vectors. Confidence is
// the cosine similarity against the best-matching prototype, clamped to
// [0,1], so it plugs into the same boost math as the remote providers.
type LocalClassifier struct {
	prototypes *embedding.Prototypes
	logger     *zap.Logger
}

// LocalOption configures a LocalClassifier.
type LocalOption func(*LocalClassifier)

// WithLocalLogger sets the logger.
func WithLocalLogger(logger *zap.Logger) LocalOption {
	return func(l *LocalClassifier) {
		l.logger = logger
	}
}

// NewLocalClassifier returns a classifier backed by prototypes. Build the
// prototypes from trade exemplar phrases before classifying.
func NewLocalClassifier(prototypes *embedding.Prototypes, opts ...LocalOption) *LocalClassifier {
	l := &LocalClassifier{
		prototypes: prototypes,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Classify embeds each filename and reports the trade whose prototype is
// most similar. The queried trade only steers the rationale; the
// prediction is always the best match so the boost step can reject
// cross-trade documents.
func (l *LocalClassifier) Classify(ctx context.Context, filenames []string, trade string) ([]models.ClassificationResult, error) {
	results := make([]models.ClassificationResult, 0, len(filenames))
	trades := l.prototypes.Trades()
	if len(trades) == 0 {
		return nil, fmt.Errorf("local classifier has no trade prototypes")
	}
	for _, name := range filenames {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		text := filenameText(name)
		best, bestSim := "", -1.0
		for _, candidate := range trades {
			sim, err := l.prototypes.Similarity(ctx, text, candidate)
			if err != nil {
				return results, fmt.Errorf("similarity for %q: %w", name, err)
			}
			if sim > bestSim {
				best, bestSim = candidate, sim
			}
		}
		results = append(results, models.ClassificationResult{
			Filename:       name,
			PredictedTrade: best,
			Confidence:     clampConfidence(bestSim),
			Rationale:      fmt.Sprintf("embedding similarity %.2f (queried %s)", bestSim, trade),
		})
	}
	return results, nil
}

// filenameText turns a filename into embeddable prose: extension dropped,
// separators flattened to spaces, lowercased.
func filenameText(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	replacer := strings.NewReplacer("_", " ", "-", " ", ".", " ", "/", " ")
	return strings.ToLower(strings.Join(strings.Fields(replacer.Replace(base)), " "))
}
