// Package classify supplies the AI fallback for ambiguous documents: an
// injected capability classifies filenames against a trade, and the
// resulting confidence blends back into the heuristic scores as a bounded
// boost. Adapters exist for Gemini, a local embedding model, a SQLite
// write-through cache, and a rate-limited/retrying/breaker-guarded
// decorator; they all implement the same one-method interface so the
// orchestrator never knows which one it is talking to.
package classify

import (
	"context"

	"github.com/hyperjump/bidsift/internal/models"
)

// Classifier is the injected classification capability. Implementations
// must return at most one result per filename and may return fewer when
// interrupted; returned results are valid even alongside an error.
type Classifier interface {
	Classify(ctx context.Context, filenames []string, trade string) ([]models.ClassificationResult, error)
}

// Func adapts a plain function to the Classifier interface.
type Func func(ctx context.Context, filenames []string, trade string) ([]models.ClassificationResult, error)

// Classify calls f.
func (f Func) Classify(ctx context.Context, filenames []string, trade string) ([]models.ClassificationResult, error) {
	return f(ctx, filenames, trade)
}
