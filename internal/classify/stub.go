package classify

import (
	"context"
	"strings"
	"sync"

	"github.com/hyperjump/bidsift/internal/models"
)

// Stub is a deterministic Classifier for tests and dry runs. Filenames
// with a configured result get it back verbatim; everything else gets a
// zero-confidence result for the queried trade.
type Stub struct {
	mu      sync.Mutex
	results map[string]models.ClassificationResult
	err     error
	calls   int
	seen    []string
}

// NewStub returns a Stub that answers from results, keyed by lowercase
// filename.
func NewStub(results map[string]models.ClassificationResult) *Stub {
	lowered := make(map[string]models.ClassificationResult, len(results))
	for name, res := range results {
		lowered[strings.ToLower(name)] = res
	}
	return &Stub{results: lowered}
}

// Fail makes every subsequent call return err after producing no results.
func (s *Stub) Fail(err error) *Stub {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
	return s
}

// Classify returns canned results, or the configured error.
func (s *Stub) Classify(ctx context.Context, filenames []string, trade string) ([]models.ClassificationResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.seen = append(s.seen, filenames...)
	if s.err != nil {
		return nil, s.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]models.ClassificationResult, 0, len(filenames))
	for _, name := range filenames {
		if res, ok := s.results[strings.ToLower(name)]; ok {
			results = append(results, res)
			continue
		}
		results = append(results, models.ClassificationResult{
			Filename:       name,
			PredictedTrade: trade,
			Confidence:     0,
			Rationale:      "no stub entry",
		})
	}
	return results, nil
}

// Calls reports how many times Classify ran.
func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Seen reports every filename passed to Classify, in call order.
func (s *Stub) Seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.seen))
	copy(out, s.seen)
	return out
}
