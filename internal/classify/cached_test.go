package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/hyperjump/bidsift/internal/models"
)

// memStore is an in-memory ClassificationStore for tests.
type memStore struct {
	entries map[string]models.ClassificationResult
	getErr  error
	puts    int
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]models.ClassificationResult)}
}

func (m *memStore) key(trade, filename string) string {
	return trade + "|" + strings.ToLower(filename)
}

func (m *memStore) GetClassification(ctx context.Context, trade, filename string) (models.ClassificationResult, bool, error) {
	if m.getErr != nil {
		return models.ClassificationResult{}, false, m.getErr
	}
	res, ok := m.entries[m.key(trade, filename)]
	return res, ok, nil
}

func (m *memStore) PutClassification(ctx context.Context, trade string, result models.ClassificationResult) error {
	m.puts++
	m.entries[m.key(trade, result.Filename)] = result
	return nil
}

func TestCachedClassifier_missThenHit(t *testing.T) {
	stub := NewStub(map[string]models.ClassificationResult{
		"sign schedule.pdf": {Filename: "sign schedule.pdf", PredictedTrade: "signage", Confidence: 0.9},
	})
	store := newMemStore()
	c := NewCachedClassifier(stub, store)

	ctx := context.Background()
	first, err := c.Classify(ctx, []string{"sign schedule.pdf"}, "signage")
	if err != nil {
		t.Fatalf("first Classify() error = %v", err)
	}
	if len(first) != 1 || first[0].Confidence != 0.9 {
		t.Fatalf("unexpected first results %+v", first)
	}
	if store.puts != 1 {
		t.Errorf("store puts = %d, want 1", store.puts)
	}

	second, err := c.Classify(ctx, []string{"sign schedule.pdf"}, "signage")
	if err != nil {
		t.Fatalf("second Classify() error = %v", err)
	}
	if len(second) != 1 || second[0].Confidence != 0.9 {
		t.Fatalf("unexpected second results %+v", second)
	}
	if stub.Calls() != 1 {
		t.Errorf("inner called %d times, want 1 (second call should hit cache)", stub.Calls())
	}
}

func TestCachedClassifier_partialHitOnlyForwardsMisses(t *testing.T) {
	stub := NewStub(map[string]models.ClassificationResult{
		"b.pdf": {Filename: "b.pdf", PredictedTrade: "signage", Confidence: 0.6},
	})
	store := newMemStore()
	store.entries[store.key("signage", "a.pdf")] = models.ClassificationResult{
		Filename: "a.pdf", PredictedTrade: "signage", Confidence: 0.8,
	}

	c := NewCachedClassifier(stub, store)
	results, err := c.Classify(context.Background(), []string{"a.pdf", "b.pdf"}, "signage")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	seen := stub.Seen()
	if len(seen) != 1 || seen[0] != "b.pdf" {
		t.Errorf("inner saw %v, want only the miss [b.pdf]", seen)
	}
}

func TestCachedClassifier_storeFailureDegradesToMiss(t *testing.T) {
	stub := NewStub(map[string]models.ClassificationResult{
		"a.pdf": {Filename: "a.pdf", PredictedTrade: "signage", Confidence: 0.5},
	})
	store := newMemStore()
	store.getErr = errors.New("database locked")

	c := NewCachedClassifier(stub, store)
	results, err := c.Classify(context.Background(), []string{"a.pdf"}, "signage")
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(results) != 1 || results[0].Confidence != 0.5 {
		t.Fatalf("unexpected results %+v", results)
	}
	if stub.Calls() != 1 {
		t.Errorf("inner called %d times, want 1", stub.Calls())
	}
}

func TestCachedClassifier_innerErrorKeepsCachedHits(t *testing.T) {
	boom := errors.New("backend down")
	stub := NewStub(nil).Fail(boom)
	store := newMemStore()
	store.entries[store.key("signage", "a.pdf")] = models.ClassificationResult{
		Filename: "a.pdf", PredictedTrade: "signage", Confidence: 0.8,
	}

	c := NewCachedClassifier(stub, store)
	results, err := c.Classify(context.Background(), []string{"a.pdf", "b.pdf"}, "signage")
	if !errors.Is(err, boom) {
		t.Fatalf("Classify() error = %v, want %v", err, boom)
	}
	if len(results) != 1 || results[0].Filename != "a.pdf" {
		t.Errorf("cached hit lost on inner error: %+v", results)
	}
}
