package embedding

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hyperjump/bidsift/pkg/utils"
)

// Prototypes holds one unit-norm prototype vector per trade, built by
// averaging the embeddings of exemplar phrases (typical filenames and
// schedule wording for the trade). Similarity against a prototype is the
// local classifier's confidence signal.
type Prototypes struct {
	embedder Embedder

	mu      sync.RWMutex
	vectors map[string][]float32
}

// NewPrototypes creates an empty prototype store over the embedder.
func NewPrototypes(embedder Embedder) *Prototypes {
	return &Prototypes{
		embedder: embedder,
		vectors:  make(map[string][]float32),
	}
}

// Build computes and installs the prototype for a trade from exemplar
// phrases, replacing any previous prototype.
func (p *Prototypes) Build(ctx context.Context, trade string, exemplars []string) error {
	if len(exemplars) == 0 {
		return fmt.Errorf("no exemplars for trade %q", trade)
	}
	embeddings, err := p.embedder.EmbedBatch(ctx, exemplars)
	if err != nil {
		return fmt.Errorf("embed exemplars for trade %q: %w", trade, err)
	}

	dims := p.embedder.Dimensions()
	proto := make([]float32, dims)
	for _, emb := range embeddings {
		for i := range proto {
			proto[i] += emb[i]
		}
	}
	for i := range proto {
		proto[i] /= float32(len(embeddings))
	}
	utils.NormalizeL2(proto)

	p.mu.Lock()
	p.vectors[trade] = proto
	p.mu.Unlock()
	return nil
}

// Similarity returns the cosine similarity between text and the trade's
// prototype, in [-1, 1]. Unknown trades return an error.
func (p *Prototypes) Similarity(ctx context.Context, text, trade string) (float64, error) {
	p.mu.RLock()
	proto, ok := p.vectors[trade]
	p.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("no prototype for trade %q", trade)
	}

	emb, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("embed text: %w", err)
	}
	return InnerProduct(emb, proto), nil
}

// Trades returns the trades with a prototype, sorted.
func (p *Prototypes) Trades() []string {
	p.mu.RLock()
	trades := make([]string, 0, len(p.vectors))
	for t := range p.vectors {
		trades = append(trades, t)
	}
	p.mu.RUnlock()
	sort.Strings(trades)
	return trades
}

// InnerProduct returns the inner product of two vectors; for unit-norm
// vectors this equals cosine similarity.
func InnerProduct(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i] * b[i])
	}
	return dot
}
