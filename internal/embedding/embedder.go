// Package embedding provides text embedding for the local trade classifier:
// filenames embed into unit vectors and compare against per-trade prototype
// vectors. The real backend is ONNX (requires CGO and the onnxruntime
// library); a deterministic mock backs tests and non-CGO builds fall back
// to a stub.
package embedding

import "context"

// Embedder produces vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
