// Package extract pulls plain text out of bid document files. The scorer
// consumes bounded samples of that text; the fast-path extractor consumes
// per-page PDF text and raw workbook rows.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/bidsift/pkg/utils"
)

// DefaultMaxSampleBytes bounds content samples handed to the scorer.
const DefaultMaxSampleBytes = 16384

// Extractor extracts text from the document formats that show up in bid
// folders.
type Extractor struct {
	maxSampleBytes int
	logger         *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger sets the logger for the extractor.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Extractor) {
		e.logger = logger
	}
}

// WithMaxSampleBytes overrides the sample bound.
func WithMaxSampleBytes(n int) Option {
	return func(e *Extractor) {
		e.maxSampleBytes = n
	}
}

// NewExtractor returns a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{
		maxSampleBytes: DefaultMaxSampleBytes,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract reads the file at path and returns its full text content.
func (e *Extractor) Extract(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	return e.ExtractBytes(content, ext)
}

// ExtractBytes extracts text from content based on the given extension.
// ext includes the leading dot (e.g. ".pdf"). Unknown extensions are
// treated as plain text; binary noise degrades to replacement runes rather
// than an error.
func (e *Extractor) ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".xlsx":
		return extractWorkbook(content)
	case ".docx":
		return extractDOCX(content)
	case ".odt", ".rtf":
		return extractOpenDoc(content)
	case ".ods":
		return extractODS(content)
	case ".pptx":
		return extractPPTX(content)
	case ".odp":
		return extractODP(content)
	default:
		return extractPlain(content)
	}
}

// Sample reads the file at path and returns a bounded text sample suitable
// for pattern matching. Truncation never splits a rune.
func (e *Extractor) Sample(path string) (string, error) {
	text, err := e.Extract(path)
	if err != nil {
		return "", err
	}
	return utils.TruncateUTF8(text, e.maxSampleBytes), nil
}

// SampleBytes is Sample for in-memory content.
func (e *Extractor) SampleBytes(content []byte, ext string) (string, error) {
	text, err := e.ExtractBytes(content, ext)
	if err != nil {
		return "", err
	}
	return utils.TruncateUTF8(text, e.maxSampleBytes), nil
}
