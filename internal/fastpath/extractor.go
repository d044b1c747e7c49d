// Package fastpath attempts deterministic schedule extraction from bid
// documents so the pipeline spends AI only where parsing cannot get there.
// Extraction never fails: every problem surfaces as an issue on the result.
package fastpath

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/hyperjump/bidsift/internal/models"
	"github.com/hyperjump/bidsift/internal/patterns"
)

// FastPath runs schedule extraction over documents that scored well enough
// to be worth parsing.
type FastPath struct {
	config *FastPathConfig
	logger *zap.Logger
}

// Option configures a FastPath.
type Option func(*FastPath)

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(f *FastPath) {
		f.logger = logger
	}
}

// NewFastPath creates a fast-path extractor. A nil config uses defaults.
func NewFastPath(config *FastPathConfig, opts ...Option) *FastPath {
	if config == nil {
		config = DefaultFastPathConfig()
	}
	config.ApplyDefaults()

	f := &FastPath{
		config: config,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Config returns the fast-path configuration.
func (f *FastPath) Config() *FastPathConfig {
	return f.config
}

// TryFastPathExtraction reads the document from storage and attempts a
// schedule parse. It never returns an error: unreadable files, unsupported
// formats, and scan-only PDFs all come back as results whose issues say
// what happened.
func (f *FastPath) TryFastPathExtraction(doc models.DocumentInfo, p patterns.TradePatterns) models.FastPathResult {
	content, err := os.ReadFile(doc.StoragePath)
	if err != nil {
		return models.FastPathResult{
			DocumentID: doc.ID,
			SourceType: models.SourceUnsupported,
			Issues: []models.FastPathIssue{{
				Kind:    models.IssueUnsupported,
				Message: fmt.Sprintf("document unreadable: %v", err),
			}},
			Quality: models.QualityNone,
		}
	}
	return f.ExtractBytes(doc.ID, doc.Filename, content, p)
}

// ExtractBytes is TryFastPathExtraction for in-memory content. Parser
// panics on malformed input are recovered and reported as issues so one
// bad file cannot take a run down.
func (f *FastPath) ExtractBytes(docID, filename string, content []byte, p patterns.TradePatterns) (result models.FastPathResult) {
	defer func() {
		if r := recover(); r != nil {
			f.logger.Error("fast-path extraction panicked",
				zap.Any("panic", r),
				zap.Stack("stack"),
				zap.String("document_id", docID),
				zap.String("filename", filename))
			result = models.FastPathResult{
				DocumentID: docID,
				SourceType: models.SourceUnsupported,
				Issues: []models.FastPathIssue{{
					Kind:    models.IssueUnsupported,
					Message: fmt.Sprintf("extraction aborted: %v", r),
				}},
				Quality: models.QualityNone,
			}
		}
	}()

	sourceType, pages := f.inspect(filename, content)
	result = models.FastPathResult{
		DocumentID: docID,
		SourceType: sourceType,
	}

	switch sourceType {
	case models.SourceNativeText:
		result.Items, result.Issues = parsePDFSchedule(pages, p)
	case models.SourceNativeTable:
		result.Items, result.Issues = parseWorkbookSchedule(content, p)
	case models.SourceImageOnly:
		result.Issues = []models.FastPathIssue{{
			Kind:    models.IssueRouteToAI,
			Message: "no usable text layer; route to AI extraction",
		}}
	default:
		result.Issues = []models.FastPathIssue{{
			Kind:    models.IssueUnsupported,
			Message: fmt.Sprintf("unsupported format %q", strings.ToLower(filepath.Ext(filename))),
		}}
	}

	result.Quality = f.AssessQuality(result.Items, result.Issues)
	f.logger.Debug("fast-path extraction finished",
		zap.String("document_id", docID),
		zap.String("source_type", string(result.SourceType)),
		zap.Int("items", len(result.Items)),
		zap.Int("issues", len(result.Issues)),
		zap.String("quality", string(result.Quality)))
	return result
}

// ExtractAll runs TryFastPathExtraction over docs through a bounded worker
// pool. Results keep the input order. On context cancellation the results
// produced so far are returned along with the context error; they remain
// valid.
func (f *FastPath) ExtractAll(ctx context.Context, docs []models.DocumentInfo, p patterns.TradePatterns) ([]models.FastPathResult, error) {
	results := make([]models.FastPathResult, len(docs))
	sem := make(chan struct{}, f.config.Workers)
	var wg sync.WaitGroup

	scheduled := len(docs)
	for i := range docs {
		if ctx.Err() != nil {
			scheduled = i
			break
		}
		select {
		case <-ctx.Done():
			scheduled = i
		case sem <- struct{}{}:
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				results[i] = f.TryFastPathExtraction(docs[i], p)
			}(i)
			continue
		}
		break
	}
	wg.Wait()

	if scheduled < len(docs) {
		return results[:scheduled], ctx.Err()
	}
	return results, nil
}
