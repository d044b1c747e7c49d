// Package ingest walks bid directories and turns files into scoreable
// documents: stable IDs, folder paths relative to the scan root, bounded
// content samples, and PDF page counts.
package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/hyperjump/bidsift/internal/extract"
	"github.com/hyperjump/bidsift/internal/fileid"
	"github.com/hyperjump/bidsift/internal/models"
	"github.com/hyperjump/bidsift/internal/vocab"
	"github.com/hyperjump/bidsift/pkg/utils"
)

// DefaultExtensions lists the file types worth scanning in a bid folder.
// Entries are compared without the leading dot, case-insensitively.
var DefaultExtensions = []string{"pdf", "xlsx", "docx", "odt", "ods", "rtf", "txt", "csv", "pptx", "odp"}

// Scanner prepares documents for the scoring pipeline.
type Scanner struct {
	extractor      *extract.Extractor
	vocabIndex     *vocab.Index
	extensions     []string
	maxSampleBytes int
	logger         *zap.Logger
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithLogger sets the logger for the scanner.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scanner) { s.logger = logger }
}

// WithExtensions overrides the allowed extension list. Entries may carry a
// leading dot or not. An empty list allows every file.
func WithExtensions(exts []string) Option {
	return func(s *Scanner) { s.extensions = exts }
}

// WithMaxSampleBytes overrides the content sample bound.
func WithMaxSampleBytes(n int) Option {
	return func(s *Scanner) { s.maxSampleBytes = n }
}

// WithVocabIndex makes the scanner feed every scanned document into the
// given vocabulary index, so pattern audits and term searches cover the
// current run's corpus.
func WithVocabIndex(idx *vocab.Index) Option {
	return func(s *Scanner) { s.vocabIndex = idx }
}

// NewScanner creates a scanner. extractor may be nil; files are then scanned
// without content samples (filename and folder signals still apply).
func NewScanner(extractor *extract.Extractor, opts ...Option) *Scanner {
	s := &Scanner{
		extractor:      extractor,
		extensions:     DefaultExtensions,
		maxSampleBytes: extract.DefaultMaxSampleBytes,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanDirectory walks dir recursively and returns a document per regular
// file whose extension is allowed. Files that fail to stat or read are
// logged and skipped or scanned without a sample; only a broken walk (or a
// cancelled context) fails the scan.
func (s *Scanner) ScanDirectory(ctx context.Context, dir string) ([]models.DocumentInfo, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absDir)
	if err != nil {
		return nil, fmt.Errorf("stat directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("not a directory: %s", absDir)
	}

	var docs []models.DocumentInfo
	err = filepath.WalkDir(absDir, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if len(s.extensions) > 0 && !extensionAllowed(ext, s.extensions) {
			return nil
		}
		// Resolve symlinks so only regular files are scanned.
		finfo, statErr := os.Stat(path)
		if statErr != nil || !finfo.Mode().IsRegular() {
			return nil
		}
		doc, scanErr := s.ScanFile(ctx, path, absDir)
		if scanErr != nil {
			// A file that vanishes or breaks mid-walk costs one document,
			// not the whole scan.
			s.logger.Warn("skipping unreadable file",
				zap.String("path", path),
				zap.Error(scanErr))
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return docs, fmt.Errorf("walk %s: %w", absDir, err)
	}
	s.logger.Info("scanned bid directory",
		zap.String("dir", absDir),
		zap.Int("documents", len(docs)))
	return docs, nil
}

// ScanFile builds a DocumentInfo for the file at path. root, when non-empty,
// anchors FolderPath; a file directly under root gets an empty FolderPath.
// Extraction failures are not errors: the document comes back with an empty
// ContentSample and is scored on filename and folder signals alone.
func (s *Scanner) ScanFile(ctx context.Context, path, root string) (models.DocumentInfo, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return models.DocumentInfo{}, fmt.Errorf("absolute path: %w", err)
	}
	info, err := os.Stat(absPath)
	if err != nil {
		return models.DocumentInfo{}, fmt.Errorf("stat file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return models.DocumentInfo{}, fmt.Errorf("not a regular file: %s", absPath)
	}

	doc := models.DocumentInfo{
		ID:          fileid.DocID(absPath),
		Filename:    filepath.Base(absPath),
		FolderPath:  folderPath(absPath, root),
		StoragePath: absPath,
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		s.logger.Warn("scan without content sample",
			zap.String("path", absPath),
			zap.Error(err))
		return doc, nil
	}

	ext := strings.ToLower(filepath.Ext(absPath))
	text, extractErr := s.extractText(content, ext, &doc)
	if extractErr != nil {
		s.logger.Warn("scan without content sample",
			zap.String("path", absPath),
			zap.Error(extractErr))
	} else {
		// Normalize before truncating so the sample bound is spent on
		// words, not runs of PDF whitespace.
		doc.ContentSample = utils.TruncateUTF8(NormalizeText(text), s.maxSampleBytes)
	}

	if s.vocabIndex != nil {
		if idxErr := s.vocabIndex.Add(ctx, &doc); idxErr != nil {
			s.logger.Warn("vocab index add failed",
				zap.String("path", absPath),
				zap.Error(idxErr))
		}
	}
	return doc, nil
}

// extractText decodes the file content once. PDFs go through the per-page
// decoder so the page count comes for free with the text.
func (s *Scanner) extractText(content []byte, ext string, doc *models.DocumentInfo) (string, error) {
	if ext == ".pdf" {
		pages, err := extract.PDFPages(content)
		if err != nil {
			return "", err
		}
		doc.PageCount = len(pages)
		if s.extractor == nil {
			return "", nil
		}
		return strings.Join(pages, "\n"), nil
	}
	if s.extractor == nil {
		return "", nil
	}
	return s.extractor.ExtractBytes(content, ext)
}

func folderPath(absPath, root string) string {
	if root == "" {
		return ""
	}
	rel, err := filepath.Rel(root, filepath.Dir(absPath))
	if err != nil || rel == "." {
		return ""
	}
	return rel
}

func extensionAllowed(ext string, allowed []string) bool {
	extNorm := strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range allowed {
		if strings.ToLower(strings.TrimPrefix(a, ".")) == extNorm {
			return true
		}
	}
	return false
}
