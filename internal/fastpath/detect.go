package fastpath

import (
	"path/filepath"
	"strings"

	"github.com/hyperjump/bidsift/internal/extract"
	"github.com/hyperjump/bidsift/internal/models"
)

// DetectSourceType classifies a document's underlying structure from its
// filename and bytes. Detection is pure inspection and never fails: an
// undecodable PDF is simply unsupported, a decodable one with too little
// text is image-only.
func (f *FastPath) DetectSourceType(filename string, content []byte) models.SourceType {
	st, _ := f.inspect(filename, content)
	return st
}

// inspect is DetectSourceType plus the decoded page text, so the extraction
// path does not decode the PDF twice.
func (f *FastPath) inspect(filename string, content []byte) (models.SourceType, []string) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		return models.SourceNativeTable, nil
	case ".pdf":
		pages, err := extract.PDFPages(content)
		if err != nil {
			return models.SourceUnsupported, nil
		}
		total := 0
		for _, p := range pages {
			total += len(strings.TrimSpace(p))
		}
		if total < f.config.MinTextChars {
			return models.SourceImageOnly, nil
		}
		return models.SourceNativeText, pages
	default:
		return models.SourceUnsupported, nil
	}
}
