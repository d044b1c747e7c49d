package vocab

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"

	"github.com/hyperjump/bidsift/internal/models"
)

// indexedDocument is the shape stored per document: the filename and the
// extracted content sample.
type indexedDocument struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// Index is a bleve-backed corpus term index.
type Index struct {
	index bleve.Index
}

// NewIndex creates or opens a bleve index at path. An empty path builds
// an in-memory index, which is what ingestion uses for a single run. An
// existing on-disk index is opened and reused; remove the directory to
// force a rebuild after a mapping change.
func NewIndex(path string) (*Index, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so a pattern
	// term like "signage" only matches the exact word; English stemming
	// would collapse "signs"/"signage" and hide real typos from lint.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("filename", textFieldMapping)
	im.AddDocumentMapping("document", docMapping)
	im.DefaultType = "document"
	im.DefaultMapping = docMapping

	if path == "" {
		index, err := bleve.NewMemOnly(im)
		if err != nil {
			return nil, fmt.Errorf("failed to create in-memory index: %w", err)
		}
		return &Index{index: index}, nil
	}

	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open vocab index: %w", openErr)
		}
		return &Index{index: index}, nil
	}

	index, err := bleve.New(path, im)
	if err != nil {
		return nil, fmt.Errorf("failed to create vocab index: %w", err)
	}
	return &Index{index: index}, nil
}

// Add indexes one document's filename and content sample under its ID.
func (ix *Index) Add(ctx context.Context, doc *models.DocumentInfo) error {
	return ix.index.Index(doc.ID, indexedDocument{
		Filename: doc.Filename,
		Content:  doc.ContentSample,
	})
}

// Search returns the documents mentioning the query, filename matches
// first. Multi-word queries are merged additively across the filename and
// content fields, with a squared coverage penalty so documents matching
// every word outrank partial matches.
func (ix *Index) Search(ctx context.Context, query string, limit int) ([]TermHit, error) {
	if limit <= 0 {
		limit = 10
	}
	terms := splitQuery(query)
	if len(terms) == 0 {
		return nil, nil
	}

	reqSize := limit * 2
	if reqSize < 50 {
		reqSize = 50
	}

	filenameScores, err := ix.fieldScores("filename", query, reqSize)
	if err != nil {
		return nil, err
	}
	contentScores, err := ix.fieldScores("content", query, reqSize)
	if err != nil {
		return nil, err
	}

	var coverage map[string]int
	if len(terms) > 1 {
		coverage = ix.termCoverage(terms, reqSize)
	}

	scores := make(map[string]float64)
	for id, s := range filenameScores {
		// Filename mentions are stronger evidence than a single content
		// hit, mirroring how the scorer weighs its signals.
		scores[id] += s * 2
	}
	for id, s := range contentScores {
		scores[id] += s
	}
	if len(terms) > 1 {
		for id := range scores {
			matched := coverage[id]
			if matched == 0 {
				matched = 1
			}
			c := float64(matched) / float64(len(terms))
			scores[id] *= c * c
		}
	}

	hits := make([]TermHit, 0, len(scores))
	for id, score := range scores {
		hits = append(hits, TermHit{DocumentID: id, Score: score})
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].DocumentID < hits[j].DocumentID
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

func (ix *Index) fieldScores(field, query string, reqSize int) (map[string]float64, error) {
	mq := bleve.NewMatchQuery(query)
	mq.SetField(field)
	req := bleve.NewSearchRequest(mq)
	req.Size = reqSize
	results, err := ix.index.Search(req)
	if err != nil {
		return nil, fmt.Errorf("vocab search on %s failed: %w", field, err)
	}
	scores := make(map[string]float64, len(results.Hits))
	for _, hit := range results.Hits {
		scores[hit.ID] = hit.Score
	}
	return scores, nil
}

// termCoverage counts how many distinct query words each document matches.
func (ix *Index) termCoverage(terms []string, reqSize int) map[string]int {
	coverage := make(map[string]int)
	for _, term := range terms {
		req := bleve.NewSearchRequest(bleve.NewMatchQuery(term))
		req.Size = reqSize
		results, err := ix.index.Search(req)
		if err != nil {
			continue
		}
		for _, hit := range results.Hits {
			coverage[hit.ID]++
		}
	}
	return coverage
}

// splitQuery lowercases and splits a query into words.
func splitQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// Delete removes a document from the index.
func (ix *Index) Delete(ctx context.Context, id string) error {
	return ix.index.Delete(id)
}

// Close closes the index.
func (ix *Index) Close() error {
	return ix.index.Close()
}

// DocCount returns the number of indexed documents.
func (ix *Index) DocCount() (uint64, error) {
	return ix.index.DocCount()
}

// TermFrequency returns the number of documents containing the term.
func (ix *Index) TermFrequency(term string) (int, error) {
	q := bleve.NewMatchQuery(term)
	req := bleve.NewSearchRequest(q)
	req.Size = 0
	results, err := ix.index.Search(req)
	if err != nil {
		return 0, fmt.Errorf("failed to count term frequency: %w", err)
	}
	return int(results.Total), nil
}

// ContainsTerm reports whether the term occurs anywhere in the corpus.
func (ix *Index) ContainsTerm(term string) (bool, error) {
	freq, err := ix.TermFrequency(term)
	if err != nil {
		return false, err
	}
	return freq > 0, nil
}

// AllTerms returns every unique term across the filename and content
// field dictionaries.
func (ix *Index) AllTerms() ([]string, error) {
	terms := make([]string, 0)
	seen := make(map[string]struct{})
	for _, field := range []string{"content", "filename"} {
		dict, err := ix.index.FieldDict(field)
		if err != nil {
			continue
		}
		for {
			entry, err := dict.Next()
			if err != nil || entry == nil {
				break
			}
			if _, ok := seen[entry.Term]; !ok {
				terms = append(terms, entry.Term)
				seen[entry.Term] = struct{}{}
			}
		}
		dict.Close()
	}
	return terms, nil
}
