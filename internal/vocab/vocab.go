// Package vocab maintains a searchable term index over ingested document
// text and lints pattern files against it, so pattern authors can see
// which terms actually occur in a bid set and catch typos before a run.
package vocab

// TermHit is a single corpus search hit.
type TermHit struct {
	DocumentID string
	Score      float64
}

// TermDictionary exposes the corpus term dictionary for linting. The
// interface keeps the linter testable without a real index.
type TermDictionary interface {
	// AllTerms returns every unique term in the index.
	AllTerms() ([]string, error)
	// TermFrequency returns the number of documents containing the term.
	TermFrequency(term string) (int, error)
	// ContainsTerm reports whether the term occurs anywhere in the corpus.
	ContainsTerm(term string) (bool, error)
}
