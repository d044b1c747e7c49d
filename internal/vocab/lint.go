package vocab

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hyperjump/bidsift/internal/patterns"
)

// Suggestion is one "did you mean" candidate for a pattern word missing
// from the corpus.
type Suggestion struct {
	Term      string // corpus term
	Distance  int    // Damerau-Levenshtein distance from the missing word
	Frequency int    // number of documents containing the term
}

// Finding reports one pattern word that never occurs in the corpus.
type Finding struct {
	Trade       string
	Where       string // which pattern field the term came from
	PatternTerm string // the term as authored
	Word        string // the specific word not found
	Suggestions []Suggestion
}

// Linter checks pattern terms against the corpus term dictionary. A term
// that never occurs in any ingested document is either wasted weight or a
// typo; the linter surfaces both with ranked suggestions.
type Linter struct {
	dict           TermDictionary
	maxDistance    int
	minFreq        int
	maxSuggestions int

	cacheMu    sync.RWMutex
	termsCache []string
	termSet    map[string]struct{}
	cacheValid bool
}

// LinterOption configures a Linter.
type LinterOption func(*Linter)

// WithMaxDistance sets the maximum edit distance for suggestions.
func WithMaxDistance(d int) LinterOption {
	return func(l *Linter) {
		if d > 0 {
			l.maxDistance = d
		}
	}
}

// WithMinFrequency sets the minimum document frequency a corpus term
// needs before it is suggested. Rare terms are usually noise.
func WithMinFrequency(f int) LinterOption {
	return func(l *Linter) {
		if f >= 0 {
			l.minFreq = f
		}
	}
}

// WithMaxSuggestions caps how many suggestions each finding carries.
func WithMaxSuggestions(n int) LinterOption {
	return func(l *Linter) {
		if n > 0 {
			l.maxSuggestions = n
		}
	}
}

// NewLinter returns a Linter over the given term dictionary.
func NewLinter(dict TermDictionary, opts ...LinterOption) *Linter {
	l := &Linter{
		dict:           dict,
		maxDistance:    2,
		minFreq:        1,
		maxSuggestions: 5,
		termSet:        make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// RefreshCache reloads the term dictionary. Call it after the index
// changes; lint calls load it lazily on first use.
func (l *Linter) RefreshCache() error {
	terms, err := l.dict.AllTerms()
	if err != nil {
		return err
	}

	l.cacheMu.Lock()
	defer l.cacheMu.Unlock()
	l.termsCache = terms
	l.termSet = make(map[string]struct{}, len(terms))
	for _, t := range terms {
		l.termSet[strings.ToLower(t)] = struct{}{}
	}
	l.cacheValid = true
	return nil
}

// LintTrade checks every term of one trade's pattern set against the
// corpus and returns a finding per missing word.
func (l *Linter) LintTrade(trade string, p patterns.TradePatterns) ([]Finding, error) {
	if err := l.ensureCache(); err != nil {
		return nil, err
	}

	var findings []Finding
	check := func(where, term string) {
		for _, word := range lintWords(term) {
			if l.isKnown(word) {
				continue
			}
			findings = append(findings, Finding{
				Trade:       trade,
				Where:       where,
				PatternTerm: term,
				Word:        word,
				Suggestions: l.Suggest(word),
			})
		}
	}

	for _, cp := range p.Content {
		check("content", cp.Term)
	}
	for _, kw := range p.FilenameKeywords {
		check("filename_keyword", kw)
	}
	for _, kw := range p.PathKeywords {
		check("path_keyword", kw)
	}
	for _, st := range p.SignTypes {
		for _, term := range st.Terms {
			check(fmt.Sprintf("sign_type:%s", st.Code), term)
		}
	}
	return findings, nil
}

// Suggest returns corpus terms close to word, ordered by edit distance,
// then document frequency, then the term itself.
func (l *Linter) Suggest(word string) []Suggestion {
	if err := l.ensureCache(); err != nil {
		return nil
	}
	wordLower := strings.ToLower(word)

	l.cacheMu.RLock()
	terms := l.termsCache
	l.cacheMu.RUnlock()

	var suggestions []Suggestion
	for _, dictTerm := range terms {
		candidate := strings.ToLower(dictTerm)
		if candidate == wordLower {
			continue
		}
		// Length pre-filter: strings whose lengths differ by more than
		// the max distance cannot be within it.
		lenDiff := len(candidate) - len(wordLower)
		if lenDiff < 0 {
			lenDiff = -lenDiff
		}
		if lenDiff > l.maxDistance {
			continue
		}

		distance := DamerauLevenshteinDistance(wordLower, candidate)
		if distance > l.maxDistance {
			continue
		}
		freq, err := l.dict.TermFrequency(dictTerm)
		if err != nil || freq < l.minFreq {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Term:      dictTerm,
			Distance:  distance,
			Frequency: freq,
		})
	}

	sort.Slice(suggestions, func(i, j int) bool {
		if suggestions[i].Distance != suggestions[j].Distance {
			return suggestions[i].Distance < suggestions[j].Distance
		}
		if suggestions[i].Frequency != suggestions[j].Frequency {
			return suggestions[i].Frequency > suggestions[j].Frequency
		}
		return suggestions[i].Term < suggestions[j].Term
	})
	if len(suggestions) > l.maxSuggestions {
		suggestions = suggestions[:l.maxSuggestions]
	}
	return suggestions
}

func (l *Linter) ensureCache() error {
	l.cacheMu.RLock()
	valid := l.cacheValid
	l.cacheMu.RUnlock()
	if valid {
		return nil
	}
	return l.RefreshCache()
}

func (l *Linter) isKnown(word string) bool {
	l.cacheMu.RLock()
	defer l.cacheMu.RUnlock()
	_, ok := l.termSet[strings.ToLower(word)]
	return ok
}

// lintWords splits a pattern term into lintable words. Pure numbers are
// skipped: spec-section keywords like "10 14 00" are legitimate even when
// a particular bid set never spells them out.
func lintWords(term string) []string {
	words := strings.Fields(strings.ToLower(term))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) < 2 || isNumeric(w) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
