// Package patterns holds per-trade signal patterns and the registry that
// serves them to the scorer and the fast-path extractor.
package patterns

import (
	"fmt"
	"strings"
)

// ContentPattern is a keyword or phrase signal matched against a document's
// content sample. Exclusion patterns veto a document when matched in any
// field (filename, folder path, or content) regardless of other signals.
type ContentPattern struct {
	Term   string  `yaml:"term" json:"term"`
	Weight float64 `yaml:"weight" json:"weight"`
	// IsExclusion marks a veto pattern. Exclusion patterns may carry a
	// zero weight; the weight of an exclusion signal is never summed.
	IsExclusion bool `yaml:"exclusion" json:"is_exclusion"`
}

// SignTypePattern is a sub-classifier within a trade (e.g. sign-type codes
// for a signage trade). It is applied to extracted line items, not to
// document ranking.
type SignTypePattern struct {
	Code        string   `yaml:"code" json:"code"`
	Terms       []string `yaml:"terms" json:"terms"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
}

// TradePatterns is the full pattern set registered for one trade code.
// Registered sets are read-only; re-registration replaces the whole set.
type TradePatterns struct {
	Content   []ContentPattern  `yaml:"content_patterns" json:"content_patterns"`
	SignTypes []SignTypePattern `yaml:"sign_types,omitempty" json:"sign_types,omitempty"`
	// FilenameKeywords and PathKeywords are matched case-insensitively as
	// substrings of the filename and folder path. Their signal weight is
	// supplied by the scorer configuration, not per keyword.
	FilenameKeywords []string `yaml:"filename_keywords,omitempty" json:"filename_keywords,omitempty"`
	PathKeywords     []string `yaml:"path_keywords,omitempty" json:"path_keywords,omitempty"`
	// Priority orders trades for keyword dispatch and listing; lower wins.
	// Trades with equal priority order by trade code.
	Priority int `yaml:"priority,omitempty" json:"priority,omitempty"`
}

// InvalidPatternError reports a malformed pattern at registration time.
type InvalidPatternError struct {
	Trade  string
	Term   string
	Reason string
}

func (e *InvalidPatternError) Error() string {
	if e.Term != "" {
		return fmt.Sprintf("invalid pattern for trade %q, term %q: %s", e.Trade, e.Term, e.Reason)
	}
	return fmt.Sprintf("invalid pattern for trade %q: %s", e.Trade, e.Reason)
}

// Validate checks the pattern set for registration. Content patterns must
// have a non-empty term; non-exclusion patterns must have positive weight;
// exclusion patterns must not have negative weight. Keyword entries and
// sign-type codes must be non-empty.
func Validate(trade string, p TradePatterns) error {
	if strings.TrimSpace(trade) == "" {
		return &InvalidPatternError{Trade: trade, Reason: "empty trade code"}
	}
	for _, cp := range p.Content {
		term := strings.TrimSpace(cp.Term)
		if term == "" {
			return &InvalidPatternError{Trade: trade, Reason: "content pattern with empty term"}
		}
		if cp.IsExclusion {
			if cp.Weight < 0 {
				return &InvalidPatternError{Trade: trade, Term: cp.Term, Reason: "exclusion pattern with negative weight"}
			}
			continue
		}
		if cp.Weight <= 0 {
			return &InvalidPatternError{Trade: trade, Term: cp.Term, Reason: "non-positive weight"}
		}
	}
	for _, st := range p.SignTypes {
		if strings.TrimSpace(st.Code) == "" {
			return &InvalidPatternError{Trade: trade, Reason: "sign type with empty code"}
		}
		for _, t := range st.Terms {
			if strings.TrimSpace(t) == "" {
				return &InvalidPatternError{Trade: trade, Term: st.Code, Reason: "sign type with empty term"}
			}
		}
	}
	for _, k := range p.FilenameKeywords {
		if strings.TrimSpace(k) == "" {
			return &InvalidPatternError{Trade: trade, Reason: "empty filename keyword"}
		}
	}
	for _, k := range p.PathKeywords {
		if strings.TrimSpace(k) == "" {
			return &InvalidPatternError{Trade: trade, Reason: "empty path keyword"}
		}
	}
	return nil
}

// Exclusions returns the exclusion content patterns of the set.
func (p TradePatterns) Exclusions() []ContentPattern {
	var out []ContentPattern
	for _, cp := range p.Content {
		if cp.IsExclusion {
			out = append(out, cp)
		}
	}
	return out
}
