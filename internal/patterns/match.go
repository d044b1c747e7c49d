package patterns

import (
	"strings"

	"github.com/hyperjump/bidsift/internal/models"
)

// Matching is case-insensitive substring containment throughout. Each
// pattern contributes at most one signal per field, however many times the
// term occurs in that field.

func containsFold(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func anyKeyword(field string, keywords []string) bool {
	for _, k := range keywords {
		if containsFold(field, k) {
			return true
		}
	}
	return false
}

// MatchFilename scores a filename against one trade's pattern set. Filename
// keywords each contribute one signal at keywordWeight; exclusion patterns
// are also checked here because an exclusion term in any field vetoes the
// document.
func MatchFilename(filename string, p TradePatterns, keywordWeight float64) []models.ScoreSignal {
	var signals []models.ScoreSignal
	for _, k := range p.FilenameKeywords {
		if containsFold(filename, k) {
			signals = append(signals, models.ScoreSignal{
				Source:      models.SignalFilename,
				MatchedTerm: k,
				Weight:      keywordWeight,
			})
		}
	}
	signals = append(signals, matchExclusions(filename, p, models.SignalFilename)...)
	return signals
}

// MatchFolderPath scores a folder path against one trade's pattern set.
func MatchFolderPath(folderPath string, p TradePatterns, keywordWeight float64) []models.ScoreSignal {
	var signals []models.ScoreSignal
	for _, k := range p.PathKeywords {
		if containsFold(folderPath, k) {
			signals = append(signals, models.ScoreSignal{
				Source:      models.SignalPath,
				MatchedTerm: k,
				Weight:      keywordWeight,
			})
		}
	}
	signals = append(signals, matchExclusions(folderPath, p, models.SignalPath)...)
	return signals
}

// MatchContent scores a content sample against one trade's pattern set.
// Every content pattern, inclusion or exclusion, is checked; each match
// contributes exactly one signal regardless of occurrence count.
func MatchContent(sample string, p TradePatterns) []models.ScoreSignal {
	if sample == "" {
		return nil
	}
	lower := strings.ToLower(sample)
	var signals []models.ScoreSignal
	for _, cp := range p.Content {
		if !strings.Contains(lower, strings.ToLower(cp.Term)) {
			continue
		}
		signals = append(signals, models.ScoreSignal{
			Source:      models.SignalContent,
			MatchedTerm: cp.Term,
			Weight:      cp.Weight,
			IsExclusion: cp.IsExclusion,
		})
	}
	return signals
}

func matchExclusions(field string, p TradePatterns, source models.SignalSource) []models.ScoreSignal {
	var signals []models.ScoreSignal
	for _, cp := range p.Content {
		if !cp.IsExclusion {
			continue
		}
		if containsFold(field, cp.Term) {
			signals = append(signals, models.ScoreSignal{
				Source:      source,
				MatchedTerm: cp.Term,
				Weight:      cp.Weight,
				IsExclusion: true,
			})
		}
	}
	return signals
}

// ClassifySignType maps an extracted item description to the first matching
// sign-type code for the trade, in declaration order. It returns the empty
// string when nothing matches.
func ClassifySignType(description string, p TradePatterns) string {
	for _, st := range p.SignTypes {
		for _, term := range st.Terms {
			if containsFold(description, term) {
				return st.Code
			}
		}
	}
	return ""
}
