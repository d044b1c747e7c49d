package scoring

import (
	"sort"

	"github.com/hyperjump/bidsift/internal/models"
)

// SortByRank sorts scores in place from best to worst: non-excluded before
// excluded, then higher total score, then case-insensitive filename. The
// order is total, so equal inputs always produce the same output.
func SortByRank(scores []models.DocumentScore) {
	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].RanksAbove(scores[j])
	})
}

// TopDocument returns the highest-ranked non-excluded score. The second
// return value is false when the input is empty or every document is
// excluded.
func TopDocument(scores []models.DocumentScore) (models.DocumentScore, bool) {
	var best models.DocumentScore
	found := false
	for _, sc := range scores {
		if sc.Excluded {
			continue
		}
		if !found || sc.RanksAbove(best) {
			best = sc
			found = true
		}
	}
	return best, found
}

// HighPriorityDocuments returns the non-excluded scores at or above the
// threshold, sorted best first.
func HighPriorityDocuments(scores []models.DocumentScore, threshold float64) []models.DocumentScore {
	var out []models.DocumentScore
	for _, sc := range scores {
		if sc.Excluded || sc.TotalScore < threshold {
			continue
		}
		out = append(out, sc)
	}
	SortByRank(out)
	return out
}

// AmbiguousScores returns the scores in the ambiguous band, preserving input
// order. These are the documents eligible for AI fallback classification.
func AmbiguousScores(scores []models.DocumentScore, config *ScoringConfig) []models.DocumentScore {
	if config == nil {
		config = DefaultScoringConfig()
	}
	var out []models.DocumentScore
	for _, sc := range scores {
		if config.Ambiguous(sc) {
			out = append(out, sc)
		}
	}
	return out
}
