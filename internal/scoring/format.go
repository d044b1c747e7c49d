package scoring

import (
	"fmt"
	"strings"

	"github.com/hyperjump/bidsift/internal/models"
)

// FormatScoresForLog renders scores as a compact one-line-per-document
// string for log output. Pure formatting; the input is not reordered.
func FormatScoresForLog(scores []models.DocumentScore) string {
	if len(scores) == 0 {
		return "no documents scored"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d document(s):", len(scores))
	for _, sc := range scores {
		b.WriteString("\n  ")
		fmt.Fprintf(&b, "%s [%s] score=%.1f band=%s signals=%d",
			sc.Filename, sc.Trade, sc.TotalScore, sc.Band, len(sc.Signals))
		if sc.Excluded {
			b.WriteString(" excluded")
			if term := firstExclusionTerm(sc.Signals); term != "" {
				fmt.Fprintf(&b, " (%s)", term)
			}
		}
	}
	return b.String()
}

// FormatSignals renders a score's signals as "source:term(+weight)" tokens.
func FormatSignals(signals []models.ScoreSignal) string {
	if len(signals) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(signals))
	for _, sig := range signals {
		if sig.IsExclusion {
			parts = append(parts, fmt.Sprintf("%s:%s(excl)", sig.Source, sig.MatchedTerm))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s:%s(+%.1f)", sig.Source, sig.MatchedTerm, sig.Weight))
	}
	return strings.Join(parts, ", ")
}

func firstExclusionTerm(signals []models.ScoreSignal) string {
	for _, sig := range signals {
		if sig.IsExclusion {
			return sig.MatchedTerm
		}
	}
	return ""
}
