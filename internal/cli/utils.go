// Package cli provides output writers for the bidsift command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hyperjump/bidsift/internal/models"
	"github.com/hyperjump/bidsift/pkg/utils"
)

// OutputFormat is the format for CLI result output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
	// OutputCompact is one result per line, for piping into other tools.
	OutputCompact OutputFormat = "compact"
)

// ParseFormat maps a -output flag value to an OutputFormat.
func ParseFormat(s string) (OutputFormat, error) {
	switch s {
	case "", "text":
		return OutputText, nil
	case "json":
		return OutputJSON, nil
	case "compact":
		return OutputCompact, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, compact, or json", s)
	}
}

// WriteScores writes document scores to w in the given format. The slice
// is written in the order given; rank first before calling when ranked
// output is wanted.
func WriteScores(w io.Writer, scores []models.DocumentScore, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, scores)
	case OutputCompact:
		for _, sc := range scores {
			fmt.Fprintf(w, "%.2f\t%s\t%s\t%s\t%s\n",
				sc.TotalScore, sc.Band, excludedMark(sc.Excluded), sc.Trade, sc.Filename)
		}
		return nil
	default:
		writeScoresText(w, scores)
		return nil
	}
}

func writeScoresText(w io.Writer, scores []models.DocumentScore) {
	fmt.Fprintf(w, "\n%d document(s) scored\n\n", len(scores))
	for _, sc := range scores {
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "Score: %.2f | Band: %s | Trade: %s", sc.TotalScore, sc.Band, sc.Trade)
		if sc.Excluded {
			fmt.Fprintf(w, " | EXCLUDED")
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "ID: %s\n", sc.DocumentID)
		fmt.Fprintf(w, "File: %s\n", sc.Filename)
		for _, sig := range sc.Signals {
			marker := "+"
			if sig.IsExclusion {
				marker = "!"
			}
			fmt.Fprintf(w, "  %s %-8s %-24s %.1f\n", marker, sig.Source, utils.Truncate(sig.MatchedTerm, 24), sig.Weight)
		}
		fmt.Fprintln(w)
	}
}

// WriteDecisions writes routing decisions for one trade to w.
func WriteDecisions(w io.Writer, trade string, decisions []models.Decision, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, decisions)
	case OutputCompact:
		for _, d := range decisions {
			fmt.Fprintf(w, "%s\t%.2f\t%s\t%d\t%s\n",
				d.Route, d.Score.TotalScore, trade, fastPathItems(d), d.Score.Filename)
		}
		return nil
	default:
		writeDecisionsText(w, trade, decisions)
		return nil
	}
}

func writeDecisionsText(w io.Writer, trade string, decisions []models.Decision) {
	fmt.Fprintf(w, "\n=== %s: %d decision(s) ===\n\n", trade, len(decisions))
	for _, d := range decisions {
		fmt.Fprintf(w, "%-14s %6.2f  %s", d.Route, d.Score.TotalScore, d.Score.Filename)
		var notes []string
		if d.Score.Excluded {
			notes = append(notes, "excluded")
		}
		if d.Boosted {
			notes = append(notes, "boosted")
		}
		if d.FastPath != nil {
			notes = append(notes, fmt.Sprintf("%s/%s, %d item(s), %d issue(s)",
				d.FastPath.SourceType, d.FastPath.Quality, len(d.FastPath.Items), len(d.FastPath.Issues)))
		}
		if len(notes) > 0 {
			fmt.Fprintf(w, "  (%s)", strings.Join(notes, "; "))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)
}

// WriteFastPathResult writes a single fast-path extraction result to w.
func WriteFastPathResult(w io.Writer, result models.FastPathResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, result)
	case OutputCompact:
		for _, item := range result.Items {
			fmt.Fprintf(w, "%s\t%g\t%s\t%s\t%s\n",
				item.Tag, item.Quantity, item.Unit, item.SignType, item.Description)
		}
		return nil
	default:
		writeFastPathText(w, result)
		return nil
	}
}

func writeFastPathText(w io.Writer, result models.FastPathResult) {
	fmt.Fprintf(w, "\nSource: %s | Quality: %s | %d item(s), %d issue(s)\n\n",
		result.SourceType, result.Quality, len(result.Items), len(result.Issues))
	if len(result.Items) > 0 {
		fmt.Fprintf(w, "%-10s %-8s %-6s %-8s %s\n", "TAG", "QTY", "UNIT", "SIGNTYPE", "DESCRIPTION")
		for _, item := range result.Items {
			fmt.Fprintf(w, "%-10s %-8g %-6s %-8s %s\n",
				item.Tag, item.Quantity, item.Unit, item.SignType, utils.Truncate(item.Description, 60))
		}
		fmt.Fprintln(w)
	}
	for _, issue := range result.Issues {
		if issue.PageNumber > 0 {
			fmt.Fprintf(w, "  ! %s (page %d): %s\n", issue.Kind, issue.PageNumber, issue.Message)
		} else {
			fmt.Fprintf(w, "  ! %s: %s\n", issue.Kind, issue.Message)
		}
	}
}

// WriteRunSummary writes one run summary line, used by run and status.
func WriteRunSummary(w io.Writer, s *models.RunSummary) {
	fmt.Fprintf(w, "run %s: %d document(s) -> %d fast-path, %d ai-extraction, %d skip (%s)\n",
		utils.Truncate(s.RunID, 8), s.Documents, s.FastPath, s.AIRouted, s.Skipped,
		s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func excludedMark(excluded bool) string {
	if excluded {
		return "excluded"
	}
	return "-"
}

func fastPathItems(d models.Decision) int {
	if d.FastPath == nil {
		return 0
	}
	return len(d.FastPath.Items)
}
