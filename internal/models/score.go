package models

import "strings"

// SignalSource identifies which document field a score signal matched.
type SignalSource string

const (
	// SignalFilename indicates a match in the document filename.
	SignalFilename SignalSource = "filename"
	// SignalPath indicates a match in the document folder path.
	SignalPath SignalSource = "path"
	// SignalContent indicates a match in the extracted content sample.
	SignalContent SignalSource = "content"
)

// ScoreSignal is one matched pattern instance produced during scoring.
// Signals are ephemeral: they live on a DocumentScore and are not persisted.
type ScoreSignal struct {
	Source      SignalSource `json:"source"`
	MatchedTerm string       `json:"matched_term"`
	Weight      float64      `json:"weight"`
	IsExclusion bool         `json:"is_exclusion"`
}

// ConfidenceBand classifies a total score into a routing band.
type ConfidenceBand string

const (
	// BandHigh means the heuristic score alone is sufficient to route.
	BandHigh ConfidenceBand = "high"
	// BandMedium means corroborating signals exist but AI may still help.
	BandMedium ConfidenceBand = "medium"
	// BandLow means weak signals only; AI fallback is worthwhile.
	BandLow ConfidenceBand = "low"
	// BandNone means no signal fired, or the document is excluded.
	BandNone ConfidenceBand = "none"
)

// DocumentScore is the result of scoring one document against one trade.
//
// Excluded is true iff at least one exclusion signal fired; an excluded
// score ranks below every non-excluded score regardless of TotalScore.
type DocumentScore struct {
	DocumentID string `json:"document_id"`
	// Filename is carried from the scored document so ranking can break
	// exact score ties by case-insensitive filename order.
	Filename   string         `json:"filename"`
	Trade      string         `json:"trade"`
	TotalScore float64        `json:"total_score"`
	Signals    []ScoreSignal  `json:"signals,omitempty"`
	Excluded   bool           `json:"excluded"`
	Band       ConfidenceBand `json:"confidence_band"`
}

// RanksAbove reports whether s outranks other under the total ranking
// order: non-excluded beats excluded, then higher TotalScore, then
// case-insensitive filename, then DocumentID as the final disambiguator.
func (s DocumentScore) RanksAbove(other DocumentScore) bool {
	if s.Excluded != other.Excluded {
		return !s.Excluded
	}
	if s.TotalScore != other.TotalScore {
		return s.TotalScore > other.TotalScore
	}
	a, b := strings.ToLower(s.Filename), strings.ToLower(other.Filename)
	if a != b {
		return a < b
	}
	return s.DocumentID < other.DocumentID
}
