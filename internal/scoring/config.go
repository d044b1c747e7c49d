package scoring

import "github.com/hyperjump/bidsift/internal/models"

// ScoringConfig holds all configuration for the document scorer.
type ScoringConfig struct {
	// Signal weights for keyword matches; content pattern weights come
	// from the pattern definitions themselves.
	FilenameKeywordWeight float64 `yaml:"filename_keyword_weight"` // default: 3.0
	PathKeywordWeight     float64 `yaml:"path_keyword_weight"`     // default: 2.0

	// Confidence band thresholds
	HighBandThreshold   float64 `yaml:"high_band_threshold"`   // default: 10.0
	MediumBandThreshold float64 `yaml:"medium_band_threshold"` // default: 4.0

	// Selection threshold for getHighPriorityDocuments
	HighPriorityThreshold float64 `yaml:"high_priority_threshold"` // default: 8.0

	// Content samples longer than this are truncated before matching.
	MaxContentSampleBytes int `yaml:"max_content_sample_bytes"` // default: 16384
}

// DefaultScoringConfig returns the default scoring configuration.
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		FilenameKeywordWeight: 3.0,
		PathKeywordWeight:     2.0,
		HighBandThreshold:     10.0,
		MediumBandThreshold:   4.0,
		HighPriorityThreshold: 8.0,
		MaxContentSampleBytes: 16384,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *ScoringConfig) ApplyDefaults() {
	defaults := DefaultScoringConfig()

	if c.FilenameKeywordWeight == 0 {
		c.FilenameKeywordWeight = defaults.FilenameKeywordWeight
	}
	if c.PathKeywordWeight == 0 {
		c.PathKeywordWeight = defaults.PathKeywordWeight
	}
	if c.HighBandThreshold == 0 {
		c.HighBandThreshold = defaults.HighBandThreshold
	}
	if c.MediumBandThreshold == 0 {
		c.MediumBandThreshold = defaults.MediumBandThreshold
	}
	if c.HighPriorityThreshold == 0 {
		c.HighPriorityThreshold = defaults.HighPriorityThreshold
	}
	if c.MaxContentSampleBytes == 0 {
		c.MaxContentSampleBytes = defaults.MaxContentSampleBytes
	}
}

// Band maps a total score to its confidence band. Callers pass the excluded
// flag so vetoed documents always band as none.
func (c *ScoringConfig) Band(totalScore float64, excluded bool) models.ConfidenceBand {
	switch {
	case excluded:
		return models.BandNone
	case totalScore >= c.HighBandThreshold:
		return models.BandHigh
	case totalScore >= c.MediumBandThreshold:
		return models.BandMedium
	case totalScore > 0:
		return models.BandLow
	default:
		return models.BandNone
	}
}

// Ambiguous reports whether a score falls in the band where heuristic
// confidence alone cannot route the document: matched something, but not
// strongly enough to clear the high band. Excluded documents are never
// ambiguous.
func (c *ScoringConfig) Ambiguous(score models.DocumentScore) bool {
	if score.Excluded {
		return false
	}
	return score.TotalScore > 0 && score.TotalScore < c.HighBandThreshold
}
