package fastpath

// FastPathConfig holds configuration for fast-path extraction.
type FastPathConfig struct {
	// MinTextChars is the minimum extractable text across all pages for a
	// PDF to count as native-text rather than image-only.
	MinTextChars int `yaml:"min_text_chars"` // default: 200

	// Workers bounds concurrent extraction; extraction does file I/O and
	// is scheduled independently of scoring.
	Workers int `yaml:"workers"` // default: 4

	// Quality thresholds. Ratio is issues per extracted item.
	GoodMinItems        int     `yaml:"good_min_items"`         // default: 20
	GoodMaxIssueRatio   float64 `yaml:"good_max_issue_ratio"`   // default: 0.1
	MediumMinItems      int     `yaml:"medium_min_items"`       // default: 5
	MediumMaxIssueRatio float64 `yaml:"medium_max_issue_ratio"` // default: 0.5
}

// DefaultFastPathConfig returns the default fast-path configuration.
func DefaultFastPathConfig() *FastPathConfig {
	return &FastPathConfig{
		MinTextChars:        200,
		Workers:             4,
		GoodMinItems:        20,
		GoodMaxIssueRatio:   0.1,
		MediumMinItems:      5,
		MediumMaxIssueRatio: 0.5,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *FastPathConfig) ApplyDefaults() {
	defaults := DefaultFastPathConfig()

	if c.MinTextChars == 0 {
		c.MinTextChars = defaults.MinTextChars
	}
	if c.Workers == 0 {
		c.Workers = defaults.Workers
	}
	if c.GoodMinItems == 0 {
		c.GoodMinItems = defaults.GoodMinItems
	}
	if c.GoodMaxIssueRatio == 0 {
		c.GoodMaxIssueRatio = defaults.GoodMaxIssueRatio
	}
	if c.MediumMinItems == 0 {
		c.MediumMinItems = defaults.MediumMinItems
	}
	if c.MediumMaxIssueRatio == 0 {
		c.MediumMaxIssueRatio = defaults.MediumMaxIssueRatio
	}
}
