package fastpath

import "github.com/hyperjump/bidsift/internal/models"

// AssessQuality rates how much of an extraction outcome is trustworthy.
// Zero items is none regardless of issues. Otherwise the item count and the
// issues-per-item ratio decide: dense and nearly clean is good, partial but
// mostly clean is medium, everything else is poor.
func (f *FastPath) AssessQuality(items []models.ExtractedItem, issues []models.FastPathIssue) models.ExtractionQuality {
	if len(items) == 0 {
		return models.QualityNone
	}
	ratio := float64(len(issues)) / float64(len(items))
	switch {
	case len(items) >= f.config.GoodMinItems && ratio <= f.config.GoodMaxIssueRatio:
		return models.QualityGood
	case len(items) >= f.config.MediumMinItems && ratio <= f.config.MediumMaxIssueRatio:
		return models.QualityMedium
	default:
		return models.QualityPoor
	}
}
