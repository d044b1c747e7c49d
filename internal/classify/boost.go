package classify

import (
	"strings"

	"github.com/hyperjump/bidsift/internal/models"
	"github.com/hyperjump/bidsift/internal/scoring"
)

// BoostScoresWithAI folds classification confidence back into heuristic
// scores and returns a new slice in the same order; the input is never
// mutated. A score is boosted only when a classification matches its
// document and predicts the same trade. Excluded documents are never
// boosted and never leave the excluded state. Confidence bands are
// recomputed from the boosted totals.
func BoostScoresWithAI(scores []models.DocumentScore, classifications []models.ClassificationResult, cfg *BoostConfig, bands *scoring.ScoringConfig) []models.DocumentScore {
	if cfg == nil {
		cfg = DefaultBoostConfig()
	}
	if bands == nil {
		bands = scoring.DefaultScoringConfig()
	}

	byID := make(map[string]models.ClassificationResult, len(classifications))
	byName := make(map[string]models.ClassificationResult, len(classifications))
	for _, c := range classifications {
		if c.DocumentID != "" {
			byID[c.DocumentID] = c
		}
		if c.Filename != "" {
			byName[strings.ToLower(c.Filename)] = c
		}
	}

	out := make([]models.DocumentScore, len(scores))
	for i, sc := range scores {
		out[i] = sc
		if sc.Excluded {
			continue
		}
		c, ok := byID[sc.DocumentID]
		if !ok {
			c, ok = byName[strings.ToLower(sc.Filename)]
		}
		if !ok || !strings.EqualFold(c.PredictedTrade, sc.Trade) {
			continue
		}
		delta := boostDelta(sc.TotalScore, clampConfidence(c.Confidence), cfg)
		if delta <= 0 {
			continue
		}
		out[i].TotalScore = sc.TotalScore + delta
		out[i].Band = bands.Band(out[i].TotalScore, out[i].Excluded)
	}
	return out
}

// boostDelta converts a confidence into the points added to a score,
// capped at MaxBoost.
func boostDelta(total, confidence float64, cfg *BoostConfig) float64 {
	var delta float64
	switch cfg.Mode {
	case ModeMultiplicative:
		delta = total * confidence * (cfg.BoostFactor - 1)
	default:
		delta = confidence * cfg.BoostWeight
	}
	if delta > cfg.MaxBoost {
		delta = cfg.MaxBoost
	}
	return delta
}

// clampConfidence bounds a model-reported confidence into [0,1].
func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}
