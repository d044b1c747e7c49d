// Package scoring ranks bid documents for a trade by summing weighted
// pattern signals from the filename, folder path, and content sample.
package scoring

import (
	"go.uber.org/zap"

	"github.com/hyperjump/bidsift/internal/models"
	"github.com/hyperjump/bidsift/internal/patterns"
)

// Scorer computes weighted relevance scores for documents against the
// trades in a pattern registry.
type Scorer struct {
	registry *patterns.Registry
	config   *ScoringConfig
	logger   *zap.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithLogger sets the logger for the scorer.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scorer) {
		s.logger = logger
	}
}

// NewScorer creates a Scorer over the given registry. A nil config uses
// defaults.
func NewScorer(registry *patterns.Registry, config *ScoringConfig, opts ...Option) *Scorer {
	if config == nil {
		config = DefaultScoringConfig()
	}
	config.ApplyDefaults()

	s := &Scorer{
		registry: registry,
		config:   config,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the scoring configuration.
func (s *Scorer) Config() *ScoringConfig {
	return s.config
}

// ScoreDocument scores one document against one trade. The result is
// deterministic for a given document and registry state: same signals, same
// totals, same band. An unknown trade code yields an empty score with band
// none.
func (s *Scorer) ScoreDocument(doc models.DocumentInfo, trade string) models.DocumentScore {
	score := models.DocumentScore{
		DocumentID: doc.ID,
		Filename:   doc.Filename,
		Trade:      trade,
	}

	p, ok := s.registry.Get(trade)
	if !ok {
		s.logger.Debug("scored against unregistered trade",
			zap.String("trade", trade),
			zap.String("document_id", doc.ID))
		score.Band = models.BandNone
		return score
	}

	var signals []models.ScoreSignal
	signals = append(signals, patterns.MatchFilename(doc.Filename, p, s.config.FilenameKeywordWeight)...)
	signals = append(signals, patterns.MatchFolderPath(doc.FolderPath, p, s.config.PathKeywordWeight)...)
	signals = append(signals, patterns.MatchContent(s.sample(doc.ContentSample), p)...)

	for _, sig := range signals {
		if sig.IsExclusion {
			score.Excluded = true
			continue
		}
		score.TotalScore += sig.Weight
	}
	score.Signals = signals
	score.Band = s.config.Band(score.TotalScore, score.Excluded)
	return score
}

// ScoreDocuments scores a batch of documents against one trade. The output
// order mirrors the input order.
func (s *Scorer) ScoreDocuments(docs []models.DocumentInfo, trade string) []models.DocumentScore {
	scores := make([]models.DocumentScore, 0, len(docs))
	for _, doc := range docs {
		scores = append(scores, s.ScoreDocument(doc, trade))
	}
	return scores
}

// ScoreAllDocuments scores every document against every given trade. The
// result is keyed by trade code; each slice mirrors the input order. This is
// the multi-trade path used when a bid set has not been dispatched to a
// single trade yet.
func (s *Scorer) ScoreAllDocuments(docs []models.DocumentInfo, trades []string) map[string][]models.DocumentScore {
	out := make(map[string][]models.DocumentScore, len(trades))
	for _, trade := range trades {
		out[trade] = s.ScoreDocuments(docs, trade)
	}
	return out
}

// Ambiguous reports whether the score needs AI assistance to route.
func (s *Scorer) Ambiguous(score models.DocumentScore) bool {
	return s.config.Ambiguous(score)
}

// sample bounds the content sample so pathological extractions cannot slow
// matching down.
func (s *Scorer) sample(content string) string {
	if s.config.MaxContentSampleBytes > 0 && len(content) > s.config.MaxContentSampleBytes {
		return content[:s.config.MaxContentSampleBytes]
	}
	return content
}
