// Package pipeline orchestrates the run over a bid document set: score
// every document against every trade, attempt fast-path extraction where
// scores justify it, spend AI classification only on the ambiguous band,
// and emit a routable decision per document and trade.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/bidsift/internal/classify"
	"github.com/hyperjump/bidsift/internal/fastpath"
	"github.com/hyperjump/bidsift/internal/metrics"
	"github.com/hyperjump/bidsift/internal/models"
	"github.com/hyperjump/bidsift/internal/patterns"
	"github.com/hyperjump/bidsift/internal/scoring"
	"github.com/hyperjump/bidsift/internal/storage"
)

// bandRank orders confidence bands for eligibility comparisons.
var bandRank = map[models.ConfidenceBand]int{
	models.BandNone:   0,
	models.BandLow:    1,
	models.BandMedium: 2,
	models.BandHigh:   3,
}

// Runner wires the pipeline stages together.
type Runner struct {
	registry     *patterns.Registry
	scorer       *scoring.Scorer
	fastPath     *fastpath.FastPath
	classifier   classify.Classifier
	providerName string
	boost        *classify.BoostConfig
	store        storage.Store
	metrics      *metrics.Metrics
	fastPathBand models.ConfidenceBand
	logger       *zap.Logger
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger for the runner.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// WithClassifier enables AI fallback classification. provider names the
// adapter for logs and metrics (gemini, local, stub).
func WithClassifier(provider string, c classify.Classifier) Option {
	return func(r *Runner) {
		r.providerName = provider
		r.classifier = c
	}
}

// WithBoostConfig overrides how classifications adjust scores.
func WithBoostConfig(cfg *classify.BoostConfig) Option {
	return func(r *Runner) { r.boost = cfg }
}

// WithStore persists run summaries and decisions.
func WithStore(store storage.Store) Option {
	return func(r *Runner) { r.store = store }
}

// WithMetrics records stage counters and timings.
func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) { r.metrics = m }
}

// WithFastPathBand sets the minimum confidence band a document must score
// before fast-path extraction is attempted.
func WithFastPathBand(band models.ConfidenceBand) Option {
	return func(r *Runner) { r.fastPathBand = band }
}

// NewRunner creates a pipeline runner. Classifier, store, and metrics are
// optional: without a classifier the ambiguous band goes unboosted, without
// a store runs are not persisted.
func NewRunner(registry *patterns.Registry, scorer *scoring.Scorer, fastPath *fastpath.FastPath, opts ...Option) *Runner {
	r := &Runner{
		registry:     registry,
		scorer:       scorer,
		fastPath:     fastPath,
		boost:        classify.DefaultBoostConfig(),
		fastPathBand: models.BandMedium,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.boost.ApplyDefaults()
	return r
}

// RunResult is the full output of one pipeline run.
type RunResult struct {
	Summary models.RunSummary `json:"summary"`
	// Scores holds the post-boost scores per trade, mirroring input order.
	Scores map[string][]models.DocumentScore `json:"scores"`
	// Decisions holds the routing decisions per trade, ranked best first.
	Decisions map[string][]models.Decision `json:"decisions"`
}

// Run executes the pipeline over docs for the given trades. An empty trade
// list means every registered trade. On context cancellation the result
// holds everything computed so far alongside the context error; scores and
// decisions already present are valid.
func (r *Runner) Run(ctx context.Context, docs []models.DocumentInfo, trades []string) (*RunResult, error) {
	summary := models.RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: time.Now().UTC(),
		Documents: len(docs),
	}
	if len(trades) == 0 {
		trades = r.registry.Trades()
	}
	logger := r.logger.With(zap.String("run_id", summary.RunID))
	logger.Info("pipeline run started",
		zap.Int("documents", len(docs)),
		zap.Strings("trades", trades))

	result := &RunResult{
		Scores:    make(map[string][]models.DocumentScore, len(trades)),
		Decisions: make(map[string][]models.Decision, len(trades)),
	}

	var runErr error
	for _, trade := range trades {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		scores, decisions, err := r.runTrade(ctx, docs, trade, logger)
		result.Scores[trade] = scores
		result.Decisions[trade] = decisions
		tally(&summary, decisions)
		if err != nil {
			runErr = err
			break
		}
	}

	summary.FinishedAt = time.Now().UTC()
	result.Summary = summary
	r.persist(ctx, result, logger)

	logger.Info("pipeline run finished",
		zap.Int("documents", summary.Documents),
		zap.Int("fast_path", summary.FastPath),
		zap.Int("ai_routed", summary.AIRouted),
		zap.Int("skipped", summary.Skipped),
		zap.Duration("took", summary.FinishedAt.Sub(summary.StartedAt)))

	if runErr != nil {
		return result, fmt.Errorf("run aborted: %w", runErr)
	}
	return result, nil
}

// runTrade executes stages 1-4 for one trade. The returned error is only
// ever a context error; every other failure degrades and is logged.
func (r *Runner) runTrade(ctx context.Context, docs []models.DocumentInfo, trade string, logger *zap.Logger) ([]models.DocumentScore, []models.Decision, error) {
	p, registered := r.registry.Get(trade)

	start := time.Now()
	scores := r.scoreTrade(docs, trade)
	r.metrics.ObserveStage("score", time.Since(start))
	r.metrics.RecordScored(trade, len(scores))

	fastPathByID := make(map[string]*models.FastPathResult)
	var fpErr error
	if registered {
		eligible := r.fastPathEligible(docs, scores)
		if len(eligible) > 0 {
			start = time.Now()
			results, err := r.fastPath.ExtractAll(ctx, eligible, p)
			r.metrics.ObserveStage("fastpath", time.Since(start))
			fpErr = err
			for i := range results {
				res := results[i]
				fastPathByID[res.DocumentID] = &res
				r.metrics.RecordFastPath(string(res.SourceType), string(res.Quality))
			}
		}
	}

	boosted, boostedIDs, clsErr := r.classifyAndBoost(ctx, scores, trade, logger)
	decisions := r.decide(boosted, boostedIDs, fastPathByID)

	logger.Debug("trade decided",
		zap.String("trade", trade),
		zap.Int("fast_path_attempts", len(fastPathByID)),
		zap.Int("boosted", len(boostedIDs)))

	if fpErr != nil {
		return boosted, decisions, fpErr
	}
	return boosted, decisions, clsErr
}

// scoreTrade scores docs concurrently into an index-addressed slice, so the
// output order always mirrors the input order.
func (r *Runner) scoreTrade(docs []models.DocumentInfo, trade string) []models.DocumentScore {
	scores := make([]models.DocumentScore, len(docs))
	workers := runtime.GOMAXPROCS(0)
	if workers > len(docs) {
		workers = len(docs)
	}
	if workers <= 1 {
		for i := range docs {
			scores[i] = r.scorer.ScoreDocument(docs[i], trade)
		}
		return scores
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i := range docs {
		sem <- struct{}{}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			scores[i] = r.scorer.ScoreDocument(docs[i], trade)
		}(i)
	}
	wg.Wait()
	return scores
}

// fastPathEligible selects the documents worth an extraction attempt:
// non-excluded and scored at or above the configured band.
func (r *Runner) fastPathEligible(docs []models.DocumentInfo, scores []models.DocumentScore) []models.DocumentInfo {
	var eligible []models.DocumentInfo
	for i, sc := range scores {
		if sc.Excluded {
			continue
		}
		if bandRank[sc.Band] < bandRank[r.fastPathBand] {
			continue
		}
		eligible = append(eligible, docs[i])
	}
	return eligible
}

// classifyAndBoost sends the ambiguous band through the classifier in one
// batched invocation and blends the predictions into the scores. Adapter
// failures degrade to no boost; only context errors propagate.
func (r *Runner) classifyAndBoost(ctx context.Context, scores []models.DocumentScore, trade string, logger *zap.Logger) ([]models.DocumentScore, map[string]bool, error) {
	if r.classifier == nil {
		return scores, nil, nil
	}
	ambiguous := scoring.AmbiguousScores(scores, r.scorer.Config())
	if len(ambiguous) == 0 {
		return scores, nil, nil
	}

	filenames := make([]string, len(ambiguous))
	for i, sc := range ambiguous {
		filenames[i] = sc.Filename
	}

	start := time.Now()
	classifications, err := r.classifier.Classify(ctx, filenames, trade)
	r.metrics.ObserveStage("classify", time.Since(start))

	var ctxErr error
	if err != nil {
		r.metrics.RecordClassification(r.providerName, "error")
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			// Partial batches already returned stay usable.
			ctxErr = err
		} else {
			logger.Warn("classification degraded to no boost",
				zap.String("trade", trade),
				zap.Int("ambiguous", len(ambiguous)),
				zap.Error(err))
		}
	} else {
		r.metrics.RecordClassification(r.providerName, "ok")
	}

	boosted := classify.BoostScoresWithAI(scores, classifications, r.boost, r.scorer.Config())
	boostedIDs := make(map[string]bool)
	for i := range scores {
		if boosted[i].TotalScore != scores[i].TotalScore {
			boostedIDs[boosted[i].DocumentID] = true
		}
	}
	return boosted, boostedIDs, ctxErr
}

// decide ranks the trade's scores and assigns each document a route.
func (r *Runner) decide(scores []models.DocumentScore, boostedIDs map[string]bool, fastPathByID map[string]*models.FastPathResult) []models.Decision {
	ranked := make([]models.DocumentScore, len(scores))
	copy(ranked, scores)
	scoring.SortByRank(ranked)

	decisions := make([]models.Decision, 0, len(ranked))
	for _, sc := range ranked {
		d := models.Decision{
			DocumentID: sc.DocumentID,
			Trade:      sc.Trade,
			Score:      sc,
			FastPath:   fastPathByID[sc.DocumentID],
			Boosted:    boostedIDs[sc.DocumentID],
		}
		d.Route = route(sc, d.FastPath)
		decisions = append(decisions, d)
	}
	return decisions
}

// route maps one scored document to its disposition. Exclusion and zero
// scores skip; a good or medium quality fast-path result short-circuits the
// AI extraction spend; everything else that scored goes to AI extraction.
func route(sc models.DocumentScore, fp *models.FastPathResult) models.Route {
	if sc.Excluded || sc.TotalScore <= 0 {
		return models.RouteSkip
	}
	if fp != nil && (fp.Quality == models.QualityGood || fp.Quality == models.QualityMedium) {
		return models.RouteFastPath
	}
	return models.RouteAIExtraction
}

func tally(summary *models.RunSummary, decisions []models.Decision) {
	for _, d := range decisions {
		switch d.Route {
		case models.RouteFastPath:
			summary.FastPath++
		case models.RouteAIExtraction:
			summary.AIRouted++
		default:
			summary.Skipped++
		}
	}
}

// persist is best-effort: a run whose summary cannot be written is still a
// valid run for the caller.
func (r *Runner) persist(ctx context.Context, result *RunResult, logger *zap.Logger) {
	if r.store == nil {
		return
	}
	if err := r.store.SaveRun(ctx, &result.Summary); err != nil {
		logger.Warn("run summary not persisted", zap.Error(err))
		return
	}
	var all []models.Decision
	for _, decisions := range result.Decisions {
		all = append(all, decisions...)
	}
	if err := r.store.SaveDecisions(ctx, result.Summary.RunID, all); err != nil {
		logger.Warn("run decisions not persisted", zap.Error(err))
	}
}
