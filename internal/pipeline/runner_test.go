package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/bidsift/internal/classify"
	"github.com/hyperjump/bidsift/internal/fastpath"
	"github.com/hyperjump/bidsift/internal/models"
	"github.com/hyperjump/bidsift/internal/patterns"
	"github.com/hyperjump/bidsift/internal/scoring"
	"github.com/hyperjump/bidsift/internal/storage"
)

func signageRegistry(t *testing.T) *patterns.Registry {
	t.Helper()
	reg := patterns.NewRegistry()
	err := reg.Register("signage", patterns.TradePatterns{
		Content: []patterns.ContentPattern{
			{Term: "exit sign", Weight: 5},
			{Term: "legal disclaimer", IsExclusion: true},
		},
		FilenameKeywords: []string{"sign"},
		PathKeywords:     []string{"signage"},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	return reg
}

func newTestRunner(t *testing.T, opts ...Option) *Runner {
	t.Helper()
	reg := signageRegistry(t)
	scorer := scoring.NewScorer(reg, nil)
	fp := fastpath.NewFastPath(nil)
	return NewRunner(reg, scorer, fp, opts...)
}

// writeScheduleXLSX writes a parseable sign schedule with the given number
// of complete item rows.
func writeScheduleXLSX(t *testing.T, path string, rows int) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, h := range []string{"Mark", "Description", "Qty", "Unit"} {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue("Sheet1", cell, h)
	}
	for r := 0; r < rows; r++ {
		values := []interface{}{fmt.Sprintf("S-%d", 100+r), fmt.Sprintf("Exit sign type %d", r), r + 1, "EA"}
		for c, v := range values {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			f.SetCellValue("Sheet1", cell, v)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
}

// bidDocs builds the standard scenario: one schedule worth fast-pathing,
// one ambiguous drawing, one excluded appendix, one irrelevant note.
func bidDocs(t *testing.T, dir string) []models.DocumentInfo {
	t.Helper()
	schedulePath := filepath.Join(dir, "sign schedule.xlsx")
	writeScheduleXLSX(t, schedulePath, 6)
	return []models.DocumentInfo{
		{
			ID:            "doc-schedule",
			Filename:      "sign schedule.xlsx",
			StoragePath:   schedulePath,
			ContentSample: "exit sign schedule by level",
		},
		{
			ID:            "doc-drawing",
			Filename:      "A-101.pdf",
			StoragePath:   filepath.Join(dir, "missing", "A-101.pdf"),
			ContentSample: "exit sign locations shown on plan",
		},
		{
			ID:            "doc-appendix",
			Filename:      "appendix.pdf",
			StoragePath:   filepath.Join(dir, "appendix.pdf"),
			ContentSample: "exit sign references within the legal disclaimer",
		},
		{
			ID:            "doc-notes",
			Filename:      "meeting notes.txt",
			StoragePath:   filepath.Join(dir, "meeting notes.txt"),
			ContentSample: "meeting minutes and attendance",
		},
	}
}

func decisionByID(t *testing.T, decisions []models.Decision, id string) models.Decision {
	t.Helper()
	for _, d := range decisions {
		if d.DocumentID == id {
			return d
		}
	}
	t.Fatalf("no decision for %q", id)
	return models.Decision{}
}

func TestRun_routing(t *testing.T) {
	dir := t.TempDir()
	docs := bidDocs(t, dir)
	stub := classify.NewStub(map[string]models.ClassificationResult{
		"a-101.pdf": {Filename: "A-101.pdf", PredictedTrade: "signage", Confidence: 0.9},
	})
	r := newTestRunner(t, WithClassifier("stub", stub))

	result, err := r.Run(context.Background(), docs, []string{"signage"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	decisions := result.Decisions["signage"]
	if len(decisions) != 4 {
		t.Fatalf("got %d decisions, want 4", len(decisions))
	}

	schedule := decisionByID(t, decisions, "doc-schedule")
	if schedule.Route != models.RouteFastPath {
		t.Errorf("schedule route = %q, want fast-path", schedule.Route)
	}
	if schedule.FastPath == nil || schedule.FastPath.Quality != models.QualityMedium {
		t.Errorf("schedule fast path = %+v, want medium quality result", schedule.FastPath)
	}
	if len(schedule.FastPath.Items) != 6 {
		t.Errorf("schedule items = %d, want 6", len(schedule.FastPath.Items))
	}

	drawing := decisionByID(t, decisions, "doc-drawing")
	if drawing.Route != models.RouteAIExtraction {
		t.Errorf("drawing route = %q, want ai-extraction", drawing.Route)
	}
	if !drawing.Boosted {
		t.Error("drawing should be boosted by the stub classification")
	}
	if drawing.Score.TotalScore != 9.5 {
		t.Errorf("drawing score = %v, want 9.5 (5.0 + 0.9*5.0)", drawing.Score.TotalScore)
	}

	appendix := decisionByID(t, decisions, "doc-appendix")
	if appendix.Route != models.RouteSkip || !appendix.Score.Excluded {
		t.Errorf("appendix = route %q excluded %v, want skipped exclusion", appendix.Route, appendix.Score.Excluded)
	}

	notes := decisionByID(t, decisions, "doc-notes")
	if notes.Route != models.RouteSkip || notes.Score.TotalScore != 0 {
		t.Errorf("notes = route %q score %v, want skipped zero", notes.Route, notes.Score.TotalScore)
	}

	s := result.Summary
	if s.Documents != 4 || s.FastPath != 1 || s.AIRouted != 1 || s.Skipped != 2 {
		t.Errorf("summary = %+v, want 4 documents / 1 fast-path / 1 ai / 2 skipped", s)
	}
	if s.RunID == "" || s.FinishedAt.Before(s.StartedAt) {
		t.Errorf("summary timing fields not set: %+v", s)
	}
}

func TestRun_decisionsRankedBestFirst(t *testing.T) {
	dir := t.TempDir()
	docs := bidDocs(t, dir)
	stub := classify.NewStub(map[string]models.ClassificationResult{
		"a-101.pdf": {Filename: "A-101.pdf", PredictedTrade: "signage", Confidence: 0.9},
	})
	r := newTestRunner(t, WithClassifier("stub", stub))

	result, err := r.Run(context.Background(), docs, []string{"signage"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	decisions := result.Decisions["signage"]
	wantOrder := []string{"doc-drawing", "doc-schedule", "doc-notes", "doc-appendix"}
	for i, want := range wantOrder {
		if decisions[i].DocumentID != want {
			t.Errorf("decisions[%d] = %q, want %q", i, decisions[i].DocumentID, want)
		}
	}
}

func TestRun_scoresMirrorInputOrder(t *testing.T) {
	dir := t.TempDir()
	docs := bidDocs(t, dir)
	r := newTestRunner(t)

	result, err := r.Run(context.Background(), docs, []string{"signage"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	scores := result.Scores["signage"]
	if len(scores) != len(docs) {
		t.Fatalf("got %d scores, want %d", len(scores), len(docs))
	}
	for i := range docs {
		if scores[i].DocumentID != docs[i].ID {
			t.Errorf("scores[%d] = %q, want %q", i, scores[i].DocumentID, docs[i].ID)
		}
	}
}

func TestRun_emptyTradeListUsesRegistry(t *testing.T) {
	dir := t.TempDir()
	docs := bidDocs(t, dir)
	r := newTestRunner(t)

	result, err := r.Run(context.Background(), docs, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if _, ok := result.Decisions["signage"]; !ok {
		t.Errorf("decisions missing registered trade: %v", result.Decisions)
	}
}

func TestRun_unregisteredTrade(t *testing.T) {
	dir := t.TempDir()
	docs := bidDocs(t, dir)
	r := newTestRunner(t)

	result, err := r.Run(context.Background(), docs, []string{"plumbing"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, d := range result.Decisions["plumbing"] {
		if d.Route != models.RouteSkip {
			t.Errorf("decision %q route = %q, want skip for unregistered trade", d.DocumentID, d.Route)
		}
	}
}

func TestRun_classifierErrorDegradesToNoBoost(t *testing.T) {
	dir := t.TempDir()
	docs := bidDocs(t, dir)
	stub := classify.NewStub(nil).Fail(errors.New("quota exhausted"))
	r := newTestRunner(t, WithClassifier("stub", stub))

	result, err := r.Run(context.Background(), docs, []string{"signage"})
	if err != nil {
		t.Fatalf("Run should degrade, not fail: %v", err)
	}
	drawing := decisionByID(t, result.Decisions["signage"], "doc-drawing")
	if drawing.Boosted {
		t.Error("no boost expected when the classifier fails")
	}
	if drawing.Score.TotalScore != 5.0 {
		t.Errorf("drawing score = %v, want unboosted 5.0", drawing.Score.TotalScore)
	}
	if drawing.Route != models.RouteAIExtraction {
		t.Errorf("drawing route = %q, want ai-extraction", drawing.Route)
	}
}

func TestRun_cancelledContext(t *testing.T) {
	dir := t.TempDir()
	docs := bidDocs(t, dir)
	r := newTestRunner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	result, err := r.Run(ctx, docs, []string{"signage"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if result == nil {
		t.Fatal("cancelled run should still return the partial result")
	}
	if len(result.Decisions["signage"]) != 0 {
		t.Errorf("no trade should have been decided: %v", result.Decisions)
	}
}

func TestRun_persistsSummaryAndDecisions(t *testing.T) {
	dir := t.TempDir()
	docs := bidDocs(t, dir)
	store, err := storage.NewSQLiteStore(filepath.Join(dir, "bidsift.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	r := newTestRunner(t, WithStore(store))
	result, err := r.Run(context.Background(), docs, []string{"signage"})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	ctx := context.Background()
	saved, err := store.GetRun(ctx, result.Summary.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if saved.Documents != 4 {
		t.Errorf("saved documents = %d, want 4", saved.Documents)
	}
	decisions, err := store.GetDecisions(ctx, result.Summary.RunID)
	if err != nil {
		t.Fatalf("GetDecisions: %v", err)
	}
	if len(decisions) != 4 {
		t.Errorf("saved decisions = %d, want 4", len(decisions))
	}
}

func TestRoute(t *testing.T) {
	goodFP := &models.FastPathResult{Quality: models.QualityGood}
	mediumFP := &models.FastPathResult{Quality: models.QualityMedium}
	poorFP := &models.FastPathResult{Quality: models.QualityPoor}
	noneFP := &models.FastPathResult{Quality: models.QualityNone}

	tests := []struct {
		name  string
		score models.DocumentScore
		fp    *models.FastPathResult
		want  models.Route
	}{
		{"excluded skips", models.DocumentScore{TotalScore: 50, Excluded: true}, goodFP, models.RouteSkip},
		{"zero score skips", models.DocumentScore{TotalScore: 0}, nil, models.RouteSkip},
		{"good fast path", models.DocumentScore{TotalScore: 8}, goodFP, models.RouteFastPath},
		{"medium fast path", models.DocumentScore{TotalScore: 8}, mediumFP, models.RouteFastPath},
		{"poor goes to ai", models.DocumentScore{TotalScore: 8}, poorFP, models.RouteAIExtraction},
		{"none goes to ai", models.DocumentScore{TotalScore: 8}, noneFP, models.RouteAIExtraction},
		{"no attempt goes to ai", models.DocumentScore{TotalScore: 2}, nil, models.RouteAIExtraction},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := route(tt.score, tt.fp); got != tt.want {
				t.Errorf("route = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFastPathEligible_bandGate(t *testing.T) {
	docs := []models.DocumentInfo{
		{ID: "high"}, {ID: "medium"}, {ID: "low"}, {ID: "none"}, {ID: "excluded"},
	}
	scores := []models.DocumentScore{
		{DocumentID: "high", Band: models.BandHigh},
		{DocumentID: "medium", Band: models.BandMedium},
		{DocumentID: "low", Band: models.BandLow},
		{DocumentID: "none", Band: models.BandNone},
		{DocumentID: "excluded", Band: models.BandHigh, Excluded: true},
	}

	r := newTestRunner(t)
	got := r.fastPathEligible(docs, scores)
	if len(got) != 2 || got[0].ID != "high" || got[1].ID != "medium" {
		t.Errorf("default band gate selected %v, want high and medium", got)
	}

	r = newTestRunner(t, WithFastPathBand(models.BandHigh))
	got = r.fastPathEligible(docs, scores)
	if len(got) != 1 || got[0].ID != "high" {
		t.Errorf("high band gate selected %v, want high only", got)
	}
}

func TestScoreTrade_concurrentOrderStable(t *testing.T) {
	r := newTestRunner(t)
	docs := make([]models.DocumentInfo, 64)
	for i := range docs {
		name := fmt.Sprintf("plan-%02d.pdf", i)
		if i%2 == 0 {
			name = fmt.Sprintf("sign-%02d.pdf", i)
		}
		docs[i] = models.DocumentInfo{ID: fmt.Sprintf("doc-%02d", i), Filename: name}
	}

	scores := r.scoreTrade(docs, "signage")
	if len(scores) != len(docs) {
		t.Fatalf("got %d scores, want %d", len(scores), len(docs))
	}
	for i := range docs {
		if scores[i].DocumentID != docs[i].ID {
			t.Fatalf("scores[%d] = %q, want %q", i, scores[i].DocumentID, docs[i].ID)
		}
	}
	for i := 0; i < len(scores); i += 2 {
		if scores[i].TotalScore != 3.0 {
			t.Errorf("scores[%d] = %v, want filename keyword weight 3.0", i, scores[i].TotalScore)
		}
	}
}
