package export

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/bidsift/internal/models"
	"github.com/hyperjump/bidsift/internal/pipeline"
)

func sampleResult() *pipeline.RunResult {
	return &pipeline.RunResult{
		Summary: models.RunSummary{RunID: "run-1", Documents: 2},
		Decisions: map[string][]models.Decision{
			"signage": {
				{
					DocumentID: "doc:aaaabbbbccccdddd",
					Trade:      "signage",
					Route:      models.RouteFastPath,
					Score: models.DocumentScore{
						DocumentID: "doc:aaaabbbbccccdddd",
						Filename:   "sign schedule.xlsx",
						Trade:      "signage",
						TotalScore: 8,
						Band:       models.BandMedium,
						Signals: []models.ScoreSignal{
							{Source: models.SignalFilename, MatchedTerm: "sign", Weight: 3},
							{Source: models.SignalContent, MatchedTerm: "exit sign", Weight: 5},
						},
					},
					FastPath: &models.FastPathResult{
						DocumentID: "doc:aaaabbbbccccdddd",
						SourceType: models.SourceNativeTable,
						Quality:    models.QualityMedium,
						Items: []models.ExtractedItem{
							{Tag: "S-101", Description: "Exit sign", Quantity: 4, Unit: "EA", SignType: "EX"},
							{Tag: "S-102", Description: "Stair sign", Quantity: 2, Unit: "EA"},
						},
						Issues: []models.FastPathIssue{
							{Kind: models.IssueMissingUnit, Message: `item "Room plaque" has no unit`, PageNumber: 2},
						},
					},
				},
				{
					DocumentID: "doc:eeeeffff00001111",
					Trade:      "signage",
					Route:      models.RouteSkip,
					Score: models.DocumentScore{
						DocumentID: "doc:eeeeffff00001111",
						Filename:   "appendix.pdf",
						Trade:      "signage",
						TotalScore: 5,
						Excluded:   true,
						Band:       models.BandNone,
					},
				},
			},
		},
	}
}

func TestWorkbookBytes(t *testing.T) {
	e := NewExporter()
	b, err := e.WorkbookBytes(sampleResult())
	if err != nil {
		t.Fatalf("WorkbookBytes: %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetScores)
	if err != nil {
		t.Fatalf("GetRows scores: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("scores rows = %d, want header + 2", len(rows))
	}
	if rows[0][0] != "Trade" || rows[0][6] != "Route" {
		t.Errorf("scores header = %v", rows[0])
	}
	if rows[1][2] != "sign schedule.xlsx" || rows[1][6] != "fast-path" {
		t.Errorf("scores row 1 = %v", rows[1])
	}
	if rows[1][8] != "filename:sign(+3.0), content:exit sign(+5.0)" {
		t.Errorf("signals cell = %q", rows[1][8])
	}
	if rows[2][2] != "appendix.pdf" || rows[2][5] != "TRUE" {
		t.Errorf("scores row 2 = %v", rows[2])
	}

	items, err := f.GetRows(SheetItems)
	if err != nil {
		t.Fatalf("GetRows items: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("items rows = %d, want header + 2", len(items))
	}
	if items[1][2] != "S-101" || items[1][4] != "4" || items[1][7] != "EX" {
		t.Errorf("items row 1 = %v", items[1])
	}

	issues, err := f.GetRows(SheetIssues)
	if err != nil {
		t.Fatalf("GetRows issues: %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("issues rows = %d, want header + 1", len(issues))
	}
	if issues[1][2] != models.IssueMissingUnit || issues[1][4] != "2" {
		t.Errorf("issues row 1 = %v", issues[1])
	}
}

func TestWriteWorkbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.xlsx")
	e := NewExporter()
	if err := e.WriteWorkbook(path, sampleResult()); err != nil {
		t.Fatalf("WriteWorkbook: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if info.Size() == 0 {
		t.Error("workbook file is empty")
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	defer f.Close()
	if f.SheetCount != 3 {
		t.Errorf("sheet count = %d, want 3", f.SheetCount)
	}
}

func TestWorkbookBytes_emptyRun(t *testing.T) {
	e := NewExporter()
	b, err := e.WorkbookBytes(&pipeline.RunResult{
		Summary:   models.RunSummary{RunID: "run-2"},
		Decisions: map[string][]models.Decision{},
	})
	if err != nil {
		t.Fatalf("WorkbookBytes: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows(SheetScores)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("empty run should still carry headers, rows = %d", len(rows))
	}
}
