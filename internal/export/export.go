// Package export writes pipeline run results to spreadsheet workbooks so
// estimators can review routing decisions and extracted schedules outside
// the tool.
package export

import (
	"fmt"
	"sort"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/hyperjump/bidsift/internal/fileid"
	"github.com/hyperjump/bidsift/internal/models"
	"github.com/hyperjump/bidsift/internal/pipeline"
	"github.com/hyperjump/bidsift/internal/scoring"
)

// Sheet names in the exported workbook.
const (
	SheetScores = "Scores"
	SheetItems  = "Items"
	SheetIssues = "Issues"
)

// Exporter renders run results as an xlsx workbook with one sheet for
// scores and routes, one for extracted line items, and one for issues.
type Exporter struct {
	logger *zap.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger for the exporter.
func WithLogger(logger *zap.Logger) Option {
	return func(e *Exporter) { e.logger = logger }
}

// NewExporter returns a new Exporter.
func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// WriteWorkbook renders result and saves it to path.
func (e *Exporter) WriteWorkbook(path string, result *pipeline.RunResult) error {
	f, err := e.workbook(result)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

// WorkbookBytes renders result and returns the workbook as bytes, for
// HTTP responses.
func (e *Exporter) WorkbookBytes(result *pipeline.RunResult) ([]byte, error) {
	f, err := e.workbook(result)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func (e *Exporter) workbook(result *pipeline.RunResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetScores); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetItems, SheetIssues} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	// Trades in stable order so repeated exports of the same run diff clean.
	trades := make([]string, 0, len(result.Decisions))
	for trade := range result.Decisions {
		trades = append(trades, trade)
	}
	sort.Strings(trades)

	scores := writeScores(f, trades, result.Decisions)
	items := writeItems(f, trades, result.Decisions)
	issues := writeIssues(f, trades, result.Decisions)

	widenColumns(f)

	e.logger.Info("run exported",
		zap.String("run_id", result.Summary.RunID),
		zap.Int("scores", scores),
		zap.Int("items", items),
		zap.Int("issues", issues))
	return f, nil
}

func setHeaders(f *excelize.File, sheet string, headers []string) {
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
}

func cellWriter(f *excelize.File, sheet string, row int) func(col int, v interface{}) {
	return func(col int, v interface{}) {
		cell, _ := excelize.CoordinatesToCellName(col, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func writeScores(f *excelize.File, trades []string, decisions map[string][]models.Decision) int {
	setHeaders(f, SheetScores, []string{
		"Trade", "Document", "Filename", "Score", "Band", "Excluded", "Route", "Boosted", "Signals",
	})
	row := 2
	for _, trade := range trades {
		for _, d := range decisions[trade] {
			write := cellWriter(f, SheetScores, row)
			write(1, trade)
			write(2, fileid.Short(d.DocumentID))
			write(3, d.Score.Filename)
			write(4, d.Score.TotalScore)
			write(5, string(d.Score.Band))
			write(6, d.Score.Excluded)
			write(7, string(d.Route))
			write(8, d.Boosted)
			write(9, scoring.FormatSignals(d.Score.Signals))
			row++
		}
	}
	return row - 2
}

func writeItems(f *excelize.File, trades []string, decisions map[string][]models.Decision) int {
	setHeaders(f, SheetItems, []string{
		"Trade", "Filename", "Tag", "Description", "Quantity", "Unit", "Page", "Sign Type",
	})
	row := 2
	for _, trade := range trades {
		for _, d := range decisions[trade] {
			if d.FastPath == nil {
				continue
			}
			for _, item := range d.FastPath.Items {
				write := cellWriter(f, SheetItems, row)
				write(1, trade)
				write(2, d.Score.Filename)
				write(3, item.Tag)
				write(4, item.Description)
				write(5, item.Quantity)
				write(6, item.Unit)
				write(7, item.PageNumber)
				write(8, item.SignType)
				row++
			}
		}
	}
	return row - 2
}

func writeIssues(f *excelize.File, trades []string, decisions map[string][]models.Decision) int {
	setHeaders(f, SheetIssues, []string{
		"Trade", "Filename", "Kind", "Message", "Page",
	})
	row := 2
	for _, trade := range trades {
		for _, d := range decisions[trade] {
			if d.FastPath == nil {
				continue
			}
			for _, issue := range d.FastPath.Issues {
				write := cellWriter(f, SheetIssues, row)
				write(1, trade)
				write(2, d.Score.Filename)
				write(3, issue.Kind)
				write(4, issue.Message)
				write(5, issue.PageNumber)
				row++
			}
		}
	}
	return row - 2
}

func widenColumns(f *excelize.File) {
	_ = f.SetColWidth(SheetScores, "B", "C", 28)
	_ = f.SetColWidth(SheetScores, "I", "I", 60)
	_ = f.SetColWidth(SheetItems, "B", "B", 28)
	_ = f.SetColWidth(SheetItems, "D", "D", 40)
	_ = f.SetColWidth(SheetIssues, "B", "B", 28)
	_ = f.SetColWidth(SheetIssues, "D", "D", 60)
}
