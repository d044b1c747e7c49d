package fastpath

import (
	"fmt"

	"github.com/hyperjump/bidsift/internal/extract"
	"github.com/hyperjump/bidsift/internal/models"
	"github.com/hyperjump/bidsift/internal/patterns"
)

// parseWorkbookSchedule reads an .xlsx workbook cell grid and applies the
// same header-locator and row parser as the PDF path. The 1-based sheet
// position stands in for the page number. Blank rows inside a sheet do not
// end the table; spreadsheets space their sections with them.
func parseWorkbookSchedule(content []byte, p patterns.TradePatterns) ([]models.ExtractedItem, []models.FastPathIssue) {
	sheets, err := extract.SheetRows(content)
	if err != nil {
		return nil, []models.FastPathIssue{{
			Kind:    models.IssueUnsupported,
			Message: fmt.Sprintf("workbook unreadable: %v", err),
		}}
	}

	var items []models.ExtractedItem
	var issues []models.FastPathIssue
	headerFound := false

	for si, sheet := range sheets {
		sheetNum := si + 1
		inTable := false
		var cols columns

		for _, row := range sheet.Rows {
			if !inTable {
				if c, ok := locateHeader(row); ok {
					cols = c
					inTable = true
					headerFound = true
				}
				continue
			}
			if rowEmpty(row) {
				continue
			}
			item, rowIssues, ok := parseDataRow(row, cols, sheetNum)
			issues = append(issues, rowIssues...)
			if !ok {
				continue
			}
			item.SignType = patterns.ClassifySignType(item.Tag+" "+item.Description, p)
			items = append(items, item)
		}
	}

	if !headerFound {
		issues = append(issues, models.FastPathIssue{
			Kind:    models.IssueNoTableHeader,
			Message: "no schedule header row recognized in any sheet",
		})
	}
	return items, issues
}
