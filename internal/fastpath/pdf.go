package fastpath

import (
	"regexp"
	"strings"

	"github.com/hyperjump/bidsift/internal/models"
	"github.com/hyperjump/bidsift/internal/patterns"
)

// Schedule tables in PDF text keep their column gaps as runs of spaces or
// tabs; two or more spaces split cells.
var columnSplit = regexp.MustCompile(`\t+|\s{2,}`)

func splitColumns(line string) []string {
	parts := columnSplit.Split(strings.TrimSpace(line), -1)
	cells := parts[:0]
	for _, p := range parts {
		if p != "" {
			cells = append(cells, p)
		}
	}
	return cells
}

// parsePDFSchedule walks each page's lines looking for a schedule header,
// then parses rows beneath it until the table visibly ends (a blank line or
// prose-shaped line). Tables may restart on later pages; page numbers are
// carried onto every item and issue.
func parsePDFSchedule(pages []string, p patterns.TradePatterns) ([]models.ExtractedItem, []models.FastPathIssue) {
	var items []models.ExtractedItem
	var issues []models.FastPathIssue
	headerFound := false

	for pi, page := range pages {
		pageNum := pi + 1
		inTable := false
		var cols columns

		for _, line := range strings.Split(page, "\n") {
			cells := splitColumns(line)
			if !inTable {
				if c, ok := locateHeader(cells); ok {
					cols = c
					inTable = true
					headerFound = true
				}
				continue
			}
			if len(cells) < 2 {
				// Blank or prose-shaped line: the table ended.
				inTable = false
				continue
			}
			item, rowIssues, ok := parseDataRow(cells, cols, pageNum)
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
			Message: "no schedule header row recognized in any page",
		})
	}
	return items, issues
}
