package fastpath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hyperjump/bidsift/internal/models"
)

// Schedule tables shared across trades use a small set of header spellings.
// Matching is done on normalized cells (lowercased, stripped of trailing
// punctuation), exact match only, so "unit price" never claims the unit
// column.
var (
	tagHeaders  = []string{"mark", "tag", "sign", "sign no", "sign number", "item", "id", "type", "type code"}
	descHeaders = []string{"description", "desc", "message", "text", "sign description", "item description"}
	qtyHeaders  = []string{"qty", "quantity", "count", "no", "number", "qnty"}
	unitHeaders = []string{"unit", "uom", "u/m", "units", "unit of measure"}
)

// columns maps schedule fields to cell indexes; -1 means absent.
type columns struct {
	tag  int
	desc int
	qty  int
	unit int
}

func normalizeHeaderCell(cell string) string {
	return strings.Trim(strings.ToLower(strings.TrimSpace(cell)), ".:#")
}

func headerIndex(cells []string, names []string) int {
	for i, cell := range cells {
		n := normalizeHeaderCell(cell)
		for _, name := range names {
			if n == name {
				return i
			}
		}
	}
	return -1
}

// locateHeader reports whether cells form a recognizable schedule header: a
// description column plus at least one of tag, quantity, or unit.
func locateHeader(cells []string) (columns, bool) {
	cols := columns{
		tag:  headerIndex(cells, tagHeaders),
		desc: headerIndex(cells, descHeaders),
		qty:  headerIndex(cells, qtyHeaders),
		unit: headerIndex(cells, unitHeaders),
	}
	if cols.desc == -1 {
		return cols, false
	}
	if cols.tag == -1 && cols.qty == -1 && cols.unit == -1 {
		return cols, false
	}
	return cols, true
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func rowEmpty(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseQuantity parses a schedule quantity cell. Thousands separators are
// tolerated; anything else non-numeric is an error.
func parseQuantity(cell string) (float64, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(cell), ",", "")
	q, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, err
	}
	if q < 0 {
		return 0, fmt.Errorf("negative quantity %v", q)
	}
	return q, nil
}

// parseDataRow turns one table row into an item plus any issues. ok is
// false when the row cannot yield an item at all (merged or truncated rows
// with no description); such rows produce a short-row issue and nothing
// else.
func parseDataRow(cells []string, cols columns, page int) (models.ExtractedItem, []models.FastPathIssue, bool) {
	item := models.ExtractedItem{
		Tag:         cellAt(cells, cols.tag),
		Description: cellAt(cells, cols.desc),
		Unit:        cellAt(cells, cols.unit),
		PageNumber:  page,
	}

	if item.Description == "" {
		return models.ExtractedItem{}, []models.FastPathIssue{{
			Kind:       models.IssueShortRow,
			Message:    fmt.Sprintf("row %q has no description cell", strings.Join(cells, " | ")),
			PageNumber: page,
		}}, false
	}

	var issues []models.FastPathIssue
	if cols.qty == -1 || cellAt(cells, cols.qty) == "" {
		issues = append(issues, models.FastPathIssue{
			Kind:       models.IssueMissingQuantity,
			Message:    fmt.Sprintf("item %q has no quantity", item.Description),
			PageNumber: page,
		})
	} else if q, err := parseQuantity(cellAt(cells, cols.qty)); err != nil {
		issues = append(issues, models.FastPathIssue{
			Kind:       models.IssueBadQuantity,
			Message:    fmt.Sprintf("item %q quantity %q: %v", item.Description, cellAt(cells, cols.qty), err),
			PageNumber: page,
		})
	} else {
		item.Quantity = q
	}

	if cols.unit != -1 && item.Unit == "" {
		issues = append(issues, models.FastPathIssue{
			Kind:       models.IssueMissingUnit,
			Message:    fmt.Sprintf("item %q has no unit", item.Description),
			PageNumber: page,
		})
	}

	return item, issues, true
}
