package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Sheet holds one worksheet's cell grid in document order.
type Sheet struct {
	Name string
	Rows [][]string
}

// SheetRows returns every worksheet of an .xlsx workbook. The fast-path
// table parser walks these rows directly.
func SheetRows(content []byte) ([]Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	var sheets []Sheet
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheets = append(sheets, Sheet{Name: name, Rows: rows})
	}
	return sheets, nil
}

func extractWorkbook(content []byte) (string, error) {
	sheets, err := SheetRows(content)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, sheet := range sheets {
		for _, row := range sheet.Rows {
			b.WriteString(strings.Join(row, "\t"))
			b.WriteByte('\n')
		}
	}
	return strings.TrimSpace(b.String()), nil
}
