package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// OpenDocument spreadsheets keep cell text in text:p and text:span elements
// inside content.xml.
var (
	odsTextP    = regexp.MustCompile(`<text:p[^>]*>([^<]*)</text:p>`)
	odsTextSpan = regexp.MustCompile(`<text:span[^>]*>([^<]*)</text:span>`)
)

func extractODS(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract ods: not a zip: %w", err)
	}
	var contentXML []byte
	for _, f := range zr.File {
		if f.Name != "content.xml" {
			continue
		}
		contentXML, err = readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("extract ods: %w", err)
		}
		break
	}
	if contentXML == nil {
		return "", fmt.Errorf("extract ods: content.xml not found")
	}

	s := string(contentXML)
	var b strings.Builder
	for _, re := range []*regexp.Regexp{odsTextP, odsTextSpan} {
		for _, p := range re.FindAllStringSubmatch(s, -1) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.TrimSpace(p[1]))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
