package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/lu4p/cat"
)

// wtTag matches <w:t>text</w:t> including runs with attributes such as
// xml:space="preserve".
var wtTag = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

// extractDOCX pulls the <w:t> text nodes out of the main document part of a
// .docx zip. lu4p/cat cannot be used for docx: its paragraph regex does not
// match <w:p> elements carrying attributes, which real-world documents all
// have.
func extractDOCX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract docx: not a zip: %w", err)
	}

	// The main part is almost always word/document.xml; some producers
	// write word/document2.xml and friends, so scan for any candidate.
	var docXML []byte
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "word/document") || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		docXML, err = readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("extract docx: %w", err)
		}
		break
	}
	if docXML == nil {
		return "", fmt.Errorf("extract docx: no word/document*.xml part")
	}

	parts := wtTag.FindAllStringSubmatch(string(docXML), -1)
	var b strings.Builder
	for i, p := range parts {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(strings.TrimSpace(p[1]))
	}
	return strings.TrimSpace(b.String()), nil
}

// extractOpenDoc routes OpenDocument text and RTF content through lu4p/cat,
// which handles those formats well enough for keyword sampling.
func extractOpenDoc(content []byte) (string, error) {
	text, err := cat.FromBytes(content)
	if err != nil {
		return "", fmt.Errorf("extract document: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return buf.Bytes(), nil
}
