package extract

import (
	"archive/zip"
	"bytes"
	"fmt"
	"regexp"
	"strings"
)

// Presentation decks show up in bid sets as pre-bid meeting slides and
// addendum walkthroughs; their text still carries trade keywords worth
// sampling.

// atTag matches <a:t>text</a:t> runs, including runs with attributes.
var atTag = regexp.MustCompile(`<a:t[^>]*>([^<]*)</a:t>`)

// extractPPTX pulls the <a:t> text nodes out of every slide part of a
// .pptx zip.
func extractPPTX(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract pptx: not a zip: %w", err)
	}
	var b strings.Builder
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "ppt/slides/slide") || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		slideXML, err := readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("extract pptx: %w", err)
		}
		for _, p := range atTag.FindAllStringSubmatch(string(slideXML), -1) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.TrimSpace(p[1]))
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// OpenDocument presentations keep slide text in text:p, text:span, and
// text:h elements inside content.xml.
var odpTextH = regexp.MustCompile(`<text:h[^>]*>([^<]*)</text:h>`)

func extractODP(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("extract odp: not a zip: %w", err)
	}
	var contentXML []byte
	for _, f := range zr.File {
		if f.Name != "content.xml" {
			continue
		}
		contentXML, err = readZipFile(f)
		if err != nil {
			return "", fmt.Errorf("extract odp: %w", err)
		}
		break
	}
	if contentXML == nil {
		return "", fmt.Errorf("extract odp: content.xml not found")
	}

	s := string(contentXML)
	var b strings.Builder
	for _, re := range []*regexp.Regexp{odsTextP, odsTextSpan, odpTextH} {
		for _, p := range re.FindAllStringSubmatch(s, -1) {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strings.TrimSpace(p[1]))
		}
	}
	return strings.TrimSpace(b.String()), nil
}
