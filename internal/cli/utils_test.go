package cli

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/hyperjump/bidsift/internal/models"
)

func sampleScores() []models.DocumentScore {
	return []models.DocumentScore{
		{
			DocumentID: "doc:aaa",
			Filename:   "sheet-A10-signage.pdf",
			Trade:      "signage",
			TotalScore: 8.0,
			Band:       models.BandMedium,
			Signals: []models.ScoreSignal{
				{Source: models.SignalFilename, MatchedTerm: "signage", Weight: 3.0},
				{Source: models.SignalContent, MatchedTerm: "exit sign", Weight: 5.0},
			},
		},
		{
			DocumentID: "doc:bbb",
			Filename:   "appendix.pdf",
			Trade:      "signage",
			TotalScore: 5.0,
			Excluded:   true,
			Band:       models.BandNone,
			Signals: []models.ScoreSignal{
				{Source: models.SignalContent, MatchedTerm: "legal disclaimer", IsExclusion: true},
			},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", OutputText, false},
		{"text", OutputText, false},
		{"json", OutputJSON, false},
		{"compact", OutputCompact, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		t.Run("format_"+tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseFormat(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWriteScores_Text(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteScores(&buf, sampleScores(), OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "2 document(s) scored") {
		t.Errorf("missing count header: %q", out)
	}
	if !strings.Contains(out, "sheet-A10-signage.pdf") {
		t.Errorf("missing filename: %q", out)
	}
	if !strings.Contains(out, "EXCLUDED") {
		t.Errorf("excluded score should be flagged: %q", out)
	}
	if !strings.Contains(out, "! content") {
		t.Errorf("exclusion signal should carry the ! marker: %q", out)
	}
}

func TestWriteScores_JSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteScores(&buf, sampleScores(), OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded []models.DocumentScore
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded) != 2 || decoded[0].DocumentID != "doc:aaa" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestWriteScores_CompactOneLinePerScore(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteScores(&buf, sampleScores(), OutputCompact); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("compact output: got %d lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[1], "excluded") {
		t.Errorf("excluded score line: %q", lines[1])
	}
}

func TestWriteDecisions_Text(t *testing.T) {
	decisions := []models.Decision{
		{
			DocumentID: "doc:aaa",
			Trade:      "signage",
			Score:      sampleScores()[0],
			Route:      models.RouteFastPath,
			FastPath: &models.FastPathResult{
				DocumentID: "doc:aaa",
				SourceType: models.SourceNativeText,
				Quality:    models.QualityGood,
				Items:      []models.ExtractedItem{{Tag: "S-1", Description: "exit sign", Quantity: 4, Unit: "EA"}},
			},
		},
		{
			DocumentID: "doc:bbb",
			Trade:      "signage",
			Score:      sampleScores()[1],
			Route:      models.RouteSkip,
		},
	}
	var buf bytes.Buffer
	if err := WriteDecisions(&buf, "signage", decisions, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "signage: 2 decision(s)") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "fast-path") || !strings.Contains(out, "skip") {
		t.Errorf("missing routes: %q", out)
	}
	if !strings.Contains(out, "native-text/good, 1 item(s), 0 issue(s)") {
		t.Errorf("missing fast-path note: %q", out)
	}
}

func TestWriteFastPathResult(t *testing.T) {
	result := models.FastPathResult{
		DocumentID: "doc:aaa",
		SourceType: models.SourceImageOnly,
		Quality:    models.QualityNone,
		Issues: []models.FastPathIssue{
			{Kind: models.IssueRouteToAI, Message: "no text layer"},
		},
	}
	var buf bytes.Buffer
	if err := WriteFastPathResult(&buf, result, OutputText); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, "image-only") {
		t.Errorf("missing source type: %q", out)
	}
	if !strings.Contains(out, "no text layer") {
		t.Errorf("missing issue message: %q", out)
	}

	buf.Reset()
	if err := WriteFastPathResult(&buf, result, OutputJSON); err != nil {
		t.Fatal(err)
	}
	var decoded models.FastPathResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.SourceType != models.SourceImageOnly {
		t.Errorf("decoded source type = %s", decoded.SourceType)
	}
}
