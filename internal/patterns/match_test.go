package patterns

import (
	"testing"

	"github.com/hyperjump/bidsift/internal/models"
)

func signagePatterns() TradePatterns {
	return TradePatterns{
		Content: []ContentPattern{
			{Term: "exit sign", Weight: 5},
			{Term: "room identification", Weight: 3},
			{Term: "legal disclaimer", IsExclusion: true},
		},
		FilenameKeywords: []string{"signage", "sign schedule"},
		PathKeywords:     []string{"signage", "10 14 00"},
		SignTypes: []SignTypePattern{
			{Code: "EXIT", Terms: []string{"exit sign", "egress sign"}},
			{Code: "RID", Terms: []string{"room identification", "room id"}},
		},
	}
}

func TestMatchFilename(t *testing.T) {
	p := signagePatterns()

	tests := []struct {
		name        string
		filename    string
		wantSignals int
		wantExcl    bool
	}{
		{name: "keyword hit", filename: "sheet-A10-signage.pdf", wantSignals: 1},
		{name: "case insensitive", filename: "SHEET-A10-SIGNAGE.PDF", wantSignals: 1},
		{name: "no hit", filename: "appendix.pdf", wantSignals: 0},
		{name: "two keywords", filename: "signage sign schedule.pdf", wantSignals: 2},
		{name: "exclusion in filename", filename: "legal disclaimer.pdf", wantSignals: 1, wantExcl: true},
		{name: "empty filename", filename: "", wantSignals: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := MatchFilename(tt.filename, p, 3.0)
			if len(signals) != tt.wantSignals {
				t.Fatalf("MatchFilename() returned %d signals, want %d", len(signals), tt.wantSignals)
			}
			for _, s := range signals {
				if s.Source != models.SignalFilename {
					t.Errorf("signal source = %q, want %q", s.Source, models.SignalFilename)
				}
				if s.IsExclusion != tt.wantExcl {
					t.Errorf("signal exclusion = %v, want %v", s.IsExclusion, tt.wantExcl)
				}
				if !s.IsExclusion && s.Weight != 3.0 {
					t.Errorf("keyword signal weight = %v, want 3.0", s.Weight)
				}
			}
		})
	}
}

func TestMatchFolderPath(t *testing.T) {
	p := signagePatterns()

	signals := MatchFolderPath("bid/10 14 00 Signage/drawings", p, 2.0)
	if len(signals) != 2 {
		t.Fatalf("MatchFolderPath() returned %d signals, want 2", len(signals))
	}
	for _, s := range signals {
		if s.Source != models.SignalPath {
			t.Errorf("signal source = %q, want %q", s.Source, models.SignalPath)
		}
		if s.Weight != 2.0 {
			t.Errorf("signal weight = %v, want 2.0", s.Weight)
		}
	}

	if got := MatchFolderPath("bid/flooring", p, 2.0); len(got) != 0 {
		t.Errorf("MatchFolderPath() on unrelated path returned %d signals, want 0", len(got))
	}
}

func TestMatchContent(t *testing.T) {
	p := signagePatterns()

	tests := []struct {
		name        string
		sample      string
		wantSignals int
		wantExcl    int
	}{
		{
			name:        "single inclusion",
			sample:      "Provide one EXIT SIGN per corridor door.",
			wantSignals: 1,
		},
		{
			name:        "repeated term counts once",
			sample:      "exit sign here, another exit sign there, exit sign everywhere",
			wantSignals: 1,
		},
		{
			name:        "inclusion and exclusion",
			sample:      "Exit sign schedule. This page is a legal disclaimer.",
			wantSignals: 2,
			wantExcl:    1,
		},
		{
			name:        "empty sample",
			sample:      "",
			wantSignals: 0,
		},
		{
			name:        "no match",
			sample:      "carpet tile and resilient flooring",
			wantSignals: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signals := MatchContent(tt.sample, p)
			if len(signals) != tt.wantSignals {
				t.Fatalf("MatchContent() returned %d signals, want %d", len(signals), tt.wantSignals)
			}
			excl := 0
			for _, s := range signals {
				if s.Source != models.SignalContent {
					t.Errorf("signal source = %q, want %q", s.Source, models.SignalContent)
				}
				if s.IsExclusion {
					excl++
				}
			}
			if excl != tt.wantExcl {
				t.Errorf("exclusion signals = %d, want %d", excl, tt.wantExcl)
			}
		})
	}
}

func TestClassifySignType(t *testing.T) {
	p := signagePatterns()

	tests := []struct {
		name string
		desc string
		want string
	}{
		{name: "exit", desc: "Illuminated EXIT SIGN, ceiling mount", want: "EXIT"},
		{name: "room id", desc: "Room Identification plaque 6x6", want: "RID"},
		{name: "first match wins", desc: "exit sign with room id insert", want: "EXIT"},
		{name: "no match", desc: "monument sign", want: ""},
		{name: "empty description", desc: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifySignType(tt.desc, p); got != tt.want {
				t.Errorf("ClassifySignType(%q) = %q, want %q", tt.desc, got, tt.want)
			}
		})
	}
}
