package ingest

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/bidsift/internal/extract"
	"github.com/hyperjump/bidsift/internal/fileid"
	"github.com/hyperjump/bidsift/internal/vocab"
)

func TestExtensionAllowed(t *testing.T) {
	tests := []struct {
		ext     string
		allowed []string
		want    bool
	}{
		{".pdf", []string{"pdf", "xlsx"}, true},
		{".PDF", []string{"pdf"}, true},
		{".xlsx", []string{".pdf", ".xlsx"}, true},
		{".exe", []string{"pdf", "xlsx"}, false},
		{"", []string{"pdf"}, false},
		{".csv", []string{"pdf", "xlsx", "csv"}, true},
	}
	for _, tt := range tests {
		got := extensionAllowed(tt.ext, tt.allowed)
		if got != tt.want {
			t.Errorf("extensionAllowed(%q, %v) = %v, want %v", tt.ext, tt.allowed, got, tt.want)
		}
	}
}

func mustAbs(t *testing.T, path string) string {
	t.Helper()
	a, err := filepath.Abs(path)
	if err != nil {
		t.Fatal(err)
	}
	return a
}

func TestScanFile(t *testing.T) {
	dir := t.TempDir()
	s := NewScanner(extract.NewExtractor())

	fPath := filepath.Join(dir, "sign schedule.txt")
	if err := os.WriteFile(fPath, []byte("Exit  sign,\n\nceiling   mount."), 0600); err != nil {
		t.Fatal(err)
	}
	doc, err := s.ScanFile(context.Background(), fPath, dir)
	if err != nil {
		t.Fatalf("ScanFile: %v", err)
	}
	if doc.ID != fileid.DocID(mustAbs(t, fPath)) {
		t.Errorf("ID = %q, want path-derived ID", doc.ID)
	}
	if doc.Filename != "sign schedule.txt" {
		t.Errorf("Filename = %q", doc.Filename)
	}
	if doc.FolderPath != "" {
		t.Errorf("FolderPath = %q, want empty for file directly under root", doc.FolderPath)
	}
	if doc.StoragePath != mustAbs(t, fPath) {
		t.Errorf("StoragePath = %q", doc.StoragePath)
	}
	if doc.ContentSample != "Exit sign, ceiling mount." {
		t.Errorf("ContentSample = %q, want normalized text", doc.ContentSample)
	}
}

func TestScanFile_subfolder(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "Div 10", "Schedules")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	fPath := filepath.Join(sub, "schedule.txt")
	if err := os.WriteFile(fPath, []byte("rows"), 0600); err != nil {
		t.Fatal(err)
	}

	s := NewScanner(extract.NewExtractor())
	doc, err := s.ScanFile(context.Background(), fPath, dir)
	if err != nil {
		t.Fatalf("ScanFile: %v", err)
	}
	want := filepath.Join("Div 10", "Schedules")
	if doc.FolderPath != want {
		t.Errorf("FolderPath = %q, want %q", doc.FolderPath, want)
	}
}

func TestScanFile_sampleBound(t *testing.T) {
	dir := t.TempDir()
	fPath := filepath.Join(dir, "big.txt")
	if err := os.WriteFile(fPath, bytes.Repeat([]byte("signage "), 100), 0600); err != nil {
		t.Fatal(err)
	}

	s := NewScanner(extract.NewExtractor(), WithMaxSampleBytes(20))
	doc, err := s.ScanFile(context.Background(), fPath, dir)
	if err != nil {
		t.Fatalf("ScanFile: %v", err)
	}
	if len(doc.ContentSample) > 20 {
		t.Errorf("sample is %d bytes, want <= 20", len(doc.ContentSample))
	}
	if !utf8.ValidString(doc.ContentSample) {
		t.Errorf("sample is not valid UTF-8: %q", doc.ContentSample)
	}
}

func TestScanFile_xlsx(t *testing.T) {
	dir := t.TempDir()
	fPath := filepath.Join(dir, "sign types.xlsx")
	f := excelize.NewFile()
	f.SetCellValue("Sheet1", "A1", "Mark")
	f.SetCellValue("Sheet1", "B1", "Description")
	if err := f.SaveAs(fPath); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	f.Close()

	s := NewScanner(extract.NewExtractor())
	doc, err := s.ScanFile(context.Background(), fPath, dir)
	if err != nil {
		t.Fatalf("ScanFile: %v", err)
	}
	if doc.ContentSample != "Mark Description" {
		t.Errorf("ContentSample = %q", doc.ContentSample)
	}
	if doc.PageCount != 0 {
		t.Errorf("PageCount = %d, want 0 for a workbook", doc.PageCount)
	}
}

func TestScanFile_corruptPDF(t *testing.T) {
	dir := t.TempDir()
	fPath := filepath.Join(dir, "broken.pdf")
	if err := os.WriteFile(fPath, []byte("%PDF-1.7 truncated"), 0600); err != nil {
		t.Fatal(err)
	}

	s := NewScanner(extract.NewExtractor())
	doc, err := s.ScanFile(context.Background(), fPath, dir)
	if err != nil {
		t.Fatalf("ScanFile should not fail on an undecodable pdf: %v", err)
	}
	if doc.ContentSample != "" {
		t.Errorf("ContentSample = %q, want empty", doc.ContentSample)
	}
	if doc.PageCount != 0 {
		t.Errorf("PageCount = %d, want 0", doc.PageCount)
	}
	if doc.Filename != "broken.pdf" {
		t.Errorf("Filename = %q", doc.Filename)
	}
}

func TestScanFile_notRegularFile(t *testing.T) {
	dir := t.TempDir()
	s := NewScanner(extract.NewExtractor())
	if _, err := s.ScanFile(context.Background(), dir, dir); err == nil {
		t.Error("expected error for directory")
	}
}

func TestScanFile_nonexistent(t *testing.T) {
	dir := t.TempDir()
	s := NewScanner(extract.NewExtractor())
	if _, err := s.ScanFile(context.Background(), filepath.Join(dir, "missing.pdf"), dir); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestScanDirectory(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "Glazing")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	files := map[string]string{
		filepath.Join(dir, "a.txt"): "storefront elevation",
		filepath.Join(dir, "b.csv"): "mark,description",
		filepath.Join(sub, "c.txt"): "curtain wall schedule",
		filepath.Join(dir, "d.exe"): "skip me",
		filepath.Join(dir, "e.tmp"): "skip me too",
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}
	}

	s := NewScanner(extract.NewExtractor())
	docs, err := s.ScanDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	if len(docs) != 3 {
		t.Fatalf("scanned %d documents, want 3", len(docs))
	}
	seen := make(map[string]bool)
	for _, d := range docs {
		if seen[d.ID] {
			t.Errorf("duplicate document ID %q", d.ID)
		}
		seen[d.ID] = true
	}
	// WalkDir visits lexically; the capitalized subfolder sorts before the
	// lowercase root files.
	if docs[0].Filename != "c.txt" || docs[0].FolderPath != "Glazing" {
		t.Errorf("nested doc = %q in %q", docs[0].Filename, docs[0].FolderPath)
	}
}

func TestScanDirectory_notADirectory(t *testing.T) {
	dir := t.TempDir()
	fPath := filepath.Join(dir, "f.txt")
	if err := os.WriteFile(fPath, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	s := NewScanner(extract.NewExtractor())
	if _, err := s.ScanDirectory(context.Background(), fPath); err == nil {
		t.Error("expected error for non-directory")
	}
}

func TestScanDirectory_cancelled(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewScanner(extract.NewExtractor())
	if _, err := s.ScanDirectory(ctx, dir); err == nil {
		t.Error("expected error for cancelled context")
	}
}

func TestScanDirectory_feedsVocabIndex(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "monument sign.txt"), []byte("illuminated monument signage"), 0600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("general conditions"), 0600); err != nil {
		t.Fatal(err)
	}

	ix, err := vocab.NewIndex("")
	if err != nil {
		t.Fatalf("NewIndex: %v", err)
	}
	t.Cleanup(func() { _ = ix.Close() })

	s := NewScanner(extract.NewExtractor(), WithVocabIndex(ix))
	docs, err := s.ScanDirectory(context.Background(), dir)
	if err != nil {
		t.Fatalf("ScanDirectory: %v", err)
	}
	count, err := ix.DocCount()
	if err != nil {
		t.Fatalf("DocCount: %v", err)
	}
	if int(count) != len(docs) {
		t.Errorf("index holds %d documents, scanner produced %d", count, len(docs))
	}
	hits, err := ix.Search(context.Background(), "monument", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(hits) != 1 || hits[0].DocumentID != docs[0].ID {
		t.Errorf("hits = %+v, want the monument sign document", hits)
	}
}

func TestScanFile_noExtractor(t *testing.T) {
	dir := t.TempDir()
	fPath := filepath.Join(dir, "a.txt")
	if err := os.WriteFile(fPath, []byte("content here"), 0600); err != nil {
		t.Fatal(err)
	}
	s := NewScanner(nil)
	doc, err := s.ScanFile(context.Background(), fPath, dir)
	if err != nil {
		t.Fatalf("ScanFile: %v", err)
	}
	if doc.ContentSample != "" {
		t.Errorf("ContentSample = %q, want empty without an extractor", doc.ContentSample)
	}
	if doc.Filename != "a.txt" {
		t.Errorf("Filename = %q", doc.Filename)
	}
}
