package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDiskUsageBytes(t *testing.T) {
	dir := t.TempDir()

	dbFile := filepath.Join(dir, "bidsift.db")
	if err := os.WriteFile(dbFile, []byte("12345"), 0644); err != nil {
		t.Fatal(err)
	}
	modelDir := filepath.Join(dir, "models")
	if err := os.Mkdir(modelDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(modelDir, "encoder.onnx"), []byte("ab"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(modelDir, "vocab.txt"), []byte("c"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		paths []string
		want  int64
	}{
		{"single file", []string{dbFile}, 5},
		{"directory summed recursively", []string{modelDir}, 3},
		{"file plus directory", []string{dbFile, modelDir}, 8},
		{"missing path skipped", []string{dbFile, filepath.Join(dir, "gone"), modelDir}, 8},
		{"empty path skipped", []string{"", dbFile}, 5},
		{"no paths", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DiskUsageBytes(tt.paths...)
			if err != nil {
				t.Fatalf("DiskUsageBytes() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DiskUsageBytes() = %d, want %d", got, tt.want)
			}
		})
	}
}
