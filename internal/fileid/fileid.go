// Package fileid derives stable document IDs from file paths.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const prefix = "doc:"

// DocID returns a stable document ID for the given absolute path. The
// same path always yields the same ID, so re-scanning a bid directory
// updates documents instead of duplicating them, and cached
// classifications stay attached across runs.
func DocID(absolutePath string) string {
	normalized := filepath.Clean(absolutePath)
	hash := sha256.Sum256([]byte(normalized))
	return prefix + hex.EncodeToString(hash[:])
}

// Short returns a compact form of a document ID for logs and tables.
func Short(id string) string {
	trimmed := strings.TrimPrefix(id, prefix)
	if len(trimmed) > 12 {
		return trimmed[:12]
	}
	return trimmed
}
