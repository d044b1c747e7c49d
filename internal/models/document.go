// Package models defines core data structures for documents, scores, and extraction results.
package models

// DocumentInfo describes one bid document as supplied by the job layer.
// It is an immutable input: the pipeline never mutates it, and callers may
// share one value across concurrent scoring calls.
type DocumentInfo struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	FolderPath  string `json:"folder_path"`
	StoragePath string `json:"storage_path,omitempty"`
	// ContentSample is extracted text used for content-pattern matching.
	// Empty means no sample is available; scoring then uses filename and
	// folder path only.
	ContentSample string `json:"content_sample,omitempty"`
	// PageCount is the number of pages when known, 0 otherwise.
	PageCount int `json:"page_count,omitempty"`
}
