package models

// SourceType classifies the underlying structure of a document for the
// fast path. The set is closed; new members require a parser to back them.
type SourceType string

const (
	// SourceNativeText is a PDF with a usable text layer (e.g. a schedule
	// table exported from CAD or a word processor).
	SourceNativeText SourceType = "native-text"
	// SourceNativeTable is a spreadsheet schedule (.xlsx) read cell by cell.
	SourceNativeTable SourceType = "native-table"
	// SourceImageOnly is a scanned PDF with no text layer; ineligible for
	// the fast path and routed to AI extraction.
	SourceImageOnly SourceType = "image-only"
	// SourceUnsupported is a non-PDF/non-XLSX or undecodable file.
	SourceUnsupported SourceType = "unsupported"
)

// ExtractedItem is one line item parsed from a schedule table.
type ExtractedItem struct {
	// Tag is the mark/identifier column value (e.g. "S-101").
	Tag         string  `json:"tag,omitempty"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit,omitempty"`
	PageNumber  int     `json:"page_number,omitempty"`
	// SignType is the matched sign-type code for the item's trade, when a
	// SignTypePattern term occurs in the tag or description.
	SignType string `json:"sign_type,omitempty"`
}

// FastPathIssue is a non-fatal diagnostic accumulated during extraction.
// Issues are attached to the result and never raised as errors.
type FastPathIssue struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
	// PageNumber is 1-based; 0 means the issue is not page-specific.
	PageNumber int `json:"page_number,omitempty"`
}

// Issue kinds produced by the fast-path extractor.
const (
	IssueRouteToAI       = "route-to-ai"
	IssueUnsupported     = "unsupported-format"
	IssueNoTableHeader   = "table-header-not-recognized"
	IssueMissingQuantity = "missing-quantity"
	IssueBadQuantity     = "unparseable-quantity"
	IssueMissingUnit     = "missing-unit"
	IssueShortRow        = "short-row"
)

// ExtractionQuality rates how much of a fast-path result is trustworthy.
type ExtractionQuality string

const (
	// QualityGood means the parsed table is dense and nearly issue-free.
	QualityGood ExtractionQuality = "good"
	// QualityMedium means partial results worth keeping alongside review.
	QualityMedium ExtractionQuality = "medium"
	// QualityPoor means too sparse or noisy to use without AI extraction.
	QualityPoor ExtractionQuality = "poor"
	// QualityNone means no items were extracted at all.
	QualityNone ExtractionQuality = "none"
)

// FastPathResult is the outcome of one fast-path extraction attempt.
// A result is never mutated after it is produced; re-running extraction
// yields a fresh result.
type FastPathResult struct {
	DocumentID string            `json:"document_id"`
	SourceType SourceType        `json:"source_type"`
	Items      []ExtractedItem   `json:"items,omitempty"`
	Issues     []FastPathIssue   `json:"issues,omitempty"`
	Quality    ExtractionQuality `json:"quality"`
}

// Eligible reports whether the source type can take the fast path at all.
func (t SourceType) Eligible() bool {
	return t == SourceNativeText || t == SourceNativeTable
}
