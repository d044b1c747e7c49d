package models

// ClassificationResult is an AI-derived trade prediction for one document.
// Confidence is in [0,1]. Classifications only ever adjust a heuristic
// DocumentScore; they never replace its signals.
type ClassificationResult struct {
	DocumentID     string  `json:"document_id"`
	Filename       string  `json:"filename,omitempty"`
	PredictedTrade string  `json:"predicted_trade"`
	Confidence     float64 `json:"confidence"`
	Rationale      string  `json:"rationale,omitempty"`
}
