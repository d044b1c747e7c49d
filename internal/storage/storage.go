// Package storage defines persistence for classification results and
// pipeline runs.
package storage

import (
	"context"

	"github.com/hyperjump/bidsift/internal/models"
)

// Store defines classification cache and run persistence operations.
type Store interface {
	// Classification cache, keyed by trade and case-folded filename
	GetClassification(ctx context.Context, trade, filename string) (models.ClassificationResult, bool, error)
	PutClassification(ctx context.Context, trade string, result models.ClassificationResult) error

	// Run history
	SaveRun(ctx context.Context, summary *models.RunSummary) error
	GetRun(ctx context.Context, runID string) (*models.RunSummary, error)
	ListRuns(ctx context.Context, limit int) ([]*models.RunSummary, error)

	// Decisions recorded per run
	SaveDecisions(ctx context.Context, runID string, decisions []models.Decision) error
	GetDecisions(ctx context.Context, runID string) ([]models.Decision, error)

	// Stats
	CountClassifications(ctx context.Context) (int64, error)
	CountRuns(ctx context.Context) (int64, error)

	Close() error
}
