package storage

import (
	"context"

	"github.com/crewdeck/crewdeck/internal/models"
)

//go:generate moq -out cache_mock.go . RecordCache

// RecordCache defines the durable local cache for readiness snapshots.
// One slot per record, keyed by project id; entries survive restarts and
// are only removed by an explicit delete.
type RecordCache interface {
	// SaveRecord persists a readiness snapshot, replacing any previous one
	SaveRecord(ctx context.Context, record *models.Record) error

	// GetRecord loads the cached snapshot for a project.
	// Returns ErrRecordNotCached if no snapshot exists.
	GetRecord(ctx context.Context, projectID string) (*models.Record, error)

	// DeleteRecord removes the cached snapshot for a project
	DeleteRecord(ctx context.Context, projectID string) error
}
