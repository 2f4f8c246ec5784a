package storage

import (
	"context"

	"github.com/crewdeck/crewdeck/internal/models"
)

// ProjectStorage defines interface for project persistence.
// Projects hold the setup facts readiness is derived from plus the
// client-owned feature flags.
type ProjectStorage interface {
	// CreateProject creates a new project
	// Returns ErrProjectAlreadyExists if the id is taken
	CreateProject(ctx context.Context, project *models.Project) error

	// GetProject retrieves project by ID
	// Returns ErrProjectNotFound if project doesn't exist
	GetProject(ctx context.Context, projectID string) (*models.Project, error)

	// UpdateProject replaces the stored project state
	// Returns ErrProjectNotFound if project doesn't exist
	UpdateProject(ctx context.Context, project *models.Project) error
}

// ReadinessStorage defines interface for computed readiness records.
// One row per project; a save replaces the previous computation.
type ReadinessStorage interface {
	// SaveRecord persists a computed readiness record
	SaveRecord(ctx context.Context, record *models.Record) error

	// GetRecord retrieves the stored record for a project
	// Returns ErrRecordNotFound if nothing has been computed yet
	GetRecord(ctx context.Context, projectID string) (*models.Record, error)
}
