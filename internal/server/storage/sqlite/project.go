package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/crewdeck/crewdeck/internal/models"
	"github.com/crewdeck/crewdeck/internal/server/storage"
)

// CreateProject creates a new project
func (s *Storage) CreateProject(ctx context.Context, project *models.Project) error {
	features, err := json.Marshal(project.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	query := `
		INSERT INTO projects (id, name, features, locations, pay_rates, crew_assigned, activated, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.ExecContext(ctx, query,
		project.ID,
		project.Name,
		string(features),
		project.Locations,
		project.PayRates,
		project.CrewAssigned,
		project.Activated,
		project.CreatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: projects.id") {
			return storage.ErrProjectAlreadyExists
		}
		return fmt.Errorf("failed to insert project: %w", err)
	}

	return nil
}

// GetProject retrieves project by ID
func (s *Storage) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	query := `
		SELECT id, name, features, locations, pay_rates, crew_assigned, activated, created_at
		FROM projects
		WHERE id = ?
	`

	project := &models.Project{}
	var features string

	err := s.db.QueryRowContext(ctx, query, projectID).Scan(
		&project.ID,
		&project.Name,
		&features,
		&project.Locations,
		&project.PayRates,
		&project.CrewAssigned,
		&project.Activated,
		&project.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if err := json.Unmarshal([]byte(features), &project.Features); err != nil {
		return nil, fmt.Errorf("failed to unmarshal features: %w", err)
	}

	return project, nil
}

// UpdateProject replaces the stored project state
func (s *Storage) UpdateProject(ctx context.Context, project *models.Project) error {
	features, err := json.Marshal(project.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	query := `
		UPDATE projects
		SET name = ?, features = ?, locations = ?, pay_rates = ?, crew_assigned = ?, activated = ?
		WHERE id = ?
	`

	result, err := s.db.ExecContext(ctx, query,
		project.Name,
		string(features),
		project.Locations,
		project.PayRates,
		project.CrewAssigned,
		project.Activated,
		project.ID,
	)

	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return storage.ErrProjectNotFound
	}

	return nil
}
