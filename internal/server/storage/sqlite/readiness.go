package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/crewdeck/crewdeck/internal/models"
	"github.com/crewdeck/crewdeck/internal/server/storage"
)

// SaveRecord persists a computed readiness record, replacing any
// previous computation for the project
func (s *Storage) SaveRecord(ctx context.Context, record *models.Record) error {
	features, err := json.Marshal(record.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	issues, err := json.Marshal(record.BlockingIssues)
	if err != nil {
		return fmt.Errorf("failed to marshal blocking issues: %w", err)
	}

	query := `
		INSERT INTO readiness (project_id, status, features, blocking_issues, calculated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			status = excluded.status,
			features = excluded.features,
			blocking_issues = excluded.blocking_issues,
			calculated_at = excluded.calculated_at
	`

	_, err = s.db.ExecContext(ctx, query,
		record.ProjectID,
		string(record.Status),
		string(features),
		string(issues),
		record.CalculatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save readiness record: %w", err)
	}

	return nil
}

// GetRecord retrieves the stored readiness record for a project
func (s *Storage) GetRecord(ctx context.Context, projectID string) (*models.Record, error) {
	query := `
		SELECT project_id, status, features, blocking_issues, calculated_at
		FROM readiness
		WHERE project_id = ?
	`

	record := &models.Record{}
	var status, features, issues string

	err := s.db.QueryRowContext(ctx, query, projectID).Scan(
		&record.ProjectID,
		&status,
		&features,
		&issues,
		&record.CalculatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get readiness record: %w", err)
	}

	record.Status = models.Status(status)
	if err := json.Unmarshal([]byte(features), &record.Features); err != nil {
		return nil, fmt.Errorf("failed to unmarshal features: %w", err)
	}
	if err := json.Unmarshal([]byte(issues), &record.BlockingIssues); err != nil {
		return nil, fmt.Errorf("failed to unmarshal blocking issues: %w", err)
	}

	return record, nil
}
