package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/crewdeck/crewdeck/internal/client/storage"
	"github.com/crewdeck/crewdeck/internal/models"
)

// SaveRecord persists a readiness snapshot, replacing any previous one.
// Records are keyed by project id so independent projects never interfere.
func (s *Storage) SaveRecord(ctx context.Context, record *models.Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRecords)
		if bucket == nil {
			return fmt.Errorf("records bucket not found")
		}

		if err := bucket.Put([]byte(record.ProjectID), data); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}

		return nil
	})
}

// GetRecord loads the cached snapshot for a project.
// Returns storage.ErrRecordNotCached if no snapshot exists.
func (s *Storage) GetRecord(ctx context.Context, projectID string) (*models.Record, error) {
	var record *models.Record

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRecords)
		if bucket == nil {
			return fmt.Errorf("records bucket not found")
		}

		data := bucket.Get([]byte(projectID))
		if data == nil {
			return storage.ErrRecordNotCached
		}

		record = &models.Record{}
		if err := json.Unmarshal(data, record); err != nil {
			return fmt.Errorf("failed to unmarshal record: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return record, nil
}

// DeleteRecord removes the cached snapshot for a project
func (s *Storage) DeleteRecord(ctx context.Context, projectID string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRecords)
		if bucket == nil {
			return fmt.Errorf("records bucket not found")
		}

		if err := bucket.Delete([]byte(projectID)); err != nil {
			return fmt.Errorf("failed to delete record: %w", err)
		}

		return nil
	})
}
