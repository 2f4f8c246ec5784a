package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdeck/crewdeck/internal/models"
	"github.com/crewdeck/crewdeck/internal/server/storage"
)

func TestReadinessStorage_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	project := testProject()
	require.NoError(t, s.CreateProject(ctx, project))

	record := &models.Record{
		ProjectID:      project.ID,
		Status:         models.StatusSetupRequired,
		Features:       map[string]bool{models.FeatureScheduling: true},
		BlockingIssues: []string{models.IssueMissingLocations},
		CalculatedAt:   time.Now().UTC().Truncate(time.Second),
	}
	require.NoError(t, s.SaveRecord(ctx, record))

	got, err := s.GetRecord(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSetupRequired, got.Status)
	assert.Equal(t, record.Features, got.Features)
	assert.Equal(t, record.BlockingIssues, got.BlockingIssues)
}

func TestReadinessStorage_SaveReplacesPrevious(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	project := testProject()
	require.NoError(t, s.CreateProject(ctx, project))

	first := &models.Record{
		ProjectID:      project.ID,
		Status:         models.StatusSetupRequired,
		Features:       map[string]bool{},
		BlockingIssues: []string{models.IssueNoCrewAssigned},
		CalculatedAt:   time.Now().UTC(),
	}
	require.NoError(t, s.SaveRecord(ctx, first))

	second := &models.Record{
		ProjectID:      project.ID,
		Status:         models.StatusReadyForActivation,
		Features:       map[string]bool{models.FeatureTeamManagement: true},
		BlockingIssues: []string{},
		CalculatedAt:   time.Now().UTC(),
	}
	require.NoError(t, s.SaveRecord(ctx, second))

	got, err := s.GetRecord(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusReadyForActivation, got.Status)
	assert.Empty(t, got.BlockingIssues)
}

func TestReadinessStorage_Get_NotFound(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	_, err := s.GetRecord(ctx, uuid.New().String())
	assert.ErrorIs(t, err, storage.ErrRecordNotFound)
}
