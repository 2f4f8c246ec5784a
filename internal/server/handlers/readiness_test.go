package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdeck/crewdeck/internal/models"
	"github.com/crewdeck/crewdeck/internal/server/storage"
	"github.com/crewdeck/crewdeck/pkg/api"
)

// mockProjectStorage is a mock implementation of ProjectStorage for testing
type mockProjectStorage struct {
	projects    map[string]*models.Project
	createError error
	getError    error
	updateError error
}

func (m *mockProjectStorage) CreateProject(ctx context.Context, project *models.Project) error {
	if m.createError != nil {
		return m.createError
	}
	if _, exists := m.projects[project.ID]; exists {
		return storage.ErrProjectAlreadyExists
	}
	m.projects[project.ID] = project
	return nil
}

func (m *mockProjectStorage) GetProject(ctx context.Context, id string) (*models.Project, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	project, ok := m.projects[id]
	if !ok {
		return nil, storage.ErrProjectNotFound
	}
	return project, nil
}

func (m *mockProjectStorage) UpdateProject(ctx context.Context, project *models.Project) error {
	if m.updateError != nil {
		return m.updateError
	}
	if _, ok := m.projects[project.ID]; !ok {
		return storage.ErrProjectNotFound
	}
	m.projects[project.ID] = project
	return nil
}

// mockReadinessStorage is a mock implementation of ReadinessStorage for testing
type mockReadinessStorage struct {
	records   map[string]*models.Record
	saveError error
	getError  error
}

func (m *mockReadinessStorage) SaveRecord(ctx context.Context, record *models.Record) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.records[record.ProjectID] = record
	return nil
}

func (m *mockReadinessStorage) GetRecord(ctx context.Context, projectID string) (*models.Record, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	record, ok := m.records[projectID]
	if !ok {
		return nil, storage.ErrRecordNotFound
	}
	return record, nil
}

// mockPublisher records published change events
type mockPublisher struct {
	events []publishedEvent
}

type publishedEvent struct {
	projectID string
	kind      string
}

func (m *mockPublisher) Publish(projectID, kind string) {
	m.events = append(m.events, publishedEvent{projectID: projectID, kind: kind})
}

type readinessFixture struct {
	handler   *ReadinessHandler
	projects  *mockProjectStorage
	readiness *mockReadinessStorage
	publisher *mockPublisher
}

func setupReadinessHandler() *readinessFixture {
	projects := &mockProjectStorage{projects: make(map[string]*models.Project)}
	readiness := &mockReadinessStorage{records: make(map[string]*models.Record)}
	publisher := &mockPublisher{}

	return &readinessFixture{
		handler:   NewReadinessHandler(setupTestLogger(), projects, readiness, publisher),
		projects:  projects,
		readiness: readiness,
		publisher: publisher,
	}
}

func completeProject() *models.Project {
	return &models.Project{
		ID:   "proj-1",
		Name: "Night Shoot",
		Features: map[string]bool{
			"team_management": true,
			"scheduling":      false,
		},
		Locations:    2,
		PayRates:     3,
		CrewAssigned: 12,
		Activated:    false,
		CreatedAt:    time.Now(),
	}
}

func requestWithID(method, target, id string, body []byte) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	req.SetPathValue("id", id)
	return req
}

func TestReadinessHandler_CreateProject(t *testing.T) {
	f := setupReadinessHandler()

	reqBody := api.CreateProjectRequest{
		Name:      "Night Shoot",
		Features:  map[string]bool{"team_management": true},
		Locations: 1,
	}

	body, err := json.Marshal(reqBody)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", bytes.NewReader(body))
	w := httptest.NewRecorder()
	f.handler.CreateProject(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var project api.Project
	require.NoError(t, json.NewDecoder(w.Body).Decode(&project))
	assert.NotEmpty(t, project.ID)
	assert.Equal(t, "Night Shoot", project.Name)

	// The initial readiness record was computed and stored
	record, err := f.readiness.GetRecord(context.Background(), project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSetupRequired, record.Status)
	assert.ElementsMatch(t, []string{models.IssueMissingPayRates, models.IssueNoCrewAssigned}, record.BlockingIssues)
}

func TestReadinessHandler_CreateProject_Validation(t *testing.T) {
	f := setupReadinessHandler()

	tests := []struct {
		name string
		req  api.CreateProjectRequest
	}{
		{"missing name", api.CreateProjectRequest{}},
		{"unknown feature", api.CreateProjectRequest{
			Name:     "Night Shoot",
			Features: map[string]bool{"time_travel": true},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := json.Marshal(tt.req)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/projects", bytes.NewReader(body))
			w := httptest.NewRecorder()
			f.handler.CreateProject(w, req)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestReadinessHandler_GetRecord_Stored(t *testing.T) {
	f := setupReadinessHandler()

	stored := models.ComputeReadiness(completeProject(), time.Now().UTC())
	f.readiness.records["proj-1"] = stored

	req := requestWithID(http.MethodGet, "/api/v1/projects/proj-1/readiness", "proj-1", nil)
	w := httptest.NewRecorder()
	f.handler.GetRecord(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var record api.ReadinessRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&record))
	assert.Equal(t, "proj-1", record.ProjectID)
	assert.Equal(t, api.StatusReadyForActivation, record.Status)
	assert.Empty(t, record.BlockingIssues)
	assert.True(t, record.Features["team_management"])
}

func TestReadinessHandler_GetRecord_ComputedOnFirstRead(t *testing.T) {
	f := setupReadinessHandler()
	f.projects.projects["proj-1"] = completeProject()

	req := requestWithID(http.MethodGet, "/api/v1/projects/proj-1/readiness", "proj-1", nil)
	w := httptest.NewRecorder()
	f.handler.GetRecord(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	// The derived record was persisted for subsequent reads
	_, err := f.readiness.GetRecord(context.Background(), "proj-1")
	assert.NoError(t, err)
}

func TestReadinessHandler_GetRecord_ProjectNotFound(t *testing.T) {
	f := setupReadinessHandler()

	req := requestWithID(http.MethodGet, "/api/v1/projects/ghost/readiness", "ghost", nil)
	w := httptest.NewRecorder()
	f.handler.GetRecord(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadinessHandler_Invalidate_RecomputesAndPublishes(t *testing.T) {
	f := setupReadinessHandler()

	project := completeProject()
	f.projects.projects["proj-1"] = project

	// Stale record claims the project is still blocked
	f.readiness.records["proj-1"] = &models.Record{
		ProjectID:      "proj-1",
		Status:         models.StatusSetupRequired,
		BlockingIssues: []string{models.IssueMissingLocations},
		CalculatedAt:   time.Now().Add(-time.Hour),
	}

	body, err := json.Marshal(api.InvalidateRequest{Reason: "setup_changed"})
	require.NoError(t, err)

	req := requestWithID(http.MethodPost, "/api/v1/projects/proj-1/readiness/invalidate", "proj-1", body)
	w := httptest.NewRecorder()
	f.handler.Invalidate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var record api.ReadinessRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&record))
	assert.Equal(t, api.StatusReadyForActivation, record.Status)
	assert.Empty(t, record.BlockingIssues)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, publishedEvent{projectID: "proj-1", kind: api.ChangeKindRecomputed}, f.publisher.events[0])
}

func TestReadinessHandler_Invalidate_EmptyBody(t *testing.T) {
	f := setupReadinessHandler()
	f.projects.projects["proj-1"] = completeProject()

	req := requestWithID(http.MethodPost, "/api/v1/projects/proj-1/readiness/invalidate", "proj-1", nil)
	w := httptest.NewRecorder()
	f.handler.Invalidate(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReadinessHandler_UpdateFeatures(t *testing.T) {
	f := setupReadinessHandler()
	f.projects.projects["proj-1"] = completeProject()

	body, err := json.Marshal(api.FeatureUpdateRequest{
		Features: map[string]bool{"scheduling": true},
	})
	require.NoError(t, err)

	req := requestWithID(http.MethodPatch, "/api/v1/projects/proj-1/features", "proj-1", body)
	w := httptest.NewRecorder()
	f.handler.UpdateFeatures(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var record api.ReadinessRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&record))
	assert.True(t, record.Features["scheduling"])
	assert.True(t, record.Features["team_management"]) // untouched flags survive

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, api.ChangeKindFeaturesUpdated, f.publisher.events[0].kind)
}

func TestReadinessHandler_UpdateFeatures_UnknownFlag(t *testing.T) {
	f := setupReadinessHandler()
	f.projects.projects["proj-1"] = completeProject()

	body, err := json.Marshal(api.FeatureUpdateRequest{
		Features: map[string]bool{"time_travel": true},
	})
	require.NoError(t, err)

	req := requestWithID(http.MethodPatch, "/api/v1/projects/proj-1/features", "proj-1", body)
	w := httptest.NewRecorder()
	f.handler.UpdateFeatures(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, f.publisher.events)
}

func TestReadinessHandler_UpdateFeatures_EmptyBody(t *testing.T) {
	f := setupReadinessHandler()
	f.projects.projects["proj-1"] = completeProject()

	body, err := json.Marshal(api.FeatureUpdateRequest{})
	require.NoError(t, err)

	req := requestWithID(http.MethodPatch, "/api/v1/projects/proj-1/features", "proj-1", body)
	w := httptest.NewRecorder()
	f.handler.UpdateFeatures(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReadinessHandler_UpdateSetup_CrewChange(t *testing.T) {
	f := setupReadinessHandler()
	f.projects.projects["proj-1"] = completeProject()

	crew := 0
	body, err := json.Marshal(api.ProjectSetupRequest{CrewAssigned: &crew})
	require.NoError(t, err)

	req := requestWithID(http.MethodPatch, "/api/v1/projects/proj-1/setup", "proj-1", body)
	w := httptest.NewRecorder()
	f.handler.UpdateSetup(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var record api.ReadinessRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&record))
	assert.Equal(t, api.StatusSetupRequired, record.Status)
	assert.Contains(t, record.BlockingIssues, models.IssueNoCrewAssigned)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, api.ChangeKindCrewChanged, f.publisher.events[0].kind)
}

func TestReadinessHandler_UpdateSetup_ActivationFlipsStatus(t *testing.T) {
	f := setupReadinessHandler()
	f.projects.projects["proj-1"] = completeProject()

	activated := true
	body, err := json.Marshal(api.ProjectSetupRequest{Activated: &activated})
	require.NoError(t, err)

	req := requestWithID(http.MethodPatch, "/api/v1/projects/proj-1/setup", "proj-1", body)
	w := httptest.NewRecorder()
	f.handler.UpdateSetup(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var record api.ReadinessRecord
	require.NoError(t, json.NewDecoder(w.Body).Decode(&record))
	assert.Equal(t, api.StatusActive, record.Status)

	require.Len(t, f.publisher.events, 1)
	assert.Equal(t, api.ChangeKindRecomputed, f.publisher.events[0].kind)
}

func TestReadinessHandler_UpdateSetup_ProjectNotFound(t *testing.T) {
	f := setupReadinessHandler()

	locations := 1
	body, err := json.Marshal(api.ProjectSetupRequest{Locations: &locations})
	require.NoError(t, err)

	req := requestWithID(http.MethodPatch, "/api/v1/projects/ghost/setup", "ghost", body)
	w := httptest.NewRecorder()
	f.handler.UpdateSetup(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReadinessHandler_StorageError(t *testing.T) {
	f := setupReadinessHandler()
	f.readiness.getError = errors.New("disk on fire")

	req := requestWithID(http.MethodGet, "/api/v1/projects/proj-1/readiness", "proj-1", nil)
	w := httptest.NewRecorder()
	f.handler.GetRecord(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
