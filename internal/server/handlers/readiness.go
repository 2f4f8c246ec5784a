package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/crewdeck/crewdeck/internal/models"
	"github.com/crewdeck/crewdeck/internal/server/storage"
	"github.com/crewdeck/crewdeck/internal/validation"
	"github.com/crewdeck/crewdeck/pkg/api"
)

// Publisher broadcasts change events to project subscribers
type Publisher interface {
	Publish(projectID, kind string)
}

// ReadinessHandler handles project and readiness requests.
// Every mutation recomputes the readiness record, persists it and
// notifies subscribers through the publisher.
type ReadinessHandler struct {
	logger    *slog.Logger
	projects  storage.ProjectStorage
	readiness storage.ReadinessStorage
	publisher Publisher
	validator *validation.UpdateValidator
}

// NewReadinessHandler creates a new readiness handler
func NewReadinessHandler(
	logger *slog.Logger,
	projects storage.ProjectStorage,
	readiness storage.ReadinessStorage,
	publisher Publisher,
) *ReadinessHandler {
	return &ReadinessHandler{
		logger:    logger,
		projects:  projects,
		readiness: readiness,
		publisher: publisher,
		validator: validation.NewUpdateValidator(),
	}
}

// CreateProject handles POST /api/v1/projects
func (h *ReadinessHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.CreateProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode create project request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" {
		sendError(h.logger, w, "name is required", http.StatusBadRequest)
		return
	}
	for name := range req.Features {
		if !models.KnownFeatures[name] {
			sendError(h.logger, w, "unknown feature flag: "+name, http.StatusBadRequest)
			return
		}
	}

	features := req.Features
	if features == nil {
		features = map[string]bool{}
	}

	project := &models.Project{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Features:     features,
		Locations:    req.Locations,
		PayRates:     req.PayRates,
		CrewAssigned: req.CrewAssigned,
		Activated:    req.Activated,
		CreatedAt:    time.Now(),
	}

	if err := h.projects.CreateProject(ctx, project); err != nil {
		h.logger.ErrorContext(ctx, "failed to create project", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	// Compute the initial readiness record so the first read never misses
	if _, err := h.recompute(r, project); err != nil {
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.logger.InfoContext(ctx, "project created",
		slog.String("project_id", project.ID),
		slog.String("name", project.Name))

	sendJSON(h.logger, w, projectToWire(project), http.StatusCreated)
}

// GetRecord handles GET /api/v1/projects/{id}/readiness
func (h *ReadinessHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := r.PathValue("id")

	record, err := h.readiness.GetRecord(ctx, projectID)
	if err != nil {
		if !errors.Is(err, storage.ErrRecordNotFound) {
			h.logger.ErrorContext(ctx, "failed to get readiness record", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}

		// Not computed yet; derive it from the project on first read
		project, err := h.projects.GetProject(ctx, projectID)
		if err != nil {
			h.respondProjectError(ctx, w, projectID, err)
			return
		}
		record, err = h.recompute(r, project)
		if err != nil {
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
	}

	sendJSON(h.logger, w, recordToWire(record), http.StatusOK)
}

// Invalidate handles POST /api/v1/projects/{id}/readiness/invalidate.
// The record is recomputed from the project's current facts regardless
// of what was stored, and subscribers are notified.
func (h *ReadinessHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := r.PathValue("id")

	var req api.InvalidateRequest
	if r.Body != nil {
		// The reason is advisory; a missing body means a manual poke
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	project, err := h.projects.GetProject(ctx, projectID)
	if err != nil {
		h.respondProjectError(ctx, w, projectID, err)
		return
	}

	record, err := h.recompute(r, project)
	if err != nil {
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.publisher.Publish(projectID, api.ChangeKindRecomputed)

	h.logger.InfoContext(ctx, "readiness record invalidated",
		slog.String("project_id", projectID),
		slog.String("reason", req.Reason),
		slog.String("status", string(record.Status)))

	sendJSON(h.logger, w, recordToWire(record), http.StatusOK)
}

// UpdateFeatures handles PATCH /api/v1/projects/{id}/features
func (h *ReadinessHandler) UpdateFeatures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := r.PathValue("id")

	var req api.FeatureUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode feature update", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if len(req.Features) == 0 {
		sendError(h.logger, w, "features is required", http.StatusBadRequest)
		return
	}

	project, err := h.projects.GetProject(ctx, projectID)
	if err != nil {
		h.respondProjectError(ctx, w, projectID, err)
		return
	}

	current := models.ComputeReadiness(project, time.Now().UTC())
	update := &models.Update{IssuedAt: time.Now(), Features: req.Features}
	if err := h.validator.Validate(current, update); err != nil {
		h.logger.WarnContext(ctx, "feature update rejected",
			slog.String("project_id", projectID), slog.Any("error", err))
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return
	}

	if project.Features == nil {
		project.Features = make(map[string]bool, len(req.Features))
	}
	for name, enabled := range req.Features {
		project.Features[name] = enabled
	}

	if err := h.projects.UpdateProject(ctx, project); err != nil {
		h.logger.ErrorContext(ctx, "failed to update project", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	record, err := h.recompute(r, project)
	if err != nil {
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	h.publisher.Publish(projectID, api.ChangeKindFeaturesUpdated)

	h.logger.InfoContext(ctx, "features updated",
		slog.String("project_id", projectID),
		slog.Int("changed", len(req.Features)))

	sendJSON(h.logger, w, recordToWire(record), http.StatusOK)
}

// UpdateSetup handles PATCH /api/v1/projects/{id}/setup.
// Changing setup facts is what flips blocking issues on and off, so the
// record is recomputed and subscribers are notified.
func (h *ReadinessHandler) UpdateSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	projectID := r.PathValue("id")

	var req api.ProjectSetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode setup update", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	project, err := h.projects.GetProject(ctx, projectID)
	if err != nil {
		h.respondProjectError(ctx, w, projectID, err)
		return
	}

	crewChanged := false
	if req.Locations != nil {
		project.Locations = *req.Locations
	}
	if req.PayRates != nil {
		project.PayRates = *req.PayRates
	}
	if req.CrewAssigned != nil {
		crewChanged = project.CrewAssigned != *req.CrewAssigned
		project.CrewAssigned = *req.CrewAssigned
	}
	if req.Activated != nil {
		project.Activated = *req.Activated
	}

	if err := h.projects.UpdateProject(ctx, project); err != nil {
		h.logger.ErrorContext(ctx, "failed to update project", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	record, err := h.recompute(r, project)
	if err != nil {
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	if crewChanged {
		h.publisher.Publish(projectID, api.ChangeKindCrewChanged)
	} else {
		h.publisher.Publish(projectID, api.ChangeKindRecomputed)
	}

	h.logger.InfoContext(ctx, "project setup updated",
		slog.String("project_id", projectID),
		slog.String("status", string(record.Status)))

	sendJSON(h.logger, w, recordToWire(record), http.StatusOK)
}

// recompute derives the readiness record from the project and persists it
func (h *ReadinessHandler) recompute(r *http.Request, project *models.Project) (*models.Record, error) {
	ctx := r.Context()

	record := models.ComputeReadiness(project, time.Now().UTC())
	if err := h.readiness.SaveRecord(ctx, record); err != nil {
		h.logger.ErrorContext(ctx, "failed to save readiness record",
			slog.String("project_id", project.ID), slog.Any("error", err))
		return nil, err
	}
	return record, nil
}

func (h *ReadinessHandler) respondProjectError(ctx context.Context, w http.ResponseWriter, projectID string, err error) {
	if errors.Is(err, storage.ErrProjectNotFound) {
		h.logger.WarnContext(ctx, "project not found", slog.String("project_id", projectID))
		sendError(h.logger, w, "project not found", http.StatusNotFound)
		return
	}
	h.logger.ErrorContext(ctx, "failed to get project", slog.Any("error", err))
	sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
}

// projectToWire converts the domain project to its wire representation
func projectToWire(p *models.Project) api.Project {
	return api.Project{
		ID:           p.ID,
		Name:         p.Name,
		Features:     p.Features,
		Locations:    p.Locations,
		PayRates:     p.PayRates,
		CrewAssigned: p.CrewAssigned,
		Activated:    p.Activated,
		CreatedAt:    p.CreatedAt,
	}
}

// recordToWire converts the domain record to its wire representation
func recordToWire(r *models.Record) api.ReadinessRecord {
	return api.ReadinessRecord{
		ProjectID:      r.ProjectID,
		Status:         string(r.Status),
		Features:       r.Features,
		BlockingIssues: r.BlockingIssues,
		CalculatedAt:   r.CalculatedAt,
	}
}
