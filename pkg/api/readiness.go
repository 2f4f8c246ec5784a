package api

import "time"

// Readiness statuses returned by the server
const (
	StatusSetupRequired      = "setup_required"
	StatusReadyForActivation = "ready_for_activation"
	StatusActive             = "active"
)

// Change event kinds published on the change stream
const (
	ChangeKindFeaturesUpdated = "features_updated"
	ChangeKindRecomputed      = "recomputed"
	ChangeKindCrewChanged     = "crew_changed"
)

// ReadinessRecord is the wire representation of a project readiness record.
// Status, BlockingIssues and CalculatedAt are computed server-side and are
// never accepted from clients.
type ReadinessRecord struct {
	CalculatedAt   time.Time       `json:"calculated_at"`
	ProjectID      string          `json:"project_id"`
	Status         string          `json:"status"`
	Features       map[string]bool `json:"features"`
	BlockingIssues []string        `json:"blocking_issues"`
}

// FeatureUpdateRequest carries client-owned feature flag changes
// (PATCH /api/v1/projects/{id}/features)
type FeatureUpdateRequest struct {
	Features map[string]bool `json:"features"`
}

// InvalidateRequest asks the server to recompute a readiness record
// (POST /api/v1/projects/{id}/readiness/invalidate)
type InvalidateRequest struct {
	Reason string `json:"reason"`
}

// ChangeEvent notifies subscribers that a project's readiness record
// was mutated by another writer.
type ChangeEvent struct {
	OccurredAt time.Time `json:"occurred_at"`
	ID         string    `json:"id"`         // UUID of the event
	ProjectID  string    `json:"project_id"` // record the event is scoped to
	Kind       string    `json:"kind"`       // one of the ChangeKind* constants
}
