package models

import "time"

// Status is the server-computed readiness state of a project.
type Status string

// Readiness statuses. The progression is derived server-side from the
// project's setup facts; clients never set a status directly.
const (
	StatusSetupRequired      Status = "setup_required"
	StatusReadyForActivation Status = "ready_for_activation"
	StatusActive             Status = "active"
)

// Known client-settable feature flags
const (
	FeatureTeamManagement    = "team_management"
	FeatureTalentTracking    = "talent_tracking"
	FeatureScheduling        = "scheduling"
	FeatureTimecardApprovals = "timecard_approvals"
)

// KnownFeatures is the closed set of feature flags a client may toggle.
// Flags outside this set are rejected by validation and dropped from
// overlays during conflict resolution.
var KnownFeatures = map[string]bool{
	FeatureTeamManagement:    true,
	FeatureTalentTracking:    true,
	FeatureScheduling:        true,
	FeatureTimecardApprovals: true,
}

// Record is the canonical readiness record for one project.
// Status, BlockingIssues and CalculatedAt are derived fields owned by the
// server; Features are client-owned and may be mutated optimistically.
type Record struct {
	CalculatedAt   time.Time       `json:"calculated_at"`
	ProjectID      string          `json:"project_id"`
	Status         Status          `json:"status"`
	Features       map[string]bool `json:"features"`
	BlockingIssues []string        `json:"blocking_issues"`
}

// Clone creates a deep copy of the record
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}

	var features map[string]bool
	if r.Features != nil {
		features = make(map[string]bool, len(r.Features))
		for name, enabled := range r.Features {
			features[name] = enabled
		}
	}

	var issues []string
	if r.BlockingIssues != nil {
		issues = make([]string, len(r.BlockingIssues))
		copy(issues, r.BlockingIssues)
	}

	return &Record{
		ProjectID:      r.ProjectID,
		Status:         r.Status,
		Features:       features,
		BlockingIssues: issues,
		CalculatedAt:   r.CalculatedAt,
	}
}

// Update is a partial mutation of a record issued by a client.
// Only Features are legal to set; the derived-field pointers exist so the
// validator can name exactly which server-owned field a bad caller touched.
type Update struct {
	IssuedAt       time.Time       `json:"issued_at"`
	Status         *Status         `json:"status,omitempty"`
	CalculatedAt   *time.Time      `json:"calculated_at,omitempty"`
	Features       map[string]bool `json:"features,omitempty"`
	BlockingIssues []string        `json:"blocking_issues,omitempty"`
}

// Clone creates a deep copy of the update
func (u *Update) Clone() *Update {
	if u == nil {
		return nil
	}

	out := &Update{IssuedAt: u.IssuedAt}

	if u.Status != nil {
		status := *u.Status
		out.Status = &status
	}
	if u.CalculatedAt != nil {
		at := *u.CalculatedAt
		out.CalculatedAt = &at
	}
	if u.Features != nil {
		out.Features = make(map[string]bool, len(u.Features))
		for name, enabled := range u.Features {
			out.Features[name] = enabled
		}
	}
	if u.BlockingIssues != nil {
		out.BlockingIssues = make([]string, len(u.BlockingIssues))
		copy(out.BlockingIssues, u.BlockingIssues)
	}

	return out
}
