package models

import "time"

// Blocking issue codes reported by the readiness computation
const (
	IssueMissingLocations = "missing_locations"
	IssueMissingPayRates  = "missing_pay_rates"
	IssueNoCrewAssigned   = "no_crew_assigned"
)

// Project is the server-side source of truth a readiness computation
// reads: setup facts plus the current client-owned feature flags.
type Project struct {
	CreatedAt    time.Time       `json:"created_at"`
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Features     map[string]bool `json:"features"`
	Locations    int             `json:"locations"`
	PayRates     int             `json:"pay_rates"`
	CrewAssigned int             `json:"crew_assigned"`
	Activated    bool            `json:"activated"`
}

// ComputeReadiness derives the server-owned fields of a readiness record
// from the project's setup facts. Status and blocking issues are fully
// determined by the inputs; CalculatedAt is stamped with now.
//
// Rules:
//   - any missing setup fact contributes a blocking issue
//   - blocking issues force status setup_required
//   - an activated project with no blocking issues is active
//   - otherwise the project is ready_for_activation
func ComputeReadiness(project *Project, now time.Time) *Record {
	issues := make([]string, 0, 3)
	if project.Locations == 0 {
		issues = append(issues, IssueMissingLocations)
	}
	if project.PayRates == 0 {
		issues = append(issues, IssueMissingPayRates)
	}
	if project.CrewAssigned == 0 {
		issues = append(issues, IssueNoCrewAssigned)
	}

	status := StatusReadyForActivation
	switch {
	case len(issues) > 0:
		status = StatusSetupRequired
	case project.Activated:
		status = StatusActive
	}

	features := make(map[string]bool, len(project.Features))
	for name, enabled := range project.Features {
		features[name] = enabled
	}

	return &Record{
		ProjectID:      project.ID,
		Status:         status,
		Features:       features,
		BlockingIssues: issues,
		CalculatedAt:   now,
	}
}
