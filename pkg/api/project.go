package api

import "time"

// CreateProjectRequest creates a project with its initial setup facts
// (POST /api/v1/projects)
type CreateProjectRequest struct {
	Name         string          `json:"name"`
	Features     map[string]bool `json:"features,omitempty"`
	Locations    int             `json:"locations"`
	PayRates     int             `json:"pay_rates"`
	CrewAssigned int             `json:"crew_assigned"`
	Activated    bool            `json:"activated"`
}

// ProjectSetupRequest is a partial update of a project's setup facts
// (PATCH /api/v1/projects/{id}/setup). Nil fields are left unchanged.
type ProjectSetupRequest struct {
	Locations    *int  `json:"locations,omitempty"`
	PayRates     *int  `json:"pay_rates,omitempty"`
	CrewAssigned *int  `json:"crew_assigned,omitempty"`
	Activated    *bool `json:"activated,omitempty"`
}

// Project is the wire representation of a project
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
