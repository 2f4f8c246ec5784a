package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewdeck/crewdeck/internal/models"
)

func TestValidate_LegalUpdate(t *testing.T) {
	validator := NewUpdateValidator()

	current := &models.Record{
		ProjectID: "proj-1",
		Status:    models.StatusSetupRequired,
		Features:  map[string]bool{models.FeatureTeamManagement: false},
	}
	update := &models.Update{
		IssuedAt: time.Now(),
		Features: map[string]bool{models.FeatureTeamManagement: true},
	}

	assert.NoError(t, validator.Validate(current, update))
}

func TestValidate_ServerComputedFields(t *testing.T) {
	validator := NewUpdateValidator()
	status := models.StatusActive
	now := time.Now()

	tests := []struct {
		name   string
		update *models.Update
		fields []string
	}{
		{
			name:   "status is server-computed",
			update: &models.Update{Status: &status},
			fields: []string{"status"},
		},
		{
			name:   "calculated_at is server-computed",
			update: &models.Update{CalculatedAt: &now},
			fields: []string{"calculated_at"},
		},
		{
			name:   "blocking_issues is server-computed",
			update: &models.Update{BlockingIssues: []string{models.IssueMissingLocations}},
			fields: []string{"blocking_issues"},
		},
		{
			name: "all violations reported at once",
			update: &models.Update{
				Status:         &status,
				CalculatedAt:   &now,
				BlockingIssues: []string{},
				Features:       map[string]bool{"bogus": true},
			},
			fields: []string{"status", "calculated_at", "blocking_issues", "features.bogus"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validator.Validate(nil, tt.update)
			require.Error(t, err)

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.fields, verr.Fields)
		})
	}
}

func TestValidate_UnknownFeatureFlag(t *testing.T) {
	validator := NewUpdateValidator()

	err := validator.Validate(nil, &models.Update{
		Features: map[string]bool{"zebra_mode": true, "alpha_mode": false},
	})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	// Unknown flags are reported in stable sorted order
	assert.Equal(t, []string{"features.alpha_mode", "features.zebra_mode"}, verr.Fields)
}

func TestValidate_DomainRules(t *testing.T) {
	// A pluggable rule: timecard approvals cannot be enabled while the
	// project still has blocking issues.
	rule := func(current *models.Record, update *models.Update) []string {
		if current == nil || len(current.BlockingIssues) == 0 {
			return nil
		}
		if enabled, ok := update.Features[models.FeatureTimecardApprovals]; ok && enabled {
			return []string{"features." + models.FeatureTimecardApprovals}
		}
		return nil
	}
	validator := NewUpdateValidator(rule)

	blocked := &models.Record{
		ProjectID:      "proj-1",
		Status:         models.StatusSetupRequired,
		BlockingIssues: []string{models.IssueMissingPayRates},
	}

	err := validator.Validate(blocked, &models.Update{
		Features: map[string]bool{models.FeatureTimecardApprovals: true},
	})
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"features.timecard_approvals"}, verr.Fields)

	// Same update is fine once the blocking issues are gone
	clear := &models.Record{ProjectID: "proj-1", Status: models.StatusReadyForActivation}
	assert.NoError(t, validator.Validate(clear, &models.Update{
		Features: map[string]bool{models.FeatureTimecardApprovals: true},
	}))
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Fields: []string{"status", "features.bogus"}}
	assert.Equal(t, "invalid readiness update: status, features.bogus", err.Error())
}
