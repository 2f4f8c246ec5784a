package validation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/crewdeck/crewdeck/internal/models"
)

// ValidationError reports an optimistic update that violates readiness
// rules. Fields lists every offending field so callers can show all
// violations at once instead of one per attempt.
type ValidationError struct {
	Fields []string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid readiness update: %s", strings.Join(e.Fields, ", "))
}

// Rule is a pluggable domain check run after the structural checks.
// It returns the list of violated fields, or nil when the update is fine.
// The current record may be nil when the store has not been hydrated yet.
type Rule func(current *models.Record, update *models.Update) []string

// UpdateValidator checks proposed partial mutations against the current
// record before they touch the overlay or the pending queue.
type UpdateValidator struct {
	known map[string]bool
	rules []Rule
}

// NewUpdateValidator creates a validator over the known feature flag set
// with optional domain rules.
func NewUpdateValidator(rules ...Rule) *UpdateValidator {
	return &UpdateValidator{
		known: models.KnownFeatures,
		rules: rules,
	}
}

// Validate returns a *ValidationError naming every violated field, or nil
// when the update is structurally legal. Checks:
//  1. server-computed fields (status, calculated_at, blocking_issues)
//     must not be set directly
//  2. feature flags must belong to the known flag set
//  3. all configured domain rules must pass
func (v *UpdateValidator) Validate(current *models.Record, update *models.Update) error {
	var fields []string

	if update.Status != nil {
		fields = append(fields, "status")
	}
	if update.CalculatedAt != nil {
		fields = append(fields, "calculated_at")
	}
	if update.BlockingIssues != nil {
		fields = append(fields, "blocking_issues")
	}

	unknown := make([]string, 0, len(update.Features))
	for name := range update.Features {
		if !v.known[name] {
			unknown = append(unknown, "features."+name)
		}
	}
	// Map iteration order is random; keep the error message stable
	sort.Strings(unknown)
	fields = append(fields, unknown...)

	for _, rule := range v.rules {
		fields = append(fields, rule(current, update)...)
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	return nil
}
