package cli

import (
	"context"
	"fmt"
	"sort"

	"github.com/crewdeck/crewdeck/internal/models"
)

func (c *Cli) runSet(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: crewdeck set <project> <feature> on|off")
	}
	projectID, feature := args[0], args[1]

	var enabled bool
	switch args[2] {
	case "on", "true":
		enabled = true
	case "off", "false":
		enabled = false
	default:
		return fmt.Errorf("invalid value %q: use on or off", args[2])
	}

	if !models.KnownFeatures[feature] {
		known := make([]string, 0, len(models.KnownFeatures))
		for name := range models.KnownFeatures {
			known = append(known, name)
		}
		sort.Strings(known)
		return fmt.Errorf("unknown feature %q (known: %v)", feature, known)
	}

	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	record, err := c.apiClient.UpdateFeatures(ctx, projectID, map[string]bool{feature: enabled})
	if err != nil {
		return err
	}

	if err := c.records.SaveRecord(ctx, record); err != nil {
		c.logger.Warn("failed to cache record", "project_id", projectID, "error", err)
	}

	c.io.Printf("✓ %s set to %s\n", feature, args[2])
	c.io.Println()
	c.printRecord(record)
	return nil
}
