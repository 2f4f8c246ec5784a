package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runInvalidate(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: crewdeck invalidate <project> [reason]")
	}
	projectID := args[0]
	reason := "manual"
	if len(args) > 1 {
		reason = args[1]
	}

	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	c.io.Printf("Recomputing readiness for %s...\n", projectID)

	record, err := c.apiClient.InvalidateRecord(ctx, projectID, reason)
	if err != nil {
		return err
	}

	if err := c.records.SaveRecord(ctx, record); err != nil {
		c.logger.Warn("failed to cache record", "project_id", projectID, "error", err)
	}

	c.io.Println("✓ Record recomputed")
	c.io.Println()
	c.printRecord(record)
	return nil
}
