package cli

import (
	"context"
	"fmt"
)

// runRevert drops the local snapshot for a project and replaces it with
// the server's current record.
func (c *Cli) runRevert(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: crewdeck revert <project>")
	}
	projectID := args[0]

	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	if err := c.records.DeleteRecord(ctx, projectID); err != nil {
		return fmt.Errorf("failed to drop local snapshot: %w", err)
	}

	record, err := c.apiClient.FetchRecord(ctx, projectID)
	if err != nil {
		return err
	}

	if err := c.records.SaveRecord(ctx, record); err != nil {
		c.logger.Warn("failed to cache record", "project_id", projectID, "error", err)
	}

	c.io.Println("✓ Local changes discarded")
	c.io.Println()
	c.printRecord(record)
	return nil
}
