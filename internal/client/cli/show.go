package cli

import (
	"context"
	"fmt"
)

func (c *Cli) runShow(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: crewdeck show <project>")
	}
	projectID := args[0]

	if _, err := c.requireSession(ctx); err != nil {
		return err
	}

	record, err := c.apiClient.FetchRecord(ctx, projectID)
	if err != nil {
		return err
	}

	// Refresh the local snapshot so offline commands see current state
	if err := c.records.SaveRecord(ctx, record); err != nil {
		c.logger.Warn("failed to cache record", "project_id", projectID, "error", err)
	}

	c.printRecord(record)
	return nil
}
