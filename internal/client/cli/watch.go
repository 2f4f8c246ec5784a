package cli

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/crewdeck/crewdeck/internal/client/readiness"
	"github.com/crewdeck/crewdeck/internal/models"
)

// SubscriberFactory builds a change-stream subscriber once the session
// token is known.
type SubscriberFactory func(accessToken string) readiness.Subscriber

// watchPollInterval is how often the watch loop re-renders the view
const watchPollInterval = time.Second

// runWatch follows a record live: it runs the full sync engine with the
// change stream attached and re-renders whenever the view changes, until
// the context is cancelled.
func (c *Cli) runWatch(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: crewdeck watch <project>")
	}
	projectID := args[0]

	session, err := c.requireSession(ctx)
	if err != nil {
		return err
	}

	var subscriber readiness.Subscriber
	if c.newSubscriber != nil {
		subscriber = c.newSubscriber(session.AccessToken)
	}

	store, err := readiness.NewStore(ctx, projectID, nil,
		c.apiClient, c.records, subscriber, c.logger, readiness.Config{})
	if err != nil {
		return fmt.Errorf("failed to start readiness store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			c.logger.Warn("failed to close store", "error", err)
		}
	}()

	if err := store.Refresh(ctx); err != nil {
		return err
	}

	c.io.Printf("Watching %s (Ctrl-C to stop)\n", projectID)
	c.io.Println()

	var last *models.Record
	render := func() {
		view := store.Get()
		if view.Err != nil {
			c.io.Printf("! %v\n", view.Err)
		}
		if view.Record == nil || reflect.DeepEqual(view.Record, last) {
			return
		}
		last = view.Record
		c.io.Printf("--- %s ---\n", time.Now().Format(time.TimeOnly))
		c.printRecord(view.Record)
		c.io.Println()
	}
	render()

	ticker := time.NewTicker(watchPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.io.Println("Stopped.")
			return nil
		case <-ticker.C:
			render()
		}
	}
}
