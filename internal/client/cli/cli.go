// Package cli implements the crewdeck command line client.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/crewdeck/crewdeck/internal/client/api"
	"github.com/crewdeck/crewdeck/internal/client/storage"
	"github.com/crewdeck/crewdeck/internal/models"
)

// Cli wires the command implementations to the API client and the local
// BoltDB-backed stores.
type Cli struct {
	apiClient     *api.Client
	records       storage.RecordCache
	sessions      storage.SessionStorage
	io            IO
	logger        *slog.Logger
	newSubscriber SubscriberFactory
}

func New(
	apiClient *api.Client,
	records storage.RecordCache,
	sessions storage.SessionStorage,
	io IO,
	logger *slog.Logger,
	newSubscriber SubscriberFactory,
) *Cli {
	return &Cli{
		apiClient:     apiClient,
		records:       records,
		sessions:      sessions,
		io:            io,
		logger:        logger,
		newSubscriber: newSubscriber,
	}
}

// Run dispatches a single command invocation
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "show":
		return c.runShow(ctx, args)
	case "set":
		return c.runSet(ctx, args)
	case "invalidate":
		return c.runInvalidate(ctx, args)
	case "revert":
		return c.runRevert(ctx, args)
	case "watch":
		return c.runWatch(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// requireSession loads the stored session, rejects expired ones and
// installs the bearer token on the API client.
func (c *Cli) requireSession(ctx context.Context) (*storage.Session, error) {
	session, err := c.sessions.GetSession(ctx)
	if err != nil {
		if err == storage.ErrSessionNotFound {
			return nil, fmt.Errorf("not authenticated. Please run 'crewdeck login' first")
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	if time.Now().Unix() >= session.ExpiresAt {
		return nil, fmt.Errorf("session expired. Please run 'crewdeck login' again")
	}

	c.apiClient.SetAccessToken(session.AccessToken)
	return session, nil
}

// printRecord renders a readiness record for the terminal
func (c *Cli) printRecord(record *models.Record) {
	c.io.Printf("Project:       %s\n", record.ProjectID)
	c.io.Printf("Status:        %s\n", record.Status)
	c.io.Printf("Calculated at: %s\n", record.CalculatedAt.Format(time.RFC3339))

	names := make([]string, 0, len(record.Features))
	for name := range record.Features {
		names = append(names, name)
	}
	sort.Strings(names)

	c.io.Println("Features:")
	if len(names) == 0 {
		c.io.Println("  (none)")
	}
	for _, name := range names {
		state := "off"
		if record.Features[name] {
			state = "on"
		}
		c.io.Printf("  %-20s %s\n", name, state)
	}

	if len(record.BlockingIssues) > 0 {
		c.io.Println("Blocking issues:")
		for _, issue := range record.BlockingIssues {
			c.io.Printf("  - %s\n", issue)
		}
	} else {
		c.io.Println("Blocking issues: none")
	}
}

func PrintUsage() {
	fmt.Println("CrewDeck Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  crewdeck [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version        Show version information")
	fmt.Println("  --server URL     Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH        Path to local database (default: crewdeck-client.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  login                          Login to server")
	fmt.Println("  logout                         Delete the local session")
	fmt.Println("  status                         Show authentication status")
	fmt.Println("  show <project>                 Show the project readiness record")
	fmt.Println("  set <project> <feature> on|off Toggle a feature flag")
	fmt.Println("  invalidate <project> [reason]  Force a server-side recompute")
	fmt.Println("  revert <project>               Discard the local snapshot and refetch")
	fmt.Println("  watch <project>                Follow readiness changes live")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  crewdeck login")
	fmt.Println("  crewdeck show proj-42")
	fmt.Println("  crewdeck set proj-42 scheduling on")
	fmt.Println("  crewdeck invalidate proj-42 crew_changed")
	fmt.Println("  crewdeck --server https://example.com watch proj-42")
}
