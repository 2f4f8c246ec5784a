package readiness

import (
	"log/slog"

	"github.com/crewdeck/crewdeck/internal/models"
)

// Resolver merges a pending optimistic overlay with a freshly fetched
// authoritative record. Implementations must be pure with respect to
// store state: same inputs, same output.
type Resolver interface {
	Resolve(server *models.Record, overlay *models.Overlay) *models.Record
}

// serverWins is the default strategy: fields the server derives (status,
// blocking issues, calculated-at) always take the server value; a
// client-owned flag keeps its overlay value only while the write is still
// genuinely pending. A server value that matches it, or a server
// recompute that postdates it, supersedes the overlay entry.
type serverWins struct {
	logger *slog.Logger
}

// NewServerWinsResolver creates the default conflict resolution strategy
func NewServerWinsResolver(logger *slog.Logger) Resolver {
	return &serverWins{logger: logger}
}

// Resolve merges overlay flags over the server record. Fields absent from
// both inputs are never touched; a stray overlay entry for an unknown flag
// is dropped with a warning rather than failing the whole merge.
func (r *serverWins) Resolve(server *models.Record, overlay *models.Overlay) *models.Record {
	out := server.Clone()

	for name, write := range overlay.Flags {
		if !models.KnownFeatures[name] {
			r.logger.Warn("dropping unknown feature flag from overlay", "flag", name)
			continue
		}

		serverValue, ok := out.Features[name]
		if ok && serverValue == write.Value {
			// Server already carries the optimistic value
			continue
		}
		if server.CalculatedAt.After(write.IssuedAt) {
			// Server recomputed after the optimistic write: server wins
			continue
		}

		if out.Features == nil {
			out.Features = make(map[string]bool)
		}
		out.Features[name] = write.Value
	}

	return out
}
