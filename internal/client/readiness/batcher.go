package readiness

import (
	"sort"
	"time"

	"github.com/crewdeck/crewdeck/pkg/api"
)

// handleChangeEvent consumes one push event about an external mutation of
// the tracked record. Events are coalesced: each one restarts the batching
// window and adds its kind to the per-window set, so a burst of writers
// costs one reconciliation, not one fetch per event.
func (s *Store) handleChangeEvent(event api.ChangeEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if event.ProjectID != "" && event.ProjectID != s.projectID {
		// The subscription is scoped per record; anything else is a
		// transport bug, not ours to act on
		s.logger.Warn("change event for foreign record ignored",
			"project_id", s.projectID,
			"event_project_id", event.ProjectID)
		return
	}

	if s.batchKinds == nil {
		s.batchKinds = make(map[string]struct{})
	}
	s.batchKinds[event.Kind] = struct{}{}

	if s.batchTimer != nil {
		s.batchTimer.Stop()
	}
	s.batchTimer = time.AfterFunc(s.cfg.BatchWindow, s.onBatchWindow)
}

// onBatchWindow fires when the batching window elapses with no further
// change events and triggers exactly one reconciliation.
func (s *Store) onBatchWindow() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.batchTimer = nil

	kinds := make([]string, 0, len(s.batchKinds))
	for kind := range s.batchKinds {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	s.batchKinds = nil

	s.metrics.RecordRealtimeSync()
	s.logger.Debug("change burst settled, reconciling",
		"project_id", s.projectID,
		"kinds", kinds)
	s.mu.Unlock()

	// syncOnce folds into an in-flight pass if one is running, so a
	// batched trigger never starts a second concurrent fetch
	_ = s.syncOnce(s.baseCtx)
}
