package readiness

import (
	"context"
	"time"
)

// scheduleSyncLocked (re)arms the debounce timer. Each call restarts the
// window, so a burst of mutations collapses into one sync attempt.
// Caller must hold s.mu.
func (s *Store) scheduleSyncLocked(delay time.Duration) {
	if s.closed {
		return
	}
	if s.syncTimer != nil {
		s.syncTimer.Stop()
	}
	s.syncTimer = time.AfterFunc(delay, s.onSyncTimer)
}

// onSyncTimer fires when the debounce window elapses with no further
// mutations.
func (s *Store) onSyncTimer() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.syncTimer = nil
	if len(s.pending) == 0 && !s.syncQueued {
		// An invalidate or revert emptied the queue while the timer
		// was armed; nothing to reconcile
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	_ = s.syncOnce(s.baseCtx)
}

// syncOnce runs a single fetch-and-merge pass. If a pass is already in
// flight the call is skipped and the in-flight pass re-schedules on
// completion, so no update is lost but fetches never overlap.
// Callers must not hold s.mu.
func (s *Store) syncOnce(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if s.syncing {
		s.syncQueued = true
		s.mu.Unlock()
		return nil
	}
	s.syncing = true
	s.loading = true
	sending := s.pending
	s.pending = nil
	// This pass claims any queued trigger; one set mid-flight stays set
	// so the follow-up timer's guard sees it
	s.syncQueued = false
	s.mu.Unlock()

	start := time.Now()
	record, err := s.fetcher.FetchRecord(ctx, s.projectID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncing = false
	s.loading = false

	if s.closed {
		// Response landed after teardown; discard it
		return ErrStoreClosed
	}

	if err != nil {
		// The failed batch goes back to the front of the queue so it is
		// not silently dropped; updates applied during the fetch follow
		s.pending = append(sending, s.pending...)
		// Even with nothing queued the retry must refetch, so the re-armed
		// timer must not be swallowed by the empty-queue guard
		s.syncQueued = true

		nerr := &NetworkError{Op: "fetch", Err: err}
		s.lastErr = nerr
		s.metrics.RecordSyncFailure()

		delay := s.backoff.Delay(s.attempt)
		s.attempt++
		s.logger.Warn("sync failed, retrying",
			"project_id", s.projectID,
			"attempt", s.attempt,
			"delay", delay,
			"error", err)
		s.scheduleSyncLocked(delay)
		return nerr
	}

	merged := s.resolver.Resolve(record, s.overlay)
	s.metrics.RecordConflictResolution()
	s.overlay.Prune(record)
	s.canonical = merged
	s.lastErr = nil
	s.attempt = 0
	s.metrics.RecordSyncSuccess(time.Since(start))

	s.persistLocked(ctx)

	s.logger.Debug("sync completed",
		"project_id", s.projectID,
		"status", merged.Status,
		"latency", time.Since(start))

	// Updates that arrived mid-flight, or a skipped trigger, ask for
	// another pass
	if len(s.pending) > 0 || s.syncQueued {
		s.scheduleSyncLocked(s.cfg.DebounceInterval)
	}

	return nil
}

// persistLocked writes the canonical record to the local cache. Cache
// failures are logged, never propagated: durability is best-effort and
// the in-memory state stays authoritative for this session.
// Caller must hold s.mu.
func (s *Store) persistLocked(ctx context.Context) {
	if s.cache == nil || s.canonical == nil {
		return
	}
	if err := s.cache.SaveRecord(ctx, s.canonical); err != nil {
		s.logger.Warn("failed to cache record",
			"project_id", s.projectID,
			"error", err)
	}
}

// Refresh bypasses debouncing and immediately fetches the authoritative
// record, merging it with any pending overlay. On success the error is
// cleared and the retry counter resets. If a sync pass is already in
// flight the refresh folds into it.
func (s *Store) Refresh(ctx context.Context) error {
	return s.syncOnce(ctx)
}

// Invalidate asks the server to recompute the record and, on success,
// replaces canonical state with the returned record unconditionally and
// drops the overlay and the pending queue: the server is known
// authoritative at that point, no client state survives.
func (s *Store) Invalidate(ctx context.Context, reason string) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}
	if s.syncing {
		s.mu.Unlock()
		return ErrSyncInFlight
	}
	s.syncing = true
	s.loading = true
	s.mu.Unlock()

	record, err := s.fetcher.InvalidateRecord(ctx, s.projectID, reason)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.syncing = false
	s.loading = false

	if s.closed {
		return ErrStoreClosed
	}

	if err != nil {
		nerr := &NetworkError{Op: "invalidate", Err: err}
		s.lastErr = nerr
		s.metrics.RecordSyncFailure()

		// The recompute may or may not have happened server-side; fall
		// back to the ordinary fetch-and-merge retry path to find out
		delay := s.backoff.Delay(s.attempt)
		s.attempt++
		s.logger.Warn("invalidate failed, scheduling refetch",
			"project_id", s.projectID,
			"reason", reason,
			"delay", delay,
			"error", err)
		s.syncQueued = true
		s.scheduleSyncLocked(delay)
		return nerr
	}

	s.canonical = record.Clone()
	s.overlay.Clear()
	s.pending = nil
	s.lastErr = nil
	s.attempt = 0

	s.persistLocked(ctx)

	s.logger.Info("record invalidated",
		"project_id", s.projectID,
		"reason", reason,
		"status", record.Status)

	return nil
}

// RevertOptimisticUpdates discards the overlay and the pending queue
// without waiting out remaining retries, then refreshes from the server.
// An in-flight response will land against an empty overlay and degenerate
// to a plain refresh.
func (s *Store) RevertOptimisticUpdates(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrStoreClosed
	}

	s.overlay.Clear()
	s.pending = nil
	s.attempt = 0
	s.lastErr = nil
	s.metrics.RecordRevert()

	s.logger.Info("optimistic updates reverted", "project_id", s.projectID)
	s.mu.Unlock()

	return s.Refresh(ctx)
}
