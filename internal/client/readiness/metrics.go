package readiness

import (
	"sync"
	"time"
)

// Metrics counts engine activity. Counters are monotonic and cannot be
// reset through ordinary operations; they never influence behavior.
type Metrics struct {
	mu sync.Mutex

	totalUpdates        uint64
	syncSuccesses       uint64
	syncFailures        uint64
	conflictResolutions uint64
	reverts             uint64
	realtimeSyncs       uint64
	totalSyncLatency    time.Duration
}

// NewMetrics creates a zeroed metrics collector
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RecordUpdate counts one applied optimistic update
func (m *Metrics) RecordUpdate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.totalUpdates++
}

// RecordSyncSuccess counts one successful sync together with its latency
func (m *Metrics) RecordSyncSuccess(latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncSuccesses++
	m.totalSyncLatency += latency
}

// RecordSyncFailure counts one failed sync attempt
func (m *Metrics) RecordSyncFailure() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.syncFailures++
}

// RecordConflictResolution counts one merge pass. The pass itself is the
// unit of work, whether or not the inputs actually diverged.
func (m *Metrics) RecordConflictResolution() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.conflictResolutions++
}

// RecordRevert counts one explicit revert of pending updates
func (m *Metrics) RecordRevert() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reverts++
}

// RecordRealtimeSync counts one reconciliation triggered by a batched
// change-notification burst
func (m *Metrics) RecordRealtimeSync() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.realtimeSyncs++
}

// Snapshot is a point-in-time copy of the engine counters
type Snapshot struct {
	TotalUpdates        uint64
	SyncSuccesses       uint64
	SyncFailures        uint64
	ConflictResolutions uint64
	Reverts             uint64
	RealtimeSyncs       uint64
	AvgSyncLatency      time.Duration
}

// Snapshot returns a consistent copy of all counters
func (m *Metrics) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := Snapshot{
		TotalUpdates:        m.totalUpdates,
		SyncSuccesses:       m.syncSuccesses,
		SyncFailures:        m.syncFailures,
		ConflictResolutions: m.conflictResolutions,
		Reverts:             m.reverts,
		RealtimeSyncs:       m.realtimeSyncs,
	}
	if m.syncSuccesses > 0 {
		snap.AvgSyncLatency = m.totalSyncLatency / time.Duration(m.syncSuccesses)
	}

	return snap
}
