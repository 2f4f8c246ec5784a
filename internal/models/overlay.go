package models

import "time"

// FlagWrite is one pending optimistic write to a feature flag.
type FlagWrite struct {
	IssuedAt time.Time `json:"issued_at"`
	Value    bool      `json:"value"`
}

// Overlay is the running union of all optimistic updates not yet confirmed
// by a successful sync, flattened last-write-wins per flag. It is applied
// over the canonical record for display and fed to the conflict resolver
// during reconciliation.
type Overlay struct {
	Flags map[string]FlagWrite `json:"flags"`
}

// NewOverlay creates an empty overlay
func NewOverlay() *Overlay {
	return &Overlay{Flags: make(map[string]FlagWrite)}
}

// Empty reports whether no optimistic writes are pending.
func (o *Overlay) Empty() bool {
	return len(o.Flags) == 0
}

// Apply folds a pending update into the overlay. Later writes to the same
// flag replace earlier ones (last-write-wins in arrival order).
func (o *Overlay) Apply(update *Update) {
	for name, enabled := range update.Features {
		o.Flags[name] = FlagWrite{Value: enabled, IssuedAt: update.IssuedAt}
	}
}

// ApplyTo returns a copy of the record with all pending overlay writes on
// top of it. Overlay fields win unconditionally: this is the optimistic
// view shown to readers before the server confirms anything.
func (o *Overlay) ApplyTo(record *Record) *Record {
	out := record.Clone()
	if out == nil {
		return nil
	}

	if len(o.Flags) > 0 && out.Features == nil {
		out.Features = make(map[string]bool, len(o.Flags))
	}
	for name, write := range o.Flags {
		out.Features[name] = write.Value
	}

	return out
}

// Prune drops overlay entries superseded by a freshly fetched server
// record: entries whose value the server already carries, and entries
// whose write predates the server's recompute. What remains is still
// genuinely pending.
func (o *Overlay) Prune(server *Record) {
	for name, write := range o.Flags {
		if !KnownFeatures[name] {
			delete(o.Flags, name)
			continue
		}
		if value, ok := server.Features[name]; ok && value == write.Value {
			delete(o.Flags, name)
			continue
		}
		if server.CalculatedAt.After(write.IssuedAt) {
			delete(o.Flags, name)
		}
	}
}

// Clear discards all pending writes.
func (o *Overlay) Clear() {
	o.Flags = make(map[string]FlagWrite)
}
