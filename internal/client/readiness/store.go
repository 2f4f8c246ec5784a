package readiness

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/crewdeck/crewdeck/internal/client/storage"
	"github.com/crewdeck/crewdeck/internal/models"
	"github.com/crewdeck/crewdeck/internal/validation"
	"github.com/crewdeck/crewdeck/pkg/api"
)

//go:generate moq -out fetcher_mock.go . Fetcher

// Fetcher reads and recomputes authoritative readiness records.
type Fetcher interface {
	// FetchRecord is an idempotent read of the authoritative record
	FetchRecord(ctx context.Context, projectID string) (*models.Record, error)

	// InvalidateRecord asks the server to recompute the record and
	// returns the recomputed result
	InvalidateRecord(ctx context.Context, projectID, reason string) (*models.Record, error)
}

//go:generate moq -out subscription_mock.go . Subscription

// Subscription is an active change-notification stream for one record.
type Subscription interface {
	// Close releases the stream. Must be safe to call more than once.
	Close() error
}

//go:generate moq -out subscriber_mock.go . Subscriber

// Subscriber opens change-notification streams scoped to one record.
// onEvent fires once per external mutation of the record.
type Subscriber interface {
	Subscribe(ctx context.Context, projectID string, onEvent func(api.ChangeEvent)) (Subscription, error)
}

// Default engine timing
const (
	DefaultDebounceInterval = time.Second
	DefaultBatchWindow      = 500 * time.Millisecond
	DefaultRetryBaseDelay   = time.Second
	DefaultRetryMaxDelay    = 30 * time.Second
	DefaultJitterFraction   = 0.1
)

// Config controls engine timing and pluggable strategies.
// Zero values fall back to the defaults above.
type Config struct {
	// DebounceInterval is how long mutations must quiet down before a
	// sync attempt runs
	DebounceInterval time.Duration

	// BatchWindow is how long external change events must quiet down
	// before one reconciliation runs
	BatchWindow time.Duration

	// RetryBaseDelay and RetryMaxDelay bound the backoff schedule
	RetryBaseDelay time.Duration
	RetryMaxDelay  time.Duration

	// JitterFraction bounds retry jitter as a fraction of the delay
	JitterFraction float64

	// Resolver overrides the default server-wins merge strategy
	Resolver Resolver

	// Rules are extra domain checks for the update validator
	Rules []validation.Rule
}

func (c *Config) applyDefaults() {
	if c.DebounceInterval <= 0 {
		c.DebounceInterval = DefaultDebounceInterval
	}
	if c.BatchWindow <= 0 {
		c.BatchWindow = DefaultBatchWindow
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if c.RetryMaxDelay <= 0 {
		c.RetryMaxDelay = DefaultRetryMaxDelay
	}
	if c.JitterFraction <= 0 {
		c.JitterFraction = DefaultJitterFraction
	}
}

// View is the externally observable state of a tracked record: the
// canonical record with any live optimistic overlay applied on top.
type View struct {
	Record  *models.Record
	Err     error
	Loading bool
}

// Store owns the synchronized state of exactly one readiness record.
// All mutation goes through its methods; timer handles and the in-flight
// flag live here as explicit fields so teardown can cancel pending work
// deterministically.
type Store struct {
	mu sync.Mutex

	projectID string
	canonical *models.Record
	overlay   *models.Overlay
	pending   []*models.Update

	loading bool
	lastErr error

	// Cooperative mutual exclusion for fetches: syncs, batched
	// reconciliations and invalidates never overlap for this record.
	syncing    bool
	syncQueued bool
	attempt    int

	syncTimer  *time.Timer
	batchTimer *time.Timer
	batchKinds map[string]struct{}
	closed     bool

	fetcher   Fetcher
	cache     storage.RecordCache
	validator *validation.UpdateValidator
	resolver  Resolver
	backoff   *Backoff
	metrics   *Metrics
	logger    *slog.Logger
	sub       Subscription
	cfg       Config

	// baseCtx scopes background fetches started by timers. In-flight
	// fetches are deliberately not cancelled by Close; a late response
	// is discarded against the closed flag instead.
	baseCtx context.Context
}

// NewStore creates a readiness store for one project and hydrates it from
// (in order of preference) the initial record, the local cache, or nothing
// (the first refresh fetches). A nil subscriber disables the push channel;
// a failing subscribe is recoverable and surfaced as a SubscriptionError.
func NewStore(
	ctx context.Context,
	projectID string,
	initial *models.Record,
	fetcher Fetcher,
	cache storage.RecordCache,
	subscriber Subscriber,
	logger *slog.Logger,
	cfg Config,
) (*Store, error) {
	cfg.applyDefaults()

	resolver := cfg.Resolver
	if resolver == nil {
		resolver = NewServerWinsResolver(logger)
	}

	s := &Store{
		projectID: projectID,
		overlay:   models.NewOverlay(),
		fetcher:   fetcher,
		cache:     cache,
		validator: validation.NewUpdateValidator(cfg.Rules...),
		resolver:  resolver,
		backoff:   NewBackoff(cfg.RetryBaseDelay, cfg.RetryMaxDelay, cfg.JitterFraction),
		metrics:   NewMetrics(),
		logger:    logger,
		cfg:       cfg,
		baseCtx:   ctx,
	}

	switch {
	case initial != nil:
		s.canonical = initial.Clone()
	case cache != nil:
		cached, err := cache.GetRecord(ctx, projectID)
		switch {
		case err == nil:
			s.canonical = cached
			logger.Debug("hydrated record from local cache", "project_id", projectID)
		case errors.Is(err, storage.ErrRecordNotCached):
			// First run for this record; the initial refresh will fetch
		default:
			return nil, err
		}
	}

	if subscriber != nil {
		sub, err := subscriber.Subscribe(ctx, projectID, s.handleChangeEvent)
		if err != nil {
			// Recoverable: the store still works, only push updates are
			// missing until the caller refreshes or resubscribes
			s.lastErr = &SubscriptionError{Err: err}
			logger.Warn("change subscription failed", "project_id", projectID, "error", err)
		} else {
			s.sub = sub
		}
	}

	return s, nil
}

// Get returns the current view: the canonical record merged with any live
// optimistic overlay (overlay fields win). Never blocks on the network.
func (s *Store) Get() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return View{
		Record:  s.viewLocked(),
		Loading: s.loading,
		Err:     s.lastErr,
	}
}

// viewLocked builds the merged read view. Caller must hold s.mu.
func (s *Store) viewLocked() *models.Record {
	if s.canonical == nil {
		if s.overlay.Empty() {
			return nil
		}
		// Updates were applied before the first fetch completed; show
		// them over an otherwise empty record
		return s.overlay.ApplyTo(&models.Record{ProjectID: s.projectID})
	}
	return s.overlay.ApplyTo(s.canonical)
}

// ApplyOptimisticUpdate validates the partial mutation and, on success,
// makes it visible to readers immediately, queues it, and schedules a
// debounced background sync. On validation failure nothing is mutated and
// the error is both returned and surfaced via Get().
func (s *Store) ApplyOptimisticUpdate(update *models.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	update = update.Clone()
	if update.IssuedAt.IsZero() {
		update.IssuedAt = time.Now()
	}

	if err := s.validator.Validate(s.viewLocked(), update); err != nil {
		s.lastErr = err
		s.logger.Warn("optimistic update rejected",
			"project_id", s.projectID,
			"error", err)
		return err
	}

	s.overlay.Apply(update)
	s.pending = append(s.pending, update)
	s.metrics.RecordUpdate()

	s.logger.Debug("optimistic update applied",
		"project_id", s.projectID,
		"pending", len(s.pending))

	s.scheduleSyncLocked(s.cfg.DebounceInterval)

	return nil
}

// CanAccessFeature reports whether a feature flag is enabled in the
// current view. A pure derivation over Get, not independent state.
func (s *Store) CanAccessFeature(name string) bool {
	record := s.Get().Record
	if record == nil {
		return false
	}
	return record.Features[name]
}

// GetBlockingIssues returns the blocking issue codes of the current view
func (s *Store) GetBlockingIssues() []string {
	record := s.Get().Record
	if record == nil {
		return nil
	}
	return record.BlockingIssues
}

// Metrics returns a snapshot of the engine counters
func (s *Store) Metrics() Snapshot {
	return s.metrics.Snapshot()
}

// Close cancels pending timers and releases the push subscription.
// Timer callbacks and in-flight responses landing after Close are
// discarded. Safe to call more than once.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true

	if s.syncTimer != nil {
		s.syncTimer.Stop()
		s.syncTimer = nil
	}
	if s.batchTimer != nil {
		s.batchTimer.Stop()
		s.batchTimer = nil
	}

	sub := s.sub
	s.sub = nil
	s.mu.Unlock()

	if sub != nil {
		return sub.Close()
	}
	return nil
}
