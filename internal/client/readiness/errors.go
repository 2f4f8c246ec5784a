package readiness

import (
	"errors"
	"fmt"
)

// ErrStoreClosed indicates that an operation was attempted on a closed store
var ErrStoreClosed = errors.New("readiness store is closed")

// ErrSyncInFlight indicates that an explicit operation could not claim the
// record because a background sync pass currently owns it
var ErrSyncInFlight = errors.New("sync already in flight for this record")

// NetworkError wraps a fetch or invalidate transport failure. It marks the
// error as retryable: the store keeps rescheduling sync attempts with
// backoff until one succeeds or the caller reverts.
type NetworkError struct {
	Err error
	Op  string // "fetch" or "invalidate"
}

// Error implements the error interface
func (e *NetworkError) Error() string {
	return fmt.Sprintf("readiness %s failed: %v", e.Op, e.Err)
}

// Unwrap returns the underlying transport error
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// SubscriptionError wraps a push-transport failure. Unlike NetworkError it
// never triggers retries: reconnection is the transport's concern and a
// manual Refresh is always a safe recovery path.
type SubscriptionError struct {
	Err error
}

// Error implements the error interface
func (e *SubscriptionError) Error() string {
	return fmt.Sprintf("change subscription failed: %v", e.Err)
}

// Unwrap returns the underlying transport error
func (e *SubscriptionError) Unwrap() error {
	return e.Err
}
