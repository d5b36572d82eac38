package offline

import (
	"errors"
	"fmt"
)

// Sentinel errors for the offline store. Callers distinguish recoverable
// cache-miss outcomes from fatal durability failures with errors.Is.
var (
	// ErrStorage marks a fatal storage failure (disk I/O, corruption,
	// schema mismatch). Never returned for a missing row.
	ErrStorage = errors.New("storage failure")

	// ErrEncoding marks a payload that cannot be serialized. The write is
	// aborted before any row is touched.
	ErrEncoding = errors.New("payload encoding failed")

	// ErrSyncInProgress is returned when a sync lease is requested while
	// another sync holds it.
	ErrSyncInProgress = errors.New("sync already in progress")
)

// storageErr wraps a driver error so both ErrStorage and the underlying
// error remain matchable.
func storageErr(op string, err error) error {
	return fmt.Errorf("offline: %s: %w: %w", op, ErrStorage, err)
}

// encodingErr wraps a serialization error.
func encodingErr(op string, err error) error {
	return fmt.Errorf("offline: %s: %w: %w", op, ErrEncoding, err)
}
