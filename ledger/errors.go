package ledger

import "errors"

// Sentinel errors returned by Store, matching the taxonomy internal/db/db.go
// establishes for the teacher's PostgreSQL layer, narrowed to what an
// embedded single-writer ledger actually needs.
var (
	// ErrEmptyLocation is returned when Open is called with an empty path.
	ErrEmptyLocation = errors.New("ledger: empty storage location")

	// ErrNotFound is returned when a requested block or record does not exist.
	ErrNotFound = errors.New("ledger: not found")

	// ErrIncompatibleVersion is returned when an existing store's schema
	// version does not match the version this build of the library writes.
	ErrIncompatibleVersion = errors.New("ledger: incompatible schema version")

	// ErrInvariant is returned when a stored chain fails re-verification:
	// a broken hash link, a Merkle root that no longer matches its
	// records, or a record whose signature no longer verifies.
	ErrInvariant = errors.New("ledger: chain invariant violated")

	// ErrStorage wraps unexpected failures from the underlying database.
	ErrStorage = errors.New("ledger: storage error")

	// ErrClosed is returned when operating on a closed Store.
	ErrClosed = errors.New("ledger: store is closed")
)
