// Package id mints identifiers for backtest runs and trades.
//
// IDs are ULIDs: lexicographic order matches creation order, so journal
// rows and SQLite indexes stay chronological without an extra sort key.
package id

import "github.com/oklog/ulid/v2"

// New returns a fresh ULID string. Safe for concurrent use; ulid.Make
// draws from a locked monotonic crypto/rand source, so IDs minted within
// the same millisecond still sort in creation order.
func New() string {
	return ulid.Make().String()
}
