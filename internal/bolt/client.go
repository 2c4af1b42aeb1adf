// Package bolt defines the thin client interface the destination writer
// and the graph source adapter execute queries through. Connection setup
// itself is a thin external collaborator (see Connect in
// neo4j_client.go) — the contract that matters to the rest of the system
// is Execute/FetchOne/Close below.
package bolt

import (
	"context"
	"errors"

	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// ErrCursorActive is returned by Execute when a previous statement's
// results have not yet been fully drained. At most one cursor may be
// in flight per Client at a time.
var ErrCursorActive = errors.New("bolt: a cursor is already active on this client")

// ErrNoCursor is returned by FetchOne when Execute has not been called,
// or the previous cursor already reached its end.
var ErrNoCursor = errors.New("bolt: no active cursor to fetch from")

// Client is a synchronous, single-cursor connection to a Bolt-speaking,
// openCypher-like database. Implementations scope exactly one
// underlying driver connection for their lifetime.
type Client interface {
	// Execute runs statement with the given bound parameters (nil for
	// none) and opens a cursor over its results. It fails if another
	// cursor is already active.
	Execute(ctx context.Context, statement string, params *value.Map) error

	// FetchOne returns the next row as an ordered list of Values. It
	// returns (nil, io.EOF) once the cursor is exhausted, at which point
	// the cursor is implicitly closed and Execute may be called again.
	FetchOne(ctx context.Context) ([]value.Value, error)

	// Close releases the underlying connection. It is safe to call more
	// than once.
	Close(ctx context.Context) error
}
