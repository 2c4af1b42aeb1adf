package bolt

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// Statement records one Execute call against a FakeClient, for assertions
// in destination/migrate tests.
type Statement struct {
	Text   string
	Params *value.Map
}

// FakeClient is an in-memory Client used by destination and migrate tests.
// Callers queue up the rows each Execute should yield via Script; anything
// left unscripted yields zero rows.
type FakeClient struct {
	Statements []Statement

	// Script maps a statement text to the rows it should yield, consumed
	// in FIFO order across repeated Executes of the same text.
	Script map[string][][][]value.Value

	// SessionID stands in for the session token a real Bolt handshake
	// would negotiate; tests never inspect it, it just gives the fake a
	// connection identity distinct from any other FakeClient in the same
	// test, the way a real driver session would have one.
	SessionID string

	rows   [][]value.Value
	cursor bool
	closed bool
}

func NewFakeClient() *FakeClient {
	return &FakeClient{
		Script:    make(map[string][][][]value.Value),
		SessionID: uuid.NewString(),
	}
}

// QueueRows arranges for the next Execute of statement to yield rows.
func (f *FakeClient) QueueRows(statement string, rows [][]value.Value) {
	f.Script[statement] = append(f.Script[statement], rows)
}

func (f *FakeClient) Execute(ctx context.Context, statement string, params *value.Map) error {
	if f.cursor {
		return ErrCursorActive
	}
	f.Statements = append(f.Statements, Statement{Text: statement, Params: params})
	queue := f.Script[statement]
	if len(queue) > 0 {
		f.rows = queue[0]
		f.Script[statement] = queue[1:]
	} else {
		f.rows = nil
	}
	f.cursor = true
	return nil
}

func (f *FakeClient) FetchOne(ctx context.Context) ([]value.Value, error) {
	if !f.cursor {
		return nil, ErrNoCursor
	}
	if len(f.rows) == 0 {
		f.cursor = false
		return nil, io.EOF
	}
	row := f.rows[0]
	f.rows = f.rows[1:]
	return row, nil
}

func (f *FakeClient) Close(ctx context.Context) error {
	f.closed = true
	return nil
}
