package bolt

import (
	"context"
	"fmt"
	"io"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/memgraph-tools/mgmigrate/internal/value"
)

// Params bundles the connection parameters for a Bolt endpoint, mirroring
// the CLI's source/destination flag groups.
type Params struct {
	Host     string
	Port     uint16
	Username string
	Password string
	UseSSL   bool
}

// neo4jClient is a thin wrapper over the neo4j-go-driver session/result
// pair. Everything beyond opening the driver and streaming its results is
// out of scope: the orchestrator only ever sees the Client interface.
type neo4jClient struct {
	driver  neo4j.DriverWithContext
	session neo4j.SessionWithContext
	cursor  neo4j.ResultWithContext
}

// Connect opens a driver connection and verifies connectivity.
func Connect(ctx context.Context, p Params) (Client, error) {
	uri := fmt.Sprintf("%s://%s:%d", schemeFor(p.UseSSL), p.Host, p.Port)
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(p.Username, p.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("bolt: create driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		driver.Close(ctx)
		return nil, fmt.Errorf("bolt: connect to %s: %w", uri, err)
	}
	session := driver.NewSession(ctx, neo4j.SessionConfig{})
	return &neo4jClient{driver: driver, session: session}, nil
}

func schemeFor(useSSL bool) string {
	if useSSL {
		return "bolt+s"
	}
	return "bolt"
}

func (c *neo4jClient) Execute(ctx context.Context, statement string, params *value.Map) error {
	if c.cursor != nil {
		return ErrCursorActive
	}
	result, err := c.session.Run(ctx, statement, toCypherParams(params))
	if err != nil {
		return fmt.Errorf("bolt: execute %q: %w", statement, err)
	}
	c.cursor = result
	return nil
}

func (c *neo4jClient) FetchOne(ctx context.Context) ([]value.Value, error) {
	if c.cursor == nil {
		return nil, ErrNoCursor
	}
	if !c.cursor.Next(ctx) {
		if err := c.cursor.Err(); err != nil {
			c.cursor = nil
			return nil, fmt.Errorf("bolt: fetch: %w", err)
		}
		c.cursor = nil
		return nil, io.EOF
	}
	record := c.cursor.Record()
	row := make([]value.Value, len(record.Values))
	for i, raw := range record.Values {
		v, err := fromCypherValue(raw)
		if err != nil {
			return nil, fmt.Errorf("bolt: decode column %q: %w", record.Keys[i], err)
		}
		row[i] = v
	}
	return row, nil
}

func (c *neo4jClient) Close(ctx context.Context) error {
	if c.session != nil {
		_ = c.session.Close(ctx)
		c.session = nil
	}
	if c.driver != nil {
		err := c.driver.Close(ctx)
		c.driver = nil
		return err
	}
	return nil
}
