package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// NewNeo4jClient establishes a Bolt connection using the official Neo4j driver.
func NewNeo4jClient(ctx context.Context, opts Options) (*Neo4jClient, error) {
	if opts.URI == "" {
		return nil, ErrMissingURI
	}

	auth := neo4j.NoAuth()
	if opts.Username != "" {
		auth = neo4j.BasicAuth(opts.Username, opts.Password, "")
	}

	driver, err := neo4j.NewDriverWithContext(opts.URI, auth, func(c *neo4j.Config) {
		if opts.MaxConnections > 0 {
			c.MaxConnectionPoolSize = opts.MaxConnections
		}
	})
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verify graph connectivity: %w", err)
	}

	return &Neo4jClient{
		driver:   driver,
		database: opts.Database,
	}, nil
}

// Neo4jClient runs Cypher statements either in auto-commit sessions or inside the
// explicit transaction carried by the context.
type Neo4jClient struct {
	driver   neo4j.DriverWithContext
	database string
}

type runner interface {
	Run(ctx context.Context, cypher string, params map[string]any) (neo4j.ResultWithContext, error)
}

type txKey struct{}

func (c *Neo4jClient) ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return c.execute(ctx, neo4j.AccessModeWrite, cypher, params)
}

func (c *Neo4jClient) ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error) {
	return c.execute(ctx, neo4j.AccessModeRead, cypher, params)
}

func (c *Neo4jClient) execute(ctx context.Context, mode neo4j.AccessMode, cypher string, params map[string]any) (Result, error) {
	if tx, ok := ctx.Value(txKey{}).(runner); ok {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return Result{}, err
		}
		return consumeResult(ctx, res)
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   mode,
	})
	defer session.Close(ctx)

	res, err := session.Run(ctx, cypher, params)
	if err != nil {
		return Result{}, err
	}

	return consumeResult(ctx, res)
}

// Do runs fn inside a write transaction. Nested calls reuse the outer transaction.
// The transaction is committed when fn returns nil and rolled back otherwise.
// Failed transactions are not retried.
func (c *Neo4jClient) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return c.do(ctx, neo4j.AccessModeWrite, fn)
}

// DoSerializable is Do: Neo4j write locks taken by conditional updates serialize
// conflicting writers.
func (c *Neo4jClient) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return c.do(ctx, neo4j.AccessModeWrite, fn)
}

// DoReadOnly runs fn inside a read transaction.
func (c *Neo4jClient) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return c.do(ctx, neo4j.AccessModeRead, fn)
}

func (c *Neo4jClient) do(ctx context.Context, mode neo4j.AccessMode, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(runner); ok {
		return fn(ctx)
	}

	session := c.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: c.database,
		AccessMode:   mode,
	})
	defer session.Close(ctx)

	tx, err := session.BeginTransaction(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrCommitTx, err)
	}
	return nil
}

func (c *Neo4jClient) VerifyConnectivity(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

func (c *Neo4jClient) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

func consumeResult(ctx context.Context, res neo4j.ResultWithContext) (Result, error) {
	var records []Record
	for res.Next(ctx) {
		rec := res.Record()
		record := make(Record, len(rec.Keys))
		for _, key := range rec.Keys {
			value, _ := rec.Get(key)
			record[key] = value
		}
		records = append(records, record)
	}
	if err := res.Err(); err != nil {
		return Result{}, err
	}
	return Result{Records: records}, nil
}
