// Package graph is a thin client over the Neo4j Bolt driver used by the graph-backed store.
package graph

import (
	"context"
	"errors"
)

// Client defines the minimal contract required by the repositories to interact
// with the underlying graph database. Queries issued with a context produced by
// a transaction (see Neo4jClient.Do) run inside that transaction.
type Client interface {
	ExecuteWrite(ctx context.Context, cypher string, params map[string]any) (Result, error)
	ExecuteRead(ctx context.Context, cypher string, params map[string]any) (Result, error)
	VerifyConnectivity(ctx context.Context) error
	Close(ctx context.Context) error
}

// Result is a simplified representation of a query response.
type Result struct {
	Records []Record
}

// Record groups key-value pairs returned from the graph engine.
type Record map[string]any

// First returns the first record or nil when the result is empty.
func (r Result) First() Record {
	if len(r.Records) == 0 {
		return nil
	}
	return r.Records[0]
}

// Options configures a graph client implementation.
type Options struct {
	URI            string
	Database       string
	Username       string
	Password       string
	MaxConnections int
}

var (
	// ErrMissingURI indicates the graph URI is not provided.
	ErrMissingURI = errors.New("graph URI is required")

	// ErrBeginTx the transaction could not be started.
	ErrBeginTx = errors.New("graph: failed to begin transaction")

	// ErrCommitTx the transaction could not be committed.
	ErrCommitTx = errors.New("graph: failed to commit transaction")
)
