package neo4jstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/MHS-BookingService/internal/infra/graph"
)

// Transactor runs functions inside graph transactions.
type Transactor interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// TransactionManager classifies begin and commit failures of graph transactions
// the same way repository errors are classified.
type TransactionManager struct {
	tx Transactor
}

// NewTransactionManager wraps a graph transactor.
func NewTransactionManager(tx Transactor) *TransactionManager {
	return &TransactionManager{tx: tx}
}

func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return classifyTx(m.tx.Do(ctx, fn))
}

func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return classifyTx(m.tx.DoSerializable(ctx, fn))
}

func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return classifyTx(m.tx.DoReadOnly(ctx, fn))
}

// classifyTx only touches errors raised by the transaction itself; errors returned by
// fn pass through unchanged.
func classifyTx(err error) error {
	if err == nil || !(errors.Is(err, graph.ErrBeginTx) || errors.Is(err, graph.ErrCommitTx)) {
		return err
	}
	if class := classify(err); class != nil && !errors.Is(err, class) {
		return fmt.Errorf("%w: %w", class, err)
	}
	return err
}
