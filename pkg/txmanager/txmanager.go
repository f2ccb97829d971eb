// Package txmanager выполняет функции в транзакции PostgreSQL, передавая её
// репозиториям через контекст (см. dbmetrics.WithTx).
package txmanager

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/m04kA/MHS-BookingService/pkg/dbmetrics"
)

var (
	// ErrSerializationFailure транзакция не может быть сериализована (конкурентное изменение)
	ErrSerializationFailure = errors.New("txmanager: serialization failure")

	// ErrBeginTx ошибка начала транзакции
	ErrBeginTx = errors.New("txmanager: failed to begin transaction")

	// ErrCommitTx ошибка фиксации транзакции
	ErrCommitTx = errors.New("txmanager: failed to commit transaction")
)

// коды PostgreSQL, при которых транзакцию можно безопасно повторить на уровне клиента
const (
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// TxBeginner источник транзакций
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (dbmetrics.TxExecutor, error)
}

// TransactionManager менеджер транзакций
type TransactionManager struct {
	db TxBeginner
}

// NewTransactionManager создает менеджер транзакций
func NewTransactionManager(db TxBeginner) *TransactionManager {
	return &TransactionManager{db: db}
}

// Do выполняет fn в транзакции с уровнем изоляции по умолчанию (read committed)
func (m *TransactionManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.do(ctx, &sql.TxOptions{}, fn)
}

// DoSerializable выполняет fn в транзакции с уровнем изоляции serializable
func (m *TransactionManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.do(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

// DoReadOnly выполняет fn в read-only транзакции
func (m *TransactionManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return m.do(ctx, &sql.TxOptions{ReadOnly: true}, fn)
}

func (m *TransactionManager) do(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) (err error) {
	// Вложенный вызов участвует во внешней транзакции
	if dbmetrics.IsInTransaction(ctx) {
		return fn(ctx)
	}

	tx, err := m.db.BeginTx(ctx, opts)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBeginTx, err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(dbmetrics.WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return classify(err)
	}

	if err := tx.Commit(); err != nil {
		return classify(fmt.Errorf("%w: %w", ErrCommitTx, err))
	}

	return nil
}

// classify помечает ошибки сериализации, сохраняя исходную цепочку
func classify(err error) error {
	if IsSerializationFailure(err) && !errors.Is(err, ErrSerializationFailure) {
		return fmt.Errorf("%w: %w", ErrSerializationFailure, err)
	}
	return err
}

// IsSerializationFailure проверяет, что ошибка вызвана конфликтом сериализации или дедлоком
func IsSerializationFailure(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqSerializationFailure || pqErr.Code == pqDeadlockDetected
	}
	return false
}
