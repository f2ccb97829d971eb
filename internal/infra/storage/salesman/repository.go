package salesman

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
	"github.com/m04kA/MHS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/MHS-BookingService/pkg/psqlbuilder"
)

var salesmanColumns = []string{
	"id",
	"name",
	"email",
	"phone",
	"priority",
	"status",
	"created_at",
	"updated_at",
}

// Repository репозиторий менеджеров
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория менеджеров
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает менеджера. Email уникален (storage.ErrDuplicate).
func (r *Repository) Create(ctx context.Context, salesman *domain.Salesman) (*domain.Salesman, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if salesman.ID == "" {
		salesman.ID = uuid.NewString()
	}

	query, args, err := psqlbuilder.Insert("salesmen").
		Columns("id", "name", "email", "phone", "priority", "status").
		Values(salesman.ID, salesman.Name, salesman.Email, salesman.Phone, salesman.Priority, salesman.Status).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&salesman.CreatedAt, &salesman.UpdatedAt)
	if err != nil {
		return nil, storage.Wrap(ErrExecQuery, "Create - execute insert", err)
	}

	return salesman, nil
}

// GetByID получает менеджера по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Salesman, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(salesmanColumns...).
		From("salesmen").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	salesman, err := scanSalesman(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrSalesmanNotFound
	}
	if err != nil {
		return nil, storage.Wrap(ErrScanRow, "GetByID - scan salesman", err)
	}

	return salesman, nil
}

// List возвращает менеджеров по приоритету (опционально по статусу)
func (r *Repository) List(ctx context.Context, status *domain.SalesmanStatus) ([]*domain.Salesman, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(salesmanColumns...).
		From("salesmen").
		OrderBy("priority ASC", "name ASC", "id ASC")

	if status != nil {
		builder = builder.Where(squirrel.Eq{"status": *status})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Wrap(ErrExecQuery, "List - execute query", err)
	}
	defer rows.Close()

	salesmen := make([]*domain.Salesman, 0)
	for rows.Next() {
		salesman, err := scanSalesman(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan salesman: %v", ErrScanRow, err)
		}
		salesmen = append(salesmen, salesman)
	}

	if err := rows.Err(); err != nil {
		return nil, storage.Wrap(ErrScanRow, "List - rows iteration", err)
	}

	return salesmen, nil
}

// ListActive возвращает активных менеджеров, первым идет менеджер с наименьшим приоритетом
func (r *Repository) ListActive(ctx context.Context) ([]*domain.Salesman, error) {
	status := domain.SalesmanActive
	return r.List(ctx, &status)
}

// Update обновляет данные менеджера
func (r *Repository) Update(ctx context.Context, salesman *domain.Salesman) (*domain.Salesman, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("salesmen").
		Set("name", salesman.Name).
		Set("email", salesman.Email).
		Set("phone", salesman.Phone).
		Set("priority", salesman.Priority).
		Set("status", salesman.Status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": salesman.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Update - build update query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&salesman.CreatedAt, &salesman.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrSalesmanNotFound
	}
	if err != nil {
		return nil, storage.Wrap(ErrExecQuery, "Update - execute update", err)
	}

	return salesman, nil
}

// Delete удаляет менеджера. Слоты менеджера должны быть удалены или отвязаны заранее.
func (r *Repository) Delete(ctx context.Context, id string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("salesmen").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return storage.Wrap(ErrExecQuery, "Delete - execute delete", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storage.Wrap(ErrExecQuery, "Delete - rows affected", err)
	}
	if affected == 0 {
		return storage.ErrSalesmanNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSalesman(row rowScanner) (*domain.Salesman, error) {
	var salesman domain.Salesman
	err := row.Scan(
		&salesman.ID,
		&salesman.Name,
		&salesman.Email,
		&salesman.Phone,
		&salesman.Priority,
		&salesman.Status,
		&salesman.CreatedAt,
		&salesman.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &salesman, nil
}
