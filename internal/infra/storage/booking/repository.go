package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
	"github.com/m04kA/MHS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/MHS-BookingService/pkg/psqlbuilder"
)

// Repository репозиторий связей лид-слот.
// slot_id первичный ключ таблицы bookings: у слота не больше одной брони.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает связь лида со слотом.
// Если в контексте передана активная транзакция, использует её: бронирование
// должно создаваться в той же транзакции, что и переход слота в booked.
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("bookings").
		Columns("slot_id", "lead_id").
		Values(booking.SlotID, booking.LeadID).
		Suffix("RETURNING created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&booking.CreatedAt); err != nil {
		return nil, storage.Wrap(ErrExecQuery, "Create - execute insert", err)
	}

	return booking, nil
}

// GetBySlot получает бронирование слота
func (r *Repository) GetBySlot(ctx context.Context, slotID string) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("slot_id", "lead_id", "created_at").
		From("bookings").
		Where(squirrel.Eq{"slot_id": slotID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySlot - build select query: %v", ErrBuildQuery, err)
	}

	var booking domain.Booking
	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.SlotID, &booking.LeadID, &booking.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrBookingNotFound
	}
	if err != nil {
		return nil, storage.Wrap(ErrScanRow, "GetBySlot - scan booking", err)
	}

	return &booking, nil
}

// Delete удаляет связь лида со слотом
func (r *Repository) Delete(ctx context.Context, slotID string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("bookings").
		Where(squirrel.Eq{"slot_id": slotID}).
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
		return storage.ErrBookingNotFound
	}

	return nil
}

// ListByLead возвращает бронирования лида, отсортированные по времени создания
func (r *Repository) ListByLead(ctx context.Context, leadID string) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("slot_id", "lead_id", "created_at").
		From("bookings").
		Where(squirrel.Eq{"lead_id": leadID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListByLead - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Wrap(ErrExecQuery, "ListByLead - execute query", err)
	}
	defer rows.Close()

	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		var booking domain.Booking
		if err := rows.Scan(&booking.SlotID, &booking.LeadID, &booking.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListByLead - scan booking: %v", ErrScanRow, err)
		}
		bookings = append(bookings, &booking)
	}

	if err := rows.Err(); err != nil {
		return nil, storage.Wrap(ErrScanRow, "ListByLead - rows iteration", err)
	}

	return bookings, nil
}
