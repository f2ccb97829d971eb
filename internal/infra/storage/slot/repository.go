package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
	"github.com/m04kA/MHS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/MHS-BookingService/pkg/psqlbuilder"
)

// slotColumns колонки слота вместе с лидом из связи bookings
var slotColumns = []string{
	"s.id",
	"s.salesman_id",
	"s.when_utc",
	"s.status",
	"s.created_at",
	"s.updated_at",
	"b.lead_id",
}

// Repository репозиторий слотов в PostgreSQL
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Upsert создает слот, если слота с тем же менеджером и временем еще нет.
// Возвращает created=false, когда слот уже существовал (уникальный индекс по
// COALESCE(salesman_id, нулевой uuid) и when_utc).
func (r *Repository) Upsert(ctx context.Context, slot *domain.Slot) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.Status == "" {
		slot.Status = domain.SlotAvailable
	}
	slot.WhenUTC = slot.WhenUTC.UTC()

	query, args, err := psqlbuilder.Insert("slots").
		Columns("id", "salesman_id", "when_utc", "status").
		Values(slot.ID, slot.SalesmanID, slot.WhenUTC, slot.Status).
		Suffix("ON CONFLICT DO NOTHING RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&slot.CreatedAt, &slot.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storage.Wrap(ErrExecQuery, "Upsert - execute insert", err)
	}

	return true, nil
}

// GetByID получает слот по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(slotColumns...).
		From("slots s").
		LeftJoin("bookings b ON b.slot_id = s.id").
		Where(squirrel.Eq{"s.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrSlotNotFound
	}
	if err != nil {
		return nil, storage.Wrap(ErrScanRow, "GetByID - scan slot", err)
	}

	return slot, nil
}

// FindFree возвращает свободные слоты: статус available, без связи с лидом,
// время в диапазоне [From, To]. Сортировка по времени по возрастанию.
func (r *Repository) FindFree(ctx context.Context, filter domain.FreeSlotsFilter) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(slotColumns...).
		From("slots s").
		LeftJoin("bookings b ON b.slot_id = s.id").
		Where(squirrel.Eq{"s.status": domain.SlotAvailable}).
		Where("b.slot_id IS NULL").
		OrderBy("s.when_utc ASC", "s.id ASC")

	if !filter.From.IsZero() {
		builder = builder.Where(squirrel.GtOrEq{"s.when_utc": filter.From.UTC()})
	}
	if !filter.To.IsZero() {
		builder = builder.Where(squirrel.LtOrEq{"s.when_utc": filter.To.UTC()})
	}
	if filter.SalesmanID != nil {
		builder = builder.Where(squirrel.Eq{"s.salesman_id": *filter.SalesmanID})
	}
	if filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: FindFree - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storage.Wrap(ErrExecQuery, "FindFree - execute query", err)
	}
	defer rows.Close()

	return scanSlots(rows)
}

// List возвращает слоты по административному фильтру
func (r *Repository) List(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(slotColumns...).
		From("slots s").
		LeftJoin("bookings b ON b.slot_id = s.id").
		OrderBy("s.when_utc ASC", "s.id ASC")

	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"s.status": *filter.Status})
	}
	if filter.SalesmanID != nil {
		builder = builder.Where(squirrel.Eq{"s.salesman_id": *filter.SalesmanID})
	}
	if filter.Unassigned {
		builder = builder.Where("s.salesman_id IS NULL")
	}
	if filter.LeadID != nil {
		builder = builder.Where(squirrel.Eq{"b.lead_id": *filter.LeadID})
	}
	if filter.From != nil {
		builder = builder.Where(squirrel.GtOrEq{"s.when_utc": filter.From.UTC()})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.LtOrEq{"s.when_utc": filter.To.UTC()})
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

	return scanSlots(rows)
}

// Transition атомарно меняет статус слота с from на to.
// Условное обновление (WHERE status = from) единственное место изменения статуса:
// из двух конкурентных переходов успешен ровно один.
func (r *Repository) Transition(ctx context.Context, id string, from, to domain.SlotStatus) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Transition - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return storage.Wrap(ErrExecQuery, "Transition - execute update", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return storage.Wrap(ErrExecQuery, "Transition - rows affected", err)
	}
	if affected > 0 {
		return nil
	}

	// Ничего не обновлено: либо слота нет, либо статус уже другой
	exists, err := r.exists(ctx, executor, id)
	if err != nil {
		return err
	}
	if !exists {
		return storage.ErrSlotNotFound
	}
	return fmt.Errorf("%w: slot %s is not %s", storage.ErrTransitionConflict, id, from)
}

// AssignSalesman привязывает слот к менеджеру (nil отвязывает).
// Если у менеджера уже есть слот на это время, возвращает storage.ErrDuplicate.
func (r *Repository) AssignSalesman(ctx context.Context, id string, salesmanID *string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("salesman_id", salesmanID).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: AssignSalesman - build update query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, executor, "AssignSalesman", query, args)
}

// Delete удаляет слот вместе со связью bookings (ON DELETE CASCADE)
func (r *Repository) Delete(ctx context.Context, id string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %v", ErrBuildQuery, err)
	}

	return r.execOne(ctx, executor, "Delete", query, args)
}

// DeleteExpired удаляет свободные слоты с временем раньше cutoff.
// Слоты в других статусах не затрагиваются.
func (r *Repository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("slots").
		Where(squirrel.Eq{"status": domain.SlotAvailable}).
		Where(squirrel.Lt{"when_utc": cutoff.UTC()}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteExpired - build delete query: %v", ErrBuildQuery, err)
	}

	return r.execCount(ctx, executor, "DeleteExpired", query, args)
}

// DeleteBySalesman удаляет слоты менеджера в указанном статусе
func (r *Repository) DeleteBySalesman(ctx context.Context, salesmanID string, status domain.SlotStatus) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("slots").
		Where(squirrel.Eq{"salesman_id": salesmanID}).
		Where(squirrel.Eq{"status": status}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteBySalesman - build delete query: %v", ErrBuildQuery, err)
	}

	return r.execCount(ctx, executor, "DeleteBySalesman", query, args)
}

// DetachSalesman отвязывает все слоты менеджера. Отвязанные слоты вне статуса available
// выпадают из частичного индекса ux_slots_salesman_when (миграция 000002).
func (r *Repository) DetachSalesman(ctx context.Context, salesmanID string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("slots").
		Set("salesman_id", nil).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"salesman_id": salesmanID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DetachSalesman - build update query: %v", ErrBuildQuery, err)
	}

	return r.execCount(ctx, executor, "DetachSalesman", query, args)
}

func (r *Repository) exists(ctx context.Context, executor DBExecutor, id string) (bool, error) {
	query, args, err := psqlbuilder.Select("1").
		From("slots").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: exists - build select query: %v", ErrBuildQuery, err)
	}

	var one int
	err = executor.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, storage.Wrap(ErrScanRow, "exists - scan", err)
	}
	return true, nil
}

func (r *Repository) execOne(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	affected, err := r.execCount(ctx, executor, op, query, args)
	if err != nil {
		return err
	}
	if affected == 0 {
		return storage.ErrSlotNotFound
	}
	return nil
}

func (r *Repository) execCount(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) (int64, error) {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, storage.Wrap(ErrExecQuery, op+" - execute", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, storage.Wrap(ErrExecQuery, op+" - rows affected", err)
	}
	return affected, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var (
		slot       domain.Slot
		salesmanID sql.NullString
		leadID     sql.NullString
	)

	err := row.Scan(
		&slot.ID,
		&salesmanID,
		&slot.WhenUTC,
		&slot.Status,
		&slot.CreatedAt,
		&slot.UpdatedAt,
		&leadID,
	)
	if err != nil {
		return nil, err
	}

	slot.WhenUTC = slot.WhenUTC.UTC()
	if salesmanID.Valid {
		slot.SalesmanID = &salesmanID.String
	}
	if leadID.Valid {
		slot.LeadID = &leadID.String
	}

	return &slot, nil
}

func scanSlots(rows *sql.Rows) ([]*domain.Slot, error) {
	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanSlots - scan slot: %v", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}

	if err := rows.Err(); err != nil {
		return nil, storage.Wrap(ErrScanRow, "scanSlots - rows iteration", err)
	}

	return slots, nil
}
