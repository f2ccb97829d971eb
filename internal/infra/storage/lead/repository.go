package lead

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

var leadColumns = []string{
	"id",
	"name",
	"email",
	"phone",
	"service",
	"timeline",
	"financing_status",
	"lot_status",
	"qualification_score",
	"status",
	"created_at",
	"updated_at",
}

// Repository репозиторий лидов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория лидов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// UpsertByEmail создает лида или обновляет существующего с тем же email.
// Статус существующего лида сохраняется.
func (r *Repository) UpsertByEmail(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.Status == "" {
		lead.Status = domain.DefaultLeadStatus
	}

	query, args, err := psqlbuilder.Insert("leads").
		Columns(
			"id",
			"name",
			"email",
			"phone",
			"service",
			"timeline",
			"financing_status",
			"lot_status",
			"qualification_score",
			"status",
		).
		Values(
			lead.ID,
			lead.Name,
			lead.Email,
			lead.Phone,
			lead.Service,
			lead.Timeline,
			lead.FinancingStatus,
			lead.LotStatus,
			lead.QualificationScore,
			lead.Status,
		).
		Suffix(`ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			service = EXCLUDED.service,
			timeline = EXCLUDED.timeline,
			financing_status = EXCLUDED.financing_status,
			lot_status = EXCLUDED.lot_status,
			qualification_score = EXCLUDED.qualification_score,
			updated_at = NOW()
		RETURNING id, status, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertByEmail - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&lead.ID,
		&lead.Status,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, storage.Wrap(ErrExecQuery, "UpsertByEmail - execute upsert", err)
	}

	return lead, nil
}

// GetByID получает лида по ID
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	return r.getOne(ctx, "GetByID", squirrel.Eq{"id": id})
}

// GetByEmail получает лида по email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	return r.getOne(ctx, "GetByEmail", squirrel.Eq{"email": domain.NormalizeEmail(email)})
}

// List возвращает лидов, новые первыми
func (r *Repository) List(ctx context.Context, filter domain.LeadsFilter) ([]*domain.Lead, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select(leadColumns...).
		From("leads").
		OrderBy("created_at DESC", "id ASC")

	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	}
	if filter.MinScore != nil {
		builder = builder.Where(squirrel.GtOrEq{"qualification_score": *filter.MinScore})
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

	leads := make([]*domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan lead: %v", ErrScanRow, err)
		}
		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, storage.Wrap(ErrScanRow, "List - rows iteration", err)
	}

	return leads, nil
}

// Delete удаляет лида. Связи bookings удаляются каскадно.
func (r *Repository) Delete(ctx context.Context, id string) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("leads").
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
		return storage.ErrLeadNotFound
	}

	return nil
}

func (r *Repository) getOne(ctx context.Context, op string, where squirrel.Eq) (*domain.Lead, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(leadColumns...).
		From("leads").
		Where(where).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: %s - build select query: %v", ErrBuildQuery, op, err)
	}

	lead, err := scanLead(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrLeadNotFound
	}
	if err != nil {
		return nil, storage.Wrap(ErrScanRow, op+" - scan lead", err)
	}

	return lead, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanLead(row rowScanner) (*domain.Lead, error) {
	var lead domain.Lead
	err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Phone,
		&lead.Service,
		&lead.Timeline,
		&lead.FinancingStatus,
		&lead.LotStatus,
		&lead.QualificationScore,
		&lead.Status,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}
