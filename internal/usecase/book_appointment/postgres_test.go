package book_appointment

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	bookingRepo "github.com/m04kA/MHS-BookingService/internal/infra/storage/booking"
	leadRepo "github.com/m04kA/MHS-BookingService/internal/infra/storage/lead"
	slotRepo "github.com/m04kA/MHS-BookingService/internal/infra/storage/slot"
	"github.com/m04kA/MHS-BookingService/pkg/dbmetrics"
	"github.com/m04kA/MHS-BookingService/pkg/logger"
	"github.com/m04kA/MHS-BookingService/pkg/txmanager"
)

// Postgres откатывает проигравшую транзакцию с кодом 40001 прямо на UPDATE слота
func TestExecute_PostgresSerializationFailureOnTransition(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	wrapped := dbmetrics.Wrap(db, nil)
	uc := NewUseCase(
		slotRepo.NewRepository(wrapped),
		bookingRepo.NewRepository(wrapped),
		leadRepo.NewRepository(wrapped),
		txmanager.NewTransactionManager(wrapped),
		nil,
		nil,
		domain.DefaultMinLeadTime,
		logger.NewNop(),
	).WithTimeProvider(fixedTime{now})

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO leads .+ ON CONFLICT \(email\) DO UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "created_at", "updated_at"}).
			AddRow("lead-1", "new", now, now))
	mock.ExpectQuery(`SELECT .+ FROM slots s LEFT JOIN bookings b`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "salesman_id", "when_utc", "status", "created_at", "updated_at", "lead_id"}).
			AddRow("slot-1", "s-1", when, "available", now, now, nil))
	mock.ExpectExec(`UPDATE slots SET status = \$1, updated_at = NOW\(\) WHERE id = \$2 AND status = \$3`).
		WithArgs("booked", "slot-1", "available").
		WillReturnError(&pq.Error{Code: "40001", Message: "could not serialize access due to concurrent update"})
	mock.ExpectRollback()

	resp, err := uc.Execute(context.Background(), request("jane@example.com", when))

	assert.Nil(t, resp)
	assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	assert.NotErrorIs(t, err, ErrInternal)
	assert.NoError(t, mock.ExpectationsWereMet())
}
