package slot

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
	"github.com/m04kA/MHS-BookingService/pkg/ptr"
)

var slotRowColumns = []string{"id", "salesman_id", "when_utc", "status", "created_at", "updated_at", "lead_id"}

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_Upsert(t *testing.T) {
	when := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	now := time.Now()

	t.Run("creates new slot", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(`INSERT INTO slots \(id,salesman_id,when_utc,status\) VALUES .+ ON CONFLICT DO NOTHING RETURNING created_at, updated_at`).
			WithArgs(sqlmock.AnyArg(), "s-1", when, "available").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		slot := &domain.Slot{SalesmanID: ptr.Ptr("s-1"), WhenUTC: when}
		created, err := repo.Upsert(context.Background(), slot)

		require.NoError(t, err)
		assert.True(t, created)
		assert.NotEmpty(t, slot.ID)
		assert.Equal(t, domain.SlotAvailable, slot.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("existing slot is not duplicated", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(`INSERT INTO slots .+ ON CONFLICT DO NOTHING`).
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

		created, err := repo.Upsert(context.Background(), &domain.Slot{SalesmanID: ptr.Ptr("s-1"), WhenUTC: when})

		require.NoError(t, err)
		assert.False(t, created)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("connection failure is unavailable", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(`INSERT INTO slots`).WillReturnError(&pq.Error{Code: "08006"})

		_, err := repo.Upsert(context.Background(), &domain.Slot{WhenUTC: when})

		assert.ErrorIs(t, err, ErrExecQuery)
		assert.ErrorIs(t, err, storage.ErrUnavailable)
	})
}

func TestRepository_GetByID(t *testing.T) {
	when := time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
	now := time.Now()

	t.Run("returns slot with lead", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(`SELECT s.id, .+ FROM slots s LEFT JOIN bookings b ON b.slot_id = s.id WHERE s.id = \$1`).
			WithArgs("slot-1").
			WillReturnRows(sqlmock.NewRows(slotRowColumns).
				AddRow("slot-1", "s-1", when, "booked", now, now, "lead-1"))

		slot, err := repo.GetByID(context.Background(), "slot-1")

		require.NoError(t, err)
		assert.Equal(t, domain.SlotBooked, slot.Status)
		assert.Equal(t, "s-1", ptr.Deref(slot.SalesmanID))
		assert.Equal(t, "lead-1", ptr.Deref(slot.LeadID))
		assert.Equal(t, when, slot.WhenUTC)
	})

	t.Run("unassigned slot without lead", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(`FROM slots s`).
			WillReturnRows(sqlmock.NewRows(slotRowColumns).
				AddRow("slot-1", nil, when, "available", now, now, nil))

		slot, err := repo.GetByID(context.Background(), "slot-1")

		require.NoError(t, err)
		assert.Nil(t, slot.SalesmanID)
		assert.Nil(t, slot.LeadID)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(`FROM slots s`).WillReturnRows(sqlmock.NewRows(slotRowColumns))

		_, err := repo.GetByID(context.Background(), "missing")

		assert.ErrorIs(t, err, storage.ErrSlotNotFound)
	})
}

func TestRepository_FindFree(t *testing.T) {
	repo, mock := newMock(t)
	from := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	now := time.Now()

	mock.ExpectQuery(`WHERE s.status = \$1 AND b.slot_id IS NULL AND s.when_utc >= \$2 AND s.when_utc <= \$3 AND s.salesman_id = \$4 ORDER BY s.when_utc ASC, s.id ASC LIMIT 2`).
		WithArgs("available", from, to, "s-1").
		WillReturnRows(sqlmock.NewRows(slotRowColumns).
			AddRow("a", "s-1", from.Add(9*time.Hour), "available", now, now, nil).
			AddRow("b", "s-1", from.Add(10*time.Hour), "available", now, now, nil))

	slots, err := repo.FindFree(context.Background(), domain.FreeSlotsFilter{
		From:       from,
		To:         to,
		SalesmanID: ptr.Ptr("s-1"),
		Limit:      2,
	})

	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "a", slots[0].ID)
	assert.True(t, slots[0].WhenUTC.Before(slots[1].WhenUTC))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	repo, mock := newMock(t)
	status := domain.SlotBooked

	mock.ExpectQuery(`WHERE s.status = \$1 AND s.salesman_id IS NULL AND b.lead_id = \$2 ORDER BY`).
		WithArgs("booked", "lead-1").
		WillReturnRows(sqlmock.NewRows(slotRowColumns))

	slots, err := repo.List(context.Background(), domain.SlotsFilter{
		Status:     &status,
		Unassigned: true,
		LeadID:     ptr.Ptr("lead-1"),
	})

	require.NoError(t, err)
	assert.Empty(t, slots)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_Transition(t *testing.T) {
	const update = `UPDATE slots SET status = \$1, updated_at = NOW\(\) WHERE id = \$2 AND status = \$3`

	t.Run("success", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectExec(update).
			WithArgs("booked", "slot-1", "available").
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Transition(context.Background(), "slot-1", domain.SlotAvailable, domain.SlotBooked)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("status already changed", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT 1 FROM slots WHERE id = \$1`).
			WithArgs("slot-1").
			WillReturnRows(sqlmock.NewRows([]string{"one"}).AddRow(1))

		err := repo.Transition(context.Background(), "slot-1", domain.SlotAvailable, domain.SlotBooked)

		assert.ErrorIs(t, err, storage.ErrTransitionConflict)
	})

	t.Run("slot missing", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(`SELECT 1 FROM slots`).WillReturnRows(sqlmock.NewRows([]string{"one"}))

		err := repo.Transition(context.Background(), "slot-1", domain.SlotAvailable, domain.SlotBooked)

		assert.ErrorIs(t, err, storage.ErrSlotNotFound)
	})
}

func TestRepository_AssignSalesman(t *testing.T) {
	t.Run("collision is duplicate", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectExec(`UPDATE slots SET salesman_id = \$1, updated_at = NOW\(\) WHERE id = \$2`).
			WithArgs("s-1", "slot-1").
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.AssignSalesman(context.Background(), "slot-1", ptr.Ptr("s-1"))

		assert.ErrorIs(t, err, storage.ErrDuplicate)
	})

	t.Run("missing slot", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectExec(`UPDATE slots SET salesman_id`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.AssignSalesman(context.Background(), "slot-1", ptr.Ptr("s-1"))

		assert.ErrorIs(t, err, storage.ErrSlotNotFound)
	})
}

func TestRepository_DeleteExpired(t *testing.T) {
	repo, mock := newMock(t)
	cutoff := time.Date(2025, time.March, 3, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM slots WHERE status = \$1 AND when_utc < \$2`).
		WithArgs("available", cutoff).
		WillReturnResult(sqlmock.NewResult(0, 4))

	pruned, err := repo.DeleteExpired(context.Background(), cutoff)

	require.NoError(t, err)
	assert.Equal(t, int64(4), pruned)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_DeleteBySalesman(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM slots WHERE salesman_id = \$1 AND status = \$2`).
		WithArgs("s-1", "available").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`UPDATE slots SET salesman_id = \$1, updated_at = NOW\(\) WHERE salesman_id = \$2`).
		WithArgs(nil, "s-1").
		WillReturnResult(sqlmock.NewResult(0, 2))

	deleted, err := repo.DeleteBySalesman(context.Background(), "s-1", domain.SlotAvailable)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	detached, err := repo.DetachSalesman(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), detached)

	assert.NoError(t, mock.ExpectationsWereMet())
}
