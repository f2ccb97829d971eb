package lead

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
	"github.com/m04kA/MHS-BookingService/pkg/ptr"
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_UpsertByEmail(t *testing.T) {
	repo, mock := newMock(t)
	created := time.Now().Add(-time.Hour)
	updated := time.Now()

	// повторная заявка: id и статус берутся из существующей записи
	mock.ExpectQuery(`INSERT INTO leads .+ ON CONFLICT \(email\) DO UPDATE SET .+ RETURNING id, status, created_at, updated_at`).
		WithArgs(sqlmock.AnyArg(), "Jane", "jane@example.com", "555", "Custom home",
			"Immediate", "Pre-approved", "Owned", 40, "new").
		WillReturnRows(sqlmock.NewRows([]string{"id", "status", "created_at", "updated_at"}).
			AddRow("lead-1", "contacted", created, updated))

	lead := domain.NewLead(domain.Contact{
		Name:            "Jane",
		Email:           "Jane@Example.com",
		Phone:           "555",
		Service:         "Custom home",
		Timeline:        "Immediate",
		FinancingStatus: "Pre-approved",
		LotStatus:       "Owned",
	})

	saved, err := repo.UpsertByEmail(context.Background(), lead)

	require.NoError(t, err)
	assert.Equal(t, "lead-1", saved.ID)
	assert.Equal(t, "contacted", saved.Status)
	assert.Equal(t, 40, saved.QualificationScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_GetByEmail(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`FROM leads WHERE email = \$1`).
		WithArgs("jane@example.com").
		WillReturnRows(sqlmock.NewRows(leadColumns))

	_, err := repo.GetByEmail(context.Background(), " JANE@example.com")

	assert.ErrorIs(t, err, storage.ErrLeadNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM leads WHERE status = \$1 AND qualification_score >= \$2 ORDER BY created_at DESC, id ASC`).
		WithArgs("new", 20).
		WillReturnRows(sqlmock.NewRows(leadColumns).
			AddRow("lead-1", "Jane", "jane@example.com", "", "", "Immediate", "Pre-approved", "", 25, "new", now, now))

	leads, err := repo.List(context.Background(), domain.LeadsFilter{
		Status:   ptr.Ptr("new"),
		MinScore: ptr.Ptr(20),
	})

	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "Jane", leads[0].Name)
}

func TestRepository_Delete(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectExec(`DELETE FROM leads WHERE id = \$1`).
		WithArgs("lead-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "lead-1")

	assert.ErrorIs(t, err, storage.ErrLeadNotFound)
}
