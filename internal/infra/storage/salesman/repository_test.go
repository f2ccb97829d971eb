package salesman

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
)

func newMock(t *testing.T) (*Repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRepository(db), mock
}

func TestRepository_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo, mock := newMock(t)
		now := time.Now()

		mock.ExpectQuery(`INSERT INTO salesmen \(id,name,email,phone,priority,status\) VALUES .+ RETURNING created_at, updated_at`).
			WithArgs(sqlmock.AnyArg(), "Bob", "bob@example.com", "", 1, "active").
			WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

		salesman, err := repo.Create(context.Background(), &domain.Salesman{
			Name:     "Bob",
			Email:    "bob@example.com",
			Priority: 1,
			Status:   domain.SalesmanActive,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, salesman.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate email", func(t *testing.T) {
		repo, mock := newMock(t)

		mock.ExpectQuery(`INSERT INTO salesmen`).WillReturnError(&pq.Error{Code: "23505"})

		_, err := repo.Create(context.Background(), &domain.Salesman{Name: "Bob", Email: "bob@example.com"})

		assert.ErrorIs(t, err, storage.ErrDuplicate)
	})
}

func TestRepository_ListActive(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM salesmen WHERE status = \$1 ORDER BY priority ASC, name ASC, id ASC`).
		WithArgs("active").
		WillReturnRows(sqlmock.NewRows(salesmanColumns).
			AddRow("s-1", "Alice", "alice@example.com", "", 1, "active", now, now).
			AddRow("s-2", "Bob", "bob@example.com", "", 2, "active", now, now))

	salesmen, err := repo.ListActive(context.Background())

	require.NoError(t, err)
	require.Len(t, salesmen, 2)
	assert.Equal(t, "s-1", salesmen[0].ID)
	assert.Equal(t, domain.SalesmanActive, salesmen[0].Status)
}

func TestRepository_Update(t *testing.T) {
	repo, mock := newMock(t)

	mock.ExpectQuery(`UPDATE salesmen SET name = \$1, email = \$2, phone = \$3, priority = \$4, status = \$5, updated_at = NOW\(\) WHERE id = \$6 RETURNING`).
		WithArgs("Bob", "bob@example.com", "", 3, "inactive", "s-9").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}))

	_, err := repo.Update(context.Background(), &domain.Salesman{
		ID:       "s-9",
		Name:     "Bob",
		Email:    "bob@example.com",
		Priority: 3,
		Status:   domain.SalesmanInactive,
	})

	assert.ErrorIs(t, err, storage.ErrSalesmanNotFound)
}

func TestRepository_GetByID(t *testing.T) {
	repo, mock := newMock(t)
	now := time.Now()

	mock.ExpectQuery(`FROM salesmen WHERE id = \$1`).
		WithArgs("s-1").
		WillReturnRows(sqlmock.NewRows(salesmanColumns).
			AddRow("s-1", "Alice", "alice@example.com", "555", 1, "active", now, now))

	salesman, err := repo.GetByID(context.Background(), "s-1")

	require.NoError(t, err)
	assert.Equal(t, "Alice", salesman.Name)
	assert.True(t, salesman.IsActive())
}
