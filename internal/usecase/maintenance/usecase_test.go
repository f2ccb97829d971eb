package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/service/assignment"
	"github.com/m04kA/MHS-BookingService/internal/testutil/memstore"
	"github.com/m04kA/MHS-BookingService/pkg/logger"
	"github.com/m04kA/MHS-BookingService/pkg/metrics"
)

var now = time.Date(2025, 3, 3, 12, 0, 0, 0, time.UTC)

func newUseCase(store *memstore.Store, m Metrics) *UseCase {
	log := logger.NewNop()
	return NewUseCase(store.Slots(), assignment.NewService(store.Slots(), store.Salesmen(), log), m, log)
}

func TestPruneAndReconcile_PrunesOnlyAvailable(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	owner := "s-1"
	store.AddSalesman(domain.Salesman{ID: owner, Name: "A"})
	past := now.Add(-time.Hour)
	store.AddSlot(domain.Slot{WhenUTC: past, SalesmanID: &owner})
	store.AddSlot(domain.Slot{WhenUTC: past.Add(-time.Hour), SalesmanID: &owner, Status: domain.SlotBooked})
	store.AddSlot(domain.Slot{WhenUTC: past.Add(-2 * time.Hour), SalesmanID: &owner, Status: domain.SlotCompleted})
	future := store.AddSlot(domain.Slot{WhenUTC: now.Add(time.Hour), SalesmanID: &owner})
	m := metrics.New("test", prometheus.NewRegistry())

	report, err := newUseCase(store, m).PruneAndReconcile(ctx, now)

	require.NoError(t, err)
	assert.EqualValues(t, 1, report.Pruned)
	assert.Equal(t, 1, store.CountSlots(domain.SlotBooked))
	assert.Equal(t, 1, store.CountSlots(domain.SlotCompleted))
	_, err = store.Slots().GetByID(ctx, future.ID)
	assert.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.SlotsPruned.WithLabelValues()))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.MaintenanceRuns.WithLabelValues("ok")))
}

func TestPruneAndReconcile_AssignsAndRemovesDuplicates(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	owner := "s-1"
	store.AddSalesman(domain.Salesman{ID: owner, Name: "A", Priority: 1})
	store.AddSalesman(domain.Salesman{ID: "s-2", Name: "B", Priority: 2})
	at := now.Add(24 * time.Hour)
	store.AddSlot(domain.Slot{WhenUTC: at, SalesmanID: &owner})
	duplicate := store.AddSlot(domain.Slot{WhenUTC: at})
	orphan := store.AddSlot(domain.Slot{WhenUTC: at.Add(time.Hour)})

	report, err := newUseCase(store, nil).PruneAndReconcile(ctx, now)

	require.NoError(t, err)
	assert.Equal(t, 1, report.Assigned)
	assert.Equal(t, 1, report.DuplicatesRemoved)
	assert.Equal(t, 0, report.Unassigned)

	_, err = store.Slots().GetByID(ctx, duplicate.ID)
	assert.Error(t, err)
	stored, err := store.Slots().GetByID(ctx, orphan.ID)
	require.NoError(t, err)
	assert.Equal(t, owner, *stored.SalesmanID)
}

func TestPruneAndReconcile_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	store.AddSalesman(domain.Salesman{ID: "s-1", Name: "A"})
	store.AddSlot(domain.Slot{WhenUTC: now.Add(-time.Hour)})
	store.AddSlot(domain.Slot{WhenUTC: now.Add(time.Hour)})
	uc := newUseCase(store, nil)

	first, err := uc.PruneAndReconcile(ctx, now)
	require.NoError(t, err)
	second, err := uc.PruneAndReconcile(ctx, now)
	require.NoError(t, err)

	assert.EqualValues(t, 1, first.Pruned)
	assert.Equal(t, 1, first.Assigned)
	assert.Zero(t, second.Pruned)
	assert.Zero(t, second.Assigned)
	assert.Zero(t, second.DuplicatesRemoved)
}

func TestPruneAndReconcile_NoSalesmen(t *testing.T) {
	store := memstore.New()
	store.AddSlot(domain.Slot{WhenUTC: now.Add(time.Hour)})
	store.AddSlot(domain.Slot{WhenUTC: now.Add(2 * time.Hour)})

	report, err := newUseCase(store, nil).PruneAndReconcile(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 2, report.Unassigned)
	assert.Zero(t, report.Assigned)
}
