package neo4jstore

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/graph"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
	"github.com/m04kA/MHS-BookingService/pkg/ptr"
)

var fixedNow = time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC)

func newSlotRepo() (*SlotRepository, *graph.MemoryClient) {
	mem := graph.NewMemoryClient()
	repo := NewSlotRepository(mem)
	repo.now = func() time.Time { return fixedNow }
	return repo, mem
}

func TestSlotRepository_Upsert(t *testing.T) {
	when := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)

	t.Run("creates slot", func(t *testing.T) {
		repo, mem := newSlotRepo()
		slot := &domain.Slot{ID: "slot-1", SalesmanID: ptr.Ptr("s-1"), WhenUTC: when}
		mem.PushWriteResult(graph.Result{Records: []graph.Record{
			{"id": "slot-1", "createdAt": fixedNow, "updatedAt": fixedNow},
		}})

		created, err := repo.Upsert(context.Background(), slot)

		require.NoError(t, err)
		assert.True(t, created)
		assert.Equal(t, fixedNow, slot.CreatedAt)

		calls := mem.WriteCalls()
		require.Len(t, calls, 1)
		assert.Equal(t, upsertSlotCypher, calls[0].Query)
		assert.Equal(t, "s-1|2025-03-03T09:00:00Z", calls[0].Params["slotKey"])
		assert.Equal(t, "available", calls[0].Params["status"])
		assert.True(t, strings.Contains(calls[0].Query, "OFFERS_APPOINTMENT"))
	})

	t.Run("existing slot wins", func(t *testing.T) {
		repo, mem := newSlotRepo()
		mem.PushWriteResult(graph.Result{Records: []graph.Record{{"id": "older"}}})

		created, err := repo.Upsert(context.Background(), &domain.Slot{ID: "slot-2", WhenUTC: when})

		require.NoError(t, err)
		assert.False(t, created)
		assert.Equal(t, "|2025-03-03T09:00:00Z", mem.WriteCalls()[0].Params["slotKey"])
		assert.Nil(t, mem.WriteCalls()[0].Params["salesmanId"])
	})
}

func TestSlotRepository_GetByID(t *testing.T) {
	repo, mem := newSlotRepo()
	when := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	mem.PushReadResult(graph.Result{Records: []graph.Record{{
		"id": "slot-1", "salesmanId": "s-1", "whenUtc": when, "status": "booked", "leadId": "lead-1",
	}}})

	slot, err := repo.GetByID(context.Background(), "slot-1")
	require.NoError(t, err)
	assert.Equal(t, domain.SlotBooked, slot.Status)
	assert.Equal(t, "lead-1", ptr.Deref(slot.LeadID))
	assert.Equal(t, when, slot.WhenUTC)

	_, err = repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrSlotNotFound)
}

func TestSlotRepository_FindFree(t *testing.T) {
	repo, mem := newSlotRepo()
	from := time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)

	_, err := repo.FindFree(context.Background(), domain.FreeSlotsFilter{From: from, Limit: 1})
	require.NoError(t, err)

	call := mem.ReadCalls()[0]
	assert.True(t, strings.HasSuffix(call.Query, "LIMIT $limit"))
	assert.Equal(t, int64(1), call.Params["limit"])
	assert.Equal(t, from, call.Params["from"])
	assert.Nil(t, call.Params["to"])
	assert.Nil(t, call.Params["salesmanId"])
	assert.Contains(t, call.Query, "NOT EXISTS { (:Lead)-[:HAS_APPOINTMENT]->(s) }")
}

func TestSlotRepository_Transition(t *testing.T) {
	t.Run("matched", func(t *testing.T) {
		repo, mem := newSlotRepo()
		mem.PushWriteResult(graph.Result{Records: []graph.Record{{"matched": true}}})

		err := repo.Transition(context.Background(), "slot-1", domain.SlotAvailable, domain.SlotBooked)

		require.NoError(t, err)
		call := mem.WriteCalls()[0]
		assert.Equal(t, transitionSlotCypher, call.Query)
		assert.Equal(t, "available", call.Params["from"])
		assert.Equal(t, "booked", call.Params["to"])
	})

	t.Run("status changed", func(t *testing.T) {
		repo, mem := newSlotRepo()
		mem.PushWriteResult(graph.Result{Records: []graph.Record{{"matched": false}}})

		err := repo.Transition(context.Background(), "slot-1", domain.SlotAvailable, domain.SlotBooked)

		assert.ErrorIs(t, err, storage.ErrTransitionConflict)
	})

	t.Run("missing", func(t *testing.T) {
		repo, _ := newSlotRepo()

		err := repo.Transition(context.Background(), "slot-1", domain.SlotAvailable, domain.SlotBooked)

		assert.ErrorIs(t, err, storage.ErrSlotNotFound)
	})
}

func TestSlotRepository_DeleteExpired(t *testing.T) {
	repo, mem := newSlotRepo()
	mem.PushWriteResult(graph.Result{Records: []graph.Record{{"deleted": int64(3)}}})

	pruned, err := repo.DeleteExpired(context.Background(), fixedNow)

	require.NoError(t, err)
	assert.Equal(t, int64(3), pruned)
	call := mem.WriteCalls()[0]
	assert.Equal(t, "available", call.Params["status"])
	assert.Equal(t, fixedNow, call.Params["cutoff"])
}

func TestSlotRepository_AssignSalesman(t *testing.T) {
	repo, mem := newSlotRepo()

	err := repo.AssignSalesman(context.Background(), "slot-1", ptr.Ptr("s-2"))
	assert.ErrorIs(t, err, storage.ErrSlotNotFound)

	mem.PushWriteResult(graph.Result{Records: []graph.Record{{"id": "slot-1"}}})
	err = repo.AssignSalesman(context.Background(), "slot-1", ptr.Ptr("s-2"))
	require.NoError(t, err)
	assert.Equal(t, "s-2", mem.WriteCalls()[1].Params["salesmanId"])
}

func TestSlotRepository_UpsertKeepsSubSecondInstants(t *testing.T) {
	repo, mem := newSlotRepo()
	when := time.Date(2025, time.March, 3, 9, 0, 0, 500_000_000, time.UTC)
	mem.PushWriteResult(graph.Result{Records: []graph.Record{{"id": "slot-1"}}})
	mem.PushWriteResult(graph.Result{Records: []graph.Record{{"id": "slot-2"}}})

	_, err := repo.Upsert(context.Background(), &domain.Slot{ID: "slot-1", SalesmanID: ptr.Ptr("s-1"), WhenUTC: when})
	require.NoError(t, err)
	_, err = repo.Upsert(context.Background(), &domain.Slot{ID: "slot-2", SalesmanID: ptr.Ptr("s-1"), WhenUTC: when.Truncate(time.Second)})
	require.NoError(t, err)

	calls := mem.WriteCalls()
	require.Len(t, calls, 2)
	assert.Equal(t, "s-1|2025-03-03T09:00:00.5Z", calls[0].Params["slotKey"])
	assert.Equal(t, "s-1|2025-03-03T09:00:00Z", calls[1].Params["slotKey"])
}

func TestSlotRepository_DetachSalesman(t *testing.T) {
	repo, mem := newSlotRepo()
	mem.PushWriteResult(graph.Result{Records: []graph.Record{{"detached": int64(2)}}})

	detached, err := repo.DetachSalesman(context.Background(), "s-1")

	require.NoError(t, err)
	assert.Equal(t, int64(2), detached)
	call := mem.WriteCalls()[0]
	assert.Equal(t, detachSalesmanCypher, call.Query)
	assert.Equal(t, "s-1", call.Params["salesmanId"])
	// booked and completed slots of different salesmen at one instant must not share a key
	assert.Contains(t, call.Query, "'|' + s.whenKey + '|' + s.id")
	assert.NotContains(t, call.Query, "s.slotKey = '|' + s.whenKey,")
}

func TestSlotRepository_KeyFollowsStatus(t *testing.T) {
	for _, query := range []string{transitionSlotCypher, assignSalesmanCypher, detachSalesmanCypher} {
		assert.Contains(t, query, slotKeyExpr)
	}
}
