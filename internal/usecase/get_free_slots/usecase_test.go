package get_free_slots

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
	"github.com/m04kA/MHS-BookingService/internal/testutil/memstore"
	"github.com/m04kA/MHS-BookingService/pkg/logger"
	"github.com/m04kA/MHS-BookingService/pkg/ptr"
)

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

var now = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

func newUseCase(store *memstore.Store) *UseCase {
	return NewUseCase(store.Slots(), domain.DefaultMinLeadTime, 14, logger.NewNop()).
		WithTimeProvider(fixedTime{now})
}

func TestExecute_ClampsToLeadTime(t *testing.T) {
	store := memstore.New()
	store.AddSlot(domain.Slot{WhenUTC: now.Add(time.Hour)})
	store.AddSlot(domain.Slot{WhenUTC: now.Add(2 * time.Hour)})
	store.AddSlot(domain.Slot{WhenUTC: now.Add(4 * time.Hour)})
	store.AddSlot(domain.Slot{WhenUTC: now.Add(5 * time.Hour), Status: domain.SlotBooked})

	resp, err := newUseCase(store).Execute(context.Background(), &Request{From: ptr.Ptr(now)})

	require.NoError(t, err)
	assert.True(t, now.Add(2*time.Hour).Equal(resp.From))
	require.Len(t, resp.Slots, 2)
	assert.True(t, now.Add(2*time.Hour).Equal(resp.Slots[0].WhenUTC))
	assert.True(t, now.Add(4*time.Hour).Equal(resp.Slots[1].WhenUTC))
}

func TestExecute_FiltersBySalesmanAndLimit(t *testing.T) {
	store := memstore.New()
	a, b := "s-a", "s-b"
	for i := 3; i < 8; i++ {
		store.AddSlot(domain.Slot{WhenUTC: now.Add(time.Duration(i) * time.Hour), SalesmanID: &a})
		store.AddSlot(domain.Slot{WhenUTC: now.Add(time.Duration(i) * time.Hour), SalesmanID: &b})
	}

	resp, err := newUseCase(store).Execute(context.Background(), &Request{SalesmanID: &b, Limit: 3})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 3)
	for _, s := range resp.Slots {
		assert.Equal(t, b, *s.SalesmanID)
	}
}

func TestExecute_WindowInsideLeadTime(t *testing.T) {
	store := memstore.New()
	store.AddSlot(domain.Slot{WhenUTC: now.Add(time.Hour)})

	resp, err := newUseCase(store).Execute(context.Background(), &Request{
		From: ptr.Ptr(now),
		To:   ptr.Ptr(now.Add(time.Hour)),
	})

	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_InvalidRange(t *testing.T) {
	_, err := newUseCase(memstore.New()).Execute(context.Background(), &Request{
		From: ptr.Ptr(now.Add(48 * time.Hour)),
		To:   ptr.Ptr(now.Add(24 * time.Hour)),
	})

	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestExecute_StoreUnavailable(t *testing.T) {
	store := memstore.New()
	store.Err = fmt.Errorf("dial: %w", storage.ErrUnavailable)

	_, err := newUseCase(store).Execute(context.Background(), &Request{})

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}
