package leads

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/testutil/memstore"
	"github.com/m04kA/MHS-BookingService/pkg/logger"
)

func newService(store *memstore.Store) *Service {
	return NewService(store.Leads(), store.Bookings(), store.Slots(), store, logger.NewNop())
}

func contact(email string) domain.Contact {
	return domain.Contact{
		Name:            "Jane Doe",
		Email:           email,
		Timeline:        "Immediate",
		FinancingStatus: "Pre-approved",
		LotStatus:       "Owned",
	}
}

func TestSubmit_UpsertsByEmail(t *testing.T) {
	store := memstore.New()
	svc := newService(store)

	first, err := svc.Submit(context.Background(), contact("jane@example.com"))
	require.NoError(t, err)
	assert.Equal(t, 40, first.QualificationScore)
	assert.Equal(t, domain.DefaultLeadStatus, first.Status)

	again := contact(" JANE@example.com")
	again.Timeline = "6-12 months"
	second, err := svc.Submit(context.Background(), again)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 30, second.QualificationScore)
	assert.Equal(t, 1, store.CountLeads())
}

func TestSubmit_Validation(t *testing.T) {
	svc := newService(memstore.New())

	_, err := svc.Submit(context.Background(), domain.Contact{Name: "x", Email: "not-an-email"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Submit(context.Background(), domain.Contact{Email: "a@b.co"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDelete_ReleasesBookedSlots(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	svc := newService(store)

	lead, err := svc.Submit(ctx, contact("jane@example.com"))
	require.NoError(t, err)

	when := time.Date(2025, 3, 3, 15, 0, 0, 0, time.UTC)
	booked := store.AddSlot(domain.Slot{WhenUTC: when, Status: domain.SlotBooked})
	done := store.AddSlot(domain.Slot{WhenUTC: when.Add(time.Hour), Status: domain.SlotCompleted})
	for _, id := range []string{booked.ID, done.ID} {
		_, err := store.Bookings().Create(ctx, &domain.Booking{SlotID: id, LeadID: lead.ID})
		require.NoError(t, err)
	}

	released, err := svc.Delete(ctx, lead.ID)

	require.NoError(t, err)
	assert.Equal(t, 1, released)
	assert.Equal(t, 0, store.CountLeads())
	assert.Equal(t, 0, store.CountBookings())

	slot, err := store.Slots().GetByID(ctx, booked.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotAvailable, slot.Status)
	assert.Nil(t, slot.LeadID)

	slot, err = store.Slots().GetByID(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SlotCompleted, slot.Status)
}

func TestDelete_NotFoundRollsBack(t *testing.T) {
	svc := newService(memstore.New())

	_, err := svc.Delete(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrLeadNotFound)
}

func TestList_MinScoreRange(t *testing.T) {
	svc := newService(memstore.New())
	score := 50

	_, err := svc.List(context.Background(), domain.LeadsFilter{MinScore: &score})

	assert.ErrorIs(t, err, ErrInvalidInput)
}
