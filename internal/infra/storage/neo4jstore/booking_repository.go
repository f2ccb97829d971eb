package neo4jstore

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/graph"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
)

// BookingRepository manages HAS_APPOINTMENT relationships between leads and slots.
type BookingRepository struct {
	client graph.Client
	now    func() time.Time
}

// NewBookingRepository instantiates a BookingRepository backed by the supplied graph client.
func NewBookingRepository(client graph.Client) *BookingRepository {
	return &BookingRepository{client: client, now: time.Now}
}

// Create links the lead to the slot. A slot holds at most one relationship:
// an existing one yields storage.ErrDuplicate.
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	createdAt := r.now().UTC()
	params := map[string]any{
		"slotId":    booking.SlotID,
		"leadId":    booking.LeadID,
		"createdAt": createdAt,
	}

	res, err := r.client.ExecuteWrite(ctx, createBookingCypher, params)
	if err != nil {
		return nil, wrap("CreateBooking", err)
	}

	rec := res.First()
	if rec == nil {
		return nil, fmt.Errorf("%w: slot %s or lead %s does not exist", storage.ErrSlotNotFound, booking.SlotID, booking.LeadID)
	}
	if toInt(rec["taken"]) > 0 {
		return nil, fmt.Errorf("%w: slot %s already has a booking", storage.ErrDuplicate, booking.SlotID)
	}

	booking.CreatedAt = createdAt
	return booking, nil
}

// GetBySlot returns the booking of the slot.
func (r *BookingRepository) GetBySlot(ctx context.Context, slotID string) (*domain.Booking, error) {
	res, err := r.client.ExecuteRead(ctx, getBookingCypher, map[string]any{"slotId": slotID})
	if err != nil {
		return nil, wrap("GetBooking", err)
	}

	rec := res.First()
	if rec == nil {
		return nil, storage.ErrBookingNotFound
	}
	return bookingFromRecord(rec), nil
}

// Delete removes the booking relationship of the slot.
func (r *BookingRepository) Delete(ctx context.Context, slotID string) error {
	res, err := r.client.ExecuteWrite(ctx, deleteBookingCypher, map[string]any{"slotId": slotID})
	if err != nil {
		return wrap("DeleteBooking", err)
	}
	if toInt(res.First()["deleted"]) == 0 {
		return storage.ErrBookingNotFound
	}
	return nil
}

// ListByLead returns the lead's bookings in creation order.
func (r *BookingRepository) ListByLead(ctx context.Context, leadID string) ([]*domain.Booking, error) {
	res, err := r.client.ExecuteRead(ctx, listLeadBookingsCypher, map[string]any{"leadId": leadID})
	if err != nil {
		return nil, wrap("ListBookings", err)
	}

	bookings := make([]*domain.Booking, 0, len(res.Records))
	for _, rec := range res.Records {
		bookings = append(bookings, bookingFromRecord(rec))
	}
	return bookings, nil
}

func bookingFromRecord(rec graph.Record) *domain.Booking {
	return &domain.Booking{
		SlotID:    toString(rec["slotId"]),
		LeadID:    toString(rec["leadId"]),
		CreatedAt: toTime(rec["createdAt"]),
	}
}

const createBookingCypher = `
MATCH (s:Slot {id: $slotId})
MATCH (l:Lead {id: $leadId})
OPTIONAL MATCH (:Lead)-[existing:HAS_APPOINTMENT]->(s)
WITH s, l, count(existing) AS taken
FOREACH (_ IN CASE WHEN taken = 0 THEN [1] ELSE [] END |
	CREATE (l)-[:HAS_APPOINTMENT {createdAt: $createdAt}]->(s)
)
RETURN taken
`

const getBookingCypher = `
MATCH (l:Lead)-[r:HAS_APPOINTMENT]->(s:Slot {id: $slotId})
RETURN s.id AS slotId, l.id AS leadId, r.createdAt AS createdAt
`

const deleteBookingCypher = `
MATCH (:Lead)-[r:HAS_APPOINTMENT]->(:Slot {id: $slotId})
DELETE r
RETURN count(*) AS deleted
`

const listLeadBookingsCypher = `
MATCH (l:Lead {id: $leadId})-[r:HAS_APPOINTMENT]->(s:Slot)
RETURN s.id AS slotId, l.id AS leadId, r.createdAt AS createdAt
ORDER BY createdAt ASC, slotId ASC
`
