// Package memstore is an in-memory implementation of the repositories and the
// transaction manager used by use-case tests. Every operation is atomic; a failed
// transaction is rolled back through an undo journal.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
)

// Store holds all entities behind a single mutex.
type Store struct {
	mu       sync.Mutex
	slots    map[string]*domain.Slot
	bookings map[string]*domain.Booking // by slot id
	leads    map[string]*domain.Lead
	salesmen map[string]*domain.Salesman

	// Err, when set, is returned by every repository call.
	Err error
	// Now is used for timestamps.
	Now func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		slots:    make(map[string]*domain.Slot),
		bookings: make(map[string]*domain.Booking),
		leads:    make(map[string]*domain.Lead),
		salesmen: make(map[string]*domain.Salesman),
		Now:      time.Now,
	}
}

type journalKey struct{}

type journal struct {
	mu    sync.Mutex
	undos []func()
}

// record registers an undo step for the transaction in ctx. Caller holds s.mu.
func record(ctx context.Context, undo func()) {
	if j, ok := ctx.Value(journalKey{}).(*journal); ok {
		j.mu.Lock()
		j.undos = append(j.undos, undo)
		j.mu.Unlock()
	}
}

// Do runs fn as a transaction; on error every change made through ctx is undone.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(journalKey{}).(*journal); ok {
		return fn(ctx)
	}

	j := &journal{}
	if err := fn(context.WithValue(ctx, journalKey{}, j)); err != nil {
		s.mu.Lock()
		j.mu.Lock()
		for i := len(j.undos) - 1; i >= 0; i-- {
			j.undos[i]()
		}
		j.mu.Unlock()
		s.mu.Unlock()
		return err
	}
	return nil
}

// DoSerializable is Do.
func (s *Store) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

// DoReadOnly is Do.
func (s *Store) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return s.Do(ctx, fn)
}

// Slots returns the slot repository view.
func (s *Store) Slots() *Slots { return &Slots{s: s} }

// Bookings returns the booking repository view.
func (s *Store) Bookings() *Bookings { return &Bookings{s: s} }

// Leads returns the lead repository view.
func (s *Store) Leads() *Leads { return &Leads{s: s} }

// Salesmen returns the salesman repository view.
func (s *Store) Salesmen() *Salesmen { return &Salesmen{s: s} }

// AddSalesman inserts a salesman directly.
func (s *Store) AddSalesman(m domain.Salesman) *domain.Salesman {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Status == "" {
		m.Status = domain.SalesmanActive
	}
	stored := m
	s.salesmen[m.ID] = &stored
	return clone(&stored)
}

// AddSlot inserts a slot directly, bypassing uniqueness checks.
func (s *Store) AddSlot(slot domain.Slot) *domain.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.Status == "" {
		slot.Status = domain.SlotAvailable
	}
	slot.WhenUTC = slot.WhenUTC.UTC()
	stored := slot
	s.slots[slot.ID] = &stored
	return clone(&stored)
}

// CountSlots returns how many slots have the status.
func (s *Store) CountSlots(status domain.SlotStatus) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, slot := range s.slots {
		if slot.Status == status {
			n++
		}
	}
	return n
}

// CountBookings returns the number of lead-slot relations.
func (s *Store) CountBookings() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bookings)
}

// CountLeads returns the number of leads.
func (s *Store) CountLeads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads)
}

func clone[T any](v *T) *T {
	c := *v
	return &c
}

// key mirrors the partial unique index on slots: a detached slot outside
// available has no key and never collides.
func key(salesmanID *string, when time.Time, status domain.SlotStatus) (string, bool) {
	if salesmanID == nil && status != domain.SlotAvailable {
		return "", false
	}
	id := ""
	if salesmanID != nil {
		id = *salesmanID
	}
	return id + "|" + when.UTC().Format(time.RFC3339Nano), true
}

// taken reports whether a slot other than exceptID holds the key. Caller holds s.mu.
func (s *Store) taken(exceptID string, salesmanID *string, when time.Time, status domain.SlotStatus) bool {
	k, ok := key(salesmanID, when, status)
	if !ok {
		return false
	}
	for id, other := range s.slots {
		if id == exceptID {
			continue
		}
		if otherKey, has := key(other.SalesmanID, other.WhenUTC, other.Status); has && otherKey == k {
			return true
		}
	}
	return false
}

// Slots implements the slot repository.
type Slots struct{ s *Store }

func (r *Slots) Upsert(ctx context.Context, slot *domain.Slot) (bool, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return false, st.Err
	}

	if slot.Status == "" {
		slot.Status = domain.SlotAvailable
	}
	if st.taken(slot.ID, slot.SalesmanID, slot.WhenUTC, slot.Status) {
		return false, nil
	}

	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	slot.WhenUTC = slot.WhenUTC.UTC()
	slot.CreatedAt = st.Now()
	slot.UpdatedAt = slot.CreatedAt

	stored := clone(slot)
	stored.LeadID = nil
	st.slots[slot.ID] = stored
	id := slot.ID
	record(ctx, func() { delete(st.slots, id) })
	return true, nil
}

func (r *Slots) GetByID(_ context.Context, id string) (*domain.Slot, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return nil, st.Err
	}

	slot, ok := st.slots[id]
	if !ok {
		return nil, storage.ErrSlotNotFound
	}
	return st.view(slot), nil
}

func (r *Slots) FindFree(_ context.Context, f domain.FreeSlotsFilter) ([]*domain.Slot, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return nil, st.Err
	}

	result := make([]*domain.Slot, 0)
	for _, slot := range st.slots {
		if slot.Status != domain.SlotAvailable {
			continue
		}
		if _, booked := st.bookings[slot.ID]; booked {
			continue
		}
		if !f.From.IsZero() && slot.WhenUTC.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && slot.WhenUTC.After(f.To) {
			continue
		}
		if f.SalesmanID != nil && (slot.SalesmanID == nil || *slot.SalesmanID != *f.SalesmanID) {
			continue
		}
		result = append(result, st.view(slot))
	}

	sortSlots(result)
	if f.Limit > 0 && len(result) > f.Limit {
		result = result[:f.Limit]
	}
	return result, nil
}

func (r *Slots) List(_ context.Context, f domain.SlotsFilter) ([]*domain.Slot, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return nil, st.Err
	}

	result := make([]*domain.Slot, 0)
	for _, slot := range st.slots {
		view := st.view(slot)
		if f.Status != nil && view.Status != *f.Status {
			continue
		}
		if f.SalesmanID != nil && (view.SalesmanID == nil || *view.SalesmanID != *f.SalesmanID) {
			continue
		}
		if f.Unassigned && view.SalesmanID != nil {
			continue
		}
		if f.LeadID != nil && (view.LeadID == nil || *view.LeadID != *f.LeadID) {
			continue
		}
		if f.From != nil && view.WhenUTC.Before(*f.From) {
			continue
		}
		if f.To != nil && view.WhenUTC.After(*f.To) {
			continue
		}
		result = append(result, view)
	}

	sortSlots(result)
	return result, nil
}

func (r *Slots) Transition(ctx context.Context, id string, from, to domain.SlotStatus) error {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return st.Err
	}

	slot, ok := st.slots[id]
	if !ok {
		return storage.ErrSlotNotFound
	}
	if slot.Status != from {
		return fmt.Errorf("%w: slot %s is %s", storage.ErrTransitionConflict, id, slot.Status)
	}
	if st.taken(id, slot.SalesmanID, slot.WhenUTC, to) {
		return fmt.Errorf("%w: another slot is offered at %s", storage.ErrDuplicate, slot.WhenUTC)
	}

	prev, prevUpdated := slot.Status, slot.UpdatedAt
	slot.Status = to
	slot.UpdatedAt = st.Now()
	record(ctx, func() {
		slot.Status = prev
		slot.UpdatedAt = prevUpdated
	})
	return nil
}

func (r *Slots) AssignSalesman(ctx context.Context, id string, salesmanID *string) error {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return st.Err
	}

	slot, ok := st.slots[id]
	if !ok {
		return storage.ErrSlotNotFound
	}
	if st.taken(id, salesmanID, slot.WhenUTC, slot.Status) {
		return fmt.Errorf("%w: salesman already has a slot at %s", storage.ErrDuplicate, slot.WhenUTC)
	}

	prev := slot.SalesmanID
	if salesmanID != nil {
		v := *salesmanID
		slot.SalesmanID = &v
	} else {
		slot.SalesmanID = nil
	}
	record(ctx, func() { slot.SalesmanID = prev })
	return nil
}

func (r *Slots) Delete(ctx context.Context, id string) error {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return st.Err
	}

	if !st.deleteSlot(ctx, id) {
		return storage.ErrSlotNotFound
	}
	return nil
}

func (r *Slots) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	return r.deleteWhere(ctx, func(slot *domain.Slot) bool {
		return slot.Status == domain.SlotAvailable && slot.WhenUTC.Before(cutoff)
	})
}

func (r *Slots) DeleteBySalesman(ctx context.Context, salesmanID string, status domain.SlotStatus) (int64, error) {
	return r.deleteWhere(ctx, func(slot *domain.Slot) bool {
		return slot.SalesmanID != nil && *slot.SalesmanID == salesmanID && slot.Status == status
	})
}

func (r *Slots) DetachSalesman(ctx context.Context, salesmanID string) (int64, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return 0, st.Err
	}

	owned := make([]*domain.Slot, 0)
	for _, slot := range st.slots {
		if slot.SalesmanID != nil && *slot.SalesmanID == salesmanID {
			owned = append(owned, slot)
		}
	}
	for _, slot := range owned {
		if st.taken(slot.ID, nil, slot.WhenUTC, slot.Status) {
			return 0, fmt.Errorf("%w: unassigned slot already offered at %s", storage.ErrDuplicate, slot.WhenUTC)
		}
	}

	for _, slot := range owned {
		slot := slot
		prev := slot.SalesmanID
		slot.SalesmanID = nil
		record(ctx, func() { slot.SalesmanID = prev })
	}
	return int64(len(owned)), nil
}

func (r *Slots) deleteWhere(ctx context.Context, match func(*domain.Slot) bool) (int64, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return 0, st.Err
	}

	var n int64
	for id, slot := range st.slots {
		if match(slot) && st.deleteSlot(ctx, id) {
			n++
		}
	}
	return n, nil
}

// deleteSlot removes the slot and its booking. Caller holds s.mu.
func (s *Store) deleteSlot(ctx context.Context, id string) bool {
	slot, ok := s.slots[id]
	if !ok {
		return false
	}
	booking := s.bookings[id]
	delete(s.slots, id)
	delete(s.bookings, id)
	record(ctx, func() {
		s.slots[id] = slot
		if booking != nil {
			s.bookings[id] = booking
		}
	})
	return true
}

// view returns a copy of the slot with its booking lead. Caller holds s.mu.
func (s *Store) view(slot *domain.Slot) *domain.Slot {
	v := clone(slot)
	v.LeadID = nil
	if b, ok := s.bookings[slot.ID]; ok {
		lead := b.LeadID
		v.LeadID = &lead
	}
	return v
}

func sortSlots(slots []*domain.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		if !slots[i].WhenUTC.Equal(slots[j].WhenUTC) {
			return slots[i].WhenUTC.Before(slots[j].WhenUTC)
		}
		return slots[i].ID < slots[j].ID
	})
}

// Bookings implements the booking repository.
type Bookings struct{ s *Store }

func (r *Bookings) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return nil, st.Err
	}

	if _, ok := st.slots[booking.SlotID]; !ok {
		return nil, storage.ErrSlotNotFound
	}
	if _, ok := st.leads[booking.LeadID]; !ok {
		return nil, storage.ErrLeadNotFound
	}
	if _, taken := st.bookings[booking.SlotID]; taken {
		return nil, fmt.Errorf("%w: slot %s already has a booking", storage.ErrDuplicate, booking.SlotID)
	}

	booking.CreatedAt = st.Now()
	st.bookings[booking.SlotID] = clone(booking)
	slotID := booking.SlotID
	record(ctx, func() { delete(st.bookings, slotID) })
	return booking, nil
}

func (r *Bookings) GetBySlot(_ context.Context, slotID string) (*domain.Booking, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return nil, st.Err
	}

	b, ok := st.bookings[slotID]
	if !ok {
		return nil, storage.ErrBookingNotFound
	}
	return clone(b), nil
}

func (r *Bookings) Delete(ctx context.Context, slotID string) error {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return st.Err
	}

	b, ok := st.bookings[slotID]
	if !ok {
		return storage.ErrBookingNotFound
	}
	delete(st.bookings, slotID)
	record(ctx, func() { st.bookings[slotID] = b })
	return nil
}

func (r *Bookings) ListByLead(_ context.Context, leadID string) ([]*domain.Booking, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return nil, st.Err
	}

	result := make([]*domain.Booking, 0)
	for _, b := range st.bookings {
		if b.LeadID == leadID {
			result = append(result, clone(b))
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SlotID < result[j].SlotID })
	return result, nil
}

// Leads implements the lead repository.
type Leads struct{ s *Store }

func (r *Leads) UpsertByEmail(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return nil, st.Err
	}

	now := st.Now()
	for _, existing := range st.leads {
		if existing.Email == lead.Email {
			prev := *existing
			status, id, created := existing.Status, existing.ID, existing.CreatedAt
			*existing = *lead
			existing.ID, existing.Status, existing.CreatedAt, existing.UpdatedAt = id, status, created, now
			record(ctx, func() { *existing = prev })
			return clone(existing), nil
		}
	}

	stored := clone(lead)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	if stored.Status == "" {
		stored.Status = domain.DefaultLeadStatus
	}
	stored.CreatedAt, stored.UpdatedAt = now, now
	st.leads[stored.ID] = stored
	id := stored.ID
	record(ctx, func() { delete(st.leads, id) })
	return clone(stored), nil
}

func (r *Leads) GetByID(_ context.Context, id string) (*domain.Lead, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return nil, st.Err
	}

	lead, ok := st.leads[id]
	if !ok {
		return nil, storage.ErrLeadNotFound
	}
	return clone(lead), nil
}

func (r *Leads) GetByEmail(_ context.Context, email string) (*domain.Lead, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return nil, st.Err
	}

	email = domain.NormalizeEmail(email)
	for _, lead := range st.leads {
		if lead.Email == email {
			return clone(lead), nil
		}
	}
	return nil, storage.ErrLeadNotFound
}

func (r *Leads) List(_ context.Context, f domain.LeadsFilter) ([]*domain.Lead, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return nil, st.Err
	}

	result := make([]*domain.Lead, 0)
	for _, lead := range st.leads {
		if f.Status != nil && lead.Status != *f.Status {
			continue
		}
		if f.MinScore != nil && lead.QualificationScore < *f.MinScore {
			continue
		}
		result = append(result, clone(lead))
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *Leads) Delete(ctx context.Context, id string) error {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return st.Err
	}

	lead, ok := st.leads[id]
	if !ok {
		return storage.ErrLeadNotFound
	}
	delete(st.leads, id)

	removed := make(map[string]*domain.Booking)
	for slotID, b := range st.bookings {
		if b.LeadID == id {
			removed[slotID] = b
			delete(st.bookings, slotID)
		}
	}
	record(ctx, func() {
		st.leads[id] = lead
		for slotID, b := range removed {
			st.bookings[slotID] = b
		}
	})
	return nil
}

// Salesmen implements the salesman repository.
type Salesmen struct{ s *Store }

func (r *Salesmen) Create(ctx context.Context, m *domain.Salesman) (*domain.Salesman, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return nil, st.Err
	}

	for _, existing := range st.salesmen {
		if existing.Email == m.Email {
			return nil, fmt.Errorf("%w: email %s", storage.ErrDuplicate, m.Email)
		}
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.CreatedAt = st.Now()
	m.UpdatedAt = m.CreatedAt
	st.salesmen[m.ID] = clone(m)
	id := m.ID
	record(ctx, func() { delete(st.salesmen, id) })
	return m, nil
}

func (r *Salesmen) GetByID(_ context.Context, id string) (*domain.Salesman, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return nil, st.Err
	}

	m, ok := st.salesmen[id]
	if !ok {
		return nil, storage.ErrSalesmanNotFound
	}
	return clone(m), nil
}

func (r *Salesmen) List(_ context.Context, status *domain.SalesmanStatus) ([]*domain.Salesman, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return nil, st.Err
	}

	result := make([]*domain.Salesman, 0)
	for _, m := range st.salesmen {
		if status != nil && m.Status != *status {
			continue
		}
		result = append(result, clone(m))
	}
	domain.SortByPriority(result)
	return result, nil
}

func (r *Salesmen) ListActive(ctx context.Context) ([]*domain.Salesman, error) {
	status := domain.SalesmanActive
	return r.List(ctx, &status)
}

func (r *Salesmen) Update(ctx context.Context, m *domain.Salesman) (*domain.Salesman, error) {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return nil, st.Err
	}

	existing, ok := st.salesmen[m.ID]
	if !ok {
		return nil, storage.ErrSalesmanNotFound
	}
	prev := *existing
	m.CreatedAt = existing.CreatedAt
	m.UpdatedAt = st.Now()
	*existing = *m
	record(ctx, func() { *existing = prev })
	return clone(existing), nil
}

func (r *Salesmen) Delete(ctx context.Context, id string) error {
	st := r.s
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.Err != nil {
		return st.Err
	}

	m, ok := st.salesmen[id]
	if !ok {
		return storage.ErrSalesmanNotFound
	}
	delete(st.salesmen, id)
	record(ctx, func() { st.salesmen[id] = m })
	return nil
}
