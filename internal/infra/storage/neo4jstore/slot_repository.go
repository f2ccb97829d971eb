package neo4jstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/graph"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
)

// SlotRepository persists appointment slots as graph nodes.
type SlotRepository struct {
	client graph.Client
	now    func() time.Time
}

// NewSlotRepository instantiates a SlotRepository backed by the supplied graph client.
func NewSlotRepository(client graph.Client) *SlotRepository {
	return &SlotRepository{client: client, now: time.Now}
}

// Upsert creates the slot unless one already exists for the same salesman and instant.
func (r *SlotRepository) Upsert(ctx context.Context, slot *domain.Slot) (bool, error) {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.Status == "" {
		slot.Status = domain.SlotAvailable
	}
	slot.WhenUTC = slot.WhenUTC.UTC()
	now := r.now().UTC()

	params := map[string]any{
		"slotKey":    slotKey(slot.SalesmanID, slot.WhenUTC),
		"id":         slot.ID,
		"salesmanId": optionalString(slot.SalesmanID),
		"whenUtc":    slot.WhenUTC,
		"whenKey":    slot.WhenUTC.Format(timeKeyLayout),
		"status":     string(slot.Status),
		"now":        now,
	}

	res, err := r.client.ExecuteWrite(ctx, upsertSlotCypher, params)
	if err != nil {
		return false, wrap("Upsert", err)
	}

	rec := res.First()
	if rec == nil {
		return false, fmt.Errorf("%w: Upsert: no record returned", ErrQuery)
	}
	if toString(rec["id"]) != slot.ID {
		return false, nil
	}

	slot.CreatedAt = toTime(rec["createdAt"])
	slot.UpdatedAt = toTime(rec["updatedAt"])
	return true, nil
}

// GetByID returns the slot with its booking lead, if any.
func (r *SlotRepository) GetByID(ctx context.Context, id string) (*domain.Slot, error) {
	res, err := r.client.ExecuteRead(ctx, getSlotCypher, map[string]any{"id": id})
	if err != nil {
		return nil, wrap("GetByID", err)
	}

	rec := res.First()
	if rec == nil {
		return nil, storage.ErrSlotNotFound
	}
	return slotFromRecord(rec), nil
}

// FindFree returns available slots without a booking inside [From, To], earliest first.
func (r *SlotRepository) FindFree(ctx context.Context, filter domain.FreeSlotsFilter) ([]*domain.Slot, error) {
	params := map[string]any{
		"status":     string(domain.SlotAvailable),
		"from":       optionalTime(&filter.From),
		"to":         optionalTime(&filter.To),
		"salesmanId": optionalString(filter.SalesmanID),
	}

	cypher := findFreeSlotsCypher
	if filter.Limit > 0 {
		cypher += "\nLIMIT $limit"
		params["limit"] = int64(filter.Limit)
	}

	res, err := r.client.ExecuteRead(ctx, cypher, params)
	if err != nil {
		return nil, wrap("FindFree", err)
	}
	return slotsFromResult(res), nil
}

// List returns slots matching the administrative filter.
func (r *SlotRepository) List(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error) {
	var status any
	if filter.Status != nil {
		status = string(*filter.Status)
	}

	params := map[string]any{
		"status":     status,
		"salesmanId": optionalString(filter.SalesmanID),
		"unassigned": filter.Unassigned,
		"leadId":     optionalString(filter.LeadID),
		"from":       optionalTime(filter.From),
		"to":         optionalTime(filter.To),
	}

	res, err := r.client.ExecuteRead(ctx, listSlotsCypher, params)
	if err != nil {
		return nil, wrap("List", err)
	}
	return slotsFromResult(res), nil
}

// Transition moves the slot from one status to another. The slot node is write-locked
// before its status is re-read, so concurrent transitions from the same status
// cannot both succeed.
func (r *SlotRepository) Transition(ctx context.Context, id string, from, to domain.SlotStatus) error {
	params := map[string]any{
		"id":   id,
		"from": string(from),
		"to":   string(to),
		"now":  r.now().UTC(),
	}

	res, err := r.client.ExecuteWrite(ctx, transitionSlotCypher, params)
	if err != nil {
		return wrap("Transition", err)
	}

	rec := res.First()
	if rec == nil {
		return storage.ErrSlotNotFound
	}
	if !toBool(rec["matched"]) {
		return fmt.Errorf("%w: slot %s is not %s", storage.ErrTransitionConflict, id, from)
	}
	return nil
}

// AssignSalesman re-links the slot to a salesman; nil detaches it.
func (r *SlotRepository) AssignSalesman(ctx context.Context, id string, salesmanID *string) error {
	params := map[string]any{
		"id":         id,
		"salesmanId": optionalString(salesmanID),
		"now":        r.now().UTC(),
	}

	res, err := r.client.ExecuteWrite(ctx, assignSalesmanCypher, params)
	if err != nil {
		return wrap("AssignSalesman", err)
	}
	if res.First() == nil {
		return storage.ErrSlotNotFound
	}
	return nil
}

// Delete removes the slot and its relationships.
func (r *SlotRepository) Delete(ctx context.Context, id string) error {
	res, err := r.client.ExecuteWrite(ctx, deleteSlotCypher, map[string]any{"id": id})
	if err != nil {
		return wrap("Delete", err)
	}
	if toInt(res.First()["deleted"]) == 0 {
		return storage.ErrSlotNotFound
	}
	return nil
}

// DeleteExpired removes available slots scheduled before cutoff.
func (r *SlotRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	params := map[string]any{
		"status": string(domain.SlotAvailable),
		"cutoff": cutoff.UTC(),
	}

	res, err := r.client.ExecuteWrite(ctx, deleteExpiredSlotsCypher, params)
	if err != nil {
		return 0, wrap("DeleteExpired", err)
	}
	return int64(toInt(res.First()["deleted"])), nil
}

// DeleteBySalesman removes the salesman's slots in the given status.
func (r *SlotRepository) DeleteBySalesman(ctx context.Context, salesmanID string, status domain.SlotStatus) (int64, error) {
	params := map[string]any{
		"salesmanId": salesmanID,
		"status":     string(status),
	}

	res, err := r.client.ExecuteWrite(ctx, deleteSalesmanSlotsCypher, params)
	if err != nil {
		return 0, wrap("DeleteBySalesman", err)
	}
	return int64(toInt(res.First()["deleted"])), nil
}

// DetachSalesman unlinks every slot of the salesman. Detached slots that are not
// available leave the (salesman, instant) uniqueness key space.
func (r *SlotRepository) DetachSalesman(ctx context.Context, salesmanID string) (int64, error) {
	params := map[string]any{
		"salesmanId": salesmanID,
		"now":        r.now().UTC(),
	}

	res, err := r.client.ExecuteWrite(ctx, detachSalesmanCypher, params)
	if err != nil {
		return 0, wrap("DetachSalesman", err)
	}
	return int64(toInt(res.First()["detached"])), nil
}

func slotsFromResult(res graph.Result) []*domain.Slot {
	slots := make([]*domain.Slot, 0, len(res.Records))
	for _, rec := range res.Records {
		slots = append(slots, slotFromRecord(rec))
	}
	return slots
}

func slotFromRecord(rec graph.Record) *domain.Slot {
	return &domain.Slot{
		ID:         toString(rec["id"]),
		SalesmanID: toStringPtr(rec["salesmanId"]),
		LeadID:     toStringPtr(rec["leadId"]),
		WhenUTC:    toTime(rec["whenUtc"]),
		Status:     domain.SlotStatus(toString(rec["status"])),
		CreatedAt:  toTime(rec["createdAt"]),
		UpdatedAt:  toTime(rec["updatedAt"]),
	}
}

const slotProjection = `
RETURN s.id AS id,
       s.salesmanId AS salesmanId,
       s.whenUtc AS whenUtc,
       s.status AS status,
       s.createdAt AS createdAt,
       s.updatedAt AS updatedAt,
       l.id AS leadId`

// slotKeyExpr recomputes s.slotKey after a status or salesman change. A detached slot
// outside available keeps the lead's history and is keyed by its own id.
const slotKeyExpr = `CASE WHEN s.salesmanId IS NULL AND s.status <> 'available'
	THEN '|' + s.whenKey + '|' + s.id
	ELSE coalesce(s.salesmanId, '') + '|' + s.whenKey END`

const upsertSlotCypher = `
MERGE (s:Slot {slotKey: $slotKey})
ON CREATE SET s.id = $id,
	s.salesmanId = $salesmanId,
	s.whenUtc = $whenUtc,
	s.whenKey = $whenKey,
	s.status = $status,
	s.createdAt = $now,
	s.updatedAt = $now
WITH s
OPTIONAL MATCH (m:Salesman {id: s.salesmanId})
FOREACH (_ IN CASE WHEN m IS NULL THEN [] ELSE [1] END |
	MERGE (m)-[:OFFERS_APPOINTMENT]->(s)
)
RETURN s.id AS id, s.createdAt AS createdAt, s.updatedAt AS updatedAt
`

const getSlotCypher = `
MATCH (s:Slot {id: $id})
OPTIONAL MATCH (l:Lead)-[:HAS_APPOINTMENT]->(s)` + slotProjection

const findFreeSlotsCypher = `
MATCH (s:Slot {status: $status})
WHERE ($from IS NULL OR s.whenUtc >= $from)
  AND ($to IS NULL OR s.whenUtc <= $to)
  AND ($salesmanId IS NULL OR s.salesmanId = $salesmanId)
  AND NOT EXISTS { (:Lead)-[:HAS_APPOINTMENT]->(s) }
OPTIONAL MATCH (l:Lead)-[:HAS_APPOINTMENT]->(s)` + slotProjection + `
ORDER BY whenUtc ASC, id ASC`

const listSlotsCypher = `
MATCH (s:Slot)
OPTIONAL MATCH (l:Lead)-[:HAS_APPOINTMENT]->(s)
WITH s, l
WHERE ($status IS NULL OR s.status = $status)
  AND ($salesmanId IS NULL OR s.salesmanId = $salesmanId)
  AND (NOT $unassigned OR s.salesmanId IS NULL)
  AND ($leadId IS NULL OR l.id = $leadId)
  AND ($from IS NULL OR s.whenUtc >= $from)
  AND ($to IS NULL OR s.whenUtc <= $to)` + slotProjection + `
ORDER BY whenUtc ASC, id ASC`

const transitionSlotCypher = `
MATCH (s:Slot {id: $id})
SET s._lock = true
WITH s
REMOVE s._lock
WITH s, s.status = $from AS matched
FOREACH (_ IN CASE WHEN matched THEN [1] ELSE [] END |
	SET s.status = $to, s.updatedAt = $now
)
WITH s, matched
SET s.slotKey = ` + slotKeyExpr + `
RETURN matched
`

const assignSalesmanCypher = `
MATCH (s:Slot {id: $id})
OPTIONAL MATCH (:Salesman)-[old:OFFERS_APPOINTMENT]->(s)
DELETE old
WITH DISTINCT s
SET s.salesmanId = $salesmanId,
	s.updatedAt = $now
SET s.slotKey = ` + slotKeyExpr + `
WITH s
OPTIONAL MATCH (m:Salesman {id: $salesmanId})
FOREACH (_ IN CASE WHEN m IS NULL THEN [] ELSE [1] END |
	MERGE (m)-[:OFFERS_APPOINTMENT]->(s)
)
RETURN s.id AS id
`

const deleteSlotCypher = `
MATCH (s:Slot {id: $id})
DETACH DELETE s
RETURN count(*) AS deleted
`

const deleteExpiredSlotsCypher = `
MATCH (s:Slot {status: $status})
WHERE s.whenUtc < $cutoff
DETACH DELETE s
RETURN count(*) AS deleted
`

const deleteSalesmanSlotsCypher = `
MATCH (s:Slot {salesmanId: $salesmanId, status: $status})
DETACH DELETE s
RETURN count(*) AS deleted
`

const detachSalesmanCypher = `
MATCH (s:Slot {salesmanId: $salesmanId})
OPTIONAL MATCH (:Salesman)-[r:OFFERS_APPOINTMENT]->(s)
DELETE r
WITH DISTINCT s
SET s.salesmanId = null,
	s.updatedAt = $now
SET s.slotKey = ` + slotKeyExpr + `
RETURN count(s) AS detached
`
