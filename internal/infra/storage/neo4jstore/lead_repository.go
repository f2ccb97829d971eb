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

// LeadRepository persists leads as graph nodes keyed by email.
type LeadRepository struct {
	client graph.Client
	now    func() time.Time
}

// NewLeadRepository instantiates a LeadRepository backed by the supplied graph client.
func NewLeadRepository(client graph.Client) *LeadRepository {
	return &LeadRepository{client: client, now: time.Now}
}

// UpsertByEmail creates the lead or refreshes the one with the same email.
// The status of an existing lead is kept.
func (r *LeadRepository) UpsertByEmail(ctx context.Context, lead *domain.Lead) (*domain.Lead, error) {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.Status == "" {
		lead.Status = domain.DefaultLeadStatus
	}

	params := map[string]any{
		"id":                 lead.ID,
		"email":              lead.Email,
		"name":               lead.Name,
		"phone":              lead.Phone,
		"service":            lead.Service,
		"timeline":           lead.Timeline,
		"financingStatus":    lead.FinancingStatus,
		"lotStatus":          lead.LotStatus,
		"qualificationScore": int64(lead.QualificationScore),
		"status":             lead.Status,
		"now":                r.now().UTC(),
	}

	res, err := r.client.ExecuteWrite(ctx, upsertLeadCypher, params)
	if err != nil {
		return nil, wrap("UpsertLead", err)
	}

	rec := res.First()
	if rec == nil {
		return nil, fmt.Errorf("%w: UpsertLead: no record returned", ErrQuery)
	}
	return leadFromRecord(rec), nil
}

// GetByID returns the lead with the given id.
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*domain.Lead, error) {
	return r.getOne(ctx, getLeadByIDCypher, map[string]any{"id": id})
}

// GetByEmail returns the lead with the given email.
func (r *LeadRepository) GetByEmail(ctx context.Context, email string) (*domain.Lead, error) {
	return r.getOne(ctx, getLeadByEmailCypher, map[string]any{"email": domain.NormalizeEmail(email)})
}

// List returns leads, newest first.
func (r *LeadRepository) List(ctx context.Context, filter domain.LeadsFilter) ([]*domain.Lead, error) {
	var minScore any
	if filter.MinScore != nil {
		minScore = int64(*filter.MinScore)
	}

	params := map[string]any{
		"status":   optionalString(filter.Status),
		"minScore": minScore,
	}

	res, err := r.client.ExecuteRead(ctx, listLeadsCypher, params)
	if err != nil {
		return nil, wrap("ListLeads", err)
	}

	leads := make([]*domain.Lead, 0, len(res.Records))
	for _, rec := range res.Records {
		leads = append(leads, leadFromRecord(rec))
	}
	return leads, nil
}

// Delete removes the lead together with its bookings.
func (r *LeadRepository) Delete(ctx context.Context, id string) error {
	res, err := r.client.ExecuteWrite(ctx, deleteLeadCypher, map[string]any{"id": id})
	if err != nil {
		return wrap("DeleteLead", err)
	}
	if toInt(res.First()["deleted"]) == 0 {
		return storage.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepository) getOne(ctx context.Context, cypher string, params map[string]any) (*domain.Lead, error) {
	res, err := r.client.ExecuteRead(ctx, cypher, params)
	if err != nil {
		return nil, wrap("GetLead", err)
	}

	rec := res.First()
	if rec == nil {
		return nil, storage.ErrLeadNotFound
	}
	return leadFromRecord(rec), nil
}

func leadFromRecord(rec graph.Record) *domain.Lead {
	return &domain.Lead{
		ID:                 toString(rec["id"]),
		Name:               toString(rec["name"]),
		Email:              toString(rec["email"]),
		Phone:              toString(rec["phone"]),
		Service:            toString(rec["service"]),
		Timeline:           toString(rec["timeline"]),
		FinancingStatus:    toString(rec["financingStatus"]),
		LotStatus:          toString(rec["lotStatus"]),
		QualificationScore: toInt(rec["qualificationScore"]),
		Status:             toString(rec["status"]),
		CreatedAt:          toTime(rec["createdAt"]),
		UpdatedAt:          toTime(rec["updatedAt"]),
	}
}

const leadProjection = `
RETURN l.id AS id,
       l.name AS name,
       l.email AS email,
       l.phone AS phone,
       l.service AS service,
       l.timeline AS timeline,
       l.financingStatus AS financingStatus,
       l.lotStatus AS lotStatus,
       l.qualificationScore AS qualificationScore,
       l.status AS status,
       l.createdAt AS createdAt,
       l.updatedAt AS updatedAt`

const upsertLeadCypher = `
MERGE (l:Lead {email: $email})
ON CREATE SET l.id = $id, l.status = $status, l.createdAt = $now
SET l.name = $name,
	l.phone = $phone,
	l.service = $service,
	l.timeline = $timeline,
	l.financingStatus = $financingStatus,
	l.lotStatus = $lotStatus,
	l.qualificationScore = $qualificationScore,
	l.updatedAt = $now` + leadProjection

const getLeadByIDCypher = `
MATCH (l:Lead {id: $id})` + leadProjection

const getLeadByEmailCypher = `
MATCH (l:Lead {email: $email})` + leadProjection

const listLeadsCypher = `
MATCH (l:Lead)
WHERE ($status IS NULL OR l.status = $status)
  AND ($minScore IS NULL OR l.qualificationScore >= $minScore)` + leadProjection + `
ORDER BY createdAt DESC, id ASC`

const deleteLeadCypher = `
MATCH (l:Lead {id: $id})
DETACH DELETE l
RETURN count(*) AS deleted
`
