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

// SalesmanRepository persists salesmen as graph nodes.
type SalesmanRepository struct {
	client graph.Client
	now    func() time.Time
}

// NewSalesmanRepository instantiates a SalesmanRepository backed by the supplied graph client.
func NewSalesmanRepository(client graph.Client) *SalesmanRepository {
	return &SalesmanRepository{client: client, now: time.Now}
}

// Create stores a new salesman. Emails are unique (storage.ErrDuplicate).
func (r *SalesmanRepository) Create(ctx context.Context, salesman *domain.Salesman) (*domain.Salesman, error) {
	if salesman.ID == "" {
		salesman.ID = uuid.NewString()
	}
	now := r.now().UTC()

	params := map[string]any{
		"id":       salesman.ID,
		"name":     salesman.Name,
		"email":    salesman.Email,
		"phone":    salesman.Phone,
		"priority": int64(salesman.Priority),
		"status":   string(salesman.Status),
		"now":      now,
	}

	if _, err := r.client.ExecuteWrite(ctx, createSalesmanCypher, params); err != nil {
		return nil, wrap("CreateSalesman", err)
	}

	salesman.CreatedAt = now
	salesman.UpdatedAt = now
	return salesman, nil
}

// GetByID returns the salesman with the given id.
func (r *SalesmanRepository) GetByID(ctx context.Context, id string) (*domain.Salesman, error) {
	res, err := r.client.ExecuteRead(ctx, getSalesmanCypher, map[string]any{"id": id})
	if err != nil {
		return nil, wrap("GetSalesman", err)
	}

	rec := res.First()
	if rec == nil {
		return nil, storage.ErrSalesmanNotFound
	}
	return salesmanFromRecord(rec), nil
}

// List returns salesmen ordered by priority, optionally filtered by status.
func (r *SalesmanRepository) List(ctx context.Context, status *domain.SalesmanStatus) ([]*domain.Salesman, error) {
	var statusParam any
	if status != nil {
		statusParam = string(*status)
	}

	res, err := r.client.ExecuteRead(ctx, listSalesmenCypher, map[string]any{"status": statusParam})
	if err != nil {
		return nil, wrap("ListSalesmen", err)
	}

	salesmen := make([]*domain.Salesman, 0, len(res.Records))
	for _, rec := range res.Records {
		salesmen = append(salesmen, salesmanFromRecord(rec))
	}
	return salesmen, nil
}

// ListActive returns active salesmen, lowest priority first.
func (r *SalesmanRepository) ListActive(ctx context.Context) ([]*domain.Salesman, error) {
	status := domain.SalesmanActive
	return r.List(ctx, &status)
}

// Update overwrites the salesman's attributes.
func (r *SalesmanRepository) Update(ctx context.Context, salesman *domain.Salesman) (*domain.Salesman, error) {
	params := map[string]any{
		"id":       salesman.ID,
		"name":     salesman.Name,
		"email":    salesman.Email,
		"phone":    salesman.Phone,
		"priority": int64(salesman.Priority),
		"status":   string(salesman.Status),
		"now":      r.now().UTC(),
	}

	res, err := r.client.ExecuteWrite(ctx, updateSalesmanCypher, params)
	if err != nil {
		return nil, wrap("UpdateSalesman", err)
	}

	rec := res.First()
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", storage.ErrSalesmanNotFound, salesman.ID)
	}
	return salesmanFromRecord(rec), nil
}

// Delete removes the salesman and its OFFERS_APPOINTMENT relationships.
func (r *SalesmanRepository) Delete(ctx context.Context, id string) error {
	res, err := r.client.ExecuteWrite(ctx, deleteSalesmanCypher, map[string]any{"id": id})
	if err != nil {
		return wrap("DeleteSalesman", err)
	}
	if toInt(res.First()["deleted"]) == 0 {
		return storage.ErrSalesmanNotFound
	}
	return nil
}

func salesmanFromRecord(rec graph.Record) *domain.Salesman {
	return &domain.Salesman{
		ID:        toString(rec["id"]),
		Name:      toString(rec["name"]),
		Email:     toString(rec["email"]),
		Phone:     toString(rec["phone"]),
		Priority:  toInt(rec["priority"]),
		Status:    domain.SalesmanStatus(toString(rec["status"])),
		CreatedAt: toTime(rec["createdAt"]),
		UpdatedAt: toTime(rec["updatedAt"]),
	}
}

const salesmanProjection = `
RETURN m.id AS id,
       m.name AS name,
       m.email AS email,
       m.phone AS phone,
       m.priority AS priority,
       m.status AS status,
       m.createdAt AS createdAt,
       m.updatedAt AS updatedAt`

const createSalesmanCypher = `
CREATE (m:Salesman {
	id: $id,
	name: $name,
	email: $email,
	phone: $phone,
	priority: $priority,
	status: $status,
	createdAt: $now,
	updatedAt: $now
})
RETURN m.id AS id
`

const getSalesmanCypher = `
MATCH (m:Salesman {id: $id})` + salesmanProjection

const listSalesmenCypher = `
MATCH (m:Salesman)
WHERE $status IS NULL OR m.status = $status` + salesmanProjection + `
ORDER BY priority ASC, name ASC, id ASC`

const updateSalesmanCypher = `
MATCH (m:Salesman {id: $id})
SET m.name = $name,
	m.email = $email,
	m.phone = $phone,
	m.priority = $priority,
	m.status = $status,
	m.updatedAt = $now` + salesmanProjection

const deleteSalesmanCypher = `
MATCH (m:Salesman {id: $id})
DETACH DELETE m
RETURN count(*) AS deleted
`
