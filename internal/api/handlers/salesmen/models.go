package salesmen

import (
	"time"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	"github.com/m04kA/MHS-BookingService/internal/domain"
	salesmenService "github.com/m04kA/MHS-BookingService/internal/service/salesmen"
)

// CreateRequest HTTP request model создания менеджера
type CreateRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	Priority *int    `json:"priority,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// UpdateRequest HTTP request model частичного обновления
type UpdateRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Priority *int    `json:"priority,omitempty"`
	Status   *string `json:"status,omitempty"`
}

// AvailabilityRequest моменты времени в формате RFC3339
type AvailabilityRequest struct {
	Instants []string `json:"instants"`
}

// SalesmanResponse HTTP response model
type SalesmanResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Priority  int    `json:"priority"`
	Status    string `json:"status"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// AvailabilityResponse HTTP response model
type AvailabilityResponse struct {
	Created  int      `json:"created"`
	Existing int      `json:"existing"`
	Instants []string `json:"instants"`
}

func (r *CreateRequest) toService() salesmenService.CreateRequest {
	return salesmenService.CreateRequest{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Priority: r.Priority,
		Status:   r.Status,
	}
}

func (r *UpdateRequest) toService() salesmenService.UpdateRequest {
	return salesmenService.UpdateRequest{
		Name:     r.Name,
		Email:    r.Email,
		Phone:    r.Phone,
		Priority: r.Priority,
		Status:   r.Status,
	}
}

// ParseInstants разбирает моменты времени и приводит их к UTC
func (r *AvailabilityRequest) ParseInstants() ([]time.Time, error) {
	result := make([]time.Time, 0, len(r.Instants))
	for _, raw := range r.Instants {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, err
		}
		result = append(result, t.UTC())
	}
	return result, nil
}

// FromSalesman конвертирует менеджера в HTTP response
func FromSalesman(m *domain.Salesman) SalesmanResponse {
	return SalesmanResponse{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Phone:     m.Phone,
		Priority:  m.Priority,
		Status:    string(m.Status),
		CreatedAt: handlers.FormatTime(m.CreatedAt),
		UpdatedAt: handlers.FormatTime(m.UpdatedAt),
	}
}

// FromAvailability конвертирует результат добавления доступности
func FromAvailability(res *salesmenService.AvailabilityResult) AvailabilityResponse {
	instants := make([]string, 0, len(res.Instants))
	for _, t := range res.Instants {
		instants = append(instants, handlers.FormatTime(t))
	}
	return AvailabilityResponse{
		Created:  res.Created,
		Existing: res.Existing,
		Instants: instants,
	}
}
