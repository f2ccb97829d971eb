package leads

import (
	"net/http"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	"github.com/m04kA/MHS-BookingService/internal/domain"
)

// SubmitRequest HTTP request model заявки
type SubmitRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Phone           string `json:"phone"`
	Service         string `json:"service"`
	Timeline        string `json:"timeline"`
	FinancingStatus string `json:"financingStatus"`
	LotStatus       string `json:"lotStatus"`
}

// LeadResponse HTTP response model
type LeadResponse struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	Service            string `json:"service"`
	Timeline           string `json:"timeline"`
	FinancingStatus    string `json:"financingStatus"`
	LotStatus          string `json:"lotStatus"`
	QualificationScore int    `json:"qualificationScore"`
	Status             string `json:"status"`
	CreatedAt          string `json:"createdAt"`
	UpdatedAt          string `json:"updatedAt"`
}

// DeleteResponse HTTP response model удаления
type DeleteResponse struct {
	ID            string `json:"id"`
	ReleasedSlots int    `json:"releasedSlots"`
}

// ToContact конвертирует HTTP запрос в доменную модель
func (r *SubmitRequest) ToContact() domain.Contact {
	return domain.Contact{
		Name:            r.Name,
		Email:           r.Email,
		Phone:           r.Phone,
		Service:         r.Service,
		Timeline:        r.Timeline,
		FinancingStatus: r.FinancingStatus,
		LotStatus:       r.LotStatus,
	}
}

// ToFilter собирает фильтр из query параметров
func ToFilter(r *http.Request) (domain.LeadsFilter, error) {
	minScore, err := handlers.QueryInt(r, "minScore")
	if err != nil {
		return domain.LeadsFilter{}, err
	}
	return domain.LeadsFilter{
		Status:   handlers.QueryString(r, "status"),
		MinScore: minScore,
	}, nil
}

// FromLead конвертирует лида в HTTP response
func FromLead(l *domain.Lead) LeadResponse {
	return LeadResponse{
		ID:                 l.ID,
		Name:               l.Name,
		Email:              l.Email,
		Phone:              l.Phone,
		Service:            l.Service,
		Timeline:           l.Timeline,
		FinancingStatus:    l.FinancingStatus,
		LotStatus:          l.LotStatus,
		QualificationScore: l.QualificationScore,
		Status:             l.Status,
		CreatedAt:          handlers.FormatTime(l.CreatedAt),
		UpdatedAt:          handlers.FormatTime(l.UpdatedAt),
	}
}
