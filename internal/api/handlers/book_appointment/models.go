package book_appointment

import (
	"time"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	"github.com/m04kA/MHS-BookingService/internal/domain"
	bookAppointment "github.com/m04kA/MHS-BookingService/internal/usecase/book_appointment"
)

// BookRequest HTTP request model
type BookRequest struct {
	WhenUTC         string  `json:"whenUtc"` // RFC3339
	SalesmanID      *string `json:"salesmanId,omitempty"`
	Name            string  `json:"name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	Service         string  `json:"service"`
	Timeline        string  `json:"timeline"`
	FinancingStatus string  `json:"financingStatus"`
	LotStatus       string  `json:"lotStatus"`
}

// BookingResponse HTTP response model
type BookingResponse struct {
	SlotID             string  `json:"slotId"`
	SalesmanID         *string `json:"salesmanId"`
	LeadID             string  `json:"leadId"`
	WhenUTC            string  `json:"whenUtc"`
	Status             string  `json:"status"`
	QualificationScore int     `json:"qualificationScore"`
	BookedAt           string  `json:"bookedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *BookRequest) ToUseCaseRequest() (*bookAppointment.Request, error) {
	when, err := time.Parse(time.RFC3339, r.WhenUTC)
	if err != nil {
		return nil, err
	}

	return &bookAppointment.Request{
		WhenUTC:    when.UTC(),
		SalesmanID: r.SalesmanID,
		Contact: domain.Contact{
			Name:            r.Name,
			Email:           r.Email,
			Phone:           r.Phone,
			Service:         r.Service,
			Timeline:        r.Timeline,
			FinancingStatus: r.FinancingStatus,
			LotStatus:       r.LotStatus,
		},
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *bookAppointment.Response) *BookingResponse {
	return &BookingResponse{
		SlotID:             resp.SlotID,
		SalesmanID:         resp.SalesmanID,
		LeadID:             resp.LeadID,
		WhenUTC:            handlers.FormatTime(resp.WhenUTC),
		Status:             string(domain.SlotBooked),
		QualificationScore: resp.QualificationScore,
		BookedAt:           handlers.FormatTime(resp.BookedAt),
	}
}
