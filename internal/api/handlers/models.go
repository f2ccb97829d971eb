package handlers

import (
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
)

// SlotResponse HTTP модель слота
type SlotResponse struct {
	ID         string  `json:"id"`
	SalesmanID *string `json:"salesmanId"`
	LeadID     *string `json:"leadId"`
	WhenUTC    string  `json:"whenUtc"`
	Status     string  `json:"status"`
	CreatedAt  string  `json:"createdAt,omitempty"`
	UpdatedAt  string  `json:"updatedAt,omitempty"`
}

// NewSlotResponse конвертирует доменный слот в HTTP модель
func NewSlotResponse(s *domain.Slot) SlotResponse {
	return SlotResponse{
		ID:         s.ID,
		SalesmanID: s.SalesmanID,
		LeadID:     s.LeadID,
		WhenUTC:    FormatTime(s.WhenUTC),
		Status:     string(s.Status),
		CreatedAt:  formatOptional(s.CreatedAt),
		UpdatedAt:  formatOptional(s.UpdatedAt),
	}
}

// NewSlotsResponse конвертирует список слотов
func NewSlotsResponse(slots []*domain.Slot) []SlotResponse {
	result := make([]SlotResponse, 0, len(slots))
	for _, s := range slots {
		result = append(result, NewSlotResponse(s))
	}
	return result
}

func formatOptional(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return FormatTime(t)
}
