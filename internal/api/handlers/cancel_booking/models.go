package cancel_booking

import cancelBooking "github.com/m04kA/MHS-BookingService/internal/usecase/cancel_booking"

// CancelResponse HTTP response model
type CancelResponse struct {
	SlotID string  `json:"slotId"`
	LeadID *string `json:"leadId"`
	Status string  `json:"status"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *cancelBooking.Response) *CancelResponse {
	return &CancelResponse{
		SlotID: resp.SlotID,
		LeadID: resp.LeadID,
		Status: string(resp.Status),
	}
}
