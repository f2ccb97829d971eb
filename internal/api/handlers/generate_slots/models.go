package generate_slots

import (
	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	generateSlots "github.com/m04kA/MHS-BookingService/internal/usecase/generate_slots"
)

// GenerateRequest HTTP request model, все поля необязательны
type GenerateRequest struct {
	Strategy   string  `json:"strategy,omitempty"` // default | round_robin | explicit
	SalesmanID *string `json:"salesmanId,omitempty"`
	Days       *int    `json:"days,omitempty"`
	DryRun     bool    `json:"dryRun,omitempty"`
}

// PlannedSlotResponse слот, созданный или запланированный генерацией
type PlannedSlotResponse struct {
	WhenUTC    string  `json:"whenUtc"`
	SalesmanID *string `json:"salesmanId"`
	Created    bool    `json:"created"`
}

// GenerateResponse HTTP response model
type GenerateResponse struct {
	Strategy   string                `json:"strategy"`
	DryRun     bool                  `json:"dryRun"`
	Candidates int                   `json:"candidates"`
	Created    int                   `json:"created"`
	Existing   int                   `json:"existing"`
	Unassigned int                   `json:"unassigned"`
	Slots      []PlannedSlotResponse `json:"slots"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *GenerateRequest) ToUseCaseRequest() *generateSlots.Request {
	return &generateSlots.Request{
		Strategy:   generateSlots.Strategy(r.Strategy),
		SalesmanID: r.SalesmanID,
		Days:       r.Days,
		DryRun:     r.DryRun,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *generateSlots.Response) *GenerateResponse {
	slots := make([]PlannedSlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, PlannedSlotResponse{
			WhenUTC:    handlers.FormatTime(s.WhenUTC),
			SalesmanID: s.SalesmanID,
			Created:    s.Created,
		})
	}
	return &GenerateResponse{
		Strategy:   string(resp.Strategy),
		DryRun:     resp.DryRun,
		Candidates: resp.Candidates,
		Created:    resp.Created,
		Existing:   resp.Existing,
		Unassigned: resp.Unassigned,
		Slots:      slots,
	}
}
