package get_free_slots

import (
	"net/http"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	getFreeSlots "github.com/m04kA/MHS-BookingService/internal/usecase/get_free_slots"
)

// FreeSlotResponse свободный слот
type FreeSlotResponse struct {
	ID         string  `json:"id"`
	SalesmanID *string `json:"salesmanId"`
	WhenUTC    string  `json:"whenUtc"`
}

// FreeSlotsResponse HTTP response model
type FreeSlotsResponse struct {
	From  string             `json:"from"`
	To    string             `json:"to"`
	Slots []FreeSlotResponse `json:"slots"`
}

// ToUseCaseRequest собирает запрос use case из query параметров
func ToUseCaseRequest(r *http.Request) (*getFreeSlots.Request, error) {
	from, err := handlers.QueryTime(r, "from")
	if err != nil {
		return nil, err
	}
	to, err := handlers.QueryTime(r, "to")
	if err != nil {
		return nil, err
	}
	limit, err := handlers.QueryInt(r, "limit")
	if err != nil {
		return nil, err
	}

	req := &getFreeSlots.Request{
		From:       from,
		To:         to,
		SalesmanID: handlers.QueryString(r, "salesmanId"),
	}
	if limit != nil {
		req.Limit = *limit
	}
	return req, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getFreeSlots.Response) *FreeSlotsResponse {
	slots := make([]FreeSlotResponse, 0, len(resp.Slots))
	for _, s := range resp.Slots {
		slots = append(slots, FreeSlotResponse{
			ID:         s.ID,
			SalesmanID: s.SalesmanID,
			WhenUTC:    handlers.FormatTime(s.WhenUTC),
		})
	}
	return &FreeSlotsResponse{
		From:  handlers.FormatTime(resp.From),
		To:    handlers.FormatTime(resp.To),
		Slots: slots,
	}
}
