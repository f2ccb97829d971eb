package slots

import (
	"fmt"
	"net/http"

	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	"github.com/m04kA/MHS-BookingService/internal/domain"
)

// UpdateStatusRequest HTTP request model
type UpdateStatusRequest struct {
	Status string `json:"status"` // completed | cancelled
}

// ToFilter собирает фильтр из query параметров
func ToFilter(r *http.Request) (domain.SlotsFilter, error) {
	var filter domain.SlotsFilter

	if raw := handlers.QueryString(r, "status"); raw != nil {
		status := domain.SlotStatus(*raw)
		if !status.Valid() {
			return filter, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, *raw)
		}
		filter.Status = &status
	}

	from, err := handlers.QueryTime(r, "from")
	if err != nil {
		return filter, err
	}
	to, err := handlers.QueryTime(r, "to")
	if err != nil {
		return filter, err
	}
	unassigned, err := handlers.QueryBool(r, "unassigned")
	if err != nil {
		return filter, err
	}

	filter.From = from
	filter.To = to
	filter.Unassigned = unassigned
	filter.SalesmanID = handlers.QueryString(r, "salesmanId")
	filter.LeadID = handlers.QueryString(r, "leadId")
	return filter, nil
}
