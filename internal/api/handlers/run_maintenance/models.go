package run_maintenance

import (
	"github.com/m04kA/MHS-BookingService/internal/api/handlers"
	"github.com/m04kA/MHS-BookingService/internal/usecase/maintenance"
)

// ReportResponse HTTP response model
type ReportResponse struct {
	RanAt             string `json:"ranAt"`
	Pruned            int64  `json:"pruned"`
	Assigned          int    `json:"assigned"`
	Unassigned        int    `json:"unassigned"`
	DuplicatesRemoved int    `json:"duplicatesRemoved"`
}

// FromReport конвертирует отчет use case в HTTP response
func FromReport(r *maintenance.Report) *ReportResponse {
	return &ReportResponse{
		RanAt:             handlers.FormatTime(r.RanAt),
		Pruned:            r.Pruned,
		Assigned:          r.Assigned,
		Unassigned:        r.Unassigned,
		DuplicatesRemoved: r.DuplicatesRemoved,
	}
}
