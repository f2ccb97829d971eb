package get_free_slots

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
)

// UseCase use case получения свободных слотов
type UseCase struct {
	slotRepo     SlotRepository
	minLeadTime  time.Duration
	horizon      time.Duration
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(slotRepo SlotRepository, minLeadTime time.Duration, horizonDays int, logger Logger) *UseCase {
	if horizonDays <= 0 {
		horizonDays = domain.DefaultHorizonDays
	}
	return &UseCase{
		slotRepo:     slotRepo,
		minLeadTime:  minLeadTime,
		horizon:      time.Duration(horizonDays) * 24 * time.Hour,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute возвращает свободные слоты в окне [from, to]. Начало окна сдвигается
// на now + minLeadTime, чтобы не показывать слоты, которые нельзя забронировать.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	if req.From != nil && req.To != nil && req.To.Before(*req.From) {
		uc.logger.Warn("GetFreeSlots: 'to' %s is before 'from' %s", req.To.Format(time.RFC3339), req.From.Format(time.RFC3339))
		return nil, ErrInvalidTimeRange
	}
	if req.Limit < 0 {
		return nil, fmt.Errorf("%w: negative limit", ErrInvalidTimeRange)
	}

	earliest := uc.timeProvider.Now().Add(uc.minLeadTime).UTC()
	from := earliest
	if req.From != nil && req.From.After(earliest) {
		from = req.From.UTC()
	}

	to := from.Add(uc.horizon)
	if req.To != nil {
		to = req.To.UTC()
	}

	resp := &Response{From: from, To: to, Slots: make([]Slot, 0)}
	if to.Before(from) {
		// окно целиком внутри минимального времени до записи
		return resp, nil
	}

	slots, err := uc.slotRepo.FindFree(ctx, domain.FreeSlotsFilter{
		From:       from,
		To:         to,
		SalesmanID: req.SalesmanID,
		Limit:      req.Limit,
	})
	if err != nil {
		uc.logger.Error("GetFreeSlots: repository error: %v", err)
		if storage.IsUnavailable(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		return nil, fmt.Errorf("%w: find free slots: %v", ErrInternal, err)
	}

	for _, s := range slots {
		resp.Slots = append(resp.Slots, Slot{ID: s.ID, SalesmanID: s.SalesmanID, WhenUTC: s.WhenUTC})
	}

	uc.logger.Info("GetFreeSlots: %d free slots between %s and %s",
		len(resp.Slots), from.Format(time.RFC3339), to.Format(time.RFC3339))
	return resp, nil
}
