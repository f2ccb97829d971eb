package cancel_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
	"github.com/m04kA/MHS-BookingService/pkg/txmanager"
)

// UseCase use case отмены бронирования
type UseCase struct {
	slotRepo    SlotRepository
	bookingRepo BookingRepository
	txManager   TransactionManager
	policy      domain.CancelPolicy
	logger      Logger
}

// NewUseCase создает новый экземпляр use case. Неизвестная политика заменяется на политику по умолчанию.
func NewUseCase(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	txManager TransactionManager,
	policy domain.CancelPolicy,
	logger Logger,
) *UseCase {
	if !policy.Valid() {
		policy = domain.DefaultCancelPolicy
	}
	return &UseCase{
		slotRepo:    slotRepo,
		bookingRepo: bookingRepo,
		txManager:   txManager,
		policy:      policy,
		logger:      logger,
	}
}

// Execute снимает бронирование со слота: удаляет связь лид-слот и переводит слот
// в статус, определяемый политикой отмены (available или cancelled).
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CancelBooking: slot=%s, policy=%s", req.SlotID, uc.policy)

	target := uc.policy.TargetStatus()
	var leadID *string

	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		slot, err := uc.slotRepo.GetByID(txCtx, req.SlotID)
		if err != nil {
			if errors.Is(err, storage.ErrSlotNotFound) {
				return ErrSlotNotFound
			}
			return fmt.Errorf("%w: get slot: %w", ErrInternal, err)
		}

		if slot.Status != domain.SlotBooked {
			return fmt.Errorf("%w: status is %s", ErrNotBooked, slot.Status)
		}
		leadID = slot.LeadID

		if err := uc.bookingRepo.Delete(txCtx, slot.ID); err != nil && !errors.Is(err, storage.ErrBookingNotFound) {
			return fmt.Errorf("%w: delete booking: %w", ErrInternal, err)
		}

		released, err := uc.releaseDetached(txCtx, slot, target)
		if err != nil {
			return err
		}
		if released {
			return nil
		}

		if err := uc.slotRepo.Transition(txCtx, slot.ID, domain.SlotBooked, target); err != nil {
			if errors.Is(err, storage.ErrTransitionConflict) {
				return fmt.Errorf("%w: status changed concurrently", ErrNotBooked)
			}
			return fmt.Errorf("%w: transition slot: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrSlotNotFound):
			uc.logger.Warn("CancelBooking: slot id=%s not found", req.SlotID)
			return nil, err
		case errors.Is(err, ErrNotBooked):
			uc.logger.Warn("CancelBooking: slot id=%s: %v", req.SlotID, err)
			return nil, err
		case errors.Is(err, txmanager.ErrSerializationFailure):
			uc.logger.Warn("CancelBooking: concurrent update of slot id=%s: %v", req.SlotID, err)
			return nil, fmt.Errorf("%w: %v", ErrNotBooked, err)
		case storage.IsUnavailable(err):
			uc.logger.Error("CancelBooking: store unavailable: %v", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
		}
		uc.logger.Error("CancelBooking: failed for slot id=%s: %v", req.SlotID, err)
		return nil, err
	}

	uc.logger.Info("CancelBooking: slot id=%s is now %s", req.SlotID, target)
	return &Response{SlotID: req.SlotID, LeadID: leadID, Status: target}, nil
}

// releaseDetached удаляет отвязанный от менеджера слот вместо возврата в available,
// если на это время уже есть свободный неназначенный слот.
func (uc *UseCase) releaseDetached(ctx context.Context, slot *domain.Slot, target domain.SlotStatus) (bool, error) {
	if target != domain.SlotAvailable || slot.SalesmanID != nil {
		return false, nil
	}

	available := domain.SlotAvailable
	at := slot.WhenUTC
	existing, err := uc.slotRepo.List(ctx, domain.SlotsFilter{
		Status:     &available,
		From:       &at,
		To:         &at,
		Unassigned: true,
	})
	if err != nil {
		return false, fmt.Errorf("%w: list unassigned slots: %w", ErrInternal, err)
	}
	if len(existing) == 0 {
		return false, nil
	}

	if err := uc.slotRepo.Delete(ctx, slot.ID); err != nil {
		return false, fmt.Errorf("%w: delete detached slot: %w", ErrInternal, err)
	}
	uc.logger.Info("CancelBooking: slot id=%s dropped, slot id=%s is already free at %s",
		slot.ID, existing[0].ID, at.Format(time.RFC3339))
	return true, nil
}
