package book_appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
	"github.com/m04kA/MHS-BookingService/pkg/ptr"
	"github.com/m04kA/MHS-BookingService/pkg/txmanager"
)

const notifyTimeout = 15 * time.Second

// UseCase use case бронирования консультации
type UseCase struct {
	slotRepo     SlotRepository
	bookingRepo  BookingRepository
	leadRepo     LeadRepository
	txManager    TransactionManager
	notifier     Notifier
	metrics      Metrics
	minLeadTime  time.Duration
	timeProvider TimeProvider
	logger       Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	bookingRepo BookingRepository,
	leadRepo LeadRepository,
	txManager TransactionManager,
	notifier Notifier,
	metrics Metrics,
	minLeadTime time.Duration,
	logger Logger,
) *UseCase {
	return &UseCase{
		slotRepo:     slotRepo,
		bookingRepo:  bookingRepo,
		leadRepo:     leadRepo,
		txManager:    txManager,
		notifier:     notifier,
		metrics:      metrics,
		minLeadTime:  minLeadTime,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute бронирует свободный слот на указанное время.
// Лид, перевод слота в booked и связь лид-слот фиксируются одной сериализуемой транзакцией.
// Проигравший гонку запрос получает domain.ErrSlotUnavailable без повторной попытки.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	when := req.WhenUTC.UTC()
	uc.logger.Info("BookAppointment: when=%s, salesman=%s, email=%s",
		when.Format(time.RFC3339), ptr.Deref(req.SalesmanID), domain.NormalizeEmail(req.Contact.Email))

	// 1. Проверка времени выполняется до обращения к хранилищу
	if err := validateTiming(when, uc.timeProvider.Now(), uc.minLeadTime); err != nil {
		uc.logger.Warn("BookAppointment: %v", err)
		uc.observe(domain.OutcomeInvalidTiming)
		return nil, err
	}

	// 2. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("BookAppointment: validation failed: %v", err)
		uc.observe(domain.OutcomeError)
		return nil, err
	}

	var (
		lead    *domain.Lead
		slot    *domain.Slot
		booking *domain.Booking
	)

	// 3. Операции с хранилищем в сериализуемой транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 3.1. Создаем или обновляем лида по email
		var err error
		lead, err = uc.leadRepo.UpsertByEmail(txCtx, domain.NewLead(req.Contact))
		if err != nil {
			return fmt.Errorf("%w: upsert lead: %w", ErrInternal, err)
		}

		// 3.2. Ищем свободный слот на это время
		free, err := uc.slotRepo.FindFree(txCtx, domain.FreeSlotsFilter{
			From:       when,
			To:         when,
			SalesmanID: req.SalesmanID,
			Limit:      1,
		})
		if err != nil {
			return fmt.Errorf("%w: find free slot: %w", ErrInternal, err)
		}
		if len(free) == 0 {
			return fmt.Errorf("%w: no free slot at %s", domain.ErrSlotUnavailable, when.Format(time.RFC3339))
		}
		slot = free[0]

		// 3.3. Условный переход available -> booked
		if err := uc.slotRepo.Transition(txCtx, slot.ID, domain.SlotAvailable, domain.SlotBooked); err != nil {
			if errors.Is(err, storage.ErrTransitionConflict) || errors.Is(err, storage.ErrSlotNotFound) {
				return fmt.Errorf("%w: slot %s was taken concurrently", domain.ErrSlotUnavailable, slot.ID)
			}
			return fmt.Errorf("%w: transition slot: %w", ErrInternal, err)
		}

		// 3.4. Связь лид-слот
		booking, err = uc.bookingRepo.Create(txCtx, &domain.Booking{SlotID: slot.ID, LeadID: lead.ID})
		if err != nil {
			if errors.Is(err, storage.ErrDuplicate) {
				return fmt.Errorf("%w: slot %s already has a booking", domain.ErrSlotUnavailable, slot.ID)
			}
			return fmt.Errorf("%w: create booking: %w", ErrInternal, err)
		}
		return nil
	})
	if err != nil {
		return nil, uc.fail(when, err)
	}

	slot.Status = domain.SlotBooked
	slot.LeadID = &lead.ID
	uc.observe(domain.OutcomeBooked)
	uc.logger.Info("BookAppointment: slot id=%s booked by lead id=%s (score=%d)", slot.ID, lead.ID, lead.QualificationScore)

	// 4. Уведомление после фиксации транзакции, ошибка не отменяет бронирование
	uc.notify(ctx, lead, slot)

	return &Response{
		SlotID:             slot.ID,
		SalesmanID:         slot.SalesmanID,
		LeadID:             lead.ID,
		WhenUTC:            slot.WhenUTC,
		QualificationScore: lead.QualificationScore,
		BookedAt:           booking.CreatedAt,
	}, nil
}

// fail приводит ошибку транзакции к таксономии ошибок бронирования
func (uc *UseCase) fail(when time.Time, err error) error {
	switch {
	case errors.Is(err, domain.ErrSlotUnavailable):
		uc.logger.Warn("BookAppointment: %v", err)
		uc.observe(domain.OutcomeSlotUnavailable)
		return err
	case errors.Is(err, txmanager.ErrSerializationFailure):
		uc.logger.Warn("BookAppointment: lost race for %s: %v", when.Format(time.RFC3339), err)
		uc.observe(domain.OutcomeSlotUnavailable)
		return fmt.Errorf("%w: concurrent booking: %v", domain.ErrSlotUnavailable, err)
	case storage.IsUnavailable(err):
		uc.logger.Error("BookAppointment: store unavailable: %v", err)
		uc.observe(domain.OutcomeError)
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	uc.logger.Error("BookAppointment: failed: %v", err)
	uc.observe(domain.OutcomeError)
	if errors.Is(err, ErrInternal) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

func (uc *UseCase) notify(ctx context.Context, lead *domain.Lead, slot *domain.Slot) {
	if uc.notifier == nil {
		return
	}

	notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()

	if err := uc.notifier.BookingConfirmed(notifyCtx, lead, slot); err != nil {
		uc.logger.Warn("BookAppointment: notification for slot id=%s failed: %v", slot.ID, err)
	}
}

func (uc *UseCase) observe(outcome string) {
	if uc.metrics != nil {
		uc.metrics.ObserveBooking(outcome)
	}
}
