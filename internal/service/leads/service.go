// Package leads прием заявок с формы и управление лидами.
package leads

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
)

// Service сервис для работы с лидами
type Service struct {
	leadRepo    LeadRepository
	bookingRepo BookingRepository
	slotRepo    SlotRepository
	txManager   TransactionManager
	logger      Logger
}

// NewService создает новый экземпляр сервиса лидов
func NewService(
	leadRepo LeadRepository,
	bookingRepo BookingRepository,
	slotRepo SlotRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		leadRepo:    leadRepo,
		bookingRepo: bookingRepo,
		slotRepo:    slotRepo,
		txManager:   txManager,
		logger:      logger,
	}
}

// ValidateContact проверяет обязательные поля заявки
func ValidateContact(c domain.Contact) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(c.Email)); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	return nil
}

// Submit сохраняет заявку. Повторная заявка с тем же email обновляет лида
// и пересчитывает оценку.
func (s *Service) Submit(ctx context.Context, contact domain.Contact) (*domain.Lead, error) {
	if err := ValidateContact(contact); err != nil {
		s.logger.Warn("Submit: validation failed: %v", err)
		return nil, err
	}

	lead, err := s.leadRepo.UpsertByEmail(ctx, domain.NewLead(contact))
	if err != nil {
		s.logger.Error("Submit: repository error: %v", err)
		return nil, storeError("Submit - upsert lead", err)
	}

	s.logger.Info("Submit: lead id=%s score=%d", lead.ID, lead.QualificationScore)
	return lead, nil
}

// Get получает лида по ID
func (s *Service) Get(ctx context.Context, id string) (*domain.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrLeadNotFound) {
			s.logger.Warn("Get: lead id=%s not found", id)
			return nil, ErrLeadNotFound
		}
		s.logger.Error("Get: repository error for lead id=%s: %v", id, err)
		return nil, storeError("Get - repository error", err)
	}
	return lead, nil
}

// List возвращает лидов по фильтру, новые первыми
func (s *Service) List(ctx context.Context, filter domain.LeadsFilter) ([]*domain.Lead, error) {
	if filter.MinScore != nil && (*filter.MinScore < 0 || *filter.MinScore > domain.MaxQualificationScore) {
		return nil, fmt.Errorf("%w: minScore must be between 0 and %d", ErrInvalidInput, domain.MaxQualificationScore)
	}

	leads, err := s.leadRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, storeError("List - repository error", err)
	}
	return leads, nil
}

// Delete удаляет лида. Забронированные им слоты в той же транзакции
// возвращаются в статус available.
func (s *Service) Delete(ctx context.Context, id string) (int, error) {
	released := 0

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		bookings, err := s.bookingRepo.ListByLead(txCtx, id)
		if err != nil {
			return storeError("Delete - list bookings", err)
		}

		for _, b := range bookings {
			err := s.slotRepo.Transition(txCtx, b.SlotID, domain.SlotBooked, domain.SlotAvailable)
			if err != nil {
				// завершенные и отмененные слоты остаются как есть, связь удалится вместе с лидом
				if errors.Is(err, storage.ErrTransitionConflict) {
					continue
				}
				return storeError("Delete - release slot", err)
			}
			if err := s.bookingRepo.Delete(txCtx, b.SlotID); err != nil {
				return storeError("Delete - delete booking", err)
			}
			released++
		}

		if err := s.leadRepo.Delete(txCtx, id); err != nil {
			if errors.Is(err, storage.ErrLeadNotFound) {
				return ErrLeadNotFound
			}
			return storeError("Delete - delete lead", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrLeadNotFound) {
			s.logger.Warn("Delete: lead id=%s not found", id)
		} else {
			s.logger.Error("Delete: failed to delete lead id=%s: %v", id, err)
		}
		return 0, err
	}

	s.logger.Info("Delete: lead id=%s deleted, released %d slots", id, released)
	return released, nil
}
