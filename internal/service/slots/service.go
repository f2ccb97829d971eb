// Package slots административное управление слотами: просмотр, завершение,
// снятие с расписания и удаление.
package slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
)

// Service сервис для работы со слотами
type Service struct {
	slotRepo SlotRepository
	logger   Logger
}

// NewService создает новый экземпляр сервиса слотов
func NewService(slotRepo SlotRepository, logger Logger) *Service {
	return &Service{
		slotRepo: slotRepo,
		logger:   logger,
	}
}

// Get получает слот по ID
func (s *Service) Get(ctx context.Context, id string) (*domain.Slot, error) {
	slot, err := s.slotRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrSlotNotFound) {
			s.logger.Warn("Get: slot id=%s not found", id)
			return nil, ErrSlotNotFound
		}
		s.logger.Error("Get: repository error for slot id=%s: %v", id, err)
		return nil, storeError("Get - repository error", err)
	}
	return slot, nil
}

// List возвращает слоты по фильтру
func (s *Service) List(ctx context.Context, filter domain.SlotsFilter) ([]*domain.Slot, error) {
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, fmt.Errorf("%w: 'to' is before 'from'", ErrInvalidInput)
	}

	slots, err := s.slotRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, storeError("List - repository error", err)
	}
	return slots, nil
}

// UpdateStatus переводит слот в completed или cancelled.
// Бронирование и отмена бронирования выполняются только через движок бронирования.
func (s *Service) UpdateStatus(ctx context.Context, id string, to domain.SlotStatus) (*domain.Slot, error) {
	s.logger.Info("UpdateStatus: slot id=%s to=%s", id, to)

	if to != domain.SlotCompleted && to != domain.SlotCancelled {
		return nil, fmt.Errorf("%w: status must be %s or %s", ErrInvalidInput, domain.SlotCompleted, domain.SlotCancelled)
	}

	slot, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !domain.CanTransition(slot.Status, to) {
		s.logger.Warn("UpdateStatus: slot id=%s cannot move from %s to %s", id, slot.Status, to)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, slot.Status, to)
	}

	if err := s.slotRepo.Transition(ctx, id, slot.Status, to); err != nil {
		switch {
		case errors.Is(err, storage.ErrTransitionConflict):
			s.logger.Warn("UpdateStatus: slot id=%s changed concurrently", id)
			return nil, ErrStatusConflict
		case errors.Is(err, storage.ErrSlotNotFound):
			return nil, ErrSlotNotFound
		}
		s.logger.Error("UpdateStatus: repository error for slot id=%s: %v", id, err)
		return nil, storeError("UpdateStatus - transition", err)
	}

	slot.Status = to
	s.logger.Info("UpdateStatus: slot id=%s is now %s", id, to)
	return slot, nil
}

// Delete удаляет слот вместе со связью бронирования
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.slotRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrSlotNotFound) {
			s.logger.Warn("Delete: slot id=%s not found", id)
			return ErrSlotNotFound
		}
		s.logger.Error("Delete: repository error for slot id=%s: %v", id, err)
		return storeError("Delete - repository error", err)
	}

	s.logger.Info("Delete: slot id=%s deleted", id)
	return nil
}
