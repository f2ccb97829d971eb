// Package assignment назначает слоты менеджерам: по умолчанию (активный менеджер
// с наименьшим приоритетом) или по кругу.
package assignment

import (
	"context"
	"errors"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
)

// Assignment пара слот-менеджер, полученная при распределении
type Assignment struct {
	Slot       *domain.Slot
	SalesmanID string
}

// Service сервис назначения менеджеров
type Service struct {
	slotRepo     SlotRepository
	salesmanRepo SalesmanRepository
	logger       Logger
}

// NewService создает новый экземпляр сервиса назначения
func NewService(slotRepo SlotRepository, salesmanRepo SalesmanRepository, logger Logger) *Service {
	return &Service{
		slotRepo:     slotRepo,
		salesmanRepo: salesmanRepo,
		logger:       logger,
	}
}

// ActiveSalesmen возвращает активных менеджеров в порядке приоритета
func (s *Service) ActiveSalesmen(ctx context.Context) ([]*domain.Salesman, error) {
	salesmen, err := s.salesmanRepo.ListActive(ctx)
	if err != nil {
		s.logger.Error("ActiveSalesmen: repository error: %v", err)
		return nil, storeError("ActiveSalesmen - list salesmen", err)
	}

	active := domain.ActiveOnly(salesmen)
	domain.SortByPriority(active)
	return active, nil
}

// DefaultSalesman возвращает менеджера для назначения по умолчанию
func (s *Service) DefaultSalesman(ctx context.Context) (*domain.Salesman, error) {
	active, err := s.ActiveSalesmen(ctx)
	if err != nil {
		return nil, err
	}
	if len(active) == 0 {
		return nil, domain.ErrNoSalesmanAvailable
	}
	return active[0], nil
}

// AssignDefault назначает неназначенный слот менеджеру по умолчанию.
// Уже назначенный слот возвращается без изменений.
func (s *Service) AssignDefault(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	if slot.IsAssigned() {
		return slot, nil
	}

	salesman, err := s.DefaultSalesman(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNoSalesmanAvailable) {
			s.logger.Warn("AssignDefault: no active salesman for slot id=%s", slot.ID)
		}
		return nil, err
	}

	if err := s.assign(ctx, slot, salesman.ID); err != nil {
		return nil, err
	}

	s.logger.Info("AssignDefault: slot id=%s assigned to salesman id=%s", slot.ID, salesman.ID)
	return slot, nil
}

// RoundRobin распределяет слоты по активным менеджерам по кругу в порядке приоритета.
// Функция чистая: хранилище не изменяется.
func RoundRobin(slots []*domain.Slot, salesmen []*domain.Salesman) ([]Assignment, error) {
	active := domain.ActiveOnly(salesmen)
	if len(active) == 0 {
		return nil, domain.ErrNoSalesmanAvailable
	}
	domain.SortByPriority(active)

	result := make([]Assignment, 0, len(slots))
	for i, slot := range slots {
		result = append(result, Assignment{
			Slot:       slot,
			SalesmanID: active[i%len(active)].ID,
		})
	}
	return result, nil
}

// DistributeRoundRobin распределяет неназначенные слоты по кругу и сохраняет назначения.
// Возвращает количество назначенных слотов.
func (s *Service) DistributeRoundRobin(ctx context.Context, slots []*domain.Slot) (int, error) {
	unassigned := make([]*domain.Slot, 0, len(slots))
	for _, slot := range slots {
		if !slot.IsAssigned() {
			unassigned = append(unassigned, slot)
		}
	}
	if len(unassigned) == 0 {
		return 0, nil
	}

	salesmen, err := s.ActiveSalesmen(ctx)
	if err != nil {
		return 0, err
	}

	assignments, err := RoundRobin(unassigned, salesmen)
	if err != nil {
		s.logger.Warn("DistributeRoundRobin: no active salesman for %d slots", len(unassigned))
		return 0, err
	}

	assigned := 0
	for _, a := range assignments {
		if err := s.assign(ctx, a.Slot, a.SalesmanID); err != nil {
			if errors.Is(err, ErrDuplicateSlot) {
				s.logger.Warn("DistributeRoundRobin: slot id=%s skipped: %v", a.Slot.ID, err)
				continue
			}
			return assigned, err
		}
		assigned++
	}

	s.logger.Info("DistributeRoundRobin: assigned %d of %d slots", assigned, len(unassigned))
	return assigned, nil
}

func (s *Service) assign(ctx context.Context, slot *domain.Slot, salesmanID string) error {
	id := salesmanID
	if err := s.slotRepo.AssignSalesman(ctx, slot.ID, &id); err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			return ErrDuplicateSlot
		}
		s.logger.Error("assign: repository error for slot id=%s: %v", slot.ID, err)
		return storeError("assign - update slot", err)
	}
	slot.SalesmanID = &id
	return nil
}
