// Package salesmen управление менеджерами и их доступностью.
package salesmen

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
)

// Service сервис для работы с менеджерами
type Service struct {
	salesmanRepo SalesmanRepository
	slotRepo     SlotRepository
	txManager    TransactionManager
	timeProvider TimeProvider
	logger       Logger
}

// NewService создает новый экземпляр сервиса менеджеров
func NewService(
	salesmanRepo SalesmanRepository,
	slotRepo SlotRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		salesmanRepo: salesmanRepo,
		slotRepo:     slotRepo,
		txManager:    txManager,
		timeProvider: &RealTimeProvider{},
		logger:       logger,
	}
}

// WithTimeProvider подменяет источник времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// Create регистрирует менеджера
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.Salesman, error) {
	salesman := &domain.Salesman{
		Name:     strings.TrimSpace(req.Name),
		Email:    domain.NormalizeEmail(req.Email),
		Phone:    strings.TrimSpace(req.Phone),
		Priority: domain.DefaultSalesmanPriority,
		Status:   domain.SalesmanActive,
	}
	if req.Priority != nil {
		salesman.Priority = *req.Priority
	}
	if req.Status != nil {
		salesman.Status = domain.SalesmanStatus(*req.Status)
	}

	if err := validateSalesman(salesman); err != nil {
		s.logger.Warn("Create: validation failed: %v", err)
		return nil, err
	}

	created, err := s.salesmanRepo.Create(ctx, salesman)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			s.logger.Warn("Create: email %s already registered", salesman.Email)
			return nil, ErrEmailTaken
		}
		s.logger.Error("Create: repository error: %v", err)
		return nil, storeError("Create - repository error", err)
	}

	s.logger.Info("Create: salesman id=%s priority=%d", created.ID, created.Priority)
	return created, nil
}

// Get получает менеджера по ID
func (s *Service) Get(ctx context.Context, id string) (*domain.Salesman, error) {
	salesman, err := s.salesmanRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrSalesmanNotFound) {
			s.logger.Warn("Get: salesman id=%s not found", id)
			return nil, ErrSalesmanNotFound
		}
		s.logger.Error("Get: repository error for salesman id=%s: %v", id, err)
		return nil, storeError("Get - repository error", err)
	}
	return salesman, nil
}

// List возвращает менеджеров в порядке приоритета
func (s *Service) List(ctx context.Context, status *string) ([]*domain.Salesman, error) {
	var domainStatus *domain.SalesmanStatus
	if status != nil {
		st := domain.SalesmanStatus(*status)
		if !st.Valid() {
			return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, *status)
		}
		domainStatus = &st
	}

	salesmen, err := s.salesmanRepo.List(ctx, domainStatus)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, storeError("List - repository error", err)
	}
	return salesmen, nil
}

// Update частично обновляет менеджера
func (s *Service) Update(ctx context.Context, id string, req UpdateRequest) (*domain.Salesman, error) {
	salesman, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		salesman.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		salesman.Email = domain.NormalizeEmail(*req.Email)
	}
	if req.Phone != nil {
		salesman.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Priority != nil {
		salesman.Priority = *req.Priority
	}
	if req.Status != nil {
		salesman.Status = domain.SalesmanStatus(*req.Status)
	}

	if err := validateSalesman(salesman); err != nil {
		s.logger.Warn("Update: validation failed for salesman id=%s: %v", id, err)
		return nil, err
	}

	updated, err := s.salesmanRepo.Update(ctx, salesman)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrSalesmanNotFound):
			return nil, ErrSalesmanNotFound
		case errors.Is(err, storage.ErrDuplicate):
			return nil, ErrEmailTaken
		}
		s.logger.Error("Update: repository error for salesman id=%s: %v", id, err)
		return nil, storeError("Update - repository error", err)
	}

	s.logger.Info("Update: salesman id=%s updated", id)
	return updated, nil
}

// Delete удаляет менеджера. Его свободные слоты удаляются, остальные отвязываются
// и будут переназначены обслуживанием.
func (s *Service) Delete(ctx context.Context, id string) error {
	var removed, detached int64

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		var err error
		removed, err = s.slotRepo.DeleteBySalesman(txCtx, id, domain.SlotAvailable)
		if err != nil {
			return storeError("Delete - delete available slots", err)
		}

		detached, err = s.slotRepo.DetachSalesman(txCtx, id)
		if err != nil {
			return storeError("Delete - detach slots", err)
		}

		if err := s.salesmanRepo.Delete(txCtx, id); err != nil {
			if errors.Is(err, storage.ErrSalesmanNotFound) {
				return ErrSalesmanNotFound
			}
			return storeError("Delete - delete salesman", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrSalesmanNotFound) {
			s.logger.Warn("Delete: salesman id=%s not found", id)
		} else {
			s.logger.Error("Delete: failed to delete salesman id=%s: %v", id, err)
		}
		return err
	}

	s.logger.Info("Delete: salesman id=%s deleted, removed %d slots, detached %d", id, removed, detached)
	return nil
}

// AddAvailability создает слоты менеджера на указанные моменты времени.
// Существующие слоты не дублируются.
func (s *Service) AddAvailability(ctx context.Context, id string, instants []time.Time) (*AvailabilityResult, error) {
	if len(instants) == 0 {
		return nil, fmt.Errorf("%w: at least one instant is required", ErrInvalidInput)
	}

	now := s.timeProvider.Now()
	for _, instant := range instants {
		if !instant.After(now) {
			return nil, fmt.Errorf("%w: instant %s is in the past", ErrInvalidInput, instant.UTC().Format(time.RFC3339))
		}
	}

	salesman, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !salesman.IsActive() {
		s.logger.Warn("AddAvailability: salesman id=%s is inactive", id)
		return nil, ErrSalesmanInactive
	}

	sorted := make([]time.Time, len(instants))
	copy(sorted, instants)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	result := &AvailabilityResult{Instants: make([]time.Time, 0, len(sorted))}
	for _, instant := range sorted {
		salesmanID := salesman.ID
		created, err := s.slotRepo.Upsert(ctx, &domain.Slot{
			SalesmanID: &salesmanID,
			WhenUTC:    instant.UTC(),
			Status:     domain.SlotAvailable,
		})
		if err != nil {
			s.logger.Error("AddAvailability: failed to upsert slot for salesman id=%s: %v", id, err)
			return nil, storeError("AddAvailability - upsert slot", err)
		}
		if created {
			result.Created++
			result.Instants = append(result.Instants, instant.UTC())
		} else {
			result.Existing++
		}
	}

	s.logger.Info("AddAvailability: salesman id=%s created=%d existing=%d", id, result.Created, result.Existing)
	return result, nil
}

// ListSlots возвращает слоты менеджера
func (s *Service) ListSlots(ctx context.Context, id string, status *domain.SlotStatus) ([]*domain.Slot, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}

	slots, err := s.slotRepo.List(ctx, domain.SlotsFilter{SalesmanID: &id, Status: status})
	if err != nil {
		s.logger.Error("ListSlots: repository error for salesman id=%s: %v", id, err)
		return nil, storeError("ListSlots - repository error", err)
	}
	return slots, nil
}

func validateSalesman(m *domain.Salesman) error {
	if m.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(m.Email); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if m.Priority < 0 {
		return fmt.Errorf("%w: priority must be non-negative", ErrInvalidInput)
	}
	if !m.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidInput, m.Status)
	}
	return nil
}
