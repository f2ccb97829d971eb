package generate_slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
	"github.com/m04kA/MHS-BookingService/internal/service/assignment"
	"github.com/m04kA/MHS-BookingService/internal/slotgen"
	"github.com/m04kA/MHS-BookingService/pkg/ptr"
)

// UseCase use case генерации слотов по расписанию
type UseCase struct {
	slotRepo        SlotRepository
	salesmanRepo    SalesmanRepository
	assigner        Assigner
	metrics         Metrics
	policy          slotgen.Policy
	defaultStrategy Strategy
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	slotRepo SlotRepository,
	salesmanRepo SalesmanRepository,
	assigner Assigner,
	metrics Metrics,
	policy slotgen.Policy,
	defaultStrategy Strategy,
	logger Logger,
) *UseCase {
	if !defaultStrategy.Valid() || defaultStrategy == StrategyExplicit {
		defaultStrategy = StrategyDefault
	}
	return &UseCase{
		slotRepo:        slotRepo,
		salesmanRepo:    salesmanRepo,
		assigner:        assigner,
		metrics:         metrics,
		policy:          policy,
		defaultStrategy: defaultStrategy,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute генерирует кандидатов на горизонт, отбрасывает прошедшие моменты,
// пропускает моменты с уже существующими слотами, назначает менеджеров по стратегии
// и идемпотентно сохраняет слоты.
// Если активных менеджеров нет, слоты сохраняются неназначенными.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	strategy := req.Strategy
	if strategy == "" {
		strategy = uc.defaultStrategy
	}
	uc.logger.Info("GenerateSlots: strategy=%s, salesman=%s, days=%d, dryRun=%t",
		strategy, ptr.Deref(req.SalesmanID), ptr.Deref(req.Days), req.DryRun)

	// 1. Валидация и политика
	policy, err := uc.buildPolicy(strategy, req)
	if err != nil {
		uc.logger.Warn("GenerateSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Кандидаты без прошедших моментов
	now := uc.timeProvider.Now()
	candidates, err := slotgen.Generate(policy, now)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	planned := make([]*domain.Slot, 0, len(candidates))
	for _, c := range candidates {
		if c.After(now) {
			planned = append(planned, &domain.Slot{WhenUTC: c, Status: domain.SlotAvailable})
		}
	}

	// 3. Моменты, на которые слот уже есть, повторно не назначаются
	covered, err := uc.coveredInstants(ctx, strategy, req.SalesmanID, planned)
	if err != nil {
		return nil, err
	}
	fresh := make([]*domain.Slot, 0, len(planned))
	for _, slot := range planned {
		if _, ok := covered[slot.WhenUTC.UnixNano()]; !ok {
			fresh = append(fresh, slot)
		}
	}

	// 4. Назначение менеджеров
	if err := uc.assign(ctx, strategy, req.SalesmanID, fresh); err != nil {
		return nil, err
	}

	resp := &Response{
		Strategy:   strategy,
		DryRun:     req.DryRun,
		Candidates: len(planned),
		Slots:      make([]PlannedSlot, 0, len(planned)),
	}
	for _, slot := range fresh {
		if !slot.IsAssigned() {
			resp.Unassigned++
		}
	}

	// 5. Сохранение
	for _, slot := range planned {
		if existing, ok := covered[slot.WhenUTC.UnixNano()]; ok {
			resp.Existing++
			resp.Slots = append(resp.Slots, PlannedSlot{WhenUTC: slot.WhenUTC, SalesmanID: existing.SalesmanID})
			continue
		}

		created := false
		if !req.DryRun {
			created, err = uc.slotRepo.Upsert(ctx, slot)
			if err != nil {
				uc.logger.Error("GenerateSlots: failed to upsert slot at %s: %v", slot.WhenUTC.Format(time.RFC3339), err)
				if storage.IsUnavailable(err) {
					return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
				}
				return nil, fmt.Errorf("%w: upsert slot: %v", ErrInternal, err)
			}
			if created {
				resp.Created++
			} else {
				resp.Existing++
			}
		}
		resp.Slots = append(resp.Slots, PlannedSlot{WhenUTC: slot.WhenUTC, SalesmanID: slot.SalesmanID, Created: created})
	}

	if uc.metrics != nil && resp.Created > 0 {
		uc.metrics.AddGeneratedSlots(resp.Created)
	}

	uc.logger.Info("GenerateSlots: candidates=%d created=%d existing=%d unassigned=%d",
		resp.Candidates, resp.Created, resp.Existing, resp.Unassigned)
	return resp, nil
}

func (uc *UseCase) buildPolicy(strategy Strategy, req *Request) (slotgen.Policy, error) {
	if !strategy.Valid() {
		return slotgen.Policy{}, fmt.Errorf("%w: unknown strategy %q", ErrInvalidInput, strategy)
	}
	if strategy == StrategyExplicit && (req.SalesmanID == nil || *req.SalesmanID == "") {
		return slotgen.Policy{}, fmt.Errorf("%w: salesmanId is required for %s strategy", ErrInvalidInput, strategy)
	}

	policy := uc.policy
	if req.Days != nil {
		if *req.Days < 1 || *req.Days > domain.MaxHorizonDays {
			return slotgen.Policy{}, fmt.Errorf("%w: days must be between 1 and %d", ErrInvalidInput, domain.MaxHorizonDays)
		}
		policy.HorizonDays = *req.Days
	}
	if err := policy.Validate(); err != nil {
		return slotgen.Policy{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return policy, nil
}

// coveredInstants возвращает уже существующие слоты окна генерации по моменту времени.
// Для explicit учитываются только слоты выбранного менеджера, для остальных стратегий
// момент занят любым слотом, чтобы повторный запуск не назначал его другому менеджеру.
func (uc *UseCase) coveredInstants(ctx context.Context, strategy Strategy, salesmanID *string, slots []*domain.Slot) (map[int64]*domain.Slot, error) {
	covered := make(map[int64]*domain.Slot)
	if len(slots) == 0 {
		return covered, nil
	}

	from, to := slots[0].WhenUTC, slots[0].WhenUTC
	for _, slot := range slots[1:] {
		if slot.WhenUTC.Before(from) {
			from = slot.WhenUTC
		}
		if slot.WhenUTC.After(to) {
			to = slot.WhenUTC
		}
	}
	filter := domain.SlotsFilter{From: &from, To: &to}
	if strategy == StrategyExplicit {
		filter.SalesmanID = salesmanID
	}

	existing, err := uc.slotRepo.List(ctx, filter)
	if err != nil {
		return nil, uc.storeError("list existing slots", err)
	}
	for _, slot := range existing {
		k := slot.WhenUTC.UnixNano()
		if prev, ok := covered[k]; ok && prev.IsAssigned() {
			continue
		}
		covered[k] = slot
	}
	return covered, nil
}

func (uc *UseCase) assign(ctx context.Context, strategy Strategy, salesmanID *string, slots []*domain.Slot) error {
	if len(slots) == 0 {
		return nil
	}

	if strategy == StrategyExplicit {
		salesman, err := uc.salesmanRepo.GetByID(ctx, *salesmanID)
		if err != nil {
			if errors.Is(err, storage.ErrSalesmanNotFound) {
				return ErrSalesmanNotFound
			}
			return uc.storeError("get salesman", err)
		}
		if !salesman.IsActive() {
			return ErrSalesmanInactive
		}
		for _, slot := range slots {
			id := salesman.ID
			slot.SalesmanID = &id
		}
		return nil
	}

	active, err := uc.assigner.ActiveSalesmen(ctx)
	if err != nil {
		return uc.storeError("list active salesmen", err)
	}
	if len(active) == 0 {
		uc.logger.Warn("GenerateSlots: %v, %d slots stay unassigned", domain.ErrNoSalesmanAvailable, len(slots))
		return nil
	}

	if strategy == StrategyDefault {
		active = active[:1]
	}
	assignments, err := assignment.RoundRobin(slots, active)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInternal, err)
	}
	for _, a := range assignments {
		id := a.SalesmanID
		a.Slot.SalesmanID = &id
	}
	return nil
}

func (uc *UseCase) storeError(op string, err error) error {
	uc.logger.Error("GenerateSlots: %s: %v", op, err)
	if errors.Is(err, domain.ErrStoreUnavailable) || storage.IsUnavailable(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}
