// Package maintenance удаляет просроченные свободные слоты и назначает менеджеров
// неназначенным слотам. Повторный прогон с тем же временем ничего не меняет.
package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
	"github.com/m04kA/MHS-BookingService/internal/infra/storage"
	"github.com/m04kA/MHS-BookingService/internal/service/assignment"
)

// UseCase use case обслуживания слотов
type UseCase struct {
	slotRepo SlotRepository
	assigner Assigner
	metrics  Metrics
	logger   Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(slotRepo SlotRepository, assigner Assigner, metrics Metrics, logger Logger) *UseCase {
	return &UseCase{
		slotRepo: slotRepo,
		assigner: assigner,
		metrics:  metrics,
		logger:   logger,
	}
}

// PruneAndReconcile удаляет свободные слоты раньше now и назначает менеджера
// по умолчанию каждому неназначенному слоту. Свободный неназначенный слот,
// время которого уже занято у выбранного менеджера, удаляется как дубль.
func (uc *UseCase) PruneAndReconcile(ctx context.Context, now time.Time) (*Report, error) {
	report, err := uc.run(ctx, now.UTC())
	if uc.metrics != nil {
		var pruned int64
		if report != nil {
			pruned = report.Pruned
		}
		uc.metrics.ObserveMaintenance(pruned, err)
	}
	if err != nil {
		uc.logger.Error("PruneAndReconcile: %v", err)
		return nil, err
	}

	uc.logger.Info("PruneAndReconcile: pruned=%d assigned=%d unassigned=%d duplicates=%d",
		report.Pruned, report.Assigned, report.Unassigned, report.DuplicatesRemoved)
	return report, nil
}

func (uc *UseCase) run(ctx context.Context, now time.Time) (*Report, error) {
	report := &Report{RanAt: now}

	// 1. Просроченные свободные слоты
	pruned, err := uc.slotRepo.DeleteExpired(ctx, now)
	if err != nil {
		return nil, storeError("delete expired slots", err)
	}
	report.Pruned = pruned

	// 2. Неназначенные слоты
	unassigned, err := uc.slotRepo.List(ctx, domain.SlotsFilter{Unassigned: true})
	if err != nil {
		return nil, storeError("list unassigned slots", err)
	}

	for i, slot := range unassigned {
		_, err := uc.assigner.AssignDefault(ctx, slot)
		switch {
		case err == nil:
			report.Assigned++
		case errors.Is(err, domain.ErrNoSalesmanAvailable):
			// менеджеров нет: остальные слоты тоже останутся без назначения
			report.Unassigned += len(unassigned) - i
			uc.logger.Warn("PruneAndReconcile: %v, %d slots stay unassigned", err, len(unassigned)-i)
			return report, nil
		case errors.Is(err, assignment.ErrDuplicateSlot):
			if !slot.IsBookable() {
				report.Unassigned++
				uc.logger.Warn("PruneAndReconcile: slot id=%s (%s) duplicates an assigned slot", slot.ID, slot.Status)
				continue
			}
			if err := uc.slotRepo.Delete(ctx, slot.ID); err != nil && !errors.Is(err, storage.ErrSlotNotFound) {
				return nil, storeError("delete duplicate slot", err)
			}
			report.DuplicatesRemoved++
		default:
			return nil, err
		}
	}

	return report, nil
}

func storeError(op string, err error) error {
	if storage.IsUnavailable(err) {
		return fmt.Errorf("%w: %s: %v", domain.ErrStoreUnavailable, op, err)
	}
	return fmt.Errorf("%w: %s: %v", ErrInternal, op, err)
}
