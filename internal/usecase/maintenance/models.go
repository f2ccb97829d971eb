package maintenance

import "time"

// Report результат прогона обслуживания
type Report struct {
	RanAt             time.Time
	Pruned            int64 // удалено просроченных свободных слотов
	Assigned          int   // назначено неназначенных слотов
	Unassigned        int   // осталось без менеджера
	DuplicatesRemoved int   // удалено неназначенных дублей
}
