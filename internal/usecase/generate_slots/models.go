package generate_slots

import "time"

// Strategy способ назначения сгенерированных слотов менеджерам
type Strategy string

const (
	// StrategyDefault все слоты получает активный менеджер с наименьшим приоритетом
	StrategyDefault Strategy = "default"
	// StrategyRoundRobin слоты распределяются по активным менеджерам по кругу
	StrategyRoundRobin Strategy = "round_robin"
	// StrategyExplicit все слоты получает указанный менеджер
	StrategyExplicit Strategy = "explicit"
)

// Valid проверяет, что стратегия известна
func (s Strategy) Valid() bool {
	return s == StrategyDefault || s == StrategyRoundRobin || s == StrategyExplicit
}

// Request модель запроса на генерацию слотов
type Request struct {
	Strategy   Strategy // пустая строка означает стратегию из конфигурации
	SalesmanID *string  // обязателен для StrategyExplicit
	Days       *int     // переопределяет горизонт политики
	DryRun     bool     // только рассчитать кандидатов, ничего не сохранять
}

// PlannedSlot слот, который был или будет создан
type PlannedSlot struct {
	WhenUTC    time.Time
	SalesmanID *string
	Created    bool
}

// Response модель ответа с результатом генерации
type Response struct {
	Strategy   Strategy
	DryRun     bool
	Candidates int // кандидатов после отсечения прошедших моментов
	Created    int
	Existing   int
	Unassigned int
	Slots      []PlannedSlot
}
