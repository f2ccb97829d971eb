package get_free_slots

import "time"

// Request модель запроса свободных слотов
type Request struct {
	From       *time.Time // начало окна (по умолчанию сейчас)
	To         *time.Time // конец окна включительно (по умолчанию from + горизонт)
	SalesmanID *string
	Limit      int
}

// Slot свободный слот
type Slot struct {
	ID         string
	SalesmanID *string
	WhenUTC    time.Time
}

// Response модель ответа со свободными слотами
type Response struct {
	From  time.Time // фактическое начало окна после учета минимального времени до записи
	To    time.Time
	Slots []Slot
}
