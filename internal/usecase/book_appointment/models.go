package book_appointment

import (
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
)

// Request модель запроса на бронирование консультации
type Request struct {
	WhenUTC    time.Time      // Время консультации
	SalesmanID *string        // Конкретный менеджер (опционально)
	Contact    domain.Contact // Данные лида
}

// Response модель ответа с созданным бронированием
type Response struct {
	SlotID             string
	SalesmanID         *string
	LeadID             string
	WhenUTC            time.Time
	QualificationScore int
	BookedAt           time.Time
}
