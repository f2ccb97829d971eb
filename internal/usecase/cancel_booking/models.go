package cancel_booking

import "github.com/m04kA/MHS-BookingService/internal/domain"

// Request модель запроса на отмену бронирования
type Request struct {
	SlotID string
}

// Response модель ответа после отмены
type Response struct {
	SlotID string
	LeadID *string           // лид, чья связь была удалена
	Status domain.SlotStatus // статус слота после отмены
}
