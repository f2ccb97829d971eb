package salesmen

import "time"

// CreateRequest запрос на создание менеджера
type CreateRequest struct {
	Name     string
	Email    string
	Phone    string
	Priority *int    // по умолчанию domain.DefaultSalesmanPriority
	Status   *string // по умолчанию active
}

// UpdateRequest частичное обновление менеджера, nil поля не меняются
type UpdateRequest struct {
	Name     *string
	Email    *string
	Phone    *string
	Priority *int
	Status   *string
}

// AvailabilityResult результат добавления доступности
type AvailabilityResult struct {
	Created  int
	Existing int
	Instants []time.Time // созданные слоты (UTC)
}
