package book_appointment

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/m04kA/MHS-BookingService/internal/domain"
)

// validateTiming проверяет минимальное время до консультации
func validateTiming(when, now time.Time, minLeadTime time.Duration) error {
	earliest := now.Add(minLeadTime)
	if when.Before(earliest) {
		return fmt.Errorf("%w: %s is earlier than %s",
			domain.ErrInvalidTiming, when.UTC().Format(time.RFC3339), earliest.UTC().Format(time.RFC3339))
	}
	return nil
}

// validateRequest проверяет обязательные поля запроса
func validateRequest(req *Request) error {
	if req.WhenUTC.IsZero() {
		return fmt.Errorf("%w: appointment time is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Contact.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(strings.TrimSpace(req.Contact.Email)); err != nil {
		return fmt.Errorf("%w: invalid email", ErrInvalidInput)
	}
	if req.SalesmanID != nil && strings.TrimSpace(*req.SalesmanID) == "" {
		return fmt.Errorf("%w: salesmanId must not be empty", ErrInvalidInput)
	}
	return nil
}
