// Package storage содержит общие ошибки хранилищ. Реализации лежат в подпакетах:
// PostgreSQL (slot, booking, lead, salesman) и Neo4j (neo4jstore).
package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/lib/pq"

	"github.com/m04kA/MHS-BookingService/pkg/txmanager"
)

var (
	// ErrUnavailable хранилище недоступно (соединение, таймаут)
	ErrUnavailable = errors.New("storage: unavailable")

	// ErrDuplicate нарушено ограничение уникальности
	ErrDuplicate = errors.New("storage: duplicate")

	// ErrTransitionConflict текущий статус слота отличается от ожидаемого
	ErrTransitionConflict = errors.New("storage: status transition conflict")

	// ErrSlotNotFound слот не найден
	ErrSlotNotFound = errors.New("storage: slot not found")

	// ErrLeadNotFound лид не найден
	ErrLeadNotFound = errors.New("storage: lead not found")

	// ErrSalesmanNotFound менеджер не найден
	ErrSalesmanNotFound = errors.New("storage: salesman not found")

	// ErrBookingNotFound связь лид-слот не найдена
	ErrBookingNotFound = errors.New("storage: booking not found")
)

const (
	pqUniqueViolation     = "23505"
	pqConnectionException = "08"
	pqAdminShutdown       = "57P01"
	pqCrashShutdown       = "57P02"
	pqCannotConnectNow    = "57P03"
)

// Classify возвращает общую ошибку хранилища, соответствующую ошибке драйвера, или nil.
// Конфликты сериализации и дедлоки отображаются в txmanager.ErrSerializationFailure.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if txmanager.IsSerializationFailure(err) {
		return txmanager.ErrSerializationFailure
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		switch {
		case code == pqUniqueViolation:
			return ErrDuplicate
		case strings.HasPrefix(code, pqConnectionException),
			code == pqAdminShutdown, code == pqCrashShutdown, code == pqCannotConnectNow:
			return ErrUnavailable
		}
		return nil
	}

	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return ErrUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrUnavailable
	}

	return nil
}

// Wrap оборачивает ошибку драйвера в ошибку репозитория kind, сохраняя её в цепочке.
// Если ошибка классифицируется, результат также совпадает с общей ошибкой хранилища по errors.Is.
func Wrap(kind error, op string, err error) error {
	if class := Classify(err); class != nil {
		return fmt.Errorf("%w: %s: %w: %w", kind, op, class, err)
	}
	return fmt.Errorf("%w: %s: %w", kind, op, err)
}

// IsUnavailable проверяет, что ошибка означает недоступность хранилища
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable) || errors.Is(Classify(err), ErrUnavailable)
}
