package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// ErrInvalidTimeString возвращается при некорректном формате времени
var ErrInvalidTimeString = errors.New("invalid time string format")

const timeStringLayout = "15:04"

// TimeString время суток в формате "HH:MM" без привязки к дате
type TimeString string

// NewTimeString создает TimeString из time.Time (секунды отбрасываются)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(timeStringLayout))
}

// NewTimeStringFromString парсит строку формата "HH:MM"
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// Validate проверяет формат времени
func (t TimeString) Validate() error {
	if _, err := time.Parse(timeStringLayout, string(t)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return nil
}

// IsZero возвращает true, если время не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// String возвращает строковое представление
func (t TimeString) String() string {
	return string(t)
}

// Minutes возвращает количество минут с начала суток
func (t TimeString) Minutes() (int, error) {
	parsed, err := time.Parse(timeStringLayout, string(t))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTimeString, string(t))
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// AddMinutes прибавляет минуты, результат не может выйти за пределы суток
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	current, err := t.Minutes()
	if err != nil {
		return "", err
	}
	total := current + minutes
	if total < 0 || total >= 24*60 {
		return "", fmt.Errorf("%w: %s%+d minutes is outside of the day", ErrInvalidTimeString, t, minutes)
	}
	return TimeString(fmt.Sprintf("%02d:%02d", total/60, total%60)), nil
}

// IsBefore сравнивает время (формат фиксированной ширины сравнивается лексикографически)
func (t TimeString) IsBefore(other TimeString) bool {
	return t < other
}

// IsAfter сравнивает время
func (t TimeString) IsAfter(other TimeString) bool {
	return t > other
}

// On возвращает момент времени в указанный день и часовом поясе
func (t TimeString) On(year int, month time.Month, day int, loc *time.Location) (time.Time, error) {
	minutes, err := t.Minutes()
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, month, day, minutes/60, minutes%60, 0, 0, loc), nil
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	return string(t), nil
}
