// Package slotgen produces candidate appointment instants for a business calendar.
package slotgen

import (
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/m04kA/MHS-BookingService/pkg/types"
)

var (
	// ErrInvalidPolicy the calendar policy cannot produce instants
	ErrInvalidPolicy = errors.New("slotgen: invalid policy")

	// ErrInvalidWeekday unknown weekday name
	ErrInvalidWeekday = errors.New("slotgen: invalid weekday")
)

// Policy describes when the business takes appointments
type Policy struct {
	Location    *time.Location   // business time zone; nil means UTC
	DayStart    types.TimeString // first instant of a working day, inclusive
	DayEnd      types.TimeString // last instant of a working day, inclusive
	Step        time.Duration
	Weekdays    []time.Weekday // empty means Monday to Friday
	HorizonDays int
}

// DefaultWeekdays Monday to Friday
var DefaultWeekdays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday,
}

// Validate checks that the policy yields a finite, well-formed sequence
func (p Policy) Validate() error {
	start, err := p.DayStart.Minutes()
	if err != nil {
		return fmt.Errorf("%w: day start: %v", ErrInvalidPolicy, err)
	}
	end, err := p.DayEnd.Minutes()
	if err != nil {
		return fmt.Errorf("%w: day end: %v", ErrInvalidPolicy, err)
	}
	if end < start {
		return fmt.Errorf("%w: day end %s is before day start %s", ErrInvalidPolicy, p.DayEnd, p.DayStart)
	}
	if p.Step < time.Minute {
		return fmt.Errorf("%w: step must be at least one minute", ErrInvalidPolicy)
	}
	if p.HorizonDays < 0 {
		return fmt.Errorf("%w: horizon must not be negative", ErrInvalidPolicy)
	}
	return nil
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.UTC
	}
	return p.Location
}

func (p Policy) worksOn(day time.Weekday) bool {
	weekdays := p.Weekdays
	if len(weekdays) == 0 {
		weekdays = DefaultWeekdays
	}
	for _, w := range weekdays {
		if w == day {
			return true
		}
	}
	return false
}

// Candidates yields every working instant, in UTC, for HorizonDays calendar days
// starting at the business-local date of start. Both day bounds are inclusive.
// Instants already in the past are not filtered. An invalid policy yields nothing.
func Candidates(p Policy, start time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		if p.Validate() != nil {
			return
		}
		loc := p.location()
		first := start.In(loc)

		for i := 0; i < p.HorizonDays; i++ {
			day := time.Date(first.Year(), first.Month(), first.Day()+i, 0, 0, 0, 0, loc)
			if !p.worksOn(day.Weekday()) {
				continue
			}

			open, _ := p.DayStart.On(day.Year(), day.Month(), day.Day(), loc)
			closing, _ := p.DayEnd.On(day.Year(), day.Month(), day.Day(), loc)

			for at := open; !at.After(closing); at = at.Add(p.Step) {
				if !yield(at.UTC()) {
					return
				}
			}
		}
	}
}

// Generate collects Candidates into a slice
func Generate(p Policy, start time.Time) ([]time.Time, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	result := make([]time.Time, 0)
	for at := range Candidates(p, start) {
		result = append(result, at)
	}
	return result, nil
}

// ParseWeekdays converts names such as "mon,tue" or "Monday" into weekdays
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	result := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		n := strings.ToLower(strings.TrimSpace(name))
		if len(n) < 3 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
		}
		found := false
		for d := time.Sunday; d <= time.Saturday; d++ {
			full := strings.ToLower(d.String())
			if n == full || n == full[:3] {
				result = append(result, d)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %q", ErrInvalidWeekday, name)
		}
	}
	return result, nil
}
