package domain

import (
	"sort"
	"time"
)

// SalesmanStatus represents whether a salesman takes appointments
type SalesmanStatus string

const (
	SalesmanActive   SalesmanStatus = "active"
	SalesmanInactive SalesmanStatus = "inactive"
)

// Valid reports whether the status is known
func (s SalesmanStatus) Valid() bool {
	return s == SalesmanActive || s == SalesmanInactive
}

// Salesman offers appointment slots to leads
type Salesman struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Priority  int // lower value wins default assignment
	Status    SalesmanStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the salesman can be assigned slots
func (s *Salesman) IsActive() bool {
	return s.Status == SalesmanActive
}

// SortByPriority orders salesmen by priority ascending, ties broken by name then id
func SortByPriority(salesmen []*Salesman) {
	sort.SliceStable(salesmen, func(i, j int) bool {
		a, b := salesmen[i], salesmen[j]
		if a.Priority != b.Priority {
			return a.Priority < b.Priority
		}
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.ID < b.ID
	})
}

// ActiveOnly returns the active salesmen preserving order
func ActiveOnly(salesmen []*Salesman) []*Salesman {
	active := make([]*Salesman, 0, len(salesmen))
	for _, s := range salesmen {
		if s.IsActive() {
			active = append(active, s)
		}
	}
	return active
}
