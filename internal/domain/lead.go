package domain

import (
	"strings"
	"time"
)

// Lead is a prospective customer who submitted the contact form
type Lead struct {
	ID                 string
	Name               string
	Email              string // unique, case-insensitive
	Phone              string
	Service            string
	Timeline           string
	FinancingStatus    string
	LotStatus          string
	QualificationScore int
	Status             string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// Contact is the lead data attached to a booking request
type Contact struct {
	Name            string
	Email           string
	Phone           string
	Service         string
	Timeline        string
	FinancingStatus string
	LotStatus       string
}

// MaxQualificationScore is the highest score a lead can get
const MaxQualificationScore = 45

var (
	timelinePoints = map[string]int{
		"Immediate":   15,
		"3-6 months":  10,
		"6-12 months": 5,
	}
	financingPoints = map[string]int{
		"Ready to proceed": 15,
		"Pre-approved":     10,
		"In process":       5,
	}
	lotPoints = map[string]int{
		"Owned":          15,
		"Under contract": 10,
		"Looking":        5,
	}
)

// QualificationScore rates a lead from 0 to 45. Unknown answers score 0.
func QualificationScore(timeline, financing, lot string) int {
	return timelinePoints[timeline] + financingPoints[financing] + lotPoints[lot]
}

// NormalizeEmail lowercases and trims an email so it can be used as a unique key
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewLead builds a lead from contact data and computes its score
func NewLead(c Contact) *Lead {
	return &Lead{
		Name:               strings.TrimSpace(c.Name),
		Email:              NormalizeEmail(c.Email),
		Phone:              strings.TrimSpace(c.Phone),
		Service:            c.Service,
		Timeline:           c.Timeline,
		FinancingStatus:    c.FinancingStatus,
		LotStatus:          c.LotStatus,
		QualificationScore: QualificationScore(c.Timeline, c.FinancingStatus, c.LotStatus),
		Status:             DefaultLeadStatus,
	}
}

// LeadsFilter selects leads for listings
type LeadsFilter struct {
	Status   *string
	MinScore *int
}
