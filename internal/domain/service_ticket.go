package domain

import (
	"strings"
	"time"
)

// Category enumerates the device families the shop repairs.
type Category string

const (
	CategoryLaptop  Category = "MacBook"
	CategoryPhone   Category = "iPhone"
	CategoryDesktop Category = "iMac"
)

// Valid reports whether c is one of the supported categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryLaptop, CategoryPhone, CategoryDesktop:
		return true
	}
	return false
}

// SparePart is a replacement part billed on a service ticket.
type SparePart struct {
	ID    string
	Name  string
	Price int64
}

// ServiceTicket is the aggregate for one repair job.
type ServiceTicket struct {
	ID                  string
	Code                string
	DeviceName          string
	Category            Category
	Issue               string
	Customer            string
	CustomerPhone       string
	Technician          string
	TechnicianPhone     string
	EntryDate           time.Time
	EstimatedCompletion time.Time
	Status              Status
	SpareParts          []SparePart
	StatusHistory       []StatusHistoryEntry
	Notes               string
	Version             int64
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// EstimatedCost sums the prices of the current spare parts.
func (t *ServiceTicket) EstimatedCost() int64 {
	var total int64
	for _, part := range t.SpareParts {
		total += part.Price
	}
	return total
}

// LatestEntry returns the most recently appended history entry.
func (t *ServiceTicket) LatestEntry() (StatusHistoryEntry, bool) {
	if len(t.StatusHistory) == 0 {
		return StatusHistoryEntry{}, false
	}
	return t.StatusHistory[len(t.StatusHistory)-1], true
}

// Clone returns a deep copy so callers never share slices with the store.
func (t *ServiceTicket) Clone() *ServiceTicket {
	if t == nil {
		return nil
	}
	cp := *t
	cp.SpareParts = append([]SparePart(nil), t.SpareParts...)
	cp.StatusHistory = append([]StatusHistoryEntry(nil), t.StatusHistory...)
	return &cp
}

// MatchesSearch reports whether term appears in the code, device name or customer.
func (t *ServiceTicket) MatchesSearch(term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(t.Code), term) ||
		strings.Contains(strings.ToLower(t.DeviceName), term) ||
		strings.Contains(strings.ToLower(t.Customer), term)
}
