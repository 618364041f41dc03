package domain

import "time"

// StatusHistoryEntry is an immutable record of one status change.
type StatusHistoryEntry struct {
	ID          string
	Status      Status
	Timestamp   time.Time
	Description string
	Technician  string
}
