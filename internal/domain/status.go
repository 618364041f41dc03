package domain

// Status enumerates lifecycle states for a service ticket.
type Status string

const (
	StatusNotStarted Status = "BELUM DIKERJAKAN"
	StatusInProgress Status = "PROSES"
	StatusDone       Status = "SUDAH SELESAI"

	// Timeline-only values. They render on the history timeline but are not
	// part of the ticket status enumeration.
	StatusAwaitingPart Status = "MENUNGGU SPARE PART"
	StatusQualityCheck Status = "QUALITY CHECK"
)

// TimelineStages is the number of stages the progress bar is drawn against.
const TimelineStages = 5

var statusLabels = map[Status]string{
	StatusNotStarted:   "Belum Dikerjakan",
	StatusInProgress:   "Dalam Proses",
	StatusDone:         "Sudah Selesai",
	StatusAwaitingPart: "Menunggu Spare Part",
	StatusQualityCheck: "Quality Check",
}

// Valid reports whether s belongs to the ticket status enumeration.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Label returns the human label shown on the dashboard and timeline.
func (s Status) Label() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}
