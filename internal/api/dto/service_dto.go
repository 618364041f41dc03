package dto

import (
	"strconv"
	"strings"
	"time"

	"github.com/gadgetarian/service-tracker/internal/domain"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// SparePartPayload is a spare part on requests and responses.
type SparePartPayload struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

// CreateServiceRequest payload.
type CreateServiceRequest struct {
	ID                  string             `json:"id"`
	Code                string             `json:"code"`
	DeviceName          string             `json:"device_name"`
	Category            domain.Category    `json:"category"`
	Issue               string             `json:"issue"`
	Customer            string             `json:"customer"`
	CustomerPhone       string             `json:"customer_phone"`
	Technician          string             `json:"technician"`
	TechnicianPhone     string             `json:"technician_phone"`
	EntryDate           string             `json:"entry_date"`
	EstimatedCompletion string             `json:"estimated_completion"`
	Status              domain.Status      `json:"status"`
	SpareParts          []SparePartPayload `json:"spare_parts"`
	Notes               string             `json:"notes"`
}

// UpdateServiceRequest payload. Absent fields are left unchanged.
type UpdateServiceRequest struct {
	Code                *string             `json:"code"`
	DeviceName          *string             `json:"device_name"`
	Category            *domain.Category    `json:"category"`
	Issue               *string             `json:"issue"`
	Customer            *string             `json:"customer"`
	CustomerPhone       *string             `json:"customer_phone"`
	Technician          *string             `json:"technician"`
	TechnicianPhone     *string             `json:"technician_phone"`
	EntryDate           *string             `json:"entry_date"`
	EstimatedCompletion *string             `json:"estimated_completion"`
	SpareParts          *[]SparePartPayload `json:"spare_parts"`
	Notes               *string             `json:"notes"`
	Version             *int64              `json:"version"`
}

// StatusUpdateRequest payload.
type StatusUpdateRequest struct {
	Status      domain.Status `json:"status"`
	Description string        `json:"description"`
}

// Progress is the timeline progress bar state.
type Progress struct {
	Steps int `json:"steps"`
	Total int `json:"total"`
}

// StatusHistoryResponse is one timeline entry.
type StatusHistoryResponse struct {
	ID          string        `json:"id"`
	Status      domain.Status `json:"status"`
	StatusLabel string        `json:"status_label"`
	Timestamp   time.Time     `json:"timestamp"`
	Description string        `json:"description"`
	Technician  string        `json:"technician"`
}

// ServiceSummary is a dashboard row.
type ServiceSummary struct {
	ID                   string          `json:"id"`
	Code                 string          `json:"code"`
	DeviceName           string          `json:"device_name"`
	Category             domain.Category `json:"category"`
	Customer             string          `json:"customer"`
	Technician           string          `json:"technician"`
	Status               domain.Status   `json:"status"`
	StatusLabel          string          `json:"status_label"`
	EntryDate            string          `json:"entry_date"`
	EstimatedCompletion  string          `json:"estimated_completion"`
	EstimatedCost        int64           `json:"estimated_cost"`
	EstimatedCostDisplay string          `json:"estimated_cost_display"`
}

// ServiceDetail is the full ticket view.
type ServiceDetail struct {
	ServiceSummary
	Issue           string                  `json:"issue"`
	CustomerPhone   string                  `json:"customer_phone"`
	TechnicianPhone string                  `json:"technician_phone"`
	SpareParts      []SparePartPayload      `json:"spare_parts"`
	Notes           string                  `json:"notes,omitempty"`
	StatusHistory   []StatusHistoryResponse `json:"status_history"`
	Progress        Progress                `json:"progress"`
	Version         int64                   `json:"version"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// SubscriptionResponse reports whether a code is followed.
type SubscriptionResponse struct {
	Code       string `json:"code"`
	Subscribed bool   `json:"subscribed"`
}

// NewServiceSummary maps a ticket to a dashboard row.
func NewServiceSummary(t *domain.ServiceTicket) ServiceSummary {
	cost := t.EstimatedCost()
	return ServiceSummary{
		ID:                   t.ID,
		Code:                 t.Code,
		DeviceName:           t.DeviceName,
		Category:             t.Category,
		Customer:             t.Customer,
		Technician:           t.Technician,
		Status:               t.Status,
		StatusLabel:          t.Status.Label(),
		EntryDate:            FormatDate(t.EntryDate),
		EstimatedCompletion:  FormatDate(t.EstimatedCompletion),
		EstimatedCost:        cost,
		EstimatedCostDisplay: FormatRupiah(cost),
	}
}

// NewServiceDetail maps a ticket to its full view.
func NewServiceDetail(t *domain.ServiceTicket) ServiceDetail {
	parts := make([]SparePartPayload, 0, len(t.SpareParts))
	for _, part := range t.SpareParts {
		parts = append(parts, SparePartPayload{ID: part.ID, Name: part.Name, Price: part.Price})
	}
	return ServiceDetail{
		ServiceSummary:  NewServiceSummary(t),
		Issue:           t.Issue,
		CustomerPhone:   t.CustomerPhone,
		TechnicianPhone: t.TechnicianPhone,
		SpareParts:      parts,
		Notes:           t.Notes,
		StatusHistory:   NewStatusHistory(t.StatusHistory),
		Progress:        NewProgress(len(t.StatusHistory)),
		Version:         t.Version,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}

// NewStatusHistory maps history entries in order.
func NewStatusHistory(entries []domain.StatusHistoryEntry) []StatusHistoryResponse {
	out := make([]StatusHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		out = append(out, StatusHistoryResponse{
			ID:          entry.ID,
			Status:      entry.Status,
			StatusLabel: entry.Status.Label(),
			Timestamp:   entry.Timestamp,
			Description: entry.Description,
			Technician:  entry.Technician,
		})
	}
	return out
}

// NewProgress caps recorded steps at the number of timeline stages.
func NewProgress(entries int) Progress {
	if entries > domain.TimelineStages {
		entries = domain.TimelineStages
	}
	return Progress{Steps: entries, Total: domain.TimelineStages}
}

// FormatRupiah renders an amount the way Indonesian price tags do: Rp 3.700.000.
func FormatRupiah(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return "Rp " + sign + b.String()
}

// FormatDate renders a calendar date, empty for the zero time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// ParseDate parses a calendar date; an empty string is the zero time.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(DateLayout, value)
}
