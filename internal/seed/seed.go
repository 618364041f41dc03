// Package seed provides the sample tickets the dashboard starts with.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/gadgetarian/service-tracker/internal/domain"
	"github.com/gadgetarian/service-tracker/internal/repository"
)

type entry struct {
	status      domain.Status
	at          string
	description string
	technician  string
}

func day(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func history(serviceID string, entries ...entry) []domain.StatusHistoryEntry {
	out := make([]domain.StatusHistoryEntry, 0, len(entries))
	for i, e := range entries {
		at, err := time.Parse(time.RFC3339, e.at)
		if err != nil {
			panic(err)
		}
		out = append(out, domain.StatusHistoryEntry{
			ID:          fmt.Sprintf("%s-%d", serviceID, i+1),
			Status:      e.status,
			Timestamp:   at,
			Description: e.description,
			Technician:  e.technician,
		})
	}
	return out
}

const received = "Service diterima dan terdaftar dalam sistem"

// Tickets returns fresh copies of the six sample tickets.
func Tickets() []domain.ServiceTicket {
	tickets := []domain.ServiceTicket{
		{
			ID:                  "1",
			Code:                "SVC-20250621-001",
			DeviceName:          "MacBook Air M2 2020",
			Category:            domain.CategoryLaptop,
			Technician:          "Reyhan Tahira",
			TechnicianPhone:     "+62 812-3456-7890",
			Customer:            "Budi Santoso",
			CustomerPhone:       "+62 821-1234-5678",
			EntryDate:           day("2025-06-18"),
			EstimatedCompletion: day("2025-06-25"),
			Status:              domain.StatusInProgress,
			Issue:               "Layar tidak menyala setelah terkena air",
			SpareParts: []domain.SparePart{
				{ID: "1", Name: `LCD Screen 13"`, Price: 2500000},
				{ID: "2", Name: "Battery", Price: 1200000},
			},
			StatusHistory: history("1",
				entry{domain.StatusNotStarted, "2025-06-18T09:00:00Z", received, "Admin"},
				entry{domain.StatusInProgress, "2025-06-19T10:30:00Z", "Mulai diagnosa kerusakan perangkat", "Reyhan Tahira"},
				entry{domain.StatusInProgress, "2025-06-20T14:15:00Z", "Menunggu kedatangan LCD Screen dan Battery", "Reyhan Tahira"},
				entry{domain.StatusInProgress, "2025-06-21T08:45:00Z", "Spare part sudah datang, mulai proses penggantian", "Reyhan Tahira"},
			),
		},
		{
			ID:                  "2",
			Code:                "SVC-20250621-002",
			DeviceName:          "iPhone 13 Pro",
			Category:            domain.CategoryPhone,
			Technician:          "Reyhan Tahira",
			TechnicianPhone:     "+62 812-3456-7890",
			Customer:            "Sari Dewi",
			CustomerPhone:       "+62 822-2345-6789",
			EntryDate:           day("2025-06-19"),
			EstimatedCompletion: day("2025-06-22"),
			Status:              domain.StatusDone,
			Issue:               "Baterai cepat habis dan overheating saat charging",
			SpareParts: []domain.SparePart{
				{ID: "3", Name: "Battery iPhone 13Pro", Price: 400000},
			},
			StatusHistory: history("2",
				entry{domain.StatusNotStarted, "2025-06-19T09:15:00Z", received, "Admin"},
				entry{domain.StatusInProgress, "2025-06-19T11:00:00Z", "Mulai diagnosa masalah baterai", "Reyhan Tahira"},
				entry{domain.StatusInProgress, "2025-06-20T09:30:00Z", "Penggantian baterai iPhone 13 Pro", "Reyhan Tahira"},
				entry{domain.StatusInProgress, "2025-06-21T15:20:00Z", "Testing fungsi baterai dan charging", "Reyhan Tahira"},
				entry{domain.StatusDone, "2025-06-22T10:00:00Z", "Service selesai, perangkat siap diambil", "Reyhan Tahira"},
			),
		},
		{
			ID:                  "3",
			Code:                "SVC-20250621-003",
			DeviceName:          "iMac 2021",
			Category:            domain.CategoryDesktop,
			Technician:          "Ahmad Fauzi",
			TechnicianPhone:     "+62 813-4567-8901",
			Customer:            "Dina Marlina",
			CustomerPhone:       "+62 823-3456-7890",
			EntryDate:           day("2025-06-20"),
			EstimatedCompletion: day("2025-06-27"),
			Status:              domain.StatusInProgress,
			Issue:               "Komputer restart sendiri secara random",
			StatusHistory: history("3",
				entry{domain.StatusNotStarted, "2025-06-20T08:30:00Z", received, "Admin"},
				entry{domain.StatusInProgress, "2025-06-21T09:15:00Z", "Mulai diagnosa masalah sistem", "Ahmad Fauzi"},
			),
		},
		{
			ID:                  "4",
			Code:                "SVC-20250621-004",
			DeviceName:          `MacBook Pro 14" M1`,
			Category:            domain.CategoryLaptop,
			Technician:          "Reyhan Tahira",
			TechnicianPhone:     "+62 812-3456-7890",
			Customer:            "Andi Wijaya",
			CustomerPhone:       "+62 824-4567-8901",
			EntryDate:           day("2025-06-21"),
			EstimatedCompletion: day("2025-06-28"),
			Status:              domain.StatusNotStarted,
			Issue:               "Keyboard beberapa tombol tidak berfungsi",
			SpareParts: []domain.SparePart{
				{ID: "4", Name: `Keyboard MacBook Pro 14"`, Price: 1800000},
			},
			StatusHistory: history("4",
				entry{domain.StatusNotStarted, "2025-06-21T10:00:00Z", received, "Admin"},
			),
		},
		{
			ID:                  "5",
			Code:                "SVC-20250621-005",
			DeviceName:          "iPhone 14 Plus",
			Category:            domain.CategoryPhone,
			Technician:          "Ahmad Fauzi",
			TechnicianPhone:     "+62 813-4567-8901",
			Customer:            "Lisa Permata",
			CustomerPhone:       "+62 825-5678-9012",
			EntryDate:           day("2025-06-22"),
			EstimatedCompletion: day("2025-06-25"),
			Status:              domain.StatusInProgress,
			Issue:               "Layar retak dan touch screen tidak responsif",
			SpareParts: []domain.SparePart{
				{ID: "5", Name: "LCD Screen iPhone 14 Plus", Price: 3200000},
			},
			StatusHistory: history("5",
				entry{domain.StatusNotStarted, "2025-06-22T09:45:00Z", received, "Admin"},
				entry{domain.StatusInProgress, "2025-06-22T11:30:00Z", "Diagnosa kerusakan layar dan touchscreen", "Ahmad Fauzi"},
				entry{domain.StatusInProgress, "2025-06-22T16:20:00Z", "Menunggu kedatangan LCD Screen iPhone 14 Plus", "Ahmad Fauzi"},
			),
		},
		{
			ID:                  "6",
			Code:                "SVC-20250621-006",
			DeviceName:          `iMac 24" M1`,
			Category:            domain.CategoryDesktop,
			Technician:          "Reyhan Tahira",
			TechnicianPhone:     "+62 812-3456-7890",
			Customer:            "Rudi Hartono",
			CustomerPhone:       "+62 826-6789-0123",
			EntryDate:           day("2025-06-23"),
			EstimatedCompletion: day("2025-06-30"),
			Status:              domain.StatusDone,
			Issue:               "Tidak bisa booting, stuck di logo Apple",
			SpareParts: []domain.SparePart{
				{ID: "6", Name: "SSD 512GB", Price: 2800000},
			},
			StatusHistory: history("6",
				entry{domain.StatusNotStarted, "2025-06-23T08:15:00Z", received, "Admin"},
				entry{domain.StatusInProgress, "2025-06-23T10:00:00Z", "Diagnosa masalah booting sistem", "Reyhan Tahira"},
				entry{domain.StatusInProgress, "2025-06-24T09:30:00Z", "Penggantian SSD dan instalasi ulang sistem", "Reyhan Tahira"},
				entry{domain.StatusInProgress, "2025-06-25T14:45:00Z", "Testing sistem dan performa setelah penggantian SSD", "Reyhan Tahira"},
				entry{domain.StatusDone, "2025-06-26T11:30:00Z", "Service selesai, sistem berjalan normal", "Reyhan Tahira"},
			),
		},
	}
	for i := range tickets {
		first := tickets[i].StatusHistory[0].Timestamp
		last := tickets[i].StatusHistory[len(tickets[i].StatusHistory)-1].Timestamp
		tickets[i].CreatedAt = first
		tickets[i].UpdatedAt = last
	}
	return tickets
}

// Load inserts the sample tickets into an empty repository. A repository
// that already holds tickets is left alone. It reports how many were added.
func Load(ctx context.Context, repo repository.ServiceRepository) (int, error) {
	count, err := repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}
	tickets := Tickets()
	for i := range tickets {
		if err := repo.Insert(ctx, &tickets[i]); err != nil {
			return i, fmt.Errorf("seed ticket %s: %w", tickets[i].Code, err)
		}
	}
	return len(tickets), nil
}
