package repository

import (
	"context"
	"errors"

	"github.com/gadgetarian/service-tracker/internal/domain"
)

var (
	// ErrNotFound is returned when no service ticket matches.
	ErrNotFound = errors.New("service ticket not found")
	// ErrVersionConflict is returned when a save races another writer.
	ErrVersionConflict = errors.New("service ticket version conflict")
	// ErrDuplicateID is returned when inserting an id that already exists.
	ErrDuplicateID = errors.New("service ticket id already exists")
)

// ServiceFilter narrows List results. Zero value matches everything.
type ServiceFilter struct {
	Search   string
	Statuses []domain.Status
	Category *domain.Category
}

// Matches applies the filter to a single ticket.
func (f ServiceFilter) Matches(ticket *domain.ServiceTicket) bool {
	if !ticket.MatchesSearch(f.Search) {
		return false
	}
	if f.Category != nil && ticket.Category != *f.Category {
		return false
	}
	if len(f.Statuses) > 0 {
		for _, status := range f.Statuses {
			if ticket.Status == status {
				return true
			}
		}
		return false
	}
	return true
}

// ServiceRepository encapsulates service ticket persistence. Implementations
// keep insertion order for List and never return shared slices.
type ServiceRepository interface {
	Insert(ctx context.Context, ticket *domain.ServiceTicket) error
	// Save replaces the stored ticket when its version equals expectedVersion
	// and bumps ticket.Version. Status history is persisted append-only.
	Save(ctx context.Context, ticket *domain.ServiceTicket, expectedVersion int64) error
	// Delete removes the ticket and its history. Missing ids are not an error.
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.ServiceTicket, error)
	GetByCode(ctx context.Context, code string) (*domain.ServiceTicket, error)
	List(ctx context.Context, filter ServiceFilter) ([]domain.ServiceTicket, error)
	Count(ctx context.Context) (int, error)
}
