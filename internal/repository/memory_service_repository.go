package repository

import (
	"context"
	"sync"

	"github.com/gadgetarian/service-tracker/internal/domain"
)

type memoryServiceRepository struct {
	mu      sync.RWMutex
	order   []string
	tickets map[string]*domain.ServiceTicket
}

// NewMemoryServiceRepository builds an in-process repository. Contents are
// lost when the process exits.
func NewMemoryServiceRepository() ServiceRepository {
	return &memoryServiceRepository{tickets: make(map[string]*domain.ServiceTicket)}
}

func (r *memoryServiceRepository) Insert(_ context.Context, ticket *domain.ServiceTicket) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tickets[ticket.ID]; exists {
		return ErrDuplicateID
	}
	r.tickets[ticket.ID] = ticket.Clone()
	r.order = append(r.order, ticket.ID)
	return nil
}

func (r *memoryServiceRepository) Save(_ context.Context, ticket *domain.ServiceTicket, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.tickets[ticket.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != expectedVersion {
		return ErrVersionConflict
	}
	ticket.Version = expectedVersion + 1
	r.tickets[ticket.ID] = ticket.Clone()
	return nil
}

func (r *memoryServiceRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tickets[id]; !ok {
		return nil
	}
	delete(r.tickets, id)
	for i, candidate := range r.order {
		if candidate == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *memoryServiceRepository) GetByID(_ context.Context, id string) (*domain.ServiceTicket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return ticket.Clone(), nil
}

// GetByCode returns the earliest inserted ticket carrying code.
func (r *memoryServiceRepository) GetByCode(_ context.Context, code string) (*domain.ServiceTicket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, id := range r.order {
		if ticket := r.tickets[id]; ticket.Code == code {
			return ticket.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r *memoryServiceRepository) List(_ context.Context, filter ServiceFilter) ([]domain.ServiceTicket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.ServiceTicket, 0, len(r.order))
	for _, id := range r.order {
		ticket := r.tickets[id]
		if filter.Matches(ticket) {
			result = append(result, *ticket.Clone())
		}
	}
	return result, nil
}

func (r *memoryServiceRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order), nil
}
