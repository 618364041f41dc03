package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gadgetarian/service-tracker/internal/domain"
	"github.com/gadgetarian/service-tracker/internal/events"
	"github.com/gadgetarian/service-tracker/internal/observability"
	"github.com/gadgetarian/service-tracker/internal/repository"
)

const (
	// ReceiptActor records the initial history entry.
	ReceiptActor = "Admin"
	// ReceiptDescription is the text of the initial history entry.
	ReceiptDescription = "Service diterima dan terdaftar dalam sistem"
)

// ServiceStore owns the service tickets and their status history. Status only
// changes through AppendStatusTransition, which appends to the history in the
// same write.
type ServiceStore struct {
	mu         sync.Mutex
	repo       repository.ServiceRepository
	codes      *CodeGenerator
	validator  TransitionValidator
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// StoreDependencies bundles collaborators for the store.
type StoreDependencies struct {
	Repo            repository.ServiceRepository
	Dispatcher      events.Dispatcher
	Validator       TransitionValidator
	Metrics         *observability.Metrics
	Logger          *zap.Logger
	CodeMaxAttempts int
	Clock           func() time.Time
}

// ServiceInput is the creation payload. History is always synthesized.
type ServiceInput struct {
	ID                  string
	Code                string
	DeviceName          string
	Category            domain.Category
	Issue               string
	Customer            string
	CustomerPhone       string
	Technician          string
	TechnicianPhone     string
	EntryDate           time.Time
	EstimatedCompletion time.Time
	Status              domain.Status
	SpareParts          []domain.SparePart
	Notes               string
}

// ServicePatch carries the fields an edit may replace. Nil fields are left
// untouched. Status and history are deliberately absent.
type ServicePatch struct {
	Code                *string
	DeviceName          *string
	Category            *domain.Category
	Issue               *string
	Customer            *string
	CustomerPhone       *string
	Technician          *string
	TechnicianPhone     *string
	EntryDate           *time.Time
	EstimatedCompletion *time.Time
	SpareParts          *[]domain.SparePart
	Notes               *string
}

// NewServiceStore constructs the store.
func NewServiceStore(deps StoreDependencies) *ServiceStore {
	validator := deps.Validator
	if validator == nil {
		validator = AllowAnyTransition
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ServiceStore{
		repo:       deps.Repo,
		codes:      NewCodeGenerator(deps.Repo, deps.CodeMaxAttempts),
		validator:  validator,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        clock,
	}
}

// Create registers a new ticket with a single "received" history entry. An
// empty id or code is generated; an empty status means not started. Caller
// supplied codes are stored even when another ticket already carries them.
func (s *ServiceStore) Create(ctx context.Context, input ServiceInput) (*domain.ServiceTicket, error) {
	if input.Status == "" {
		input.Status = domain.StatusNotStarted
	}
	if !input.Status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, input.Status)
	}
	parts, err := normalizeParts(input.SpareParts)
	if err != nil {
		return nil, err
	}

	ticket, err := s.insert(ctx, input, parts)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("service created", zap.String("service_id", ticket.ID), zap.String("code", ticket.Code))

	s.publishEvent(ctx, events.Event{
		Type:        events.EventServiceCreated,
		ServiceID:   ticket.ID,
		ServiceCode: ticket.Code,
		Actor:       ReceiptActor,
		Payload: events.ServiceCreatedPayload{
			DeviceName: ticket.DeviceName,
			Category:   ticket.Category,
			Status:     ticket.Status,
		},
	})
	return ticket, nil
}

func (s *ServiceStore) insert(ctx context.Context, input ServiceInput, parts []domain.SparePart) (*domain.ServiceTicket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	now := s.now()
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if input.Code == "" {
		if input.Code, err = s.codes.Generate(ctx, now); err != nil {
			return nil, err
		}
	}

	ticket := &domain.ServiceTicket{
		ID:                  input.ID,
		Code:                strings.TrimSpace(input.Code),
		DeviceName:          strings.TrimSpace(input.DeviceName),
		Category:            input.Category,
		Issue:               strings.TrimSpace(input.Issue),
		Customer:            strings.TrimSpace(input.Customer),
		CustomerPhone:       strings.TrimSpace(input.CustomerPhone),
		Technician:          strings.TrimSpace(input.Technician),
		TechnicianPhone:     strings.TrimSpace(input.TechnicianPhone),
		EntryDate:           input.EntryDate,
		EstimatedCompletion: input.EstimatedCompletion,
		Status:              input.Status,
		SpareParts:          parts,
		Notes:               strings.TrimSpace(input.Notes),
		StatusHistory: []domain.StatusHistoryEntry{{
			ID:          uuid.NewString(),
			Status:      input.Status,
			Timestamp:   now,
			Description: ReceiptDescription,
			Technician:  ReceiptActor,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Insert(ctx, ticket); err != nil {
		return nil, err
	}
	return ticket.Clone(), nil
}

// Update merges patch into the ticket. When expectedVersion is set the edit
// only applies to that version.
func (s *ServiceStore) Update(ctx context.Context, id string, patch ServicePatch, expectedVersion *int64) (*domain.ServiceTicket, error) {
	if patch.SpareParts != nil {
		parts, err := normalizeParts(*patch.SpareParts)
		if err != nil {
			return nil, err
		}
		patch.SpareParts = &parts
	}

	ticket, fields, err := s.merge(ctx, id, patch, expectedVersion)
	if err != nil || len(fields) == 0 {
		return ticket, err
	}
	s.logger.Debug("service updated", zap.String("service_id", ticket.ID), zap.Strings("fields", fields))

	s.publishEvent(ctx, events.Event{
		Type:        events.EventServiceUpdated,
		ServiceID:   ticket.ID,
		ServiceCode: ticket.Code,
		Payload:     events.ServiceUpdatedPayload{Fields: fields},
	})
	return ticket, nil
}

func (s *ServiceStore) merge(ctx context.Context, id string, patch ServicePatch, expectedVersion *int64) (*domain.ServiceTicket, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ticket, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if expectedVersion != nil && *expectedVersion != ticket.Version {
		return nil, nil, ErrVersionConflict
	}
	fields := patch.apply(ticket)
	if len(fields) == 0 {
		return ticket, nil, nil
	}
	ticket.UpdatedAt = s.now()
	if err := s.save(ctx, ticket); err != nil {
		return nil, nil, err
	}
	return ticket.Clone(), fields, nil
}

// Delete removes a ticket and its history. Missing ids are ignored.
func (s *ServiceStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	ticket, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		s.mu.Unlock()
		return nil
	}
	if err == nil {
		err = s.repo.Delete(ctx, id)
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.logger.Debug("service deleted", zap.String("service_id", id))

	s.publishEvent(ctx, events.Event{
		Type:        events.EventServiceDeleted,
		ServiceID:   ticket.ID,
		ServiceCode: ticket.Code,
	})
	return nil
}

// GetByID looks a ticket up by id. Absence is reported through found, err
// only carries backend failures.
func (s *ServiceStore) GetByID(ctx context.Context, id string) (*domain.ServiceTicket, bool, error) {
	return found(s.repo.GetByID(ctx, id))
}

// GetByCode returns the first ticket registered under code.
func (s *ServiceStore) GetByCode(ctx context.Context, code string) (*domain.ServiceTicket, bool, error) {
	return found(s.repo.GetByCode(ctx, strings.TrimSpace(code)))
}

// List returns tickets matching filter in registration order.
func (s *ServiceStore) List(ctx context.Context, filter repository.ServiceFilter) ([]domain.ServiceTicket, error) {
	return s.repo.List(ctx, filter)
}

// AppendStatusTransition records a status change by actor and makes it the
// ticket's current status. A status changed event follows the write.
func (s *ServiceStore) AppendStatusTransition(ctx context.Context, id string, status domain.Status, description, actor string) (*domain.ServiceTicket, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	s.mu.Lock()
	ticket, err := s.load(ctx, id)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	previous := ticket.Status
	if err := s.validator(previous, status); err != nil {
		s.mu.Unlock()
		return nil, err
	}

	now := s.now()
	entry := domain.StatusHistoryEntry{
		ID:          uuid.NewString(),
		Status:      status,
		Timestamp:   now,
		Description: description,
		Technician:  actor,
	}
	ticket.StatusHistory = append(ticket.StatusHistory, entry)
	ticket.Status = status
	ticket.UpdatedAt = now
	if err := s.save(ctx, ticket); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.mu.Unlock()

	s.metrics.RecordTransition(string(status))
	s.logger.Debug("service status appended",
		zap.String("service_id", ticket.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(status)))

	s.publishEvent(ctx, events.Event{
		Type:        events.EventServiceStatusChanged,
		ServiceID:   ticket.ID,
		ServiceCode: ticket.Code,
		Actor:       actor,
		Timestamp:   now,
		Payload: events.ServiceStatusChangedPayload{
			DeviceName:  ticket.DeviceName,
			OldStatus:   previous,
			NewStatus:   status,
			Description: description,
			EntryID:     entry.ID,
		},
	})
	return ticket.Clone(), nil
}

func (s *ServiceStore) load(ctx context.Context, id string) (*domain.ServiceTicket, error) {
	ticket, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrServiceNotFound
	}
	return ticket, err
}

func (s *ServiceStore) save(ctx context.Context, ticket *domain.ServiceTicket) error {
	err := s.repo.Save(ctx, ticket, ticket.Version)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrServiceNotFound
	}
	return err
}

func (s *ServiceStore) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("publish event failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

func found(ticket *domain.ServiceTicket, err error) (*domain.ServiceTicket, bool, error) {
	if errors.Is(err, repository.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return ticket, true, nil
}

func normalizeParts(parts []domain.SparePart) ([]domain.SparePart, error) {
	out := make([]domain.SparePart, 0, len(parts))
	for _, part := range parts {
		part.Name = strings.TrimSpace(part.Name)
		if part.Name == "" || part.Price <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSparePart, part.Name)
		}
		if part.ID == "" {
			part.ID = uuid.NewString()
		}
		out = append(out, part)
	}
	return out, nil
}

func (p ServicePatch) apply(t *domain.ServiceTicket) []string {
	var fields []string
	setString := func(name string, dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
			fields = append(fields, name)
		}
	}
	setString("code", &t.Code, p.Code)
	setString("device_name", &t.DeviceName, p.DeviceName)
	setString("issue", &t.Issue, p.Issue)
	setString("customer", &t.Customer, p.Customer)
	setString("customer_phone", &t.CustomerPhone, p.CustomerPhone)
	setString("technician", &t.Technician, p.Technician)
	setString("technician_phone", &t.TechnicianPhone, p.TechnicianPhone)
	setString("notes", &t.Notes, p.Notes)
	if p.Category != nil {
		t.Category = *p.Category
		fields = append(fields, "category")
	}
	if p.EntryDate != nil {
		t.EntryDate = *p.EntryDate
		fields = append(fields, "entry_date")
	}
	if p.EstimatedCompletion != nil {
		t.EstimatedCompletion = *p.EstimatedCompletion
		fields = append(fields, "estimated_completion")
	}
	if p.SpareParts != nil {
		t.SpareParts = append([]domain.SparePart(nil), (*p.SpareParts)...)
		fields = append(fields, "spare_parts")
	}
	return fields
}
