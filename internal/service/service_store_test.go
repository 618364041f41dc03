package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gadgetarian/service-tracker/internal/domain"
	"github.com/gadgetarian/service-tracker/internal/events"
	"github.com/gadgetarian/service-tracker/internal/repository"
)

var fixedNow = time.Date(2025, 6, 21, 9, 0, 0, 0, time.UTC)

type eventRecorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *eventRecorder) record(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *eventRecorder) ofType(eventType events.EventType) []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []events.Event
	for _, event := range r.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

func newTestStore(t *testing.T, validator TransitionValidator) (*ServiceStore, repository.ServiceRepository, *eventRecorder) {
	t.Helper()
	repo := repository.NewMemoryServiceRepository()
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	recorder := &eventRecorder{}
	for _, eventType := range []events.EventType{
		events.EventServiceCreated,
		events.EventServiceUpdated,
		events.EventServiceDeleted,
		events.EventServiceStatusChanged,
	} {
		dispatcher.Subscribe(eventType, recorder.record)
	}
	store := NewServiceStore(StoreDependencies{
		Repo:       repo,
		Dispatcher: dispatcher,
		Validator:  validator,
		Clock:      func() time.Time { return fixedNow },
	})
	return store, repo, recorder
}

func macbookInput() ServiceInput {
	return ServiceInput{
		DeviceName: "MacBook Air M2 2020",
		Category:   domain.CategoryLaptop,
		Issue:      "Layar tidak menyala setelah terkena air",
		Customer:   "Budi Santoso",
		Technician: "Reyhan Tahira",
		Status:     domain.StatusInProgress,
		SpareParts: []domain.SparePart{
			{Name: `LCD Screen 13"`, Price: 2500000},
			{Name: "Battery", Price: 1200000},
		},
	}
}

func TestCreateSynthesizesSingleReceiptEntry(t *testing.T) {
	ctx := context.Background()
	store, _, recorder := newTestStore(t, nil)

	ticket, err := store.Create(ctx, macbookInput())
	require.NoError(t, err)

	require.Len(t, ticket.StatusHistory, 1)
	entry := ticket.StatusHistory[0]
	assert.Equal(t, ticket.Status, entry.Status)
	assert.Equal(t, domain.StatusInProgress, entry.Status)
	assert.Equal(t, ReceiptActor, entry.Technician)
	assert.Equal(t, ReceiptDescription, entry.Description)
	assert.Equal(t, fixedNow, entry.Timestamp)
	assert.NotEmpty(t, ticket.ID)
	assert.True(t, strings.HasPrefix(ticket.Code, "SVC-20250621-"), ticket.Code)
	assert.Len(t, ticket.Code, len("SVC-20250621-000"))
	for _, part := range ticket.SpareParts {
		assert.NotEmpty(t, part.ID)
	}

	created := recorder.ofType(events.EventServiceCreated)
	require.Len(t, created, 1)
	assert.Equal(t, ticket.Code, created[0].ServiceCode)
}

func TestCreateDefaultsAndValidation(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, nil)

	input := macbookInput()
	input.Status = ""
	ticket, err := store.Create(ctx, input)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, ticket.Status)

	input.Status = domain.StatusQualityCheck
	_, err = store.Create(ctx, input)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	input = macbookInput()
	input.SpareParts = []domain.SparePart{{Name: "Fan", Price: 0}}
	_, err = store.Create(ctx, input)
	assert.ErrorIs(t, err, ErrInvalidSparePart)

	input.SpareParts = []domain.SparePart{{Name: "  ", Price: 10}}
	_, err = store.Create(ctx, input)
	assert.ErrorIs(t, err, ErrInvalidSparePart)
}

func TestCreateAcceptsDuplicateCallerCodes(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, nil)

	input := macbookInput()
	input.Code = "SVC-20250621-001"
	first, err := store.Create(ctx, input)
	require.NoError(t, err)
	second, err := store.Create(ctx, input)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, ok, err := store.GetByCode(ctx, "SVC-20250621-001")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, got.ID)
}

func TestAppendStatusTransitionIsAppendOnly(t *testing.T) {
	ctx := context.Background()
	store, _, recorder := newTestStore(t, nil)

	ticket, err := store.Create(ctx, macbookInput())
	require.NoError(t, err)

	steps := []domain.Status{
		domain.StatusInProgress,
		domain.StatusDone,
		domain.StatusNotStarted,
		domain.StatusDone,
	}
	previous := ticket.StatusHistory
	for i, status := range steps {
		updated, err := store.AppendStatusTransition(ctx, ticket.ID, status, "step", "Reyhan Tahira")
		require.NoError(t, err)

		assert.Equal(t, status, updated.Status)
		require.Len(t, updated.StatusHistory, len(previous)+1)
		assert.Equal(t, previous, updated.StatusHistory[:len(previous)], "step %d rewrote history", i)

		latest, ok := updated.LatestEntry()
		require.True(t, ok)
		assert.Equal(t, status, latest.Status)
		assert.Equal(t, "Reyhan Tahira", latest.Technician)
		assert.Equal(t, "step", latest.Description)
		previous = updated.StatusHistory
	}

	stored, ok, err := store.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.StatusDone, stored.Status)
	assert.Len(t, stored.StatusHistory, len(steps)+1)
	assert.Equal(t, int64(len(steps)), stored.Version)

	changed := recorder.ofType(events.EventServiceStatusChanged)
	require.Len(t, changed, len(steps))
	payload, ok := changed[1].Payload.(events.ServiceStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.StatusInProgress, payload.OldStatus)
	assert.Equal(t, domain.StatusDone, payload.NewStatus)
	assert.Equal(t, "MacBook Air M2 2020", payload.DeviceName)
}

func TestAppendStatusTransitionMissingService(t *testing.T) {
	store, _, recorder := newTestStore(t, nil)
	_, err := store.AppendStatusTransition(context.Background(), "missing", domain.StatusDone, "x", "y")
	assert.ErrorIs(t, err, ErrServiceNotFound)
	assert.Empty(t, recorder.ofType(events.EventServiceStatusChanged))
}

func TestAppendStatusTransitionRejectsUnknownStatus(t *testing.T) {
	ctx := context.Background()
	store, _, recorder := newTestStore(t, nil)

	ticket, err := store.Create(ctx, macbookInput())
	require.NoError(t, err)

	for _, status := range []domain.Status{"RUSAK", "", domain.StatusAwaitingPart, domain.StatusQualityCheck} {
		_, err := store.AppendStatusTransition(ctx, ticket.ID, status, "x", "y")
		assert.ErrorIs(t, err, ErrInvalidStatus, "status %q", status)
	}

	stored, _, err := store.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, stored.Status)
	assert.Len(t, stored.StatusHistory, 1)
	assert.Zero(t, stored.Version)
	assert.Empty(t, recorder.ofType(events.EventServiceStatusChanged))
}

func TestCreateRejectsTakenID(t *testing.T) {
	ctx := context.Background()
	store, _, recorder := newTestStore(t, nil)

	input := macbookInput()
	input.ID = "svc-1"
	_, err := store.Create(ctx, input)
	require.NoError(t, err)

	_, err = store.Create(ctx, input)
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Len(t, recorder.ofType(events.EventServiceCreated), 1)
}

func TestAppendStatusTransitionHonoursValidator(t *testing.T) {
	ctx := context.Background()
	store, _, recorder := newTestStore(t, StrictTransitions)

	input := macbookInput()
	input.Status = domain.StatusNotStarted
	ticket, err := store.Create(ctx, input)
	require.NoError(t, err)

	_, err = store.AppendStatusTransition(ctx, ticket.ID, domain.StatusDone, "skip ahead", "Ahmad Fauzi")
	require.ErrorIs(t, err, ErrInvalidTransition)

	stored, _, err := store.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, stored.StatusHistory, 1)
	assert.Equal(t, domain.StatusNotStarted, stored.Status)
	assert.Empty(t, recorder.ofType(events.EventServiceStatusChanged))

	_, err = store.AppendStatusTransition(ctx, ticket.ID, domain.StatusInProgress, "diagnosa", "Ahmad Fauzi")
	require.NoError(t, err)
}

func TestEstimatedCostFollowsParts(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, nil)

	ticket, err := store.Create(ctx, macbookInput())
	require.NoError(t, err)
	assert.Equal(t, int64(3700000), ticket.EstimatedCost())

	parts := append(ticket.SpareParts, domain.SparePart{Name: "Keyboard", Price: 1800000})
	updated, err := store.Update(ctx, ticket.ID, ServicePatch{SpareParts: &parts}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5500000), updated.EstimatedCost())

	none := []domain.SparePart{}
	updated, err = store.Update(ctx, ticket.ID, ServicePatch{SpareParts: &none}, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), updated.EstimatedCost())
}

func TestUpdateMergesFieldsAndKeepsHistory(t *testing.T) {
	ctx := context.Background()
	store, _, recorder := newTestStore(t, nil)

	ticket, err := store.Create(ctx, macbookInput())
	require.NoError(t, err)

	notes := "  customer will pick up friday "
	technician := "Ahmad Fauzi"
	updated, err := store.Update(ctx, ticket.ID, ServicePatch{Notes: &notes, Technician: &technician}, nil)
	require.NoError(t, err)

	assert.Equal(t, "customer will pick up friday", updated.Notes)
	assert.Equal(t, "Ahmad Fauzi", updated.Technician)
	assert.Equal(t, ticket.DeviceName, updated.DeviceName)
	assert.Equal(t, ticket.Status, updated.Status)
	assert.Equal(t, ticket.StatusHistory, updated.StatusHistory)

	updatedEvents := recorder.ofType(events.EventServiceUpdated)
	require.Len(t, updatedEvents, 1)
	assert.Equal(t, events.ServiceUpdatedPayload{Fields: []string{"technician", "notes"}}, updatedEvents[0].Payload)
}

func TestUpdateEmptyPatchIsNoop(t *testing.T) {
	ctx := context.Background()
	store, _, recorder := newTestStore(t, nil)
	ticket, err := store.Create(ctx, macbookInput())
	require.NoError(t, err)

	same, err := store.Update(ctx, ticket.ID, ServicePatch{}, nil)
	require.NoError(t, err)
	assert.Equal(t, ticket.Version, same.Version)
	assert.Empty(t, recorder.ofType(events.EventServiceUpdated))
}

func TestUpdateMissingAndStale(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, nil)

	notes := "x"
	_, err := store.Update(ctx, "missing", ServicePatch{Notes: &notes}, nil)
	assert.ErrorIs(t, err, ErrServiceNotFound)

	ticket, err := store.Create(ctx, macbookInput())
	require.NoError(t, err)
	version := ticket.Version

	_, err = store.Update(ctx, ticket.ID, ServicePatch{Notes: &notes}, &version)
	require.NoError(t, err)

	_, err = store.Update(ctx, ticket.ID, ServicePatch{Notes: &notes}, &version)
	assert.ErrorIs(t, err, ErrVersionConflict)
}

func TestDeleteIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store, repo, recorder := newTestStore(t, nil)

	ticket, err := store.Create(ctx, macbookInput())
	require.NoError(t, err)
	_, err = store.Create(ctx, macbookInput())
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, ticket.ID))
	_, ok, err := store.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	before, err := repo.Count(ctx)
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, ticket.ID))
	after, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Len(t, recorder.ofType(events.EventServiceDeleted), 1)
}

func TestLookupsReportAbsence(t *testing.T) {
	store, _, _ := newTestStore(t, nil)
	ticket, ok, err := store.GetByCode(context.Background(), "SVC-00000000-000")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, ticket)
}

func TestReturnedTicketsAreCopies(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, nil)
	ticket, err := store.Create(ctx, macbookInput())
	require.NoError(t, err)

	ticket.StatusHistory[0].Status = domain.StatusDone
	ticket.Status = domain.StatusDone

	stored, _, err := store.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, stored.Status)
	assert.Equal(t, domain.StatusInProgress, stored.StatusHistory[0].Status)
}

func TestConcurrentTransitionsAllLand(t *testing.T) {
	ctx := context.Background()
	store, _, _ := newTestStore(t, nil)
	ticket, err := store.Create(ctx, macbookInput())
	require.NoError(t, err)

	const writers = 20
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.AppendStatusTransition(ctx, ticket.ID, domain.StatusInProgress, "progress", "Reyhan Tahira"); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("transition failed: %v", err)
	}

	stored, _, err := store.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Len(t, stored.StatusHistory, writers+1)
}

type failingRepo struct {
	repository.ServiceRepository
	err error
}

func (f failingRepo) GetByID(context.Context, string) (*domain.ServiceTicket, error) {
	return nil, f.err
}

func TestLookupPropagatesBackendErrors(t *testing.T) {
	boom := errors.New("connection reset")
	store := NewServiceStore(StoreDependencies{Repo: failingRepo{ServiceRepository: repository.NewMemoryServiceRepository(), err: boom}})

	_, ok, err := store.GetByID(context.Background(), "1")
	assert.False(t, ok)
	assert.ErrorIs(t, err, boom)

	assert.ErrorIs(t, store.Delete(context.Background(), "1"), boom)
}
