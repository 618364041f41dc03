package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gadgetarian/service-tracker/internal/domain"
	"github.com/gadgetarian/service-tracker/internal/repository"
)

func TestFormatCode(t *testing.T) {
	day := time.Date(2025, 6, 21, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "SVC-20250621-007", FormatCode(day, 7))
	assert.Equal(t, "SVC-20250621-999", FormatCode(day, 999))
}

func TestCodeGeneratorRetriesOnCollision(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryServiceRepository()
	require.NoError(t, repo.Insert(ctx, &domain.ServiceTicket{ID: "1", Code: "SVC-20250621-001"}))

	gen := NewCodeGenerator(repo, 5)
	draws := []int{1, 1, 2}
	gen.suffix = func() int {
		next := draws[0]
		draws = draws[1:]
		return next
	}

	code, err := gen.Generate(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "SVC-20250621-002", code)
	assert.Empty(t, draws)
}

func TestCodeGeneratorGivesUp(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryServiceRepository()
	require.NoError(t, repo.Insert(ctx, &domain.ServiceTicket{ID: "1", Code: "SVC-20250621-042"}))

	gen := NewCodeGenerator(repo, 3)
	calls := 0
	gen.suffix = func() int { calls++; return 42 }

	_, err := gen.Generate(ctx, fixedNow)
	assert.ErrorIs(t, err, ErrCodeSpaceExhausted)
	assert.Equal(t, 3, calls)
}

func TestCodeGeneratorDefaultAttempts(t *testing.T) {
	gen := NewCodeGenerator(repository.NewMemoryServiceRepository(), 0)
	assert.Equal(t, defaultCodeAttempts, gen.maxAttempts)
	code, err := gen.Generate(context.Background(), fixedNow)
	require.NoError(t, err)
	assert.Regexp(t, `^SVC-20250621-\d{3}$`, code)
}
