package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/gadgetarian/service-tracker/internal/repository"
)

const defaultCodeAttempts = 10

// FormatCode renders SVC-YYYYMMDD-NNN.
func FormatCode(day time.Time, suffix int) string {
	return fmt.Sprintf("SVC-%s-%03d", day.Format("20060102"), suffix)
}

// CodeGenerator draws random daily codes and retries on collision.
type CodeGenerator struct {
	repo        repository.ServiceRepository
	maxAttempts int
	suffix      func() int
}

// NewCodeGenerator creates a generator checking collisions against repo.
func NewCodeGenerator(repo repository.ServiceRepository, maxAttempts int) *CodeGenerator {
	if maxAttempts <= 0 {
		maxAttempts = defaultCodeAttempts
	}
	return &CodeGenerator{
		repo:        repo,
		maxAttempts: maxAttempts,
		suffix:      func() int { return rand.Intn(1000) },
	}
}

// Generate returns a code for day not yet held by any stored ticket.
func (g *CodeGenerator) Generate(ctx context.Context, day time.Time) (string, error) {
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		code := FormatCode(day, g.suffix())
		_, err := g.repo.GetByCode(ctx, code)
		if errors.Is(err, repository.ErrNotFound) {
			return code, nil
		}
		if err != nil {
			return "", err
		}
	}
	return "", fmt.Errorf("%w after %d attempts", ErrCodeSpaceExhausted, g.maxAttempts)
}
