package service

import (
	"fmt"
	"strings"

	"github.com/gadgetarian/service-tracker/internal/domain"
)

// TransitionValidator decides whether a ticket may move from one status to
// another. A nil error allows the transition.
type TransitionValidator func(from, to domain.Status) error

// Transition modes accepted by TransitionValidatorFor.
const (
	TransitionsPermissive = "permissive"
	TransitionsStrict     = "strict"
)

// AllowAnyTransition accepts every target, including repeats.
func AllowAnyTransition(_, _ domain.Status) error {
	return nil
}

var allowedTransitions = map[domain.Status][]domain.Status{
	domain.StatusNotStarted: {domain.StatusInProgress},
	domain.StatusInProgress: {domain.StatusInProgress, domain.StatusDone},
	domain.StatusDone:       {domain.StatusInProgress},
}

// StrictTransitions follows the shop floor path: not started, in progress
// (with any number of progress notes), done. A finished job may be reopened.
func StrictTransitions(from, to domain.Status) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidTransition, to)
	}
	for _, candidate := range allowedTransitions[from] {
		if candidate == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s to %s", ErrInvalidTransition, from, to)
}

// TransitionValidatorFor resolves a configured mode.
func TransitionValidatorFor(mode string) (TransitionValidator, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "", TransitionsPermissive:
		return AllowAnyTransition, nil
	case TransitionsStrict:
		return StrictTransitions, nil
	}
	return nil, fmt.Errorf("unknown transition mode %q", mode)
}
