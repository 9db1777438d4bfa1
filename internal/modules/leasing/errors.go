package leasing

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound         = errors.New("player listing not found")
	ErrAlreadyListed    = errors.New("user already has a player listing")
	ErrNotAvailable     = errors.New("player is not available for hire")
	ErrNotHired         = errors.New("player is not currently hired")
	ErrInvalidHours     = errors.New("hours must be at least 1")
	ErrInvalidRating    = errors.New("rating must be between 0 and 5")
	ErrValidation       = errors.New("validation error")
	ErrConcurrentUpdate = errors.New("player listing was modified concurrently")
	ErrForbidden        = errors.New("not allowed to change this player listing")
	ErrSelfHire         = errors.New("cannot hire your own player listing")
)

// ValidationError carries per-field failures and matches ErrValidation.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return "validation error: " + strings.Join(keys, ", ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
