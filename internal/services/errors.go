package services

import "errors"

// Engine error kinds. Handlers map these to HTTP statuses; the engine never
// swallows any of them. ErrRaceConflict is the only internally retried case,
// and only once.
var (
	ErrOwnerNotFound         = errors.New("owner not found")
	ErrDuplicateChoice       = errors.New("duplicate choice")
	ErrGroupCapacityExceeded = errors.New("group capacity exceeded")
	ErrChoiceNotFound        = errors.New("choice not found")
	ErrGroupNotFound         = errors.New("group not found")
	ErrBoundary              = errors.New("move beyond boundary")
	ErrRaceConflict          = errors.New("concurrent allocation conflict")
)
