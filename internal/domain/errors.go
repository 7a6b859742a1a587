package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUpstream         = errors.New("upstream store failure")
	ErrDuplicatePending = errors.New("duplicate pending request")
)

// ConflictError reports that an upgrade request is already pending for
// the user. ExistingID lets callers point at the earlier request.
type ConflictError struct {
	ExistingID string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("upgrade request %s already pending", e.ExistingID)
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrDuplicatePending
}
