package service

import (
	"errors"

	"daily-tasks/internal/store"
)

var (
	ErrValidation  = errors.New("invalid task")
	ErrNotFound    = store.ErrNotFound
	ErrTransport   = store.ErrTransport
	ErrPersistence = store.ErrPersistence
	ErrStoreNil    = errors.New("task store is nil")
	ErrRegistryNil = errors.New("template registry is nil")
)

// ValidationError is bad user input. The operation is aborted and nothing changes.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// UserMessage renders err as the text shown to the user.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return vErr.Message
	}

	var sErr *store.Error
	if errors.As(err, &sErr) && sErr.Message != "" {
		return sErr.Message
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return "Task not found."
	case errors.Is(err, ErrTransport):
		return "Server error: " + err.Error()
	case errors.Is(err, ErrPersistence):
		return "Could not save changes: " + err.Error()
	default:
		return err.Error()
	}
}
