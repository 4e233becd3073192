package store

import (
	"context"
	"errors"

	"daily-tasks/internal/model"
)

var (
	ErrNotFound    = errors.New("task not found")
	ErrTransport   = errors.New("remote store request failed")
	ErrPersistence = errors.New("local store write failed")
)

// TaskStore is the single contract both backends implement. Callers never
// branch on which backend sits behind it.
type TaskStore interface {
	FetchAll(ctx context.Context) ([]model.Task, error)
	Add(ctx context.Context, task model.Task) error
	Update(ctx context.Context, id string, patch model.TaskPatch) error
	Delete(ctx context.Context, id string) error
	ClearOneTime(ctx context.Context) error
	ResetRecurring(ctx context.Context, instances []model.Task) error
}

// Error is a failed store operation. Message is the human-readable text the
// backend reported and is shown to the user as is.
type Error struct {
	Kind    error
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		msg = e.Kind.Error()
	}
	return e.Op + ": " + msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Transport wraps a remote failure.
func Transport(op, message string, err error) error {
	return &Error{Kind: ErrTransport, Op: op, Message: message, Err: err}
}

// Persistence wraps a local storage failure.
func Persistence(op string, err error) error {
	return &Error{Kind: ErrPersistence, Op: op, Err: err}
}
