package services

import (
	"errors"
	"strings"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access denied")
	ErrLockedOut       = errors.New("account locked out")
	ErrPersistence     = errors.New("storage operation failed")
)

// FieldError is a single validation message. An empty Field is a form-level message.
type FieldError struct {
	Field   string
	Message string
}

type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		if fe.Field == "" {
			msgs = append(msgs, fe.Message)
			continue
		}
		msgs = append(msgs, fe.Field+": "+fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, FieldError{Field: field, Message: message})
}

// Messages flattens the errors for re-display on a form.
func (v ValidationErrors) Messages() []string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Message)
	}
	return msgs
}

// PersistenceError wraps a failed store call; errors.Is(err, ErrPersistence) holds for it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func persistence(op string, err error) error {
	return &PersistenceError{Op: op, Err: err}
}
