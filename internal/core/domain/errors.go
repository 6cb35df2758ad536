package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrDuplicateEmail     = errors.New("email already registered")
	ErrIdentityNotFound   = errors.New("identity not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionInvalid     = errors.New("session invalid")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("password mismatch")
)

// ValidationError reports malformed or missing input fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

// RejectedError is a failed login. Its message never reveals the reason.
type RejectedError struct {
	Reason RejectReason
}

func (e *RejectedError) Error() string { return ErrInvalidCredentials.Error() }

func (e *RejectedError) Is(target error) bool { return target == ErrInvalidCredentials }

// StoreError wraps an unexpected failure from the credential or session store.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError wraps err, leaving nil and existing StoreErrors untouched.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StoreError
	if errors.As(err, &se) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
