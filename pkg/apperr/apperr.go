// Package apperr defines the domain error taxonomy shared by services and
// translated into HTTP responses at the boundary.
package apperr

import "fmt"

// ValidationError reports malformed or policy-violating input. Field is
// optional and names the offending input when known.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func Validation(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func ValidationField(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// NotFoundError reports a referenced entity that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s with id %s not found", e.Resource, e.ID)
}

func NotFound(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ConflictError reports a duplicate unique key (e.g. email already taken).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func Conflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// UnauthorizedError reports a missing/invalid/expired credential or a role
// mismatch. Forbidden distinguishes 403 from 401.
type UnauthorizedError struct {
	Message   string
	Forbidden bool
}

func (e *UnauthorizedError) Error() string { return e.Message }

func Unauthorized(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

func Forbidden(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message, Forbidden: true}
}

// ProviderError wraps a failure from an external collaborator (payment
// gateway, captcha verifier). Surfaced as 502.
type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

func Provider(provider string, err error) *ProviderError {
	return &ProviderError{Provider: provider, Err: err}
}
