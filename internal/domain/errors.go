// Package domain defines core types, ports, and errors shared by the metric
// query engine and the facet registry.
package domain

import "fmt"

// NotFoundError indicates a named metric, session, or facet was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a duplicate definition.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// TemplateError indicates a query template could not be rendered: a
// placeholder referenced an identifier that is unknown or unbound, or a
// directive failed while rewriting the template.
type TemplateError struct {
	Identifier string // offending placeholder name, empty for directive failures
	Message    string
	Err        error
}

func (e *TemplateError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TemplateError) Unwrap() error { return e.Err }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrUnboundIdentifier reports a placeholder whose identifier has no value.
func ErrUnboundIdentifier(name string) *TemplateError {
	return &TemplateError{
		Identifier: name,
		Message:    fmt.Sprintf("template identifier %q is not bound (table name unset)", name),
	}
}

// ErrUnknownIdentifier reports a placeholder naming an identifier outside
// the fixed substitution set.
func ErrUnknownIdentifier(name string) *TemplateError {
	return &TemplateError{
		Identifier: name,
		Message:    fmt.Sprintf("template identifier %q is not defined", name),
	}
}
