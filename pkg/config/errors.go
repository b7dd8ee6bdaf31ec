package config

import (
	"fmt"

	"github.com/aretw0/formtree/pkg/domain"
)

// FieldError reports one problem in a definition.
type FieldError struct {
	Path   string // Dotted location of the offending form or control
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", e.Path, e.Field, e.Reason)
}

// AggregateError collects every problem found by Validate.
type AggregateError struct {
	Errors []error
}

func (e *AggregateError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msg := fmt.Sprintf("%d definition errors:\n", len(e.Errors))
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Is matches domain.ErrInvalidDefinition.
func (e *AggregateError) Is(target error) bool {
	return target == domain.ErrInvalidDefinition
}

func (e *AggregateError) Unwrap() []error { return e.Errors }

// FieldErrors returns the problems carried by err, or nil.
func FieldErrors(err error) []error {
	if aggr, ok := err.(*AggregateError); ok {
		return aggr.Errors
	}
	return nil
}
