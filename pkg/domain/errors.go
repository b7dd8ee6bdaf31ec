package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNonObjectInsert is returned when a registry is fed a member that is not a structured value.
var ErrNonObjectInsert = errors.New("registry member is not a structured value")

// ErrNoIDKey is returned when keyed ingestion is attempted on a registry without an id key.
var ErrNoIDKey = errors.New("keyed ingestion requires an id key")

// ErrMemberMethodNotImplemented is returned when an ingest callback needs a capability the member lacks.
var ErrMemberMethodNotImplemented = errors.New("member method not implemented")

// ErrAmbiguousParent is returned when a mount resolves more than one enclosing form.
var ErrAmbiguousParent = errors.New("ambiguous parent")

// ErrShapeMismatch is returned when a value's shape conflicts with a form's mode.
var ErrShapeMismatch = errors.New("value shape does not match form mode")

// ErrNotMounted is returned when an operation needs a node attached to a tree.
var ErrNotMounted = errors.New("node is not mounted")

// ErrInvalidDefinition is returned when a form definition fails validation.
var ErrInvalidDefinition = errors.New("invalid form definition")

// MethodNotImplementedError names the capability an ingest callback expected.
type MethodNotImplementedError struct {
	Member string
	Method string
}

func (e *MethodNotImplementedError) Error() string {
	if e.Member == "" {
		return fmt.Sprintf("member does not implement method %q", e.Method)
	}
	return fmt.Sprintf("member %s does not implement method %q", e.Member, e.Method)
}

func (e *MethodNotImplementedError) Unwrap() error { return ErrMemberMethodNotImplemented }

// ShapeMismatchError describes a value fed to a form whose mode cannot hold it.
type ShapeMismatchError struct {
	Form string
	Mode Mode
	Got  string
}

func (e *ShapeMismatchError) Error() string {
	mode := e.Mode
	if mode == ModeUnset {
		mode = "unset"
	}
	return fmt.Sprintf("form %q (mode %s) cannot take a %s value", e.Form, mode, e.Got)
}

func (e *ShapeMismatchError) Unwrap() error { return ErrShapeMismatch }

// AmbiguousParentError lists the competing parents resolved for a node.
type AmbiguousParentError struct {
	Node       string
	Candidates []string
}

func (e *AmbiguousParentError) Error() string {
	return fmt.Sprintf("node %q has %d candidate parents: %s", e.Node, len(e.Candidates), strings.Join(e.Candidates, ", "))
}

func (e *AmbiguousParentError) Unwrap() error { return ErrAmbiguousParent }
