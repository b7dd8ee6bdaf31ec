package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventMount    EventType = "mount"
	EventUnmount  EventType = "unmount"
	EventCommit   EventType = "commit"
	EventValidate EventType = "validate"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	TreeID    string    `json:"tree_id"`
}

// NodeEvent represents a node attaching to or detaching from a form.
type NodeEvent struct {
	EventBase
	Path string `json:"path"`
	Kind Kind   `json:"kind"`
}

// CommitEvent summarizes one commit pass.
type CommitEvent struct {
	EventBase
	Operations int           `json:"operations"`
	Results    int           `json:"results"`
	Changed    []string      `json:"changed,omitempty"`
	Duration   time.Duration `json:"duration"`
	Failed     bool          `json:"failed,omitempty"`
}

// ValidationEvent reports the outcome of one validator for one control.
type ValidationEvent struct {
	EventBase
	Path       string `json:"path"`
	Validator  string `json:"validator"`
	Async      bool   `json:"async,omitempty"`
	Passed     bool   `json:"passed"`
	Generation uint64 `json:"generation"`
	// Discarded marks an async result that arrived for a superseded generation.
	Discarded bool `json:"discarded,omitempty"`
}

// LifecycleHooks defines callbacks for tree observability.
type LifecycleHooks struct {
	OnMount    func(context.Context, *NodeEvent)
	OnUnmount  func(context.Context, *NodeEvent)
	OnCommit   func(context.Context, *CommitEvent)
	OnValidate func(context.Context, *ValidationEvent)
}

// MergeHooks returns hooks that call every non-nil callback of hs in order.
func MergeHooks(hs ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range hs {
		out.OnMount = chain(out.OnMount, h.OnMount)
		out.OnUnmount = chain(out.OnUnmount, h.OnUnmount)
		out.OnCommit = chain(out.OnCommit, h.OnCommit)
		out.OnValidate = chain(out.OnValidate, h.OnValidate)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
