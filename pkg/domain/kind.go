package domain

import (
	"fmt"
	"strings"
)

// DefaultIDKey is the registry id key used by Forms to address their children.
// It resolves through the Name() method every node exposes.
const DefaultIDKey = "Name"

// Kind tags the two node variants of a form tree.
type Kind string

const (
	KindControl Kind = "control" // Leaf holding a value
	KindForm    Kind = "form"    // Container of controls and sub-forms
)

// Mode defines how a Form addresses its children and shapes its composite value.
type Mode string

const (
	ModeUnset Mode = ""      // Not yet fixed by a value
	ModeGroup Mode = "group" // Children by name, value is a map
	ModeArray Mode = "array" // Children by position, value is a slice
)

// ParseMode converts a definition string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeUnset:
		return ModeUnset, nil
	case ModeGroup, "object":
		return ModeGroup, nil
	case ModeArray, "list":
		return ModeArray, nil
	default:
		return ModeUnset, fmt.Errorf("unknown form mode %q", s)
	}
}

// Trigger is an interaction flag that can make a control's errors visible.
type Trigger string

const (
	TriggerTouched   Trigger = "touched"
	TriggerDirty     Trigger = "dirty"
	TriggerSubmitted Trigger = "submitted"
)

// DefaultTriggers is the visibility policy used when none is configured.
var DefaultTriggers = []Trigger{TriggerTouched, TriggerSubmitted}

// ParseTrigger converts a configuration string into a Trigger.
func ParseTrigger(s string) (Trigger, error) {
	switch t := Trigger(strings.ToLower(strings.TrimSpace(s))); t {
	case TriggerTouched, TriggerDirty, TriggerSubmitted:
		return t, nil
	default:
		return "", fmt.Errorf("unknown error trigger %q (want touched, dirty or submitted)", s)
	}
}

// ParseTriggers converts a list of configuration strings into Triggers.
func ParseTriggers(values []string) ([]Trigger, error) {
	out := make([]Trigger, 0, len(values))
	for _, v := range values {
		t, err := ParseTrigger(v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Flags is the validity and interaction snapshot of a node.
type Flags struct {
	Touched   bool `json:"touched"`
	Dirty     bool `json:"dirty"`
	Submitted bool `json:"submitted"`
	Pending   bool `json:"pending"`
	Valid     bool `json:"valid"`
}

// Has reports whether the flag named by t is set.
func (f Flags) Has(t Trigger) bool {
	switch t {
	case TriggerTouched:
		return f.Touched
	case TriggerDirty:
		return f.Dirty
	case TriggerSubmitted:
		return f.Submitted
	}
	return false
}

// Any reports whether at least one of the triggers is set.
func (f Flags) Any(triggers []Trigger) bool {
	for _, t := range triggers {
		if f.Has(t) {
			return true
		}
	}
	return false
}
