package form

import (
	"strconv"

	"github.com/aretw0/formtree/pkg/domain"
	"github.com/aretw0/formtree/pkg/validation"
)

// Valid reports whether every validator passes. Disabled controls are always
// valid; a custom error makes the control invalid regardless of validators.
// Async validators still in flight do not count against validity.
func (c *Control) Valid() bool {
	if c.disabled {
		return true
	}
	if c.custom != nil {
		return false
	}
	return len(c.failing) == 0 && len(c.asyncFailing) == 0
}

// Pending reports whether any async validator is in flight.
func (c *Control) Pending() bool { return len(c.pending) > 0 }

// Touched reports whether the control was blurred since it mounted.
func (c *Control) Touched() bool { return c.touched }

// Dirty reports whether the user changed the value since it mounted.
func (c *Control) Dirty() bool { return c.dirty }

// Submitted reports whether an enclosing form was submitted.
func (c *Control) Submitted() bool {
	return c.parent != nil && c.parent.Submitted()
}

// Flags returns the interaction and validation state of the control.
func (c *Control) Flags() domain.Flags {
	return domain.Flags{
		Touched:   c.touched,
		Dirty:     c.dirty,
		Submitted: c.Submitted(),
		Pending:   c.Pending(),
		Valid:     c.Valid(),
	}
}

func (c *Control) triggers() []domain.Trigger {
	if c.config.ShowErrorsOn != nil {
		return c.config.ShowErrorsOn
	}
	if c.tree != nil {
		return c.tree.triggers
	}
	return domain.DefaultTriggers
}

// Visible reports whether errors should be shown: the control is invalid and
// one of the triggers of its visibility policy is set.
func (c *Control) Visible() bool {
	flags := c.Flags()
	return !flags.Valid && flags.Any(c.triggers())
}

// Errors returns the failing validator keys while errors are visible, and nil
// otherwise. A custom error reports only validation.CustomErrorKey.
func (c *Control) Errors() map[string]bool {
	if !c.Visible() {
		return nil
	}
	if c.custom != nil {
		return map[string]bool{validation.CustomErrorKey: true}
	}
	return c.failures()
}

// Error returns the message to display while errors are visible.
func (c *Control) Error() (string, bool) {
	if !c.Visible() {
		return "", false
	}
	if c.custom != nil {
		return c.customMessage(), true
	}
	m, ok := c.config.Errors.Resolve(c.failures())
	return m.Text, ok
}

func (c *Control) customMessage() string {
	switch {
	case c.custom.message != "":
		return c.custom.message
	case c.custom.produce != nil:
		return c.custom.produce(c.value)
	case c.config.CustomErrorFunc != nil:
		return c.config.CustomErrorFunc(c.value)
	case c.config.CustomErrorMessage != "":
		return c.config.CustomErrorMessage
	}
	msg, _ := c.config.Errors.Lookup(validation.CustomErrorKey)
	return msg
}

// Valid reports whether every descendant control is valid. A form without
// controls is valid.
func (f *Form) Valid() bool {
	return f.every(func(c *Control) bool { return c.Valid() })
}

// Pending reports whether any descendant control awaits an async validator.
func (f *Form) Pending() bool {
	return f.some(func(c *Control) bool { return c.Pending() })
}

// Touched reports whether any descendant control was touched.
func (f *Form) Touched() bool {
	return f.some(func(c *Control) bool { return c.touched })
}

// Dirty reports whether any descendant control was changed by the user.
func (f *Form) Dirty() bool {
	return f.some(func(c *Control) bool { return c.dirty })
}

// Flags aggregates the flags of every descendant control.
func (f *Form) Flags() domain.Flags {
	return domain.Flags{
		Touched:   f.Touched(),
		Dirty:     f.Dirty(),
		Submitted: f.Submitted(),
		Pending:   f.Pending(),
		Valid:     f.Valid(),
	}
}

// Errors returns the visible errors of every descendant control keyed by its
// path relative to f.
func (f *Form) Errors() map[string]map[string]bool {
	out := make(map[string]map[string]bool)
	f.visit("", func(path string, c *Control) {
		if errs := c.Errors(); errs != nil {
			out[path] = errs
		}
	})
	return out
}

// Messages returns the visible error message of every descendant control keyed
// by its path relative to f.
func (f *Form) Messages() map[string]string {
	out := make(map[string]string)
	f.visit("", func(path string, c *Control) {
		if msg, ok := c.Error(); ok {
			out[path] = msg
		}
	})
	return out
}

func (f *Form) every(pred func(*Control) bool) bool {
	ok := true
	f.walkControls(func(c *Control) {
		if ok && !pred(c) {
			ok = false
		}
	})
	return ok
}

func (f *Form) some(pred func(*Control) bool) bool {
	return !f.every(func(c *Control) bool { return !pred(c) })
}

// visit walks descendant controls with their dotted path relative to f.
func (f *Form) visit(prefix string, fn func(string, *Control)) {
	for i, n := range f.children.Members() {
		seg := n.Name()
		if f.mode == domain.ModeArray || seg == "" {
			seg = strconv.Itoa(i)
		}
		path := seg
		if prefix != "" {
			path = prefix + "." + seg
		}
		switch n := n.(type) {
		case *Control:
			fn(path, n)
		case *Form:
			n.visit(path, fn)
		}
	}
}
