package form

import (
	"context"
	"maps"
	"reflect"
	"sort"

	"github.com/aretw0/formtree/pkg/domain"
	"github.com/aretw0/formtree/pkg/validation"
)

// ControlConfig is bound to a control when it is created.
type ControlConfig struct {
	// Validators are evaluated on every value change.
	Validators map[string]validation.Func
	// AsyncValidators run once every synchronous validator passes.
	AsyncValidators map[string]validation.AsyncFunc
	// Errors maps failing validator keys to messages; the first failing entry wins.
	Errors validation.Table
	// ShowErrorsOn overrides the tree's visibility policy for this control.
	ShowErrorsOn []domain.Trigger
	// CustomErrorMessage is shown while a custom error without its own message is set.
	CustomErrorMessage string
	// CustomErrorFunc produces the custom error message from the current value.
	CustomErrorFunc func(value any) string
	// Disabled controls skip validation and always count as valid.
	Disabled bool
}

// Control is a leaf node holding an opaque value.
type Control struct {
	name   string
	parent *Form
	tree   *Tree
	config ControlConfig

	value        any
	touched      bool
	dirty        bool
	disabled     bool
	failing      map[string]bool
	asyncFailing map[string]bool
	pending      map[string]bool
	custom       *customError

	generation uint64
	cancel     context.CancelFunc
}

type customError struct {
	message string
	produce func(any) string
}

// NewControl creates an unmounted control and binds its validators.
func NewControl(name string, cfg ControlConfig) *Control {
	c := &Control{name: name}
	c.config = bind(cfg)
	c.disabled = cfg.Disabled
	return c
}

func (c *Control) Name() string      { return c.name }
func (c *Control) Kind() domain.Kind { return domain.KindControl }
func (c *Control) Parent() *Form     { return c.parent }

// Mounted reports whether the control and every form above it are attached.
func (c *Control) Mounted() bool { return c.parent != nil && c.parent.Mounted() }

// Config returns the bound configuration.
func (c *Control) Config() ControlConfig { return c.config }

// Value returns the last committed value.
func (c *Control) Value() any { return c.value }

// Disabled reports whether the control is disabled.
func (c *Control) Disabled() bool { return c.disabled }

// Generation returns the validation generation, bumped on every value change.
func (c *Control) Generation() uint64 { return c.generation }

// SetValue stages a value change coming from the user. The control becomes
// dirty when the committed value differs from the previous one.
func (c *Control) SetValue(v any) error {
	t, err := c.owner()
	if err != nil {
		return err
	}
	t.stage("set value", c, func(p *pass) error {
		if !c.Mounted() {
			return domain.ErrNotMounted
		}
		if !reflect.DeepEqual(c.value, v) {
			c.dirty = true
		}
		c.value = v
		p.markRevalidate(c)
		p.markChanged(c)
		return nil
	})
	return nil
}

// Touch stages marking the control as touched.
func (c *Control) Touch() error {
	return c.stageFlag("touch", func() { c.touched = true })
}

// SetDisabled stages enabling or disabling the control.
func (c *Control) SetDisabled(disabled bool) error {
	t, err := c.owner()
	if err != nil {
		return err
	}
	t.stage("set disabled", c, func(p *pass) error {
		if !c.Mounted() {
			return domain.ErrNotMounted
		}
		c.disabled = disabled
		p.markRevalidate(c)
		return nil
	})
	return nil
}

// SetCustomError stages an explicit error, typically server-side feedback.
// While set it replaces every validator-driven failure. An empty message falls
// back to the configured custom message.
func (c *Control) SetCustomError(message string) error {
	return c.stageFlag("set custom error", func() { c.custom = &customError{message: message} })
}

// SetCustomErrorFunc is SetCustomError with a message computed from the value.
func (c *Control) SetCustomErrorFunc(produce func(value any) string) error {
	return c.stageFlag("set custom error", func() { c.custom = &customError{produce: produce} })
}

// ClearCustomError stages removing the custom error.
func (c *Control) ClearCustomError() error {
	return c.stageFlag("clear custom error", func() { c.custom = nil })
}

func (c *Control) stageFlag(label string, fn func()) error {
	t, err := c.owner()
	if err != nil {
		return err
	}
	t.stage(label, c, func(*pass) error {
		if !c.Mounted() {
			return domain.ErrNotMounted
		}
		fn()
		return nil
	})
	return nil
}

func (c *Control) owner() (*Tree, error) {
	if !c.Mounted() || c.tree == nil {
		return nil, domain.ErrNotMounted
	}
	return c.tree, nil
}

// assign sets a value coming from the model. It does not mark the control dirty.
func (c *Control) assign(v any, p *pass) {
	c.value = v
	p.markRevalidate(c)
}

func (c *Control) attach(t *Tree, parent *Form) {
	c.tree = t
	c.parent = parent
}

func (c *Control) detach() {
	c.parent = nil
	c.reset()
}

// reset discards the value and state held while mounted.
func (c *Control) reset() {
	c.supersede()
	c.value = nil
	c.touched = false
	c.dirty = false
	c.disabled = c.config.Disabled
	c.failing = nil
	c.asyncFailing = nil
	c.pending = nil
	c.custom = nil
}

// supersede starts a new validation generation, cancelling in-flight async work.
func (c *Control) supersede() {
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.pending = nil
}

// Failing returns the keys of every failing validator, ignoring visibility.
func (c *Control) Failing() []string {
	keys := make([]string, 0, len(c.failing)+len(c.asyncFailing))
	for k := range c.failing {
		keys = append(keys, k)
	}
	for k := range c.asyncFailing {
		if !c.failing[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func (c *Control) failures() map[string]bool {
	out := make(map[string]bool, len(c.failing)+len(c.asyncFailing))
	maps.Copy(out, c.failing)
	maps.Copy(out, c.asyncFailing)
	return out
}
