package dsl

import (
	"github.com/aretw0/formtree/pkg/config"
	"github.com/aretw0/formtree/pkg/validation"
)

// ControlBuilder provides a fluent API for configuring a control.
type ControlBuilder struct {
	def    config.ControlDef
	parent *FormBuilder
}

// Validate adds a validator backed by a go-playground/validator tag.
func (c *ControlBuilder) Validate(name, tag string) *ControlBuilder {
	if c.def.Validators == nil {
		c.def.Validators = make(map[string]string)
	}
	c.def.Validators[name] = tag
	return c
}

// Require adds the "required" validator.
func (c *ControlBuilder) Require() *ControlBuilder {
	return c.Validate("required", "required")
}

// Errors appends an entry to the error table. Entries are resolved in the
// order they are added.
func (c *ControlBuilder) Errors(key, message string) *ControlBuilder {
	c.def.Errors = append(c.def.Errors, validation.Message{Key: key, Text: message})
	return c
}

// Async references async validators supplied at mount time.
func (c *ControlBuilder) Async(names ...string) *ControlBuilder {
	c.def.AsyncValidators = append(c.def.AsyncValidators, names...)
	return c
}

// ShowErrorsOn overrides the visibility policy of this control.
func (c *ControlBuilder) ShowErrorsOn(triggers ...string) *ControlBuilder {
	c.def.ShowErrorsOn = triggers
	return c
}

// CustomError sets the message shown while a custom error is set.
func (c *ControlBuilder) CustomError(message string) *ControlBuilder {
	c.def.CustomErrorMessage = message
	return c
}

// Disabled marks the control as disabled.
func (c *ControlBuilder) Disabled() *ControlBuilder {
	c.def.Disabled = true
	return c
}

// End returns to the enclosing form.
func (c *ControlBuilder) End() *FormBuilder {
	return c.parent
}
