package dsl

import (
	"fmt"

	"github.com/aretw0/formtree/pkg/config"
	"github.com/aretw0/formtree/pkg/domain"
)

// Builder manages the definition construction.
type Builder struct {
	triggers []string
	model    any
	root     *FormBuilder
}

// New creates a new definition builder.
func New() *Builder {
	b := &Builder{}
	b.root = &FormBuilder{builder: b}
	return b
}

// ShowErrorsOn sets the tree-wide visibility policy.
func (b *Builder) ShowErrorsOn(triggers ...string) *Builder {
	b.triggers = triggers
	return b
}

// Model sets the value distributed once the definition is mounted.
func (b *Builder) Model(v any) *Builder {
	b.model = v
	return b
}

// Root returns the builder of the root form.
func (b *Builder) Root() *FormBuilder { return b.root }

// Control adds a control to the root form.
func (b *Builder) Control(name string) *ControlBuilder { return b.root.Control(name) }

// Form adds a sub-form to the root form.
func (b *Builder) Form(name string) *FormBuilder { return b.root.Form(name) }

// Definition compiles and validates the definition.
func (b *Builder) Definition() (*config.Definition, error) {
	def := &config.Definition{
		ShowErrorsOn: b.triggers,
		Form:         b.root.build(),
		Model:        b.model,
	}
	if err := config.Validate(def); err != nil {
		return nil, fmt.Errorf("failed to build definition: %w", err)
	}
	return def, nil
}

// FormBuilder provides a fluent API for configuring a form.
type FormBuilder struct {
	name     string
	mode     domain.Mode
	controls []*ControlBuilder
	forms    []*FormBuilder
	parent   *FormBuilder
	builder  *Builder
}

// Array makes the form address its children by position.
func (f *FormBuilder) Array() *FormBuilder {
	f.mode = domain.ModeArray
	return f
}

// Group makes the form address its children by name.
func (f *FormBuilder) Group() *FormBuilder {
	f.mode = domain.ModeGroup
	return f
}

// Control adds a control to the form.
func (f *FormBuilder) Control(name string) *ControlBuilder {
	c := &ControlBuilder{parent: f}
	c.def.Name = name
	f.controls = append(f.controls, c)
	return c
}

// Form adds a named sub-form.
func (f *FormBuilder) Form(name string) *FormBuilder {
	sub := &FormBuilder{name: name, parent: f, builder: f.builder}
	f.forms = append(f.forms, sub)
	return sub
}

// Row adds an unnamed sub-form, typically one entry of an array form.
func (f *FormBuilder) Row() *FormBuilder {
	return f.Form("")
}

// End returns to the parent form. The root form returns itself.
func (f *FormBuilder) End() *FormBuilder {
	if f.parent == nil {
		return f
	}
	return f.parent
}

// Definition compiles the whole definition this form belongs to.
func (f *FormBuilder) Definition() (*config.Definition, error) {
	return f.builder.Definition()
}

func (f *FormBuilder) build() config.FormDef {
	out := config.FormDef{Name: f.name, Mode: string(f.mode)}
	for _, c := range f.controls {
		out.Controls = append(out.Controls, c.def)
	}
	for _, sub := range f.forms {
		out.Forms = append(out.Forms, sub.build())
	}
	return out
}
