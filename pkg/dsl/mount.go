package dsl

import (
	"fmt"

	"github.com/aretw0/formtree/pkg/config"
	"github.com/aretw0/formtree/pkg/domain"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/validation"
)

// MountOption configures Mount.
type MountOption func(*mountConfig)

type mountConfig struct {
	async map[string]validation.AsyncFunc
	model any
}

// WithAsyncValidator supplies the async validator a definition refers to by name.
func WithAsyncValidator(name string, fn validation.AsyncFunc) MountOption {
	return func(c *mountConfig) {
		c.async[name] = fn
	}
}

// WithModel overrides the model carried by the definition.
func WithModel(model any) MountOption {
	return func(c *mountConfig) {
		c.model = model
	}
}

// Mount builds the nodes of def under the root of tree, applies its
// visibility policy and distributes its model.
func Mount(tree *form.Tree, def *config.Definition, opts ...MountOption) error {
	if err := config.Validate(def); err != nil {
		return err
	}
	cfg := &mountConfig{async: make(map[string]validation.AsyncFunc), model: def.Model}
	for _, opt := range opts {
		opt(cfg)
	}

	if len(def.ShowErrorsOn) > 0 {
		triggers, err := domain.ParseTriggers(def.ShowErrorsOn)
		if err != nil {
			return err
		}
		tree.SetShowErrorsOn(triggers...)
	}
	if err := mountChildren(tree, tree.Root(), def.Form, cfg); err != nil {
		return err
	}
	if cfg.model == nil {
		return nil
	}
	if err := tree.SetModelValues(cfg.model); err != nil {
		return err
	}
	return tree.Commit()
}

func mountChildren(tree *form.Tree, parent *form.Form, fd config.FormDef, cfg *mountConfig) error {
	for _, cd := range fd.Controls {
		c, err := NewControl(cd, cfg.async)
		if err != nil {
			return err
		}
		if err := tree.Mount(c, parent); err != nil {
			return err
		}
	}
	for _, sub := range fd.Forms {
		mode, err := domain.ParseMode(sub.Mode)
		if err != nil {
			return err
		}
		f := form.NewForm(sub.Name, form.WithMode(mode))
		if err := tree.Mount(f, parent); err != nil {
			return err
		}
		if err := mountChildren(tree, f, sub, cfg); err != nil {
			return err
		}
	}
	return nil
}

// NewControl creates a control from its definition. Async validators are
// looked up by name in async.
func NewControl(cd config.ControlDef, async map[string]validation.AsyncFunc) (*form.Control, error) {
	validators, err := validation.ParseTagMap(cd.Validators)
	if err != nil {
		return nil, fmt.Errorf("control %q: %w", cd.Name, err)
	}
	cc := form.ControlConfig{
		Validators:         validators,
		Errors:             validation.Table(cd.Errors),
		CustomErrorMessage: cd.CustomErrorMessage,
		Disabled:           cd.Disabled,
	}
	if len(cd.ShowErrorsOn) > 0 {
		if cc.ShowErrorsOn, err = domain.ParseTriggers(cd.ShowErrorsOn); err != nil {
			return nil, fmt.Errorf("control %q: %w", cd.Name, err)
		}
	}
	for _, name := range cd.AsyncValidators {
		fn, ok := async[name]
		if !ok {
			return nil, fmt.Errorf("control %q: async validator %q is not registered: %w", cd.Name, name, domain.ErrInvalidDefinition)
		}
		if cc.AsyncValidators == nil {
			cc.AsyncValidators = make(map[string]validation.AsyncFunc)
		}
		cc.AsyncValidators[name] = fn
	}
	return form.NewControl(cd.Name, cc), nil
}
