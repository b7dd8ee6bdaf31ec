package config

import (
	"fmt"

	"github.com/aretw0/formtree/pkg/domain"
	"github.com/aretw0/formtree/pkg/validation"
)

// Validate checks modes, triggers, validator tags and names. It reports every
// problem at once as an *AggregateError matching domain.ErrInvalidDefinition.
func Validate(def *Definition) error {
	if def == nil {
		return fmt.Errorf("nil definition: %w", domain.ErrInvalidDefinition)
	}
	var errs []error
	add := func(path, field, reason string) {
		errs = append(errs, &FieldError{Path: path, Field: field, Reason: reason})
	}

	if _, err := domain.ParseTriggers(def.ShowErrorsOn); err != nil {
		add("", "show_errors_on", err.Error())
	}
	if def.Form.Name != "" {
		add("", "form.name", "the root form has no name")
	}
	if mode, _ := domain.ParseMode(def.Form.Mode); mode == domain.ModeArray {
		add("", "form.mode", "the root form is a group")
	}

	def.Form.Walk(func(path string, f *FormDef) {
		mode, err := domain.ParseMode(f.Mode)
		if err != nil {
			add(path, "mode", err.Error())
		}
		if mode != domain.ModeArray {
			for i, sub := range f.Forms {
				if sub.Name == "" {
					add(path, fmt.Sprintf("forms[%d].name", i), "required outside array forms")
				}
			}
		}

		seen := make(map[string]bool, len(f.Controls))
		for i, c := range f.Controls {
			where := fmt.Sprintf("controls[%d]", i)
			if c.Name == "" {
				add(path, where+".name", "required")
				continue
			}
			where = join(path, c.Name)
			if seen[c.Name] && mode != domain.ModeArray {
				add(path, "controls", fmt.Sprintf("duplicate control %q", c.Name))
			}
			seen[c.Name] = true
			validateControl(where, c, add)
		}
	})

	if len(errs) == 0 {
		return nil
	}
	return &AggregateError{Errors: errs}
}

func validateControl(path string, c ControlDef, add func(path, field, reason string)) {
	for _, name := range validation.Keys(c.Validators) {
		if _, err := validation.CompileTag(c.Validators[name]); err != nil {
			add(path, "validators."+name, err.Error())
		}
	}
	for i, name := range c.AsyncValidators {
		if name == "" {
			add(path, fmt.Sprintf("async_validators[%d]", i), "empty name")
		}
	}
	for i, m := range c.Errors {
		if m.Key == "" {
			add(path, fmt.Sprintf("errors[%d].key", i), "required")
		}
	}
	if _, err := domain.ParseTriggers(c.ShowErrorsOn); err != nil {
		add(path, "show_errors_on", err.Error())
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "." + name
}
