package config

import (
	"github.com/aretw0/formtree/pkg/validation"
)

// Definition is the root of a definition document.
type Definition struct {
	ShowErrorsOn []string `json:"show_errors_on,omitempty" yaml:"show_errors_on,omitempty" mapstructure:"show_errors_on"`
	Form         FormDef  `json:"form" yaml:"form" mapstructure:"form"`
	// Model is distributed over the tree once it is mounted.
	Model any `json:"model,omitempty" yaml:"model,omitempty" mapstructure:"model"`
}

// FormDef describes a form and its children. The root form has no name.
type FormDef struct {
	Name     string       `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Mode     string       `json:"mode,omitempty" yaml:"mode,omitempty" mapstructure:"mode"`
	Controls []ControlDef `json:"controls,omitempty" yaml:"controls,omitempty" mapstructure:"controls"`
	Forms    []FormDef    `json:"forms,omitempty" yaml:"forms,omitempty" mapstructure:"forms"`
}

// ControlDef describes a control.
type ControlDef struct {
	Name string `json:"name" yaml:"name" mapstructure:"name"`
	// Validators maps validator names to go-playground/validator tags.
	Validators map[string]string `json:"validators,omitempty" yaml:"validators,omitempty" mapstructure:"validators"`
	// AsyncValidators names async validators supplied by the host at mount time.
	AsyncValidators    []string             `json:"async_validators,omitempty" yaml:"async_validators,omitempty" mapstructure:"async_validators"`
	Errors             []validation.Message `json:"errors,omitempty" yaml:"errors,omitempty" mapstructure:"errors"`
	ShowErrorsOn       []string             `json:"show_errors_on,omitempty" yaml:"show_errors_on,omitempty" mapstructure:"show_errors_on"`
	CustomErrorMessage string               `json:"custom_error_message,omitempty" yaml:"custom_error_message,omitempty" mapstructure:"custom_error_message"`
	Disabled           bool                 `json:"disabled,omitempty" yaml:"disabled,omitempty" mapstructure:"disabled"`
}

// Walk visits f and every nested form depth first. path is the dotted
// location of the form, empty for the root.
func (f *FormDef) Walk(fn func(path string, form *FormDef)) {
	f.walk("", fn)
}

func (f *FormDef) walk(path string, fn func(string, *FormDef)) {
	fn(path, f)
	for i := range f.Forms {
		sub := &f.Forms[i]
		seg := sub.Name
		if seg == "" {
			seg = itoa(i)
		}
		if path != "" {
			seg = path + "." + seg
		}
		sub.walk(seg, fn)
	}
}

// Count returns the number of controls and forms below f.
func (f *FormDef) Count() (controls, forms int) {
	f.Walk(func(path string, form *FormDef) {
		controls += len(form.Controls)
		if path != "" {
			forms++
		}
	})
	return controls, forms
}
