package validation

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// engine is the validator instance backing every tag-based Func.
var engine = validator.New()

// Tag builds a Func from a go-playground/validator tag such as "required",
// "email" or "min=3,max=20". Unknown tags fail every value; use CompileTag to
// detect them up front.
func Tag(tag string) Func {
	return func(value any) bool {
		return Run(func(v any) bool { return engine.Var(v, tag) == nil }, value)
	}
}

// CompileTag checks that tag is understood by the validator engine.
func CompileTag(tag string) (fn Func, err error) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return nil, fmt.Errorf("empty validator tag")
	}
	defer func() {
		if rec := recover(); rec != nil {
			fn = nil
			err = fmt.Errorf("validator tag %q: %v", tag, rec)
		}
	}()
	// Undefined tags and malformed parameters panic on first use.
	_ = engine.Var("", tag)
	return Tag(tag), nil
}

// ParseTagMap converts a map of validator names to tags into validators.
// Example: {"required": "required", "short": "min=3"}
func ParseTagMap(tags map[string]string) (map[string]Func, error) {
	out := make(map[string]Func, len(tags))
	for _, name := range Keys(tags) {
		fn, err := CompileTag(tags[name])
		if err != nil {
			return nil, fmt.Errorf("validator %s: %w", name, err)
		}
		out[name] = fn
	}
	return out, nil
}

// RegisterTag adds a custom tag to the validator engine, making it available
// to Tag and ParseTagMap. It must be called before trees are built.
func RegisterTag(tag string, fn func(value any) bool) error {
	return engine.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		return fn(fl.Field().Interface())
	})
}
