package validation

import (
	"context"
	"fmt"
	"regexp"
	"sort"
)

// CustomErrorKey is the reserved key reported while a custom error is set on a control.
const CustomErrorKey = "custom"

// Func reports whether value passes.
type Func func(value any) bool

// AsyncFunc reports whether value passes. A returned error counts as a failure.
type AsyncFunc func(ctx context.Context, value any) (bool, error)

// Required fails on nil and zero values.
func Required() Func {
	return Tag("required")
}

// Pattern passes string values matching expr. Empty strings and nil pass, so
// Pattern composes with Required.
func Pattern(expr string) (Func, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", expr, err)
	}
	return func(value any) bool {
		switch v := value.(type) {
		case nil:
			return true
		case string:
			return v == "" || re.MatchString(v)
		case fmt.Stringer:
			return re.MatchString(v.String())
		default:
			return re.MatchString(fmt.Sprint(v))
		}
	}, nil
}

// Predicate adapts a boolean function to Func.
func Predicate(fn func(any) bool) Func {
	return Func(fn)
}

// Async adapts a synchronous check that may fail with an error into an AsyncFunc.
func Async(fn func(ctx context.Context, value any) error) AsyncFunc {
	return func(ctx context.Context, value any) (bool, error) {
		if err := fn(ctx, value); err != nil {
			return false, err
		}
		return true, nil
	}
}

// Run evaluates fn against value. A panicking validator fails.
func Run(fn Func, value any) (passed bool) {
	defer func() {
		if recover() != nil {
			passed = false
		}
	}()
	return fn(value)
}

// Keys returns the names of a validator map in a stable order.
func Keys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
