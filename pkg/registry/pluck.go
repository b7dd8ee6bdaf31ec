package registry

import (
	"reflect"
	"unicode"
	"unicode/utf8"
)

// Pluck reads key from member. It prefers a zero-argument method named key
// (first letter upper-cased), then an exported struct field, then a map entry.
func Pluck(member any, key string) (any, bool) {
	v := reflect.ValueOf(member)
	if !v.IsValid() || key == "" {
		return nil, false
	}

	name := exported(key)
	if m := v.MethodByName(name); m.IsValid() && m.Type().NumIn() == 0 && m.Type().NumOut() > 0 {
		return m.Call(nil)[0].Interface(), true
	}

	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		v = v.Elem()
	}

	switch v.Kind() {
	case reflect.Struct:
		for _, n := range []string{name, key} {
			f := v.FieldByName(n)
			if f.IsValid() && f.CanInterface() {
				return f.Interface(), true
			}
		}
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		e := v.MapIndex(reflect.ValueOf(key).Convert(v.Type().Key()))
		if e.IsValid() {
			return e.Interface(), true
		}
	}
	return nil, false
}

func exported(key string) string {
	r, size := utf8.DecodeRuneInString(key)
	if r == utf8.RuneError || unicode.IsUpper(r) {
		return key
	}
	return string(unicode.ToUpper(r)) + key[size:]
}

// structured reports whether v is an object or array-like value.
func structured(v any) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return false
	}
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Struct, reflect.Map, reflect.Slice, reflect.Array:
		return true
	}
	return false
}

// same reports whether a and b are the same member: pointer identity for
// reference kinds, equality for comparable values.
func same(a, b any) bool {
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if !va.IsValid() || !vb.IsValid() {
		return !va.IsValid() && !vb.IsValid()
	}
	if va.Type() != vb.Type() {
		return false
	}
	switch va.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return va.Pointer() == vb.Pointer()
	}
	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}
	return false
}
