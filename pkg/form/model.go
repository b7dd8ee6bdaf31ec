package form

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/aretw0/formtree/pkg/domain"
)

// DeriveValue builds the composite value of f from its mounted children: a
// map keyed by name in group mode, a slice in registration order in array
// mode. A form whose mode is unset derives as a group.
func (f *Form) DeriveValue() any {
	children := f.children.Members()
	if f.mode == domain.ModeArray {
		out := make([]any, 0, len(children))
		for _, n := range children {
			out = append(out, valueOf(n))
		}
		return out
	}

	out := make(map[string]any, len(children))
	// Forms first so that a control sharing a name wins.
	for _, n := range children {
		if n.Kind() == domain.KindForm {
			out[n.Name()] = valueOf(n)
		}
	}
	for _, n := range children {
		if n.Kind() == domain.KindControl {
			out[n.Name()] = valueOf(n)
		}
	}
	return out
}

// GetModelValues returns the composite value of f.
func (f *Form) GetModelValues() any {
	return f.DeriveValue()
}

// SetModelValues stages one distribution of v over the subtree of f.
func (f *Form) SetModelValues(v any) error {
	return f.DistributeValue(v)
}

// DistributeValue stages pushing v down to the children of f: keys to
// same-named children in group mode, positions to children in array mode.
// Keys and positions without a child are kept in the model snapshot only.
func (f *Form) DistributeValue(v any) error {
	t, err := f.owner()
	if err != nil {
		return err
	}
	t.stage("distribute value", f, func(p *pass) error {
		if !f.Mounted() {
			return domain.ErrNotMounted
		}
		if err := f.check(v); err != nil {
			return err
		}
		if err := f.distribute(v, p); err != nil {
			return err
		}
		p.markChanged(f)
		return nil
	})
	return nil
}

// GetModelValue returns the value of the child addressed by name, falling back
// to the model snapshot when no such child is mounted.
func (f *Form) GetModelValue(name string) any {
	if n, ok := f.Child(name); ok {
		return valueOf(n)
	}
	switch m := f.model.(type) {
	case map[string]any:
		return m[name]
	case []any:
		if i, err := strconv.Atoi(name); err == nil && i >= 0 && i < len(m) {
			return m[i]
		}
	}
	return nil
}

// SetModelValue stages a write to the single child addressed by name. With no
// such child mounted the value is kept in the model snapshot and seeds the
// child when it mounts.
func (f *Form) SetModelValue(name string, v any) error {
	t, err := f.owner()
	if err != nil {
		return err
	}
	t.stage("set model value", f, func(p *pass) error {
		if !f.Mounted() {
			return domain.ErrNotMounted
		}
		n, ok := f.Child(name)
		if !ok {
			if err := f.store(name, v); err != nil {
				return err
			}
			p.markChanged(f)
			return nil
		}
		if sub, ok := n.(*Form); ok {
			if err := sub.check(v); err != nil {
				return err
			}
		}
		if err := f.deliver(n, v, p); err != nil {
			return err
		}
		p.markChanged(n)
		return nil
	})
	return nil
}

// distribute pushes v down into the matching children of f.
func (f *Form) distribute(v any, p *pass) error {
	if v == nil {
		return nil
	}
	shape, normalized := normalize(v)
	if err := f.settleMode(shape); err != nil {
		return err
	}
	f.model = normalized
	f.vacant = nil

	if f.mode == domain.ModeArray {
		return f.children.Ingest(func(n Node, fragment any) error {
			return f.deliver(n, fragment, p)
		}, normalized)
	}

	// Controls take precedence over forms sharing their name.
	values := normalized.(map[string]any)
	toControls := make(map[string]any)
	toForms := make(map[string]any)
	for _, k := range sortedKeys(values) {
		if _, ok := f.Control(k); ok {
			toControls[k] = values[k]
		} else {
			toForms[k] = values[k]
		}
	}
	err := f.children.Ingest(func(n Node, fragment any) error {
		if c, ok := n.(*Control); ok {
			c.assign(fragment, p)
		}
		return nil
	}, toControls)
	if err != nil {
		return err
	}
	return f.children.Ingest(func(n Node, fragment any) error {
		if sub, ok := n.(*Form); ok {
			return sub.distribute(fragment, p)
		}
		return nil
	}, toForms)
}

func (f *Form) deliver(n Node, v any, p *pass) error {
	switch n := n.(type) {
	case *Control:
		n.assign(v, p)
	case *Form:
		return n.distribute(v, p)
	}
	return nil
}

// check walks v the way distribute would and returns the first error
// distribute would hit, without changing anything. A distribution that fails
// leaves the whole subtree untouched.
func (f *Form) check(v any) error {
	if v == nil {
		return nil
	}
	s, normalized := normalize(v)
	mode, err := f.modeFor(s)
	if err != nil {
		return err
	}
	if mode == domain.ModeArray {
		values := normalized.([]any)
		for i, n := range f.children.Members() {
			if i >= len(values) {
				break
			}
			if sub, ok := n.(*Form); ok {
				if err := sub.check(values[i]); err != nil {
					return err
				}
			}
		}
		return nil
	}
	values := normalized.(map[string]any)
	for _, k := range sortedKeys(values) {
		if _, ok := f.Control(k); ok {
			continue
		}
		for _, n := range f.children.Filter(isForm(k)) {
			if err := n.(*Form).check(values[k]); err != nil {
				return err
			}
		}
	}
	return nil
}

// settleMode fixes the mode of f from the first value it receives and rejects
// values of the other shape afterwards.
func (f *Form) settleMode(s shape) error {
	mode, err := f.modeFor(s)
	if err != nil {
		return err
	}
	if f.mode == domain.ModeUnset {
		f.logger().Debug("form mode inferred", "form", f.displayName(), "mode", mode)
	}
	f.mode = mode
	return nil
}

// modeFor returns the mode f has after receiving a value of shape s.
func (f *Form) modeFor(s shape) (domain.Mode, error) {
	mismatch := &domain.ShapeMismatchError{Form: f.displayName(), Mode: f.mode, Got: string(s)}
	if s == shapeScalar {
		return f.mode, mismatch
	}
	want := domain.ModeGroup
	if s == shapeArray {
		want = domain.ModeArray
	}
	switch {
	case f.mode == domain.ModeUnset && want == domain.ModeArray && len(f.Controls()) > 0:
		return f.mode, mismatch
	case f.mode == domain.ModeUnset, f.mode == want:
		return want, nil
	}
	return f.mode, mismatch
}

// overlay writes the committed value of child into the model snapshot of f.
func (f *Form) overlay(child Node) {
	if f.mode == domain.ModeArray {
		idx := f.children.IndexOf(child)
		if idx < 0 {
			return
		}
		idx = f.slot(idx)
		current, _ := f.model.([]any)
		s := make([]any, max(len(current), idx+1))
		copy(s, current)
		s[idx] = valueOf(child)
		f.model = s
		return
	}
	if child.Kind() == domain.KindForm {
		if _, ok := f.Control(child.Name()); ok {
			return
		}
	}
	current, _ := f.model.(map[string]any)
	m := make(map[string]any, len(current)+1)
	for k, v := range current {
		m[k] = v
	}
	m[child.Name()] = valueOf(child)
	f.model = m
}

// store writes v at name in the model snapshot when no child addresses it.
func (f *Form) store(name string, v any) error {
	if f.mode == domain.ModeArray {
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 {
			return fmt.Errorf("array form %q is addressed by position, got %q", f.displayName(), name)
		}
		current, _ := f.model.([]any)
		s := make([]any, max(len(current), i+1))
		copy(s, current)
		s[i] = v
		f.model = s
		return nil
	}
	current, _ := f.model.(map[string]any)
	m := make(map[string]any, len(current)+1)
	for k, val := range current {
		m[k] = val
	}
	m[name] = v
	f.model = m
	return nil
}

// fragmentFor returns the part of the model snapshot addressed to child.
func (f *Form) fragmentFor(child Node) (any, bool) {
	switch m := f.model.(type) {
	case []any:
		idx := f.children.IndexOf(child)
		if idx < 0 {
			return nil, false
		}
		idx = f.slot(idx)
		if idx >= len(m) {
			return nil, false
		}
		return m[idx], m[idx] != nil
	case map[string]any:
		v, ok := m[child.Name()]
		return v, ok && v != nil
	}
	return nil, false
}

// slot maps the position of a row among the mounted children of an array form
// to its index in the model snapshot. Slots left by unmounted rows are skipped
// so later rows keep addressing their own values.
func (f *Form) slot(index int) int {
	s := index
	for _, v := range f.vacant {
		if v > s {
			break
		}
		s++
	}
	return s
}

// releaseSlot marks the model slot of an array row being unmounted as vacant.
// The snapshot keeps its value so a remount at the same position finds it.
func (f *Form) releaseSlot(child Node) {
	if f.mode != domain.ModeArray {
		return
	}
	idx := f.children.IndexOf(child)
	if idx < 0 {
		return
	}
	s := f.slot(idx)
	if i, found := slices.BinarySearch(f.vacant, s); !found {
		f.vacant = slices.Insert(f.vacant, i, s)
	}
}

// claimSlot prepares the snapshot of an array form for a row about to be
// inserted at index. The row takes the vacant slot right after its previous
// sibling; failing that, a middle insert splices a fresh slot into the
// snapshot so later rows keep their values.
func (f *Form) claimSlot(index int) {
	if f.mode != domain.ModeArray {
		return
	}
	n := f.children.Len()
	if index < 0 || index > n {
		index = n
	}
	at := 0
	if index > 0 {
		at = f.slot(index-1) + 1
	}
	if i, found := slices.BinarySearch(f.vacant, at); found {
		f.vacant = slices.Delete(f.vacant, i, i+1)
		return
	}
	if index == n {
		return
	}
	if m, ok := f.model.([]any); ok && at <= len(m) {
		f.model = slices.Insert(slices.Clone(m), at, nil)
	}
	for i, v := range f.vacant {
		if v >= at {
			f.vacant[i] = v + 1
		}
	}
}

func (f *Form) displayName() string {
	if f.root {
		return "<root>"
	}
	if p := Path(f); p != "" {
		return p
	}
	return f.name
}

type shape string

const (
	shapeObject shape = "object"
	shapeArray  shape = "array"
	shapeScalar shape = "scalar"
)

// normalize copies maps with string-like keys into map[string]any and
// sequences into []any.
func normalize(v any) (shape, any) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = val
		}
		return shapeObject, out
	case []any:
		out := make([]any, len(t))
		copy(out, t)
		return shapeArray, out
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return shapeScalar, v
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		return shapeObject, out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return shapeArray, out
	}
	return shapeScalar, v
}
