package registry

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/aretw0/formtree/pkg/domain"
)

// Predicate selects members.
type Predicate[M any] func(M) bool

// IngestFunc receives a matched member and the data fragment addressed to it.
type IngestFunc[M any] func(member M, fragment any) error

// Registry holds members in insertion order.
type Registry[M any] struct {
	mu      sync.RWMutex
	members []M
	idKey   string
}

// Option configures a Registry.
type Option func(*settings)

type settings struct {
	idKey string
}

// WithIDKey enables id-based lookup and keyed ingestion.
func WithIDKey(key string) Option {
	return func(s *settings) {
		s.idKey = key
	}
}

// New creates an empty registry.
func New[M any](opts ...Option) *Registry[M] {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return &Registry[M]{idKey: s.idKey}
}

// IDKey returns the configured id key, or "" when none is set.
func (r *Registry[M]) IDKey() string {
	return r.idKey
}

// Insert appends a member.
// It fails with domain.ErrNonObjectInsert when member is not a structured value.
func (r *Registry[M]) Insert(member M) error {
	return r.InsertAt(-1, member)
}

// InsertAt places a member at index, shifting later members back.
// A negative or out-of-range index appends.
func (r *Registry[M]) InsertAt(index int, member M) error {
	if !structured(member) {
		return fmt.Errorf("insert %T: %w", member, domain.ErrNonObjectInsert)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= len(r.members) {
		r.members = append(r.members, member)
		return nil
	}
	r.members = append(r.members, member)
	copy(r.members[index+1:], r.members[index:])
	r.members[index] = member
	return nil
}

// Find returns the first member matching pred, in registry order.
func (r *Registry[M]) Find(pred Predicate[M]) (M, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.members {
		if pred(m) {
			return m, true
		}
	}
	var zero M
	return zero, false
}

// FindLast returns the most recently registered member matching pred.
func (r *Registry[M]) FindLast(pred Predicate[M]) (M, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := len(r.members) - 1; i >= 0; i-- {
		if pred(r.members[i]) {
			return r.members[i], true
		}
	}
	var zero M
	return zero, false
}

// Filter returns every member matching pred, in registry order.
func (r *Registry[M]) Filter(pred Predicate[M]) []M {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []M
	for _, m := range r.members {
		if pred(m) {
			out = append(out, m)
		}
	}
	return out
}

// RemoveWith removes all members matching pred and reports how many were removed.
// Survivors keep their relative order.
func (r *Registry[M]) RemoveWith(pred Predicate[M]) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.members[:0]
	removed := 0
	for _, m := range r.members {
		if pred(m) {
			removed++
			continue
		}
		kept = append(kept, m)
	}
	var zero M
	for i := len(kept); i < len(r.members); i++ {
		r.members[i] = zero
	}
	r.members = kept
	return removed
}

// Remove removes member by identity.
func (r *Registry[M]) Remove(member M) bool {
	return r.RemoveWith(func(m M) bool { return same(m, member) }) > 0
}

// IndexOf returns the position of member, or -1.
func (r *Registry[M]) IndexOf(member M) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, m := range r.members {
		if same(m, member) {
			return i
		}
	}
	return -1
}

// At returns the member at position i.
func (r *Registry[M]) At(i int) (M, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i < 0 || i >= len(r.members) {
		var zero M
		return zero, false
	}
	return r.members[i], true
}

// Len returns the number of members.
func (r *Registry[M]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

// Members returns a copy of the members in registry order.
func (r *Registry[M]) Members() []M {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]M, len(r.members))
	copy(out, r.members)
	return out
}

// Each calls fn for every member until fn returns false.
func (r *Registry[M]) Each(fn func(int, M) bool) {
	for i, m := range r.Members() {
		if !fn(i, m) {
			return
		}
	}
}

// Map projects every member through fn.
func Map[M, R any](r *Registry[M], fn func(M) R) []R {
	members := r.Members()
	out := make([]R, len(members))
	for i, m := range members {
		out[i] = fn(m)
	}
	return out
}

// Pluck reads key from every member (see the package documentation).
// Members without the key contribute nil.
func (r *Registry[M]) Pluck(key string) []any {
	return Map(r, func(m M) any {
		v, _ := Pluck(m, key)
		return v
	})
}

// ToMap indexes members by their id key, or by position when no id key is set.
// When fn is nil the member itself is stored.
func (r *Registry[M]) ToMap(fn func(M) any) map[string]any {
	members := r.Members()
	out := make(map[string]any, len(members))
	for i, m := range members {
		key := strconv.Itoa(i)
		if r.idKey != "" {
			id, _ := Pluck(m, r.idKey)
			key = fmt.Sprint(id)
		}
		if fn != nil {
			out[key] = fn(m)
		} else {
			out[key] = m
		}
	}
	return out
}

// Ingester curries fn into a function that ingests data.
func (r *Registry[M]) Ingester(fn IngestFunc[M]) func(data any) error {
	return func(data any) error {
		return r.Ingest(fn, data)
	}
}

// Ingest matches data against the members and calls fn for every match.
//
// A sequence is matched by position, ignoring the id key; extra elements or
// extra members stay unmatched. A map requires an id key and every key is
// matched against all members whose id stringifies equal to it. Nil data is a
// no-op.
func (r *Registry[M]) Ingest(fn IngestFunc[M], data any) error {
	if data == nil {
		return nil
	}
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}

	members := r.Members()
	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		n := min(v.Len(), len(members))
		for i := 0; i < n; i++ {
			if err := invoke(fn, members[i], v.Index(i).Interface()); err != nil {
				return err
			}
		}
		return nil
	case reflect.Map:
		if r.idKey == "" {
			return fmt.Errorf("ingest %T: %w", data, domain.ErrNoIDKey)
		}
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool {
			return fmt.Sprint(keys[i].Interface()) < fmt.Sprint(keys[j].Interface())
		})
		ids := make([]string, len(members))
		for i, m := range members {
			if id, ok := Pluck(m, r.idKey); ok {
				ids[i] = fmt.Sprint(id)
			} else {
				ids[i] = "\x00"
			}
		}
		for _, k := range keys {
			key := fmt.Sprint(k.Interface())
			fragment := v.MapIndex(k).Interface()
			for i, m := range members {
				if ids[i] != key {
					continue
				}
				if err := invoke(fn, m, fragment); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("ingest %T: expected a sequence or a mapping", data)
	}
}

// Require asserts that member provides capability C.
// method names the capability in the returned error.
func Require[C any](member any, method string) (C, error) {
	c, ok := member.(C)
	if !ok {
		return c, &domain.MethodNotImplementedError{Member: fmt.Sprintf("%T", member), Method: method}
	}
	return c, nil
}

func invoke[M any](fn IngestFunc[M], member M, fragment any) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if method, ok := missingMethod(rec); ok {
			err = &domain.MethodNotImplementedError{Member: fmt.Sprintf("%T", member), Method: method}
			return
		}
		panic(rec)
	}()

	if err := fn(member, fragment); err != nil {
		var mni *domain.MethodNotImplementedError
		if errors.As(err, &mni) {
			if mni.Member == "" {
				mni.Member = fmt.Sprintf("%T", member)
			}
			return mni
		}
		return err
	}
	return nil
}

// missingMethod extracts the method name from an interface-conversion panic.
func missingMethod(rec any) (string, bool) {
	rerr, ok := rec.(runtime.Error)
	if !ok {
		return "", false
	}
	msg := rerr.Error()
	const marker = "missing method "
	i := strings.Index(msg, marker)
	if i < 0 {
		return "", false
	}
	name := msg[i+len(marker):]
	if j := strings.IndexAny(name, " :)\n"); j >= 0 {
		name = name[:j]
	}
	return name, name != ""
}
