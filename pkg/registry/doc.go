// Package registry provides an ordered, mutable collection of opaque members.
//
// A Registry knows nothing about forms: it offers insertion, predicate-based
// lookup and removal, projection, and Ingest, which matches a piece of data to
// members and hands each match its fragment. Sequence data is matched by
// position; keyed data is matched against the members' id key, so a Registry
// must be created with WithIDKey before it can ingest maps.
//
//	reg := registry.New[*Row](registry.WithIDKey("Name"))
//	_ = reg.Insert(&Row{Name: "a"})
//	err := reg.Ingest(func(r *Row, v any) error {
//	    r.Value = v
//	    return nil
//	}, map[string]any{"a": 1})
//
// Members are read through Pluck, which invokes a zero-argument method named
// after the key when the member has one and falls back to the field or map entry.
package registry
