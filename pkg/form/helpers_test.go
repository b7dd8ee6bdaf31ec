package form_test

import (
	"context"
	"testing"

	"github.com/aretw0/formtree/pkg/domain"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/stretchr/testify/require"
)

// addressBook mounts {foo, addresses: [{name} x rows]} on a fresh tree.
type addressBook struct {
	tree      *form.Tree
	foo       *form.Control
	addresses *form.Form
	rows      []*form.Form
	names     []*form.Control
}

func newAddressBook(t *testing.T, rows int, opts ...form.Option) *addressBook {
	t.Helper()
	b := &addressBook{tree: form.NewTree(opts...)}
	b.foo = form.NewControl("foo", form.ControlConfig{})
	b.addresses = form.NewForm("addresses", form.WithMode(domain.ModeArray))
	require.NoError(t, b.tree.Mount(b.foo))
	require.NoError(t, b.tree.Mount(b.addresses))
	for i := 0; i < rows; i++ {
		row := form.NewForm("")
		name := form.NewControl("name", form.ControlConfig{})
		require.NoError(t, b.tree.Mount(row, b.addresses))
		require.NoError(t, b.tree.Mount(name, row))
		b.rows = append(b.rows, row)
		b.names = append(b.names, name)
	}
	return b
}

func sampleModel() map[string]any {
	return map[string]any{
		"foo": "bar",
		"addresses": []any{
			map[string]any{"name": 1},
			map[string]any{"name": 2},
			map[string]any{"name": 3},
		},
	}
}

// events records every hook invocation of a tree.
type events struct {
	mounts     []*domain.NodeEvent
	unmounts   []*domain.NodeEvent
	commits    []*domain.CommitEvent
	validation []*domain.ValidationEvent
}

func (e *events) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnMount:    func(_ context.Context, ev *domain.NodeEvent) { e.mounts = append(e.mounts, ev) },
		OnUnmount:  func(_ context.Context, ev *domain.NodeEvent) { e.unmounts = append(e.unmounts, ev) },
		OnCommit:   func(_ context.Context, ev *domain.CommitEvent) { e.commits = append(e.commits, ev) },
		OnValidate: func(_ context.Context, ev *domain.ValidationEvent) { e.validation = append(e.validation, ev) },
	}
}

func (e *events) discarded() []*domain.ValidationEvent {
	var out []*domain.ValidationEvent
	for _, ev := range e.validation {
		if ev.Discarded {
			out = append(out, ev)
		}
	}
	return out
}
