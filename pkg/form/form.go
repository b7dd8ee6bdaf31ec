package form

import (
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/aretw0/formtree/internal/logging"
	"github.com/aretw0/formtree/pkg/domain"
	"github.com/aretw0/formtree/pkg/registry"
)

// Form is a container of controls and sub-forms.
type Form struct {
	name      string
	mode      domain.Mode
	parent    *Form
	tree      *Tree
	children  *registry.Registry[Node]
	model     any
	vacant    []int // model slots of unmounted rows, array mode only
	submitted bool
	root      bool
}

// FormOption configures a Form.
type FormOption func(*Form)

// WithMode fixes the addressing mode up front instead of inferring it from the
// first value the form receives.
func WithMode(mode domain.Mode) FormOption {
	return func(f *Form) {
		f.mode = mode
	}
}

// NewForm creates an unmounted form.
func NewForm(name string, opts ...FormOption) *Form {
	f := &Form{
		name:     name,
		children: registry.New[Node](registry.WithIDKey(domain.DefaultIDKey)),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Form) Name() string      { return f.name }
func (f *Form) Kind() domain.Kind { return domain.KindForm }
func (f *Form) Parent() *Form     { return f.parent }
func (f *Form) Mode() domain.Mode { return f.mode }

// Mounted reports whether the form is the root or reaches it through attached
// ancestors. Forms kept under an unmounted form are not mounted.
func (f *Form) Mounted() bool {
	for cur := f; cur != nil; cur = cur.parent {
		if cur.root {
			return true
		}
	}
	return false
}

// Children returns the mounted children in registration order.
func (f *Form) Children() []Node { return f.children.Members() }

// Controls returns the child controls in registration order.
func (f *Form) Controls() []*Control {
	nodes := f.children.Filter(func(n Node) bool { return n.Kind() == domain.KindControl })
	out := make([]*Control, len(nodes))
	for i, n := range nodes {
		out[i] = n.(*Control)
	}
	return out
}

// Forms returns the child forms in registration order.
func (f *Form) Forms() []*Form {
	nodes := f.children.Filter(func(n Node) bool { return n.Kind() == domain.KindForm })
	out := make([]*Form, len(nodes))
	for i, n := range nodes {
		out[i] = n.(*Form)
	}
	return out
}

// isForm selects the child forms named name.
func isForm(name string) registry.Predicate[Node] {
	return func(n Node) bool { return n.Kind() == domain.KindForm && n.Name() == name }
}

// Control returns the most recently mounted child control named name.
func (f *Form) Control(name string) (*Control, bool) {
	n, ok := f.children.FindLast(func(n Node) bool {
		return n.Kind() == domain.KindControl && n.Name() == name
	})
	if !ok {
		return nil, false
	}
	return n.(*Control), true
}

// Form returns the most recently mounted child form named name.
func (f *Form) Form(name string) (*Form, bool) {
	n, ok := f.children.FindLast(isForm(name))
	if !ok {
		return nil, false
	}
	return n.(*Form), true
}

// Child resolves name the way distribution does: controls first, then forms.
// In array mode name is a position.
func (f *Form) Child(name string) (Node, bool) {
	if f.mode == domain.ModeArray {
		i, err := strconv.Atoi(name)
		if err != nil {
			return nil, false
		}
		return f.children.At(i)
	}
	if c, ok := f.Control(name); ok {
		return c, true
	}
	if sub, ok := f.Form(name); ok {
		return sub, true
	}
	return nil, false
}

// Lookup resolves a dotted path such as "addresses.0.name" below f.
func (f *Form) Lookup(path string) (Node, bool) {
	if path == "" {
		return f, true
	}
	cur := f
	parts := strings.Split(path, ".")
	for i, part := range parts {
		n, ok := cur.Child(part)
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return n, true
		}
		next, ok := n.(*Form)
		if !ok {
			return nil, false
		}
		cur = next
	}
	return nil, false
}

// Submitted reports whether this form or one of its ancestors was submitted.
func (f *Form) Submitted() bool {
	for cur := f; cur != nil; cur = cur.parent {
		if cur.submitted {
			return true
		}
	}
	return false
}

// Submit stages marking the form as submitted.
func (f *Form) Submit() error {
	return f.SetSubmitted(true)
}

// SetSubmitted stages setting or clearing the submitted flag.
func (f *Form) SetSubmitted(submitted bool) error {
	t, err := f.owner()
	if err != nil {
		return err
	}
	t.stage("submit", f, func(*pass) error {
		f.submitted = submitted
		return nil
	})
	return nil
}

// Tree returns the tree the form is mounted in, or nil.
func (f *Form) Tree() *Tree { return f.tree }

func (f *Form) owner() (*Tree, error) {
	if !f.Mounted() || f.tree == nil {
		return nil, domain.ErrNotMounted
	}
	return f.tree, nil
}

func (f *Form) logger() *slog.Logger {
	if f.tree == nil {
		return logging.NewNop()
	}
	return f.tree.logger
}

func (f *Form) attach(t *Tree, parent *Form) {
	f.parent = parent
	f.adopt(t)
}

func (f *Form) adopt(t *Tree) {
	f.tree = t
	for _, n := range f.children.Members() {
		switch n := n.(type) {
		case *Control:
			n.tree = t
		case *Form:
			n.adopt(t)
		}
	}
}

// detach clears the parent link and the state of every descendant. Children
// stay registered so a remount brings the same subtree back.
func (f *Form) detach() {
	f.parent = nil
	f.reset()
}

func (f *Form) reset() {
	f.model = nil
	f.vacant = nil
	f.submitted = false
	for _, n := range f.children.Members() {
		switch n := n.(type) {
		case *Control:
			n.reset()
		case *Form:
			n.reset()
		}
	}
}

func (f *Form) descendsFrom(ancestor *Form) bool {
	for cur := f.parent; cur != nil; cur = cur.parent {
		if cur == ancestor {
			return true
		}
	}
	return false
}

func (f *Form) walkControls(fn func(*Control)) {
	f.children.Each(func(_ int, n Node) bool {
		switch n := n.(type) {
		case *Control:
			fn(n)
		case *Form:
			n.walkControls(fn)
		}
		return true
	})
}

// Descendants returns every control below f, depth first, in registration order.
func (f *Form) Descendants() []*Control {
	var out []*Control
	f.walkControls(func(c *Control) { out = append(out, c) })
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
