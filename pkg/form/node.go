package form

import (
	"strconv"
	"strings"

	"github.com/aretw0/formtree/pkg/domain"
)

// Node is a member of a form tree. Only *Control and *Form implement it.
type Node interface {
	Name() string
	Kind() domain.Kind
	Parent() *Form
	Mounted() bool
	Flags() domain.Flags

	attach(t *Tree, parent *Form)
	detach()
}

// FormNode is the capability set of containers.
type FormNode interface {
	Node
	Mode() domain.Mode
	Children() []Node
	DeriveValue() any
	SetModelValues(v any) error
}

// ControlNode is the capability set of leaves.
type ControlNode interface {
	Node
	Value() any
	SetValue(v any) error
	Errors() map[string]bool
}

var (
	_ FormNode    = (*Form)(nil)
	_ ControlNode = (*Control)(nil)
)

// Path returns the dotted location of n below its root, using positions for
// children of array forms. The root form has an empty path.
func Path(n Node) string {
	var parts []string
	var cur Node = n
	for {
		parent := cur.Parent()
		if parent == nil {
			if f, ok := cur.(*Form); !ok || !f.root {
				parts = append(parts, cur.Name())
			}
			break
		}
		seg := cur.Name()
		if parent.mode == domain.ModeArray || seg == "" {
			seg = strconv.Itoa(parent.children.IndexOf(cur))
		}
		parts = append(parts, seg)
		cur = parent
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// valueOf returns the committed value of a control or the composite of a form.
func valueOf(n Node) any {
	switch n := n.(type) {
	case *Control:
		return n.Value()
	case *Form:
		return n.DeriveValue()
	}
	return nil
}
