package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/formtree/pkg/domain"
	"github.com/aretw0/formtree/pkg/form"
)

// GenerateMermaid produces a Mermaid flowchart of the mounted tree below root.
// It applies semantic styling:
// - Root: ((Circle))
// - Array form: [[Subroutine]]
// - Group form: [Rectangle]
// - Control: ([Stadium])
// Controls with failing validators are styled as invalid, those awaiting async
// validators as pending.
func GenerateMermaid(root *form.Form) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    root((\"root\"))\n")

	var invalid, pending []string
	var walk func(parentID string, f *form.Form)
	walk = func(parentID string, f *form.Form) {
		for _, n := range f.Children() {
			id := sanitizeMermaidID("n_" + form.Path(n))
			label := n.Name()
			if label == "" || f.Mode() == domain.ModeArray {
				label = form.Path(n)[strings.LastIndex(form.Path(n), ".")+1:]
			}

			switch n := n.(type) {
			case *form.Control:
				sb.WriteString(fmt.Sprintf("    %s([\"%s\"])\n", id, label))
				switch {
				case n.Pending():
					pending = append(pending, id)
				case !n.Valid():
					invalid = append(invalid, id)
				}
			case *form.Form:
				opener, closer := "[", "]"
				if n.Mode() == domain.ModeArray {
					opener, closer = "[[", "]]"
				}
				sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", id, opener, label, closer))
			}
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", parentID, id))

			if sub, ok := n.(*form.Form); ok {
				walk(id, sub)
			}
		}
	}
	walk("root", root)

	if len(invalid)+len(pending) > 0 {
		sb.WriteString("\n    %% Validation Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef invalid fill:#ffebee,stroke:#c62828,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef pending fill:#fff8e1,stroke:#f9a825,stroke-dasharray:4,color:#000;\n")
		for _, id := range invalid {
			sb.WriteString(fmt.Sprintf("    class %s invalid;\n", id))
		}
		for _, id := range pending {
			sb.WriteString(fmt.Sprintf("    class %s pending;\n", id))
		}
	}

	return sb.String()
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
