package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/formtree/pkg/domain"
	"github.com/aretw0/formtree/pkg/form"
)

// Report is a snapshot of a tree suitable for display or JSON output.
type Report struct {
	Definition string                     `json:"definition,omitempty"`
	Model      any                        `json:"model"`
	Flags      domain.Flags               `json:"flags"`
	Errors     map[string]map[string]bool `json:"errors"`
	Messages   map[string]string          `json:"messages"`
	Controls   []ControlRow               `json:"controls"`
}

// ControlRow is the state of one control in a Report.
type ControlRow struct {
	Path    string       `json:"path"`
	Value   any          `json:"value"`
	Flags   domain.Flags `json:"flags"`
	Failing []string     `json:"failing,omitempty"`
}

// NewReport captures the current committed state of tree.
func NewReport(tree *form.Tree, definition string) Report {
	root := tree.Root()
	r := Report{
		Definition: definition,
		Model:      tree.GetModelValues(),
		Flags:      root.Flags(),
		Errors:     root.Errors(),
		Messages:   root.Messages(),
	}
	for _, c := range root.Descendants() {
		r.Controls = append(r.Controls, ControlRow{
			Path:    form.Path(c),
			Value:   c.Value(),
			Flags:   c.Flags(),
			Failing: c.Failing(),
		})
	}
	return r
}

// Markdown renders the report as a markdown document.
func (r Report) Markdown() string {
	var sb strings.Builder
	title := "Form tree"
	if r.Definition != "" {
		title = r.Definition
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "**Valid:** %t · **Pending:** %t · **Touched:** %t · **Dirty:** %t · **Submitted:** %t\n\n",
		r.Flags.Valid, r.Flags.Pending, r.Flags.Touched, r.Flags.Dirty, r.Flags.Submitted)

	sb.WriteString("## Model\n\n```json\n")
	model, err := json.MarshalIndent(r.Model, "", "  ")
	if err != nil {
		model = []byte(fmt.Sprintf("%v", r.Model))
	}
	sb.Write(model)
	sb.WriteString("\n```\n\n")

	sb.WriteString("## Controls\n\n")
	if len(r.Controls) == 0 {
		sb.WriteString("_No controls mounted._\n\n")
	} else {
		sb.WriteString("| Path | Value | Valid | Failing |\n|---|---|---|---|\n")
		for _, c := range r.Controls {
			fmt.Fprintf(&sb, "| `%s` | %s | %t | %s |\n", c.Path, cell(c.Value), c.Flags.Valid, strings.Join(c.Failing, ", "))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Visible errors\n\n")
	if len(r.Errors) == 0 {
		sb.WriteString("_None._\n")
		return sb.String()
	}
	paths := make([]string, 0, len(r.Errors))
	for p := range r.Errors {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		msg, ok := r.Messages[p]
		if !ok {
			keys := make([]string, 0, len(r.Errors[p]))
			for k := range r.Errors[p] {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			msg = strings.Join(keys, ", ")
		}
		fmt.Fprintf(&sb, "- `%s`: %s\n", p, msg)
	}
	return sb.String()
}

func cell(v any) string {
	if v == nil {
		return "_empty_"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return strings.ReplaceAll(string(b), "|", "\\|")
}
