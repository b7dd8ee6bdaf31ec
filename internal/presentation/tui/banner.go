package tui

import (
	"fmt"
	"io"

	"github.com/aretw0/formtree/pkg/domain"
	"github.com/muesli/termenv"
)

// PrintBanner outputs the formtree banner with its version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	name := termenv.String("formtree").Foreground(p.Color("#818cf8")).Bold()
	ver := termenv.String(version).Foreground(p.Color("#c084fc"))
	fmt.Fprintf(w, "%s %s\n", name, ver)
}

// Status returns a one-line colored summary of flags.
func Status(flags domain.Flags) string {
	p := termenv.ColorProfile()
	var label termenv.Style
	switch {
	case flags.Pending:
		label = termenv.String("… pending").Foreground(p.Color("#f59e0b"))
	case flags.Valid:
		label = termenv.String("✔ valid").Foreground(p.Color("#22c55e"))
	default:
		label = termenv.String("✖ invalid").Foreground(p.Color("#ef4444"))
	}

	var marks []string
	for _, m := range []struct {
		on   bool
		name string
	}{
		{flags.Touched, "touched"},
		{flags.Dirty, "dirty"},
		{flags.Submitted, "submitted"},
	} {
		if m.on {
			marks = append(marks, m.name)
		}
	}
	if len(marks) == 0 {
		return label.String()
	}
	return fmt.Sprintf("%s %s", label, termenv.String(fmt.Sprint(marks)).Faint())
}
