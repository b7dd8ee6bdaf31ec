package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/formtree/internal/presentation/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <definition>",
	Short: "Build a tree and report its value and visible errors",
	Long: `Builds the tree described by the definition, distributes the model, settles async
validation and prints the derived value with the errors currently visible.
Output is rendered markdown on a terminal, plain markdown otherwise, or JSON with --json.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := buildTree(cmd, args[0])
		if err != nil {
			return err
		}
		report := tui.NewReport(tree, filepath.Base(args[0]))
		out := cmd.OutOrStdout()

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		md := report.Markdown()
		if !isTerminal(os.Stdout) {
			fmt.Fprint(out, md)
			return nil
		}
		width, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil {
			width = 0
		}
		render, err := tui.NewRenderer(width)
		if err != nil {
			return err
		}
		rendered, err := render(md)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, tui.Status(report.Flags))
		fmt.Fprint(out, rendered)
		return nil
	},
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func init() {
	addTreeFlags(inspectCmd)
	inspectCmd.Flags().Bool("json", false, "Print the report as JSON")
	rootCmd.AddCommand(inspectCmd)
}
