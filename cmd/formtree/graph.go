package main

import (
	"fmt"

	"github.com/aretw0/formtree/internal/presentation/graph"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <definition>",
	Short: "Export the tree visualization",
	Long:  `Builds the tree and outputs a Mermaid diagram (graph TD) of its forms and controls, highlighting invalid ones.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tree, err := buildTree(cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(tree.Root()))
		return nil
	},
}

func init() {
	addTreeFlags(graphCmd)
	rootCmd.AddCommand(graphCmd)
}
