package main

import (
	"strings"

	"github.com/aretw0/formtree"
	"github.com/aretw0/formtree/internal/presentation/tui"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of formtree",
	Run: func(cmd *cobra.Command, args []string) {
		tui.PrintBanner(cmd.OutOrStdout(), strings.TrimSpace(formtree.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
