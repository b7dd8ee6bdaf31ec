package main

import (
	"fmt"

	"github.com/aretw0/formtree/pkg/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <definition>",
	Short: "Check a definition for consistency",
	Long:  `Parses the definition and reports unknown keys, bad modes and triggers, and validator tags the engine does not understand.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		def, err := config.Load(args[0])
		if err != nil {
			return err
		}
		if err := config.Validate(def); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		controls, forms := def.Form.Count()
		fmt.Fprintf(cmd.OutOrStdout(), "Definition is valid! ✅ (%d controls, %d forms)\n", controls, forms)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
