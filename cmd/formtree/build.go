package main

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/aretw0/formtree"
	"github.com/aretw0/formtree/pkg/config"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/spf13/cobra"
)

// buildTree loads the definition named by args, mounts it and applies the
// interaction flags requested on the command line.
func buildTree(cmd *cobra.Command, path string) (*form.Tree, error) {
	logger, err := newLogger(cmd)
	if err != nil {
		return nil, err
	}
	def, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	modelPath, _ := cmd.Flags().GetString("model")
	failAsync, _ := cmd.Flags().GetStringSlice("fail-async")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	opts := []formtree.Option{
		formtree.WithDefinition(def),
		formtree.WithLogger(logger),
	}
	if modelPath != "" {
		model, err := config.LoadModel(modelPath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, formtree.WithInitialModel(model))
	}

	// Async validators cannot run outside the host application; they are
	// simulated and pass unless listed in --fail-async.
	for _, name := range asyncNames(def) {
		fail := slices.Contains(failAsync, name)
		opts = append(opts, formtree.WithAsyncValidator(name, func(context.Context, any) (bool, error) {
			return !fail, nil
		}))
	}

	tree, err := formtree.New(opts...)
	if err != nil {
		return nil, err
	}

	if touchAll, _ := cmd.Flags().GetBool("touch-all"); touchAll {
		for _, c := range tree.Root().Descendants() {
			if err := c.Touch(); err != nil {
				return nil, err
			}
		}
	}
	if submit, _ := cmd.Flags().GetBool("submit"); submit {
		if err := tree.Root().Submit(); err != nil {
			return nil, err
		}
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	if err := tree.Settle(ctx); err != nil {
		return nil, fmt.Errorf("failed to settle async validation: %w", err)
	}
	return tree, nil
}

func asyncNames(def *config.Definition) []string {
	var names []string
	def.Form.Walk(func(_ string, f *config.FormDef) {
		for _, c := range f.Controls {
			for _, name := range c.AsyncValidators {
				if !slices.Contains(names, name) {
					names = append(names, name)
				}
			}
		}
	})
	return names
}

func addTreeFlags(cmd *cobra.Command) {
	cmd.Flags().String("model", "", "YAML or JSON file distributed over the tree")
	cmd.Flags().Bool("touch-all", false, "Mark every control as touched")
	cmd.Flags().Bool("submit", false, "Submit the root form")
	cmd.Flags().StringSlice("fail-async", nil, "Async validators to simulate as failing")
	cmd.Flags().Duration("timeout", 10*time.Second, "Maximum time to wait for async validation")
}
