/*
Package dsl provides a Go DSL for programmatically constructing form tree
definitions.

It is the code-first counterpart of definition files: the builder produces the
same config.Definition that config.Load returns, so both paths share
validation and mounting.

Example usage:

	def, err := dsl.New().
		ShowErrorsOn("touched", "submitted").
		Control("email").Require().Validate("email", "omitempty,email").
		Errors("required", "Email is required").End().
		Form("addresses").Array().
		Row().Control("street").Require().End().End().
		End().
		Definition()
	if err != nil {
		return err
	}

	tree := form.NewTree()
	if err := dsl.Mount(tree, def, dsl.WithAsyncValidator("unique", checkUnique)); err != nil {
		return err
	}
*/
package dsl
