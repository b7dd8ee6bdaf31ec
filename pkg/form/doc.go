/*
Package form keeps a tree of named controls and nested forms synchronized with
a plain nested value (maps and slices).

A Tree is the context object of one form: it owns the root Form, the logger,
lifecycle hooks, the error-visibility policy and the inbox where asynchronous
validation results land. Independent trees can coexist in one process.

# Mounting

The rendering layer mounts nodes when their widgets appear and unmounts them
when they go away:

	tree := form.NewTree()
	email := form.NewControl("email", form.ControlConfig{
	    Validators: map[string]validation.Func{"required": validation.Required()},
	    Errors:     validation.Table{{Key: "required", Text: "Email is required"}},
	})
	_ = tree.Mount(email) // no parent: attaches to the root form

A newly mounted node starts from the value the model currently holds at its
name (group forms) or position (array forms).

# Commit

Value changes, model writes and interaction flags are staged and applied by
Tree.Commit in a single pass: staged operations first, then settled async
results in arrival order, then validation and upward propagation. Readers see
the previous state until Commit returns.

	_ = email.SetValue("someone@example.com")
	_ = email.Touch()
	_ = tree.Commit()

# Model values

A Form whose first value is a map addresses children by name (group mode); one
whose first value is a slice addresses them by position (array mode). Keys
without a matching child are ignored. When a control and a sub-form share a
name, the control receives the value.
*/
package form
