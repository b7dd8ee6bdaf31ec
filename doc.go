/*
Package formtree keeps a tree of form controls synchronized with a nested model
value and reports which validation errors a user should currently see.

A tree is made of named Controls (leaves holding a value) and Forms
(containers addressing their children by name or by position). The rendering
layer mounts nodes as widgets appear and unmounts them as they go away; the
tree derives the composite value from whatever is mounted and distributes
external model values down to the matching children.

# Key Features

  - Group and array forms: the shape of the first value a form receives fixes
    how it addresses its children.
  - Staged writes: value changes, model writes and interaction flags apply
    together on Commit.
  - Sync and async validators: async results for superseded values are
    discarded.
  - Visibility policy: errors show once a control is touched, dirty or
    submitted, as configured.
  - Definitions: trees can be described in YAML/JSON files or with the Go
    builder in pkg/dsl.

# Usage

	tree, err := formtree.New(
		formtree.WithDefinitionFile("signup.yaml"),
		formtree.WithAsyncValidator("unique", checkUnique),
	)
	if err != nil {
		log.Fatal(err)
	}

	email, _ := tree.Root().Control("email")
	_ = email.SetValue("someone@example.com")
	_ = email.Touch()
	_ = tree.Commit()

	fmt.Println(tree.GetModelValues(), tree.Root().Errors())

Lower-level building blocks live in pkg/form (the tree itself), pkg/registry
(the ordered member collection behind every form), pkg/validation and
pkg/config.
*/
package formtree
