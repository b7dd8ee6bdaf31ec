package form_test

import (
	"errors"
	"testing"

	"github.com/aretw0/formtree/pkg/domain"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModel_DistributeAndDerive(t *testing.T) {
	b := newAddressBook(t, 3)

	require.NoError(t, b.tree.SetModelValues(sampleModel()))
	require.NoError(t, b.tree.Commit())

	assert.Equal(t, "bar", b.foo.Value())
	for i, name := range b.names {
		assert.Equal(t, i+1, name.Value())
	}
	assert.Equal(t, domain.ModeArray, b.addresses.Mode())
	assert.Equal(t, domain.ModeGroup, b.rows[0].Mode())
	assert.Equal(t, sampleModel(), b.tree.GetModelValues())
}

func TestModel_EmptyFormsDeriveTheirMode(t *testing.T) {
	tree := form.NewTree()
	group := form.NewForm("group")
	list := form.NewForm("list", form.WithMode(domain.ModeArray))
	require.NoError(t, tree.Mount(group))
	require.NoError(t, tree.Mount(list))

	assert.Equal(t, map[string]any{}, group.DeriveValue())
	assert.Equal(t, []any{}, list.DeriveValue())
	assert.Equal(t, map[string]any{"group": map[string]any{}, "list": []any{}}, tree.GetModelValues())
}

func TestModel_UnknownKeysAreIgnored(t *testing.T) {
	b := newAddressBook(t, 1)

	require.NoError(t, b.tree.SetModelValues(map[string]any{"foo": "x", "unknownKey": 1}))
	require.NoError(t, b.tree.Commit())

	assert.Equal(t, "x", b.foo.Value())
	derived := b.tree.GetModelValues().(map[string]any)
	assert.NotContains(t, derived, "unknownKey")
	// The snapshot still remembers it for a child mounted later.
	assert.Equal(t, 1, b.tree.Root().GetModelValue("unknownKey"))

	late := form.NewControl("unknownKey", form.ControlConfig{})
	require.NoError(t, b.tree.Mount(late))
	assert.Equal(t, 1, late.Value())
}

func TestModel_LengthMismatchIsTolerated(t *testing.T) {
	b := newAddressBook(t, 2)

	require.NoError(t, b.tree.SetModelValues(map[string]any{
		"addresses": []any{map[string]any{"name": "only"}},
	}))
	require.NoError(t, b.tree.Commit())
	assert.Equal(t, "only", b.names[0].Value())
	assert.Nil(t, b.names[1].Value())

	require.NoError(t, b.tree.SetModelValues(map[string]any{
		"addresses": []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b"},
			map[string]any{"name": "c"},
		},
	}))
	require.NoError(t, b.tree.Commit())
	assert.Equal(t, "a", b.names[0].Value())
	assert.Equal(t, "b", b.names[1].Value())
}

func TestModel_ModeInference(t *testing.T) {
	tree := form.NewTree()
	profile := form.NewForm("profile")
	tags := form.NewForm("tags")
	require.NoError(t, tree.Mount(profile))
	require.NoError(t, tree.Mount(tags))
	assert.Equal(t, domain.ModeUnset, profile.Mode())

	require.NoError(t, tree.SetModelValues(map[string]any{
		"profile": map[string]any{},
		"tags":    []any{},
	}))
	require.NoError(t, tree.Commit())

	assert.Equal(t, domain.ModeGroup, profile.Mode())
	assert.Equal(t, domain.ModeArray, tags.Mode())
}

func TestModel_ShapeMismatch(t *testing.T) {
	t.Run("other shape on an established mode", func(t *testing.T) {
		tree := form.NewTree()
		profile := form.NewForm("profile", form.WithMode(domain.ModeGroup))
		require.NoError(t, tree.Mount(profile))

		require.NoError(t, profile.SetModelValues([]any{1, 2}))
		err := tree.Commit()
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrShapeMismatch)

		var mismatch *domain.ShapeMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, "profile", mismatch.Form)
		assert.Equal(t, domain.ModeGroup, mismatch.Mode)
	})

	t.Run("array into a form holding controls", func(t *testing.T) {
		tree := form.NewTree()
		profile := form.NewForm("profile")
		require.NoError(t, tree.Mount(profile))
		require.NoError(t, tree.Mount(form.NewControl("email", form.ControlConfig{}), profile))

		require.NoError(t, profile.SetModelValues([]any{"a@b.c"}))
		assert.ErrorIs(t, tree.Commit(), domain.ErrShapeMismatch)
		assert.Equal(t, domain.ModeUnset, profile.Mode())
	})

	t.Run("scalar into a form", func(t *testing.T) {
		tree := form.NewTree()
		require.NoError(t, tree.SetModelValues("plain"))
		assert.ErrorIs(t, tree.Commit(), domain.ErrShapeMismatch)
	})

	t.Run("other operations still apply", func(t *testing.T) {
		tree := form.NewTree()
		profile := form.NewForm("profile", form.WithMode(domain.ModeArray))
		email := form.NewControl("email", form.ControlConfig{})
		require.NoError(t, tree.Mount(profile))
		require.NoError(t, tree.Mount(email))

		require.NoError(t, profile.SetModelValues(map[string]any{}))
		require.NoError(t, email.SetValue("a@b.c"))
		assert.ErrorIs(t, tree.Commit(), domain.ErrShapeMismatch)
		assert.Equal(t, "a@b.c", email.Value())
	})
}

func TestModel_NilIsANoop(t *testing.T) {
	b := newAddressBook(t, 1)
	require.NoError(t, b.tree.SetModelValues(sampleModel()))
	require.NoError(t, b.tree.Commit())

	require.NoError(t, b.tree.SetModelValues(nil))
	require.NoError(t, b.tree.Commit())
	assert.Equal(t, "bar", b.foo.Value())
}

func TestModel_ControlWinsOverFormWithTheSameName(t *testing.T) {
	tree := form.NewTree()
	contact := form.NewForm("contact")
	email := form.NewControl("email", form.ControlConfig{})
	shadow := form.NewControl("contact", form.ControlConfig{})
	require.NoError(t, tree.Mount(contact))
	require.NoError(t, tree.Mount(email, contact))
	require.NoError(t, tree.Mount(shadow))

	require.NoError(t, tree.SetModelValues(map[string]any{"contact": "x"}))
	require.NoError(t, tree.Commit())
	assert.Equal(t, "x", shadow.Value())
	assert.Nil(t, email.Value())
	assert.Equal(t, domain.ModeUnset, contact.Mode())
	assert.Equal(t, map[string]any{"contact": "x"}, tree.GetModelValues())

	child, ok := tree.Root().Child("contact")
	require.True(t, ok)
	assert.Same(t, shadow, child)

	tree.Unmount(shadow)
	require.NoError(t, tree.SetModelValues(map[string]any{
		"contact": map[string]any{"email": "a@b.c"},
	}))
	require.NoError(t, tree.Commit())
	assert.Equal(t, "a@b.c", email.Value())

	child, ok = tree.Root().Child("contact")
	require.True(t, ok)
	assert.Same(t, contact, child)
}

func TestModel_NewestRegistrationWins(t *testing.T) {
	tree := form.NewTree()
	first := form.NewControl("dup", form.ControlConfig{})
	second := form.NewControl("dup", form.ControlConfig{})
	require.NoError(t, tree.Mount(first))
	require.NoError(t, tree.Mount(second))

	found, ok := tree.Root().Control("dup")
	require.True(t, ok)
	assert.Same(t, second, found)
}

func TestModel_RemountSeedsFromSnapshot(t *testing.T) {
	tree := form.NewTree()
	foo := form.NewControl("foo", form.ControlConfig{})
	require.NoError(t, tree.Mount(foo))

	require.NoError(t, foo.SetValue("typed"))
	require.NoError(t, foo.Touch())
	require.NoError(t, tree.Commit())
	assert.True(t, foo.Dirty())
	assert.Equal(t, "typed", tree.Root().GetModelValue("foo"))

	tree.Unmount(foo)
	assert.Nil(t, foo.Value())
	assert.False(t, foo.Dirty())
	assert.False(t, foo.Touched())

	require.NoError(t, tree.SetModelValues(map[string]any{"foo": "fresh"}))
	require.NoError(t, tree.Commit())

	require.NoError(t, tree.Mount(foo))
	assert.Equal(t, "fresh", foo.Value())
	assert.False(t, foo.Dirty())
}

func TestModel_RemountArrayRowKeepsSiblings(t *testing.T) {
	b := newAddressBook(t, 3)
	require.NoError(t, b.tree.SetModelValues(sampleModel()))
	require.NoError(t, b.tree.Commit())

	require.NoError(t, b.names[2].SetValue("edited"))
	require.NoError(t, b.tree.Commit())

	b.tree.Unmount(b.rows[1])
	assert.Equal(t, []any{
		map[string]any{"name": 1},
		map[string]any{"name": "edited"},
	}, b.addresses.DeriveValue())

	require.NoError(t, b.tree.MountAt(b.rows[1], 1, b.addresses))
	assert.Equal(t, 1, b.names[0].Value())
	assert.Equal(t, 2, b.names[1].Value())
	assert.Equal(t, "edited", b.names[2].Value())
	assert.True(t, b.names[2].Dirty())
	assert.Equal(t, sampleModelWith("edited"), b.tree.GetModelValues())
}

func TestModel_EditWhileRowUnmountedKeepsItsSlot(t *testing.T) {
	b := newAddressBook(t, 3)
	require.NoError(t, b.tree.SetModelValues(sampleModel()))
	require.NoError(t, b.tree.Commit())

	b.tree.Unmount(b.rows[1])
	require.NoError(t, b.names[2].SetValue("edited"))
	require.NoError(t, b.tree.Commit())
	assert.Equal(t, map[string]any{"name": 2}, b.addresses.GetModelValue("1"))

	require.NoError(t, b.tree.MountAt(b.rows[1], 1, b.addresses))
	assert.Equal(t, 2, b.names[1].Value())
	assert.Equal(t, "edited", b.names[2].Value())
	assert.Equal(t, sampleModelWith("edited"), b.tree.GetModelValues())
}

func TestModel_MiddleInsertShiftsLaterRows(t *testing.T) {
	b := newAddressBook(t, 2)
	require.NoError(t, b.tree.SetModelValues(map[string]any{
		"addresses": []any{map[string]any{"name": 1}, map[string]any{"name": 2}},
	}))
	require.NoError(t, b.tree.Commit())

	row := form.NewForm("")
	name := form.NewControl("name", form.ControlConfig{})
	require.NoError(t, b.tree.MountAt(row, 1, b.addresses))
	require.NoError(t, b.tree.Mount(name, row))
	assert.Nil(t, name.Value())

	require.NoError(t, b.names[1].SetValue("moved"))
	require.NoError(t, b.tree.Commit())
	assert.Equal(t, []any{
		map[string]any{"name": 1},
		map[string]any{"name": nil},
		map[string]any{"name": "moved"},
	}, b.addresses.DeriveValue())
	assert.Equal(t, map[string]any{"name": "moved"}, b.addresses.GetModelValue("2"))
}

func TestModel_FailedDistributionChangesNothing(t *testing.T) {
	tree := form.NewTree()
	foo := form.NewControl("foo", form.ControlConfig{})
	group := form.NewForm("group")
	inner := form.NewControl("inner", form.ControlConfig{})
	list := form.NewForm("list", form.WithMode(domain.ModeArray))
	require.NoError(t, tree.Mount(foo))
	require.NoError(t, tree.Mount(group))
	require.NoError(t, tree.Mount(inner, group))
	require.NoError(t, tree.Mount(list, group))

	before := map[string]any{"foo": "before", "group": map[string]any{"inner": "before", "list": []any{}}}
	require.NoError(t, tree.SetModelValues(before))
	require.NoError(t, tree.Commit())

	require.NoError(t, tree.SetModelValues(map[string]any{
		"foo":   "changed",
		"group": map[string]any{"inner": "changed", "list": map[string]any{"x": 1}},
	}))
	assert.ErrorIs(t, tree.Commit(), domain.ErrShapeMismatch)
	assert.Equal(t, "before", foo.Value())
	assert.Equal(t, "before", inner.Value())
	assert.Equal(t, "before", tree.Root().GetModelValue("foo"))
	assert.Equal(t, map[string]any{"foo": "before", "group": map[string]any{"inner": "before", "list": []any{}}},
		tree.GetModelValues())

	require.NoError(t, tree.Root().SetModelValue("group", map[string]any{"inner": "changed", "list": "scalar"}))
	assert.ErrorIs(t, tree.Commit(), domain.ErrShapeMismatch)
	assert.Equal(t, "before", inner.Value())
}

func sampleModelWith(third any) map[string]any {
	m := sampleModel()
	m["addresses"].([]any)[2] = map[string]any{"name": third}
	return m
}

func TestModel_RoundTrip(t *testing.T) {
	b := newAddressBook(t, 3)
	require.NoError(t, b.tree.SetModelValues(sampleModel()))
	require.NoError(t, b.tree.Commit())

	derived := b.tree.GetModelValues()
	require.NoError(t, b.tree.SetModelValues(derived))
	require.NoError(t, b.tree.Commit())
	assert.Equal(t, derived, b.tree.GetModelValues())
}

func TestModel_SingleValueAccessors(t *testing.T) {
	b := newAddressBook(t, 2)

	require.NoError(t, b.tree.Root().SetModelValue("foo", "direct"))
	require.NoError(t, b.addresses.SetModelValue("1", map[string]any{"name": "second"}))
	require.NoError(t, b.tree.Root().SetModelValue("later", 42))
	require.NoError(t, b.tree.Commit())

	assert.Equal(t, "direct", b.foo.Value())
	assert.False(t, b.foo.Dirty())
	assert.Equal(t, "second", b.names[1].Value())
	assert.Equal(t, "second", b.addresses.GetModelValue("1").(map[string]any)["name"])
	assert.Equal(t, 42, b.tree.Root().GetModelValue("later"))

	require.NoError(t, b.addresses.SetModelValue("first", 1))
	assert.Error(t, b.tree.Commit())
}

func TestModel_TypedInputsAreNormalized(t *testing.T) {
	type address struct{ Name string }
	tree := form.NewTree()
	tags := form.NewForm("tags")
	first := form.NewControl("first", form.ControlConfig{})
	require.NoError(t, tree.Mount(tags))
	require.NoError(t, tree.Mount(first))

	require.NoError(t, tree.SetModelValues(map[string]any{
		"tags":  []string{"a", "b"},
		"first": address{Name: "kept whole"},
	}))
	require.NoError(t, tree.Commit())
	assert.Equal(t, domain.ModeArray, tags.Mode())
	assert.Equal(t, address{Name: "kept whole"}, first.Value())
}
