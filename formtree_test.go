package formtree_test

import (
	"context"
	"testing"

	"github.com/aretw0/formtree"
	"github.com/aretw0/formtree/internal/testutils"
	"github.com/aretw0/formtree/pkg/domain"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unique(_ context.Context, v any) (bool, error) {
	return v != "admin", nil
}

func TestNew_FromDefinitionFile(t *testing.T) {
	reg := prometheus.NewRegistry()
	tree, err := formtree.New(
		formtree.WithDefinitionFile("testdata/profile.yaml"),
		formtree.WithAsyncValidator("unique", unique),
		formtree.WithMetrics(reg),
	)
	require.NoError(t, err)

	testutils.Settle(t, tree)

	assert.Equal(t, map[string]any{
		"email":    "not-an-email",
		"username": "admin",
		"tags":     []any{"go", "forms"},
	}, tree.GetModelValues())
	assert.False(t, tree.Root().Valid())
	assert.Empty(t, tree.Root().Errors())

	require.NoError(t, tree.Root().Submit())
	require.NoError(t, tree.Commit())
	assert.Equal(t, map[string]string{
		"email":    "Email is malformed",
		"username": "Username is taken",
	}, tree.Root().Messages())

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNew_InitialModelOverridesDefinition(t *testing.T) {
	tree, err := formtree.New(
		formtree.WithDefinitionFile("testdata/profile.yaml"),
		formtree.WithAsyncValidator("unique", unique),
		formtree.WithInitialModel(map[string]any{"email": "someone@example.com"}),
	)
	require.NoError(t, err)

	email, ok := tree.Root().Control("email")
	require.True(t, ok)
	assert.Equal(t, "someone@example.com", email.Value())
	assert.True(t, email.Valid())
}

func TestNew_FromJSONDefinition(t *testing.T) {
	path := testutils.WriteDefinition(t, "contact.json", `{
		"show_errors_on": ["dirty"],
		"form": {"controls": [{"name": "phone", "validators": {"digits": "omitempty,numeric"}}]}
	}`)

	tree, err := formtree.New(formtree.WithDefinitionFile(path))
	require.NoError(t, err)
	assert.Equal(t, []domain.Trigger{domain.TriggerDirty}, tree.ShowErrorsOn())

	phone, ok := tree.Root().Control("phone")
	require.True(t, ok)
	require.NoError(t, phone.SetValue("12ab"))
	require.NoError(t, tree.Commit())
	assert.Equal(t, map[string]bool{"digits": true}, phone.Errors())
}

func TestNew_WithoutDefinition(t *testing.T) {
	var mounts int
	tree, err := formtree.New(
		formtree.WithShowErrorsOn(domain.TriggerDirty),
		formtree.WithLifecycleHooks(domain.LifecycleHooks{
			OnMount: func(context.Context, *domain.NodeEvent) { mounts++ },
		}),
	)
	require.NoError(t, err)
	assert.Equal(t, []domain.Trigger{domain.TriggerDirty}, tree.ShowErrorsOn())

	require.NoError(t, tree.Mount(form.NewControl("foo", form.ControlConfig{})))
	assert.Equal(t, 1, mounts)
}

func TestNew_InitialModelWithoutDefinition(t *testing.T) {
	tree, err := formtree.New(formtree.WithInitialModel(map[string]any{"later": 1}))
	require.NoError(t, err)

	foo := form.NewControl("later", form.ControlConfig{})
	require.NoError(t, tree.Mount(foo))
	assert.Equal(t, 1, foo.Value())
}

func TestNew_Errors(t *testing.T) {
	_, err := formtree.New(formtree.WithDefinitionFile("testdata/missing.yaml"))
	assert.Error(t, err)

	_, err = formtree.New(formtree.WithDefinitionFile("testdata/profile.yaml"))
	assert.ErrorIs(t, err, domain.ErrInvalidDefinition, "the unique validator is not supplied")

	_, err = formtree.New(formtree.WithInitialModel("scalar"))
	assert.ErrorIs(t, err, domain.ErrShapeMismatch)
}

func TestNew_MetricsSharedAcrossTrees(t *testing.T) {
	reg := prometheus.NewRegistry()
	for i := 0; i < 2; i++ {
		tree, err := formtree.New(formtree.WithMetrics(reg))
		require.NoError(t, err)
		require.NoError(t, tree.Commit())
	}

	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Commits.WithLabelValues("ok")))
}
