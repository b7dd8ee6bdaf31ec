package form_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/formtree/internal/testutils"
	"github.com/aretw0/formtree/pkg/domain"
	"github.com/aretw0/formtree/pkg/form"
	"github.com/aretw0/formtree/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsync_OnlyLatestGenerationApplies(t *testing.T) {
	release := map[string]chan bool{
		"first":  make(chan bool),
		"second": make(chan bool),
	}
	started := make(chan string, 2)
	unique := func(_ context.Context, v any) (bool, error) {
		s, ok := v.(string)
		if !ok {
			return true, nil
		}
		started <- s
		// Ignores cancellation so the stale result really arrives.
		return <-release[s], nil
	}

	rec := &events{}
	tree := form.NewTree(form.WithHooks(rec.hooks()))
	user := form.NewControl("user", form.ControlConfig{
		AsyncValidators: map[string]validation.AsyncFunc{"unique": unique},
	})
	require.NoError(t, tree.Mount(user))
	testutils.Settle(t, tree)

	require.NoError(t, user.SetValue("first"))
	require.NoError(t, tree.Commit())
	assert.Equal(t, "first", <-started)
	firstGeneration := user.Generation()
	assert.True(t, user.Pending())

	require.NoError(t, user.SetValue("second"))
	require.NoError(t, tree.Commit())
	assert.Equal(t, "second", <-started)
	assert.Greater(t, user.Generation(), firstGeneration)

	release["second"] <- true
	release["first"] <- false

	select {
	case <-tree.Ready():
	case <-time.After(5 * time.Second):
		t.Fatal("no async result arrived")
	}
	testutils.Settle(t, tree)

	assert.False(t, user.Pending())
	assert.True(t, user.Valid())

	var stale []uint64
	for _, ev := range rec.discarded() {
		stale = append(stale, ev.Generation)
	}
	assert.Contains(t, stale, firstGeneration)

	var applied int
	for _, ev := range rec.validation {
		if ev.Async && !ev.Discarded && ev.Generation == user.Generation() {
			applied++
			assert.True(t, ev.Passed)
		}
	}
	assert.Equal(t, 1, applied)
}

func TestAsync_SupersededContextIsCancelled(t *testing.T) {
	cancelled := make(chan struct{})
	slow := func(ctx context.Context, v any) (bool, error) {
		if v == nil {
			return true, nil
		}
		<-ctx.Done()
		close(cancelled)
		return false, ctx.Err()
	}

	tree := form.NewTree()
	user := form.NewControl("user", form.ControlConfig{
		AsyncValidators: map[string]validation.AsyncFunc{"slow": slow},
	})
	require.NoError(t, tree.Mount(user))
	require.NoError(t, user.SetValue("a"))
	require.NoError(t, tree.Commit())

	tree.Unmount(user)
	select {
	case <-cancelled:
	case <-time.After(5 * time.Second):
		t.Fatal("validator context was not cancelled")
	}
	testutils.Settle(t, tree)
	assert.False(t, user.Pending())
}

func TestAsync_SkippedWhileSyncFails(t *testing.T) {
	var calls atomic.Int32
	tree := form.NewTree()
	user := form.NewControl("user", form.ControlConfig{
		Validators: map[string]validation.Func{"required": validation.Required()},
		AsyncValidators: map[string]validation.AsyncFunc{
			"unique": func(context.Context, any) (bool, error) {
				calls.Add(1)
				return true, nil
			},
		},
	})
	require.NoError(t, tree.Mount(user))
	testutils.Settle(t, tree)
	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, user.Pending())

	require.NoError(t, user.SetValue("bob"))
	testutils.Settle(t, tree)
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, user.Valid())
}

func TestAsync_ErrorsCountAsFailures(t *testing.T) {
	tree := form.NewTree()
	user := form.NewControl("user", form.ControlConfig{
		AsyncValidators: map[string]validation.AsyncFunc{
			"remote": validation.Async(func(_ context.Context, v any) error {
				if v == "down" {
					return errors.New("service unavailable")
				}
				return nil
			}),
			"panics": func(_ context.Context, v any) (bool, error) {
				if v == "boom" {
					panic("validator bug")
				}
				return true, nil
			},
		},
		Errors: validation.Table{{Key: "remote", Text: "Could not verify"}},
	})
	require.NoError(t, tree.Mount(user))
	testutils.Settle(t, tree)
	assert.True(t, user.Valid())

	require.NoError(t, user.SetValue("down"))
	require.NoError(t, user.Touch())
	testutils.Settle(t, tree)
	assert.False(t, user.Valid())
	assert.Equal(t, []string{"remote"}, user.Failing())
	msg, _ := user.Error()
	assert.Equal(t, "Could not verify", msg)

	require.NoError(t, user.SetValue("boom"))
	testutils.Settle(t, tree)
	assert.Equal(t, []string{"panics"}, user.Failing())
}

func TestAsync_PendingAggregatesAndDoesNotInvalidate(t *testing.T) {
	gate := make(chan struct{})
	tree := form.NewTree()
	profile := form.NewForm("profile")
	user := form.NewControl("user", form.ControlConfig{
		AsyncValidators: map[string]validation.AsyncFunc{
			"unique": func(_ context.Context, v any) (bool, error) {
				if v != nil {
					<-gate
				}
				return true, nil
			},
		},
	})
	require.NoError(t, tree.Mount(profile))
	require.NoError(t, tree.Mount(user, profile))
	testutils.Settle(t, tree)

	require.NoError(t, user.SetValue("bob"))
	require.NoError(t, tree.Commit())
	assert.True(t, profile.Pending())
	assert.True(t, tree.Root().Pending())
	assert.True(t, profile.Valid())

	close(gate)
	testutils.Settle(t, tree)
	assert.False(t, tree.Root().Pending())
	assert.Equal(t, 0, tree.PendingResults())
}

func TestAsync_SettleHonoursContext(t *testing.T) {
	gate := make(chan struct{})
	tree := form.NewTree()
	user := form.NewControl("user", form.ControlConfig{
		AsyncValidators: map[string]validation.AsyncFunc{
			"stuck": func(context.Context, any) (bool, error) {
				<-gate
				return true, nil
			},
		},
	})
	require.NoError(t, tree.Mount(user))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tree.Settle(ctx), context.DeadlineExceeded)
	assert.True(t, user.Pending())

	close(gate)
	testutils.Settle(t, tree)
	assert.False(t, user.Pending())
	assert.True(t, user.Valid())
}

func TestAsync_SettleKeepsGoingAfterCommitErrors(t *testing.T) {
	tree := form.NewTree()
	tags := form.NewForm("tags", form.WithMode(domain.ModeArray))
	user := form.NewControl("user", form.ControlConfig{
		AsyncValidators: map[string]validation.AsyncFunc{
			"unique": func(context.Context, any) (bool, error) { return false, nil },
		},
	})
	require.NoError(t, tree.Mount(tags))
	require.NoError(t, tree.Mount(user))
	testutils.Settle(t, tree)

	require.NoError(t, user.SetValue("bob"))
	require.NoError(t, tree.Root().SetModelValue("tags", map[string]any{"not": "a list"}))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err := tree.Settle(ctx)
	assert.ErrorIs(t, err, domain.ErrShapeMismatch)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, user.Pending())
	assert.Equal(t, []string{"unique"}, user.Failing())
	assert.Equal(t, 0, tree.PendingResults())
}
