package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/formtree/pkg/form"
	"github.com/stretchr/testify/require"
)

// WriteDefinition writes content to a file named name in a temporary directory
// and returns its absolute path. It fails the test immediately on error.
func WriteDefinition(t *testing.T, name, content string) string {
	t.Helper()

	path, err := filepath.Abs(filepath.Join(t.TempDir(), name))
	require.NoError(t, err, "Failed to get absolute path for temp dir")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644), "Failed to write definition")
	return path
}

// Settle waits for every in-flight async validator of tree and commits their
// results, failing the test after five seconds.
func Settle(t *testing.T, tree *form.Tree) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, tree.Settle(ctx), "Failed to settle async validation")
}
