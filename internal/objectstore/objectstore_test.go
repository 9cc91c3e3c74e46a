package objectstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crowdwatch/crowdwatch-go/internal/errors"
)

func newTestStore(t *testing.T) *LocalStore {
	t.Helper()
	store, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	return store
}

func TestNewLocalEmptyPath(t *testing.T) {
	t.Parallel()

	store, err := NewLocal("")
	require.Error(t, err)
	assert.Nil(t, store)
	assert.Equal(t, errors.CategoryConfiguration, errors.CategoryOf(err))
}

func TestNewLocalCreatesRoot(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "clips")
	_, err := NewLocal(root)
	require.NoError(t, err)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPutAndOpen(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	path, size, err := store.Put(ctx, "clip.mp4", strings.NewReader("fake video content"))
	require.NoError(t, err)
	assert.Equal(t, int64(len("fake video content")), size)
	assert.True(t, strings.HasSuffix(path, "clip.mp4"))
	assert.False(t, filepath.IsAbs(path), "stored path must be relative")

	r, err := store.Open(ctx, path)
	require.NoError(t, err)
	defer r.Close()

	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "fake video content", string(data))
}

func TestPutSanitizesName(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	path, _, err := store.Put(ctx, "../../etc/passwd", strings.NewReader("data"))
	require.NoError(t, err)
	assert.NotContains(t, path, "..")

	// The clip still lives under the store root
	r, err := store.Open(ctx, path)
	require.NoError(t, err)
	r.Close()
}

func TestOpenMissingClip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	_, err := store.Open(context.Background(), "2026/01/missing.mp4")
	require.Error(t, err)
	assert.Equal(t, errors.CategoryNotFound, errors.CategoryOf(err))
}

func TestOpenEscapingPath(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)

	// Cleaned to a path inside the root, so it reads as missing, not as an
	// escape. Either way nothing outside the root is reachable.
	_, err := store.Open(context.Background(), "../outside.mp4")
	require.Error(t, err)
}

func TestRemove(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx := context.Background()

	path, _, err := store.Put(ctx, "clip.mp4", strings.NewReader("data"))
	require.NoError(t, err)

	require.NoError(t, store.Remove(ctx, path))

	_, err = store.Open(ctx, path)
	require.Error(t, err)

	// Removing an already absent clip is not an error
	require.NoError(t, store.Remove(ctx, path))
}

func TestPutCancelledContext(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := store.Put(ctx, "clip.mp4", strings.NewReader("data"))
	require.Error(t, err)
}
