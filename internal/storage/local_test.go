package storage

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	content := "x,y\n1,2\n"
	key := "datasets/job-1/data.csv"
	require.NoError(t, ls.Upload(ctx, key, strings.NewReader(content), int64(len(content)), "text/csv"))

	exists, err := ls.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, exists)

	rc, err := ls.Download(ctx, key)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	rc.Close()
	assert.Equal(t, content, string(got))

	assert.True(t, strings.HasPrefix(ls.GetURL(key), "file://"))

	require.NoError(t, ls.Delete(ctx, key))
	exists, err = ls.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalStorageDeleteMissingIsNoOp(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	assert.NoError(t, ls.Delete(context.Background(), "never/there.csv"))
}

func TestLocalStorageRejectsEscapingKeys(t *testing.T) {
	ls, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	for _, key := range []string{"../outside.csv", "/etc/passwd", "a/../../b"} {
		err := ls.Upload(ctx, key, bytes.NewReader(nil), 0, "text/csv")
		assert.Error(t, err, "key %q must be rejected", key)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	local, err := New(&Config{Type: "local", LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, local)

	fallback, err := New(&Config{LocalDir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, fallback)

	_, err = New(&Config{Type: "ftp"})
	assert.Error(t, err)
}
