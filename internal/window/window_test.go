package window

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileWindowServesLinesThenEOF(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	out := filepath.Join(dir, "out.txt")
	require.NoError(t, os.WriteFile(in, []byte("a k v\nq k\n"), 0o644))

	w, err := NewFileWindow(in, out)
	require.NoError(t, err)
	defer w.Close()

	cmd, eof, err := w.Serve("")
	require.NoError(t, err)
	assert.False(t, eof)
	assert.Equal(t, "a k v", cmd)

	cmd, eof, err = w.Serve("ok")
	require.NoError(t, err)
	assert.False(t, eof)
	assert.Equal(t, "q k", cmd)

	_, eof, err = w.Serve("v")
	require.NoError(t, err)
	assert.True(t, eof)

	contents, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "ok")
	assert.Contains(t, string(contents), "v")
}

func TestFileWindowDefaultsOutputToStdout(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	require.NoError(t, os.WriteFile(in, []byte("q k\n"), 0o644))

	w, err := NewFileWindow(in, "")
	require.NoError(t, err)
	defer w.Close()

	_, _, err = w.Serve("")
	require.NoError(t, err)
}

func TestFakeWindowScriptedSequence(t *testing.T) {
	w := NewFakeWindow("a k v", "q k")

	cmd, eof, err := w.Serve("")
	require.NoError(t, err)
	assert.False(t, eof)
	assert.Equal(t, "a k v", cmd)

	cmd, eof, err = w.Serve("ok")
	require.NoError(t, err)
	assert.Equal(t, "q k", cmd)

	_, eof, err = w.Serve("v")
	require.NoError(t, err)
	assert.True(t, eof)

	assert.Equal(t, []string{"ok", "v"}, w.Responses())

	require.NoError(t, w.Close())
	assert.True(t, w.Closed())
}
