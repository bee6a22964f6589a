package log

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedUntilFileSet(t *testing.T) {
	Printf("buffered message %d", 1)

	path := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, SetFile(path))
	Printf("direct message")
	require.NoError(t, Close())

	data, err := os.ReadFile(path) //nolint:gosec
	require.NoError(t, err)
	assert.Contains(t, string(data), "buffered message 1")
	assert.Contains(t, string(data), "direct message")
}

func TestEmptyPathDiscards(t *testing.T) {
	Printf("never seen")
	require.NoError(t, SetFile(""))
	Printf("also never seen")

	path := filepath.Join(t.TempDir(), "debug.log")
	require.NoError(t, SetFile(path))
	Printf("visible")
	require.NoError(t, Close())

	data, err := os.ReadFile(path) //nolint:gosec
	require.NoError(t, err)
	assert.NotContains(t, string(data), "never seen")
	assert.Contains(t, string(data), "visible")
}
