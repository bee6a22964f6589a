package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByName(t *testing.T) {
	assert.NotNil(t, ByName(DraculaName))
	assert.NotNil(t, ByName(NordName))
	assert.NotNil(t, ByName(CleanLightName))
	assert.NotNil(t, ByName(""), "empty name falls back to the default")
	assert.Nil(t, ByName("solarized"))
}

func TestAvailableThemesResolve(t *testing.T) {
	names := AvailableThemes()
	require.NotEmpty(t, names)
	for _, name := range names {
		th := ByName(name)
		require.NotNil(t, th, "theme %q", name)
		assert.NotEmpty(t, th.TextFg)
		assert.NotEmpty(t, th.AddedFg)
		assert.NotEmpty(t, th.RemovedFg)
	}
}
