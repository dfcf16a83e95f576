package resize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPresetsDefaults(t *testing.T) {
	presets, err := LoadPresets("")
	require.NoError(t, err)
	assert.Len(t, presets, 4)
}

func TestLoadPresetsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dimensions.yaml")
	content := `
- name: Billboard
  width: 970
  height: 250
- name: Mobile Banner
  width: 320
  height: 50
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	presets, err := LoadPresets(path)
	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, Preset{Name: "Billboard", Width: 970, Height: 250}, presets[0])
}

func TestLoadPresetsRejectsBadDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dimensions.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- name: Broken\n  width: -1\n  height: 50\n"), 0o600))

	_, err := LoadPresets(path)
	assert.Error(t, err)
}

func TestLoadPresetsMissingFile(t *testing.T) {
	_, err := LoadPresets(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
