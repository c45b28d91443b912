package hrtf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfigYAML = `
global:
  hrtf-paths: "/usr/share/openal/hrtf"
  hrtf-size: "64"
devices:
  "Headphones":
    default-hrtf: "Built-In HRTF"
    hrtf-size: "banana"
`

func TestParseConfig(t *testing.T) {
	cfg, err := ParseConfig([]byte(testConfigYAML))
	require.NoError(t, err)

	v, ok := cfg.String("", ConfigKeyPaths)
	require.True(t, ok)
	assert.Equal(t, "/usr/share/openal/hrtf", v)

	_, ok = cfg.String("", ConfigKeyDefault)
	assert.False(t, ok)
}

func TestConfigDeviceOverridesGlobal(t *testing.T) {
	cfg, err := ParseConfig([]byte(testConfigYAML))
	require.NoError(t, err)

	// Device sections override globals, and fall through for unset keys.
	v, ok := cfg.String("Headphones", ConfigKeyDefault)
	require.True(t, ok)
	assert.Equal(t, "Built-In HRTF", v)

	v, ok = cfg.String("Headphones", ConfigKeyPaths)
	require.True(t, ok)
	assert.Equal(t, "/usr/share/openal/hrtf", v)

	_, ok = cfg.String("Unknown Device", ConfigKeyDefault)
	assert.False(t, ok)
}

func TestConfigUint(t *testing.T) {
	cfg, err := ParseConfig([]byte(testConfigYAML))
	require.NoError(t, err)

	n, ok := cfg.Uint("", ConfigKeySize)
	require.True(t, ok)
	assert.Equal(t, uint(64), n)

	// A device override that fails to parse reads as unset.
	_, ok = cfg.Uint("Headphones", ConfigKeySize)
	assert.False(t, ok)
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alsoft.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testConfigYAML), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	_, ok := cfg.String("", ConfigKeyPaths)
	assert.True(t, ok)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestParseConfigRejectsMalformedYAML(t *testing.T) {
	_, err := ParseConfig([]byte("global: [not: a map"))
	assert.Error(t, err)
}
