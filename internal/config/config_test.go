package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "./net.safetensors", cfg.Path)
	assert.Equal(t, "_conv_stem", cfg.Tensor)
	assert.Equal(t, 10, cfg.Count)
	assert.Equal(t, "pt", cfg.Framework)
	assert.True(t, cfg.Mmap)
	require.NoError(t, cfg.Validate())
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "peek.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tensor: fc.weight\ncount: 3\nframework: np\nmmap: false\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fc.weight", cfg.Tensor)
	assert.Equal(t, 3, cfg.Count)
	assert.Equal(t, "np", cfg.Framework)
	assert.False(t, cfg.Mmap)
	assert.Equal(t, "./net.safetensors", cfg.Path, "unset keys keep defaults")
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("count: [1, 2"), 0o600))
	_, err = Load(bad)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("framework: tf\ncount: -1\n"), 0o600))
	_, err = Load(invalid)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid framework")
	assert.Contains(t, err.Error(), "invalid count")
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "peek.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o600))
	t.Setenv(EnvConfigPath, path)

	cfg, err = LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestValidate_FrameworkAliases(t *testing.T) {
	for _, fw := range []string{"pt", "torch", "numpy", "NP", "golang", "json"} {
		cfg := Default()
		cfg.Framework = fw
		assert.NoError(t, cfg.Validate(), fw)
	}

	cfg := Default()
	cfg.Framework = "tf"
	cfg.Validation = "loose"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid framework")
	assert.Contains(t, err.Error(), "invalid validation level")
}
