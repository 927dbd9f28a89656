package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// unsetenv removes key for the test; even an empty CCDB_* variable
// counts as an override and would clobber lower layers.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	unsetenv(t, "CCDB_CONNECTION")
	unsetenv(t, "CCDB_VERBOSE")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "", cfg.Connection)
	assert.False(t, cfg.Verbose)
	assert.Equal(t, "", FileUsed())
	assert.Same(t, cfg, Current())
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ccdb.yaml")
	require.NoError(t, os.WriteFile(path, []byte("connection: sqlite:///data/ccdb.db\nverbose: true\n"), 0o644))
	chdir(t, dir)
	unsetenv(t, "CCDB_CONNECTION")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlite:///data/ccdb.db", cfg.Connection)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "ccdb.yaml", FileUsed())
}

func TestLoadExplicitConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("connection: custom.db\n"), 0o644))
	chdir(t, t.TempDir())
	unsetenv(t, "CCDB_CONNECTION")

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "custom.db", cfg.Connection)
	assert.Equal(t, path, FileUsed())
}

func TestLoadMissingExplicitConfigFile(t *testing.T) {
	chdir(t, t.TempDir())

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), nil)
	assert.Error(t, err)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ccdb.yaml"), []byte("connection: from-file.db\n"), 0o644))
	chdir(t, dir)
	t.Setenv("CCDB_CONNECTION", "from-env.db")

	cfg, err := Load("", nil)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Connection)
}

func TestFlagsOverrideEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CCDB_CONNECTION", "from-env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("connection", "", "")
	flags.Bool("verbose", false, "")
	require.NoError(t, flags.Parse([]string{"--connection", "from-flag.db"}))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from-flag.db", cfg.Connection)
	// Untouched flags must not clobber lower layers.
	assert.False(t, cfg.Verbose)
}

func TestUnchangedFlagsDoNotOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CCDB_CONNECTION", "from-env.db")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("connection", "", "")
	require.NoError(t, flags.Parse(nil))

	cfg, err := Load("", flags)
	require.NoError(t, err)
	assert.Equal(t, "from-env.db", cfg.Connection)
}
