package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandsRegistered(t *testing.T) {
	want := []string{
		"run", "list", "compare", "delete", "clear",
		"serve", "doctor", "init", "version",
	}

	registered := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		registered[cmd.Name()] = true
	}

	for _, name := range want {
		assert.True(t, registered[name], "command %s should be registered", name)
	}
}

func TestGlobalFlags(t *testing.T) {
	for _, name := range []string{"config", "db", "verbose", "quiet", "no-color"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "flag --%s should exist", name)
	}
}

func TestLoadConfigDBOverride(t *testing.T) {
	t.Chdir(t.TempDir())

	dbFlag = "/tmp/override.json"
	defer func() { dbFlag = "" }()

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.json", cfg.Store.Path)
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "benchmark_results.json", cfg.Store.Path)
	assert.NotEmpty(t, cfg.Probes.DNSDomains)
}
