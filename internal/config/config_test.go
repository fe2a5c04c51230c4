package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbench/hostbench/internal/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, CurrentConfigVersion, cfg.Version)
	assert.Equal(t, "benchmark_results.json", cfg.Store.Path)
	assert.Equal(t, 20000, cfg.Probes.CPUMaxPrime)
	assert.Equal(t, 4, cfg.Probes.CPUThreads)
	assert.Equal(t, "10G", cfg.Probes.MemoryTotalSize)
	assert.Equal(t, "2G", cfg.Probes.DiskFileSize)
	assert.Equal(t, 10*time.Second, cfg.Probes.DiskDuration)
	assert.Equal(t, 5*time.Second, cfg.Probes.NetworkTestDuration)
	assert.Equal(t, []string{"google.com", "github.com", "cloudflare.com"}, cfg.Probes.DNSDomains)

	require.NoError(t, Validate(cfg))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)

	content := `version: 1
store:
  path: /srv/shared/bench.json
probes:
  timeout: 90s
  cpu_max_prime: 5000
  disk_duration: 3s
serve:
  addr: ":9000"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	// Explicit values win.
	assert.Equal(t, "/srv/shared/bench.json", cfg.Store.Path)
	assert.Equal(t, 90*time.Second, cfg.Probes.Timeout)
	assert.Equal(t, 5000, cfg.Probes.CPUMaxPrime)
	assert.Equal(t, 3*time.Second, cfg.Probes.DiskDuration)
	assert.Equal(t, ":9000", cfg.Serve.Addr)

	// Unset values fall back to defaults.
	assert.Equal(t, 4, cfg.Probes.CPUThreads)
	assert.Equal(t, "10G", cfg.Probes.MemoryTotalSize)
	assert.Equal(t, 10, cfg.Probes.PingCount)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("store: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestLoadOrDefaultWithoutFile(t *testing.T) {
	// Run from an isolated directory so no real config is picked up.
	dir := t.TempDir()
	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	cfg, err := LoadOrDefault("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Probes.CPUMaxPrime, cfg.Probes.CPUMaxPrime)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "empty store path",
			mutate:  func(c *Config) { c.Store.Path = "" },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Probes.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "negative prime ceiling",
			mutate:  func(c *Config) { c.Probes.CPUMaxPrime = -1 },
			wantErr: true,
		},
		{
			name:    "bogus memory size",
			mutate:  func(c *Config) { c.Probes.MemoryTotalSize = "lots" },
			wantErr: true,
		},
		{
			name:    "bogus disk size",
			mutate:  func(c *Config) { c.Probes.DiskFileSize = "2 gigs" },
			wantErr: true,
		},
		{
			name:    "no dns domains",
			mutate:  func(c *Config) { c.Probes.DNSDomains = nil },
			wantErr: true,
		},
		{
			name:    "lowercase size suffix accepted",
			mutate:  func(c *Config) { c.Probes.DiskFileSize = "512m" },
			wantErr: false,
		},
		{
			name:    "disk duration longer than timeout",
			mutate:  func(c *Config) { c.Probes.DiskDuration = 3 * time.Minute },
			wantErr: true,
		},
		{
			name:    "network duration longer than timeout",
			mutate: func(c *Config) {
				c.Probes.Timeout = 30 * time.Second
				c.Probes.NetworkTestDuration = time.Minute
			},
			wantErr: true,
		},
		{
			name: "raised test length with raised timeout",
			mutate: func(c *Config) {
				c.Probes.Timeout = 10 * time.Minute
				c.Probes.DiskDuration = 5 * time.Minute
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrConfig))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestFindExplicitMissing(t *testing.T) {
	_, err := Find(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConfig))
}

func TestFindInCurrentDirectory(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ConfigFileName)
	require.NoError(t, os.WriteFile(path, []byte("version: 1\n"), 0o644))

	cwd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	found, err := Find("")
	require.NoError(t, err)

	// Resolve symlinks: on macOS TempDir lives under /var -> /private/var.
	wantReal, _ := filepath.EvalSymlinks(path)
	foundReal, _ := filepath.EvalSymlinks(found)
	assert.Equal(t, wantReal, foundReal)
}
