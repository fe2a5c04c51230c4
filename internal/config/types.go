package config

import (
	"regexp"
	"time"

	"github.com/hostbench/hostbench/internal/errors"
)

// CurrentConfigVersion is the schema version for the config file.
// Increment when making breaking changes to the config structure.
const CurrentConfigVersion = 1

// Config represents the complete .hostbench.yaml configuration file.
type Config struct {
	Version int          `yaml:"version" mapstructure:"version"`
	Store   StoreConfig  `yaml:"store" mapstructure:"store"`
	Probes  ProbesConfig `yaml:"probes" mapstructure:"probes"`
	Serve   ServeConfig  `yaml:"serve" mapstructure:"serve"`
	Output  OutputConfig `yaml:"output" mapstructure:"output"`
}

// StoreConfig controls where benchmark results are persisted.
type StoreConfig struct {
	// Path is the results file. May live on shared storage so several
	// hosts can contribute to one comparison view.
	Path string `yaml:"path" mapstructure:"path"`
}

// ProbesConfig holds the tunables for the four probe categories.
type ProbesConfig struct {
	// Timeout is the hard wall-clock cap for a single probe command.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`

	// CPUMaxPrime is sysbench's --cpu-max-prime ceiling.
	CPUMaxPrime int `yaml:"cpu_max_prime" mapstructure:"cpu_max_prime"`

	// CPUThreads is sysbench's --threads for the CPU test.
	CPUThreads int `yaml:"cpu_threads" mapstructure:"cpu_threads"`

	// MemoryTotalSize is sysbench's --memory-total-size (e.g. "10G").
	MemoryTotalSize string `yaml:"memory_total_size" mapstructure:"memory_total_size"`

	// DiskFileSize is sysbench fileio's --file-total-size (e.g. "2G").
	DiskFileSize string `yaml:"disk_file_size" mapstructure:"disk_file_size"`

	// DiskDuration is how long the fileio run phase lasts.
	DiskDuration time.Duration `yaml:"disk_duration" mapstructure:"disk_duration"`

	// NetworkTestDuration is the iperf3 client test length.
	NetworkTestDuration time.Duration `yaml:"network_test_duration" mapstructure:"network_test_duration"`

	// PingCount is how many echo requests the latency sub-probe sends.
	PingCount int `yaml:"ping_count" mapstructure:"ping_count"`

	// DNSDomains are resolved (and timed) by the DNS sub-probe.
	DNSDomains []string `yaml:"dns_domains" mapstructure:"dns_domains"`
}

// ServeConfig controls the HTTP comparison UI.
type ServeConfig struct {
	// Addr is the listen address, e.g. ":8000".
	Addr string `yaml:"addr" mapstructure:"addr"`

	// LogDir is where rotated serve logs are written.
	LogDir string `yaml:"log_dir" mapstructure:"log_dir"`
}

// OutputConfig controls terminal output formatting.
type OutputConfig struct {
	// Color mode: "auto", "always", or "never".
	Color string `yaml:"color" mapstructure:"color"`
}

// DefaultConfig returns a Config with sensible defaults.
// The probe tunables mirror a classic sysbench/iperf3 battery: a 20k prime
// ceiling, 10G of memory transfer, a 2G fileio working set, and short
// loopback network tests.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentConfigVersion,
		Store: StoreConfig{
			Path: "benchmark_results.json",
		},
		Probes: ProbesConfig{
			Timeout:             2 * time.Minute,
			CPUMaxPrime:         20000,
			CPUThreads:          4,
			MemoryTotalSize:     "10G",
			DiskFileSize:        "2G",
			DiskDuration:        10 * time.Second,
			NetworkTestDuration: 5 * time.Second,
			PingCount:           10,
			DNSDomains:          []string{"google.com", "github.com", "cloudflare.com"},
		},
		Serve: ServeConfig{
			Addr:   ":8000",
			LogDir: "logs",
		},
		Output: OutputConfig{
			Color: "auto",
		},
	}
}

// sizeRe matches sysbench-style size strings like 512M, 10G, 2048.
var sizeRe = regexp.MustCompile(`^[0-9]+[kKmMgGtT]?$`)

// Validate checks the config for values the probes cannot work with.
func Validate(cfg *Config) error {
	if cfg.Store.Path == "" {
		return errors.New(errors.ErrConfig,
			"Store path is empty",
			"Set store.path in .hostbench.yaml or pass --db")
	}
	if cfg.Probes.Timeout <= 0 {
		return errors.New(errors.ErrConfig,
			"Probe timeout must be positive",
			"Set probes.timeout to something like 2m")
	}
	if cfg.Probes.CPUMaxPrime <= 0 {
		return errors.New(errors.ErrConfig,
			"cpu_max_prime must be positive",
			"The default is 20000; smaller values finish faster")
	}
	if cfg.Probes.CPUThreads <= 0 {
		return errors.New(errors.ErrConfig,
			"cpu_threads must be positive",
			"Set probes.cpu_threads to the number of workers sysbench should use")
	}
	if !sizeRe.MatchString(cfg.Probes.MemoryTotalSize) {
		return errors.New(errors.ErrConfig,
			"memory_total_size doesn't look like a size",
			"Use a sysbench size like 10G or 512M")
	}
	if !sizeRe.MatchString(cfg.Probes.DiskFileSize) {
		return errors.New(errors.ErrConfig,
			"disk_file_size doesn't look like a size",
			"Use a sysbench size like 2G or 512M")
	}
	if cfg.Probes.DiskDuration <= 0 || cfg.Probes.NetworkTestDuration <= 0 {
		return errors.New(errors.ErrConfig,
			"Probe durations must be positive",
			"Set probes.disk_duration and probes.network_test_duration to durations like 10s")
	}
	if cfg.Probes.Timeout <= cfg.Probes.DiskDuration || cfg.Probes.Timeout <= cfg.Probes.NetworkTestDuration {
		return errors.New(errors.ErrConfig,
			"probes.timeout must exceed disk_duration and network_test_duration",
			"Every probe command is killed at probes.timeout; raise it when lengthening a test")
	}
	if cfg.Probes.PingCount <= 0 {
		return errors.New(errors.ErrConfig,
			"ping_count must be positive",
			"The default is 10")
	}
	if len(cfg.Probes.DNSDomains) == 0 {
		return errors.New(errors.ErrConfig,
			"dns_domains is empty",
			"List at least one domain for the DNS timing sub-probe")
	}
	return nil
}
