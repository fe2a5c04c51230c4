package config

import (
	"os"
	"path/filepath"

	"github.com/hostbench/hostbench/internal/errors"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the default config file name.
	ConfigFileName = ".hostbench.yaml"
	// GlobalConfigDir is the directory for global config.
	GlobalConfigDir = ".config/hostbench"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
)

// Load reads config from the specified path.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found",
				"Run 'hostbench init' to create a config file, or specify one with --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file",
			"Check the file exists and is valid YAML")
	}

	return parseConfig(v, path)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .hostbench.yaml in current directory
// 3. .hostbench.yaml in parent directories (stops at git root or home)
// 4. ~/.config/hostbench/config.yaml (global defaults)
//
// Returns the path to the config file, or empty string if not found.
func Find(explicit string) (string, error) {
	// 1. Explicit path takes precedence
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	// 2. Current directory
	cwd, err := os.Getwd()
	if err != nil {
		return "", errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot determine current directory",
			"Check directory permissions")
	}

	localConfig := filepath.Join(cwd, ConfigFileName)
	if _, err := os.Stat(localConfig); err == nil {
		return localConfig, nil
	}

	// 3. Walk up to parent directories
	home, _ := os.UserHomeDir()
	dir := cwd
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached filesystem root
			break
		}
		if home != "" && parent == home {
			// Don't go above home directory
			break
		}
		dir = parent

		configPath := filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(configPath); err == nil {
			return configPath, nil
		}

		// Stop at git root
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			break
		}
	}

	// 4. Global config
	if home != "" {
		globalConfig := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
		if _, err := os.Stat(globalConfig); err == nil {
			return globalConfig, nil
		}
	}

	return "", nil
}

// LoadOrDefault loads config from the found path, or returns defaults if not
// found. Commands like 'hostbench run' work without a config file this way.
func LoadOrDefault(explicit string) (*Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}

	if path == "" {
		return DefaultConfig(), nil
	}

	return Load(path)
}

// parseConfig converts viper config to our Config struct with defaults merged in.
func parseConfig(v *viper.Viper, path string) (*Config, error) {
	cfg := DefaultConfig()

	setDefaults(v)

	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}

	return cfg, nil
}

// setDefaults registers defaults so a sparse config file still parses into a
// complete Config. Viper handles duration strings for time.Duration fields.
func setDefaults(v *viper.Viper) {
	v.SetDefault("store.path", "benchmark_results.json")
	v.SetDefault("probes.timeout", "2m")
	v.SetDefault("probes.cpu_max_prime", 20000)
	v.SetDefault("probes.cpu_threads", 4)
	v.SetDefault("probes.memory_total_size", "10G")
	v.SetDefault("probes.disk_file_size", "2G")
	v.SetDefault("probes.disk_duration", "10s")
	v.SetDefault("probes.network_test_duration", "5s")
	v.SetDefault("probes.ping_count", 10)
	v.SetDefault("probes.dns_domains", []string{"google.com", "github.com", "cloudflare.com"})
	v.SetDefault("serve.addr", ":8000")
	v.SetDefault("serve.log_dir", "logs")
	v.SetDefault("output.color", "auto")
}
