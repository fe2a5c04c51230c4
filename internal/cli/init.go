package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"

	"github.com/hostbench/hostbench/internal/config"
	"github.com/hostbench/hostbench/internal/errors"
)

// initCommand creates a .hostbench.yaml in the current directory.
func initCommand(force bool) error {
	configPath := filepath.Join(".", config.ConfigFileName)

	if _, err := os.Stat(configPath); err == nil && !force {
		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("Config file '%s' already exists. Overwrite?", config.ConfigFileName)).
					Value(&overwrite),
			),
		)
		if ferr := form.Run(); ferr != nil {
			return errors.WrapWithCode(ferr, errors.ErrConfig,
				"Couldn't read the confirmation",
				"Pass --force to overwrite without asking.")
		}
		if !overwrite {
			fmt.Println("Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	storePath := cfg.Store.Path
	serveAddr := cfg.Serve.Addr

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Results file").
				Description("Where benchmark results are stored. Use a path on shared storage to compare several hosts.").
				Placeholder("benchmark_results.json").
				Value(&storePath).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("results file path is required")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Serve address").
				Description("Listen address for 'hostbench serve'.").
				Placeholder(":8000").
				Value(&serveAddr).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("serve address is required")
					}
					return nil
				}),
		),
	)
	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't read the configuration answers",
			"Check terminal compatibility, or write .hostbench.yaml by hand.")
	}

	cfg.Store.Path = strings.TrimSpace(storePath)
	cfg.Serve.Addr = strings.TrimSpace(serveAddr)

	if err := writeConfig(configPath, cfg); err != nil {
		return err
	}

	fmt.Printf("Wrote %s\n", configPath)
	fmt.Println("Run 'hostbench doctor' to verify the measurement tools.")
	return nil
}

// writeConfig marshals the config to YAML with a short header comment.
func writeConfig(path string, cfg *config.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't encode the configuration", "")
	}

	content := "# hostbench configuration\n# Probe tunables live under 'probes'.\n" + string(data)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't write "+path,
			"Check permissions on the current directory.")
	}
	return nil
}
