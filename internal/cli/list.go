package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hostbench/hostbench/internal/store"
	"github.com/hostbench/hostbench/internal/ui"
)

// listCommand prints the stored results.
func listCommand(asJSON bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := store.New(cfg.Store.Path, Logger())
	results, err := st.List()
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	fmt.Println(ui.RenderResultsTable(results))
	return nil
}
