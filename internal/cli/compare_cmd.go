package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hostbench/hostbench/internal/compare"
	"github.com/hostbench/hostbench/internal/store"
	"github.com/hostbench/hostbench/internal/ui"
)

// compareOutput is the JSON shape of the comparison.
type compareOutput struct {
	Rankings  []compare.MetricRanking `json:"rankings"`
	WinCounts map[string]int          `json:"win_counts"`
}

// compareCommand renders the cross-host comparison.
func compareCommand(asJSON bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	st := store.New(cfg.Store.Path, Logger())
	results, err := st.List()
	if err != nil {
		return err
	}

	rankings := compare.Rank(results)

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(compareOutput{
			Rankings:  rankings,
			WinCounts: compare.WinCounts(rankings),
		})
	}

	fmt.Println(ui.RenderCompareTable(results, rankings))
	return nil
}
