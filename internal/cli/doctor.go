package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/hostbench/hostbench/internal/doctor"
	"github.com/hostbench/hostbench/internal/errors"
	"github.com/hostbench/hostbench/internal/ui"
)

// doctorOutput is the JSON shape of the diagnostic report.
type doctorOutput struct {
	Results []doctor.CheckResult `json:"results"`
	Summary doctorSummary        `json:"summary"`
}

type doctorSummary struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand runs the environment diagnostics.
func doctorCommand(asJSON bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	checks := doctor.NewToolChecks()
	checks = append(checks, &doctor.StoreCheck{Path: cfg.Store.Path})
	checks = append(checks, doctor.NewResolverCheck(cfg.Probes.DNSDomains))

	results := doctor.RunAllParallel(checks)

	if asJSON {
		counts := doctor.CountByStatus(results)
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if eerr := enc.Encode(doctorOutput{
			Results: results,
			Summary: doctorSummary{
				Pass:     counts[doctor.StatusPass],
				Warn:     counts[doctor.StatusWarn],
				Fail:     counts[doctor.StatusFail],
				AllClear: counts[doctor.StatusWarn]+counts[doctor.StatusFail] == 0,
			},
		}); eerr != nil {
			return eerr
		}
	} else {
		rows := make([]ui.DoctorCheckRow, 0, len(results))
		for i, result := range results {
			rows = append(rows, ui.DoctorCheckRow{
				Status:     result.Status.String(),
				Category:   checks[i].Category(),
				Message:    result.Message,
				Suggestion: result.Suggestion,
			})
		}

		fmt.Println()
		fmt.Print(ui.RenderDoctorTable(rows))
		fmt.Println(doctor.Summary(results))
	}

	// A failing environment should fail scripts too, without re-printing.
	if doctor.HasFailures(results) {
		return errors.NewExitError(1)
	}
	return nil
}
