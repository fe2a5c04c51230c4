package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/hostbench/hostbench/internal/bench"
	"github.com/hostbench/hostbench/internal/compare"
	"github.com/hostbench/hostbench/internal/lock"
	"github.com/hostbench/hostbench/internal/proc"
	"github.com/hostbench/hostbench/internal/store"
	"github.com/hostbench/hostbench/internal/ui"
)

// runCommand executes the benchmark battery and stores the result.
func runCommand(name, hostID string, noLock bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := Logger()

	if !noLock {
		l, lerr := lock.Acquire(lock.DefaultOptions())
		if lerr != nil {
			return lerr
		}
		defer func() {
			if rerr := l.Release(); rerr != nil {
				log.Warn("releasing run lock: %v", rerr)
			}
		}()
	}

	suite := bench.NewSuite(cfg.Probes, proc.NewRunner(), log)

	pd := ui.NewPhaseDisplay(os.Stdout)
	started := time.Now()
	if !quietFlag {
		suite.OnProgress(func(step, total int, probe, message string) {
			pd.RenderProgress(step, total, message)
		})
	}

	result, err := suite.Run(context.Background())
	if err != nil {
		return err
	}

	if hostID != "" {
		result.HostID = hostID
	}
	if name != "" {
		result.DisplayName = name
	}

	st := store.New(cfg.Store.Path, log)
	if err := st.Upsert(result); err != nil {
		return err
	}

	if !quietFlag {
		renderRunSummary(pd, result, time.Since(started), st.Path())
	}
	return nil
}

// probeGroups maps each probe to the metrics it produces, for the
// success/failure summary after a run.
var probeGroups = []struct {
	name    string
	metrics []string
}{
	{"cpu", []string{bench.MetricCPUEventsPerSecond}},
	{"memory", []string{bench.MetricMemoryThroughputMiBS}},
	{"disk", []string{bench.MetricDiskReadMiBS, bench.MetricDiskWriteMiBS}},
	{"network", []string{
		bench.MetricNetworkUpMbps, bench.MetricNetworkDownMbps,
		bench.MetricLatencyAvgMs, bench.MetricDNSAvgMs,
	}},
}

func renderRunSummary(pd *ui.PhaseDisplay, result *bench.HostResult, elapsed time.Duration, storePath string) {
	pd.Divider()

	for _, group := range probeGroups {
		captured := 0
		for _, m := range group.metrics {
			if _, ok := result.Metric(m); ok {
				captured++
			}
		}
		switch {
		case captured == len(group.metrics):
			pd.RenderSuccess(group.name+" probe", 0)
		case captured > 0:
			pd.RenderSkipped(group.name+" probe", "partial: some sub-probes failed")
		default:
			pd.RenderFailed(group.name+" probe", "no metrics captured")
		}
	}
	pd.Newline()

	rows := make([][]string, 0, len(bench.MetricNames))
	for _, metric := range bench.MetricNames {
		v, ok := result.Metric(metric)
		if !ok {
			continue
		}
		rows = append(rows, []string{compare.MetricLabel(metric), fmt.Sprintf("%.2f", v)})
	}
	fmt.Println(ui.RenderSimpleTable([]ui.TableColumn{
		{Title: "METRIC", Width: 24},
		{Title: "VALUE", Width: 14},
	}, rows))

	fmt.Printf("\nSaved %q to %s in %s\n", result.Name(), storePath, elapsed.Round(time.Second))
	fmt.Println("Run 'hostbench compare' to rank hosts.")
}
