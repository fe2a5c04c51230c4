// Package compare ranks stored benchmark results per metric.
package compare

import (
	"encoding/json"

	"github.com/hostbench/hostbench/internal/bench"
)

// Direction says whether a bigger or smaller value wins a metric.
type Direction int

const (
	HigherIsBetter Direction = iota
	LowerIsBetter
)

// MetricDirection returns the win direction for a metric. Throughput-style
// metrics reward bigger numbers; latency and DNS timing reward smaller.
func MetricDirection(name string) Direction {
	switch name {
	case bench.MetricLatencyAvgMs,
		bench.MetricLatencyMinMs,
		bench.MetricLatencyMaxMs,
		bench.MetricDNSAvgMs:
		return LowerIsBetter
	}
	return HigherIsBetter
}

// String returns the direction keyword used in JSON output.
func (d Direction) String() string {
	if d == LowerIsBetter {
		return "lower_is_better"
	}
	return "higher_is_better"
}

// MarshalJSON renders the direction as its keyword.
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// MetricLabel returns the human-readable name for a metric, with its unit.
func MetricLabel(name string) string {
	labels := map[string]string{
		bench.MetricCPUEventsPerSecond:   "CPU (events/s)",
		bench.MetricMemoryThroughputMiBS: "Memory (MiB/s)",
		bench.MetricDiskReadMiBS:         "Disk read (MiB/s)",
		bench.MetricDiskWriteMiBS:        "Disk write (MiB/s)",
		bench.MetricNetworkUpMbps:        "Net up (Mbps)",
		bench.MetricNetworkDownMbps:      "Net down (Mbps)",
		bench.MetricLatencyAvgMs:         "Latency avg (ms)",
		bench.MetricLatencyMinMs:         "Latency min (ms)",
		bench.MetricLatencyMaxMs:         "Latency max (ms)",
		bench.MetricDNSAvgMs:             "DNS (ms)",
	}
	if label, ok := labels[name]; ok {
		return label
	}
	return name
}

// MetricRanking is one metric's cross-host comparison. Hosts missing the
// metric appear in neither Values nor Winners; they sit the round out
// rather than losing it.
type MetricRanking struct {
	Metric    string    `json:"metric"`
	Direction Direction `json:"direction"`

	// Values maps host ID to that host's value for this metric.
	Values map[string]float64 `json:"values"`

	// Winners lists the host IDs holding the best value. Exact ties all
	// win; a single participant wins by default.
	Winners []string `json:"winners,omitempty"`
}

// Rank compares results across every known metric, in display order.
// Metrics that no host reported yield a ranking with empty Values.
func Rank(results []*bench.HostResult) []MetricRanking {
	rankings := make([]MetricRanking, 0, len(bench.MetricNames))
	for _, metric := range bench.MetricNames {
		rankings = append(rankings, rankMetric(metric, results))
	}
	return rankings
}

func rankMetric(metric string, results []*bench.HostResult) MetricRanking {
	r := MetricRanking{
		Metric:    metric,
		Direction: MetricDirection(metric),
		Values:    make(map[string]float64),
	}

	var best float64
	for _, host := range results {
		v, ok := host.Metric(metric)
		if !ok {
			continue
		}
		r.Values[host.HostID] = v

		if len(r.Winners) == 0 {
			best = v
			r.Winners = []string{host.HostID}
			continue
		}
		switch {
		case v == best:
			r.Winners = append(r.Winners, host.HostID)
		case betterThan(r.Direction, v, best):
			best = v
			r.Winners = []string{host.HostID}
		}
	}
	return r
}

func betterThan(d Direction, a, b float64) bool {
	if d == LowerIsBetter {
		return a < b
	}
	return a > b
}

// WinCounts tallies how many metrics each host wins. Shared wins count for
// every tied host.
func WinCounts(rankings []MetricRanking) map[string]int {
	counts := make(map[string]int)
	for _, r := range rankings {
		for _, id := range r.Winners {
			counts[id]++
		}
	}
	return counts
}
