// Package bench runs the host benchmark battery: CPU, memory, disk, and
// network probes via external measurement tools, assembled into one
// HostResult record per run.
package bench

import "time"

// Metric names. These are the persisted map keys, shared by the store,
// the comparison engine, and both front ends; don't rename casually.
const (
	MetricCPUEventsPerSecond   = "cpu_events_per_second"
	MetricMemoryThroughputMiBS = "memory_throughput_mib_s"
	MetricDiskReadMiBS         = "disk_read_mib_s"
	MetricDiskWriteMiBS        = "disk_write_mib_s"
	MetricNetworkUpMbps        = "network_throughput_up_mbps"
	MetricNetworkDownMbps      = "network_throughput_down_mbps"
	MetricLatencyAvgMs         = "latency_avg_ms"
	MetricLatencyMinMs         = "latency_min_ms"
	MetricLatencyMaxMs         = "latency_max_ms"
	MetricDNSAvgMs             = "dns_avg_ms"
)

// MetricNames lists all metrics in display order.
var MetricNames = []string{
	MetricCPUEventsPerSecond,
	MetricMemoryThroughputMiBS,
	MetricDiskReadMiBS,
	MetricDiskWriteMiBS,
	MetricNetworkUpMbps,
	MetricNetworkDownMbps,
	MetricLatencyAvgMs,
	MetricLatencyMinMs,
	MetricLatencyMaxMs,
	MetricDNSAvgMs,
}

// SystemInfo describes the benchmarked machine. Descriptive only; the
// comparison engine never ranks on these fields.
type SystemInfo struct {
	Hostname         string `json:"hostname"`
	OS               string `json:"os"`
	Architecture     string `json:"architecture"`
	CPUModel         string `json:"cpu_model"`
	CPUCores         int    `json:"cpu_cores"`
	CPUThreads       int    `json:"cpu_threads"`
	TotalMemoryBytes uint64 `json:"total_memory_bytes"`
}

// HostResult is one benchmark record: the output of a full suite run on
// one host. Records are only ever replaced whole (re-run + upsert) or
// deleted; no partial field updates.
//
// A probe that failed (timeout, missing tool, unparseable output) leaves
// its whole metric group absent from Metrics; metrics from a single probe
// are never persisted partially.
type HostResult struct {
	// HostID is the upsert key. Defaults to the hostname; a user label
	// can override it so runs of the same box can be stored separately.
	HostID string `json:"host_id"`

	// DisplayName is an optional human label shown instead of HostID.
	DisplayName string `json:"display_name,omitempty"`

	Timestamp  time.Time          `json:"timestamp"`
	SystemInfo SystemInfo         `json:"system_info"`
	Metrics    map[string]float64 `json:"metrics"`
}

// Name returns the display name, falling back to the host ID.
func (r *HostResult) Name() string {
	if r.DisplayName != "" {
		return r.DisplayName
	}
	return r.HostID
}

// Metric returns a metric value and whether it is present.
func (r *HostResult) Metric(name string) (float64, bool) {
	v, ok := r.Metrics[name]
	return v, ok
}
