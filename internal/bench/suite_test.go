package bench

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostbench/hostbench/internal/config"
	"github.com/hostbench/hostbench/internal/errors"
	"github.com/hostbench/hostbench/internal/logger"
	"github.com/hostbench/hostbench/internal/proc"
)

// fakeRunner serves canned outputs keyed by a normalized command shape, so
// suite tests never execute real measurement tools.
type fakeRunner struct {
	outputs map[string]*proc.Result
	errs    map[string]error

	calls    []string
	startErr error
	handle   *fakeHandle
}

type fakeHandle struct {
	waited bool
	killed bool
}

func (h *fakeHandle) Wait(timeout time.Duration) error { h.waited = true; return nil }
func (h *fakeHandle) Kill() error                      { h.killed = true; return nil }

// cmdKey collapses a command line to a stable lookup key, ignoring the
// volatile parts (scratch paths, tunable values).
func cmdKey(name string, args []string) string {
	switch name {
	case "sysbench":
		return fmt.Sprintf("sysbench %s %s", args[0], args[len(args)-1])
	case "dd":
		if args[0] == "if=/dev/zero" {
			return "dd write"
		}
		return "dd read"
	case "iperf3":
		return "iperf3 client"
	case "ip":
		return "ip route"
	case "ping":
		return "ping"
	}
	return name
}

func (f *fakeRunner) Run(ctx context.Context, name string, args []string, timeout time.Duration) (*proc.Result, error) {
	return f.RunIn(ctx, "", name, args, timeout)
}

func (f *fakeRunner) RunIn(ctx context.Context, dir, name string, args []string, timeout time.Duration) (*proc.Result, error) {
	key := cmdKey(name, args)
	f.calls = append(f.calls, key)

	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if res, ok := f.outputs[key]; ok {
		return res, nil
	}
	return &proc.Result{}, nil
}

func (f *fakeRunner) Start(name string, args ...string) (proc.Handle, error) {
	f.calls = append(f.calls, name+" server")
	if f.startErr != nil {
		return nil, f.startErr
	}
	if f.handle == nil {
		f.handle = &fakeHandle{}
	}
	return f.handle, nil
}

const iperf3JSON = `{"end":{"sum_sent":{"bits_per_second":2.4e10},"sum_received":{"bits_per_second":2.38e10}}}`

// healthyRunner returns a fakeRunner where every probe produces parseable
// output. Tests poke holes in it to simulate individual failures.
func healthyRunner() *fakeRunner {
	return &fakeRunner{
		outputs: map[string]*proc.Result{
			"sysbench cpu run":         {Stdout: "    events per second:  1500.25\n"},
			"sysbench memory run":      {Stdout: "10240.00 MiB transferred (7800.50 MiB/sec)\n"},
			"sysbench fileio prepare":  {Stdout: "128 files, 16MiB each, 2048MiB total\n"},
			"sysbench fileio run":      {Stdout: "    read, MiB/s:   120.50\n    written, MiB/s: 80.25\n"},
			"sysbench fileio cleanup":  {Stdout: "Removing test files...\n"},
			"iperf3 client":            {Stdout: iperf3JSON},
			"ip route":                 {Stdout: "default via 192.168.1.1 dev eth0\n"},
			"ping":                     {Stdout: "rtt min/avg/max/mdev = 0.311/0.420/0.612/0.080 ms\n"},
			"dd write":                 {Stderr: "1073741824 bytes copied, 2.5 s, 430 MB/s\n"},
			"dd read":                  {Stderr: "1073741824 bytes copied, 1.0 s, 1.1 GB/s\n"},
		},
		errs: map[string]error{},
	}
}

func newTestSuite(t *testing.T, runner *fakeRunner) *Suite {
	t.Helper()
	s := NewSuite(config.DefaultConfig().Probes, runner, logger.Noop())
	s.SetScratchDir(t.TempDir())
	s.serverWarmup = 0
	s.lookupHost = func(ctx context.Context, domain string) error { return nil }
	return s
}

func TestSuiteRunAllMetrics(t *testing.T) {
	runner := healthyRunner()
	s := newTestSuite(t, runner)

	var steps []int
	s.OnProgress(func(step, total int, probe, message string) {
		assert.Equal(t, SuiteSteps, total)
		steps = append(steps, step)
	})

	result, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.NotEmpty(t, result.HostID)
	assert.Equal(t, result.SystemInfo.Hostname, result.HostID)
	assert.False(t, result.Timestamp.IsZero())

	for _, name := range MetricNames {
		_, ok := result.Metric(name)
		assert.True(t, ok, "metric %s should be present", name)
	}

	assert.InDelta(t, 1500.25, result.Metrics[MetricCPUEventsPerSecond], 0.001)
	assert.InDelta(t, 7800.50, result.Metrics[MetricMemoryThroughputMiBS], 0.001)
	assert.InDelta(t, 120.50, result.Metrics[MetricDiskReadMiBS], 0.001)
	assert.InDelta(t, 24000, result.Metrics[MetricNetworkUpMbps], 0.01)
	assert.InDelta(t, 0.420, result.Metrics[MetricLatencyAvgMs], 0.0001)

	assert.Equal(t, []int{1, 2, 3, 4, 5}, steps)

	// The one-shot server was started and reaped.
	require.NotNil(t, runner.handle)
	assert.True(t, runner.handle.waited)
	assert.False(t, runner.handle.killed)
}

func TestSuiteProbeFailureLeavesGroupAbsent(t *testing.T) {
	runner := healthyRunner()
	runner.errs["sysbench cpu run"] = errors.New(errors.ErrLaunch, "no sysbench", "")
	s := newTestSuite(t, runner)

	result, err := s.Run(context.Background())
	require.NoError(t, err)

	_, ok := result.Metric(MetricCPUEventsPerSecond)
	assert.False(t, ok)

	// The other probes still ran.
	_, ok = result.Metric(MetricMemoryThroughputMiBS)
	assert.True(t, ok)
	_, ok = result.Metric(MetricDiskReadMiBS)
	assert.True(t, ok)
}

func TestSuiteDiskFallsBackToDD(t *testing.T) {
	runner := healthyRunner()
	runner.errs["sysbench fileio prepare"] = errors.New(errors.ErrExec, "fileio unsupported", "")
	s := newTestSuite(t, runner)

	result, err := s.Run(context.Background())
	require.NoError(t, err)

	read, ok := result.Metric(MetricDiskReadMiBS)
	require.True(t, ok)
	write, ok := result.Metric(MetricDiskWriteMiBS)
	require.True(t, ok)

	// dd rates, converted from decimal MB/s.
	assert.InDelta(t, 430*0.9537, write, 0.5)
	assert.InDelta(t, 1.1*1000*0.9537, read, 0.5)
}

func TestSuiteDiskBothPathsFailing(t *testing.T) {
	runner := healthyRunner()
	// fileio parses partially, dd can't run at all.
	runner.outputs["sysbench fileio run"] = &proc.Result{Stdout: "    read, MiB/s:   120.50\n"}
	runner.errs["dd write"] = errors.New(errors.ErrLaunch, "no dd", "")
	s := newTestSuite(t, runner)

	result, err := s.Run(context.Background())
	require.NoError(t, err)

	// Partial disk output never yields a partial group.
	_, ok := result.Metric(MetricDiskReadMiBS)
	assert.False(t, ok)
	_, ok = result.Metric(MetricDiskWriteMiBS)
	assert.False(t, ok)
}

func TestSuiteNetworkSubProbesIndependent(t *testing.T) {
	runner := healthyRunner()
	runner.errs["iperf3 client"] = errors.New(errors.ErrTimeout, "client hung", "")
	s := newTestSuite(t, runner)

	result, err := s.Run(context.Background())
	require.NoError(t, err)

	_, ok := result.Metric(MetricNetworkUpMbps)
	assert.False(t, ok)
	_, ok = result.Metric(MetricNetworkDownMbps)
	assert.False(t, ok)

	// Latency and DNS are unaffected.
	_, ok = result.Metric(MetricLatencyAvgMs)
	assert.True(t, ok)
	_, ok = result.Metric(MetricDNSAvgMs)
	assert.True(t, ok)

	// A failed client means the server must be torn down explicitly.
	require.NotNil(t, runner.handle)
	assert.True(t, runner.handle.killed)
}

func TestSuiteDNSAllLookupsFail(t *testing.T) {
	runner := healthyRunner()
	s := newTestSuite(t, runner)
	s.lookupHost = func(ctx context.Context, domain string) error {
		return fmt.Errorf("no resolver")
	}

	result, err := s.Run(context.Background())
	require.NoError(t, err)

	_, ok := result.Metric(MetricDNSAvgMs)
	assert.False(t, ok)
	_, ok = result.Metric(MetricLatencyAvgMs)
	assert.True(t, ok)
}

func TestSuiteCancelledContext(t *testing.T) {
	runner := healthyRunner()
	s := newTestSuite(t, runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Run(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrTimeout))
}

func TestSuiteCommandShapes(t *testing.T) {
	runner := healthyRunner()
	s := newTestSuite(t, runner)

	_, err := s.Run(context.Background())
	require.NoError(t, err)

	joined := strings.Join(runner.calls, "\n")
	for _, want := range []string{
		"sysbench cpu run",
		"sysbench memory run",
		"sysbench fileio prepare",
		"sysbench fileio run",
		"sysbench fileio cleanup",
		"iperf3 server",
		"iperf3 client",
		"ip route",
		"ping",
	} {
		assert.Contains(t, joined, want)
	}
}
