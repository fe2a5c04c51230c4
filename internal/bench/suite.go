package bench

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hostbench/hostbench/internal/bench/parsers"
	"github.com/hostbench/hostbench/internal/config"
	"github.com/hostbench/hostbench/internal/errors"
	"github.com/hostbench/hostbench/internal/logger"
	"github.com/hostbench/hostbench/internal/proc"
)

// SuiteSteps is the number of progress steps a full run reports.
const SuiteSteps = 5

// ProgressFunc receives progress updates during a suite run. step counts
// from 1 to total; probe names the running probe and message describes the
// current activity in human terms.
type ProgressFunc func(step, total int, probe, message string)

// Suite runs the full benchmark battery and assembles a HostResult.
//
// Probe failures are absorbed: a probe that cannot run, times out, or
// produces unparseable output logs a warning and leaves its metric group
// absent. Only a failure to identify the host aborts the run.
type Suite struct {
	cfg    config.ProbesConfig
	runner proc.Runner
	log    logger.Logger

	progress ProgressFunc
	scratch  string

	// serverWarmup is how long to wait after launching the loopback iperf3
	// server before connecting the client.
	serverWarmup time.Duration

	// lookupHost resolves one domain, for the DNS timing sub-probe.
	lookupHost func(ctx context.Context, domain string) error
}

// NewSuite returns a Suite using the given runner and logger.
func NewSuite(cfg config.ProbesConfig, runner proc.Runner, log logger.Logger) *Suite {
	return &Suite{
		cfg:          cfg,
		runner:       runner,
		log:          log,
		serverWarmup: 500 * time.Millisecond,
		lookupHost: func(ctx context.Context, domain string) error {
			_, err := net.DefaultResolver.LookupHost(ctx, domain)
			return err
		},
	}
}

// OnProgress registers a progress callback. Pass nil to disable.
func (s *Suite) OnProgress(fn ProgressFunc) {
	s.progress = fn
}

// SetScratchDir overrides where the disk probe places its working files.
// Defaults to the system temp directory.
func (s *Suite) SetScratchDir(dir string) {
	s.scratch = dir
}

func (s *Suite) report(step int, probe, message string) {
	s.log.Info("[%d/%d] %s: %s", step, SuiteSteps, probe, message)
	if s.progress != nil {
		s.progress(step, SuiteSteps, probe, message)
	}
}

// Run executes the battery: system info, then CPU, memory, disk, and
// network probes in order. The returned HostResult always carries system
// info; its Metrics map holds only the groups whose probes succeeded.
func (s *Suite) Run(ctx context.Context) (*HostResult, error) {
	s.report(1, "system", "Collecting system information")
	info, err := GatherSystemInfo()
	if err != nil {
		return nil, err
	}

	result := &HostResult{
		HostID:     info.Hostname,
		Timestamp:  time.Now().UTC(),
		SystemInfo: info,
		Metrics:    make(map[string]float64),
	}

	probes := []struct {
		step int
		name string
		run  func(context.Context) (map[string]float64, error)
	}{
		{2, "cpu", s.runCPU},
		{3, "memory", s.runMemory},
		{4, "disk", s.runDisk},
		{5, "network", s.runNetwork},
	}

	for _, p := range probes {
		if err := ctx.Err(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrTimeout,
				"Benchmark run cancelled",
				"Partial results are discarded; re-run to produce a record.")
		}

		s.report(p.step, p.name, "Running "+p.name+" probe")
		metrics, err := p.run(ctx)
		if err != nil {
			s.log.Warn("%s probe failed: %v", p.name, err)
			continue
		}
		for k, v := range metrics {
			result.Metrics[k] = v
		}
	}

	return result, nil
}

// execProbe runs one measurement command under the probe timeout and turns
// a non-zero exit into an error carrying the tail of stderr.
func (s *Suite) execProbe(ctx context.Context, name string, args ...string) (*proc.Result, error) {
	return s.execProbeIn(ctx, "", name, args...)
}

func (s *Suite) execProbeIn(ctx context.Context, dir, name string, args ...string) (*proc.Result, error) {
	s.log.Debug("exec: %s %s", name, strings.Join(args, " "))
	res, err := s.runner.RunIn(ctx, dir, name, args, s.cfg.Timeout)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, errors.New(errors.ErrExec,
			fmt.Sprintf("'%s' exited with code %d: %s", name, res.ExitCode, tail(res.Stderr, 200)),
			fmt.Sprintf("Run '%s %s' by hand to see the full failure.", name, strings.Join(args, " ")))
	}
	return res, nil
}

func (s *Suite) runCPU(ctx context.Context) (map[string]float64, error) {
	res, err := s.execProbe(ctx, "sysbench", "cpu",
		fmt.Sprintf("--cpu-max-prime=%d", s.cfg.CPUMaxPrime),
		fmt.Sprintf("--threads=%d", s.cfg.CPUThreads),
		"run")
	if err != nil {
		return nil, err
	}
	events, err := parsers.ParseCPUEvents(res.Stdout)
	if err != nil {
		return nil, err
	}
	return map[string]float64{MetricCPUEventsPerSecond: events}, nil
}

func (s *Suite) runMemory(ctx context.Context) (map[string]float64, error) {
	res, err := s.execProbe(ctx, "sysbench", "memory",
		"--memory-block-size=1M",
		"--memory-total-size="+s.cfg.MemoryTotalSize,
		"run")
	if err != nil {
		return nil, err
	}
	throughput, err := parsers.ParseMemoryThroughput(res.Stdout)
	if err != nil {
		return nil, err
	}
	return map[string]float64{MetricMemoryThroughputMiBS: throughput}, nil
}

// runDisk measures random read/write throughput with sysbench fileio,
// falling back to a dd sequential test when sysbench's fileio mode is
// unavailable. Both rates must come out of whichever path ran.
func (s *Suite) runDisk(ctx context.Context) (map[string]float64, error) {
	scratch := s.scratch
	if scratch == "" {
		scratch = os.TempDir()
	}
	workDir, err := os.MkdirTemp(scratch, "hostbench-disk-")
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrExec,
			"Couldn't create a scratch directory for the disk probe",
			"Check free space and permissions under "+scratch)
	}
	defer func() {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			s.log.Warn("couldn't remove disk scratch dir %s: %v", workDir, rmErr)
		}
	}()

	read, write, err := s.diskSysbench(ctx, workDir)
	if err != nil {
		s.log.Warn("sysbench fileio failed (%v), falling back to dd", err)
		read, write, err = s.diskDD(ctx, workDir)
		if err != nil {
			return nil, err
		}
	}

	return map[string]float64{
		MetricDiskReadMiBS:  read,
		MetricDiskWriteMiBS: write,
	}, nil
}

func (s *Suite) diskSysbench(ctx context.Context, workDir string) (readMiBs, writeMiBs float64, err error) {
	// sysbench fileio scatters its test files in the process cwd, so all
	// three phases run inside the scratch dir.
	base := []string{"fileio", "--file-total-size=" + s.cfg.DiskFileSize}

	if _, err = s.execProbeIn(ctx, workDir, "sysbench", append(base, "prepare")...); err != nil {
		return 0, 0, err
	}
	// Cleanup regardless of how the run phase went.
	defer func() {
		if _, cerr := s.execProbeIn(ctx, workDir, "sysbench", append(base, "cleanup")...); cerr != nil {
			s.log.Warn("sysbench fileio cleanup failed: %v", cerr)
		}
	}()

	res, err := s.execProbeIn(ctx, workDir, "sysbench", append(base,
		"--file-test-mode=rndrw",
		fmt.Sprintf("--time=%d", int(s.cfg.DiskDuration.Seconds())),
		"run")...)
	if err != nil {
		return 0, 0, err
	}
	return parsers.ParseFileIO(res.Stdout)
}

// diskDD is the sequential fallback: write a 1 GiB file with fdatasync,
// then read it back. dd reports the rate on stderr.
func (s *Suite) diskDD(ctx context.Context, workDir string) (readMiBs, writeMiBs float64, err error) {
	testFile := filepath.Join(workDir, "ddtest")

	wres, err := s.execProbe(ctx, "dd",
		"if=/dev/zero", "of="+testFile, "bs=1M", "count=1024", "conv=fdatasync")
	if err != nil {
		return 0, 0, err
	}
	writeMiBs, err = parsers.ParseDDRate(wres.Stderr)
	if err != nil {
		return 0, 0, err
	}

	rres, err := s.execProbe(ctx, "dd",
		"if="+testFile, "of=/dev/null", "bs=1M")
	if err != nil {
		return 0, 0, err
	}
	readMiBs, err = parsers.ParseDDRate(rres.Stderr)
	if err != nil {
		return 0, 0, err
	}

	return readMiBs, writeMiBs, nil
}

// runNetwork runs three independent sub-probes: loopback throughput
// (iperf3), gateway latency (ping), and DNS resolution timing. Each
// sub-probe's metric group stands or falls on its own.
func (s *Suite) runNetwork(ctx context.Context) (map[string]float64, error) {
	metrics := make(map[string]float64)

	if up, down, err := s.netThroughput(ctx); err != nil {
		s.log.Warn("network throughput sub-probe failed: %v", err)
	} else {
		metrics[MetricNetworkUpMbps] = up
		metrics[MetricNetworkDownMbps] = down
	}

	if min, avg, max, err := s.netLatency(ctx); err != nil {
		s.log.Warn("latency sub-probe failed: %v", err)
	} else {
		metrics[MetricLatencyMinMs] = min
		metrics[MetricLatencyAvgMs] = avg
		metrics[MetricLatencyMaxMs] = max
	}

	if avg, err := s.netDNS(ctx); err != nil {
		s.log.Warn("dns sub-probe failed: %v", err)
	} else {
		metrics[MetricDNSAvgMs] = avg
	}

	if len(metrics) == 0 {
		return nil, errors.New(errors.ErrExec,
			"All network sub-probes failed",
			"Run 'hostbench doctor' to check iperf3, ping, and DNS reachability.")
	}
	return metrics, nil
}

// netThroughput launches a one-shot iperf3 server on loopback and runs the
// client against it. The -1 flag makes the server exit after serving one
// client, so a clean run reaps itself via Wait.
func (s *Suite) netThroughput(ctx context.Context) (upMbps, downMbps float64, err error) {
	server, err := s.runner.Start("iperf3", "-s", "-1")
	if err != nil {
		return 0, 0, err
	}
	time.Sleep(s.serverWarmup)

	res, err := s.execProbe(ctx, "iperf3",
		"-c", "127.0.0.1",
		"-t", fmt.Sprintf("%d", int(s.cfg.NetworkTestDuration.Seconds())),
		"-J")
	if err != nil {
		if kerr := server.Kill(); kerr != nil {
			s.log.Warn("couldn't stop iperf3 server: %v", kerr)
		}
		return 0, 0, err
	}

	if werr := server.Wait(5 * time.Second); werr != nil {
		s.log.Warn("iperf3 server didn't exit cleanly: %v", werr)
	}

	return parsers.ParseIperf3(res.Stdout)
}

// netLatency pings the default gateway, the nearest hop that answers ICMP
// on most networks.
func (s *Suite) netLatency(ctx context.Context) (minMs, avgMs, maxMs float64, err error) {
	routeRes, err := s.execProbe(ctx, "ip", "route", "show", "default")
	if err != nil {
		return 0, 0, 0, err
	}
	gateway, err := parsers.ParseDefaultGateway(routeRes.Stdout)
	if err != nil {
		return 0, 0, 0, err
	}

	pingRes, err := s.execProbe(ctx, "ping",
		"-c", fmt.Sprintf("%d", s.cfg.PingCount), "-q", gateway)
	if err != nil {
		return 0, 0, 0, err
	}
	return parsers.ParsePingRTT(pingRes.Stdout)
}

// netDNS times a lookup of each configured domain and averages the
// successful ones.
func (s *Suite) netDNS(ctx context.Context) (avgMs float64, err error) {
	var total time.Duration
	var ok int

	for _, domain := range s.cfg.DNSDomains {
		lookupCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		start := time.Now()
		lerr := s.lookupHost(lookupCtx, domain)
		elapsed := time.Since(start)
		cancel()

		if lerr != nil {
			s.log.Warn("dns lookup of %s failed: %v", domain, lerr)
			continue
		}
		total += elapsed
		ok++
	}

	if ok == 0 {
		return 0, errors.New(errors.ErrExec,
			"No DNS lookups succeeded",
			"The host may have no resolver configured or no outbound connectivity.")
	}
	return float64(total.Milliseconds()) / float64(ok), nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}
