package bench

import (
	"bufio"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/hostbench/hostbench/internal/errors"
)

// GatherSystemInfo collects descriptive facts about this machine. Only a
// missing hostname is fatal, since the hostname is the default record key;
// every other field degrades to a zero value when unreadable.
func GatherSystemInfo() (SystemInfo, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return SystemInfo{}, errors.WrapWithCode(err, errors.ErrExec,
			"Unable to determine the hostname",
			"Pass an explicit host ID with --host-id.")
	}

	info := SystemInfo{
		Hostname:     hostname,
		OS:           osDescription(),
		Architecture: runtime.GOARCH,
		CPUThreads:   runtime.NumCPU(),
	}

	if data, err := os.ReadFile("/proc/cpuinfo"); err == nil {
		info.CPUModel, info.CPUCores = parseCPUInfo(string(data))
	}
	if info.CPUCores == 0 {
		info.CPUCores = info.CPUThreads
	}
	if data, err := os.ReadFile("/proc/meminfo"); err == nil {
		info.TotalMemoryBytes = parseMemTotal(string(data))
	}

	return info, nil
}

func osDescription() string {
	release, err := os.ReadFile("/proc/sys/kernel/osrelease")
	if err != nil {
		return runtime.GOOS
	}
	return runtime.GOOS + " " + strings.TrimSpace(string(release))
}

// parseCPUInfo extracts the model name and the physical core count from
// /proc/cpuinfo. Cores are counted as unique (physical id, core id) pairs
// so hyperthreaded siblings are not double counted.
func parseCPUInfo(content string) (model string, cores int) {
	type coreKey struct {
		physicalID string
		coreID     string
	}
	seen := make(map[coreKey]struct{})

	var physicalID, coreID string
	flush := func() {
		if physicalID != "" || coreID != "" {
			seen[coreKey{physicalID, coreID}] = struct{}{}
			physicalID, coreID = "", ""
		}
	}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "model name":
			if model == "" {
				model = value
			}
		case "physical id":
			physicalID = value
		case "core id":
			coreID = value
		}
	}
	flush()

	return model, len(seen)
}

// parseMemTotal extracts total memory in bytes from /proc/meminfo, whose
// MemTotal line reports kilobytes.
func parseMemTotal(content string) uint64 {
	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "MemTotal:") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return 0
		}
		kb, err := strconv.ParseUint(fields[1], 10, 64)
		if err != nil {
			return 0
		}
		return kb * 1024
	}
	return 0
}
