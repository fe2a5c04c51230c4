package doctor

import (
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

// ToolCheck verifies a measurement tool is installed and reports its
// version. Required tools fail the check when missing; optional ones only
// warn, since the suite degrades to absent metrics without them.
type ToolCheck struct {
	Binary      string
	VersionArgs []string
	Required    bool
	Probes      string // which probes need this tool, for the message
}

func (c *ToolCheck) Name() string     { return "tool_" + c.Binary }
func (c *ToolCheck) Category() string { return "TOOLS" }

func (c *ToolCheck) Run() CheckResult {
	path, err := exec.LookPath(c.Binary)
	if err != nil {
		status := StatusWarn
		if c.Required {
			status = StatusFail
		}
		return CheckResult{
			Name:       c.Name(),
			Status:     status,
			Message:    fmt.Sprintf("%s not found (needed by: %s)", c.Binary, c.Probes),
			Suggestion: fmt.Sprintf("Install %s: apt install %s (or your distro's equivalent)", c.Binary, c.Binary),
		}
	}

	version := "version unknown"
	if len(c.VersionArgs) > 0 {
		cmd := exec.Command(path, c.VersionArgs...)
		if output, verr := cmd.CombinedOutput(); verr == nil {
			if v := parseToolVersion(string(output)); v != "" {
				version = v
			}
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("%s %s", c.Binary, version),
	}
}

// versionRe matches the first version-like token, e.g. "3.16" or "1.0.20".
var versionRe = regexp.MustCompile(`(\d+\.\d+(?:\.\d+)?)`)

func parseToolVersion(output string) string {
	firstLine, _, _ := strings.Cut(output, "\n")
	if m := versionRe.FindStringSubmatch(firstLine); len(m) >= 2 {
		return m[1]
	}
	return ""
}

// NewToolChecks creates checks for every external tool the probes invoke.
func NewToolChecks() []Check {
	return []Check{
		&ToolCheck{Binary: "sysbench", VersionArgs: []string{"--version"}, Required: true, Probes: "cpu, memory, disk"},
		&ToolCheck{Binary: "iperf3", VersionArgs: []string{"--version"}, Probes: "network throughput"},
		&ToolCheck{Binary: "ping", Probes: "latency"},
		&ToolCheck{Binary: "ip", Probes: "latency (gateway discovery)"},
		&ToolCheck{Binary: "dd", VersionArgs: []string{"--version"}, Probes: "disk (fallback)"},
	}
}
