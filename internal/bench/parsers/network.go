package parsers

import (
	"bufio"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/hostbench/hostbench/internal/errors"
)

// ParseDefaultGateway extracts the gateway address from `ip route show
// default` output, e.g. "default via 192.168.1.1 dev eth0 proto dhcp".
func ParseDefaultGateway(output string) (string, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		for i, f := range fields {
			if f == "via" && i+1 < len(fields) {
				return fields[i+1], nil
			}
		}
	}
	return "", errors.New(errors.ErrParse,
		"No default gateway in route output",
		"The host may have no default route; the latency sub-probe needs one to ping.")
}

// ParsePingRTT extracts min/avg/max round-trip times in milliseconds from
// ping's summary line. Handles both the Linux and BSD/macOS formats:
//
//	rtt min/avg/max/mdev = 0.045/0.059/0.086/0.012 ms
//	round-trip min/avg/max/stddev = 0.045/0.059/0.086/0.012 ms
func ParsePingRTT(output string) (minMs, avgMs, maxMs float64, err error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "rtt min/avg/max") && !strings.Contains(line, "round-trip min/avg/max") {
			continue
		}
		_, stats, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		fields := strings.Fields(stats)
		if len(fields) == 0 {
			continue
		}
		parts := strings.Split(fields[0], "/")
		if len(parts) < 3 {
			continue
		}
		vals := make([]float64, 3)
		ok := true
		for i := 0; i < 3; i++ {
			v, perr := strconv.ParseFloat(parts[i], 64)
			if perr != nil {
				ok = false
				break
			}
			vals[i] = v
		}
		if ok {
			return vals[0], vals[1], vals[2], nil
		}
	}
	return 0, 0, 0, errors.New(errors.ErrParse,
		"No rtt summary in ping output",
		"The gateway may not answer ICMP, or ping output format changed.")
}

// iperf3Result is the slice of iperf3's -J output we care about.
type iperf3Result struct {
	End struct {
		SumSent struct {
			BitsPerSecond float64 `json:"bits_per_second"`
		} `json:"sum_sent"`
		SumReceived struct {
			BitsPerSecond float64 `json:"bits_per_second"`
		} `json:"sum_received"`
	} `json:"end"`
	Error string `json:"error"`
}

// ParseIperf3 extracts send/receive throughput in Mbps from iperf3 JSON
// output (-J flag).
func ParseIperf3(output string) (upMbps, downMbps float64, err error) {
	var res iperf3Result
	if jerr := json.Unmarshal([]byte(output), &res); jerr != nil {
		return 0, 0, errors.WrapWithCode(jerr, errors.ErrParse,
			"iperf3 output is not valid JSON",
			"Make sure iperf3 supports the -J flag (version 3.1+).")
	}
	if res.Error != "" {
		return 0, 0, errors.New(errors.ErrParse,
			"iperf3 reported: "+res.Error,
			"The loopback server may have failed to start.")
	}
	up := res.End.SumSent.BitsPerSecond
	down := res.End.SumReceived.BitsPerSecond
	if up == 0 && down == 0 {
		return 0, 0, errors.New(errors.ErrParse,
			"iperf3 JSON has no throughput sums",
			"The test may have been interrupted before completing.")
	}
	return up / 1e6, down / 1e6, nil
}
