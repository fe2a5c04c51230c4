// Package parsers extracts numeric metrics from measurement tool output.
//
// All parsers are pure functions using labeled-pattern search: find the
// line carrying a known label, then parse the adjacent number. Tool output
// drifts across versions and locales, so nothing here relies on line
// numbers or column offsets. A missing pattern is a recoverable parse
// error, never a panic.
package parsers

import (
	"bufio"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/hostbench/hostbench/internal/errors"
)

// MBToMiB converts decimal megabytes to mebibytes (1e6 / 2^20).
const MBToMiB = 0.9537

// ParseCPUEvents extracts the events-per-second score from sysbench cpu
// output. Expected line: "events per second:  1234.56".
func ParseCPUEvents(output string) (float64, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "events per second:") {
			continue
		}
		if v, ok := trailingNumber(line); ok {
			return v, nil
		}
	}
	return 0, parseError("sysbench cpu", "events per second")
}

// memTransferRe matches the sysbench memory summary, e.g.
// "10240.00 MiB transferred (8123.45 MiB/sec)".
var memTransferRe = regexp.MustCompile(`transferred \(([\d.]+) MiB/sec\)`)

// ParseMemoryThroughput extracts MiB/sec from sysbench memory output.
func ParseMemoryThroughput(output string) (float64, error) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "MiB/sec") || !strings.Contains(line, "transferred") {
			continue
		}
		if m := memTransferRe.FindStringSubmatch(line); len(m) == 2 {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				return v, nil
			}
		}
	}
	return 0, parseError("sysbench memory", "MiB/sec transferred")
}

// mbRateRe matches legacy sysbench throughput lines like
// "read : 123.45MB/s" or "... 123.45 MB/sec ...".
var mbRateRe = regexp.MustCompile(`([\d.]+)\s*[Mm][Bb]/s(?:ec)?`)

// ParseFileIO extracts read and write MiB/s from sysbench fileio output.
// Modern sysbench prints:
//
//	read, MiB/s:                  123.45
//	written, MiB/s:               67.89
//
// Older releases report "MB/sec" instead; those values are converted.
// Both rates must be found, otherwise the disk metric group would be
// persisted partially.
func ParseFileIO(output string) (readMiBs, writeMiBs float64, err error) {
	var haveRead, haveWrite bool

	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()
		lower := strings.ToLower(line)

		switch {
		case strings.Contains(lower, "read, mib/s:"):
			if v, ok := trailingNumber(line); ok {
				readMiBs, haveRead = v, true
			}
		case strings.Contains(lower, "written, mib/s:"):
			if v, ok := trailingNumber(line); ok {
				writeMiBs, haveWrite = v, true
			}
		case !haveRead && strings.Contains(lower, "read") && strings.Contains(lower, "mb/s"):
			if m := mbRateRe.FindStringSubmatch(line); len(m) == 2 {
				if v, perr := strconv.ParseFloat(m[1], 64); perr == nil {
					readMiBs, haveRead = v*MBToMiB, true
				}
			}
		case !haveWrite && strings.Contains(lower, "written") && strings.Contains(lower, "mb/s"):
			if m := mbRateRe.FindStringSubmatch(line); len(m) == 2 {
				if v, perr := strconv.ParseFloat(m[1], 64); perr == nil {
					writeMiBs, haveWrite = v*MBToMiB, true
				}
			}
		}
	}

	if !haveRead || !haveWrite {
		return 0, 0, parseError("sysbench fileio", "read/written MiB/s")
	}
	return readMiBs, writeMiBs, nil
}

// ddRateRe matches dd's transfer-rate field, e.g. "429 MB/s" or "1.1 GB/s".
var ddRateRe = regexp.MustCompile(`([\d.,]+)\s*([kMG])B/s`)

// ParseDDRate extracts the transfer rate in MiB/s from dd's summary line
// on stderr, e.g.:
//
//	1073741824 bytes (1.1 GB, 1.0 GiB) copied, 2.5031 s, 429 MB/s
func ParseDDRate(stderr string) (float64, error) {
	scanner := bufio.NewScanner(strings.NewReader(stderr))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "bytes") || !strings.Contains(line, "copied") {
			continue
		}
		m := ddRateRe.FindStringSubmatch(line)
		if len(m) != 3 {
			continue
		}
		v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", "."), 64)
		if err != nil {
			continue
		}
		switch m[2] {
		case "k":
			return v / 1000 * MBToMiB, nil
		case "M":
			return v * MBToMiB, nil
		case "G":
			return v * 1000 * MBToMiB, nil
		}
	}
	return 0, parseError("dd", "transfer rate")
}

// trailingNumber parses the number following the last ':' on a line.
func trailingNumber(line string) (float64, bool) {
	idx := strings.LastIndex(line, ":")
	if idx < 0 || idx+1 >= len(line) {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(line[idx+1:]), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseError(tool, label string) error {
	return errors.New(errors.ErrParse,
		fmt.Sprintf("No '%s' value in %s output", label, tool),
		fmt.Sprintf("The installed %s version may format its output differently. Run the tool by hand and compare.", tool))
}
