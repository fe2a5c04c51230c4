// Package doctor diagnoses whether this machine can run the benchmark
// battery: measurement tools on PATH, a writable results file, and a
// working resolver.
package doctor

import (
	"encoding/json"
	"fmt"
	"sync"
)

// CheckStatus represents the result status of a check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

// String returns a human-readable status string.
func (s CheckStatus) String() string {
	switch s {
	case StatusPass:
		return "pass"
	case StatusWarn:
		return "warn"
	case StatusFail:
		return "fail"
	default:
		return "unknown"
	}
}

// MarshalJSON renders the status as its string form.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult contains the outcome of running a check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// Check defines the interface for diagnostic checks.
type Check interface {
	// Name returns the check's identifier.
	Name() string

	// Category returns the check's category (e.g. "TOOLS", "STORE").
	Category() string

	// Run executes the check and returns the result.
	Run() CheckResult
}

// RunAll executes all checks sequentially and returns the results.
func RunAll(checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	for i, check := range checks {
		results[i] = check.Run()
	}
	return results
}

// RunAllParallel executes all checks in parallel and returns the results
// in the input order. The checks are independent probes of different
// subsystems, so there is no reason to wait on them one at a time.
func RunAllParallel(checks []Check) []CheckResult {
	results := make([]CheckResult, len(checks))
	var wg sync.WaitGroup

	for i, check := range checks {
		wg.Add(1)
		go func(idx int, c Check) {
			defer wg.Done()
			results[idx] = c.Run()
		}(i, check)
	}

	wg.Wait()
	return results
}

// CountByStatus counts results by status.
func CountByStatus(results []CheckResult) map[CheckStatus]int {
	counts := make(map[CheckStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}

// HasFailures returns true if any result has a fail status.
func HasFailures(results []CheckResult) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}

// Summary returns a one-line summary of the check results.
func Summary(results []CheckResult) string {
	counts := CountByStatus(results)
	warn := counts[StatusWarn]
	fail := counts[StatusFail]

	if fail == 0 && warn == 0 {
		return "Everything looks good"
	}

	total := warn + fail
	return fmt.Sprintf("%d issue%s found", total, pluralize(total))
}

func pluralize(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
