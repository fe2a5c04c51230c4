package doctor

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// StoreCheck verifies the results file location is usable: the directory
// is writable, and if the file exists it must be valid JSON.
type StoreCheck struct {
	Path string
}

func (c *StoreCheck) Name() string     { return "store_path" }
func (c *StoreCheck) Category() string { return "STORE" }

func (c *StoreCheck) Run() CheckResult {
	dir := filepath.Dir(c.Path)

	tmp, err := os.CreateTemp(dir, ".hostbench-doctor-*")
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't write to %s", dir),
			Suggestion: "Point --db at a writable location, or fix permissions.",
		}
	}
	tmp.Close()
	os.Remove(tmp.Name())

	data, err := os.ReadFile(c.Path)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:    c.Name(),
			Status:  StatusPass,
			Message: fmt.Sprintf("Results file %s will be created on first run", c.Path),
		}
	}
	if err != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusFail,
			Message:    fmt.Sprintf("Can't read %s: %v", c.Path, err),
			Suggestion: "Fix permissions on the results file.",
		}
	}

	var doc map[string]any
	if jerr := json.Unmarshal(data, &doc); jerr != nil {
		return CheckResult{
			Name:       c.Name(),
			Status:     StatusWarn,
			Message:    fmt.Sprintf("Results file %s is not valid JSON", c.Path),
			Suggestion: "The next run starts from an empty store; move the file aside to keep the old bytes.",
		}
	}

	return CheckResult{
		Name:    c.Name(),
		Status:  StatusPass,
		Message: fmt.Sprintf("Results file %s is readable and writable", c.Path),
	}
}
