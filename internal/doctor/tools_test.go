package doctor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToolCheckMissingRequired(t *testing.T) {
	c := &ToolCheck{Binary: "definitely-not-a-real-binary-xyz", Required: true, Probes: "cpu"}
	result := c.Run()

	assert.Equal(t, StatusFail, result.Status)
	assert.Contains(t, result.Message, "not found")
	assert.NotEmpty(t, result.Suggestion)
}

func TestToolCheckMissingOptional(t *testing.T) {
	c := &ToolCheck{Binary: "definitely-not-a-real-binary-xyz", Probes: "disk (fallback)"}
	result := c.Run()

	assert.Equal(t, StatusWarn, result.Status)
}

func TestToolCheckFound(t *testing.T) {
	// sh exists on every platform these tests run on.
	c := &ToolCheck{Binary: "sh", Probes: "none"}
	result := c.Run()

	assert.Equal(t, StatusPass, result.Status)
	assert.Contains(t, result.Message, "sh")
}

func TestParseToolVersion(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   string
	}{
		{"sysbench", "sysbench 1.0.20 (using system LuaJIT 2.1.0-beta3)\n", "1.0.20"},
		{"iperf3", "iperf 3.12 (cJSON 1.7.15)\n", "3.12"},
		{"dd", "dd (coreutils) 9.1\nCopyright (C) 2022\n", "9.1"},
		{"no version", "some tool without numbers\n", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseToolVersion(tt.output))
		})
	}
}

func TestNewToolChecks(t *testing.T) {
	checks := NewToolChecks()

	var names []string
	for _, c := range checks {
		names = append(names, c.Name())
		assert.Equal(t, "TOOLS", c.Category())
	}
	assert.Contains(t, names, "tool_sysbench")
	assert.Contains(t, names, "tool_iperf3")
	assert.Contains(t, names, "tool_ping")
	assert.Contains(t, names, "tool_ip")
	assert.Contains(t, names, "tool_dd")
}
