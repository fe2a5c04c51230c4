package ui

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPhaseDisplayProgress(t *testing.T) {
	var buf bytes.Buffer
	pd := NewPhaseDisplay(&buf)

	pd.RenderProgress(2, 5, "Running cpu probe")
	assert.Contains(t, buf.String(), "[2/5]")
	assert.Contains(t, buf.String(), "Running cpu probe")
}

func TestPhaseDisplaySuccess(t *testing.T) {
	var buf bytes.Buffer
	pd := NewPhaseDisplay(&buf)

	pd.RenderSuccess("cpu probe", 10200*time.Millisecond)
	assert.Contains(t, buf.String(), "cpu probe")
	assert.Contains(t, buf.String(), "10.2s")
}

func TestPhaseDisplayFailed(t *testing.T) {
	var buf bytes.Buffer
	pd := NewPhaseDisplay(&buf)

	pd.RenderFailed("disk probe", "timed out")
	assert.Contains(t, buf.String(), "disk probe")
	assert.Contains(t, buf.String(), "(timed out)")
}

func TestPhaseDisplaySkipped(t *testing.T) {
	var buf bytes.Buffer
	pd := NewPhaseDisplay(&buf)

	pd.RenderSkipped("network probe", "no tools")
	assert.Contains(t, buf.String(), "network probe")
	assert.Contains(t, buf.String(), "(no tools)")
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{340 * time.Millisecond, "340ms"},
		{2300 * time.Millisecond, "2.3s"},
		{72 * time.Second, "1m12s"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatDuration(tt.d))
	}
}
