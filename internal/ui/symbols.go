package ui

// Unicode symbols for status indicators.
const (
	SymbolSuccess  = "✓" // Probe completed successfully
	SymbolFail     = "✗" // Probe failed
	SymbolPending  = "○" // Probe not yet started
	SymbolProgress = "◐" // Probe in progress
	SymbolComplete = "●" // Probe done (alternative to success)
	SymbolSkipped  = "⊘" // Probe skipped
	SymbolWinner   = "★" // Best value in a comparison column
)
