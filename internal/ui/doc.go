// Package ui provides terminal UI components for hostbench's CLI output.
//
// The package renders probe progress, result listings, comparison tables
// with per-metric winner highlighting, and doctor diagnostics, using the
// Lip Gloss library for consistent terminal styling across all commands.
//
// # Color Scheme
//
// Colors are defined as ANSI codes for broad terminal compatibility:
//
//	ColorSuccess   (green)  - Winning values, successful probes
//	ColorError     (red)    - Failures
//	ColorWarning   (yellow) - Warnings, degraded probes
//	ColorMuted     (gray)   - Secondary text, timing info
//	ColorSecondary (blue)   - In-progress indicators
//
// Use DisableColors() to switch to monochrome output (for --no-color).
package ui
