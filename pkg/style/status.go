package style

import (
	"github.com/pterm/pterm"
)

// Status classifies a dataset source for display purposes.
type Status string

const (
	// StatusOK means the source directory exists.
	StatusOK Status = "ok"
	// StatusMissing means the source directory does not exist yet.
	StatusMissing Status = "missing"
	// StatusOverride means an environment override is in effect.
	StatusOverride Status = "override"
)

// StatusStyle returns the pterm style for a status.
func StatusStyle(status Status) *pterm.Style {
	switch status {
	case StatusOK:
		return pterm.NewStyle(pterm.FgGreen)
	case StatusMissing:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	case StatusOverride:
		return pterm.NewStyle(pterm.FgCyan)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// StatusBadge renders a short bracketed tag for a status.
func StatusBadge(status Status) string {
	return StatusStyle(status).Sprintf("[%s]", string(status))
}
