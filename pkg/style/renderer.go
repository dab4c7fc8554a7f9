package style

import (
	"fmt"
	"strings"

	"github.com/datawerks/dataroot/pkg/errors"
	"github.com/datawerks/dataroot/pkg/paths"
)

// DatasetRow is the display form of one catalog entry.
type DatasetRow struct {
	Name     string
	Source   string
	Override bool
	Exists   bool
}

// PruneView is the display form of a prune run.
type PruneView struct {
	Removed []string
	Kept    int
	DryRun  bool
}

// Renderer defines the interface for rendering command output.
type Renderer interface {
	RenderDatasetList(rows []DatasetRow) string
	RenderPrune(view PruneView) string
	RenderError(err error) string
}

// TerminalRenderer implements Renderer with rich terminal output.
type TerminalRenderer struct {
	width int
}

// NewTerminalRenderer creates a new terminal renderer.
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{
		width: 80,
	}
}

// SetWidth updates the terminal width for rendering.
func (r *TerminalRenderer) SetWidth(width int) {
	r.width = width
}

// RenderDatasetList renders the catalog with source status per dataset.
func (r *TerminalRenderer) RenderDatasetList(rows []DatasetRow) string {
	if len(rows) == 0 {
		return MutedStyle.Render("No datasets configured")
	}

	var result strings.Builder
	result.WriteString(TitleStyle.Render("Datasets") + "\n\n")

	for _, row := range rows {
		badge := StatusBadge(StatusOK)
		if !row.Exists {
			badge = StatusBadge(StatusMissing)
		}

		result.WriteString(fmt.Sprintf("%s %s\n", badge, Bold(row.Name)))
		result.WriteString(Indent(PathStyle.Render(row.Source), 1) + "\n")

		if row.Override {
			note := "overridden by " + paths.SourceEnvVar(row.Name)
			result.WriteString(Indent(StatusStyle(StatusOverride).Sprint(note), 1) + "\n")
		}

		result.WriteString("\n")
	}

	return strings.TrimRight(result.String(), "\n")
}

// RenderPrune renders the outcome of a prune run.
func (r *TerminalRenderer) RenderPrune(view PruneView) string {
	var result strings.Builder

	if view.DryRun {
		result.WriteString(WarningStyle.Render("DRY RUN - nothing was removed") + "\n\n")
	}

	indicator := SuccessIndicator
	if view.DryRun {
		indicator = PendingIndicator
	}
	for _, tree := range view.Removed {
		result.WriteString(fmt.Sprintf("%s %s\n", indicator, PathStyle.Render(tree)))
	}

	verb := "removed"
	if view.DryRun {
		verb = "would remove"
	}
	result.WriteString(MutedStyle.Render(
		fmt.Sprintf("%s %d synthetic trees, kept %d", verb, len(view.Removed), view.Kept)))

	return result.String()
}

// RenderError renders an error with its code when it carries one.
func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	code := errors.GetErrorCode(err)
	if code == errors.ErrUnknown {
		return ErrorStyle.Render(fmt.Sprintf("Error: %v", err))
	}
	return ErrorStyle.Render(fmt.Sprintf("Error [%s]: %v", code, err))
}
