package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eohjun/cultivator/internal/assess"
	"github.com/eohjun/cultivator/internal/callout"
	"github.com/eohjun/cultivator/internal/cultivate"
	"github.com/mark3labs/mcp-go/mcp"
)

// NoteStatusTool handles the note_status MCP tool.
// It reports a note's current stage, its latest assessment, and the score
// movement since the one before.
type NoteStatusTool struct {
	svc *cultivate.Service
}

// NewNoteStatusTool creates a NoteStatusTool with the given service.
func NewNoteStatusTool(svc *cultivate.Service) *NoteStatusTool {
	return &NoteStatusTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *NoteStatusTool) Definition() mcp.Tool {
	return mcp.NewTool("note_status",
		mcp.WithDescription(
			"Show a note's current maturity stage, its most recent quality "+
				"assessment, and how the score moved since the previous one.",
		),
		mcp.WithString("note",
			mcp.Required(),
			mcp.Description("Vault-relative path of the note."),
		),
	)
}

// Handle processes the note_status tool call.
func (t *NoteStatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notePath := req.GetString("note", "")
	if notePath == "" {
		return mcp.NewToolResultError("Missing required parameter: note"), nil
	}

	content, err := t.svc.Vault().Read(notePath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Note %q not found: %v", notePath, err)), nil
	}

	stage, err := t.svc.Vault().Maturity(notePath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Reading maturity: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# Status: %s\n\n", notePath)
	fmt.Fprintf(&sb, "**Stage:** %s\n", stageLabel(stage))

	latest, ok := t.svc.History().Latest(notePath)
	if !ok {
		sb.WriteString("\nNo assessments on record")
		if prior := callout.Decode(content); prior != nil {
			fmt.Fprintf(&sb, " — the note carries a callout from elsewhere showing %d/100 · Grade %s",
				prior.Quality.Total, prior.Quality.Grade())
		}
		sb.WriteString(". Run `note_assess` to evaluate it.\n")
		return mcp.NewToolResultText(sb.String()), nil
	}

	assessedAt := time.UnixMilli(latest.AssessedAt).UTC()
	fmt.Fprintf(&sb, "**Latest quality:** %d/100 · Grade %s (assessed %s)\n",
		latest.TotalScore, assess.GradeFor(latest.TotalScore), assessedAt.Format("2006-01-02"))

	records := t.svc.History().ForNote(notePath)
	if len(records) >= 2 {
		delta := assess.DeltaBetween(latest, records[len(records)-2])
		fmt.Fprintf(&sb, "**Since previous:** %s\n", deltaBadge(delta.TotalDelta))
	}

	sb.WriteString("\n| Dimension | Score |\n|-----------|-------|\n")
	for _, d := range assess.Dimensions() {
		fmt.Fprintf(&sb, "| %s %s | %d |\n", d.Icon(), d.Display(), latest.DimensionScores[d])
	}

	if recommended := assess.StageFromScore(latest.TotalScore); stage != "" && recommended.IsHigherThan(stage) {
		fmt.Fprintf(&sb, "\nThe latest score supports advancing to %s.\n", stageLabel(recommended))
	}

	return mcp.NewToolResultText(sb.String()), nil
}
