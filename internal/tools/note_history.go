package tools

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/eohjun/cultivator/internal/assess"
	"github.com/eohjun/cultivator/internal/cultivate"
	"github.com/mark3labs/mcp-go/mcp"
)

// defaultHistoryLimit caps how many records note_history shows by default.
const defaultHistoryLimit = 10

// NoteHistoryTool handles the note_history MCP tool.
type NoteHistoryTool struct {
	svc *cultivate.Service
}

// NewNoteHistoryTool creates a NoteHistoryTool with the given service.
func NewNoteHistoryTool(svc *cultivate.Service) *NoteHistoryTool {
	return &NoteHistoryTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *NoteHistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("note_history",
		mcp.WithDescription(
			"Show a note's assessment history: one line per past evaluation with "+
				"date, composite score, grade, stage, and score movement.",
		),
		mcp.WithString("note",
			mcp.Required(),
			mcp.Description("Vault-relative path of the note."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum records to show, newest last. Default: 10."),
		),
	)
}

// Handle processes the note_history tool call.
func (t *NoteHistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notePath := req.GetString("note", "")
	if notePath == "" {
		return mcp.NewToolResultError("Missing required parameter: note"), nil
	}
	limit := intArg(req, "limit", defaultHistoryLimit)
	if limit < 1 {
		limit = defaultHistoryLimit
	}

	records := t.svc.History().ForNote(notePath)
	if len(records) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf(
			"No assessment history for %s. Run `note_assess` to start one.", notePath)), nil
	}

	total := len(records)
	if len(records) > limit {
		records = records[len(records)-limit:]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "# History: %s\n\n", notePath)
	sb.WriteString("| Date | Score | Grade | Stage | Change |\n")
	sb.WriteString("|------|-------|-------|-------|--------|\n")
	for i, rec := range records {
		change := "—"
		if i > 0 {
			change = deltaBadge(rec.TotalScore - records[i-1].TotalScore)
		}
		fmt.Fprintf(&sb, "| %s | %d | %s | %s | %s |\n",
			time.UnixMilli(rec.AssessedAt).UTC().Format("2006-01-02"),
			rec.TotalScore,
			assess.GradeFor(rec.TotalScore),
			stageLabel(rec.MaturityLevel),
			change,
		)
	}

	if total > len(records) {
		fmt.Fprintf(&sb, "\nShowing the %d most recent of %d records.\n", len(records), total)
	}

	return mcp.NewToolResultText(sb.String()), nil
}
