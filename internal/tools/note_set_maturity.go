package tools

import (
	"context"
	"fmt"

	"github.com/eohjun/cultivator/internal/assess"
	"github.com/eohjun/cultivator/internal/cultivate"
	"github.com/mark3labs/mcp-go/mcp"
)

// NoteSetMaturityTool handles the note_set_maturity MCP tool.
// It applies the monotonic progression policy before persisting a stage.
type NoteSetMaturityTool struct {
	svc *cultivate.Service
}

// NewNoteSetMaturityTool creates a NoteSetMaturityTool with the given service.
func NewNoteSetMaturityTool(svc *cultivate.Service) *NoteSetMaturityTool {
	return &NoteSetMaturityTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *NoteSetMaturityTool) Definition() mcp.Tool {
	return mcp.NewTool("note_set_maturity",
		mcp.WithDescription(
			"Set a note's maturity stage. Maturity only advances: moving to a lower "+
				"stage is rejected, and an upgrade requires the note's latest quality "+
				"score to meet the target stage's threshold (seedling 0, budding 40, "+
				"maturing 65, evergreen 85). Set `force` to override either rule.",
		),
		mcp.WithString("note",
			mcp.Required(),
			mcp.Description("Vault-relative path of the note."),
		),
		mcp.WithString("stage",
			mcp.Required(),
			mcp.Description("Target stage: seedling, budding, maturing, or evergreen."),
		),
		mcp.WithBoolean("force",
			mcp.Description("Override the progression policy. Default: false."),
		),
	)
}

// Handle processes the note_set_maturity tool call.
func (t *NoteSetMaturityTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notePath := req.GetString("note", "")
	if notePath == "" {
		return mcp.NewToolResultError("Missing required parameter: note"), nil
	}

	stage, err := assess.ParseStage(req.GetString("stage", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	force := boolArg(req, "force", false)

	result, err := t.svc.UpdateMaturity(notePath, stage, force)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Updating maturity: %v", err)), nil
	}

	if !result.Updated {
		return mcp.NewToolResultError(result.Message), nil
	}
	return mcp.NewToolResultText(result.Message), nil
}
