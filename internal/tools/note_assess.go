package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/eohjun/cultivator/internal/cultivate"
	"github.com/eohjun/cultivator/internal/judge"
	"github.com/mark3labs/mcp-go/mcp"
)

// NoteAssessTool handles the note_assess MCP tool.
//
// The tool is two-phase: called without scores it returns the judging
// rubric and note content so the calling agent can evaluate the note
// itself; called again with the scores JSON it runs the full assessment
// flow and writes the result back into the note.
type NoteAssessTool struct {
	svc *cultivate.Service
}

// NewNoteAssessTool creates a NoteAssessTool with the given service.
func NewNoteAssessTool(svc *cultivate.Service) *NoteAssessTool {
	return &NoteAssessTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *NoteAssessTool) Definition() mcp.Tool {
	return mcp.NewTool("note_assess",
		mcp.WithDescription(
			"Assess the quality of a note across five dimensions (atomicity, "+
				"connectivity, clarity, evidence, originality). Call WITHOUT `scores` "+
				"first: the tool returns the rubric and note content for YOU to judge. "+
				"Then call again WITH `scores` holding your judgment JSON — the tool "+
				"computes the composite score, records history, and embeds an "+
				"assessment callout in the note.",
		),
		mcp.WithString("note",
			mcp.Required(),
			mcp.Description("Vault-relative path of the note to assess, e.g. 'garden/my-note.md'."),
		),
		mcp.WithString("scores",
			mcp.Description("Your judgment as JSON, in the format the rubric specifies. Omit on the first call."),
		),
	)
}

// Handle processes the note_assess tool call.
func (t *NoteAssessTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notePath := req.GetString("note", "")
	if notePath == "" {
		return mcp.NewToolResultError("Missing required parameter: note"), nil
	}

	scores := req.GetString("scores", "")
	if scores == "" {
		return t.handleRubricPhase(notePath)
	}
	return t.handleScorePhase(notePath, scores)
}

// handleRubricPhase returns the rubric and note content for the agent to
// judge.
func (t *NoteAssessTool) handleRubricPhase(notePath string) (*mcp.CallToolResult, error) {
	content, err := t.svc.Vault().Read(notePath)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Note %q not found: %v", notePath, err)), nil
	}

	response := fmt.Sprintf(
		"# Judge This Note\n\n"+
			"Evaluate the note below against the rubric, then call `note_assess` again "+
			"with the same `note` and your judgment in `scores`.\n\n%s",
		cultivate.BuildPrompt(notePath, content),
	)
	return mcp.NewToolResultText(response), nil
}

// handleScorePhase parses the judgment and runs the full assessment flow.
func (t *NoteAssessTool) handleScorePhase(notePath, scores string) (*mcp.CallToolResult, error) {
	judgment, err := judge.ParseJudgment(scores)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid scores: %v", err)), nil
	}

	out, err := t.svc.Assess(notePath, judgment)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Assessment failed: %v", err)), nil
	}

	return mcp.NewToolResultText(renderOutcome(out)), nil
}

// renderOutcome formats one assessment outcome for the agent.
func renderOutcome(out *cultivate.Outcome) string {
	a := out.Assessment
	var sb strings.Builder

	fmt.Fprintf(&sb, "# Assessment: %s\n\n", a.NotePath)
	fmt.Fprintf(&sb, "**Quality: %d/100 · Grade %s**\n", a.Quality.Total, a.Quality.Grade())
	fmt.Fprintf(&sb, "**Stage:** %s", stageLabel(a.CurrentMaturity))
	if a.IsUpgradeRecommended() {
		fmt.Fprintf(&sb, " → recommended: %s (use `note_set_maturity` to advance)", stageLabel(a.RecommendedMaturity))
	}
	sb.WriteString("\n")

	if out.Delta != nil {
		fmt.Fprintf(&sb, "**Since last assessment:** %s\n", deltaBadge(out.Delta.TotalDelta))
	}
	sb.WriteString("\n")

	if out.Delta != nil {
		sb.WriteString(dimensionTable(a.Quality.Dimensions, out.Delta.DimensionDeltas))
	} else {
		sb.WriteString(dimensionTable(a.Quality.Dimensions, nil))
	}

	if len(a.Improvements) > 0 {
		sb.WriteString("\n## Improvements\n\n")
		for _, imp := range a.Improvements {
			fmt.Fprintf(&sb, "- **%s** (%s): %s\n", imp.Dimension.Display(), imp.Priority, imp.Suggestion)
			if imp.Example != "" {
				fmt.Fprintf(&sb, "  - Example: %s\n", imp.Example)
			}
		}
	}

	if a.Split != nil {
		fmt.Fprintf(&sb, "\n## Split Suggestion\n\n%s\n", a.Split.Reason)
		for _, part := range a.Split.Parts {
			fmt.Fprintf(&sb, "- %s\n", part)
		}
	}

	if len(a.Connections) > 0 {
		sb.WriteString("\n## Suggested Connections\n\n")
		for _, c := range a.Connections {
			if c.Reason != "" {
				fmt.Fprintf(&sb, "- [[%s]] — %s\n", c.Target, c.Reason)
			} else {
				fmt.Fprintf(&sb, "- [[%s]]\n", c.Target)
			}
		}
	}

	if a.GrowthGuide != "" {
		fmt.Fprintf(&sb, "\n## Growth Guide\n\n%s\n", a.GrowthGuide)
	}

	sb.WriteString("\nThe assessment callout was written into the note.\n")
	return sb.String()
}
