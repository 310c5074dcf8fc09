// Package prompts implements MCP prompt handlers for the cultivation
// workflow.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// CultivatePrompt handles the cultivate-note MCP prompt.
// It guides the AI through one full tending cycle for a single note.
type CultivatePrompt struct{}

// NewCultivatePrompt creates a CultivatePrompt.
func NewCultivatePrompt() *CultivatePrompt {
	return &CultivatePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *CultivatePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("cultivate-note",
		mcp.WithPromptDescription(
			"Tend a single note: assess its quality, apply the most valuable "+
				"improvements, re-assess, and advance its maturity stage when the "+
				"score supports it.",
		),
		mcp.WithArgument("note",
			mcp.RequiredArgument(),
			mcp.ArgumentDescription("Vault-relative path of the note to cultivate"),
		),
	)
}

// Handle processes the cultivate-note prompt request.
func (p *CultivatePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	notePath := ""
	if args := req.Params.Arguments; args != nil {
		notePath = args["note"]
	}
	if notePath == "" {
		return nil, fmt.Errorf("missing required argument: note")
	}

	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Cultivate note: %s", notePath),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(fmt.Sprintf(
					"I want to cultivate the note '%s'.\n\n"+
						"Please:\n"+
						"1. Run `note_status` for '%s' to see where it stands\n"+
						"2. Run `note_assess` (without scores) to get the rubric, judge the note yourself, "+
						"then call `note_assess` again with your scores\n"+
						"3. Walk me through the improvement suggestions and help me apply the highest-priority ones\n"+
						"4. Once I've edited the note, re-assess it the same way\n"+
						"5. If the new score supports a higher stage, run `note_set_maturity` to advance it\n\n"+
						"Explain the score movement between the two assessments so I can see what the edits changed.",
					notePath, notePath,
				)),
			},
		},
	}, nil
}
