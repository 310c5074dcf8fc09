package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// GardenReviewPrompt handles the garden-review MCP prompt.
// It guides the AI through a periodic sweep of the whole vault.
type GardenReviewPrompt struct{}

// NewGardenReviewPrompt creates a GardenReviewPrompt.
func NewGardenReviewPrompt() *GardenReviewPrompt {
	return &GardenReviewPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *GardenReviewPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("garden-review",
		mcp.WithPromptDescription(
			"Review the whole garden: survey the vault's maturity distribution, "+
				"find the weakest and most stagnant notes, and propose a tending "+
				"plan for the next session.",
		),
		mcp.WithArgument("focus",
			mcp.ArgumentDescription(
				"Optional stage to focus on, e.g. 'seedling' to triage new notes. Default: the whole vault",
			),
		),
	)
}

// Handle processes the garden-review prompt request.
func (p *GardenReviewPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	focus := ""
	if args := req.Params.Arguments; args != nil {
		focus = args["focus"]
	}

	scope := "the whole vault"
	filterStep := "2. Run `vault_notes` to list every note with its stage and latest score\n"
	if focus != "" {
		scope = "the " + focus + " notes"
		filterStep = "2. Run `vault_notes` with stage='" + focus + "' to list the notes in scope\n"
	}

	return &mcp.GetPromptResult{
		Description: "Garden review: " + scope,
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.NewTextContent(
					"I want to review " + scope + ".\n\n" +
						"Please:\n" +
						"1. Run `vault_stats` to get the stage distribution and the weakest notes\n" +
						filterStep +
						"3. For the three weakest notes, run `note_history` and check whether they are " +
						"improving, stagnant, or declining\n" +
						"4. Summarize the garden's health and propose a short tending plan: which notes to " +
						"cultivate next, which to split, and which are ready to advance\n\n" +
						"Keep the plan small enough to finish in one sitting.",
				),
			},
		},
	}, nil
}
