package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/eohjun/cultivator/internal/assess"
	"github.com/eohjun/cultivator/internal/cultivate"
	"github.com/mark3labs/mcp-go/mcp"
)

// VaultNotesTool handles the vault_notes MCP tool.
type VaultNotesTool struct {
	svc *cultivate.Service
}

// NewVaultNotesTool creates a VaultNotesTool with the given service.
func NewVaultNotesTool(svc *cultivate.Service) *VaultNotesTool {
	return &VaultNotesTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *VaultNotesTool) Definition() mcp.Tool {
	return mcp.NewTool("vault_notes",
		mcp.WithDescription(
			"List the notes in the vault with their maturity stage, latest quality "+
				"score, tags, and link counts. Optionally filter by stage or glob.",
		),
		mcp.WithString("stage",
			mcp.Description("Only show notes at this stage (seedling, budding, maturing, evergreen)."),
		),
		mcp.WithString("glob",
			mcp.Description("Only show notes whose path matches this glob, e.g. 'garden/**'."),
		),
	)
}

// Handle processes the vault_notes tool call.
func (t *VaultNotesTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var stageFilter assess.Stage
	if raw := req.GetString("stage", ""); raw != "" {
		stage, err := assess.ParseStage(raw)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		stageFilter = stage
	}
	glob := req.GetString("glob", "")

	notes, err := t.svc.Vault().List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Listing notes: %v", err)), nil
	}

	var sb strings.Builder
	sb.WriteString("# Vault Notes\n\n")
	sb.WriteString("| Note | Stage | Score | Links | Tags |\n")
	sb.WriteString("|------|-------|-------|-------|------|\n")

	shown := 0
	for _, n := range notes {
		if stageFilter != "" && n.Maturity != stageFilter {
			continue
		}
		if glob != "" {
			if ok, err := doublestar.Match(glob, n.Path); err != nil || !ok {
				continue
			}
		}

		score := "—"
		if rec, ok := t.svc.History().Latest(n.Path); ok {
			score = fmt.Sprintf("%d", rec.TotalScore)
		}
		tags := "—"
		if len(n.Tags) > 0 {
			tags = strings.Join(n.Tags, ", ")
		}
		fmt.Fprintf(&sb, "| %s | %s | %s | %d | %s |\n",
			n.Path, stageLabel(n.Maturity), score, n.Links, tags)
		shown++
	}

	if shown == 0 {
		return mcp.NewToolResultText("No notes matched."), nil
	}
	fmt.Fprintf(&sb, "\n%d notes.\n", shown)
	return mcp.NewToolResultText(sb.String()), nil
}
