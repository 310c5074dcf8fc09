package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/eohjun/cultivator/internal/assess"
	"github.com/eohjun/cultivator/internal/cultivate"
	"github.com/mark3labs/mcp-go/mcp"
)

// weakestCount is how many low-scoring notes vault_stats surfaces.
const weakestCount = 5

// VaultStatsTool handles the vault_stats MCP tool.
type VaultStatsTool struct {
	svc *cultivate.Service
}

// NewVaultStatsTool creates a VaultStatsTool with the given service.
func NewVaultStatsTool(svc *cultivate.Service) *VaultStatsTool {
	return &VaultStatsTool{svc: svc}
}

// Definition returns the MCP tool definition for registration.
func (t *VaultStatsTool) Definition() mcp.Tool {
	return mcp.NewTool("vault_stats",
		mcp.WithDescription(
			"Show garden-level statistics: note counts per maturity stage, the "+
				"average quality score of assessed notes, and the weakest notes "+
				"worth tending next.",
		),
	)
}

// Handle processes the vault_stats tool call.
func (t *VaultStatsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := t.svc.Vault().List()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Listing notes: %v", err)), nil
	}

	stageCounts := make(map[assess.Stage]int)
	unstaged := 0
	for _, n := range notes {
		if n.Maturity == "" {
			unstaged++
			continue
		}
		stageCounts[n.Maturity]++
	}

	type scored struct {
		path  string
		total int
	}
	var assessed []scored
	sum := 0
	for _, n := range notes {
		if rec, ok := t.svc.History().Latest(n.Path); ok {
			assessed = append(assessed, scored{path: n.Path, total: rec.TotalScore})
			sum += rec.TotalScore
		}
	}

	var sb strings.Builder
	sb.WriteString("## Garden Statistics\n\n")
	fmt.Fprintf(&sb, "- **Notes**: %d\n", len(notes))

	for _, stage := range assess.Stages() {
		fmt.Fprintf(&sb, "- **%s**: %d\n", stageLabel(stage), stageCounts[stage])
	}
	if unstaged > 0 {
		fmt.Fprintf(&sb, "- **No stage yet**: %d\n", unstaged)
	}

	if len(assessed) == 0 {
		sb.WriteString("\nNo notes have been assessed yet. Run `note_assess` to begin.\n")
		return mcp.NewToolResultText(sb.String()), nil
	}

	fmt.Fprintf(&sb, "- **Assessed**: %d of %d\n", len(assessed), len(notes))
	fmt.Fprintf(&sb, "- **Average quality**: %d/100\n", sum/len(assessed))

	sort.Slice(assessed, func(i, j int) bool {
		if assessed[i].total != assessed[j].total {
			return assessed[i].total < assessed[j].total
		}
		return assessed[i].path < assessed[j].path
	})

	sb.WriteString("\n### Weakest notes\n\n")
	for i, s := range assessed {
		if i >= weakestCount {
			break
		}
		fmt.Fprintf(&sb, "- %s — %d/100 (Grade %s)\n", s.path, s.total, assess.GradeFor(s.total))
	}

	return mcp.NewToolResultText(sb.String()), nil
}
