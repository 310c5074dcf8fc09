// Package tools implements the MCP tool handlers for the cultivation
// workflow.
//
// Each tool is a struct that receives its dependencies via constructor
// (DIP) and exposes the mcp-go pair of Definition() and Handle().
//
// Design principles:
// - SRP: each file = one tool
// - DIP: tools depend on the cultivation service, not on storage concretions
// - OCP: new tools are added without modifying existing ones
package tools

import (
	"fmt"
	"strings"

	"github.com/eohjun/cultivator/internal/assess"
	"github.com/mark3labs/mcp-go/mcp"
)

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}

// boolArg extracts a boolean argument from a tool request.
func boolArg(req mcp.CallToolRequest, key string, defaultVal bool) bool {
	v, ok := req.GetArguments()[key].(bool)
	if !ok {
		return defaultVal
	}
	return v
}

// stageLabel renders a stage with its icon, or a dash for unset stages.
func stageLabel(s assess.Stage) string {
	if s == "" {
		return "—"
	}
	return s.Icon() + " " + s.Display()
}

// deltaBadge renders a signed score movement: "▲ +12", "▼ -5", "· ±0".
func deltaBadge(d int) string {
	switch {
	case d > 0:
		return fmt.Sprintf("▲ +%d", d)
	case d < 0:
		return fmt.Sprintf("▼ %d", d)
	default:
		return "· ±0"
	}
}

// dimensionTable renders per-dimension scores (and optional deltas) as a
// markdown table in catalog order.
func dimensionTable(scores map[assess.Dimension]assess.DimensionScore, deltas map[assess.Dimension]int) string {
	var sb strings.Builder
	if deltas != nil {
		sb.WriteString("| Dimension | Score | Change | Feedback |\n")
		sb.WriteString("|-----------|-------|--------|----------|\n")
	} else {
		sb.WriteString("| Dimension | Score | Feedback |\n")
		sb.WriteString("|-----------|-------|----------|\n")
	}
	for _, d := range assess.Dimensions() {
		ds := scores[d]
		if deltas != nil {
			change := "—"
			if dv, ok := deltas[d]; ok {
				change = deltaBadge(dv)
			}
			fmt.Fprintf(&sb, "| %s %s | %d | %s | %s |\n", d.Icon(), d.Display(), ds.Score, change, ds.Feedback)
		} else {
			fmt.Fprintf(&sb, "| %s %s | %d | %s |\n", d.Icon(), d.Display(), ds.Score, ds.Feedback)
		}
	}
	return sb.String()
}
