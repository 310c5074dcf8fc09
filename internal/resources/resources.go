// Package resources implements MCP resource handlers for the cultivation
// workflow.
//
// Resources provide read-only data that the host can consume for context.
// They use URI-based addressing (garden://...) following MCP conventions.
package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/eohjun/cultivator/internal/assess"
	"github.com/eohjun/cultivator/internal/cultivate"
	"github.com/mark3labs/mcp-go/mcp"
)

// recentLimit caps how many recent assessments the overview carries.
const recentLimit = 10

// Handler manages the garden resource endpoints.
type Handler struct {
	svc *cultivate.Service
}

// NewHandler creates a resource Handler with its dependencies.
func NewHandler(svc *cultivate.Service) *Handler {
	return &Handler{svc: svc}
}

// OverviewResource returns the MCP resource definition for the vault
// overview.
func (h *Handler) OverviewResource() mcp.Resource {
	return mcp.NewResource(
		"garden://vault/overview",
		"Garden Overview",
		mcp.WithResourceDescription("Vault-wide note counts, maturity distribution, and recent assessments"),
		mcp.WithMIMEType("application/json"),
	)
}

// overview is the JSON shape of the garden overview resource.
type overview struct {
	Notes             int                  `json:"notes"`
	Assessed          int                  `json:"assessed"`
	AverageQuality    int                  `json:"averageQuality"`
	StageDistribution map[assess.Stage]int `json:"stageDistribution"`
	RecentAssessments []recentAssessment   `json:"recentAssessments"`
}

type recentAssessment struct {
	Note       string `json:"note"`
	TotalScore int    `json:"totalScore"`
	Grade      string `json:"grade"`
	AssessedAt string `json:"assessedAt"`
}

// HandleOverview returns the current garden overview as JSON.
func (h *Handler) HandleOverview(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	notes, err := h.svc.Vault().List()
	if err != nil {
		return errorResource(req.Params.URI, err.Error()), nil
	}

	ov := overview{
		Notes:             len(notes),
		StageDistribution: make(map[assess.Stage]int),
	}
	for _, stage := range assess.Stages() {
		ov.StageDistribution[stage] = 0
	}
	for _, n := range notes {
		if n.Maturity != "" {
			ov.StageDistribution[n.Maturity]++
		}
	}

	type dated struct {
		entry  recentAssessment
		millis int64
	}
	var latest []dated
	sum := 0
	for _, path := range h.svc.History().Notes() {
		rec, ok := h.svc.History().Latest(path)
		if !ok {
			continue
		}
		ov.Assessed++
		sum += rec.TotalScore
		latest = append(latest, dated{
			millis: rec.AssessedAt,
			entry: recentAssessment{
				Note:       rec.NotePath,
				TotalScore: rec.TotalScore,
				Grade:      assess.GradeFor(rec.TotalScore),
				AssessedAt: time.UnixMilli(rec.AssessedAt).UTC().Format(time.RFC3339),
			},
		})
	}
	if ov.Assessed > 0 {
		ov.AverageQuality = sum / ov.Assessed
	}

	sort.Slice(latest, func(i, j int) bool { return latest[i].millis > latest[j].millis })
	for i, d := range latest {
		if i >= recentLimit {
			break
		}
		ov.RecentAssessments = append(ov.RecentAssessments, d.entry)
	}

	data, err := json.MarshalIndent(ov, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling overview: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// errorResource returns a resource with an error message.
func errorResource(uri, message string) []mcp.ResourceContents {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "text/plain",
			Text:     fmt.Sprintf("Error: %s", message),
		},
	}
}
