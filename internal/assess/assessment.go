package assess

import (
	"time"

	"github.com/google/uuid"
)

// --- Improvement guidance ---

// Priority ranks how urgently an improvement should be addressed.
// Priorities are assigned by the judge, not derived from score bands.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Improvement is one actionable suggestion tied to a dimension.
type Improvement struct {
	Dimension  Dimension `json:"dimension"`
	Priority   Priority  `json:"priority"`
	Suggestion string    `json:"suggestion"`
	Example    string    `json:"example,omitempty"`
}

// SplitSuggestion proposes breaking a sprawling note into atomic parts.
type SplitSuggestion struct {
	Reason string   `json:"reason"`
	Parts  []string `json:"parts,omitempty"`
}

// Connection proposes linking the note to another note in the vault.
type Connection struct {
	Target string `json:"target"`
	Reason string `json:"reason,omitempty"`
}

// Cutoffs for which guidance an assessment keeps.
const (
	// improvementCutoff: dimensions at or above this score are considered
	// healthy and their improvement suggestions are dropped.
	improvementCutoff = 70
	// splitCutoff: a split is only worth surfacing while atomicity sits
	// below this score.
	splitCutoff = 50
)

// --- Assessment aggregate ---

// Assessment is the immutable result of one evaluation run: the composite
// quality score joined with the note's maturity at evaluation time, the
// derived recommendation, and the guidance that still applies.
type Assessment struct {
	ID                  string
	NotePath            string
	Quality             *QualityScore
	CurrentMaturity     Stage
	RecommendedMaturity Stage
	Improvements        []Improvement
	Split               *SplitSuggestion
	Connections         []Connection
	GrowthGuide         string
	CreatedAt           time.Time
}

// AssessmentInput carries everything the caller supplies for one evaluation.
// Quality must be a validated QualityScore; CurrentMaturity is whatever
// stage the note held when the evaluation started.
type AssessmentInput struct {
	NotePath        string
	Quality         *QualityScore
	CurrentMaturity Stage
	Improvements    []Improvement
	Split           *SplitSuggestion
	Connections     []Connection
	GrowthGuide     string
}

// NewAssessment assembles the aggregate. It derives the recommended stage
// from the composite total, assigns a fresh identifier and timestamp, and
// filters the supplied guidance: improvements are kept only for dimensions
// scoring below 70, and the split suggestion only while atomicity is below
// 50. It never fails given a valid QualityScore.
func NewAssessment(in AssessmentInput) *Assessment {
	var kept []Improvement
	for _, imp := range in.Improvements {
		if in.Quality.Score(imp.Dimension) < improvementCutoff {
			kept = append(kept, imp)
		}
	}

	split := in.Split
	if in.Quality.Score(DimAtomicity) >= splitCutoff {
		split = nil
	}

	return &Assessment{
		ID:                  uuid.NewString(),
		NotePath:            in.NotePath,
		Quality:             in.Quality,
		CurrentMaturity:     in.CurrentMaturity,
		RecommendedMaturity: StageFromScore(in.Quality.Total),
		Improvements:        kept,
		Split:               split,
		Connections:         in.Connections,
		GrowthGuide:         in.GrowthGuide,
		CreatedAt:           timeNow().UTC(),
	}
}

// IsUpgradeRecommended reports whether the evaluation points to a higher
// stage than the note currently holds.
func (a *Assessment) IsUpgradeRecommended() bool {
	return a.RecommendedMaturity.IsHigherThan(a.CurrentMaturity)
}
