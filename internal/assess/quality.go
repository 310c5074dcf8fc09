package assess

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// --- Quality score ---

// QualityScore aggregates exactly one DimensionScore per catalog dimension
// into a weighted composite and a letter grade.
type QualityScore struct {
	Dimensions map[Dimension]DimensionScore `json:"dimensions"`
	Total      int                          `json:"total"`
	AssessedAt time.Time                    `json:"assessed_at"`
}

// MissingDimensionError reports catalog dimensions absent from a quality
// score's inputs. Construction refuses to produce a partial composite.
type MissingDimensionError struct {
	Missing []Dimension
}

func (e *MissingDimensionError) Error() string {
	names := make([]string, len(e.Missing))
	for i, d := range e.Missing {
		names[i] = string(d)
	}
	return fmt.Sprintf("quality score missing dimensions: %s", strings.Join(names, ", "))
}

// NewQualityScore builds the composite from judged sub-scores.
// Every catalog dimension must be present; scores outside the catalog are
// ignored, and when the same dimension appears twice the last one wins.
// Total = round(Σ weight·score), always within [0,100] for clamped inputs.
func NewQualityScore(scores []DimensionScore) (*QualityScore, error) {
	byDim := make(map[Dimension]DimensionScore, len(dimensionOrder))
	for _, s := range scores {
		if _, ok := dimensionCatalog[s.Dimension]; !ok {
			continue
		}
		byDim[s.Dimension] = s
	}

	var missing []Dimension
	for _, d := range dimensionOrder {
		if _, ok := byDim[d]; !ok {
			missing = append(missing, d)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingDimensionError{Missing: missing}
	}

	weighted := 0.0
	for _, d := range dimensionOrder {
		weighted += float64(byDim[d].Score) * dimensionCatalog[d].Weight
	}

	return &QualityScore{
		Dimensions: byDim,
		Total:      int(math.Round(weighted)),
		AssessedAt: timeNow().UTC(),
	}, nil
}

// Grade bands the total into a letter: ≥90 A, ≥80 B, ≥70 C, ≥60 D, else F.
func (q *QualityScore) Grade() string {
	return GradeFor(q.Total)
}

// GradeFor bands any composite total into its letter grade. Lower bounds
// are inclusive and the bands do not overlap.
func GradeFor(total int) string {
	switch {
	case total >= 90:
		return "A"
	case total >= 80:
		return "B"
	case total >= 70:
		return "C"
	case total >= 60:
		return "D"
	default:
		return "F"
	}
}

// Score returns the judged score for one dimension.
func (q *QualityScore) Score(d Dimension) int {
	return q.Dimensions[d].Score
}

// Weakest returns the lowest-scoring dimension. Ties resolve to the first
// encountered in catalog order.
func (q *QualityScore) Weakest() DimensionScore {
	weakest := q.Dimensions[dimensionOrder[0]]
	for _, d := range dimensionOrder[1:] {
		if s := q.Dimensions[d]; s.Score < weakest.Score {
			weakest = s
		}
	}
	return weakest
}

// Strongest returns the highest-scoring dimension. Ties resolve to the first
// encountered in catalog order.
func (q *QualityScore) Strongest() DimensionScore {
	strongest := q.Dimensions[dimensionOrder[0]]
	for _, d := range dimensionOrder[1:] {
		if s := q.Dimensions[d]; s.Score > strongest.Score {
			strongest = s
		}
	}
	return strongest
}
