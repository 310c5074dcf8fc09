// Package assess implements the quality scoring and maturity progression
// engine for vault notes.
//
// A note is judged across five fixed dimensions. Each judged sub-score is
// clamped, weighted, and aggregated into a composite quality score with a
// letter grade; the composite in turn maps onto an ordered set of maturity
// stages gated by minimum-score thresholds.
//
// This package follows the same design principles as the rest of the server:
// - SRP: dimensions, quality score, maturity, and assessment in separate files
// - Pure domain logic: no I/O here — persistence and transport live elsewhere
package assess

import (
	"fmt"
	"math"
	"strings"
)

// --- Dimension enum ---

// Dimension identifies one of the five quality sub-metrics.
type Dimension string

const (
	DimAtomicity    Dimension = "atomicity"
	DimConnectivity Dimension = "connectivity"
	DimClarity      Dimension = "clarity"
	DimEvidence     Dimension = "evidence"
	DimOriginality  Dimension = "originality"
)

// DimensionInfo carries the fixed metadata attached to a catalog dimension.
type DimensionInfo struct {
	Weight      float64
	Display     string
	Icon        string
	Description string
}

// dimensionOrder is the canonical catalog sequence. Iteration, tie-breaking,
// and callout table rows all follow it.
var dimensionOrder = []Dimension{
	DimAtomicity,
	DimConnectivity,
	DimClarity,
	DimEvidence,
	DimOriginality,
}

// dimensionCatalog is the closed set of dimensions with their constants.
// Weights sum to 1.0.
var dimensionCatalog = map[Dimension]DimensionInfo{
	DimAtomicity: {
		Weight:      0.25,
		Display:     "Atomicity",
		Icon:        "🧩",
		Description: "One idea per note: the note makes a single claim that can stand on its own.",
	},
	DimConnectivity: {
		Weight:      0.25,
		Display:     "Connectivity",
		Icon:        "🔗",
		Description: "The note links to related notes and is reachable from the rest of the vault.",
	},
	DimClarity: {
		Weight:      0.20,
		Display:     "Clarity",
		Icon:        "🔍",
		Description: "The writing is concept-oriented and understandable without its source context.",
	},
	DimEvidence: {
		Weight:      0.15,
		Display:     "Evidence",
		Icon:        "📚",
		Description: "Claims are backed by sources, examples, or data rather than bare assertion.",
	},
	DimOriginality: {
		Weight:      0.15,
		Display:     "Originality",
		Icon:        "💡",
		Description: "The note adds your own thinking instead of only restating the source.",
	},
}

// Dimensions returns the catalog in its fixed order.
func Dimensions() []Dimension {
	out := make([]Dimension, len(dimensionOrder))
	copy(out, dimensionOrder)
	return out
}

// ValidateDimension returns an error if the dimension is not in the catalog.
func ValidateDimension(d Dimension) error {
	if _, ok := dimensionCatalog[d]; !ok {
		return fmt.Errorf("invalid dimension %q: must be one of: %s", d, dimensionNames())
	}
	return nil
}

// Info returns the fixed metadata for a dimension. Unknown dimensions
// return the zero value.
func (d Dimension) Info() DimensionInfo {
	return dimensionCatalog[d]
}

// Display returns the human-readable name for a dimension.
func (d Dimension) Display() string {
	return dimensionCatalog[d].Display
}

// Icon returns the emoji associated with a dimension.
func (d Dimension) Icon() string {
	return dimensionCatalog[d].Icon
}

// Weight returns the dimension's share of the composite score.
func (d Dimension) Weight() float64 {
	return dimensionCatalog[d].Weight
}

// dimensionNames joins the catalog keys for error messages.
func dimensionNames() string {
	names := make([]string, len(dimensionOrder))
	for i, d := range dimensionOrder {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}

// --- Dimension score ---

// DimensionScore is one judged sub-metric: a clamped 0-100 score plus the
// judge's feedback. Immutable once constructed.
type DimensionScore struct {
	Dimension Dimension `json:"dimension"`
	Score     int       `json:"score"`
	Feedback  string    `json:"feedback"`
}

// NewDimensionScore builds a DimensionScore from a raw judged value.
// Out-of-range input is clamped and fractional input rounded; construction
// never fails.
func NewDimensionScore(d Dimension, raw float64, feedback string) DimensionScore {
	return DimensionScore{
		Dimension: d,
		Score:     ClampScore(raw),
		Feedback:  feedback,
	}
}

// ClampScore clamps a raw value to [0,100] and rounds to the nearest integer.
// NaN collapses to 0.
func ClampScore(raw float64) int {
	if math.IsNaN(raw) || raw < 0 {
		return 0
	}
	if raw > 100 {
		return 100
	}
	return int(math.Round(raw))
}
