package assess

import "fmt"

// --- Maturity stages ---
//
// Stages form an ordered progression gated by minimum composite scores.
// This is a pure classification component: nothing here mutates state, and
// nothing here blocks a caller from writing whatever stage it wants to a
// note. The monotonic-growth policy is enforced by the cultivation service.

// Stage is one growth level in a note's lifecycle.
type Stage string

const (
	StageSeedling  Stage = "seedling"
	StageBudding   Stage = "budding"
	StageMaturing  Stage = "maturing"
	StageEvergreen Stage = "evergreen"
)

// StageInfo carries the fixed metadata attached to a stage.
type StageInfo struct {
	Order    int
	MinScore int
	Display  string
	Icon     string
}

// stageOrder lists stages lowest to highest. Thresholds increase
// monotonically and the first stage is always reachable (threshold 0).
var stageOrder = []Stage{StageSeedling, StageBudding, StageMaturing, StageEvergreen}

// stageCatalog is the closed set of stages with their constants.
// Display names are chosen so no name is a substring of another; callout
// decoding relies on that.
var stageCatalog = map[Stage]StageInfo{
	StageSeedling:  {Order: 0, MinScore: 0, Display: "Seedling", Icon: "🌱"},
	StageBudding:   {Order: 1, MinScore: 40, Display: "Budding", Icon: "🌿"},
	StageMaturing:  {Order: 2, MinScore: 65, Display: "Maturing", Icon: "🌳"},
	StageEvergreen: {Order: 3, MinScore: 85, Display: "Evergreen", Icon: "🌲"},
}

// InvalidStageError reports an unknown stage identifier.
type InvalidStageError struct {
	Value string
}

func (e *InvalidStageError) Error() string {
	return fmt.Sprintf("invalid maturity stage %q: must be one of: seedling, budding, maturing, evergreen", e.Value)
}

// Stages returns the progression lowest to highest.
func Stages() []Stage {
	out := make([]Stage, len(stageOrder))
	copy(out, stageOrder)
	return out
}

// LowestStage returns the entry stage of the progression.
func LowestStage() Stage {
	return stageOrder[0]
}

// ParseStage validates a stage identifier.
func ParseStage(s string) (Stage, error) {
	stage := Stage(s)
	if _, ok := stageCatalog[stage]; !ok {
		return "", &InvalidStageError{Value: s}
	}
	return stage, nil
}

// StageFromScore returns the highest stage whose threshold the score meets.
// Scores below every threshold (impossible for clamped input, since the
// first threshold is 0) fall back to the lowest stage.
func StageFromScore(score int) Stage {
	for i := len(stageOrder) - 1; i >= 0; i-- {
		if score >= stageCatalog[stageOrder[i]].MinScore {
			return stageOrder[i]
		}
	}
	return stageOrder[0]
}

// Info returns the fixed metadata for a stage. Unknown stages return the
// zero value.
func (s Stage) Info() StageInfo {
	return stageCatalog[s]
}

// Display returns the human-readable name for a stage.
func (s Stage) Display() string {
	return stageCatalog[s].Display
}

// Icon returns the emoji associated with a stage.
func (s Stage) Icon() string {
	return stageCatalog[s].Icon
}

// MinScore returns the minimum composite score required for a stage.
func (s Stage) MinScore() int {
	return stageCatalog[s].MinScore
}

// IsHigherThan reports whether s outranks other in the progression.
func (s Stage) IsHigherThan(other Stage) bool {
	return stageCatalog[s].Order > stageCatalog[other].Order
}

// IsLowerThan reports whether s ranks below other in the progression.
func (s Stage) IsLowerThan(other Stage) bool {
	return stageCatalog[s].Order < stageCatalog[other].Order
}

// CanUpgradeTo reports whether target is a forward move from s.
func (s Stage) CanUpgradeTo(target Stage) bool {
	return target.IsHigherThan(s)
}

// CanDowngradeTo always reports false: maturity only ever advances.
// This advertises the policy; enforcement happens in the cultivation
// service, which alone decides when a force flag may override it.
func (s Stage) CanDowngradeTo(_ Stage) bool {
	return false
}
