package assess

import (
	"errors"
	"strings"
	"testing"
)

// --- ParseStage ---

func TestParseStage(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"seedling is valid", "seedling", false},
		{"budding is valid", "budding", false},
		{"maturing is valid", "maturing", false},
		{"evergreen is valid", "evergreen", false},
		{"empty is invalid", "", true},
		{"unknown is invalid", "ancient", true},
		{"case sensitive", "Seedling", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStage(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseStage(%q) error = %v, wantErr = %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestParseStage_ErrorType(t *testing.T) {
	_, err := ParseStage("ancient")
	var invalid *InvalidStageError
	if !errors.As(err, &invalid) {
		t.Fatalf("error type = %T, want *InvalidStageError", err)
	}
	if invalid.Value != "ancient" {
		t.Errorf("Value = %q, want %q", invalid.Value, "ancient")
	}
	if !strings.Contains(err.Error(), "ancient") {
		t.Errorf("error should name the bad stage, got: %s", err)
	}
}

// --- Catalog invariants ---

func TestStages_OrderedWithIncreasingThresholds(t *testing.T) {
	stages := Stages()
	if len(stages) != 4 {
		t.Fatalf("len(Stages()) = %d, want 4", len(stages))
	}
	if stages[0].MinScore() != 0 {
		t.Errorf("first stage threshold = %d, want 0", stages[0].MinScore())
	}
	for i := 1; i < len(stages); i++ {
		if stages[i].MinScore() <= stages[i-1].MinScore() {
			t.Errorf("threshold(%s)=%d not above threshold(%s)=%d",
				stages[i], stages[i].MinScore(), stages[i-1], stages[i-1].MinScore())
		}
	}
}

func TestLowestStage(t *testing.T) {
	if got := LowestStage(); got != StageSeedling {
		t.Errorf("LowestStage = %s, want seedling", got)
	}
}

// --- StageFromScore ---

func TestStageFromScore_Thresholds(t *testing.T) {
	tests := []struct {
		name  string
		score int
		want  Stage
	}{
		{"zero is seedling", 0, StageSeedling},
		{"just below budding", 39, StageSeedling},
		{"budding threshold", 40, StageBudding},
		{"between budding and maturing", 45, StageBudding},
		{"just below maturing", 64, StageBudding},
		{"maturing threshold", 65, StageMaturing},
		{"just below evergreen", 84, StageMaturing},
		{"evergreen threshold", 85, StageEvergreen},
		{"perfect score", 100, StageEvergreen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StageFromScore(tt.score); got != tt.want {
				t.Errorf("StageFromScore(%d) = %s, want %s", tt.score, got, tt.want)
			}
		})
	}
}

func TestStageFromScore_MonotonicallyNonDecreasing(t *testing.T) {
	prev := StageFromScore(0)
	for s := 1; s <= 100; s++ {
		got := StageFromScore(s)
		if got.IsLowerThan(prev) {
			t.Fatalf("StageFromScore(%d) = %s ranks below StageFromScore(%d) = %s", s, got, s-1, prev)
		}
		prev = got
	}
}

func TestStageFromScore_ExactThresholdMapsToStage(t *testing.T) {
	for _, stage := range Stages() {
		if got := StageFromScore(stage.MinScore()); got != stage {
			t.Errorf("StageFromScore(threshold of %s) = %s, want %s", stage, got, stage)
		}
	}
}

// --- Ordering and transition advice ---

func TestIsHigherThan(t *testing.T) {
	if !StageEvergreen.IsHigherThan(StageSeedling) {
		t.Error("evergreen should rank above seedling")
	}
	if StageSeedling.IsHigherThan(StageEvergreen) {
		t.Error("seedling should not rank above evergreen")
	}
	if StageBudding.IsHigherThan(StageBudding) {
		t.Error("a stage should not rank above itself")
	}
}

func TestIsLowerThan(t *testing.T) {
	if !StageSeedling.IsLowerThan(StageBudding) {
		t.Error("seedling should rank below budding")
	}
	if StageMaturing.IsLowerThan(StageMaturing) {
		t.Error("a stage should not rank below itself")
	}
}

func TestCanUpgradeTo(t *testing.T) {
	if !StageSeedling.CanUpgradeTo(StageBudding) {
		t.Error("seedling → budding should be an upgrade")
	}
	if !StageSeedling.CanUpgradeTo(StageEvergreen) {
		t.Error("stage skips still count as upgrades")
	}
	if StageMaturing.CanUpgradeTo(StageBudding) {
		t.Error("maturing → budding is not an upgrade")
	}
	if StageMaturing.CanUpgradeTo(StageMaturing) {
		t.Error("same stage is not an upgrade")
	}
}

func TestCanDowngradeTo_AlwaysFalse(t *testing.T) {
	for _, from := range Stages() {
		for _, to := range Stages() {
			if from.CanDowngradeTo(to) {
				t.Errorf("CanDowngradeTo(%s → %s) = true, want false", from, to)
			}
		}
	}
}

// --- Display identity ---

func TestStageDisplay_NoNameIsSubstringOfAnother(t *testing.T) {
	// Callout decoding matches display names by literal substring; the
	// catalog must keep them non-overlapping.
	stages := Stages()
	for _, a := range stages {
		for _, b := range stages {
			if a == b {
				continue
			}
			if strings.Contains(a.Display(), b.Display()) {
				t.Errorf("display %q contains display %q", a.Display(), b.Display())
			}
		}
	}
}

func TestStageInfo_HasDisplayAndIcon(t *testing.T) {
	for _, stage := range Stages() {
		if stage.Display() == "" {
			t.Errorf("stage %s has no display name", stage)
		}
		if stage.Icon() == "" {
			t.Errorf("stage %s has no icon", stage)
		}
	}
}
