// Package cultivate orchestrates one evaluation run end to end: read the
// note, turn a judgment into an assessment, record history, write the
// callout back, and enforce the maturity progression policy.
//
// Maturity is monotonic by policy: a note's stage only moves forward, and
// only when its latest composite score has earned the target stage. The
// stage catalog itself does not enforce this — the service does, and the
// force flag is the single deliberate escape hatch.
package cultivate

import (
	"context"
	"fmt"

	"github.com/eohjun/cultivator/internal/assess"
	"github.com/eohjun/cultivator/internal/callout"
	"github.com/eohjun/cultivator/internal/history"
	"github.com/eohjun/cultivator/internal/judge"
	"github.com/eohjun/cultivator/internal/vault"
)

// Service owns the evaluation flow for one vault.
type Service struct {
	vault    *vault.Vault
	history  *history.Store
	registry *judge.Registry
	provider string
}

// New creates a cultivation service. The registry and provider name may be
// empty when no LLM judge is configured; only Judge depends on them.
func New(v *vault.Vault, h *history.Store, registry *judge.Registry, provider string) *Service {
	return &Service{vault: v, history: h, registry: registry, provider: provider}
}

// Vault exposes the underlying note repository.
func (s *Service) Vault() *vault.Vault {
	return s.vault
}

// History exposes the underlying history store.
func (s *Service) History() *history.Store {
	return s.history
}

// Outcome is the result of one evaluation run.
type Outcome struct {
	Assessment *assess.Assessment
	// Delta compares this run against the previous record, nil on the
	// note's first assessment.
	Delta *assess.Delta
}

// Assess runs one full evaluation of a note from an already-typed
// judgment: build the quality score, join it with the note's current
// stage, record history, and write the callout block back into the note.
//
// The current stage comes from frontmatter; a note without the field falls
// back to the stage a prior callout block reconstructs, then to the lowest
// stage. The delta is computed against the latest prior record before this
// run's record is added.
func (s *Service) Assess(notePath string, j *judge.Judgment) (*Outcome, error) {
	content, err := s.vault.Read(notePath)
	if err != nil {
		return nil, err
	}

	quality, err := assess.NewQualityScore(j.DimensionScores())
	if err != nil {
		return nil, fmt.Errorf("building quality score: %w", err)
	}

	current, err := s.vault.Maturity(notePath)
	if err != nil {
		return nil, err
	}
	if current == "" {
		// A decoded assessment always reports the lowest stage, so the
		// fallback reads the stage named in the block itself. Without a
		// block this is the lowest stage too.
		current = callout.DecodedStage(content)
	}

	assessment := assess.NewAssessment(assess.AssessmentInput{
		NotePath:        notePath,
		Quality:         quality,
		CurrentMaturity: current,
		Improvements:    j.Improvements,
		Split:           j.Split,
		Connections:     j.Connections,
		GrowthGuide:     j.GrowthGuide,
	})

	record := assess.NewRecord(assessment)
	delta := s.history.Delta(notePath, record)
	if err := s.history.Add(record); err != nil {
		return nil, err
	}

	if err := s.vault.Write(notePath, callout.Upsert(content, assessment)); err != nil {
		return nil, fmt.Errorf("writing callout: %w", err)
	}
	if err := s.vault.SetLastAssessed(notePath, assessment.CreatedAt.Format("2006-01-02")); err != nil {
		return nil, fmt.Errorf("stamping last-assessed: %w", err)
	}

	return &Outcome{Assessment: assessment, Delta: delta}, nil
}

// Judge reads a note and evaluates it with the configured provider. This
// is the one-shot path; the MCP flow hands the judgment over directly.
func (s *Service) Judge(ctx context.Context, notePath string) (*judge.Judgment, error) {
	if s.registry == nil || s.provider == "" {
		return nil, fmt.Errorf("no judge provider configured")
	}
	provider, err := s.registry.Get(s.provider)
	if err != nil {
		return nil, err
	}

	content, err := s.vault.Read(notePath)
	if err != nil {
		return nil, err
	}
	return provider.Evaluate(ctx, BuildPrompt(notePath, content))
}

// MaturityResult is the structured outcome of an update request. Policy
// rejections are results, not errors — they are expected business
// outcomes the caller renders, never programming failures.
type MaturityResult struct {
	Updated bool         `json:"updated"`
	From    assess.Stage `json:"from"`
	To      assess.Stage `json:"to"`
	Message string       `json:"message"`
}

// UpdateMaturity applies the progression policy to a requested stage
// change and persists the new stage on success.
//
//   - Same stage: no-op success.
//   - Lower stage: rejected unless forced.
//   - Higher stage: the latest recorded composite must meet the target's
//     threshold, unless forced.
func (s *Service) UpdateMaturity(notePath string, target assess.Stage, force bool) (*MaturityResult, error) {
	current, err := s.vault.Maturity(notePath)
	if err != nil {
		return nil, err
	}
	if current == "" {
		current = assess.LowestStage()
	}

	result := &MaturityResult{From: current, To: target}

	if target == current {
		result.Updated = true
		result.Message = fmt.Sprintf("Note is already %s %s.", current.Icon(), current.Display())
		return result, nil
	}

	if target.IsLowerThan(current) && !force {
		result.Message = fmt.Sprintf(
			"Maturity only advances: %s cannot move back to %s. Use force to override.",
			current.Display(), target.Display())
		return result, nil
	}

	if target.IsHigherThan(current) && !force {
		latest, ok := s.history.Latest(notePath)
		if !ok {
			result.Message = fmt.Sprintf(
				"No assessment on record. %s requires a quality score of at least %d — assess the note first.",
				target.Display(), target.MinScore())
			return result, nil
		}
		if latest.TotalScore < target.MinScore() {
			result.Message = fmt.Sprintf(
				"Quality score %d is below the %d required for %s %s.",
				latest.TotalScore, target.MinScore(), target.Icon(), target.Display())
			return result, nil
		}
	}

	if err := s.vault.SetMaturity(notePath, target); err != nil {
		return nil, err
	}

	result.Updated = true
	result.Message = fmt.Sprintf("Updated %s %s → %s %s.",
		current.Icon(), current.Display(), target.Icon(), target.Display())
	return result, nil
}
