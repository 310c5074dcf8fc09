// Package judge defines the judgment-provider boundary: the typed result
// one evaluation run consumes, the provider interface that produces it,
// and the parsing that turns raw model output into that typed form.
//
// The engine never constructs prompts or touches the network itself; it
// consumes a Judgment as an already-resolved value. Providers live behind
// an explicit Registry built at startup — there is no ambient global
// lookup.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/eohjun/cultivator/internal/assess"
)

// DimensionJudgment is one judged sub-score with its feedback.
type DimensionJudgment struct {
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback"`
}

// Judgment is the typed result of one judge call: a score and feedback per
// catalog dimension plus the optional guidance structures.
type Judgment struct {
	Scores       map[assess.Dimension]DimensionJudgment `json:"scores"`
	Improvements []assess.Improvement                   `json:"improvements,omitempty"`
	Split        *assess.SplitSuggestion                `json:"split_suggestion,omitempty"`
	Connections  []assess.Connection                    `json:"connections,omitempty"`
	GrowthGuide  string                                 `json:"growth_guide,omitempty"`
}

// DimensionScores converts the judgment into clamped dimension scores in
// catalog order, ready for quality-score construction.
func (j *Judgment) DimensionScores() []assess.DimensionScore {
	dims := assess.Dimensions()
	out := make([]assess.DimensionScore, 0, len(dims))
	for _, d := range dims {
		dj, ok := j.Scores[d]
		if !ok {
			continue
		}
		out = append(out, assess.NewDimensionScore(d, dj.Score, dj.Feedback))
	}
	return out
}

// ProviderError is a typed judge failure carrying the provider's message.
type ProviderError struct {
	Provider string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("judge provider %s: %s", e.Provider, e.Message)
}

// Provider evaluates a prompt into a typed judgment.
type Provider interface {
	Name() string
	Evaluate(ctx context.Context, prompt string) (*Judgment, error)
}

// ParseJudgment extracts a JSON judgment from raw model output and
// validates it. The output may wrap the object in markdown fences or
// carry trailing commas; both are tolerated. Every catalog dimension must
// be scored.
func ParseJudgment(raw string) (*Judgment, error) {
	text := ExtractJSON(raw)
	if text == "" {
		return nil, fmt.Errorf("no JSON object found in judgment output")
	}

	var p judgmentPayload
	if err := json.Unmarshal([]byte(text), &p); err != nil {
		return nil, fmt.Errorf("parsing judgment: %w", err)
	}
	return p.toJudgment()
}

// judgmentPayload is the wire shape models are asked to emit.
type judgmentPayload struct {
	Scores map[string]DimensionJudgment `json:"scores"`
	Improvements []struct {
		Dimension  string `json:"dimension"`
		Priority   string `json:"priority"`
		Suggestion string `json:"suggestion"`
		Example    string `json:"example"`
	} `json:"improvements"`
	Split *struct {
		Reason string   `json:"reason"`
		Parts  []string `json:"parts"`
	} `json:"split_suggestion"`
	Connections []struct {
		Target string `json:"target"`
		Reason string `json:"reason"`
	} `json:"connections"`
	GrowthGuide string `json:"growth_guide"`
}

func (p *judgmentPayload) toJudgment() (*Judgment, error) {
	scores := make(map[assess.Dimension]DimensionJudgment, len(p.Scores))
	for key, dj := range p.Scores {
		d := assess.Dimension(strings.ToLower(strings.TrimSpace(key)))
		if err := assess.ValidateDimension(d); err != nil {
			continue
		}
		scores[d] = dj
	}

	var missing []string
	for _, d := range assess.Dimensions() {
		if _, ok := scores[d]; !ok {
			missing = append(missing, string(d))
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("judgment missing scores for: %s", strings.Join(missing, ", "))
	}

	j := &Judgment{Scores: scores, GrowthGuide: p.GrowthGuide}

	for _, imp := range p.Improvements {
		d := assess.Dimension(strings.ToLower(strings.TrimSpace(imp.Dimension)))
		if err := assess.ValidateDimension(d); err != nil {
			continue
		}
		j.Improvements = append(j.Improvements, assess.Improvement{
			Dimension:  d,
			Priority:   parsePriority(imp.Priority),
			Suggestion: imp.Suggestion,
			Example:    imp.Example,
		})
	}

	if p.Split != nil {
		j.Split = &assess.SplitSuggestion{Reason: p.Split.Reason, Parts: p.Split.Parts}
	}
	for _, c := range p.Connections {
		if c.Target == "" {
			continue
		}
		j.Connections = append(j.Connections, assess.Connection{Target: c.Target, Reason: c.Reason})
	}

	return j, nil
}

// parsePriority reads a provider-assigned priority, defaulting unknown
// values to medium.
func parsePriority(s string) assess.Priority {
	switch assess.Priority(strings.ToLower(strings.TrimSpace(s))) {
	case assess.PriorityHigh:
		return assess.PriorityHigh
	case assess.PriorityLow:
		return assess.PriorityLow
	default:
		return assess.PriorityMedium
	}
}
