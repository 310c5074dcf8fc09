// Package callout encodes an assessment into a markdown callout block and
// decodes that block back out of note content.
//
// Encode and decode share one structural grammar: a marker line holding the
// [!assessment] token, followed by contiguous lines prefixed with ">". The
// round trip is deliberately lossy for feedback text (escaped, collapsed,
// truncated) but exact for every score, so a re-opened note reconstructs
// the same totals it was saved with.
//
// Decoding never fails. A missing block yields nil — no prior assessment is
// the common case — and a malformed or hand-edited block degrades to
// defaults instead of blocking the view.
package callout

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/eohjun/cultivator/internal/assess"
)

// marker is the token that identifies an assessment block.
const marker = "[!assessment]"

// maxFeedbackLen caps how much feedback text is embedded per table row.
const maxFeedbackLen = 100

var (
	// blockPattern matches the whole block: the marker line plus every
	// contiguous ">"-prefixed continuation line.
	blockPattern = regexp.MustCompile(`(?m)^> *\[!assessment\][^\n]*(?:\n>[^\n]*)*`)

	// totalPattern pulls the composite score out of the summary line.
	totalPattern = regexp.MustCompile(`(\d+)/100`)

	// rowPattern matches one table row: dimension | score | feedback.
	// The feedback cell may contain escaped pipes.
	rowPattern = regexp.MustCompile(`^> *\| *([^|]+?) *\| *(\d+) *\| *(.*?) *\|\s*$`)
)

// Encode renders an assessment as a markdown callout block.
// The header carries the note's current stage and the assessment date, the
// summary line the total and grade, and the table one row per catalog
// dimension in catalog order.
func Encode(a *assess.Assessment) string {
	var b strings.Builder

	stage := a.CurrentMaturity
	fmt.Fprintf(&b, "> %s %s %s note · assessed %s\n",
		marker, stage.Icon(), stage.Display(), a.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "> **Quality: %d/100 · Grade %s**\n", a.Quality.Total, a.Quality.Grade())

	if a.IsUpgradeRecommended() {
		rec := a.RecommendedMaturity
		fmt.Fprintf(&b, "> Recommended: advance to %s %s\n", rec.Icon(), rec.Display())
	}

	b.WriteString(">\n")
	b.WriteString("> | Dimension | Score | Feedback |\n")
	b.WriteString("> | --- | --- | --- |\n")
	for _, d := range assess.Dimensions() {
		ds := a.Quality.Dimensions[d]
		fmt.Fprintf(&b, "> | %s %s | %d | %s |\n",
			d.Icon(), d.Display(), ds.Score, sanitizeFeedback(ds.Feedback))
	}

	return strings.TrimSuffix(b.String(), "\n")
}

// Upsert splices an encoded block into note content. An existing block is
// replaced in place; otherwise the block is appended after the trimmed
// content, separated by one blank line.
func Upsert(content string, a *assess.Assessment) string {
	block := Encode(a)

	if loc := blockPattern.FindStringIndex(content); loc != nil {
		return content[:loc[0]] + block + content[loc[1]:]
	}

	trimmed := strings.TrimRight(content, " \t\r\n")
	if trimmed == "" {
		return block + "\n"
	}
	return trimmed + "\n\n" + block + "\n"
}

// HasBlock reports whether the content contains an assessment block.
func HasBlock(content string) bool {
	return blockPattern.MatchString(content)
}

// Decode locates an assessment block in note content and reconstructs a
// best-effort assessment from it. Returns nil when no block is present.
//
// The reconstruction is tolerant: a missing total defaults to 0, an
// unrecognized stage to the recommended line's absence (lowest stage), and
// dimensions missing from the table to score 0 with empty feedback. The
// current maturity always comes back as the lowest stage — the block does
// not persist it. Improvement priorities are synthesized from score bands
// since the block does not persist the judge's priorities either.
func Decode(content string) *assess.Assessment {
	block := blockPattern.FindString(content)
	if block == "" {
		return nil
	}

	total := 0
	if m := totalPattern.FindStringSubmatch(block); m != nil {
		total = parseScore(m[1])
	}

	rows := decodeRows(block)

	scores := make([]assess.DimensionScore, 0, 5)
	var improvements []assess.Improvement
	for _, d := range assess.Dimensions() {
		row, ok := rows[d]
		if !ok {
			// A dimension missing from the table defaults to zero with
			// empty feedback; it contributes no improvement entry.
			scores = append(scores, assess.DimensionScore{Dimension: d, Score: 0})
			continue
		}
		scores = append(scores, row)
		improvements = append(improvements, assess.Improvement{
			Dimension:  d,
			Priority:   syntheticPriority(row.Score),
			Suggestion: row.Feedback,
		})
	}

	quality, err := assess.NewQualityScore(scores)
	if err != nil {
		// Unreachable: every catalog dimension was supplied above.
		return nil
	}
	// Keep the summary line's total even when it disagrees with the rows —
	// the block is the source of truth for what was displayed.
	quality.Total = total

	return assess.NewAssessment(assess.AssessmentInput{
		Quality:         quality,
		CurrentMaturity: assess.LowestStage(),
		Improvements:    improvements,
	})
}

// DecodedStage returns the stage named in a block, or the lowest stage.
// Exposed for callers that only need the stage without a full decode.
func DecodedStage(content string) assess.Stage {
	block := blockPattern.FindString(content)
	if block == "" {
		return assess.LowestStage()
	}
	return decodeStage(block)
}

// decodeStage matches stage display names against the block, highest stage
// first so "Evergreen" in a recommended line wins over the header's stage
// only when it actually outranks it. Defaults to the lowest stage.
func decodeStage(block string) assess.Stage {
	stages := assess.Stages()
	for i := len(stages) - 1; i >= 0; i-- {
		if strings.Contains(block, stages[i].Display()) {
			return stages[i]
		}
	}
	return assess.LowestStage()
}

// decodeRows parses every data row of the table, mapping each onto the
// catalog by display-name substring. Header and separator rows never match
// a catalog name and fall away on their own.
func decodeRows(block string) map[assess.Dimension]assess.DimensionScore {
	rows := make(map[assess.Dimension]assess.DimensionScore)
	for _, line := range strings.Split(block, "\n") {
		m := rowPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		d, ok := dimensionByDisplay(m[1])
		if !ok {
			continue
		}
		rows[d] = assess.DimensionScore{
			Dimension: d,
			Score:     assess.ClampScore(float64(parseScore(m[2]))),
			Feedback:  unescapeFeedback(m[3]),
		}
	}
	return rows
}

// dimensionByDisplay finds the catalog dimension whose display name appears
// in the cell text (the cell also carries the icon).
func dimensionByDisplay(cell string) (assess.Dimension, bool) {
	for _, d := range assess.Dimensions() {
		if strings.Contains(cell, d.Display()) {
			return d, true
		}
	}
	return "", false
}

// syntheticPriority derives a priority from a score band: ≥80 low,
// ≥60 medium, else high. This intentionally diverges from the judge's own
// priority assignment, which is not persisted in the block.
func syntheticPriority(score int) assess.Priority {
	switch {
	case score >= 80:
		return assess.PriorityLow
	case score >= 60:
		return assess.PriorityMedium
	default:
		return assess.PriorityHigh
	}
}

// sanitizeFeedback makes feedback safe for a table cell: pipes are escaped,
// newlines collapse to spaces, and text beyond 100 characters is truncated
// with an ellipsis. The full text survives only in the in-memory assessment.
func sanitizeFeedback(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	// Truncate before escaping so the cut can never split an escape
	// sequence and leave a dangling backslash.
	runes := []rune(s)
	if len(runes) > maxFeedbackLen {
		s = string(runes[:maxFeedbackLen]) + "…"
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

// unescapeFeedback reverses the pipe escaping applied on encode.
func unescapeFeedback(s string) string {
	return strings.ReplaceAll(s, `\|`, "|")
}

// parseScore converts a digits-only match to an int. The pattern guarantees
// digits, so overflow of absurdly long runs just saturates at a large value.
func parseScore(s string) int {
	n := 0
	for _, ch := range s {
		n = n*10 + int(ch-'0')
		if n > 1000 {
			return 1000
		}
	}
	return n
}
