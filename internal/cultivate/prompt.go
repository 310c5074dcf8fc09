package cultivate

import (
	"fmt"
	"strings"

	"github.com/eohjun/cultivator/internal/assess"
)

// BuildPrompt renders the judging rubric for one note. The same text
// drives both paths: the configured LLM provider receives it directly,
// and the two-phase MCP flow returns it to the calling agent.
func BuildPrompt(notePath, content string) string {
	var b strings.Builder

	b.WriteString("Evaluate the quality of the following note across five dimensions.\n")
	b.WriteString("Score each dimension 0-100 and give one or two sentences of feedback per dimension.\n\n")

	b.WriteString("## Dimensions\n\n")
	for _, d := range assess.Dimensions() {
		info := d.Info()
		fmt.Fprintf(&b, "- **%s** (weight %.2f): %s\n", d, info.Weight, info.Description)
	}

	b.WriteString("\n## Response format\n\n")
	b.WriteString("Respond with a single JSON object:\n\n")
	b.WriteString("```json\n")
	b.WriteString(`{
  "scores": {
    "atomicity": {"score": 0, "feedback": ""},
    "connectivity": {"score": 0, "feedback": ""},
    "clarity": {"score": 0, "feedback": ""},
    "evidence": {"score": 0, "feedback": ""},
    "originality": {"score": 0, "feedback": ""}
  },
  "improvements": [
    {"dimension": "", "priority": "high|medium|low", "suggestion": "", "example": ""}
  ],
  "split_suggestion": {"reason": "", "parts": [""]},
  "connections": [{"target": "", "reason": ""}],
  "growth_guide": ""
}
`)
	b.WriteString("```\n\n")
	b.WriteString("Include improvements only for dimensions that genuinely need work. ")
	b.WriteString("Include split_suggestion only when the note covers more than one idea. ")
	b.WriteString("connections should name other notes this one ought to link to, if any.\n\n")

	fmt.Fprintf(&b, "## Note: %s\n\n", notePath)
	b.WriteString(content)

	return b.String()
}
