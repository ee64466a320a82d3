package primary

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/shahar-caura/diagroute/internal/catalog"
	"github.com/shahar-caura/diagroute/internal/diagram"
)

// maxQuestionLen caps the question bytes sent to a model.
const maxQuestionLen = 500

// BuildPrompt constructs the classification prompt for a model.
func BuildPrompt(req diagram.Request, cat *catalog.Catalog) string {
	question := truncate(strings.TrimSpace(req.Question), maxQuestionLen)

	var sb strings.Builder

	sb.WriteString(`You classify diagram requests from engineering and science assignments.
Given a question, decide which subject domain it belongs to, which kind of diagram it asks for,
and whether an AI image generator could draw it accurately.

## Domains and diagram types

`)

	for _, d := range cat.Domains {
		types := make([]string, 0, len(cat.Tools[d].Types))
		for typ := range cat.Tools[d].Types {
			types = append(types, typ)
		}
		slices.Sort(types)
		fmt.Fprintf(&sb, "- %s: %s\n", d, strings.Join(types, ", "))
	}

	fmt.Fprintf(&sb, `
## Rules

1. domain MUST be one of the domains listed above, spelled exactly.
2. Prefer a listed diagram type. If none fits, use "%s" or a new snake_case label.
3. ai_suitable is false when exact geometry, labels, values or timing matter.
4. Return ONLY bare JSON. No markdown, no code fences, no text outside the JSON.

## Output format

{"domain": "...", "diagram_type": "...", "ai_suitable": true|false, "confidence": 0.0-1.0, "reasoning": "brief explanation"}

`, diagram.GeneralDiagram)

	if req.DomainHint != "" {
		fmt.Fprintf(&sb, "## Domain hint\n\n%s\n\n", req.DomainHint)
	}

	fmt.Fprintf(&sb, "## Question\n\n%s\n", question)

	return sb.String()
}

// truncate cuts s to at most n bytes without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
