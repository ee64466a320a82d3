package primary

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseCandidate extracts a Candidate from model output. It accepts the claude
// CLI JSON envelope ({"result":"..."}), strips accidental code fences and
// tolerates prose around a single JSON object.
func ParseCandidate(raw string) (*Candidate, error) {
	text := extractResultField(raw)
	text = stripCodeFences(text)

	var c Candidate
	if err := json.Unmarshal([]byte(text), &c); err != nil {
		obj, ok := outermostObject(text)
		if !ok {
			return nil, fmt.Errorf("%w: invalid JSON: %s", ErrMalformed, err)
		}
		if err := json.Unmarshal([]byte(obj), &c); err != nil {
			return nil, fmt.Errorf("%w: invalid JSON: %s", ErrMalformed, err)
		}
	}

	if strings.TrimSpace(c.Domain) == "" {
		return nil, fmt.Errorf("%w: empty domain", ErrMalformed)
	}
	if strings.TrimSpace(c.DiagramType) == "" {
		return nil, fmt.Errorf("%w: empty diagram_type", ErrMalformed)
	}

	return &c, nil
}

// extractResultField unwraps claude's {"result":"..."} envelope.
// Falls back to the raw string if parsing fails.
func extractResultField(raw string) string {
	var envelope struct {
		Result string `json:"result"`
	}
	if err := json.Unmarshal([]byte(raw), &envelope); err != nil {
		return raw
	}
	if envelope.Result == "" {
		return raw
	}
	return envelope.Result
}

// stripCodeFences removes markdown code fences wrapping JSON.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
	}
	return strings.TrimSpace(s)
}

func outermostObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end <= start {
		return "", false
	}
	return s[start : end+1], true
}
