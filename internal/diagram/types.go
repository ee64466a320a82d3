package diagram

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// GeneralDiagram is the diagram type used when nothing more specific applies.
const GeneralDiagram = "general_diagram"

var labelRe = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// CanonicalLabel lowercases s and joins its words with underscores
// ("Timing Diagram" becomes "timing_diagram"). It reports false when the
// result is not a snake_case label.
func CanonicalLabel(s string) (string, bool) {
	s = strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == ' ' || r == '-' || r == '\t'
	}), "_")
	return s, labelRe.MatchString(s)
}

// Source records which classifier produced a Result.
type Source string

const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
)

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	return s == SourcePrimary || s == SourceFallback
}

// ErrInvalidResult indicates a Result was constructed with missing or invalid fields.
var ErrInvalidResult = errors.New("invalid classification result")

// Request is a single diagram request: the question text and an optional domain hint.
type Request struct {
	Question   string `json:"question" yaml:"question"`
	DomainHint string `json:"domain_hint,omitempty" yaml:"hint,omitempty"`
}

// Blank reports whether the question has no content worth classifying.
func (r Request) Blank() bool {
	return strings.TrimSpace(r.Question) == ""
}

// Mapping is a rendering backend: the tool and the library it renders with.
type Mapping struct {
	Tool string `json:"tool" yaml:"tool"`
	Lib  string `json:"lib" yaml:"lib"`
}

// Result is the routing decision handed to the renderer dispatcher.
// Field names are part of the wire format.
type Result struct {
	Domain        string `json:"domain"`
	DiagramType   string `json:"diagram_type"`
	PreferredTool string `json:"preferred_tool"`
	Lib           string `json:"lib"`
	AISuitable    bool   `json:"ai_suitable"`
	Source        Source `json:"source"`
}

// NewResult builds a Result, rejecting empty required fields and unknown sources.
func NewResult(domain, diagramType string, m Mapping, aiSuitable bool, src Source) (Result, error) {
	var errs []error
	if domain == "" {
		errs = append(errs, errors.New("domain is required"))
	}
	if diagramType == "" {
		errs = append(errs, errors.New("diagram_type is required"))
	}
	if m.Tool == "" {
		errs = append(errs, errors.New("preferred_tool is required"))
	}
	if m.Lib == "" {
		errs = append(errs, errors.New("lib is required"))
	}
	if !src.Valid() {
		errs = append(errs, fmt.Errorf("unknown source %q", src))
	}
	if err := errors.Join(errs...); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidResult, err)
	}

	return Result{
		Domain:        domain,
		DiagramType:   diagramType,
		PreferredTool: m.Tool,
		Lib:           m.Lib,
		AISuitable:    aiSuitable,
		Source:        src,
	}, nil
}

// Mapping returns the rendering backend recorded in r.
func (r Result) Mapping() Mapping {
	return Mapping{Tool: r.PreferredTool, Lib: r.Lib}
}
