package llm

import (
	"fmt"
	"strings"
)

// Intelligence selects the model tier for a request.
type Intelligence string

const (
	IntelligenceLow    Intelligence = "low"
	IntelligenceMedium Intelligence = "medium"
	IntelligenceHigh   Intelligence = "high"
)

const (
	modelStandard = "gpt-5"
	modelMini     = "gpt-5-mini"
	effortHigh    = "high"
)

// ParseIntelligence accepts low, medium or high in any case.
func ParseIntelligence(s string) (Intelligence, error) {
	switch i := Intelligence(strings.ToLower(strings.TrimSpace(s))); i {
	case IntelligenceLow, IntelligenceMedium, IntelligenceHigh:
		return i, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidIntelligence, s)
	}
}

// model returns the model name and reasoning effort for the tier. An empty
// tier is treated as medium.
func (i Intelligence) model() (string, string, error) {
	switch i {
	case IntelligenceLow:
		return modelMini, "", nil
	case IntelligenceMedium, "":
		return modelStandard, "", nil
	case IntelligenceHigh:
		return modelStandard, effortHigh, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrInvalidIntelligence, string(i))
	}
}
