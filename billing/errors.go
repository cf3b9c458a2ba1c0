package billing

import (
	"fmt"
	"strings"
)

// Warning is a non-fatal data-quality finding recorded while evaluating
// rules: a malformed condition, an operator/type mismatch, an unparseable
// value. A warned rule is treated as non-matching; it never aborts the
// calculation.
type Warning struct {
	RuleID  string         `json:"rule_id,omitempty"`
	Field   ConditionField `json:"field,omitempty"`
	Message string         `json:"message"`
}

func (w Warning) String() string {
	if w.RuleID == "" {
		return w.Message
	}
	return fmt.Sprintf("rule %s: %s", w.RuleID, w.Message)
}

// ChargeProblem identifies one invalid charge by its position in the input.
type ChargeProblem struct {
	Index       int    `json:"index"`
	ServiceCode string `json:"service_code,omitempty"`
	Reason      string `json:"reason"`
}

// ChargeValidationError rejects an invoice calculation before any rule
// evaluation runs. It lists every offending charge so the caller can fix
// them all at once.
type ChargeValidationError struct {
	Problems []ChargeProblem
}

func (e *ChargeValidationError) Error() string {
	parts := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		if p.ServiceCode != "" {
			parts[i] = fmt.Sprintf("charge %d (%s): %s", p.Index, p.ServiceCode, p.Reason)
		} else {
			parts[i] = fmt.Sprintf("charge %d: %s", p.Index, p.Reason)
		}
	}
	return "invalid charges: " + strings.Join(parts, "; ")
}
