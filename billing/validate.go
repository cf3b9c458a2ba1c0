package billing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// ValidateRule checks a rule at construction time so type/operator
// mismatches are rejected when the rule is authored instead of silently
// skipped when an invoice is calculated. The engine runs this on every
// Add and Update.
func ValidateRule(r *Rule) error {
	if r.ID == "" {
		return fmt.Errorf("rule id cannot be empty")
	}
	if r.Name == "" {
		return fmt.Errorf("rule name cannot be empty")
	}

	switch r.Type {
	case RuleDiscount, RuleSurcharge, RuleWaiver:
	default:
		return fmt.Errorf("invalid rule type %q (must be one of: discount, surcharge, waiver)", r.Type)
	}

	if r.Active && len(r.Actions) == 0 {
		return fmt.Errorf("active rule must have at least one action")
	}

	for i, c := range r.Conditions {
		if err := validateCondition(c); err != nil {
			return fmt.Errorf("condition %d: %w", i, err)
		}
	}

	for i, a := range r.Actions {
		if err := validateAction(r.Type, a); err != nil {
			return fmt.Errorf("action %d: %w", i, err)
		}
	}

	return nil
}

func validateCondition(c Condition) error {
	numericField := c.Field == FieldAmount || c.Field == FieldAge

	switch c.Field {
	case FieldPatientType, FieldPayerType, FieldServiceCode, FieldServiceCategory,
		FieldAmount, FieldAge, FieldGender, FieldInsuranceType:
	default:
		return fmt.Errorf("invalid field %q", c.Field)
	}

	switch c.Operator {
	case OpEquals, OpNotEquals:
		// Any scalar value works; coercion handles the rest.
		if c.Value.Kind == ValueRange {
			return fmt.Errorf("%s cannot take a range value", c.Operator)
		}
	case OpContains:
		if numericField {
			return fmt.Errorf("contains requires a string field, got %q", c.Field)
		}
		if _, ok := coerceString(c.Value); !ok {
			return fmt.Errorf("contains requires a string value")
		}
	case OpGreaterThan, OpLessThan:
		if !numericField {
			return fmt.Errorf("%s requires a numeric field, got %q", c.Operator, c.Field)
		}
		if _, ok := coerceNumber(c.Value); !ok {
			return fmt.Errorf("%s requires a numeric value", c.Operator)
		}
	case OpBetween:
		if !numericField {
			return fmt.Errorf("between requires a numeric field, got %q", c.Field)
		}
		if c.Value.Kind != ValueRange {
			return fmt.Errorf("between requires a two-element numeric value")
		}
		if c.Value.Low.GreaterThan(c.Value.High) {
			return fmt.Errorf("between range is inverted: %s > %s", c.Value.Low, c.Value.High)
		}
	default:
		return fmt.Errorf("invalid operator %q", c.Operator)
	}

	return nil
}

func validateAction(ruleType RuleType, a Action) error {
	switch a.Type {
	case ActionPercentage:
		if a.Value.IsNegative() || a.Value.GreaterThan(hundred) {
			return fmt.Errorf("percentage value %s must be between 0 and 100", a.Value)
		}
	case ActionFixed:
		if a.Value.IsNegative() {
			return fmt.Errorf("fixed value %s cannot be negative", a.Value)
		}
	case ActionWaive:
		// Waive ignores target and value.
	default:
		return fmt.Errorf("invalid action type %q (must be one of: percentage, fixed, waive)", a.Type)
	}

	if ruleType == RuleWaiver && a.Type != ActionWaive {
		return fmt.Errorf("waiver rule can only carry waive actions, got %q", a.Type)
	}

	if a.Type != ActionWaive {
		switch a.Target {
		case TargetTotal, TargetSubtotal, TargetService:
		default:
			return fmt.Errorf("invalid action target %q (must be one of: total, subtotal, service)", a.Target)
		}
	}

	return nil
}
