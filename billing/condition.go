package billing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// evaluateCondition decides whether a single condition matches the context.
// Both sides are coerced to the field's declared type (string or number)
// before the operator is applied. A type/operator mismatch or unparseable
// value yields a non-match plus a warning rather than an error, so one
// malformed rule can never take down invoice generation.
func evaluateCondition(c Condition, ctx BillingContext) (bool, *Warning) {
	if num, ok := contextNumber(c.Field, ctx); ok {
		return evaluateNumeric(c, num)
	}
	if str, ok := contextString(c.Field, ctx); ok {
		return evaluateString(c, str)
	}
	return false, &Warning{
		Field:   c.Field,
		Message: fmt.Sprintf("unknown condition field %q", c.Field),
	}
}

func evaluateNumeric(c Condition, actual decimal.Decimal) (bool, *Warning) {
	switch c.Operator {
	case OpEquals, OpNotEquals, OpGreaterThan, OpLessThan:
		target, ok := coerceNumber(c.Value)
		if !ok {
			return false, &Warning{
				Field:   c.Field,
				Message: fmt.Sprintf("%s requires a numeric value for field %q", c.Operator, c.Field),
			}
		}
		switch c.Operator {
		case OpEquals:
			return actual.Equal(target), nil
		case OpNotEquals:
			return !actual.Equal(target), nil
		case OpGreaterThan:
			return actual.GreaterThan(target), nil
		default:
			return actual.LessThan(target), nil
		}
	case OpBetween:
		if c.Value.Kind != ValueRange {
			return false, &Warning{
				Field:   c.Field,
				Message: "between requires a two-element numeric value",
			}
		}
		return actual.GreaterThanOrEqual(c.Value.Low) && actual.LessThanOrEqual(c.Value.High), nil
	case OpContains:
		return false, &Warning{
			Field:   c.Field,
			Message: fmt.Sprintf("contains is not valid for numeric field %q", c.Field),
		}
	default:
		return false, &Warning{
			Field:   c.Field,
			Message: fmt.Sprintf("unknown operator %q", c.Operator),
		}
	}
}

func evaluateString(c Condition, actual string) (bool, *Warning) {
	switch c.Operator {
	case OpEquals, OpNotEquals, OpContains:
		target, ok := coerceString(c.Value)
		if !ok {
			return false, &Warning{
				Field:   c.Field,
				Message: fmt.Sprintf("%s requires a string value for field %q", c.Operator, c.Field),
			}
		}
		switch c.Operator {
		case OpEquals:
			return actual == target, nil
		case OpNotEquals:
			return actual != target, nil
		default:
			return strings.Contains(strings.ToLower(actual), strings.ToLower(target)), nil
		}
	case OpGreaterThan, OpLessThan, OpBetween:
		return false, &Warning{
			Field:   c.Field,
			Message: fmt.Sprintf("%s is not valid for string field %q", c.Operator, c.Field),
		}
	default:
		return false, &Warning{
			Field:   c.Field,
			Message: fmt.Sprintf("unknown operator %q", c.Operator),
		}
	}
}

// contextNumber extracts the context value for numeric fields.
func contextNumber(f ConditionField, ctx BillingContext) (decimal.Decimal, bool) {
	switch f {
	case FieldAmount:
		return ctx.Amount.Decimal(), true
	case FieldAge:
		return decimal.NewFromInt(int64(ctx.Age)), true
	default:
		return decimal.Decimal{}, false
	}
}

// contextString extracts the context value for string fields.
func contextString(f ConditionField, ctx BillingContext) (string, bool) {
	switch f {
	case FieldPatientType:
		return ctx.PatientType, true
	case FieldPayerType:
		return ctx.PayerType, true
	case FieldServiceCode:
		return ctx.ServiceCode, true
	case FieldServiceCategory:
		return ctx.ServiceCategory, true
	case FieldGender:
		return ctx.Gender, true
	case FieldInsuranceType:
		return ctx.InsuranceType, true
	default:
		return "", false
	}
}

// coerceNumber accepts a number directly or a string that parses as one.
func coerceNumber(v ConditionValue) (decimal.Decimal, bool) {
	switch v.Kind {
	case ValueNumber:
		return v.Num, true
	case ValueString:
		d, err := decimal.NewFromString(strings.TrimSpace(v.Str))
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	default:
		return decimal.Decimal{}, false
	}
}

// coerceString accepts a string directly, or renders a number or bool.
func coerceString(v ConditionValue) (string, bool) {
	switch v.Kind {
	case ValueString:
		return v.Str, true
	case ValueNumber:
		return v.Num.String(), true
	case ValueBool:
		return strconv.FormatBool(v.Bool), true
	default:
		return "", false
	}
}
