// Package billing implements the hospital billing rule engine: declarative
// discount, surcharge and waiver rules evaluated against a billing context,
// applied to charged services and combined with BPJS coverage splitting into
// a final patient-responsibility amount.
package billing

import (
	"bytes"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/sehatkita/billing-engine/money"
)

// RuleType classifies the monetary direction of a rule.
type RuleType string

const (
	RuleDiscount  RuleType = "discount"
	RuleSurcharge RuleType = "surcharge"
	RuleWaiver    RuleType = "waiver"
)

// ConditionField names a fact in the billing context a condition tests.
type ConditionField string

const (
	FieldPatientType     ConditionField = "patient_type"
	FieldPayerType       ConditionField = "payer_type"
	FieldServiceCode     ConditionField = "service_code"
	FieldServiceCategory ConditionField = "service_category"
	FieldAmount          ConditionField = "amount"
	FieldAge             ConditionField = "age"
	FieldGender          ConditionField = "gender"
	FieldInsuranceType   ConditionField = "insurance_type"
)

// Operator is the comparison a condition applies to its field.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "not_equals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpBetween     Operator = "between"
)

// ActionType is the kind of monetary effect an action has.
type ActionType string

const (
	ActionPercentage ActionType = "percentage"
	ActionFixed      ActionType = "fixed"
	ActionWaive      ActionType = "waive"
)

// ActionTarget is the amount an action adjusts.
type ActionTarget string

const (
	TargetTotal    ActionTarget = "total"
	TargetSubtotal ActionTarget = "subtotal"
	TargetService  ActionTarget = "service"
)

// ValueKind tags the runtime type of a condition value.
type ValueKind int

const (
	ValueString ValueKind = iota
	ValueNumber
	ValueRange
	ValueBool
)

// ConditionValue is a tagged union over the value shapes a condition may
// carry: a string, a number, a two-element numeric range (for between), or a
// bool. The kind is fixed at unmarshal/construction time so operator
// mismatches are detectable before evaluation.
type ConditionValue struct {
	Kind ValueKind
	Str  string
	Num  decimal.Decimal
	Low  decimal.Decimal
	High decimal.Decimal
	Bool bool
}

func StringValue(s string) ConditionValue {
	return ConditionValue{Kind: ValueString, Str: s}
}

func NumberValue(n decimal.Decimal) ConditionValue {
	return ConditionValue{Kind: ValueNumber, Num: n}
}

func IntValue(n int64) ConditionValue {
	return NumberValue(decimal.NewFromInt(n))
}

func RangeValue(low, high decimal.Decimal) ConditionValue {
	return ConditionValue{Kind: ValueRange, Low: low, High: high}
}

func BoolValue(b bool) ConditionValue {
	return ConditionValue{Kind: ValueBool, Bool: b}
}

// UnmarshalJSON infers the kind from the JSON shape: quoted text is a
// string, a bare number is a number, a two-element numeric array is a range
// and true/false is a bool.
func (v *ConditionValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return fmt.Errorf("condition value cannot be empty")
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("invalid string condition value: %w", err)
		}
		*v = StringValue(s)
		return nil
	case '[':
		var pair []decimal.Decimal
		if err := json.Unmarshal(trimmed, &pair); err != nil {
			return fmt.Errorf("invalid range condition value: %w", err)
		}
		if len(pair) != 2 {
			return fmt.Errorf("range condition value must have exactly 2 elements, got %d", len(pair))
		}
		*v = RangeValue(pair[0], pair[1])
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(trimmed, &b); err != nil {
			return fmt.Errorf("invalid bool condition value: %w", err)
		}
		*v = BoolValue(b)
		return nil
	default:
		n, err := decimal.NewFromString(string(trimmed))
		if err != nil {
			return fmt.Errorf("invalid numeric condition value %q: %w", trimmed, err)
		}
		*v = NumberValue(n)
		return nil
	}
}

func (v ConditionValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueString:
		return json.Marshal(v.Str)
	case ValueNumber:
		return json.Marshal(v.Num)
	case ValueRange:
		return json.Marshal([]decimal.Decimal{v.Low, v.High})
	case ValueBool:
		return json.Marshal(v.Bool)
	default:
		return nil, fmt.Errorf("unknown condition value kind %d", v.Kind)
	}
}

// Condition tests one billing context field against a value.
type Condition struct {
	Field    ConditionField `json:"field"`
	Operator Operator       `json:"operator"`
	Value    ConditionValue `json:"value"`
}

// Action is one monetary effect of a rule. Value is a percentage in [0,100]
// for percentage actions and a rupiah amount for fixed actions; waive
// ignores both Target and Value.
type Action struct {
	Type   ActionType      `json:"type"`
	Target ActionTarget    `json:"target,omitempty"`
	Value  decimal.Decimal `json:"value"`
}

// Rule is a declarative billing adjustment. Conditions are ANDed; an empty
// condition list matches every context (the blanket-policy pattern). Lower
// priority is evaluated first.
type Rule struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Type        RuleType    `json:"rule_type"`
	Conditions  []Condition `json:"conditions"`
	Actions     []Action    `json:"actions"`
	Priority    int         `json:"priority"`
	Active      bool        `json:"is_active"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// Clone returns a deep copy so a snapshot handed to a calculation can never
// be affected by a concurrent rule edit.
func (r *Rule) Clone() *Rule {
	c := *r
	c.Conditions = make([]Condition, len(r.Conditions))
	copy(c.Conditions, r.Conditions)
	c.Actions = make([]Action, len(r.Actions))
	copy(c.Actions, r.Actions)
	return &c
}

// BillingContext is the immutable fact base a rule set is evaluated against.
type BillingContext struct {
	PatientType     string      `json:"patient_type"`
	PayerType       string      `json:"payer_type"`
	ServiceCode     string      `json:"service_code"`
	ServiceCategory string      `json:"service_category,omitempty"`
	Amount          money.Money `json:"amount"`
	Age             int         `json:"age,omitempty"`
	Gender          string      `json:"gender,omitempty"`
	InsuranceType   string      `json:"insurance_type,omitempty"`
}

// Charge is one billed service line on an encounter.
type Charge struct {
	ServiceCode string       `json:"service_code"`
	ServiceName string       `json:"service_name"`
	Category    string       `json:"category,omitempty"`
	Quantity    int64        `json:"quantity"`
	UnitPrice   money.Money  `json:"unit_price"`
	BPJSCovered bool         `json:"is_bpjs_covered"`
	BPJSTariff  *money.Money `json:"bpjs_tariff,omitempty"`
}

// LineTotal is quantity times unit price.
func (c Charge) LineTotal() money.Money {
	return c.UnitPrice.MulInt(c.Quantity)
}

// RuleOutcome reports, for one rule, whether it matched and what it did to
// the running amount. Invoicing and simulation produce the same outcomes
// through the same code path.
type RuleOutcome struct {
	RuleID         string      `json:"rule_id"`
	RuleName       string      `json:"rule_name"`
	Matched        bool        `json:"matched"`
	OriginalAmount money.Money `json:"original_amount"`
	ResultAmount   money.Money `json:"result_amount"`
	Difference     money.Money `json:"difference"`
}

// InvoiceLine is the per-charge breakdown on a calculated invoice.
type InvoiceLine struct {
	ServiceCode  string      `json:"service_code"`
	ServiceName  string      `json:"service_name"`
	Category     string      `json:"category,omitempty"`
	Quantity     int64       `json:"quantity"`
	UnitPrice    money.Money `json:"unit_price"`
	LineTotal    money.Money `json:"line_total"`
	BPJSCovered  bool        `json:"is_bpjs_covered"`
	BPJSShare    money.Money `json:"bpjs_share"`
	PatientShare money.Money `json:"patient_share"`
}

// InvoiceResult is the outcome of a full invoice calculation. The totals
// satisfy PatientResponsibility = Subtotal - TotalDiscount - BPJSCoverage,
// with PatientResponsibility clamped at zero. TotalDiscount is negative when
// surcharges outweigh discounts.
type InvoiceResult struct {
	Items                 []InvoiceLine `json:"items"`
	Subtotal              money.Money   `json:"subtotal"`
	TotalDiscount         money.Money   `json:"total_discount"`
	BPJSCoverage          money.Money   `json:"bpjs_coverage"`
	PatientResponsibility money.Money   `json:"patient_responsibility"`
	Outcomes              []RuleOutcome `json:"outcomes"`
	Warnings              []Warning     `json:"warnings,omitempty"`
}
