package main

import (
	"github.com/sehatkita/billing-engine/billing"
	"github.com/sehatkita/billing-engine/money"
)

// API request and response models

// CalculateInvoiceRequest carries the captured encounter charges plus the
// billing context the active rules are evaluated against.
type CalculateInvoiceRequest struct {
	Charges []billing.Charge       `json:"encounter_charges"`
	Context billing.BillingContext `json:"context"`
}

// SimulateRequest is the input for the rule test preview.
type SimulateRequest struct {
	Scenario billing.BillingContext `json:"scenario"`
	Amount   money.Money            `json:"amount" validate:"required"`
}

// SimulateResponse wraps the per-rule outcomes of a simulation.
type SimulateResponse struct {
	Outcomes []billing.RuleOutcome `json:"outcomes"`
}

// RuleRequest is the body for creating or updating a rule. Deep validation
// of conditions and actions happens in the engine; the tags here only catch
// the shallow mistakes before a rule object is built.
type RuleRequest struct {
	Name        string              `json:"name" validate:"required"`
	Description string              `json:"description"`
	RuleType    billing.RuleType    `json:"rule_type" validate:"required,oneof=discount surcharge waiver"`
	Conditions  []billing.Condition `json:"conditions"`
	Actions     []billing.Action    `json:"actions" validate:"required,min=1"`
	Priority    int                 `json:"priority"`
	IsActive    *bool               `json:"is_active"`
}

// RulesListResponse is the response for listing rules.
type RulesListResponse struct {
	Rules []*billing.Rule `json:"rules"`
}

// HealthResponse is the health check body.
type HealthResponse struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}
