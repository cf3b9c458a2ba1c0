package billing

import (
	"github.com/sehatkita/billing-engine/money"
)

// Calculate produces the final invoice for a set of charged services:
// subtotal, BPJS coverage split, rule effects on the patient-payable
// remainder and the clamped patient responsibility.
//
// Charges are validated first; a negative quantity or price fails fast with
// a ChargeValidationError listing every offender, before any rule runs. An
// empty charge list is a valid degenerate case and yields a zero-valued
// result. Malformed rules are skipped and surfaced as warnings on the
// result, never as a hard failure.
func Calculate(charges []Charge, ctx BillingContext, rules []*Rule) (*InvoiceResult, error) {
	if err := validateCharges(charges); err != nil {
		return nil, err
	}

	if len(charges) == 0 {
		return &InvoiceResult{
			Items:    []InvoiceLine{},
			Outcomes: []RuleOutcome{},
		}, nil
	}

	subtotal := money.Zero()
	coverage := money.Zero()
	items := make([]InvoiceLine, 0, len(charges))

	for _, ch := range charges {
		lineTotal := ch.LineTotal()
		subtotal = subtotal.Add(lineTotal)

		// Coverage never exceeds the billed amount for the charge.
		share := money.Zero()
		if ch.BPJSCovered && ch.BPJSTariff != nil {
			share = ch.BPJSTariff.Min(lineTotal).ClampZero()
		}
		coverage = coverage.Add(share)

		items = append(items, InvoiceLine{
			ServiceCode:  ch.ServiceCode,
			ServiceName:  ch.ServiceName,
			Category:     ch.Category,
			Quantity:     ch.Quantity,
			UnitPrice:    ch.UnitPrice,
			LineTotal:    lineTotal.Round(),
			BPJSCovered:  ch.BPJSCovered,
			BPJSShare:    share.Round(),
			PatientShare: lineTotal.Sub(share).Round(),
		})
	}

	coverage = coverage.Min(subtotal)
	remainder := subtotal.Sub(coverage)

	// Amount conditions compare against the context amount; callers that
	// leave it unset get the invoice subtotal.
	evalCtx := ctx
	if evalCtx.Amount.IsZero() {
		evalCtx.Amount = subtotal
	}

	final, outcomes, warnings := applyToAmount(rules, evalCtx, remainder)
	patient := final.ClampZero()

	roundedSubtotal := subtotal.Round()
	roundedCoverage := coverage.Round()

	return &InvoiceResult{
		Items:        items,
		Subtotal:     roundedSubtotal,
		BPJSCoverage: roundedCoverage,
		// Derived so the identity subtotal - discount - coverage =
		// responsibility holds exactly; surcharges make it negative.
		TotalDiscount:         roundedSubtotal.Sub(roundedCoverage).Sub(patient),
		PatientResponsibility: patient,
		Outcomes:              outcomes,
		Warnings:              warnings,
	}, nil
}

func validateCharges(charges []Charge) error {
	var problems []ChargeProblem
	for i, ch := range charges {
		if ch.Quantity < 0 {
			problems = append(problems, ChargeProblem{
				Index:       i,
				ServiceCode: ch.ServiceCode,
				Reason:      "quantity cannot be negative",
			})
		}
		if ch.UnitPrice.IsNegative() {
			problems = append(problems, ChargeProblem{
				Index:       i,
				ServiceCode: ch.ServiceCode,
				Reason:      "unit price cannot be negative",
			})
		}
		if ch.BPJSTariff != nil && ch.BPJSTariff.IsNegative() {
			problems = append(problems, ChargeProblem{
				Index:       i,
				ServiceCode: ch.ServiceCode,
				Reason:      "bpjs tariff cannot be negative",
			})
		}
	}
	if len(problems) > 0 {
		return &ChargeValidationError{Problems: problems}
	}
	return nil
}
