package billing

import (
	"github.com/sehatkita/billing-engine/money"
)

// Simulate runs a synthetic scenario through the evaluation pipeline so a
// rule author can preview, rule by rule, which rules would fire against the
// test amount and by how much. Every active rule in the set is reported,
// matched or not. The pipeline is the same one Calculate uses; simulation
// and invoicing cannot drift apart.
func Simulate(scenario BillingContext, testAmount money.Money, rules []*Rule) ([]RuleOutcome, []Warning) {
	active := make([]*Rule, 0, len(rules))
	for _, r := range rules {
		if r.Active {
			active = append(active, r)
		}
	}

	evalCtx := scenario
	if evalCtx.Amount.IsZero() {
		evalCtx.Amount = testAmount
	}

	_, outcomes, warnings := applyToAmount(active, evalCtx, testAmount)
	return outcomes, warnings
}
