package billing

import (
	"github.com/sehatkita/billing-engine/money"
)

// Apply runs the resolved rules against the target amount in priority
// order. Each rule's actions compound against the current running amount,
// not the original, so a lower-priority discount applies to an already
// discounted base. A waive action zeroes the amount and short-circuits:
// nothing after it is applied, though every resolved rule still receives an
// outcome so callers can show the full picture.
//
// The running amount keeps full decimal precision; reported outcome amounts
// and the returned final amount are rounded to whole rupiah, half up, so
// rounding happens once per step boundary instead of compounding inside the
// chain.
func Apply(resolved []*Rule, amount money.Money) (money.Money, []RuleOutcome) {
	current := amount
	waived := false
	outcomes := make([]RuleOutcome, 0, len(resolved))

	for _, r := range resolved {
		if waived {
			outcomes = append(outcomes, RuleOutcome{
				RuleID:         r.ID,
				RuleName:       r.Name,
				Matched:        true,
				OriginalAmount: money.Zero(),
				ResultAmount:   money.Zero(),
				Difference:     money.Zero(),
			})
			continue
		}

		next, didWaive := applyRule(r, current)
		original := current.Round()
		result := next.Round()
		outcomes = append(outcomes, RuleOutcome{
			RuleID:         r.ID,
			RuleName:       r.Name,
			Matched:        true,
			OriginalAmount: original,
			ResultAmount:   result,
			Difference:     original.Sub(result),
		})

		current = next
		waived = didWaive
	}

	return current.Round(), outcomes
}

// applyRule computes the effect of one rule's actions on the running
// amount. Surcharge rules add where discount rules subtract; fixed
// discounts clamp at zero. Returns the new amount and whether a waive
// action fired.
func applyRule(r *Rule, current money.Money) (money.Money, bool) {
	surcharge := r.Type == RuleSurcharge

	for _, a := range r.Actions {
		switch a.Type {
		case ActionWaive:
			return money.Zero(), true
		case ActionPercentage:
			delta := current.Percent(a.Value)
			if surcharge {
				current = current.Add(delta)
			} else {
				current = current.Sub(delta)
			}
		case ActionFixed:
			delta := money.New(a.Value)
			if surcharge {
				current = current.Add(delta)
			} else {
				current = current.Sub(delta).ClampZero()
			}
		}
	}
	return current, false
}

// applyToAmount is the shared pipeline behind invoice calculation and
// simulation: resolve the matching rules, apply them, then merge so that
// every rule in the snapshot gets an outcome, matched or not. Unmatched
// rules report the running amount untouched with a zero difference.
func applyToAmount(rules []*Rule, ctx BillingContext, amount money.Money) (money.Money, []RuleOutcome, []Warning) {
	resolved, warnings := Resolve(rules, ctx)
	final, applied := Apply(resolved, amount)

	appliedIdx := make(map[string]int, len(resolved))
	for i, r := range resolved {
		appliedIdx[r.ID] = i
	}

	ordered := make([]*Rule, len(rules))
	copy(ordered, rules)
	sortByPriority(ordered)

	running := amount.Round()
	outcomes := make([]RuleOutcome, 0, len(ordered))
	for _, r := range ordered {
		if i, ok := appliedIdx[r.ID]; ok {
			outcomes = append(outcomes, applied[i])
			running = applied[i].ResultAmount
			continue
		}
		outcomes = append(outcomes, RuleOutcome{
			RuleID:         r.ID,
			RuleName:       r.Name,
			Matched:        false,
			OriginalAmount: running,
			ResultAmount:   running,
			Difference:     money.Zero(),
		})
	}

	return final, outcomes, warnings
}
