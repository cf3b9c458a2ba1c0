package billing

// Matches reports whether an entire rule applies to the context: the rule
// must be active and every condition must hold (logical AND). An empty
// condition list matches unconditionally, which is how blanket policies are
// expressed. Warnings collect any malformed conditions encountered; a
// warned condition counts as a non-match.
func Matches(r *Rule, ctx BillingContext) (bool, []Warning) {
	if !r.Active {
		return false, nil
	}

	var warnings []Warning
	for _, c := range r.Conditions {
		ok, w := evaluateCondition(c, ctx)
		if w != nil {
			w.RuleID = r.ID
			warnings = append(warnings, *w)
		}
		if !ok {
			return false, warnings
		}
	}
	return true, warnings
}
