package billing

import "slices"

// Resolve selects the rules that match the context and orders them for
// application: ascending priority, ties broken by rule ID so the result is
// deterministic for identical inputs. Whether matched rules stack or
// exclude each other is not decided here; that policy lives in the
// applicator.
func Resolve(rules []*Rule, ctx BillingContext) ([]*Rule, []Warning) {
	var (
		matched  []*Rule
		warnings []Warning
	)
	for _, r := range rules {
		ok, ws := Matches(r, ctx)
		warnings = append(warnings, ws...)
		if ok {
			matched = append(matched, r)
		}
	}

	sortByPriority(matched)
	return matched, warnings
}

// sortByPriority orders rules by (priority asc, id asc).
func sortByPriority(rules []*Rule) {
	slices.SortFunc(rules, func(a, b *Rule) int {
		if a.Priority != b.Priority {
			return a.Priority - b.Priority
		}
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		default:
			return 0
		}
	})
}
