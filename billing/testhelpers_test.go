package billing

import (
	"github.com/shopspring/decimal"

	"github.com/sehatkita/billing-engine/money"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func rp(n int64) money.Money {
	return money.FromInt(n)
}

func percentDiscount(id, name string, priority int, pct int64) *Rule {
	return &Rule{
		ID:       id,
		Name:     name,
		Type:     RuleDiscount,
		Priority: priority,
		Active:   true,
		Actions: []Action{
			{Type: ActionPercentage, Target: TargetTotal, Value: decimal.NewFromInt(pct)},
		},
	}
}

func waiverRule(id, name string, priority int) *Rule {
	return &Rule{
		ID:       id,
		Name:     name,
		Type:     RuleWaiver,
		Priority: priority,
		Active:   true,
		Actions:  []Action{{Type: ActionWaive}},
	}
}
