package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/mfachry/kart/internal/condition"
	"github.com/mfachry/kart/internal/item"
)

// Totals carries the aggregate bounds of a cart figure. Value is set only
// when the maximum and minimum bounds coincide; otherwise the figure is
// undecided until the buyer resolves alternative and optional choices.
type Totals struct {
	Value *decimal.Decimal
	Max   decimal.Decimal
	Min   decimal.Decimal
}

// TotalsOf wraps a bound pair, collapsing Value when the bounds agree.
func TotalsOf(max, min decimal.Decimal) Totals {
	t := Totals{Max: max, Min: min}
	if max.Equal(min) {
		v := min
		t.Value = &v
	}
	return t
}

// Bounds folds the scoped items into a maximum and minimum aggregate.
//
// Maximum: every item contributes its conditioned price sum, except that an
// alternative group contributes only its most expensive member, once.
// Minimum: same walk, but optional items contribute nothing and an
// alternative group contributes its cheapest member. Group containers carry
// no price or quantity and therefore contribute zero to both bounds.
//
// Alternative groups are resolved against the full ledger, while the fold
// itself runs over the scoped subset. The two coincide except for group
// subtotals, where an alternative member inside the group can be undercut by
// a sibling outside it.
func Bounds(ledger *item.Ledger, items []*item.Item) (max, min decimal.Decimal) {
	seen := make(map[string]struct{})
	for _, it := range items {
		if !it.HasAlternatives() {
			max = max.Add(it.PriceSumWithConditions())
			continue
		}
		if _, done := seen[it.ID]; done {
			continue
		}
		group := ledger.Alternatives(it)
		best := it.PriceSumWithConditions()
		for _, alt := range group {
			seen[alt.ID] = struct{}{}
			if sum := alt.PriceSumWithConditions(); sum.GreaterThan(best) {
				best = sum
			}
		}
		max = max.Add(best)
	}

	seen = make(map[string]struct{})
	for _, it := range items {
		if it.IsOption() {
			continue
		}
		if !it.HasAlternatives() {
			min = min.Add(it.PriceSumWithConditions())
			continue
		}
		if _, done := seen[it.ID]; done {
			continue
		}
		group := ledger.Alternatives(it)
		cheapest := it.PriceSumWithConditions()
		for _, alt := range group {
			seen[alt.ID] = struct{}{}
			if sum := alt.PriceSumWithConditions(); sum.LessThan(cheapest) {
				cheapest = sum
			}
		}
		min = min.Add(cheapest)
	}
	return max, min
}

// Apply runs each condition over both bounds sequentially. Every condition
// receives the running result of the previous one, so percentages compound.
func Apply(conds []*condition.Condition, max, min decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	for _, c := range conds {
		max = c.Apply(max)
		min = c.Apply(min)
	}
	return max, min
}
