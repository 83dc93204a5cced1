package cart

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mfachry/kart/internal/condition"
	"github.com/mfachry/kart/internal/pricing"
)

// GetSubTotal aggregates the ledger into min/max bounds and applies the
// cart-scoped conditions and taxes targeted at the subtotal, in set order,
// conditions before taxes.
func (c *Cart) GetSubTotal(ctx context.Context) (pricing.Totals, error) {
	max, min, err := c.subTotalBounds(ctx)
	if err != nil {
		return pricing.Totals{}, err
	}
	return c.formatTotals(pricing.TotalsOf(max, min)), nil
}

// GetTotal applies the total-targeted cart conditions and taxes on top of
// the subtotal bounds. Without any total-targeted adjustments the subtotal
// passes through unchanged.
func (c *Cart) GetTotal(ctx context.Context) (pricing.Totals, error) {
	max, min, err := c.subTotalBounds(ctx)
	if err != nil {
		return pricing.Totals{}, err
	}
	conds, taxes, err := c.cartAdjustments(ctx, condition.TargetTotal)
	if err != nil {
		return pricing.Totals{}, err
	}
	max, min = pricing.Apply(conds, max, min)
	max, min = pricing.Apply(taxes, max, min)
	return c.formatTotals(pricing.TotalsOf(max, min)), nil
}

// GetGroupSubTotal aggregates only the items belonging to the given group
// container. Cart-level adjustments are not applied; group figures are raw
// pre-adjustment aggregates.
func (c *Cart) GetGroupSubTotal(ctx context.Context, groupID string) (pricing.Totals, error) {
	ledger, err := c.Content(ctx)
	if err != nil {
		return pricing.Totals{}, err
	}
	max, min := pricing.Bounds(ledger, ledger.Group(groupID))
	return c.formatTotals(pricing.TotalsOf(max, min)), nil
}

// GetSubTotalWithoutConditions sums raw price times quantity over the whole
// ledger, ignoring conditions, taxes and the alternative/optional rules.
func (c *Cart) GetSubTotalWithoutConditions(ctx context.Context) (decimal.Decimal, error) {
	ledger, err := c.Content(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	sum := decimal.Zero
	for _, it := range ledger.All() {
		sum = sum.Add(it.PriceSum())
	}
	return c.Format.Value(sum), nil
}

// subTotalBounds computes the raw subtotal bounds: ledger aggregation plus
// the subtotal-targeted cart adjustments.
func (c *Cart) subTotalBounds(ctx context.Context) (decimal.Decimal, decimal.Decimal, error) {
	ledger, err := c.Content(ctx)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	max, min := pricing.Bounds(ledger, ledger.All())
	conds, taxes, err := c.cartAdjustments(ctx, condition.TargetSubtotal)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	max, min = pricing.Apply(conds, max, min)
	max, min = pricing.Apply(taxes, max, min)
	return max, min, nil
}

// cartAdjustments loads the cart-scoped conditions and taxes filtered to a
// target, each in order-sorted sequence.
func (c *Cart) cartAdjustments(ctx context.Context, target string) ([]*condition.Condition, []*condition.Condition, error) {
	condSet, err := c.conditionsSet(ctx)
	if err != nil {
		return nil, nil, err
	}
	taxSet, err := c.taxesSet(ctx)
	if err != nil {
		return nil, nil, err
	}
	return condSet.ByTarget(target), taxSet.ByTarget(target), nil
}

func (c *Cart) formatTotals(t pricing.Totals) pricing.Totals {
	t.Max = c.Format.Value(t.Max)
	t.Min = c.Format.Value(t.Min)
	if t.Value != nil {
		v := c.Format.Value(*t.Value)
		t.Value = &v
	}
	return t
}
