package cart

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mfachry/kart/internal/condition"
	"github.com/mfachry/kart/internal/events"
	"github.com/mfachry/kart/internal/item"
)

// Input describes an item to add. Price and Quantity are optional when
// derivable (price_percent, quantity_percent, or a sub-unit breakdown).
type Input struct {
	ID         string
	Name       string
	Price      *decimal.Decimal
	Quantity   *int
	Unit       string
	Attributes item.Attributes
	Conditions []*condition.Condition
	Taxes      []*condition.Condition
	Quantities []item.SubQuantity
}

// Add validates and inserts one or more items. Adding an id already in the
// cart routes through Update with merge semantics, the supplied quantity
// treated as a relative increment. Validation happens before any mutation;
// on failure the ledger is untouched. The returned bool is false when a
// lifecycle listener vetoed the mutation.
func (c *Cart) Add(ctx context.Context, inputs ...Input) (bool, error) {
	ok := true
	for _, in := range inputs {
		proceeded, err := c.addOne(ctx, in)
		if err != nil {
			return false, err
		}
		ok = ok && proceeded
	}
	return ok, nil
}

func (c *Cart) addOne(ctx context.Context, in Input) (bool, error) {
	ledger, err := c.Content(ctx)
	if err != nil {
		return false, err
	}
	it, err := c.buildItem(ledger, in)
	if err != nil {
		return false, err
	}

	if ledger.Has(in.ID) {
		upd := Update{
			Name:       &it.Name,
			Price:      &it.Price,
			Quantity:   &QuantityUpdate{Relative: true, Value: it.Quantity},
			Unit:       &it.Unit,
			Attributes: it.Attributes,
			Conditions: it.Conditions,
			Taxes:      it.Taxes,
			Quantities: it.Quantities,
		}
		return c.Update(ctx, in.ID, upd)
	}

	if !c.fire(ctx, events.TopicAdding, it) {
		return false, nil
	}
	ledger.Put(it)
	if err := c.saveLedger(ctx, ledger); err != nil {
		return false, err
	}
	c.fire(ctx, events.TopicAdded, it)
	return true, nil
}

// GroupInput describes a group container: an id and name with optional
// metadata, but no price or quantity.
type GroupInput struct {
	ID         string
	Name       string
	Attributes item.Attributes
	Conditions []*condition.Condition
	Taxes      []*condition.Condition
}

// AddGroup inserts one or more group containers. Group containers cluster
// child items via the group_id attribute and never contribute to totals.
func (c *Cart) AddGroup(ctx context.Context, inputs ...GroupInput) (bool, error) {
	ok := true
	for _, in := range inputs {
		if in.ID == "" {
			return false, fmt.Errorf("group id is required: %w", ErrInvalidItem)
		}
		if in.Name == "" {
			return false, fmt.Errorf("group %q: name is required: %w", in.ID, ErrInvalidItem)
		}
		ledger, err := c.Content(ctx)
		if err != nil {
			return false, err
		}
		it := &item.Item{
			ID:         in.ID,
			Name:       in.Name,
			Attributes: in.Attributes.Clone(),
			Conditions: in.Conditions,
			Taxes:      in.Taxes,
			Group:      true,
		}
		if ledger.Has(in.ID) {
			proceeded, err := c.Update(ctx, in.ID, Update{
				Name:       &it.Name,
				Attributes: it.Attributes,
				Conditions: it.Conditions,
				Taxes:      it.Taxes,
			})
			if err != nil {
				return false, err
			}
			ok = ok && proceeded
			continue
		}
		if !c.fire(ctx, events.TopicAdding, it) {
			ok = false
			continue
		}
		ledger.Put(it)
		if err := c.saveLedger(ctx, ledger); err != nil {
			return false, err
		}
		c.fire(ctx, events.TopicAdded, it)
	}
	return ok, nil
}

// buildItem validates the input against the current ledger and resolves
// derived values: the sub-unit quantity breakdown first, then price_percent,
// then quantity_percent. Percent derivations are one-shot; later changes to
// the referenced item do not propagate.
func (c *Cart) buildItem(ledger *item.Ledger, in Input) (*item.Item, error) {
	if in.ID == "" {
		return nil, fmt.Errorf("item id is required: %w", ErrInvalidItem)
	}
	if in.Name == "" {
		return nil, fmt.Errorf("item %q: name is required: %w", in.ID, ErrInvalidItem)
	}

	attrs := in.Attributes.Clone()
	pricePct, hasPricePct := attrs.PricePercent()
	qtyPct, hasQtyPct := attrs.QuantityPercent()

	if in.Price == nil && !hasPricePct {
		return nil, fmt.Errorf("item %q: price is required or derivable via price_percent: %w", in.ID, ErrInvalidItem)
	}
	if in.Price != nil && in.Price.IsNegative() {
		return nil, fmt.Errorf("item %q: price must not be negative: %w", in.ID, ErrInvalidItem)
	}
	if in.Quantity == nil && len(in.Quantities) == 0 && !hasQtyPct {
		return nil, fmt.Errorf("item %q: quantity is required or derivable: %w", in.ID, ErrInvalidItem)
	}
	if in.Quantity != nil && *in.Quantity < 1 {
		return nil, fmt.Errorf("item %q: quantity must be at least 1: %w", in.ID, ErrInvalidItem)
	}
	for _, sq := range in.Quantities {
		if sq.Quantity < 1 {
			return nil, fmt.Errorf("item %q: sub-quantities must be at least 1: %w", in.ID, ErrInvalidItem)
		}
	}

	if groupID := attrs.GroupID(); groupID != "" {
		if !contains(ledger.GroupContainerIDs(), groupID) {
			return nil, fmt.Errorf("item %q: group %q does not exist: %w", in.ID, groupID, ErrInvalidGroup)
		}
	}
	if depID := attrs.DependentID(); depID != "" {
		if !contains(ledger.DependableIDs(), depID) {
			return nil, fmt.Errorf("item %q: dependent %q does not exist: %w", in.ID, depID, ErrInvalidDependent)
		}
	}

	it := &item.Item{
		ID:         in.ID,
		Name:       in.Name,
		Unit:       in.Unit,
		Attributes: attrs,
		Conditions: in.Conditions,
		Taxes:      in.Taxes,
		Quantities: append([]item.SubQuantity(nil), in.Quantities...),
	}
	if in.Price != nil {
		it.Price = *in.Price
	}
	if in.Quantity != nil {
		it.Quantity = *in.Quantity
	}
	it.DeriveQuantities()

	if hasPricePct {
		ref := ledger.Get(pricePct.From)
		if ref == nil {
			return nil, fmt.Errorf("item %q: price_percent references unknown item %q: %w", in.ID, pricePct.From, ErrInvalidItem)
		}
		it.Price = c.Format.Round(ref.Price.Mul(pricePct.Percent).Div(decimal.NewFromInt(100)))
	}
	if hasQtyPct {
		ref := ledger.Get(qtyPct.From)
		if ref == nil {
			return nil, fmt.Errorf("item %q: quantity_percent references unknown item %q: %w", in.ID, qtyPct.From, ErrInvalidItem)
		}
		derived := decimal.NewFromInt(int64(ref.Quantity)).Mul(qtyPct.Percent).Div(decimal.NewFromInt(100))
		it.Quantity = int(derived.Round(0).IntPart())
	}
	return it, nil
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
