package cart

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mfachry/kart/internal/condition"
	"github.com/mfachry/kart/internal/events"
	"github.com/mfachry/kart/internal/item"
)

// QuantityUpdate selects between a relative adjustment and an absolute
// replacement of an item's quantity.
type QuantityUpdate struct {
	Relative bool
	Value    int
}

// ParseQuantity interprets a raw quantity token from an update payload.
// Strings prefixed with "+" or "-" and bare numbers adjust relative to the
// current quantity; use an explicit QuantityUpdate for absolute replacement.
func ParseQuantity(v any) (*QuantityUpdate, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case QuantityUpdate:
		return &t, nil
	case *QuantityUpdate:
		return t, nil
	case int:
		return &QuantityUpdate{Relative: true, Value: t}, nil
	case float64:
		return &QuantityUpdate{Relative: true, Value: int(t)}, nil
	case string:
		s := strings.TrimSpace(t)
		n, err := strconv.Atoi(strings.TrimPrefix(s, "+"))
		if err != nil {
			return nil, fmt.Errorf("quantity %q is not numeric: %w", t, ErrInvalidItem)
		}
		return &QuantityUpdate{Relative: true, Value: n}, nil
	default:
		return nil, fmt.Errorf("unsupported quantity value: %w", ErrInvalidItem)
	}
}

// Update carries the fields of a merge update. Nil fields leave the item
// untouched; a non-nil empty Conditions or Taxes slice clears them.
type Update struct {
	Name       *string
	Price      *decimal.Decimal
	Quantity   *QuantityUpdate
	Unit       *string
	Attributes item.Attributes
	Conditions []*condition.Condition
	Taxes      []*condition.Condition
	Quantities []item.SubQuantity
}

// Update merges the provided fields into an existing item. A relative
// quantity decrease that would reach zero or below is silently ignored. The
// returned bool is false when a lifecycle listener vetoed the mutation.
func (c *Cart) Update(ctx context.Context, id string, upd Update) (bool, error) {
	if !c.fire(ctx, events.TopicUpdating, upd) {
		return false, nil
	}

	ledger, err := c.Content(ctx)
	if err != nil {
		return false, err
	}
	it := ledger.Get(id)
	if it == nil {
		return false, fmt.Errorf("item %q: %w", id, ErrItemNotFound)
	}
	it = it.Clone()

	if upd.Name != nil {
		it.Name = *upd.Name
	}
	if upd.Price != nil {
		if upd.Price.IsNegative() {
			return false, fmt.Errorf("item %q: price must not be negative: %w", id, ErrInvalidItem)
		}
		it.Price = *upd.Price
	}
	if upd.Unit != nil {
		it.Unit = *upd.Unit
	}
	if upd.Attributes != nil {
		if groupID := upd.Attributes.GroupID(); groupID != "" && !contains(ledger.GroupContainerIDs(), groupID) {
			return false, fmt.Errorf("item %q: group %q does not exist: %w", id, groupID, ErrInvalidGroup)
		}
		if depID := upd.Attributes.DependentID(); depID != "" && !contains(ledger.DependableIDs(), depID) {
			return false, fmt.Errorf("item %q: dependent %q does not exist: %w", id, depID, ErrInvalidDependent)
		}
		it.Attributes = upd.Attributes.Clone()
	}
	if upd.Conditions != nil {
		it.Conditions = upd.Conditions
	}
	if upd.Taxes != nil {
		it.Taxes = upd.Taxes
	}
	if upd.Quantity != nil {
		applyQuantity(it, *upd.Quantity)
		c.fire(ctx, events.TopicQuantityUpdated, upd)
	}
	if upd.Quantities != nil {
		it.Quantities = append([]item.SubQuantity(nil), upd.Quantities...)
		it.DeriveQuantities()
	}
	if upd.Attributes != nil {
		if err := c.derivePercents(ledger, it); err != nil {
			return false, err
		}
	}

	ledger.Put(it)
	if err := c.saveLedger(ctx, ledger); err != nil {
		return false, err
	}
	c.fire(ctx, events.TopicUpdated, it)
	return true, nil
}

// Remove deletes an item from the cart. The returned bool is false when a
// lifecycle listener vetoed the mutation.
func (c *Cart) Remove(ctx context.Context, id string) (bool, error) {
	if !c.fire(ctx, events.TopicRemoving, id) {
		return false, nil
	}
	ledger, err := c.Content(ctx)
	if err != nil {
		return false, err
	}
	ledger.Remove(id)
	if err := c.saveLedger(ctx, ledger); err != nil {
		return false, err
	}
	c.fire(ctx, events.TopicRemoved, id)
	return true, nil
}

// Clear removes every item from the cart, leaving cart-wide conditions and
// taxes in place.
func (c *Cart) Clear(ctx context.Context) (bool, error) {
	if !c.fire(ctx, events.TopicClearing, nil) {
		return false, nil
	}
	if err := c.saveLedger(ctx, item.NewLedger()); err != nil {
		return false, err
	}
	c.fire(ctx, events.TopicCleared, nil)
	return true, nil
}

// applyQuantity performs a relative or absolute quantity update. A relative
// decrease that would leave the quantity at zero or below is ignored.
func applyQuantity(it *item.Item, upd QuantityUpdate) {
	if !upd.Relative {
		it.Quantity = upd.Value
		return
	}
	next := it.Quantity + upd.Value
	if upd.Value < 0 && next <= 0 {
		return
	}
	it.Quantity = next
}

// derivePercents re-runs the one-shot price_percent / quantity_percent
// derivations against the current ledger state.
func (c *Cart) derivePercents(ledger *item.Ledger, it *item.Item) error {
	if ref, ok := it.Attributes.PricePercent(); ok {
		src := ledger.Get(ref.From)
		if src == nil {
			return fmt.Errorf("item %q: price_percent references unknown item %q: %w", it.ID, ref.From, ErrInvalidItem)
		}
		it.Price = c.Format.Round(src.Price.Mul(ref.Percent).Div(decimal.NewFromInt(100)))
	}
	if ref, ok := it.Attributes.QuantityPercent(); ok {
		src := ledger.Get(ref.From)
		if src == nil {
			return fmt.Errorf("item %q: quantity_percent references unknown item %q: %w", it.ID, ref.From, ErrInvalidItem)
		}
		derived := decimal.NewFromInt(int64(src.Quantity)).Mul(ref.Percent).Div(decimal.NewFromInt(100))
		it.Quantity = int(derived.Round(0).IntPart())
	}
	return nil
}
