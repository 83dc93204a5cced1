package cart

import (
	"context"
	"fmt"

	"github.com/mfachry/kart/internal/condition"
)

// Condition adds one or more cart-scoped conditions. A condition with order
// zero is assigned the current maximum order plus one; re-adding a name
// overwrites the previous entry.
func (c *Cart) Condition(ctx context.Context, conds ...*condition.Condition) error {
	set, err := c.conditionsSet(ctx)
	if err != nil {
		return err
	}
	for _, cond := range conds {
		if cond == nil {
			return fmt.Errorf("condition must not be nil: %w", condition.ErrInvalidCondition)
		}
		set.Put(cond)
	}
	return c.saveConditions(ctx, set)
}

// Tax adds one or more cart-scoped taxes.
func (c *Cart) Tax(ctx context.Context, taxes ...*condition.Condition) error {
	set, err := c.taxesSet(ctx)
	if err != nil {
		return err
	}
	for _, tax := range taxes {
		if tax == nil {
			return fmt.Errorf("tax must not be nil: %w", condition.ErrInvalidTax)
		}
		set.Put(tax)
	}
	return c.saveTaxes(ctx, set)
}

// GetConditions returns the cart-scoped condition set in applied order.
func (c *Cart) GetConditions(ctx context.Context) (*condition.Set, error) {
	return c.conditionsSet(ctx)
}

// GetTaxes returns the cart-scoped tax set in applied order.
func (c *Cart) GetTaxes(ctx context.Context) (*condition.Set, error) {
	return c.taxesSet(ctx)
}

// GetCondition returns the cart condition with the given name, or nil.
func (c *Cart) GetCondition(ctx context.Context, name string) (*condition.Condition, error) {
	set, err := c.conditionsSet(ctx)
	if err != nil {
		return nil, err
	}
	return set.Get(name), nil
}

// GetTax returns the cart tax with the given name, or nil.
func (c *Cart) GetTax(ctx context.Context, name string) (*condition.Condition, error) {
	set, err := c.taxesSet(ctx)
	if err != nil {
		return nil, err
	}
	return set.Get(name), nil
}

// GetConditionsByType returns the cart conditions of the given type. This
// covers cart-scoped conditions only, not conditions attached to items.
func (c *Cart) GetConditionsByType(ctx context.Context, typ string) ([]*condition.Condition, error) {
	set, err := c.conditionsSet(ctx)
	if err != nil {
		return nil, err
	}
	return set.ByType(typ), nil
}

// GetTaxesByType returns the cart taxes of the given type.
func (c *Cart) GetTaxesByType(ctx context.Context, typ string) ([]*condition.Condition, error) {
	set, err := c.taxesSet(ctx)
	if err != nil {
		return nil, err
	}
	return set.ByType(typ), nil
}

// RemoveCartCondition removes a cart-scoped condition by name.
func (c *Cart) RemoveCartCondition(ctx context.Context, name string) error {
	set, err := c.conditionsSet(ctx)
	if err != nil {
		return err
	}
	set.Remove(name)
	return c.saveConditions(ctx, set)
}

// RemoveTax removes a cart-scoped tax by name.
func (c *Cart) RemoveTax(ctx context.Context, name string) error {
	set, err := c.taxesSet(ctx)
	if err != nil {
		return err
	}
	set.Remove(name)
	return c.saveTaxes(ctx, set)
}

// RemoveConditionsByType removes every cart-scoped condition of the given
// type.
func (c *Cart) RemoveConditionsByType(ctx context.Context, typ string) error {
	set, err := c.conditionsSet(ctx)
	if err != nil {
		return err
	}
	for _, cond := range set.ByType(typ) {
		set.Remove(cond.Name)
	}
	return c.saveConditions(ctx, set)
}

// RemoveTaxesByType removes every cart-scoped tax of the given type.
func (c *Cart) RemoveTaxesByType(ctx context.Context, typ string) error {
	set, err := c.taxesSet(ctx)
	if err != nil {
		return err
	}
	for _, tax := range set.ByType(typ) {
		set.Remove(tax.Name)
	}
	return c.saveTaxes(ctx, set)
}

// ClearCartConditions removes every cart-scoped condition. Conditions
// attached to individual items are untouched.
func (c *Cart) ClearCartConditions(ctx context.Context) error {
	return c.saveConditions(ctx, condition.NewSet())
}

// ClearTaxes removes every cart-scoped tax.
func (c *Cart) ClearTaxes(ctx context.Context) error {
	return c.saveTaxes(ctx, condition.NewSet())
}

// AddItemCondition appends a condition to an existing item. Item conditions
// apply in the order they were attached.
func (c *Cart) AddItemCondition(ctx context.Context, id string, cond *condition.Condition) (bool, error) {
	if cond == nil {
		return false, fmt.Errorf("condition must not be nil: %w", condition.ErrInvalidCondition)
	}
	it, err := c.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if it == nil {
		return false, fmt.Errorf("item %q: %w", id, ErrItemNotFound)
	}
	conds := append(append([]*condition.Condition(nil), it.Conditions...), cond)
	return c.Update(ctx, id, Update{Conditions: conds})
}

// AddItemTax appends a tax to an existing item.
func (c *Cart) AddItemTax(ctx context.Context, id string, tax *condition.Condition) (bool, error) {
	if tax == nil {
		return false, fmt.Errorf("tax must not be nil: %w", condition.ErrInvalidTax)
	}
	it, err := c.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if it == nil {
		return false, fmt.Errorf("item %q: %w", id, ErrItemNotFound)
	}
	taxes := append(append([]*condition.Condition(nil), it.Taxes...), tax)
	return c.Update(ctx, id, Update{Taxes: taxes})
}

// RemoveItemCondition removes a named condition from an item.
func (c *Cart) RemoveItemCondition(ctx context.Context, id, name string) (bool, error) {
	it, err := c.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if it == nil {
		return false, fmt.Errorf("item %q: %w", id, ErrItemNotFound)
	}
	kept := make([]*condition.Condition, 0, len(it.Conditions))
	for _, cond := range it.Conditions {
		if cond.Name != name {
			kept = append(kept, cond)
		}
	}
	return c.Update(ctx, id, Update{Conditions: kept})
}

// RemoveItemTax removes a named tax from an item.
func (c *Cart) RemoveItemTax(ctx context.Context, id, name string) (bool, error) {
	it, err := c.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if it == nil {
		return false, fmt.Errorf("item %q: %w", id, ErrItemNotFound)
	}
	kept := make([]*condition.Condition, 0, len(it.Taxes))
	for _, tax := range it.Taxes {
		if tax.Name != name {
			kept = append(kept, tax)
		}
	}
	return c.Update(ctx, id, Update{Taxes: kept})
}

// ClearItemConditions removes every condition from an item.
func (c *Cart) ClearItemConditions(ctx context.Context, id string) (bool, error) {
	it, err := c.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if it == nil {
		return false, fmt.Errorf("item %q: %w", id, ErrItemNotFound)
	}
	return c.Update(ctx, id, Update{Conditions: []*condition.Condition{}})
}

// ClearItemTaxes removes every tax from an item.
func (c *Cart) ClearItemTaxes(ctx context.Context, id string) (bool, error) {
	it, err := c.Get(ctx, id)
	if err != nil {
		return false, err
	}
	if it == nil {
		return false, fmt.Errorf("item %q: %w", id, ErrItemNotFound)
	}
	return c.Update(ctx, id, Update{Taxes: []*condition.Condition{}})
}
