package item

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mfachry/kart/internal/condition"
)

// SubQuantity is one entry of a sub-unit quantity breakdown. An item carrying
// a breakdown derives its quantity as the product of the entries and its unit
// as the "/"-joined non-empty units.
type SubQuantity struct {
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit,omitempty"`
}

// Item is a single cart entry. Group containers are items without price and
// quantity; they cluster child items through the group_id attribute and never
// contribute to totals.
type Item struct {
	ID         string                 `json:"id"`
	Name       string                 `json:"name"`
	Price      decimal.Decimal        `json:"price"`
	Quantity   int                    `json:"quantity"`
	Unit       string                 `json:"unit,omitempty"`
	Attributes Attributes             `json:"attributes,omitempty"`
	Conditions []*condition.Condition `json:"conditions,omitempty"`
	Taxes      []*condition.Condition `json:"taxes,omitempty"`
	Quantities []SubQuantity          `json:"quantities,omitempty"`
	Group      bool                   `json:"group,omitempty"`
}

// IsOption reports whether the item is optional: it may be excluded from the
// purchase, so it never raises the minimum bound.
func (it *Item) IsOption() bool {
	return it.Attributes.IsOptional()
}

// HasAlternatives reports whether the item belongs to an alternative group.
func (it *Item) HasAlternatives() bool {
	return it.Attributes.AlternativeID() != ""
}

// HasConditions reports whether any item-scoped conditions are attached.
func (it *Item) HasConditions() bool {
	return len(it.Conditions) > 0
}

// HasTaxes reports whether any item-scoped taxes are attached.
func (it *Item) HasTaxes() bool {
	return len(it.Taxes) > 0
}

// PriceWithConditions applies the attached conditions in slice order, then
// the attached taxes, each receiving the running result of the previous
// application. Item-level conditions deliberately follow the sequence the
// caller supplied rather than their Order field.
func (it *Item) PriceWithConditions() decimal.Decimal {
	price := it.Price
	for _, c := range it.Conditions {
		price = c.Apply(price)
	}
	for _, t := range it.Taxes {
		price = t.Apply(price)
	}
	return price
}

// PriceSumWithConditions is PriceWithConditions multiplied by the quantity.
func (it *Item) PriceSumWithConditions() decimal.Decimal {
	return it.PriceWithConditions().Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// PriceSum is the raw price multiplied by the quantity, conditions and taxes
// ignored.
func (it *Item) PriceSum() decimal.Decimal {
	return it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// DeriveQuantities recomputes quantity and unit from the sub-unit breakdown.
// It is a no-op when no breakdown is present.
func (it *Item) DeriveQuantities() {
	if len(it.Quantities) == 0 {
		return
	}
	quantity := 1
	units := make([]string, 0, len(it.Quantities))
	for _, sq := range it.Quantities {
		quantity *= sq.Quantity
		if sq.Unit != "" {
			units = append(units, sq.Unit)
		}
	}
	it.Quantity = quantity
	it.Unit = strings.Join(units, "/")
}

// Clone returns a copy of the item. Conditions and taxes are shared; the
// attribute map and quantity breakdown are copied.
func (it *Item) Clone() *Item {
	cp := *it
	cp.Attributes = it.Attributes.Clone()
	if it.Quantities != nil {
		cp.Quantities = append([]SubQuantity(nil), it.Quantities...)
	}
	if it.Conditions != nil {
		cp.Conditions = append([]*condition.Condition(nil), it.Conditions...)
	}
	if it.Taxes != nil {
		cp.Taxes = append([]*condition.Condition(nil), it.Taxes...)
	}
	return &cp
}
