package item

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// Attribute keys recognised by the cart. Anything else is passthrough
// metadata.
const (
	AttrGroupID         = "group_id"
	AttrDependentID     = "dependent_id"
	AttrAlternativeID   = "alternative_id"
	AttrIsOptional      = "is_optional"
	AttrPricePercent    = "price_percent"
	AttrQuantityPercent = "quantity_percent"
)

// Attributes is free-form item metadata with typed accessors for the keys
// the pricing engine understands.
type Attributes map[string]any

// PercentRef derives a price or quantity as a percentage of another item.
type PercentRef struct {
	Percent decimal.Decimal
	From    string
}

// GroupID returns the group container id this item belongs to, if any.
func (a Attributes) GroupID() string {
	return asString(a[AttrGroupID])
}

// DependentID returns the id of the item this item depends on, if any.
func (a Attributes) DependentID() string {
	return asString(a[AttrDependentID])
}

// AlternativeID returns the alternative-group id shared by substitutable
// items, if any.
func (a Attributes) AlternativeID() string {
	return asString(a[AttrAlternativeID])
}

// IsOptional reports whether the item is marked optional.
func (a Attributes) IsOptional() bool {
	return truthy(a[AttrIsOptional])
}

// PricePercent returns the price derivation reference, if set.
func (a Attributes) PricePercent() (PercentRef, bool) {
	return asPercentRef(a[AttrPricePercent])
}

// QuantityPercent returns the quantity derivation reference, if set.
func (a Attributes) QuantityPercent() (PercentRef, bool) {
	return asPercentRef(a[AttrQuantityPercent])
}

// Clone returns a shallow copy of the attribute map.
func (a Attributes) Clone() Attributes {
	if a == nil {
		return nil
	}
	out := make(Attributes, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func asPercentRef(v any) (PercentRef, bool) {
	m, ok := v.(map[string]any)
	if !ok {
		return PercentRef{}, false
	}
	from := asString(m["from"])
	pct := asDecimal(m["percent"])
	if from == "" || pct.IsZero() {
		return PercentRef{}, false
	}
	return PercentRef{Percent: pct, From: from}, true
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		// JSON numbers decode as float64; ids are whole numbers.
		return strconv.FormatInt(int64(t), 10)
	default:
		return ""
	}
}

func asDecimal(v any) decimal.Decimal {
	switch t := v.(type) {
	case float64:
		return decimal.NewFromFloat(t)
	case int:
		return decimal.NewFromInt(int64(t))
	case int64:
		return decimal.NewFromInt(t)
	case string:
		d, err := decimal.NewFromString(t)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != "" && t != "0" && t != "false"
	case int:
		return t != 0
	case int64:
		return t != 0
	case float64:
		return t != 0
	default:
		return true
	}
}
