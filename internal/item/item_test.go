package item_test

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mfachry/kart/internal/condition"
	"github.com/mfachry/kart/internal/item"
)

func mustCondition(t *testing.T, name, value string) *condition.Condition {
	t.Helper()
	c, err := condition.New(name, "misc", condition.TargetItem, value)
	if err != nil {
		t.Fatalf("new condition %q: %v", name, err)
	}
	return c
}

func mustTax(t *testing.T, name, value string) *condition.Condition {
	t.Helper()
	c, err := condition.NewTax(name, "tax", condition.TargetItem, value)
	if err != nil {
		t.Fatalf("new tax %q: %v", name, err)
	}
	return c
}

func TestPriceWithConditionsRunsInSliceOrder(t *testing.T) {
	it := &item.Item{
		ID:       "sku-1",
		Name:     "widget",
		Price:    decimal.NewFromInt(100),
		Quantity: 1,
		Conditions: []*condition.Condition{
			mustCondition(t, "sale", "-10%"),
			mustCondition(t, "extra", "-10"),
		},
		Taxes: []*condition.Condition{mustTax(t, "vat", "10%")},
	}
	// 100 -> 90 -> 80, then +10% tax on the running result.
	if got := it.PriceWithConditions().String(); got != "88" {
		t.Fatalf("expected 88, got %s", got)
	}
}

func TestPriceWithConditionsClampsAtZero(t *testing.T) {
	it := &item.Item{
		ID:         "sku-2",
		Name:       "cheap",
		Price:      decimal.NewFromInt(10),
		Quantity:   3,
		Conditions: []*condition.Condition{mustCondition(t, "void", "-50")},
	}
	if got := it.PriceWithConditions(); !got.IsZero() {
		t.Fatalf("expected zero, got %s", got)
	}
	if got := it.PriceSumWithConditions(); !got.IsZero() {
		t.Fatalf("expected zero sum, got %s", got)
	}
}

func TestPriceSums(t *testing.T) {
	it := &item.Item{
		ID:         "sku-3",
		Name:       "bundle",
		Price:      decimal.RequireFromString("69.25"),
		Quantity:   2,
		Conditions: []*condition.Condition{mustCondition(t, "sale", "-5%")},
	}
	if got := it.PriceSum().String(); got != "138.5" {
		t.Fatalf("expected raw sum 138.5, got %s", got)
	}
	if got := it.PriceSumWithConditions().String(); got != "131.575" {
		t.Fatalf("expected conditioned sum 131.575, got %s", got)
	}
}

func TestDeriveQuantities(t *testing.T) {
	it := &item.Item{
		ID:    "seat-license",
		Name:  "seats",
		Price: decimal.NewFromInt(10),
		Quantities: []item.SubQuantity{
			{Quantity: 5, Unit: "account"},
			{Quantity: 3, Unit: "month"},
		},
	}
	it.DeriveQuantities()
	if it.Quantity != 15 {
		t.Fatalf("expected quantity 15, got %d", it.Quantity)
	}
	if it.Unit != "account/month" {
		t.Fatalf("expected unit account/month, got %q", it.Unit)
	}
}

func TestDeriveQuantitiesSkipsEmptyUnits(t *testing.T) {
	it := &item.Item{
		ID:   "plain",
		Name: "plain",
		Quantities: []item.SubQuantity{
			{Quantity: 2},
			{Quantity: 4, Unit: "box"},
		},
	}
	it.DeriveQuantities()
	if it.Quantity != 8 || it.Unit != "box" {
		t.Fatalf("unexpected derivation quantity=%d unit=%q", it.Quantity, it.Unit)
	}
}

func TestDeriveQuantitiesNoBreakdown(t *testing.T) {
	it := &item.Item{ID: "plain", Name: "plain", Quantity: 4, Unit: "piece"}
	it.DeriveQuantities()
	if it.Quantity != 4 || it.Unit != "piece" {
		t.Fatal("expected no-op without a breakdown")
	}
}

func TestCloneIsolatesAttributes(t *testing.T) {
	it := &item.Item{
		ID:         "sku-4",
		Name:       "original",
		Price:      decimal.NewFromInt(5),
		Quantity:   1,
		Attributes: item.Attributes{"color": "red"},
		Quantities: []item.SubQuantity{{Quantity: 2, Unit: "pair"}},
	}
	cp := it.Clone()
	cp.Attributes["color"] = "blue"
	cp.Quantities[0].Quantity = 9

	if it.Attributes["color"] != "red" {
		t.Fatal("expected original attributes untouched")
	}
	if it.Quantities[0].Quantity != 2 {
		t.Fatal("expected original breakdown untouched")
	}
}

func TestOptionAndAlternativeFlags(t *testing.T) {
	it := &item.Item{
		ID:   "addon",
		Name: "addon",
		Attributes: item.Attributes{
			item.AttrIsOptional:    true,
			item.AttrAlternativeID: "storage",
		},
	}
	if !it.IsOption() {
		t.Fatal("expected optional item")
	}
	if !it.HasAlternatives() {
		t.Fatal("expected alternative membership")
	}
	plain := &item.Item{ID: "plain", Name: "plain"}
	if plain.IsOption() || plain.HasAlternatives() {
		t.Fatal("expected plain item without flags")
	}
}
