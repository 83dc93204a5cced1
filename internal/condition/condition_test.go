package condition_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mfachry/kart/internal/condition"
)

func mustCondition(t *testing.T, name, typ, target, value string) *condition.Condition {
	t.Helper()
	c, err := condition.New(name, typ, target, value)
	if err != nil {
		t.Fatalf("new condition %q: %v", name, err)
	}
	return c
}

func TestNewRequiresFields(t *testing.T) {
	cases := []struct{ name, typ, value string }{
		{"", "sale", "-5"},
		{"sale", "", "-5"},
		{"sale", "sale", ""},
	}
	for _, tc := range cases {
		if _, err := condition.New(tc.name, tc.typ, "subtotal", tc.value); !errors.Is(err, condition.ErrInvalidCondition) {
			t.Fatalf("expected ErrInvalidCondition for %+v, got %v", tc, err)
		}
	}
}

func TestApplyAbsolute(t *testing.T) {
	c := mustCondition(t, "promo", "promo", "subtotal", "-25.50")
	got := c.Apply(decimal.NewFromInt(100))
	if got.String() != "74.5" {
		t.Fatalf("expected 74.5, got %s", got)
	}
	if cv := c.CalculatedValue().String(); cv != "-25.5" {
		t.Fatalf("expected calculated -25.5, got %s", cv)
	}
}

func TestApplyPercentage(t *testing.T) {
	c := mustCondition(t, "vat", "tax", "subtotal", "12.5%")
	got := c.Apply(decimal.RequireFromString("501.75"))
	if got.String() != "564.46875" {
		t.Fatalf("expected 564.46875, got %s", got)
	}
}

func TestApplyPercentagesCompound(t *testing.T) {
	first := mustCondition(t, "sale-a", "sale", "subtotal", "-10%")
	second := mustCondition(t, "sale-b", "sale", "subtotal", "-10%")
	result := second.Apply(first.Apply(decimal.NewFromInt(100)))
	if result.String() != "81" {
		t.Fatalf("expected two -10%% conditions to compound to 81, got %s", result)
	}
}

func TestApplyNeverNegative(t *testing.T) {
	c := mustCondition(t, "blowout", "sale", "item", "-500")
	if got := c.Apply(decimal.NewFromInt(10)); !got.IsZero() {
		t.Fatalf("expected result clamped to zero, got %s", got)
	}
	c = mustCondition(t, "off", "sale", "item", "-150%")
	if got := c.Apply(decimal.NewFromInt(10)); !got.IsZero() {
		t.Fatalf("expected percentage result clamped to zero, got %s", got)
	}
}

func TestNewTaxRejectsNegative(t *testing.T) {
	if _, err := condition.NewTax("vat", "tax", "subtotal", "-12.5%"); !errors.Is(err, condition.ErrInvalidTax) {
		t.Fatalf("expected ErrInvalidTax, got %v", err)
	}
	if _, err := condition.NewTax("vat", "tax", "subtotal", "12.5%"); err != nil {
		t.Fatalf("expected valid tax, got %v", err)
	}
	tax, err := condition.NewTax("flat", "tax", "total", "5")
	if err != nil {
		t.Fatalf("expected valid flat tax, got %v", err)
	}
	if !tax.Tax {
		t.Fatal("expected tax flag set")
	}
}

func TestParseOrder(t *testing.T) {
	cases := []struct {
		in   any
		want int
	}{
		{5, 5},
		{int64(3), 3},
		{2.0, 2},
		{"7", 7},
		{" 4 ", 4},
		{"first", 0},
		{nil, 0},
		{true, 0},
	}
	for _, tc := range cases {
		if got := condition.ParseOrder(tc.in); got != tc.want {
			t.Fatalf("ParseOrder(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
