package condition

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidCondition is returned when a condition is missing required fields.
var ErrInvalidCondition = errors.New("invalid condition")

// ErrInvalidTax is returned when a tax carries a malformed or negative value.
var ErrInvalidTax = errors.New("invalid tax")

// Condition targets understood by the pricing calculation.
const (
	TargetItem     = "item"
	TargetSubtotal = "subtotal"
	TargetTotal    = "total"
)

var percentRe = regexp.MustCompile(`^-?\d+(\.\d+)?%$`)

// taxValueRe restricts tax literals to digits, dot and percent sign. A minus
// sign is rejected: the tax kind already implies the direction.
var taxValueRe = regexp.MustCompile(`^[0-9%.]+$`)

// Condition is a named rule that transforms a monetary value. The value is
// either an absolute delta ("-5", "15") or a percentage ("12.5%"). Taxes are
// conditions constructed through NewTax with stricter value validation.
type Condition struct {
	Name       string         `json:"name"`
	Type       string         `json:"type"`
	Target     string         `json:"target,omitempty"`
	Value      string         `json:"value"`
	Order      int            `json:"order"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Tax        bool           `json:"tax,omitempty"`

	calculated decimal.Decimal
}

// New builds a condition, validating that name, type and value are present.
func New(name, typ, target, value string) (*Condition, error) {
	c := &Condition{Name: name, Type: typ, Target: target, Value: value}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// NewTax builds a tax condition. Tax values may only contain digits, a dot
// and a percent sign; explicit negative literals are rejected.
func NewTax(name, typ, target, value string) (*Condition, error) {
	if !taxValueRe.MatchString(strings.TrimSpace(value)) {
		return nil, fmt.Errorf("tax %q: value %q must be a non-negative literal: %w", name, value, ErrInvalidTax)
	}
	c := &Condition{Name: name, Type: typ, Target: target, Value: value, Tax: true}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Condition) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required: %w", ErrInvalidCondition)
	}
	if strings.TrimSpace(c.Type) == "" {
		return fmt.Errorf("condition %q: type is required: %w", c.Name, ErrInvalidCondition)
	}
	if strings.TrimSpace(c.Value) == "" {
		return fmt.Errorf("condition %q: value is required: %w", c.Name, ErrInvalidCondition)
	}
	return nil
}

// IsPercentage reports whether the condition value is a percentage literal.
func (c *Condition) IsPercentage() bool {
	return percentRe.MatchString(strings.TrimSpace(c.Value))
}

// Apply transforms base by this condition. Percentages use base itself as
// their percentage base, so chained percentages compound. The result never
// goes below zero. The delta actually applied is retrievable through
// CalculatedValue.
func (c *Condition) Apply(base decimal.Decimal) decimal.Decimal {
	value := strings.TrimSpace(c.Value)
	if c.IsPercentage() {
		pct := parseNumeric(strings.TrimSuffix(value, "%"))
		c.calculated = base.Mul(pct).Div(decimal.NewFromInt(100))
	} else {
		c.calculated = parseNumeric(value)
	}
	result := base.Add(c.calculated)
	if result.IsNegative() {
		return decimal.Zero
	}
	return result
}

// CalculatedValue returns the delta applied by the most recent Apply call.
func (c *Condition) CalculatedValue() decimal.Decimal {
	return c.calculated
}

// ParseOrder resolves an order token to an integer. Non-numeric tokens
// resolve to zero, meaning "append after the current maximum".
func ParseOrder(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func parseNumeric(s string) decimal.Decimal {
	s = strings.TrimSpace(strings.TrimPrefix(s, "+"))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
