package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Formatter controls how monetary values are rounded and rendered.
type Formatter struct {
	Decimals           int
	DecimalSeparator   string
	ThousandsSeparator string
	FormatNumbers      bool
}

// Default returns the formatter used when no configuration is provided.
func Default() Formatter {
	return Formatter{Decimals: 2, DecimalSeparator: ".", ThousandsSeparator: ",", FormatNumbers: false}
}

func (f Formatter) decimals() int32 {
	if f.Decimals < 0 {
		return 2
	}
	return int32(f.Decimals)
}

// Round rounds half-up at the configured number of decimals.
func (f Formatter) Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(f.decimals())
}

// Value rounds when number formatting is enabled, otherwise returns d unchanged.
func (f Formatter) Value(d decimal.Decimal) decimal.Decimal {
	if f.FormatNumbers {
		return f.Round(d)
	}
	return d
}

// Format renders the value with the configured separators.
func (f Formatter) Format(d decimal.Decimal) string {
	rounded := f.Round(d)
	s := rounded.StringFixed(f.decimals())

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart := s
	fracPart := ""
	if idx := strings.IndexByte(s, '.'); idx >= 0 {
		intPart, fracPart = s[:idx], s[idx+1:]
	}

	if sep := f.ThousandsSeparator; sep != "" {
		var b strings.Builder
		for i, r := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				b.WriteString(sep)
			}
			b.WriteRune(r)
		}
		intPart = b.String()
	}

	out := intPart
	if fracPart != "" {
		point := f.DecimalSeparator
		if point == "" {
			point = "."
		}
		out += point + fracPart
	}
	if neg {
		out = "-" + out
	}
	return out
}
