// Package moneyfmt renders amounts for display: en-US digit grouping,
// exactly two fraction digits and a currency symbol prefix.
package moneyfmt

import (
    "math"
    "strings"

    "github.com/govalues/money"
    "golang.org/x/text/language"
    "golang.org/x/text/message"
    "golang.org/x/text/number"
)

// Placeholder is shown for missing values.
const Placeholder = "-"

var symbols = map[string]string{
    "USD": "$",
    "EUR": "€",
    "GBP": "£",
}

// Format renders a as "$1,234.56", or "-$200.00" when negative.
func Format(a money.Amount) string {
    s := Unsigned(a)
    if a.IsNeg() && !a.Round(2).IsZero() {
        return "-" + s
    }
    return s
}

// Unsigned renders the magnitude of a with its currency symbol.
func Unsigned(a money.Amount) string {
    return symbol(a.Curr().Code()) + digits(a.Abs())
}

// FormatValue renders an optional major-unit value in USD, or the placeholder when nil.
func FormatValue(v *float64) string {
    if v == nil {
        return Placeholder
    }
    a, err := money.NewAmountFromFloat64("USD", *v)
    if err != nil {
        // Too large for an exact amount: still show the value, never the placeholder.
        f := math.Abs(*v)
        if *v < 0 {
            return "-" + symbol("USD") + grouped(f)
        }
        return symbol("USD") + grouped(f)
    }
    return Format(a)
}

func symbol(code string) string {
    if s, ok := symbols[code]; ok {
        return s
    }
    return code + " "
}

// digits formats a non-negative amount with grouping and two decimals.
func digits(a money.Amount) string {
    f, _ := a.Round(2).Float64()
    return grouped(f)
}

func grouped(f float64) string {
    // Printer holds per-call state; one per call keeps Format safe for concurrent use.
    p := message.NewPrinter(language.AmericanEnglish)
    out := p.Sprint(number.Decimal(f, number.MinFractionDigits(2), number.MaxFractionDigits(2)))
    return strings.TrimSpace(out)
}
