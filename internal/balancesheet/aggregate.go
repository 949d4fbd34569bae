// Package balancesheet turns a categorized statement into a render-ready
// balance sheet: per-category subtotals, grand totals for both columns and
// an accounting mismatch check.
//
// Totals are exact decimal sums (govalues/money) so that the 0.01 tolerance
// is applied to the real difference rather than to binary float noise.
// "Other assets" is reported as an informational subtotal only and is never
// part of total assets.
package balancesheet

import (
    "fmt"

    "github.com/govalues/decimal"
    "github.com/govalues/money"

    "github.com/tinoosan/escrow/internal/errs"
)

// Currency is the display currency of every amount the aggregator produces.
const Currency = "USD"

// Tolerance is the largest absolute difference between total assets and
// total liabilities plus equity that still counts as balanced.
var Tolerance = decimal.MustParse("0.01")

// Section is one category of the report with its items in input order.
type Section struct {
    CategoryDef
    Items []LineItem
    Total money.Amount
}

// Empty reports whether the section has no items.
func (s Section) Empty() bool { return len(s.Items) == 0 }

// Report is the aggregated balance sheet.
type Report struct {
    Sections                  []Section
    TotalAssets               money.Amount
    TotalLiabilities          money.Amount
    TotalEquity               money.Amount
    TotalLiabilitiesAndEquity money.Amount
    // Mismatch is true when |TotalAssets - TotalLiabilitiesAndEquity| > Tolerance.
    Mismatch bool
    // Difference is TotalAssets - TotalLiabilitiesAndEquity, signed.
    Difference money.Amount
}

// Section returns the section for a category.
func (r Report) Section(c Category) (Section, bool) {
    for _, s := range r.Sections {
        if s.Key == c {
            return s, true
        }
    }
    return Section{}, false
}

// Side returns the sections of one column in layout order.
func (r Report) Side(side Side) []Section {
    out := make([]Section, 0, 3)
    for _, s := range r.Sections {
        if s.Side == side {
            out = append(out, s)
        }
    }
    return out
}

// OtherAssets returns the informational "other assets" section.
func (r Report) OtherAssets() Section {
    s, _ := r.Section(OtherAssets)
    return s
}

// Build aggregates s. The boolean is false when s is nil, empty or has no
// recognized category; callers render a "no data" state in that case
// instead of a report full of zeros. The error wraps errs.ErrInvalid when a
// value or a total does not fit in an amount. Validate reports the same
// problem for statements decoded from external data.
func Build(s Statement) (Report, bool, error) {
    if !s.HasData() {
        return Report{}, false, nil
    }
    r := Report{Sections: make([]Section, 0, len(layout))}
    totals := make(map[Category]money.Amount, len(layout))
    for _, def := range layout {
        src := s.Items(def.Key)
        items := make([]LineItem, len(src))
        copy(items, src)
        total, err := CategoryTotal(items)
        if err != nil {
            return Report{}, false, fmt.Errorf("%s: %w", def.Key, err)
        }
        totals[def.Key] = total
        r.Sections = append(r.Sections, Section{CategoryDef: def, Items: items, Total: total})
    }
    var err error
    if r.TotalAssets, err = add(totals[CurrentAssets], totals[FixedAssets]); err != nil {
        return Report{}, false, fmt.Errorf("total assets: %w", err)
    }
    if r.TotalLiabilities, err = add(totals[CurrentLiabilities], totals[LongTermLiabilities]); err != nil {
        return Report{}, false, fmt.Errorf("total liabilities: %w", err)
    }
    r.TotalEquity = totals[OwnerEquity]
    if r.TotalLiabilitiesAndEquity, err = add(r.TotalLiabilities, r.TotalEquity); err != nil {
        return Report{}, false, fmt.Errorf("total liabilities and equity: %w", err)
    }
    if r.Difference, err = sub(r.TotalAssets, r.TotalLiabilitiesAndEquity); err != nil {
        return Report{}, false, fmt.Errorf("difference: %w", err)
    }
    r.Mismatch = r.Difference.Decimal().Abs().Cmp(Tolerance) > 0
    return r, true, nil
}

// Amount converts a major-unit value to an exact amount. Values money
// cannot hold (NaN, infinities, more than 19 significant digits at cent
// scale) are rejected with errs.ErrInvalid.
func Amount(v float64) (money.Amount, error) {
    a, err := money.NewAmountFromFloat64(Currency, v)
    if err != nil {
        return money.Amount{}, fmt.Errorf("value %g is not a representable amount: %w", v, errs.ErrInvalid)
    }
    return a, nil
}

// CategoryTotal sums item values, treating nil as zero.
func CategoryTotal(items []LineItem) (money.Amount, error) {
    total := Zero()
    for i, it := range items {
        if it.Value == nil {
            continue
        }
        v, err := Amount(*it.Value)
        if err != nil {
            return money.Amount{}, fmt.Errorf("item %d: %w", i, err)
        }
        if total, err = add(total, v); err != nil {
            return money.Amount{}, fmt.Errorf("item %d: %w", i, err)
        }
    }
    return total, nil
}

// Zero is the zero amount in the display currency.
func Zero() money.Amount { return money.MustNewAmount(Currency, 0, 0) }

// Sum adds float values exactly; used for balances outside the sheet.
func Sum(values ...float64) (money.Amount, error) {
    total := Zero()
    for _, f := range values {
        v, err := Amount(f)
        if err != nil {
            return money.Amount{}, err
        }
        if total, err = add(total, v); err != nil {
            return money.Amount{}, err
        }
    }
    return total, nil
}

func add(a, b money.Amount) (money.Amount, error) {
    v, err := a.Add(b)
    if err != nil {
        return money.Amount{}, fmt.Errorf("sum overflows: %v: %w", err, errs.ErrInvalid)
    }
    return v, nil
}

func sub(a, b money.Amount) (money.Amount, error) {
    v, err := a.Sub(b)
    if err != nil {
        return money.Amount{}, fmt.Errorf("difference overflows: %v: %w", err, errs.ErrInvalid)
    }
    return v, nil
}
