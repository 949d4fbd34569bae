package balancesheet

import (
    "fmt"
    "math"
    "sort"

    "github.com/go-playground/validator/v10"
    "github.com/tinoosan/escrow/internal/errs"
)

// LineItem is a single labelled row of a category. A nil Value is a
// placeholder row: it renders as "-" and contributes zero to totals.
type LineItem struct {
    Label     string   `json:"label" validate:"required"`
    Value     *float64 `json:"value"`
    IsSubItem bool     `json:"isSubItem"`
}

// Statement maps category keys to their ordered line items. Keys that are
// not one of the recognized categories are carried but never aggregated.
type Statement map[string][]LineItem

var validate = validator.New()

// Validate checks the items of recognized categories: labels must be present
// and values must fit in an amount, as must every total Build computes. It is
// meant for statements decoded from external data.
func (s Statement) Validate() error {
    for _, def := range layout {
        for i, it := range s[string(def.Key)] {
            if err := validate.Struct(it); err != nil {
                return fmt.Errorf("%s[%d]: label is required: %w", def.Key, i, errs.ErrInvalid)
            }
            if it.Value == nil {
                continue
            }
            if math.IsNaN(*it.Value) || math.IsInf(*it.Value, 0) {
                return fmt.Errorf("%s[%d]: value must be finite: %w", def.Key, i, errs.ErrInvalid)
            }
            if _, err := Amount(*it.Value); err != nil {
                return fmt.Errorf("%s[%d]: %w", def.Key, i, err)
            }
        }
    }
    if _, _, err := Build(s); err != nil {
        return err
    }
    return nil
}

// Normalize rewrites loosely spelled keys ("Current  Assets") to their
// canonical form and drops keys that do not name a recognized category.
// Items of keys that normalize to the same category are concatenated in
// lexical key order so the result is deterministic.
func (s Statement) Normalize() Statement {
    if s == nil {
        return nil
    }
    keys := make([]string, 0, len(s))
    for k := range s {
        keys = append(keys, k)
    }
    sort.Strings(keys)
    out := make(Statement, len(s))
    for _, k := range keys {
        c, ok := ParseCategory(k)
        if !ok {
            continue
        }
        out[string(c)] = append(out[string(c)], s[k]...)
    }
    return out
}

// HasData reports whether at least one recognized category key is present.
func (s Statement) HasData() bool {
    for _, def := range layout {
        if _, ok := s[string(def.Key)]; ok {
            return true
        }
    }
    return false
}

// Items returns the items of a category, or nil when the key is missing.
func (s Statement) Items(c Category) []LineItem { return s[string(c)] }

// Float is a helper for building line item values in code and tests.
func Float(v float64) *float64 { return &v }
