package appscript

import (
    "bytes"
    "encoding/json"
    "fmt"
    "strconv"
    "strings"
)

// flexString accepts a JSON string or number (spreadsheet ids are often numeric).
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
    b = bytes.TrimSpace(b)
    if bytes.Equal(b, []byte("null")) {
        *f = ""
        return nil
    }
    if len(b) > 0 && b[0] == '"' {
        var s string
        if err := json.Unmarshal(b, &s); err != nil {
            return err
        }
        *f = flexString(s)
        return nil
    }
    var n json.Number
    if err := json.Unmarshal(b, &n); err != nil {
        return fmt.Errorf("id: %w", err)
    }
    *f = flexString(n.String())
    return nil
}

// flexNumber accepts a JSON number or a numeric string such as "1,250.00".
type flexNumber float64

func (f *flexNumber) UnmarshalJSON(b []byte) error {
    b = bytes.TrimSpace(b)
    if bytes.Equal(b, []byte("null")) {
        *f = 0
        return nil
    }
    if len(b) > 0 && b[0] == '"' {
        var s string
        if err := json.Unmarshal(b, &s); err != nil {
            return err
        }
        s = strings.NewReplacer(",", "", "$", "", " ", "").Replace(s)
        v, err := strconv.ParseFloat(s, 64)
        if err != nil {
            return fmt.Errorf("amount %q: %w", s, err)
        }
        *f = flexNumber(v)
        return nil
    }
    var v float64
    if err := json.Unmarshal(b, &v); err != nil {
        return err
    }
    *f = flexNumber(v)
    return nil
}
