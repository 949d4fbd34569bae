package escrow

import (
    "errors"
    "testing"
    "time"

    "github.com/tinoosan/escrow/internal/errs"
)

func TestParseDate(t *testing.T) {
    want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
    for _, in := range []string{"2024-03-05", "2024-03-05T00:00:00Z", " 2024-03-05T01:00:00+01:00 ", "2024-03-05T00:00:00.000Z", "3/5/2024"} {
        got, err := ParseDate(in)
        if err != nil {
            t.Fatalf("ParseDate(%q): %v", in, err)
        }
        if !got.Equal(want) || got.Location() != time.UTC {
            t.Fatalf("ParseDate(%q) = %v, want %v", in, got, want)
        }
    }
    if _, err := ParseDate("5 March 2024"); !errors.Is(err, errs.ErrInvalid) {
        t.Fatalf("expected ErrInvalid, got %v", err)
    }
}

func TestDashboard_Company(t *testing.T) {
    if got := (Dashboard{}).Company(); got != DefaultCompanyName {
        t.Fatalf("got %q", got)
    }
    if got := (Dashboard{CompanyName: "Acme"}).Company(); got != "Acme" {
        t.Fatalf("got %q", got)
    }
}

func TestNormalizeEmail(t *testing.T) {
    if got := NormalizeEmail("  Jane.Doe@Example.COM "); got != "jane.doe@example.com" {
        t.Fatalf("got %q", got)
    }
}

func TestDashboard_Clone(t *testing.T) {
    d := SampleDashboard(DevEmail)
    c := d.Clone()
    c.Transactions[0].Description = "changed"
    c.BalanceSheet["fixed assets"][0].Label = "changed"
    if d.Transactions[0].Description == "changed" || d.BalanceSheet["fixed assets"][0].Label == "changed" {
        t.Fatalf("clone shares storage with original")
    }
}
