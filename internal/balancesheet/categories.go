package balancesheet

import "strings"

// Category is one of the six recognized balance sheet sections.
type Category string

const (
    CurrentAssets       Category = "current assets"
    FixedAssets         Category = "fixed assets"
    OtherAssets         Category = "other assets"
    CurrentLiabilities  Category = "current liabilities"
    LongTermLiabilities Category = "long term liabilities"
    OwnerEquity         Category = "owner equity"
)

// Side places a category in the left (assets) or right column of the sheet.
type Side string

const (
    SideAssets               Side = "assets"
    SideLiabilitiesAndEquity Side = "liabilities_and_equity"
)

// CategoryDef describes how a category is laid out and whether it counts toward grand totals.
type CategoryDef struct {
    Key           Category `json:"key"`
    Title         string   `json:"title"`
    TotalLabel    string   `json:"total_label"`
    Side          Side     `json:"side"`
    Informational bool     `json:"informational"`
}

// layout is the fixed display order. Item order inside a category comes from the input.
var layout = []CategoryDef{
    {Key: CurrentAssets, Title: "Current Assets", TotalLabel: "Total Current Assets", Side: SideAssets},
    {Key: FixedAssets, Title: "Fixed Assets", TotalLabel: "Total Fixed Assets", Side: SideAssets},
    {Key: OtherAssets, Title: "Other Assets", TotalLabel: "Total Other Assets", Side: SideAssets, Informational: true},
    {Key: CurrentLiabilities, Title: "Current Liabilities", TotalLabel: "Total Current Liabilities", Side: SideLiabilitiesAndEquity},
    {Key: LongTermLiabilities, Title: "Long Term Liabilities", TotalLabel: "Total Long Term Liabilities", Side: SideLiabilitiesAndEquity},
    {Key: OwnerEquity, Title: "Owner Equity", TotalLabel: "Total Owner Equity", Side: SideLiabilitiesAndEquity},
}

// Grand total labels.
const (
    TotalAssetsLabel               = "Total Assets"
    TotalLiabilitiesAndEquityLabel = "Total Liabilities and Equity"
)

// Categories returns a copy of the fixed layout.
func Categories() []CategoryDef {
    out := make([]CategoryDef, len(layout))
    copy(out, layout)
    return out
}

// Lookup returns the definition of a recognized category.
func Lookup(c Category) (CategoryDef, bool) {
    for _, d := range layout {
        if d.Key == c {
            return d, true
        }
    }
    return CategoryDef{}, false
}

// ParseCategory normalizes an external key (case, surrounding and repeated
// whitespace) and reports whether it names a recognized category.
func ParseCategory(s string) (Category, bool) {
    c := Category(strings.Join(strings.Fields(strings.ToLower(s)), " "))
    if _, ok := Lookup(c); !ok {
        return "", false
    }
    return c, true
}
