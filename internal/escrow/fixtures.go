package escrow

import (
    "time"

    "github.com/google/uuid"
    "github.com/tinoosan/escrow/internal/balancesheet"
)

// DevEmail is the account holder seeded for local development.
const DevEmail = "demo@example.com"

// SampleDashboard builds a small, balanced dashboard for local dev seeds.
func SampleDashboard(email string) Dashboard {
    f := balancesheet.Float
    day := func(m time.Month, d int) time.Time { return time.Date(2024, m, d, 0, 0, 0, 0, time.UTC) }
    return Dashboard{
        Email:       NormalizeEmail(email),
        AccountID:   uuid.NewString(),
        CompanyName: "Acme Holdings LLC",
        Transactions: []Transaction{
            {ID: uuid.NewString(), Date: day(time.January, 2), Description: "Initial deposit", Amount: 25000},
            {ID: uuid.NewString(), Date: day(time.January, 15), Description: "Inspection fee", Amount: -450},
            {ID: uuid.NewString(), Date: day(time.February, 1), Description: "Earnest money", Amount: 5000},
            {ID: uuid.NewString(), Date: day(time.February, 20), Description: "Title insurance", Amount: -1200.5},
        },
        BalanceSheet: balancesheet.Statement{
            string(balancesheet.CurrentAssets): {
                {Label: "Cash", Value: nil},
                {Label: "Operating account", Value: f(12000), IsSubItem: true},
                {Label: "Escrow account", Value: f(6000), IsSubItem: true},
                {Label: "Accounts receivable", Value: f(4500)},
                {Label: "Prepaid expenses", Value: nil},
            },
            string(balancesheet.FixedAssets): {
                {Label: "Land", Value: f(50000)},
                {Label: "Equipment", Value: f(7500)},
            },
            string(balancesheet.OtherAssets): {
                {Label: "Security deposit", Value: f(2000)},
            },
            string(balancesheet.CurrentLiabilities): {
                {Label: "Accounts payable", Value: f(3200)},
                {Label: "Accrued wages", Value: f(800)},
            },
            string(balancesheet.LongTermLiabilities): {
                {Label: "Mortgage", Value: f(30000)},
            },
            string(balancesheet.OwnerEquity): {
                {Label: "Owner capital", Value: f(40000)},
                {Label: "Retained earnings", Value: f(6000)},
            },
        },
    }
}
