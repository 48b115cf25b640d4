package ledger

import (
	"cajaflow/domain"
	"cajaflow/internal/money"
)

// ClosingInput carries everything the day's closing is computed from. A
// register with no activity produces a valid all-zero closing.
type ClosingInput struct {
	RegisterID     int64
	RegisterName   string
	Date           string
	Methods        []domain.MethodTotal
	TotalSales     float64
	TotalOnAccount float64
	GrossCash      float64
	Expenses       []domain.Expense
	CountedCash    *float64
}

// BuildClosing computes net cash and the signed cash difference and
// assembles the closing payload. Net cash never goes below zero; the
// difference is counted minus net (positive surplus, negative shortage) and
// is only present once an admin has entered the counted figure.
func BuildClosing(in ClosingInput) domain.Closing {
	var expensesTotal float64
	for _, e := range in.Expenses {
		expensesTotal = money.Add2(expensesTotal, e.Amount)
	}

	netCash := money.Sub2(in.GrossCash, expensesTotal)
	if netCash < 0 {
		netCash = 0
	}

	c := domain.Closing{
		RegisterID:      in.RegisterID,
		RegisterName:    in.RegisterName,
		Date:            in.Date,
		TotalSales:      money.Round2(in.TotalSales),
		TotalCollected:  CollectedTotal(in.Methods),
		TotalOnAccount:  money.Round2(in.TotalOnAccount),
		GrossCash:       money.Round2(in.GrossCash),
		TotalExpenses:   expensesTotal,
		NetCash:         netCash,
		Status:          domain.ClosingPending,
		MethodBreakdown: in.Methods,
		Expenses:        in.Expenses,
	}

	if in.CountedCash != nil {
		counted := money.Round2(*in.CountedCash)
		diff := money.Sub2(counted, netCash)
		c.CountedCash = &counted
		c.Difference = &diff
	}
	return c
}
