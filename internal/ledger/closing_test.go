package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"cajaflow/domain"
)

func TestBuildClosing(t *testing.T) {
	counted := 7900.0
	closing := BuildClosing(ClosingInput{
		RegisterID:   1,
		RegisterName: "Caja Principal",
		Date:         "2026-08-31",
		Methods: []domain.MethodTotal{
			{Method: "CASH", Total: 10000},
			{Method: "CARD", Total: 2500},
		},
		TotalSales:     13000,
		TotalOnAccount: 500,
		GrossCash:      10000,
		Expenses: []domain.Expense{
			{Amount: 1500, Motive: "nafta"},
			{Amount: 500, Motive: "almuerzo"},
		},
		CountedCash: &counted,
	})

	require.Equal(t, 2000.0, closing.TotalExpenses)
	require.Equal(t, 8000.0, closing.NetCash)
	require.Equal(t, 12500.0, closing.TotalCollected)
	require.NotNil(t, closing.Difference)
	require.Equal(t, -100.0, *closing.Difference)
	require.Equal(t, domain.ClosingPending, closing.Status)
}

func TestBuildClosingNetCashNeverNegative(t *testing.T) {
	closing := BuildClosing(ClosingInput{
		GrossCash: 100,
		Expenses:  []domain.Expense{{Amount: 150, Motive: "repuestos"}},
	})
	require.Equal(t, 0.0, closing.NetCash)
}

func TestBuildClosingEmptyDay(t *testing.T) {
	closing := BuildClosing(ClosingInput{RegisterID: 3, RegisterName: "Caja 2", Date: "2026-08-31"})

	require.Equal(t, 0.0, closing.TotalSales)
	require.Equal(t, 0.0, closing.TotalCollected)
	require.Equal(t, 0.0, closing.GrossCash)
	require.Equal(t, 0.0, closing.NetCash)
	require.Nil(t, closing.CountedCash)
	require.Nil(t, closing.Difference)
	require.Equal(t, domain.ClosingPending, closing.Status)
}

func TestBuildClosingSurplus(t *testing.T) {
	counted := 8100.0
	closing := BuildClosing(ClosingInput{
		GrossCash:   10000,
		Expenses:    []domain.Expense{{Amount: 2000, Motive: "varios"}},
		CountedCash: &counted,
	})
	require.Equal(t, 100.0, *closing.Difference)
}
