package receipt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"cajaflow/domain"
)

func fixtureClosing() domain.Closing {
	counted := 7900.0
	diff := -100.0
	return domain.Closing{
		ID:             1,
		RegisterID:     1,
		RegisterName:   "Caja Principal",
		Date:           "2026-08-31",
		TotalSales:     13000,
		TotalCollected: 12500,
		TotalOnAccount: 500,
		GrossCash:      10000,
		TotalExpenses:  2000,
		NetCash:        8000,
		CountedCash:    &counted,
		Difference:     &diff,
		Status:         domain.ClosingPending,
		MethodBreakdown: []domain.MethodTotal{
			{Method: "CASH", Total: 10000},
			{Method: "CARD", Total: 2500},
		},
		Expenses: []domain.Expense{
			{Amount: 1500, Motive: "nafta"},
			{Amount: 500, Motive: "almuerzo"},
		},
	}
}

func TestClosingReceiptDeterministic(t *testing.T) {
	doc := ClosingReceipt(fixtureClosing())

	require.Equal(t, "cierre-caja-principal-2026-08-31.pdf", doc.Filename)
	require.Equal(t, "Cierre de caja - Caja Principal - 2026-08-31", doc.Title)
	require.Equal(t, ClosingReceipt(fixtureClosing()), doc)

	require.Contains(t, doc.Rows, Row{"Efectivo neto", "$ 8.000,00"})
	require.Contains(t, doc.Rows, Row{"Diferencia", "-$ 100,00"})
	require.Contains(t, doc.Rows, Row{"  CASH", "$ 10.000,00"})
	require.Contains(t, doc.Rows, Row{"  Gasto: nafta", "$ 1.500,00"})
}

func TestSaleTicket(t *testing.T) {
	method := "CASH"
	order := domain.Order{
		ID: 5, Number: 123, Total: 700, Paid: 700, Remaining: 0,
		Method: &method, Status: domain.StatusPaid,
		Items: []domain.OrderItem{
			{ProductID: 1, Quantity: 2, UnitPrice: 200, Subtotal: 400},
			{ProductID: 2, Quantity: 1, UnitPrice: 300, Subtotal: 300},
		},
	}
	doc := SaleTicket(order, map[int64]string{1: "Harina", 2: "Aceite"})

	require.Equal(t, "ticket-000123.pdf", doc.Filename)
	require.Equal(t, "Venta N° 123", doc.Title)
	require.Contains(t, doc.Rows, Row{"Harina x2", "$ 400,00"})
	require.Contains(t, doc.Rows, Row{"Total", "$ 700,00"})
	require.Contains(t, doc.Rows, Row{"Estado", "PAID"})
}

func TestRenderProducesPDF(t *testing.T) {
	data, err := Render(ClosingReceipt(fixtureClosing()))
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}
