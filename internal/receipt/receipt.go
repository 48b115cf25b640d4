// Package receipt builds the printable documents: the closing receipt for a
// register and the ticket for a single sale. The document model is
// deterministic (same data, same rows) so its content can be asserted
// independently of the PDF encoder.
package receipt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"cajaflow/domain"
	"cajaflow/internal/money"
)

type Row struct {
	Label string
	Value string
}

type Document struct {
	Title    string
	Filename string
	Rows     []Row
}

// ClosingReceipt lays out the end-of-day reconciliation for one register.
func ClosingReceipt(c domain.Closing) Document {
	doc := Document{
		Title:    fmt.Sprintf("Cierre de caja - %s - %s", c.RegisterName, c.Date),
		Filename: fmt.Sprintf("cierre-%s-%s.pdf", slug(c.RegisterName), c.Date),
	}

	doc.Rows = append(doc.Rows,
		Row{"Total ventas", money.Format(c.TotalSales)},
		Row{"Total cobrado", money.Format(c.TotalCollected)},
		Row{"Cuenta corriente", money.Format(c.TotalOnAccount)},
	)
	for _, m := range c.MethodBreakdown {
		doc.Rows = append(doc.Rows, Row{"  " + m.Method, money.Format(m.Total)})
	}
	doc.Rows = append(doc.Rows,
		Row{"Efectivo bruto", money.Format(c.GrossCash)},
	)
	for _, e := range c.Expenses {
		doc.Rows = append(doc.Rows, Row{"  Gasto: " + e.Motive, money.Format(e.Amount)})
	}
	doc.Rows = append(doc.Rows,
		Row{"Gastos", money.Format(c.TotalExpenses)},
		Row{"Efectivo neto", money.Format(c.NetCash)},
	)
	if c.CountedCash != nil {
		doc.Rows = append(doc.Rows, Row{"Efectivo contado", money.FormatPtr(c.CountedCash)})
	}
	if c.Difference != nil {
		doc.Rows = append(doc.Rows, Row{"Diferencia", money.FormatPtr(c.Difference)})
	}
	return doc
}

// SaleTicket lays out one order. productNames maps product id to display
// name; unknown ids fall back to the numeric id.
func SaleTicket(o domain.Order, productNames map[int64]string) Document {
	doc := Document{
		Title:    fmt.Sprintf("Venta N° %d", o.Number),
		Filename: fmt.Sprintf("ticket-%06d.pdf", o.Number),
	}

	for _, item := range o.Items {
		name, ok := productNames[item.ProductID]
		if !ok {
			name = fmt.Sprintf("#%d", item.ProductID)
		}
		doc.Rows = append(doc.Rows, Row{
			fmt.Sprintf("%s x%d", name, item.Quantity),
			money.Format(item.Subtotal),
		})
	}
	doc.Rows = append(doc.Rows,
		Row{"Total", money.Format(o.Total)},
		Row{"Pagado", money.Format(o.Paid)},
		Row{"Restante", money.Format(o.Remaining)},
	)
	if o.Method != nil {
		doc.Rows = append(doc.Rows, Row{"Método de pago", *o.Method})
	}
	doc.Rows = append(doc.Rows, Row{"Estado", string(o.Status)})
	return doc
}

// Render encodes a document as a single-page A4 PDF.
func Render(doc Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(0, 10, tr(doc.Title), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range doc.Rows {
		pdf.CellFormat(120, 7, tr(row.Label), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, tr(row.Value), "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func slug(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteByte('-')
		}
	}
	return b.String()
}
