package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cajaflow/domain"
	"cajaflow/internal/receipt"
)

// saleTicket renders the printable ticket for one sale.
func (h *Handler) saleTicket(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	order, err := h.loadOrder(id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "sale not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load sale")
		return
	}

	names := make(map[int64]string)
	if len(order.Items) > 0 {
		type productName struct {
			ID   int64  `db:"id"`
			Name string `db:"name"`
		}
		var rows []productName
		if err := h.db.Select(&rows, `SELECT p.id, p.name FROM products p JOIN order_items oi ON oi.product_id = p.id WHERE oi.order_id = $1`, id); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to load product names")
			return
		}
		for _, row := range rows {
			names[row.ID] = row.Name
		}
	}

	h.servePDF(w, receipt.SaleTicket(order, names))
}

// closingReceipt renders the reconciliation receipt for one closing,
// recomputing the per-method breakdown and expense list for its day.
func (h *Handler) closingReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid closing id")
		return
	}
	closing, err := h.loadClosing(id)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "closing not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load closing")
		return
	}

	register := domain.Register{ID: closing.RegisterID, Name: closing.RegisterName}
	input, err := h.closingInput(register, closing.Date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to gather closing data")
		return
	}
	closing.MethodBreakdown = input.Methods
	closing.Expenses = input.Expenses

	h.servePDF(w, receipt.ClosingReceipt(closing))
}

func (h *Handler) servePDF(w http.ResponseWriter, doc receipt.Document) {
	data, err := receipt.Render(doc)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to render document")
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
