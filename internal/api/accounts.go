package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"cajaflow/domain"
	"cajaflow/internal/money"
)

// accountSummary returns the running-account position of one partner: open
// orders, total owed and total already delivered.
func (h *Handler) accountSummary(w http.ResponseWriter, r *http.Request) {
	partnerID, err := strconv.ParseInt(chi.URLParam(r, "partnerID"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid partner id")
		return
	}

	var partner domain.Partner
	err = h.db.Get(&partner, `SELECT id, name, address, phone, created_at FROM partners WHERE id = $1`, partnerID)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "partner not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load partner")
		return
	}

	openOrders := []domain.Order{}
	err = h.db.Select(&openOrders, `SELECT id, number, register_id, partner_id, user_id, total, paid, remaining, method, status, created_at FROM orders
        WHERE partner_id = $1 AND status = $2 ORDER BY created_at DESC`, partnerID, domain.StatusRunningAccount)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load running-account orders")
		return
	}

	var totalOwed float64
	for _, o := range openOrders {
		totalOwed = money.Add2(totalOwed, o.Remaining)
	}

	var totalDelivered float64
	if err := h.db.Get(&totalDelivered, `SELECT COALESCE(SUM(total), 0) FROM orders WHERE partner_id = $1 AND status = $2`,
		partnerID, domain.StatusDelivered); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load delivered totals")
		return
	}

	respondJSON(w, http.StatusOK, domain.AccountSummary{
		Partner:        partner,
		OpenOrders:     openOrders,
		TotalOwed:      totalOwed,
		TotalDelivered: money.Round2(totalDelivered),
	})
}

// markDelivered confirms delivery of a running-account order. Confirming an
// already delivered order is a no-op.
func (h *Handler) markDelivered(w http.ResponseWriter, r *http.Request) {
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

	updated, err := order.MarkRunningAccountDelivered()
	if err != nil {
		respondDomainError(w, err)
		return
	}
	if updated.Status != order.Status {
		if _, err := h.db.Exec(`UPDATE orders SET status = $1 WHERE id = $2`, updated.Status, updated.ID); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to update sale")
			return
		}
		h.hub.OrderUpdated(updated)
	}
	respondJSON(w, http.StatusOK, updated)
}
