package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"cajaflow/domain"
	"cajaflow/internal/money"
)

type saleItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  int64 `json:"quantity"`
}

type saleRequest struct {
	RegisterID int64             `json:"register_id"`
	PartnerID  *int64            `json:"partner_id,omitempty"`
	Items      []saleItemRequest `json:"items"`
	OnAccount  bool              `json:"on_account"`
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin, domain.RoleSeller) {
		return
	}
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.RegisterID == 0 || len(req.Items) == 0 {
		respondError(w, http.StatusBadRequest, "register_id and at least one item are required")
		return
	}
	if req.OnAccount && req.PartnerID == nil {
		respondError(w, http.StatusBadRequest, "running-account sales require a partner")
		return
	}

	type productSnapshot struct {
		ID        int64   `db:"id"`
		UnitPrice float64 `db:"unit_price"`
	}

	snapshots := make(map[int64]productSnapshot)
	var total float64
	for _, item := range req.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			respondError(w, http.StatusBadRequest, "product_id and quantity are required for each item")
			return
		}
		var snap productSnapshot
		err := h.db.Get(&snap, `SELECT id, unit_price FROM products WHERE id = $1 AND active = 1`, item.ProductID)
		if errors.Is(err, sql.ErrNoRows) {
			respondError(w, http.StatusBadRequest, "product not found for one or more items")
			return
		}
		if err != nil {
			respondError(w, http.StatusInternalServerError, "unable to fetch products")
			return
		}
		snapshots[item.ProductID] = snap
		total = money.Add2(total, money.Round2(float64(item.Quantity)*snap.UnitPrice))
	}

	status := domain.StatusPending
	if req.OnAccount {
		status = domain.StatusRunningAccount
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to start sale")
		return
	}
	defer tx.Rollback()

	var number int64
	if err := tx.Get(&number, `SELECT COALESCE(MAX(number), 0) + 1 FROM orders WHERE register_id = $1`, req.RegisterID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to allocate sale number")
		return
	}

	session := sessionFrom(r)
	var orderID int64
	err = tx.QueryRowx(`INSERT INTO orders (number, register_id, partner_id, user_id, total, paid, remaining, status) VALUES ($1, $2, $3, $4, $5, 0, $5, $6) RETURNING id`,
		number, req.RegisterID, req.PartnerID, session.UserID, total, status).Scan(&orderID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create sale")
		return
	}

	for _, item := range req.Items {
		snap := snapshots[item.ProductID]
		subtotal := money.Round2(float64(item.Quantity) * snap.UnitPrice)
		if _, err := tx.Exec(`INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal) VALUES ($1, $2, $3, $4, $5)`,
			orderID, item.ProductID, item.Quantity, snap.UnitPrice, subtotal); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to save sale items")
			return
		}
	}

	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to finalize sale")
		return
	}

	order, err := h.loadOrder(orderID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load created sale")
		return
	}
	h.hub.OrderCreated(order)
	respondJSON(w, http.StatusCreated, order)
}

func (h *Handler) listSales(w http.ResponseWriter, r *http.Request) {
	var (
		args    []any
		clauses []string
	)

	if raw := strings.TrimSpace(r.URL.Query().Get("register_id")); raw != "" {
		registerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || registerID <= 0 {
			respondError(w, http.StatusBadRequest, "invalid register_id")
			return
		}
		args = append(args, registerID)
		clauses = append(clauses, "register_id = $"+strconv.Itoa(len(args)))
	}
	if date := strings.TrimSpace(r.URL.Query().Get("date")); date != "" {
		args = append(args, date)
		clauses = append(clauses, "DATE(created_at) = $"+strconv.Itoa(len(args)))
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		args = append(args, status)
		clauses = append(clauses, "status = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT id, number, register_id, partner_id, user_id, total, paid, remaining, method, status, created_at FROM orders`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	var orders []domain.Order
	if err := h.db.Select(&orders, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list sales")
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) getSale(w http.ResponseWriter, r *http.Request) {
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
	respondJSON(w, http.StatusOK, order)
}

func (h *Handler) deleteSale(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
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

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete sale")
		return
	}
	defer tx.Rollback()
	if _, err := tx.Exec(`DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete sale items")
		return
	}
	if _, err := tx.Exec(`DELETE FROM orders WHERE id = $1`, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete sale")
		return
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to delete sale")
		return
	}

	h.hub.OrderDeleted(order.RegisterID, order.ID)
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// Payment application (also used by the driver collection route)

type paymentRequest struct {
	Amount   float64 `json:"amount"`
	Method   string  `json:"method"`
	Deferred bool    `json:"deferred"`
}

func (h *Handler) applyPayment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid sale id")
		return
	}
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
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

	updated, err := order.ApplyPayment(req.Amount, strings.TrimSpace(req.Method), req.Deferred)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	tx, err := h.db.Beginx()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to record payment")
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE orders SET paid = $1, remaining = $2, method = $3, status = $4 WHERE id = $5`,
		updated.Paid, updated.Remaining, updated.Method, updated.Status, updated.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update sale")
		return
	}
	if !req.Deferred {
		method := strings.TrimSpace(req.Method)
		if method == "" {
			method = domain.MethodNone
		}
		if _, err := tx.Exec(`INSERT INTO payments (order_id, register_id, method, amount) VALUES ($1, $2, $3, $4)`,
			updated.ID, updated.RegisterID, method, money.Round2(req.Amount)); err != nil {
			respondError(w, http.StatusInternalServerError, "unable to record payment")
			return
		}
	}
	if err := tx.Commit(); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to record payment")
		return
	}

	h.hub.OrderUpdated(updated)
	respondJSON(w, http.StatusOK, updated)
}

// pendingDeliveries lists today's orders a driver still has to settle for a
// register: pending, partially paid or deferred.
func (h *Handler) pendingDeliveries(w http.ResponseWriter, r *http.Request) {
	registerID, err := strconv.ParseInt(r.URL.Query().Get("register_id"), 10, 64)
	if err != nil || registerID <= 0 {
		respondError(w, http.StatusBadRequest, "valid register_id is required")
		return
	}
	var orders []domain.Order
	err = h.db.Select(&orders, `SELECT id, number, register_id, partner_id, user_id, total, paid, remaining, method, status, created_at FROM orders
        WHERE register_id = $1 AND DATE(created_at) = DATE('now') AND status IN ($2, $3, $4)
        ORDER BY created_at DESC`,
		registerID, domain.StatusPending, domain.StatusPartiallyPaid, domain.StatusDeferred)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list pending deliveries")
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

func (h *Handler) loadOrder(id int64) (domain.Order, error) {
	var o domain.Order
	if err := h.db.Get(&o, `SELECT id, number, register_id, partner_id, user_id, total, paid, remaining, method, status, created_at FROM orders WHERE id = $1`, id); err != nil {
		return domain.Order{}, err
	}
	if err := h.db.Select(&o.Items, `SELECT id, order_id, product_id, quantity, unit_price, subtotal FROM order_items WHERE order_id = $1`, id); err != nil {
		return domain.Order{}, err
	}
	return o, nil
}
