package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"cajaflow/domain"
	"cajaflow/internal/ledger"
	"cajaflow/internal/money"
)

// Expense handlers

type expenseRequest struct {
	RegisterID int64   `json:"register_id"`
	Amount     float64 `json:"amount"`
	Motive     string  `json:"motive"`
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.RegisterID == 0 || req.Amount <= 0 || strings.TrimSpace(req.Motive) == "" {
		respondError(w, http.StatusBadRequest, "register_id, a positive amount and a motive are required")
		return
	}
	var id int64
	err := h.db.QueryRowx(`INSERT INTO expenses (register_id, amount, motive) VALUES ($1, $2, $3) RETURNING id`,
		req.RegisterID, money.Round2(req.Amount), strings.TrimSpace(req.Motive)).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to record expense")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	registerID, err := strconv.ParseInt(r.URL.Query().Get("register_id"), 10, 64)
	if err != nil || registerID <= 0 {
		respondError(w, http.StatusBadRequest, "valid register_id is required")
		return
	}
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	if date == "" {
		date = today()
	}
	expenses, err := h.expensesFor(registerID, date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list expenses")
		return
	}
	respondJSON(w, http.StatusOK, expenses)
}

// Closing handlers

type openClosingRequest struct {
	RegisterID  int64    `json:"register_id"`
	Date        string   `json:"date,omitempty"`
	CountedCash *float64 `json:"counted_cash,omitempty"`
}

// openClosing assembles the day's reconciliation for one register and stores
// it as a pending closing. At most one pending closing may exist per register
// and calendar day.
func (h *Handler) openClosing(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin, domain.RoleSeller) {
		return
	}
	var req openClosingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.RegisterID == 0 {
		respondError(w, http.StatusBadRequest, "register_id is required")
		return
	}
	date := strings.TrimSpace(req.Date)
	if date == "" {
		date = today()
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		respondError(w, http.StatusBadRequest, "date must be in YYYY-MM-DD format")
		return
	}

	var register domain.Register
	err := h.db.Get(&register, `SELECT id, name, location, created_at FROM registers WHERE id = $1`, req.RegisterID)
	if errors.Is(err, sql.ErrNoRows) {
		respondError(w, http.StatusNotFound, "register not found")
		return
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to load register")
		return
	}

	var pending int
	if err := h.db.Get(&pending, `SELECT COUNT(*) FROM closings WHERE register_id = $1 AND date = $2 AND status = $3`,
		req.RegisterID, date, domain.ClosingPending); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to check pending closings")
		return
	}
	if pending > 0 {
		respondDomainError(w, domain.Conflictf("a pending closing already exists for register %s on %s", register.Name, date))
		return
	}

	input, err := h.closingInput(register, date)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to gather closing data")
		return
	}
	input.CountedCash = req.CountedCash

	closing := ledger.BuildClosing(input)

	err = h.db.QueryRowx(`INSERT INTO closings (register_id, register_name, date, total_sales, total_collected, total_on_account, gross_cash, total_expenses, net_cash, counted_cash, difference, status)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) RETURNING id, created_at`,
		closing.RegisterID, closing.RegisterName, closing.Date, closing.TotalSales, closing.TotalCollected,
		closing.TotalOnAccount, closing.GrossCash, closing.TotalExpenses, closing.NetCash,
		closing.CountedCash, closing.Difference, closing.Status).Scan(&closing.ID, &closing.CreatedAt)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to store closing")
		return
	}

	respondJSON(w, http.StatusCreated, closing)
}

func (h *Handler) listClosings(w http.ResponseWriter, r *http.Request) {
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
		clauses = append(clauses, "date = $"+strconv.Itoa(len(args)))
	}

	query := `SELECT id, register_id, register_name, date, total_sales, total_collected, total_on_account, gross_cash, total_expenses, net_cash, counted_cash, difference, status, created_at FROM closings`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date DESC, id DESC"

	var closings []domain.Closing
	if err := h.db.Select(&closings, query, args...); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list closings")
		return
	}
	if closings == nil {
		closings = []domain.Closing{}
	}
	respondJSON(w, http.StatusOK, closings)
}

type patchClosingRequest struct {
	CountedCash *float64 `json:"counted_cash,omitempty"`
	Finalize    bool     `json:"finalize"`
}

// patchClosing lets an admin enter the physically counted cash and finalize
// the record. Everything else on a submitted closing is immutable.
func (h *Handler) patchClosing(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid closing id")
		return
	}
	var req patchClosingRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
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

	if req.CountedCash != nil {
		counted := money.Round2(*req.CountedCash)
		diff := money.Sub2(counted, closing.NetCash)
		closing.CountedCash = &counted
		closing.Difference = &diff
	}
	if req.Finalize {
		if closing.Status == domain.ClosingClosed {
			respondDomainError(w, domain.Conflictf("closing %d is already finalized", closing.ID))
			return
		}
		closing.Status = domain.ClosingClosed
	}

	if _, err := h.db.Exec(`UPDATE closings SET counted_cash = $1, difference = $2, status = $3 WHERE id = $4`,
		closing.CountedCash, closing.Difference, closing.Status, closing.ID); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update closing")
		return
	}
	respondJSON(w, http.StatusOK, closing)
}

// Daily report

func (h *Handler) dailyReport(w http.ResponseWriter, r *http.Request) {
	query := `SELECT COALESCE(SUM(total), 0) AS revenue, COALESCE(SUM(paid), 0) AS collected, COUNT(*) AS count FROM orders WHERE DATE(created_at) = DATE('now')`
	args := []any{}
	if registerID := strings.TrimSpace(r.URL.Query().Get("register_id")); registerID != "" {
		query += " AND register_id = $1"
		args = append(args, registerID)
	}
	var (
		revenue   float64
		collected float64
		count     int64
	)
	if err := h.db.QueryRow(query, args...).Scan(&revenue, &collected, &count); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to fetch daily report")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"revenue":     money.Round2(revenue),
		"collected":   money.Round2(collected),
		"sales_count": count,
	})
}

// Data gathering helpers

func today() string {
	return time.Now().UTC().Format("2006-01-02")
}

func (h *Handler) paymentsFor(registerID int64, date string) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := h.db.Select(&payments, `SELECT id, order_id, method, amount, created_at FROM payments WHERE register_id = $1 AND DATE(created_at) = $2 ORDER BY id`, registerID, date)
	return payments, err
}

func (h *Handler) expensesFor(registerID int64, date string) ([]domain.Expense, error) {
	expenses := []domain.Expense{}
	err := h.db.Select(&expenses, `SELECT id, register_id, amount, motive, created_at FROM expenses WHERE register_id = $1 AND DATE(created_at) = $2 ORDER BY id`, registerID, date)
	return expenses, err
}

// closingInput gathers the day's aggregates for a register. Gross cash is
// the collected total of the CASH method.
func (h *Handler) closingInput(register domain.Register, date string) (ledger.ClosingInput, error) {
	payments, err := h.paymentsFor(register.ID, date)
	if err != nil {
		return ledger.ClosingInput{}, err
	}
	expenses, err := h.expensesFor(register.ID, date)
	if err != nil {
		return ledger.ClosingInput{}, err
	}

	var totalSales float64
	if err := h.db.Get(&totalSales, `SELECT COALESCE(SUM(total), 0) FROM orders WHERE register_id = $1 AND DATE(created_at) = $2`, register.ID, date); err != nil {
		return ledger.ClosingInput{}, err
	}
	var totalOnAccount float64
	if err := h.db.Get(&totalOnAccount, `SELECT COALESCE(SUM(total), 0) FROM orders WHERE register_id = $1 AND DATE(created_at) = $2 AND status IN ($3, $4)`,
		register.ID, date, domain.StatusRunningAccount, domain.StatusDelivered); err != nil {
		return ledger.ClosingInput{}, err
	}

	methods := ledger.AggregateByMethod(payments)
	var grossCash float64
	for _, m := range methods {
		if m.Method == domain.MethodCash {
			grossCash = m.Total
		}
	}

	return ledger.ClosingInput{
		RegisterID:     register.ID,
		RegisterName:   register.Name,
		Date:           date,
		Methods:        methods,
		TotalSales:     totalSales,
		TotalOnAccount: totalOnAccount,
		GrossCash:      grossCash,
		Expenses:       expenses,
	}, nil
}

func (h *Handler) loadClosing(id int64) (domain.Closing, error) {
	var c domain.Closing
	err := h.db.Get(&c, `SELECT id, register_id, register_name, date, total_sales, total_collected, total_on_account, gross_cash, total_expenses, net_cash, counted_cash, difference, status, created_at FROM closings WHERE id = $1`, id)
	return c, err
}
