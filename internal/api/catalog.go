package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"cajaflow/domain"
)

// Register handlers

type registerPayload struct {
	Name     string `json:"name"`
	Location string `json:"location"`
}

func (h *Handler) createRegister(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin) {
		return
	}
	var req registerPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	var id int64
	err := h.db.QueryRowx(`INSERT INTO registers (name, location) VALUES ($1, $2) RETURNING id`,
		strings.TrimSpace(req.Name), req.Location).Scan(&id)
	if err != nil {
		respondError(w, http.StatusConflict, "register name already exists")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": strings.TrimSpace(req.Name)})
}

func (h *Handler) listRegisters(w http.ResponseWriter, r *http.Request) {
	var registers []domain.Register
	if err := h.db.Select(&registers, `SELECT id, name, location, created_at FROM registers ORDER BY name`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list registers")
		return
	}
	respondJSON(w, http.StatusOK, registers)
}

// Partner handlers

type partnerPayload struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
}

func (h *Handler) createPartner(w http.ResponseWriter, r *http.Request) {
	var req partnerPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	var id int64
	err := h.db.QueryRowx(`INSERT INTO partners (name, address, phone) VALUES ($1, $2, $3) RETURNING id`,
		strings.TrimSpace(req.Name), req.Address, req.Phone).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create partner")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": strings.TrimSpace(req.Name)})
}

func (h *Handler) listPartners(w http.ResponseWriter, r *http.Request) {
	var partners []domain.Partner
	if err := h.db.Select(&partners, `SELECT id, name, address, phone, created_at FROM partners ORDER BY name`); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list partners")
		return
	}
	respondJSON(w, http.StatusOK, partners)
}

func (h *Handler) updatePartner(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid partner id")
		return
	}
	var req partnerPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if _, err := h.db.Exec(`UPDATE partners SET name = $1, address = $2, phone = $3 WHERE id = $4`,
		strings.TrimSpace(req.Name), req.Address, req.Phone, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update partner")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// Product handlers

type productPayload struct {
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	UnitPrice float64 `json:"unit_price"`
	Active    *bool   `json:"active,omitempty"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin, domain.RoleSeller) {
		return
	}
	var req productPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.UnitPrice <= 0 {
		respondError(w, http.StatusBadRequest, "name and a positive unit_price are required")
		return
	}
	var id int64
	err := h.db.QueryRowx(`INSERT INTO products (name, category, unit_price) VALUES ($1, $2, $3) RETURNING id`,
		strings.TrimSpace(req.Name), req.Category, req.UnitPrice).Scan(&id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to create product")
		return
	}
	respondJSON(w, http.StatusCreated, map[string]any{"id": id, "name": strings.TrimSpace(req.Name)})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	var products []domain.Product
	var err error
	if query == "" {
		err = h.db.Select(&products, `SELECT id, name, category, unit_price, active, created_at FROM products WHERE active = 1 ORDER BY name LIMIT 50`)
	} else {
		like := "%" + query + "%"
		err = h.db.Select(&products, `SELECT id, name, category, unit_price, active, created_at FROM products WHERE active = 1 AND (name LIKE $1 OR category LIKE $1) ORDER BY name LIMIT 50`, like)
	}
	if err != nil {
		respondError(w, http.StatusInternalServerError, "unable to list products")
		return
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, domain.RoleAdmin, domain.RoleSeller) {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	var req productPayload
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.UnitPrice <= 0 {
		respondError(w, http.StatusBadRequest, "name and a positive unit_price are required")
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	if _, err := h.db.Exec(`UPDATE products SET name = $1, category = $2, unit_price = $3, active = $4 WHERE id = $5`,
		strings.TrimSpace(req.Name), req.Category, req.UnitPrice, active, id); err != nil {
		respondError(w, http.StatusInternalServerError, "unable to update product")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
