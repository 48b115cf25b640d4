package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"cajaflow/domain"
	"cajaflow/internal/logger"
	"cajaflow/internal/stream"
)

type ctxKey string

const ctxSession ctxKey = "session"

const tokenTTL = 24 * time.Hour

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	db     *sqlx.DB
	secret string
	hub    *stream.Hub
	log    *zap.Logger
}

// New constructs a Handler.
func New(db *sqlx.DB, secret string, hub *stream.Hub, log *zap.Logger) *Handler {
	return &Handler{db: db, secret: secret, hub: hub, log: log}
}

// Router wires up the HTTP API.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(logger.RequestLogger(h.log))
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Route("/registers", func(r chi.Router) {
			r.Post("/", h.createRegister)
			r.Get("/", h.listRegisters)
		})

		pr.Route("/partners", func(r chi.Router) {
			r.Post("/", h.createPartner)
			r.Get("/", h.listPartners)
			r.Put("/{id}", h.updatePartner)
		})

		pr.Route("/products", func(r chi.Router) {
			r.Post("/", h.createProduct)
			r.Get("/", h.listProducts)
			r.Put("/{id}", h.updateProduct)
		})

		pr.Route("/sales", func(r chi.Router) {
			r.Post("/", h.createSale)
			r.Get("/", h.listSales)
			r.Get("/{id}", h.getSale)
			r.Delete("/{id}", h.deleteSale)
			r.Post("/{id}/payments", h.applyPayment)
			r.Get("/{id}/ticket", h.saleTicket)
		})

		pr.Route("/deliveries", func(r chi.Router) {
			r.Get("/pending", h.pendingDeliveries)
			r.Post("/{id}/collect", h.applyPayment)
		})

		pr.Route("/accounts", func(r chi.Router) {
			r.Get("/{partnerID}/summary", h.accountSummary)
			r.Post("/orders/{id}/delivered", h.markDelivered)
		})

		pr.Route("/expenses", func(r chi.Router) {
			r.Post("/", h.createExpense)
			r.Get("/", h.listExpenses)
		})

		pr.Route("/closings", func(r chi.Router) {
			r.Post("/", h.openClosing)
			r.Get("/", h.listClosings)
			r.Patch("/{id}", h.patchClosing)
			r.Get("/{id}/receipt", h.closingReceipt)
		})

		pr.Get("/reports/daily", h.dailyReport)
	})

	r.Get("/ws/registers/{id}", h.serveFeed)

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Authentication

type authClaims struct {
	UserID     int64  `json:"user_id"`
	Role       string `json:"role"`
	RegisterID *int64 `json:"register_id,omitempty"`
	jwt.RegisteredClaims
}

func (h *Handler) generateToken(user domain.User) (string, time.Time, error) {
	expires := time.Now().Add(tokenTTL)
	claims := authClaims{
		UserID:     user.ID,
		Role:       user.Role,
		RegisterID: user.RegisterID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.secret))
	return signed, expires, err
}

// sessionFromToken validates a bearer token and builds the immutable session
// carried through the request. The three unauthorized reasons differ only in
// the message; the control flow is the same for all of them.
func (h *Handler) sessionFromToken(tokenString string) (domain.Session, *domain.UnauthorizedError) {
	if tokenString == "" {
		return domain.Session{}, &domain.UnauthorizedError{Reason: domain.ReasonNoToken}
	}
	token, err := jwt.ParseWithClaims(tokenString, &authClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(h.secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Session{}, &domain.UnauthorizedError{Reason: domain.ReasonTokenExpired}
		}
		return domain.Session{}, &domain.UnauthorizedError{Reason: domain.ReasonTokenInvalid}
	}
	claims, ok := token.Claims.(*authClaims)
	if !ok || !token.Valid {
		return domain.Session{}, &domain.UnauthorizedError{Reason: domain.ReasonTokenInvalid}
	}
	return domain.Session{
		UserID:     claims.UserID,
		Role:       claims.Role,
		RegisterID: claims.RegisterID,
		ExpiresAt:  claims.ExpiresAt.Time,
	}, nil
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" && strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[len("Bearer "):])
	}
	// Websocket clients cannot set headers from a browser; accept the token
	// as a query parameter there.
	return r.URL.Query().Get("token")
}

func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, uerr := h.sessionFromToken(bearerToken(r))
		if uerr != nil {
			respondUnauthorized(w, uerr)
			return
		}
		ctx := context.WithValue(r.Context(), ctxSession, session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) domain.Session {
	s, _ := r.Context().Value(ctxSession).(domain.Session)
	return s
}

func (h *Handler) requireRole(w http.ResponseWriter, r *http.Request, allowed ...string) bool {
	current := sessionFrom(r).Role
	for _, role := range allowed {
		if current == role {
			return true
		}
	}
	respondError(w, http.StatusForbidden, "insufficient permissions")
	return false
}

// Helpers

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func respondUnauthorized(w http.ResponseWriter, uerr *domain.UnauthorizedError) {
	respondJSON(w, http.StatusUnauthorized, map[string]string{
		"error":  uerr.Error(),
		"reason": string(uerr.Reason),
	})
}

// respondDomainError maps the error taxonomy onto HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	var verr *domain.ValidationError
	var cerr *domain.ConflictError
	var uerr *domain.UnauthorizedError
	switch {
	case errors.As(err, &verr):
		respondError(w, http.StatusBadRequest, verr.Msg)
	case errors.As(err, &cerr):
		respondError(w, http.StatusConflict, cerr.Msg)
	case errors.As(err, &uerr):
		respondUnauthorized(w, uerr)
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

func nullIfEmpty(val string) *string {
	trimmed := strings.TrimSpace(val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
