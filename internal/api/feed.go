package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"cajaflow/domain"
	"cajaflow/internal/stream"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// serveFeed upgrades the connection and attaches it to the register's feed.
// The feed route authenticates itself (query token) because it sits outside
// the JSON middleware chain.
func (h *Handler) serveFeed(w http.ResponseWriter, r *http.Request) {
	if _, uerr := h.sessionFromToken(bearerToken(r)); uerr != nil {
		respondUnauthorized(w, uerr)
		return
	}
	registerID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || registerID <= 0 {
		respondError(w, http.StatusBadRequest, "invalid register id")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	h.hub.Serve(registerID, conn)
}

// SnapshotLoader builds the hub's snapshot source: the register's orders for
// the current day, newest first.
func SnapshotLoader(db *sqlx.DB) stream.SnapshotFunc {
	return func(registerID int64) ([]domain.Order, error) {
		var orders []domain.Order
		err := db.Select(&orders, `SELECT id, number, register_id, partner_id, user_id, total, paid, remaining, method, status, created_at FROM orders
            WHERE register_id = $1 AND DATE(created_at) = DATE('now') ORDER BY created_at DESC, id DESC`, registerID)
		return orders, err
	}
}
