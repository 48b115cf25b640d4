// Package stream pushes order events to connected registers. Each register
// id has its own feed; a new subscriber first receives the day's full order
// snapshot as one batch message, then created/updated/deleted events as they
// happen. The hub is the single owner of the feed; handlers publish through
// it instead of broadcasting ambiently.
package stream

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cajaflow/domain"
)

// SnapshotFunc loads the current day's orders for a register.
type SnapshotFunc func(registerID int64) ([]domain.Order, error)

const sendBuffer = 64

type subscriber struct {
	id   string
	send chan []byte
}

type Hub struct {
	snapshot SnapshotFunc
	log      *zap.Logger

	mu   sync.Mutex
	subs map[int64]map[string]*subscriber
}

func NewHub(snapshot SnapshotFunc, log *zap.Logger) *Hub {
	return &Hub{
		snapshot: snapshot,
		log:      log,
		subs:     make(map[int64]map[string]*subscriber),
	}
}

// Serve takes ownership of an upgraded connection and pumps feed messages to
// it until the peer disconnects. The snapshot is sent before the subscriber
// can receive any event, so the client always starts from a consistent
// collection.
func (h *Hub) Serve(registerID int64, conn *websocket.Conn) {
	defer conn.Close()

	orders, err := h.snapshot(registerID)
	if err != nil {
		h.log.Error("feed snapshot failed", zap.Int64("register_id", registerID), zap.Error(err))
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	payload, err := Encode(KindSnapshot, orders)
	if err != nil {
		h.log.Error("feed snapshot encode failed", zap.Error(err))
		return
	}

	sub := &subscriber{id: uuid.NewString(), send: make(chan []byte, sendBuffer)}
	sub.send <- payload
	h.add(registerID, sub)
	defer h.remove(registerID, sub)

	h.log.Info("feed subscriber connected",
		zap.Int64("register_id", registerID), zap.String("subscriber", sub.id))

	// Drain the reader so close frames are processed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-sub.send:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}

// Publish broadcasts one event to every subscriber of a register. A
// subscriber that cannot keep up is dropped rather than blocking the rest.
func (h *Hub) Publish(registerID int64, kind string, data any) {
	msg, err := Encode(kind, data)
	if err != nil {
		h.log.Error("feed event encode failed", zap.String("tipo", kind), zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, sub := range h.subs[registerID] {
		select {
		case sub.send <- msg:
		default:
			h.log.Warn("feed subscriber too slow, dropping",
				zap.Int64("register_id", registerID), zap.String("subscriber", id))
			close(sub.send)
			delete(h.subs[registerID], id)
		}
	}
}

// OrderCreated, OrderUpdated and OrderDeleted are the three events the order
// handlers publish.
func (h *Hub) OrderCreated(o domain.Order) { h.Publish(o.RegisterID, KindCreated, o) }
func (h *Hub) OrderUpdated(o domain.Order) { h.Publish(o.RegisterID, KindUpdated, o) }
func (h *Hub) OrderDeleted(registerID, orderID int64) {
	h.Publish(registerID, KindDeleted, Deleted{ID: orderID})
}

func (h *Hub) add(registerID int64, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[registerID] == nil {
		h.subs[registerID] = make(map[string]*subscriber)
	}
	h.subs[registerID][sub.id] = sub
}

func (h *Hub) remove(registerID int64, sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[registerID][sub.id]; ok {
		delete(h.subs[registerID], sub.id)
		close(sub.send)
	}
}
