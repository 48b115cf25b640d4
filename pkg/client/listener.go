package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"cajaflow/domain"
	"cajaflow/internal/stream"
)

// ConnState is the listener's connection state.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "DISCONNECTED"
	}
}

// Listener holds one streaming connection per register and feeds every
// decoded event into its Feed. Malformed messages are logged and dropped;
// they never desynchronize the collection. The listener does not reconnect
// on its own: a dropped connection parks it in DISCONNECTED and closes
// Done(), and the owner decides whether to dial again.
type Listener struct {
	url   string
	feed  *Feed
	log   *zap.Logger
	state atomic.Int32

	conn *websocket.Conn
	done chan struct{}
}

// NewListener prepares a listener for one register. The session token rides
// on the feed URL because browsers cannot set headers on websocket dials.
func NewListener(baseURL string, registerID int64, session domain.Session, feed *Feed, log *zap.Logger) *Listener {
	wsBase := strings.Replace(baseURL, "http", "ws", 1)
	return &Listener{
		url:  fmt.Sprintf("%s/ws/registers/%d?token=%s", wsBase, registerID, session.Token),
		feed: feed,
		log:  log,
		done: make(chan struct{}),
	}
}

// Connect dials the feed and starts consuming events. The server replays the
// day's snapshot as the first message, so the feed is consistent as soon as
// it arrives.
func (l *Listener) Connect(ctx context.Context) error {
	if !l.state.CompareAndSwap(int32(StateDisconnected), int32(StateConnecting)) {
		return domain.Validationf("listener is already %s", l.State())
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, nil)
	if err != nil {
		l.state.Store(int32(StateDisconnected))
		return &domain.NetworkError{Err: err}
	}

	l.conn = conn
	l.state.Store(int32(StateConnected))
	go l.readLoop()
	return nil
}

func (l *Listener) readLoop() {
	defer func() {
		l.state.Store(int32(StateDisconnected))
		close(l.done)
	}()

	for {
		_, data, err := l.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.log.Warn("feed connection dropped", zap.Error(err))
			}
			return
		}

		var msg stream.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			l.log.Warn("dropping malformed feed message", zap.Error(err))
			continue
		}
		if err := l.feed.Apply(msg); err != nil {
			l.log.Warn("dropping unprocessable feed message",
				zap.String("tipo", msg.Tipo), zap.Error(err))
		}
	}
}

// Close explicitly tears the connection down.
func (l *Listener) Close() error {
	if l.conn == nil {
		return nil
	}
	_ = l.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	return l.conn.Close()
}

// State reports the current connection state.
func (l *Listener) State() ConnState {
	return ConnState(l.state.Load())
}

// Done is closed when the read loop ends, either from an explicit Close or a
// dropped connection.
func (l *Listener) Done() <-chan struct{} {
	return l.done
}
