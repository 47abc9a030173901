package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/muhallimir/aims-commerce-chat/internal/domain/chat"
	"github.com/muhallimir/aims-commerce-chat/internal/domain/shared"
)

// Session is one live WebSocket connection. It owns the underlying conn and
// implements chat.Conn so the registry can reference it as an opaque
// transport handle. Outbound events go through a buffered channel drained by
// a single writer goroutine; a full buffer or a closed session fails the
// send, which callers treat as a best-effort miss.
type Session struct {
	id     string
	conn   *websocket.Conn
	send   chan chat.Event
	done   chan struct{}
	once   sync.Once
	logger *zap.Logger

	// Identity binding, set by the gateway once the session sends a valid
	// connect-identified event. Only touched under the gateway dispatch
	// lock.
	identity   string
	isAdmin    bool
	identified bool
}

func newSession(id string, conn *websocket.Conn, queueSize int, logger *zap.Logger) *Session {
	return &Session{
		id:     id,
		conn:   conn,
		send:   make(chan chat.Event, queueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// ID returns the ephemeral connection id
func (s *Session) ID() string {
	return s.id
}

// Send enqueues an outbound event for the writer goroutine. It never
// blocks: a closed session or a saturated buffer returns an error instead.
func (s *Session) Send(event chat.Event) error {
	select {
	case <-s.done:
		return shared.ErrSessionClosed
	default:
	}

	select {
	case s.send <- event:
		return nil
	case <-s.done:
		return shared.ErrSessionClosed
	default:
		return shared.ErrSessionBusy
	}
}

// bind associates the session with an identified participant
func (s *Session) bind(identity string, isAdmin bool) {
	s.identity = identity
	s.isAdmin = isAdmin
	s.identified = true
}

// close signals the writer goroutine to finish and closes the conn. Safe to
// call more than once; the read loop and shutdown may race to it.
func (s *Session) close() {
	s.once.Do(func() {
		close(s.done)
	})
}

// writePump drains the send queue onto the wire. It owns all writes to the
// conn, including the keepalive pings the read side's pong deadline depends
// on. It exits when the session is closed or a write fails, closing the
// conn either way so the read loop unblocks.
func (s *Session) writePump(writeWait, pingInterval time.Duration) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case event := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteJSON(event); err != nil {
				s.logger.Debug("session write failed",
					zap.String("conn_id", s.id),
					zap.Error(err),
				)
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = s.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
