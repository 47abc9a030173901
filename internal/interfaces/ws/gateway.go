// Package ws is the transport boundary of the connection server: it accepts
// WebSocket connections, deserializes inbound events, and hands them to the
// presence tracker and message router. All event handling is funneled
// through a single dispatch lock, so every event runs to completion before
// the next one touches the registry.
package ws

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	appchat "github.com/muhallimir/aims-commerce-chat/internal/application/chat"
	"github.com/muhallimir/aims-commerce-chat/internal/domain/chat"
	"github.com/muhallimir/aims-commerce-chat/internal/domain/shared"
	"github.com/muhallimir/aims-commerce-chat/internal/infrastructure/auth"
	"github.com/muhallimir/aims-commerce-chat/internal/infrastructure/config"
)

// Gateway accepts transport connections and dispatches their events
type Gateway struct {
	cfg      config.WSConfig
	upgrader websocket.Upgrader

	registry *chat.Registry
	presence *appchat.PresenceService
	router   *appchat.MessageRouter
	verifier *auth.TokenVerifier // nil when connect tokens are not required
	logger   *zap.Logger

	// dispatchMu serializes event handling across all connections,
	// restoring the single event-processing stream the registry's
	// read-modify-write sequences assume.
	dispatchMu sync.Mutex

	sessionsMu sync.RWMutex
	sessions   map[string]*Session
}

// NewGateway creates a new Gateway. Pass a nil verifier to run in the
// default trust-the-caller mode; a non-nil verifier makes identification
// events carry a valid connect token.
func NewGateway(
	cfg config.WSConfig,
	corsOrigins []string,
	registry *chat.Registry,
	presence *appchat.PresenceService,
	router *appchat.MessageRouter,
	verifier *auth.TokenVerifier,
	logger *zap.Logger,
) *Gateway {
	return &Gateway{
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   cfg.ReadBufferSize,
			WriteBufferSize:  cfg.WriteBufferSize,
			HandshakeTimeout: cfg.HandshakeTimeout,
			CheckOrigin:      originChecker(corsOrigins),
		},
		registry: registry,
		presence: presence,
		router:   router,
		verifier: verifier,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// originChecker applies the HTTP CORS origin whitelist to the WebSocket
// handshake. Requests without an Origin header (non-browser clients) are
// accepted; a "*" entry accepts every origin.
func originChecker(origins []string) func(*http.Request) bool {
	allowAll := false
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = struct{}{}
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || allowAll {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}

// Handler returns the gin handler that upgrades a request into a chat
// session
func (g *Gateway) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := g.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error response.
			g.logger.Warn("websocket upgrade failed",
				zap.String("remote", c.ClientIP()),
				zap.Error(err),
			)
			return
		}

		session := newSession(uuid.NewString(), conn, g.cfg.SendQueueSize, g.logger)
		g.addSession(session)

		g.logger.Info("connection accepted",
			zap.String("conn_id", session.ID()),
			zap.String("remote", c.ClientIP()),
		)

		go session.writePump(g.cfg.WriteWait, g.cfg.PingInterval)
		go g.serve(session)
	}
}

// serve is the per-connection read loop. Whatever ends it (client close,
// read deadline, protocol error), the session is torn down and the presence
// tracker observes exactly one disconnect.
func (g *Gateway) serve(session *Session) {
	defer func() {
		g.removeSession(session)
		session.close()

		g.dispatchMu.Lock()
		g.presence.OnDisconnect(session)
		g.dispatchMu.Unlock()

		g.logger.Info("connection closed", zap.String("conn_id", session.ID()))
	}()

	session.conn.SetReadLimit(g.cfg.MaxMessageSize)
	_ = session.conn.SetReadDeadline(time.Now().Add(g.cfg.PongWait))
	session.conn.SetPongHandler(func(string) error {
		return session.conn.SetReadDeadline(time.Now().Add(g.cfg.PongWait))
	})

	for {
		_, data, err := session.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				g.logger.Debug("connection read failed",
					zap.String("conn_id", session.ID()),
					zap.Error(err),
				)
			}
			return
		}
		g.dispatch(session, data)
	}
}

// dispatch decodes one inbound frame and runs its handler under the
// dispatch lock. A malformed event is dropped with a diagnostic; a panic in
// a handler is contained to that event so the loop and the registry stay
// usable for the ones that follow.
func (g *Gateway) dispatch(session *Session, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("event handler panic",
				zap.Any("panic", r),
				zap.String("conn_id", session.ID()),
				zap.Stack("stack"),
			)
		}
	}()

	env, err := decodeEnvelope(data)
	if err != nil {
		g.logger.Debug("dropped malformed event",
			zap.String("conn_id", session.ID()),
			zap.Error(err),
		)
		return
	}

	g.dispatchMu.Lock()
	defer g.dispatchMu.Unlock()

	switch env.Type {
	case EventConnectIdentified:
		g.handleConnectIdentified(session, env.Data)
	case EventSelectParticipant:
		g.handleSelectParticipant(session, env.Data)
	case EventChatMessage:
		g.handleChatMessage(session, env.Data)
	default:
		g.logger.Debug("dropped unknown event type",
			zap.String("conn_id", session.ID()),
			zap.String("type", env.Type),
		)
	}
}

func (g *Gateway) handleConnectIdentified(session *Session, raw []byte) {
	payload := &ConnectIdentifiedPayload{}
	if err := decodePayload(raw, payload); err != nil {
		g.logger.Debug("dropped malformed connect-identified",
			zap.String("conn_id", session.ID()),
			zap.Error(err),
		)
		return
	}

	if g.verifier != nil {
		claims, err := g.verifier.VerifyFor(payload.Token, payload.Identity)
		if err != nil {
			g.logger.Warn("rejected connect-identified, token verification failed",
				zap.String("conn_id", session.ID()),
				zap.String("identity", payload.Identity),
				zap.Error(err),
			)
			return
		}
		// The token is the authority on the administrator flag once
		// verification is on.
		payload.IsAdministrator = claims.IsAdmin
	}

	session.bind(payload.Identity, payload.IsAdministrator)
	g.presence.OnConnectIdentified(session,
		payload.Identity,
		payload.DisplayName,
		chat.RoleFromFlag(payload.IsAdministrator),
	)
}

// handleSelectParticipant resolves an administrator's chat selection: a pure
// registry read echoed back as a participant-selected event so the
// administrator UI can open the conversation view.
func (g *Gateway) handleSelectParticipant(session *Session, raw []byte) {
	if !session.identified || !session.isAdmin {
		g.logger.Debug("dropped select-participant",
			zap.String("conn_id", session.ID()),
			zap.Error(shared.ErrNotAdmin),
		)
		return
	}

	payload := &SelectParticipantPayload{}
	if err := decodePayload(raw, payload); err != nil {
		g.logger.Debug("dropped malformed select-participant",
			zap.String("conn_id", session.ID()),
			zap.Error(err),
		)
		return
	}

	target := g.registry.FindByIdentity(payload.TargetIdentity)
	if target == nil {
		g.logger.Debug("select-participant for unknown identity",
			zap.String("target", payload.TargetIdentity),
		)
		return
	}

	if err := session.Send(chat.NewParticipantSelected(target.View())); err != nil {
		g.logger.Debug("participant-selected not delivered",
			zap.String("identity", session.identity),
			zap.Error(err),
		)
	}
}

func (g *Gateway) handleChatMessage(session *Session, raw []byte) {
	if !session.identified {
		g.logger.Debug("dropped chat-message",
			zap.String("conn_id", session.ID()),
			zap.Error(shared.ErrNotIdentified),
		)
		return
	}

	payload := &ChatMessagePayload{}
	if err := decodePayload(raw, payload); err != nil {
		g.logger.Debug("dropped malformed chat-message",
			zap.String("conn_id", session.ID()),
			zap.Error(err),
		)
		return
	}

	// The session binding, not the payload, decides who is speaking.
	msg := appchat.Message{
		SenderIdentity:        session.identity,
		SenderIsAdministrator: session.isAdmin,
		TargetIdentity:        payload.TargetIdentity,
		Body:                  payload.Body,
	}
	if !session.isAdmin {
		// A customer always writes into their own conversation.
		msg.TargetIdentity = session.identity
	} else if msg.TargetIdentity == "" {
		g.logger.Debug("dropped administrator chat-message without target",
			zap.String("conn_id", session.ID()),
		)
		return
	}

	g.router.Route(msg)
}

func (g *Gateway) addSession(session *Session) {
	g.sessionsMu.Lock()
	defer g.sessionsMu.Unlock()
	g.sessions[session.ID()] = session
}

func (g *Gateway) removeSession(session *Session) {
	g.sessionsMu.Lock()
	defer g.sessionsMu.Unlock()
	delete(g.sessions, session.ID())
}

// SessionCount returns the number of live transport sessions
func (g *Gateway) SessionCount() int {
	g.sessionsMu.RLock()
	defer g.sessionsMu.RUnlock()
	return len(g.sessions)
}

// Shutdown closes every live session. The per-connection read loops finish
// their own teardown, so presence still observes each disconnect.
func (g *Gateway) Shutdown(ctx context.Context) {
	g.sessionsMu.RLock()
	open := make([]*Session, 0, len(g.sessions))
	for _, s := range g.sessions {
		open = append(open, s)
	}
	g.sessionsMu.RUnlock()

	for _, s := range open {
		s.close()
	}

	g.logger.Info("gateway shut down", zap.Int("sessions_closed", len(open)))
}
