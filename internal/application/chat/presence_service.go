package chat

import (
	"github.com/muhallimir/aims-commerce-chat/internal/domain/chat"
	"go.uber.org/zap"
)

// PresenceService translates transport lifecycle events into registry
// operations and the presence notifications the administrator UI depends on
type PresenceService struct {
	registry *chat.Registry
	logger   *zap.Logger
	metrics  Metrics
}

// NewPresenceService creates a new PresenceService
func NewPresenceService(registry *chat.Registry, logger *zap.Logger, metrics Metrics) *PresenceService {
	if metrics == nil {
		metrics = NopMetrics{}
	}
	return &PresenceService{
		registry: registry,
		logger:   logger,
		metrics:  metrics,
	}
}

// OnConnectIdentified records an identified connection in the registry.
// A customer coming online is announced to the active administrator with a
// presence-update. An administrator coming online instead receives the full
// roster, so its UI can render the participant list without a separate
// query API.
func (s *PresenceService) OnConnectIdentified(conn chat.Conn, identity, displayName string, role chat.Role) {
	p := s.registry.Upsert(identity, displayName, role, conn)
	s.metrics.ParticipantConnected(string(role))

	s.logger.Info("participant online",
		zap.String("identity", identity),
		zap.String("role", string(role)),
		zap.String("conn_id", conn.ID()),
	)

	if p.IsAdministrator() {
		s.deliver(p, chat.NewRosterSnapshot(s.registry.Snapshot()))
		return
	}

	if admin := s.registry.FindActiveAdministrator(); admin != nil {
		s.deliver(admin, chat.NewPresenceUpdate(p.View()))
	}
}

// OnDisconnect marks the connection's participant offline. A customer going
// offline is announced to the active administrator; an administrator's own
// disconnect triggers no broadcast.
func (s *PresenceService) OnDisconnect(conn chat.Conn) {
	p := s.registry.MarkOffline(conn)
	if p == nil {
		// Duplicate disconnect or a handle already replaced by a reconnect.
		return
	}
	s.metrics.ParticipantDisconnected(string(p.Role))

	s.logger.Info("participant offline",
		zap.String("identity", p.Identity),
		zap.String("role", string(p.Role)),
	)

	if p.IsAdministrator() {
		return
	}

	if admin := s.registry.FindActiveAdministrator(); admin != nil {
		s.deliver(admin, chat.NewPresenceUpdate(p.View()))
	}
}

// deliver sends best-effort: a stale or saturated handle only gets a debug
// line, never an error back to the event that triggered the notification
func (s *PresenceService) deliver(to *chat.Participant, event chat.Event) {
	if to.Conn == nil {
		return
	}
	if err := to.Conn.Send(event); err != nil {
		s.logger.Debug("presence notification not delivered",
			zap.String("identity", to.Identity),
			zap.String("event", event.Type),
			zap.Error(err),
		)
	}
}
