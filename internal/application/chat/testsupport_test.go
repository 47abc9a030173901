package chat

import (
	"fmt"

	"github.com/muhallimir/aims-commerce-chat/internal/domain/chat"
	"go.uber.org/zap"
)

// fakeConn is a transport handle that records every event delivered to it
type fakeConn struct {
	id     string
	events []chat.Event
	stale  bool
}

func newFakeConn(id string) *fakeConn {
	return &fakeConn{id: id}
}

func (c *fakeConn) ID() string { return c.id }

func (c *fakeConn) Send(event chat.Event) error {
	if c.stale {
		return fmt.Errorf("conn %s: write on closed connection", c.id)
	}
	c.events = append(c.events, event)
	return nil
}

func (c *fakeConn) eventsOfType(eventType string) []chat.Event {
	var out []chat.Event
	for _, e := range c.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// recordingMetrics counts observations for assertions
type recordingMetrics struct {
	connected    map[string]int
	disconnected map[string]int
	routed       map[string]int
	dropped      map[string]int
	autoReplies  int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		connected:    make(map[string]int),
		disconnected: make(map[string]int),
		routed:       make(map[string]int),
		dropped:      make(map[string]int),
	}
}

func (m *recordingMetrics) ParticipantConnected(role string)    { m.connected[role]++ }
func (m *recordingMetrics) ParticipantDisconnected(role string) { m.disconnected[role]++ }
func (m *recordingMetrics) MessageRouted(direction string)      { m.routed[direction]++ }
func (m *recordingMetrics) MessageDropped(reason string)        { m.dropped[reason]++ }
func (m *recordingMetrics) AutoReplySent()                      { m.autoReplies++ }

// newTestServices wires a registry, presence service and router against a
// no-op logger
func newTestServices(metrics Metrics) (*chat.Registry, *PresenceService, *MessageRouter) {
	registry := chat.NewRegistry()
	logger := zap.NewNop()
	return registry,
		NewPresenceService(registry, logger, metrics),
		NewMessageRouter(registry, logger, metrics)
}
