package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "aims-commerce-chat"

// ChatMetrics exposes the connection server's presence and routing counters.
// Routing misses stay silent on the wire (the administrator gets no failure
// signal); these counters are the diagnosable side channel.
type ChatMetrics struct {
	connections    metric.Int64Counter
	disconnections metric.Int64Counter
	routed         metric.Int64Counter
	dropped        metric.Int64Counter
	autoReplies    metric.Int64Counter
}

// NewChatMetrics creates the chat instrument set on the global meter
// provider. With metrics disabled the global provider is a no-op and every
// recording is free.
func NewChatMetrics() (*ChatMetrics, error) {
	meter := otel.Meter(meterName)
	m := &ChatMetrics{}

	var err error
	if m.connections, err = meter.Int64Counter(
		"chat_participant_connections_total",
		metric.WithDescription("Identified participant connections, by role"),
	); err != nil {
		return nil, fmt.Errorf("failed to create connections counter: %w", err)
	}
	if m.disconnections, err = meter.Int64Counter(
		"chat_participant_disconnections_total",
		metric.WithDescription("Participant disconnects observed by the presence tracker, by role"),
	); err != nil {
		return nil, fmt.Errorf("failed to create disconnections counter: %w", err)
	}
	if m.routed, err = meter.Int64Counter(
		"chat_messages_routed_total",
		metric.WithDescription("Chat messages delivered to a recipient, by direction"),
	); err != nil {
		return nil, fmt.Errorf("failed to create routed counter: %w", err)
	}
	if m.dropped, err = meter.Int64Counter(
		"chat_messages_dropped_total",
		metric.WithDescription("Chat messages dropped without delivery, by reason"),
	); err != nil {
		return nil, fmt.Errorf("failed to create dropped counter: %w", err)
	}
	if m.autoReplies, err = meter.Int64Counter(
		"chat_auto_replies_total",
		metric.WithDescription("Automated out-of-office replies sent to customers"),
	); err != nil {
		return nil, fmt.Errorf("failed to create auto replies counter: %w", err)
	}

	return m, nil
}

// RegisterRegistryGauges registers observable gauges backed by the live
// registry counters
func (m *ChatMetrics) RegisterRegistryGauges(known, online func() int) error {
	meter := otel.Meter(meterName)

	knownGauge, err := meter.Int64ObservableGauge(
		"chat_participants_known",
		metric.WithDescription("Participants in the registry, online or not"),
	)
	if err != nil {
		return fmt.Errorf("failed to create known gauge: %w", err)
	}
	onlineGauge, err := meter.Int64ObservableGauge(
		"chat_participants_online",
		metric.WithDescription("Participants currently online"),
	)
	if err != nil {
		return fmt.Errorf("failed to create online gauge: %w", err)
	}

	_, err = meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		o.ObserveInt64(knownGauge, int64(known()))
		o.ObserveInt64(onlineGauge, int64(online()))
		return nil
	}, knownGauge, onlineGauge)
	if err != nil {
		return fmt.Errorf("failed to register registry gauges: %w", err)
	}
	return nil
}

// ParticipantConnected implements the application metrics hook
func (m *ChatMetrics) ParticipantConnected(role string) {
	m.connections.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("role", role)))
}

// ParticipantDisconnected implements the application metrics hook
func (m *ChatMetrics) ParticipantDisconnected(role string) {
	m.disconnections.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("role", role)))
}

// MessageRouted implements the application metrics hook
func (m *ChatMetrics) MessageRouted(direction string) {
	m.routed.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("direction", direction)))
}

// MessageDropped implements the application metrics hook
func (m *ChatMetrics) MessageDropped(reason string) {
	m.dropped.Add(context.Background(), 1,
		metric.WithAttributes(attribute.String("reason", reason)))
}

// AutoReplySent implements the application metrics hook
func (m *ChatMetrics) AutoReplySent() {
	m.autoReplies.Add(context.Background(), 1)
}
