package chat

// Outbound event names on the wire
const (
	EventPresenceUpdate      = "presence-update"
	EventRosterSnapshot      = "roster-snapshot"
	EventParticipantSelected = "participant-selected"
	EventChatMessage         = "chat-message"
)

// Event is an outbound wire event addressed to a single transport handle
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NewPresenceUpdate builds a presence-update event for a participant's
// online/offline transition
func NewPresenceUpdate(view ParticipantView) Event {
	return Event{Type: EventPresenceUpdate, Data: view}
}

// NewRosterSnapshot builds a roster-snapshot event carrying every known
// participant in registry insertion order
func NewRosterSnapshot(views []ParticipantView) Event {
	return Event{Type: EventRosterSnapshot, Data: views}
}

// NewParticipantSelected builds a participant-selected event for the
// administrator's conversation view
func NewParticipantSelected(view ParticipantView) Event {
	return Event{Type: EventParticipantSelected, Data: view}
}

// NewChatMessage builds an outbound chat-message event
func NewChatMessage(msg Message) Event {
	return Event{Type: EventChatMessage, Data: msg}
}
