package ws

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Inbound event names on the wire
const (
	EventConnectIdentified = "connect-identified"
	EventSelectParticipant = "select-participant"
	EventChatMessage       = "chat-message"
)

var validate = validator.New()

// Envelope is the wire frame every inbound event arrives in
type Envelope struct {
	Type string          `json:"type" validate:"required"`
	Data json.RawMessage `json:"data"`
}

// ConnectIdentifiedPayload carries the authenticated identity the caller was
// issued by the storefront backend. Role is derived from IsAdministrator;
// the Role string is carried for wire compatibility but not trusted.
type ConnectIdentifiedPayload struct {
	Identity        string `json:"identity" validate:"required"`
	DisplayName     string `json:"displayName" validate:"required"`
	Role            string `json:"role"`
	IsAdministrator bool   `json:"isAdministrator"`
	Token           string `json:"token"`
}

// SelectParticipantPayload is an administrator's request to open a
// conversation view for a customer
type SelectParticipantPayload struct {
	TargetIdentity string `json:"targetIdentity" validate:"required"`
}

// ChatMessagePayload is an inbound chat message. TargetIdentity is required
// for administrator-sent messages; customer messages implicitly target the
// sender's own conversation.
type ChatMessagePayload struct {
	SenderIsAdministrator bool   `json:"senderIsAdministrator"`
	TargetIdentity        string `json:"targetIdentity"`
	Body                  string `json:"body" validate:"required"`
}

// decodeEnvelope parses an inbound frame into its envelope
func decodeEnvelope(data []byte) (*Envelope, error) {
	env := &Envelope{}
	if err := json.Unmarshal(data, env); err != nil {
		return nil, fmt.Errorf("malformed event frame: %w", err)
	}
	if err := validate.Struct(env); err != nil {
		return nil, fmt.Errorf("invalid event frame: %w", err)
	}
	return env, nil
}

// decodePayload parses and validates an event payload into out
func decodePayload(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing event payload")
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("malformed event payload: %w", err)
	}
	if err := validate.Struct(out); err != nil {
		return fmt.Errorf("invalid event payload: %w", err)
	}
	return nil
}
