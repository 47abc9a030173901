package chat

// Role represents the kind of human session a participant is
type Role string

const (
	RoleCustomer      Role = "customer"
	RoleAdministrator Role = "administrator"
)

// RoleFromFlag derives a role from the caller-supplied administrator flag.
// The flag arrives from an already-authenticated caller; the connection
// server does not re-validate it.
func RoleFromFlag(isAdministrator bool) Role {
	if isAdministrator {
		return RoleAdministrator
	}
	return RoleCustomer
}

// Conn is the transport handle a participant is reachable through. It is
// owned by the session gateway; the registry only references it.
type Conn interface {
	// ID is the ephemeral connection id assigned by the gateway.
	ID() string
	// Send enqueues an outbound event. Delivery is best-effort: a stale or
	// saturated handle returns an error the caller is free to ignore.
	Send(event Event) error
}

// Message is a single chat message as buffered and delivered by the router
type Message struct {
	SenderIdentity string `json:"senderIdentity"`
	Body           string `json:"body"`
}

// Participant represents one connected human session (customer or
// administrator). Entries are created on first identified connect and are
// retained for the process lifetime: disconnecting flips Online, it never
// removes the entry, so identity and chat history survive a dropped
// connection.
type Participant struct {
	Identity    string
	DisplayName string
	Role        Role
	Conn        Conn
	Online      bool
	Pending     []Message
}

// IsAdministrator reports whether the participant has the administrator role
func (p *Participant) IsAdministrator() bool {
	return p.Role == RoleAdministrator
}

// IsCustomer reports whether the participant has the customer role
func (p *Participant) IsCustomer() bool {
	return p.Role == RoleCustomer
}

// ParticipantView is the public state of a participant as carried by
// presence and roster events
type ParticipantView struct {
	Identity    string `json:"identity"`
	DisplayName string `json:"displayName"`
	Role        Role   `json:"role"`
	Online      bool   `json:"online"`
}

// View returns the participant's public state
func (p *Participant) View() ParticipantView {
	return ParticipantView{
		Identity:    p.Identity,
		DisplayName: p.DisplayName,
		Role:        p.Role,
		Online:      p.Online,
	}
}
