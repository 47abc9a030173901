package chat

import "sync"

// Registry is the in-memory directory of every participant the server has
// seen since startup. It is the only shared mutable structure in the
// connection server; all mutation goes through a single mutex, which
// restores the atomicity the single-threaded dispatch loop of the original
// design provided implicitly.
//
// Insertion order is preserved: FindActiveAdministrator and Snapshot scan
// participants in the order they first connected.
type Registry struct {
	mu           sync.Mutex
	participants []*Participant
	byIdentity   map[string]*Participant
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byIdentity: make(map[string]*Participant),
	}
}

// Upsert inserts a new participant or updates the existing entry for the
// identity in place. A reconnect under a known identity swaps the transport
// handle and flips Online back to true; accumulated pending messages are
// preserved. The returned participant is the live registry entry.
func (r *Registry) Upsert(identity, displayName string, role Role, conn Conn) *Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.byIdentity[identity]; ok {
		p.DisplayName = displayName
		p.Role = role
		p.Conn = conn
		p.Online = true
		return p
	}

	p := &Participant{
		Identity:    identity,
		DisplayName: displayName,
		Role:        role,
		Conn:        conn,
		Online:      true,
	}
	r.participants = append(r.participants, p)
	r.byIdentity[identity] = p
	return p
}

// MarkOffline finds the entry whose current transport handle matches conn
// and flips it offline. The entry stays in the registry. A handle that
// matches nothing (already replaced by a reconnect) and a disconnect that
// fires twice are both no-ops returning nil.
func (r *Registry) MarkOffline(conn Conn) *Participant {
	if conn == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.participants {
		if p.Conn != nil && p.Conn.ID() == conn.ID() {
			if !p.Online {
				return nil
			}
			p.Online = false
			return p
		}
	}
	return nil
}

// FindByIdentity returns the entry for the identity, or nil
func (r *Registry) FindByIdentity(identity string) *Participant {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.byIdentity[identity]
}

// FindActiveAdministrator returns the first online administrator in
// insertion order, or nil. With several administrators online the choice is
// whichever connected first; the original design leaves this ambiguous and
// the behavior is reproduced as-is.
func (r *Registry) FindActiveAdministrator() *Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range r.participants {
		if p.Role == RoleAdministrator && p.Online {
			return p
		}
	}
	return nil
}

// FindOnlineCustomer returns the entry for the identity if it is a customer
// currently online, or nil
func (r *Registry) FindOnlineCustomer(identity string) *Participant {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.byIdentity[identity]
	if p == nil || p.Role != RoleCustomer || !p.Online {
		return nil
	}
	return p
}

// AppendPending appends a delivered message to the participant's buffered
// history. Unknown identities are ignored.
func (r *Registry) AppendPending(identity string, msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.byIdentity[identity]; ok {
		p.Pending = append(p.Pending, msg)
	}
}

// PendingMessages returns a copy of the participant's buffered history
func (r *Registry) PendingMessages(identity string) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.byIdentity[identity]
	if p == nil || len(p.Pending) == 0 {
		return nil
	}
	out := make([]Message, len(p.Pending))
	copy(out, p.Pending)
	return out
}

// Snapshot returns the public view of every participant in insertion order
func (r *Registry) Snapshot() []ParticipantView {
	r.mu.Lock()
	defer r.mu.Unlock()

	views := make([]ParticipantView, 0, len(r.participants))
	for _, p := range r.participants {
		views = append(views, p.View())
	}
	return views
}

// Len returns the number of known participants, online or not
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.participants)
}

// OnlineCount returns the number of participants currently online
func (r *Registry) OnlineCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, p := range r.participants {
		if p.Online {
			n++
		}
	}
	return n
}
