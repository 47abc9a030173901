package chat

import (
	"testing"

	"github.com/muhallimir/aims-commerce-chat/internal/domain/chat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSupportConversationLifecycle walks a full support conversation through
// the presence and routing services: administrator onboarding, customer
// arrival, a message in each direction, the customer dropping, and the
// out-of-office fallback once the administrator is gone too.
func TestSupportConversationLifecycle(t *testing.T) {
	registry, presence, router := newTestServices(nil)

	// Administrator "A" connects and receives the (empty) roster.
	adminConn := newFakeConn("a1")
	presence.OnConnectIdentified(adminConn, "A", "A", chat.RoleAdministrator)

	rosters := adminConn.eventsOfType(chat.EventRosterSnapshot)
	require.Len(t, rosters, 1)
	views := rosters[0].Data.([]chat.ParticipantView)
	require.Len(t, views, 1)
	assert.Equal(t, "A", views[0].Identity)

	// Customer "bob" connects; "A" sees him come online.
	bobConn := newFakeConn("c1")
	presence.OnConnectIdentified(bobConn, "bob", "Bob", chat.RoleCustomer)

	updates := adminConn.eventsOfType(chat.EventPresenceUpdate)
	require.Len(t, updates, 1)
	view := updates[0].Data.(chat.ParticipantView)
	assert.Equal(t, "bob", view.Identity)
	assert.True(t, view.Online)

	// "A" messages bob.
	router.Route(Message{
		SenderIdentity:        "A",
		SenderIsAdministrator: true,
		TargetIdentity:        "bob",
		Body:                  "hi",
	})

	bobMsgs := bobConn.eventsOfType(chat.EventChatMessage)
	require.Len(t, bobMsgs, 1)
	msg := bobMsgs[0].Data.(chat.Message)
	assert.Equal(t, "A", msg.SenderIdentity)
	assert.Equal(t, "hi", msg.Body)
	assert.Len(t, registry.PendingMessages("bob"), 1)

	// bob disconnects; "A" sees him go offline.
	presence.OnDisconnect(bobConn)

	updates = adminConn.eventsOfType(chat.EventPresenceUpdate)
	require.Len(t, updates, 2)
	view = updates[1].Data.(chat.ParticipantView)
	assert.Equal(t, "bob", view.Identity)
	assert.False(t, view.Online)

	// "A" leaves, bob reconnects and writes into the void: automated reply.
	presence.OnDisconnect(adminConn)

	bobConn2 := newFakeConn("c2")
	presence.OnConnectIdentified(bobConn2, "bob", "Bob", chat.RoleCustomer)

	router.Route(Message{SenderIdentity: "bob", TargetIdentity: "bob", Body: "anyone?"})

	replies := bobConn2.eventsOfType(chat.EventChatMessage)
	require.Len(t, replies, 1)
	reply := replies[0].Data.(chat.Message)
	assert.Equal(t, SystemIdentity, reply.SenderIdentity)
	assert.Equal(t, AwayReplyBody, reply.Body)

	// History from the earlier exchange survived the reconnect; the
	// automated reply was not added to it.
	pending := registry.PendingMessages("bob")
	require.Len(t, pending, 1)
	assert.Equal(t, "hi", pending[0].Body)

	// One entry per identity throughout.
	assert.Equal(t, 2, registry.Len())
}
