package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleFromFlag(t *testing.T) {
	assert.Equal(t, RoleAdministrator, RoleFromFlag(true))
	assert.Equal(t, RoleCustomer, RoleFromFlag(false))
}

func TestParticipantRolePredicates(t *testing.T) {
	admin := &Participant{Identity: "admin", Role: RoleAdministrator}
	customer := &Participant{Identity: "bob", Role: RoleCustomer}

	assert.True(t, admin.IsAdministrator())
	assert.False(t, admin.IsCustomer())
	assert.True(t, customer.IsCustomer())
	assert.False(t, customer.IsAdministrator())
}

func TestParticipantView(t *testing.T) {
	p := &Participant{
		Identity:    "bob",
		DisplayName: "Bob",
		Role:        RoleCustomer,
		Online:      true,
		Pending:     []Message{{SenderIdentity: "admin", Body: "hi"}},
	}

	view := p.View()

	assert.Equal(t, "bob", view.Identity)
	assert.Equal(t, "Bob", view.DisplayName)
	assert.Equal(t, RoleCustomer, view.Role)
	assert.True(t, view.Online)
}
