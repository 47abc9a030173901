package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDomainError(t *testing.T) {
	err := NewDomainError("SESSION_BUSY", "Session outbound buffer is full")
	assert.Equal(t, "Session outbound buffer is full", err.Error())
	assert.Equal(t, "SESSION_BUSY", err.Code)

	assert.NotErrorIs(t, ErrSessionBusy, ErrSessionClosed)
	assert.ErrorIs(t, ErrSessionBusy, ErrSessionBusy)
}
