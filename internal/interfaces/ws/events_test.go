package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEnvelope(t *testing.T) {
	t.Run("valid frame", func(t *testing.T) {
		env, err := decodeEnvelope([]byte(`{"type":"chat-message","data":{"body":"hi"}}`))
		require.NoError(t, err)
		assert.Equal(t, EventChatMessage, env.Type)
		assert.JSONEq(t, `{"body":"hi"}`, string(env.Data))
	})

	t.Run("not json", func(t *testing.T) {
		_, err := decodeEnvelope([]byte(`not json at all`))
		assert.Error(t, err)
	})

	t.Run("missing type", func(t *testing.T) {
		_, err := decodeEnvelope([]byte(`{"data":{"body":"hi"}}`))
		assert.Error(t, err)
	})

	t.Run("frame without payload", func(t *testing.T) {
		env, err := decodeEnvelope([]byte(`{"type":"connect-identified"}`))
		require.NoError(t, err)
		assert.Empty(t, env.Data)
	})
}

func TestDecodePayload(t *testing.T) {
	t.Run("connect-identified requires identity and display name", func(t *testing.T) {
		p := &ConnectIdentifiedPayload{}
		err := decodePayload(json.RawMessage(`{"identity":"bob@example.com"}`), p)
		assert.Error(t, err)

		p = &ConnectIdentifiedPayload{}
		err = decodePayload(json.RawMessage(`{"identity":"bob@example.com","displayName":"Bob"}`), p)
		require.NoError(t, err)
		assert.Equal(t, "bob@example.com", p.Identity)
		assert.False(t, p.IsAdministrator)
	})

	t.Run("select-participant requires a target", func(t *testing.T) {
		p := &SelectParticipantPayload{}
		err := decodePayload(json.RawMessage(`{}`), p)
		assert.Error(t, err)
	})

	t.Run("chat-message requires a body", func(t *testing.T) {
		p := &ChatMessagePayload{}
		err := decodePayload(json.RawMessage(`{"targetIdentity":"bob@example.com"}`), p)
		assert.Error(t, err)

		p = &ChatMessagePayload{}
		err = decodePayload(json.RawMessage(`{"body":"hello"}`), p)
		require.NoError(t, err)
		assert.Equal(t, "hello", p.Body)
	})

	t.Run("missing payload", func(t *testing.T) {
		err := decodePayload(nil, &ChatMessagePayload{})
		assert.Error(t, err)
	})
}
