package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/muhallimir/aims-commerce-chat/internal/domain/chat"
)

type stubSessions struct{ n int }

func (s stubSessions) SessionCount() int { return s.n }

type stubConn struct{ id string }

func (c stubConn) ID() string              { return c.id }
func (c stubConn) Send(_ chat.Event) error { return nil }

func TestSystemHandlerHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	registry := chat.NewRegistry()
	registry.Upsert("A", "A", chat.RoleAdministrator, stubConn{id: "c1"})
	registry.Upsert("bob@example.com", "Bob", chat.RoleCustomer, stubConn{id: "c2"})
	registry.MarkOffline(stubConn{id: "c2"})

	h := NewSystemHandler("chat", "test", registry, stubSessions{n: 1})

	engine := gin.New()
	engine.GET("/_health", h.Health)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/_health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.EqualValues(t, 1, body["sessions"])
	assert.EqualValues(t, 2, body["participants_known"])
	assert.EqualValues(t, 1, body["participants_online"])
}

func TestSystemHandlerPing(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("chat", "test", chat.NewRegistry(), stubSessions{})
	engine := gin.New()
	engine.GET("/ping", h.Ping)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestSystemHandlerInfo(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewSystemHandler("aims-commerce-chat", "production", chat.NewRegistry(), stubSessions{})
	engine := gin.New()
	engine.GET("/info", h.Info)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/info", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Name string `json:"name"`
			Env  string `json:"env"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "aims-commerce-chat", body.Data.Name)
	assert.Equal(t, "production", body.Data.Env)
}
