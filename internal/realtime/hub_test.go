package realtime

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maidmarket/internal/pkg/jwt"
)

func setupServer(t *testing.T, origins []string) (*Hub, *jwt.Service, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub()
	jwtSvc := jwt.New("test-secret", time.Hour)

	r := gin.New()
	NewHandler(hub, jwtSvc, origins).RegisterRoutes(r.Group(""))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return hub, jwtSvc, srv
}

func wsURL(srv *httptest.Server, token string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/favorites?token=" + token
}

func dial(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitConnections(t *testing.T, hub *Hub, userID int64, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Connections(userID) == n }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_BroadcastsToEverySessionOfUser(t *testing.T) {
	hub, jwtSvc, srv := setupServer(t, nil)

	tokenA, err := jwtSvc.GenerateToken(1, jwt.RoleCustomer)
	require.NoError(t, err)
	tokenB, err := jwtSvc.GenerateToken(2, jwt.RoleCustomer)
	require.NoError(t, err)

	phone := dial(t, srv, tokenA)
	laptop := dial(t, srv, tokenA)
	other := dial(t, srv, tokenB)
	waitConnections(t, hub, 1, 2)
	waitConnections(t, hub, 2, 1)

	hub.FavoriteChanged(1, "m1", true)

	for _, conn := range []*websocket.Conn{phone, laptop} {
		var ev Event
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
		require.NoError(t, conn.ReadJSON(&ev))
		assert.Equal(t, EventFavoriteAdded, ev.Type)
		assert.Equal(t, "m1", ev.MaidID)
	}

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestHub_UnregistersOnClose(t *testing.T) {
	hub, jwtSvc, srv := setupServer(t, nil)

	token, err := jwtSvc.GenerateToken(1, jwt.RoleCustomer)
	require.NoError(t, err)

	conn := dial(t, srv, token)
	waitConnections(t, hub, 1, 1)

	conn.Close()
	waitConnections(t, hub, 1, 0)

	// publishing to a user without connections is a no-op
	hub.FavoriteChanged(1, "m1", false)
}

func TestHandler_RejectsMissingOrBadToken(t *testing.T) {
	_, _, srv := setupServer(t, nil)

	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, ""), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv, "garbage"), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandler_ChecksOrigin(t *testing.T) {
	_, jwtSvc, srv := setupServer(t, []string{"https://app.example.com"})

	token, err := jwtSvc.GenerateToken(1, jwt.RoleCustomer)
	require.NoError(t, err)

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(srv, token), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "https://app.example.com")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv, token), header)
	require.NoError(t, err)
	conn.Close()
}
