package realtime

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"maidmarket/internal/pkg/jwt"
	"maidmarket/internal/pkg/logger"
	"maidmarket/internal/pkg/response"
)

// Handler upgrades GET /ws/favorites?token=JWT. Browsers cannot set headers
// on a websocket handshake, so the token travels in the query string.
type Handler struct {
	hub      *Hub
	jwt      *jwt.Service
	upgrader websocket.Upgrader
}

// NewHandler accepts any origin when allowedOrigins is empty.
func NewHandler(hub *Hub, jwtService *jwt.Service, allowedOrigins []string) *Handler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		allowed[o] = true
	}

	return &Handler{
		hub: hub,
		jwt: jwtService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ws/favorites", h.HandleWebSocket)
}

func (h *Handler) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "token is required")
		return
	}

	claims, err := h.jwt.ValidateToken(token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Logger.Warn().Err(err).Int64("user_id", claims.UserID).Msg("websocket upgrade failed")
		return
	}

	h.hub.Serve(conn, claims.UserID)
}
