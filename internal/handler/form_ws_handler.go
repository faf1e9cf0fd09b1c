package handler

import (
	"voiceform-be/internal/pkg/logger"
	internalWS "voiceform-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// FormWsHandler upgrades gateway connections and hands them to the hub. A
// connection arrives unbound; the client names its session in the first
// setup frame.
type FormWsHandler struct {
	hub    *internalWS.Hub
	logger logger.ILogger
}

func NewFormWsHandler(hub *internalWS.Hub, log logger.ILogger) *FormWsHandler {
	return &FormWsHandler{
		hub:    hub,
		logger: log,
	}
}

// ServeWs handles websocket requests from the peer.
func (h *FormWsHandler) ServeWs(c *fiber.Ctx) error {
	// Upgrade via Fiber WebSocket Middleware
	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.logger.Info("FormWsHandler", "Starting WebSocket session", map[string]interface{}{
				"remote": conn.RemoteAddr().String(),
			})
			internalWS.ServeWs(h.hub, conn)
			h.logger.Info("FormWsHandler", "WebSocket session ended", map[string]interface{}{
				"remote": conn.RemoteAddr().String(),
			})
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

// RegisterRoutes registers the gateway route.
func (h *FormWsHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/ws", h.ServeWs)
}
