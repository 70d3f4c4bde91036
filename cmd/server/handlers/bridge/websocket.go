// Package bridge serves the note IPC protocol over a WebSocket so a view
// process can edit notes held by the server.
package bridge

import (
	"context"
	"time"

	"notedash/cmd/server/handlers/httperr"
	"notedash/internal/logger"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const (
	wsWriteTimeout     = 10 * time.Second
	wsMaxIncomingBytes = 1 << 20 // 1 MiB

	parentCtxLocalKey = "ipc_parent_ctx"
)

// RoundTripper answers one encoded request with one encoded reply
type RoundTripper interface {
	RoundTrip(ctx context.Context, req []byte) ([]byte, error)
}

// Handlers serves the IPC socket
type Handlers struct {
	bridge RoundTripper
}

// NewHandlers creates handlers answering through b
func NewHandlers(b RoundTripper) *Handlers {
	return &Handlers{bridge: b}
}

// WSUpgrade rejects requests that are not WebSocket upgrades
func (h *Handlers) WSUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		logger.L().Warn("websocket upgrade required", "handler", "IPCUpgrade", "path", c.Path())
		return httperr.Fail(httperr.E{
			Status:  fiber.StatusBadRequest,
			Message: "WebSocket upgrade required",
		})
	}
	c.Locals(parentCtxLocalKey, c.UserContext())
	return c.Next()
}

// WSServe answers every incoming frame with exactly one reply frame, in
// order, until the client goes away
func (h *Handlers) WSServe(c *websocket.Conn) {
	ctx, ok := c.Locals(parentCtxLocalKey).(context.Context)
	if !ok {
		ctx = context.Background()
	}
	c.SetReadLimit(wsMaxIncomingBytes)

	logger.L().Info("IPC connection established", "remote", c.RemoteAddr().String())
	defer logger.L().Info("IPC connection closed", "remote", c.RemoteAddr().String())

	for {
		_, msg, err := c.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.L().Error("IPC read failed", "error", err)
			}
			return
		}

		reply, err := h.bridge.RoundTrip(ctx, msg)
		if err != nil {
			logger.L().Error("IPC reply encoding failed", "error", err)
			return
		}

		if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
			logger.L().Error("failed to set write deadline", "error", err)
			return
		}
		if err := c.WriteMessage(websocket.TextMessage, reply); err != nil {
			logger.L().Error("IPC write failed", "error", err)
			return
		}
	}
}
