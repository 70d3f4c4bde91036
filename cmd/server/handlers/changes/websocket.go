package changes

import (
	"context"
	"crypto/rand"
	"fmt"
	"slices"
	"strings"
	"time"

	"notedash/cmd/server/handlers/httperr"
	"notedash/internal/logger"
	"notedash/internal/services/records"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/oklog/ulid/v2"
)

const (
	// WSClosePolicyViolation represents WebSocket close code for policy violation
	WSClosePolicyViolation = 1008

	wsWriteTimeout     = 10 * time.Second
	wsPingInterval     = 25 * time.Second
	wsPingWriteTimeout = 5 * time.Second

	kindsLocalKey     = "ws_kinds"
	parentCtxLocalKey = "ws_parent_ctx"

	msgFailedToCloseWebSocketConnection = "failed to close WebSocket connection"
)

var knownKinds = []records.Kind{records.KindNote, records.KindPost, records.KindTravel}

// Hub is the change-event fan-out the stream subscribes to
type Hub interface {
	Subscribe(connULID ulid.ULID, kinds ...records.Kind) (*records.Subscriber, func())
}

// WebSocketHandlers contains the change stream handlers
type WebSocketHandlers struct {
	hub           Hub
	maxSessionSec int
}

// NewWebSocketHandlers creates new WebSocket handlers. maxSessionSec <= 0
// means sessions never time out.
func NewWebSocketHandlers(hub Hub, maxSessionSec int) *WebSocketHandlers {
	return &WebSocketHandlers{
		hub:           hub,
		maxSessionSec: maxSessionSec,
	}
}

// parseKinds reads the optional comma-separated kinds filter
func parseKinds(raw string) ([]records.Kind, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var kinds []records.Kind
	for _, part := range strings.Split(raw, ",") {
		k := records.Kind(strings.TrimSpace(part))
		if !slices.Contains(knownKinds, k) {
			return nil, fmt.Errorf("unknown kind %q", k)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// WSUpgrade checks the upgrade request and the kinds filter
func (h *WebSocketHandlers) WSUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		logger.L().Warn("websocket upgrade required", "handler", "WSUpgrade", "path", c.Path())
		return httperr.Fail(httperr.E{
			Status:  fiber.StatusBadRequest,
			Message: "WebSocket upgrade required",
		})
	}

	kinds, err := parseKinds(c.Query("kinds"))
	if err != nil {
		logger.L().Warn("invalid kinds filter", "handler", "WSUpgrade", "error", err)
		return httperr.InvalidInput(err)
	}

	c.Locals(kindsLocalKey, kinds)
	c.Locals(parentCtxLocalKey, c.UserContext())
	return c.Next()
}

// wsConnection holds connection-specific data
type wsConnection struct {
	connULID ulid.ULID
	connID   string
	kinds    []records.Kind
}

// WSChangesStream pushes every change event to the client until either
// side closes
func (h *WebSocketHandlers) WSChangesStream(c *websocket.Conn) {
	conn, parentCtx := h.initializeConnection(c)

	ctx, cancelCtx := context.WithCancel(parentCtx)
	defer cancelCtx()

	subscriber, cancel := h.hub.Subscribe(conn.connULID, conn.kinds...)
	defer cancel()

	logger.L().Info("WebSocket connection established", "conn_id", conn.connID, "kinds", conn.kinds)

	if h.maxSessionSec > 0 {
		sessionTimer := h.startSessionTimer(c, conn, cancelCtx)
		defer sessionTimer.Stop()
	}

	ping := h.startKeepAlive(c, conn)
	defer ping.Stop()

	go h.handleOutgoingMessages(ctx, c, conn, subscriber)

	h.handleIncomingMessages(c, conn)

	logger.L().Info("WebSocket connection closed", "conn_id", conn.connID)
}

func (h *WebSocketHandlers) initializeConnection(c *websocket.Conn) (*wsConnection, context.Context) {
	kinds, _ := c.Locals(kindsLocalKey).([]records.Kind)
	parentCtx, ok := c.Locals(parentCtxLocalKey).(context.Context)
	if !ok {
		parentCtx = context.Background()
	}

	connULID := ulid.MustNew(ulid.Timestamp(time.Now().UTC()), rand.Reader)
	return &wsConnection{
		connULID: connULID,
		connID:   connULID.String(),
		kinds:    kinds,
	}, parentCtx
}

func (h *WebSocketHandlers) closeConnection(c *websocket.Conn) {
	if err := c.Close(); err != nil {
		logger.L().Error(msgFailedToCloseWebSocketConnection, "error", err)
	}
}

func (h *WebSocketHandlers) startSessionTimer(c *websocket.Conn, conn *wsConnection, cancelCtx context.CancelFunc) *time.Timer {
	return time.AfterFunc(time.Duration(h.maxSessionSec)*time.Second, func() {
		logger.L().Info("WebSocket session timeout", "conn_id", conn.connID)
		err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(WSClosePolicyViolation, "session timeout"))
		if err != nil {
			logger.L().Error("failed to send close message", "error", err, "conn_id", conn.connID)
		}
		h.closeConnection(c)
		cancelCtx()
	})
}

func (h *WebSocketHandlers) startKeepAlive(c *websocket.Conn, conn *wsConnection) *time.Ticker {
	ping := time.NewTicker(wsPingInterval)
	go func() {
		for range ping.C {
			if err := c.SetWriteDeadline(time.Now().Add(wsPingWriteTimeout)); err != nil {
				return
			}
			if err := c.WriteMessage(websocket.PingMessage, nil); err != nil {
				logger.L().Warn("failed to write ping message", "error", err, "conn_id", conn.connID)
				return
			}
		}
	}()
	return ping
}

func (h *WebSocketHandlers) handleOutgoingMessages(ctx context.Context, c *websocket.Conn, conn *wsConnection, subscriber *records.Subscriber) {
	defer func() {
		if r := recover(); r != nil {
			logger.L().Error("panic in WebSocket sender", "error", r, "conn_id", conn.connID)
		}
	}()

	for {
		select {
		case event, ok := <-subscriber.Ch:
			if !ok {
				return
			}
			if h.sendEvent(c, conn, event) != nil {
				return
			}
		case <-subscriber.Done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// sendEvent writes one change event; the snapshot is the full collection
func (h *WebSocketHandlers) sendEvent(c *websocket.Conn, conn *wsConnection, event records.ChangeEvent) error {
	if err := c.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		logger.L().Error("failed to set write deadline", "error", err, "conn_id", conn.connID)
		return err
	}
	if err := c.WriteJSON(event); err != nil {
		logger.L().Error("failed to write WebSocket message", "error", err, "conn_id", conn.connID)
		return err
	}
	return nil
}

func (h *WebSocketHandlers) handleIncomingMessages(c *websocket.Conn, conn *wsConnection) {
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logger.L().Error("WebSocket error", "error", err, "conn_id", conn.connID)
			}
			return
		}
	}
}

// LogWSConnections logs every WebSocket upgrade attempt
func LogWSConnections() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			logger.L().Info("WebSocket upgrade attempt", "ip", c.IP(), "kinds", c.Query("kinds"))
		}
		return c.Next()
	}
}
