package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/enums"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 256
)

// Client is one websocket connection. send is closed by the hub only.
type Client struct {
	id     string
	hub    *Hub
	conn   *websocket.Conn
	claims *auth.AccessTokenClaims
	send   chan []byte
	rooms  map[string]struct{}
	logg   *logger.Logger
}

type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func newClient(id string, hub *Hub, conn *websocket.Conn, claims *auth.AccessTokenClaims, logg *logger.Logger) *Client {
	return &Client{
		id:     id,
		hub:    hub,
		conn:   conn,
		claims: claims,
		send:   make(chan []byte, sendBuffer),
		rooms:  make(map[string]struct{}),
		logg:   logg,
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.detach(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && c.logg != nil {
				c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "realtime.client.read_failed")
			}
			return
		}
		var msg inbound
		if err := json.Unmarshal(bytes.TrimSpace(raw), &msg); err != nil {
			c.hub.refuse(c, "malformed message")
			continue
		}
		c.handle(msg)
	}
}

func (c *Client) handle(msg inbound) {
	switch msg.Event {
	case clientJoin:
		id, ok := parseID(msg.Data)
		if !ok || id != c.claims.UserID {
			c.hub.refuse(c, "cannot join another user's channel")
			return
		}
		c.hub.join(c, UserRoom(id))
	case clientJoinOwnerRoom:
		id, ok := parseID(msg.Data)
		if !ok || c.claims.Role != enums.RoleOwner || !c.claims.OwnsLocation(id) {
			c.hub.refuse(c, "cannot join this location's channel")
			return
		}
		c.hub.join(c, OwnerRoom(id))
	default:
		c.hub.refuse(c, "unknown event")
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// parseID accepts 12 or "12".
func parseID(raw json.RawMessage) (int64, bool) {
	var n int64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, n > 0
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, n > 0
}
