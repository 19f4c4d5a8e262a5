package realtime

import (
	"context"
	"net/http"
	"strings"

	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/api/responses"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/auth"
	pkgerrors "github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/errors"
	"github.com/ericaNyenji/Price-Comparison-System-for-Affordable-Grocery-Shopping/pkg/logger"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// TokenParser validates a bearer token and returns its claims.
type TokenParser func(ctx context.Context, token string) (*auth.AccessTokenClaims, error)

// Handler upgrades authenticated requests to websocket clients of hub.
type Handler struct {
	hub      *Hub
	parse    TokenParser
	logg     *logger.Logger
	upgrader websocket.Upgrader
	ctx      context.Context
}

// NewHandler builds the /ws endpoint. An empty allowedOrigins accepts any
// origin. ctx bounds the lifetime of connection goroutines.
func NewHandler(ctx context.Context, hub *Hub, parse TokenParser, allowedOrigins []string, logg *logger.Logger) *Handler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = struct{}{}
		}
	}
	return &Handler{
		hub:   hub,
		parse: parse,
		logg:  logg,
		ctx:   ctx,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if len(origins) == 0 || origin == "" {
					return true
				}
				_, ok := origins[origin]
				return ok
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := strings.TrimSpace(r.URL.Query().Get("token"))
	if token == "" {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			token = strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		}
	}
	if token == "" {
		responses.WriteError(ctx, h.logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing token"))
		return
	}
	claims, err := h.parse(ctx, token)
	if err != nil {
		responses.WriteError(ctx, h.logg, w, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		return
	}

	client := newClient(uuid.NewString(), h.hub, conn, claims, h.logg)
	if !h.hub.attach(client) {
		_ = conn.Close()
		return
	}

	connCtx := h.ctx
	if h.logg != nil {
		connCtx = h.logg.WithFields(connCtx, map[string]any{
			"client_id": client.id,
			"user_id":   claims.UserID,
			"role":      string(claims.Role),
		})
		h.logg.Info(connCtx, "realtime.client.connected")
	}

	go client.writePump()
	go func() {
		client.readPump(connCtx)
		if h.logg != nil {
			h.logg.Info(connCtx, "realtime.client.disconnected")
		}
	}()
}
