package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"revision-history-server/internal/websocket"
	"revision-history-server/pkg/jwt"
	"revision-history-server/pkg/logger"

	"github.com/google/uuid"
	ws "github.com/gorilla/websocket"
)

type TokenValidator interface {
	ValidateToken(token string) (*jwt.Claims, error)
}

type WebSocketHandler struct {
	manager  *websocket.Manager
	tokens   TokenValidator
	upgrader ws.Upgrader
	logger   *slog.Logger
}

func NewWebSocketHandler(manager *websocket.Manager, tokens TokenValidator, log *slog.Logger) *WebSocketHandler {
	if log == nil {
		log = logger.Discard()
	}

	return &WebSocketHandler{
		manager: manager,
		tokens:  tokens,
		upgrader: ws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: log,
	}
}

// HandleConnection upgrades an authenticated request into a live
// notification stream for the token's user.
func (h *WebSocketHandler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		token = strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	}

	if token == "" {
		http.Error(w, "missing authorization token", http.StatusUnauthorized)
		return
	}

	claims, err := h.tokens.ValidateToken(token)
	if err != nil || claims.TokenType != jwt.TokenTypeAccess {
		h.logger.Debug("websocket token rejected", "error", err)
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "user_id", claims.UserID, "error", err)
		return
	}

	client := websocket.NewClient(uuid.New().String(), claims.UserID, conn, h.manager)
	h.manager.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
