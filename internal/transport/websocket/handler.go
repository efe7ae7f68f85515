package websocket

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/iamasit07/blockfall/backend/internal/domain"
	"github.com/iamasit07/blockfall/backend/internal/service/game"
	"github.com/iamasit07/blockfall/backend/pkg/auth"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
)

// TokenValidator checks a side token.
type TokenValidator interface {
	ValidateSideToken(token string) (*auth.SideClaims, error)
}

// Handler manages WebSocket dependencies
type Handler struct {
	ConnManager *ConnectionManager
	GameService *game.Service
	Tokens      TokenValidator
	Upgrader    websocket.Upgrader
	logger      *zap.Logger
}

func NewHandler(cm *ConnectionManager, gs *game.Service, tokens TokenValidator, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		ConnManager: cm,
		GameService: gs,
		Tokens:      tokens,
		Upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		logger: logger.Named("ws"),
	}
}

// HandleWebSocket is the HTTP handler that upgrades the connection
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade error", zap.Error(err))
		return
	}

	h.handleConnection(conn)
}

// handleConnection manages the lifecycle of a single WebSocket connection
func (h *Handler) handleConnection(conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	// 1. Wait for initialization: a player token or a match to watch
	matchID, side, ok := h.initialize(conn)
	if !ok {
		conn.Close()
		return
	}

	id := h.ConnManager.AddConnection(conn, matchID, side)
	done := make(chan struct{})

	// 2. Cleanup on exit
	defer func() {
		close(done)
		h.ConnManager.RemoveConnection(id)
		h.logger.Debug("connection closed", zap.String("match", matchID))
	}()

	go h.keepAlive(id, done)

	joined := domain.ServerMessage{Type: "joined", MatchID: matchID, Side: side}
	if snaps, err := h.GameService.Snapshots(matchID); err == nil {
		joined.Snapshots = snaps
	}
	h.ConnManager.SendMessage(id, joined)

	// 3. Main message loop
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("client disconnected unexpectedly", zap.Error(err))
			}
			return
		}

		var message domain.ClientMessage
		if err := json.Unmarshal(data, &message); err != nil {
			h.ConnManager.SendMessage(id, domain.ErrorMessage{Type: "error", Message: "invalid message"})
			continue
		}
		h.handleMessage(id, matchID, side, message)
	}
}

func (h *Handler) initialize(conn *websocket.Conn) (string, *int, bool) {
	_, data, err := conn.ReadMessage()
	if err != nil {
		h.logger.Debug("read error during init", zap.Error(err))
		return "", nil, false
	}

	var message domain.ClientMessage
	if err := json.Unmarshal(data, &message); err != nil {
		h.logger.Debug("invalid JSON during init", zap.Error(err))
		return "", nil, false
	}

	reject := func(reason string) (string, *int, bool) {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		conn.WriteJSON(domain.ErrorMessage{Type: "error", Message: reason})
		return "", nil, false
	}

	switch message.Type {
	case "init":
		claims, err := h.Tokens.ValidateSideToken(message.Token)
		if err != nil {
			return reject("invalid token")
		}
		if _, ok := h.GameService.Manager.GetMatch(claims.MatchID); !ok {
			return reject(domain.ErrMatchNotFound.Error())
		}
		side := claims.Side
		h.logger.Info("player connected", zap.String("match", claims.MatchID), zap.Int("side", side))
		return claims.MatchID, &side, true

	case "watch":
		if _, ok := h.GameService.Manager.GetMatch(message.MatchID); !ok {
			return reject(domain.ErrMatchNotFound.Error())
		}
		h.logger.Info("spectator connected", zap.String("match", message.MatchID))
		return message.MatchID, nil, true
	}
	return reject("expected init or watch")
}

func (h *Handler) handleMessage(id int64, matchID string, side *int, message domain.ClientMessage) {
	switch message.Type {
	case "input":
		if side == nil {
			h.ConnManager.SendMessage(id, domain.ErrorMessage{Type: "error", Message: "spectators cannot send input"})
			return
		}
		action, err := domain.ParseAction(message.Action)
		if err != nil {
			h.ConnManager.SendMessage(id, domain.ErrorMessage{Type: "error", Message: err.Error()})
			return
		}
		snaps, err := h.GameService.ApplyInput(matchID, *side, action)
		if err != nil {
			h.ConnManager.SendMessage(id, domain.ErrorMessage{Type: "error", Message: err.Error()})
			return
		}
		h.ConnManager.SendMessage(id, domain.ServerMessage{Type: "snapshot", MatchID: matchID, Snapshots: snaps})

	case "ping":
		h.ConnManager.SendMessage(id, domain.ServerMessage{Type: "pong"})

	default:
		h.ConnManager.SendMessage(id, domain.ErrorMessage{Type: "error", Message: "unknown message type"})
	}
}

// keepAlive pings until the connection is done.
func (h *Handler) keepAlive(id int64, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			h.ConnManager.mu.RLock()
			c, ok := h.ConnManager.clients[id]
			h.ConnManager.mu.RUnlock()
			if !ok {
				return
			}
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				return
			}
		}
	}
}
