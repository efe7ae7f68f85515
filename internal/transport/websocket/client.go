package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/iamasit07/blockfall/backend/internal/domain"
)

const writeWait = 10 * time.Second

type client struct {
	conn    *websocket.Conn
	matchID string
	side    *int // nil for spectators

	// writeMu ensures only one goroutine writes to the socket at a time;
	// conn.WriteJSON is not safe for concurrent use.
	writeMu sync.Mutex
	// busy is set while a published frame is being written, so the tick
	// loop skips slow clients instead of queueing behind them.
	busy atomic.Bool
}

// ConnectionManager handles active WebSocket connections thread-safely and
// fans snapshots out to every connection watching a match.
type ConnectionManager struct {
	clients map[int64]*client
	byMatch map[string]map[int64]struct{}
	nextID  int64
	mu      sync.RWMutex // Protects the maps themselves
	logger  *zap.Logger
}

func NewConnectionManager(logger *zap.Logger) *ConnectionManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConnectionManager{
		clients: make(map[int64]*client),
		byMatch: make(map[string]map[int64]struct{}),
		logger:  logger.Named("ws"),
	}
}

// AddConnection registers a connection for a match and returns its id.
func (cm *ConnectionManager) AddConnection(conn *websocket.Conn, matchID string, side *int) int64 {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	cm.nextID++
	id := cm.nextID
	cm.clients[id] = &client{conn: conn, matchID: matchID, side: side}

	watchers, ok := cm.byMatch[matchID]
	if !ok {
		watchers = make(map[int64]struct{})
		cm.byMatch[matchID] = watchers
	}
	watchers[id] = struct{}{}
	return id
}

// RemoveConnection closes a connection and forgets it.
func (cm *ConnectionManager) RemoveConnection(id int64) {
	cm.mu.Lock()
	defer cm.mu.Unlock()

	c, exists := cm.clients[id]
	if !exists {
		return
	}
	c.conn.Close()
	delete(cm.clients, id)

	if watchers, ok := cm.byMatch[c.matchID]; ok {
		delete(watchers, id)
		if len(watchers) == 0 {
			delete(cm.byMatch, c.matchID)
		}
	}
}

// SendMessage sends a JSON message to one connection
func (cm *ConnectionManager) SendMessage(id int64, message interface{}) error {
	cm.mu.RLock()
	c, exists := cm.clients[id]
	cm.mu.RUnlock()

	if !exists {
		return nil // disconnected, ignore
	}
	return c.write(message)
}

func (c *client) write(message interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(message)
}

// Publish pushes a snapshot frame to every connection on the match. It
// never blocks on a socket.
func (cm *ConnectionManager) Publish(matchID string, snapshots []domain.Snapshot) {
	cm.mu.RLock()
	targets := make([]*client, 0, len(cm.byMatch[matchID]))
	for id := range cm.byMatch[matchID] {
		targets = append(targets, cm.clients[id])
	}
	cm.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	msg := domain.ServerMessage{Type: "snapshot", MatchID: matchID, Snapshots: snapshots}
	for _, c := range targets {
		if !c.busy.CompareAndSwap(false, true) {
			continue
		}
		go func(c *client) {
			defer c.busy.Store(false)
			if err := c.write(msg); err != nil {
				cm.logger.Debug("dropping frame", zap.String("match", matchID), zap.Error(err))
			}
		}(c)
	}
}

// Watchers is the number of connections on a match.
func (cm *ConnectionManager) Watchers(matchID string) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.byMatch[matchID])
}
