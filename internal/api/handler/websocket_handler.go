package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"parking_ledger/internal/domain"
	"parking_ledger/internal/service"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketManager fans lot status snapshots out to every connected client.
type WebSocketManager struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan []byte
	done       chan struct{}
	mutex      sync.RWMutex
	logger     *zap.Logger
}

func NewWebSocketManager(logger *zap.Logger) *WebSocketManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan []byte, 16),
		done:       make(chan struct{}),
		logger:     logger.Named("websocket"),
	}
}

// Start runs the manager loop until ctx is done, then closes every client.
func (wsm *WebSocketManager) Start(ctx context.Context) {
	defer close(wsm.done)
	for {
		select {
		case <-ctx.Done():
			wsm.mutex.Lock()
			for client := range wsm.clients {
				client.Close()
				delete(wsm.clients, client)
			}
			wsm.mutex.Unlock()
			return

		case client := <-wsm.register:
			wsm.mutex.Lock()
			wsm.clients[client] = true
			total := len(wsm.clients)
			wsm.mutex.Unlock()
			wsm.logger.Info("client connected", zap.Int("clients", total))

		case client := <-wsm.unregister:
			wsm.mutex.Lock()
			if _, ok := wsm.clients[client]; ok {
				delete(wsm.clients, client)
				client.Close()
			}
			total := len(wsm.clients)
			wsm.mutex.Unlock()
			wsm.logger.Info("client disconnected", zap.Int("clients", total))

		case message := <-wsm.broadcast:
			wsm.mutex.Lock()
			for client := range wsm.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					wsm.logger.Warn("write to client failed", zap.Error(err))
					client.Close()
					delete(wsm.clients, client)
				}
			}
			wsm.mutex.Unlock()
		}
	}
}

func (wsm *WebSocketManager) add(conn *websocket.Conn) {
	select {
	case wsm.register <- conn:
	case <-wsm.done:
		conn.Close()
	}
}

func (wsm *WebSocketManager) remove(conn *websocket.Conn) {
	select {
	case wsm.unregister <- conn:
	case <-wsm.done:
	}
}

// ClientCount reports the number of connected clients.
func (wsm *WebSocketManager) ClientCount() int {
	wsm.mutex.RLock()
	defer wsm.mutex.RUnlock()
	return len(wsm.clients)
}

// NotifyLotStatus queues a snapshot for broadcast. It never blocks the ledger.
func (wsm *WebSocketManager) NotifyLotStatus(notification domain.LotStatusNotification) {
	message, err := json.Marshal(notification)
	if err != nil {
		wsm.logger.Error("marshal lot status", zap.Error(err))
		return
	}

	select {
	case wsm.broadcast <- message:
	default:
		wsm.logger.Warn("broadcast channel is full, dropping lot status")
	}
}

type WebSocketHandler struct {
	wsManager *WebSocketManager
	ledger    *service.Ledger
}

func NewWebSocketHandler(wsManager *WebSocketManager, l *service.Ledger) *WebSocketHandler {
	return &WebSocketHandler{wsManager: wsManager, ledger: l}
}

// GET /ws
func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.wsManager.logger.Warn("upgrade to websocket failed", zap.Error(err))
		return
	}

	// The first frame is the current status so a client never waits for a mutation.
	if lots, err := h.ledger.Lots(c.Request.Context()); err == nil {
		_ = conn.WriteJSON(domain.LotStatusNotification{
			EventType: domain.StatusEventSnapshot,
			Lots:      lots,
			Status:    service.FormatParkingStatus(lots),
		})
	}

	h.wsManager.add(conn)

	go func() {
		defer h.wsManager.remove(conn)

		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					h.wsManager.logger.Warn("websocket read error", zap.Error(err))
				}
				return
			}
		}
	}()
}
