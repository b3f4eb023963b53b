package api

import (
	"net/http"
	"strconv"
	"sync"

	"referral_giveaway_bot/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type progressMessage struct {
	Type       string `json:"type"`
	TelegramID int64  `json:"telegram_id"`
	Referrals  int    `json:"referrals"`
}

type progressClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// ProgressHub pushes referral count updates to connected mini-app
// clients. It implements service.Notifier.
type ProgressHub struct {
	mu      sync.RWMutex
	clients map[int64]*progressClient
}

func NewProgressHub() *ProgressHub {
	return &ProgressHub{
		clients: make(map[int64]*progressClient),
	}
}

func (h *ProgressHub) HandleWebSocket(c *gin.Context) {
	log := logger.Logger()

	telegramID := c.Param("telegram_id")
	id, err := strconv.ParseInt(telegramID, 10, 64)
	if err != nil {
		log.Error("failed to parse telegram_id", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid telegram_id"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &progressClient{conn: conn}

	h.mu.Lock()
	if prev, ok := h.clients[id]; ok {
		prev.conn.Close()
	}
	h.clients[id] = client
	h.mu.Unlock()

	go h.readLoop(id, client)
}

// readLoop discards inbound frames; the socket is push-only. It exists
// to observe the close handshake and deregister the client.
func (h *ProgressHub) readLoop(id int64, client *progressClient) {
	defer func() {
		client.conn.Close()
		h.mu.Lock()
		if h.clients[id] == client {
			delete(h.clients, id)
		}
		h.mu.Unlock()
	}()

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Logger().Warn("websocket unexpected close",
					zap.Int64("telegram_id", id),
					zap.Error(err))
			}
			return
		}
	}
}

func (h *ProgressHub) ReferralCountChanged(telegramID int64, referrals int) {
	h.mu.RLock()
	client := h.clients[telegramID]
	h.mu.RUnlock()

	if client == nil {
		return
	}

	payload, err := json.Marshal(progressMessage{
		Type:       "referral_progress",
		TelegramID: telegramID,
		Referrals:  referrals,
	})
	if err != nil {
		logger.Logger().Error("failed to marshal progress message", zap.Error(err))
		return
	}

	client.mu.Lock()
	err = client.conn.WriteMessage(websocket.TextMessage, payload)
	client.mu.Unlock()

	if err != nil {
		logger.Logger().Warn("failed to push progress update",
			zap.Int64("telegram_id", telegramID),
			zap.Error(err))
	}
}
