// internal/handler/websocket_handler.go
package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"print-service/internal/utils"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

// WebSocketHandler streams print job updates to connected POS frontends.
type WebSocketHandler struct {
	upgrader    websocket.Upgrader
	connections *ConnectionManager
	eventBus    *EventBus
	logger      *utils.ServiceLogger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(eventBus *EventBus, logger *zap.Logger) *WebSocketHandler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// The service binds to localhost; the POS frontend is the
			// only expected origin.
			return true
		},
	}

	handler := &WebSocketHandler{
		upgrader:    upgrader,
		connections: NewConnectionManager(),
		eventBus:    eventBus,
		logger:      utils.NewServiceLogger(logger, "websocket-handler"),
	}

	go handler.eventBus.Start()
	go handler.forwardJobEvents()

	return handler
}

// RegisterRoutes registers WebSocket routes
func (h *WebSocketHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/jobs", h.HandleJobFeed)
	router.GET("/stats", h.FeedStats)
}

// FeedStats reports live job feed connection counts
// @Summary Job feed statistics
// @Tags WebSocket
// @Produce json
// @Success 200 {object} utils.APIResponse{data=handler.ConnectionStats} "Feed statistics"
// @Router /ws/stats [get]
func (h *WebSocketHandler) FeedStats(c *gin.Context) {
	utils.SuccessResponse(c, http.StatusOK, "Feed statistics", h.Stats())
}

// HandleJobFeed upgrades the connection and subscribes the client to the
// print job feed.
func (h *WebSocketHandler) HandleJobFeed(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade WebSocket connection", zap.Error(err))
		return
	}

	client := &Client{
		ID:          uuid.New().String(),
		Connection:  conn,
		Send:        make(chan []byte, 256),
		Type:        "jobs",
		UserAgent:   c.Request.UserAgent(),
		RemoteAddr:  c.Request.RemoteAddr,
		ConnectedAt: time.Now(),
	}

	h.connections.Register(client)
	h.logger.Info("Job feed client connected",
		zap.String("client_id", client.ID),
		zap.String("remote_addr", client.RemoteAddr),
	)

	go h.handleClientRead(client)
	go h.handleClientWrite(client)
}

// forwardJobEvents relays bus events to every job feed client.
func (h *WebSocketHandler) forwardJobEvents() {
	updates := h.eventBus.Subscribe(EventJobUpdate)
	for event := range updates {
		message := WebSocketMessage{
			Type:      event.Type,
			Data:      event.Data,
			Timestamp: event.Timestamp,
		}
		data, err := json.Marshal(message)
		if err != nil {
			h.logger.Error("Failed to marshal job event", zap.Error(err))
			continue
		}

		for _, client := range h.connections.GetClientsByType("jobs") {
			select {
			case client.Send <- data:
			default:
				// Slow client, drop the update for it.
			}
		}
	}
}

// Stats exposes connection statistics for the health endpoint.
func (h *WebSocketHandler) Stats() *ConnectionStats {
	return h.connections.GetStats()
}

func (h *WebSocketHandler) handleClientRead(client *Client) {
	defer func() {
		h.connections.Unregister(client)
		client.Connection.Close()
	}()

	client.Connection.SetReadDeadline(time.Now().Add(pongWait))
	client.Connection.SetPongHandler(func(string) error {
		client.Connection.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := client.Connection.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("WebSocket client read error",
					zap.String("client_id", client.ID),
					zap.Error(err))
			}
			return
		}
		// The job feed is one-way; client messages are ignored.
	}
}

func (h *WebSocketHandler) handleClientWrite(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		client.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-client.Send:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				client.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.Connection.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			client.Connection.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
