package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/mybus-app/service-transit/internal/application"
	"github.com/mybus-app/service-transit/internal/domain/marker"
	"github.com/mybus-app/service-transit/internal/platform/response"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// liveClient is one websocket subscriber. Events that arrive before the
// snapshot has been written are held in pending and flushed right after it.
type liveClient struct {
	conn    *websocket.Conn
	mu      sync.Mutex
	ready   bool
	pending [][]byte
}

func newLiveClient(conn *websocket.Conn) *liveClient {
	return &liveClient{conn: conn}
}

func (c *liveClient) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.ready {
		c.pending = append(c.pending, data)
		return nil
	}
	return c.writeLocked(data)
}

// start writes the snapshot followed by any events queued while it was built.
func (c *liveClient) start(snapshot []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.writeLocked(snapshot); err != nil {
		return err
	}
	for _, data := range c.pending {
		if err := c.writeLocked(data); err != nil {
			return err
		}
	}
	c.pending = nil
	c.ready = true
	return nil
}

func (c *liveClient) writeLocked(data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// LiveHub pushes marker events to websocket clients subscribed to a map.
// It implements marker.Publisher.
type LiveHub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]map[*liveClient]struct{}
	logger  *zap.Logger
}

func NewLiveHub(logger *zap.Logger) *LiveHub {
	return &LiveHub{
		clients: make(map[uuid.UUID]map[*liveClient]struct{}),
		logger:  logger,
	}
}

// PublishMarkerEvent broadcasts evt to the clients of evt.MapID. Clients that
// fail a write are dropped.
func (h *LiveHub) PublishMarkerEvent(_ context.Context, evt marker.Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		h.logger.Error("failed to marshal marker event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients[evt.MapID] {
		if err := c.send(data); err != nil {
			_ = c.conn.Close()
			h.removeLocked(evt.MapID, c)
		}
	}
}

// Subscribers returns the number of clients watching mapID.
func (h *LiveHub) Subscribers(mapID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients[mapID])
}

func (h *LiveHub) add(mapID uuid.UUID, c *liveClient) {
	h.mu.Lock()
	if h.clients[mapID] == nil {
		h.clients[mapID] = make(map[*liveClient]struct{})
	}
	h.clients[mapID][c] = struct{}{}
	h.mu.Unlock()
}

func (h *LiveHub) remove(mapID uuid.UUID, c *liveClient) {
	h.mu.Lock()
	h.removeLocked(mapID, c)
	h.mu.Unlock()
}

func (h *LiveHub) removeLocked(mapID uuid.UUID, c *liveClient) {
	delete(h.clients[mapID], c)
	if len(h.clients[mapID]) == 0 {
		delete(h.clients, mapID)
	}
}

// LiveHandler upgrades map subscriptions to websockets.
type LiveHandler struct {
	hub  *LiveHub
	maps *application.MapService
}

func NewLiveHandler(hub *LiveHub, maps *application.MapService) *LiveHandler {
	return &LiveHandler{hub: hub, maps: maps}
}

// RegisterRoutes registers the live stream route.
func (h *LiveHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/api/v1/maps/:id/live", h.Stream)
}

// Stream handles GET /api/v1/maps/:id/live. The current markers are sent as
// one snapshot message, then every change as it happens. The client is
// registered before the snapshot is read so no change falls in between.
func (h *LiveHandler) Stream(c *gin.Context) {
	mapID, err := mapIDParam(c)
	if err != nil {
		response.BadRequest(c, "invalid map ID")
		return
	}
	if _, err := h.maps.GetMap(c.Request.Context(), mapID); err != nil {
		response.Error(c, err)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.hub.logger.Warn("ws upgrade error", zap.Error(err))
		return
	}
	client := newLiveClient(conn)
	h.hub.add(mapID, client)

	snapshot, err := h.maps.ListMarkers(c.Request.Context(), mapID)
	if err != nil {
		h.hub.logger.Error("failed to load live snapshot", zap.String("map_id", mapID.String()), zap.Error(err))
		h.hub.remove(mapID, client)
		_ = conn.Close()
		return
	}
	data, _ := json.Marshal(gin.H{"type": "snapshot", "markers": snapshot})
	if err := client.start(data); err != nil {
		h.hub.remove(mapID, client)
		_ = conn.Close()
		return
	}
	go h.readPump(mapID, client)
}

// readPump discards client messages and unregisters the client when it goes away.
func (h *LiveHandler) readPump(mapID uuid.UUID, c *liveClient) {
	defer func() {
		h.hub.remove(mapID, c)
		_ = c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
