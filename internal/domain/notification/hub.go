package notification

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/shareit/shareit-api/internal/pkg/metrics"
)

// userEventsChannel carries notifications between server instances
const userEventsChannel = "shareit:ws:user_events"

type userEventMessage struct {
	UserID           int64           `json:"user_id"`
	Payload          json.RawMessage `json:"payload"`
	SenderInstanceID string          `json:"sender_instance_id"`
}

// Connection represents a WebSocket connection
type Connection struct {
	UserID int64
	Conn   *websocket.Conn
	Send   chan []byte
}

// NewConnection creates a connection with a buffered send queue
func NewConnection(userID int64, conn *websocket.Conn) *Connection {
	return &Connection{UserID: userID, Conn: conn, Send: make(chan []byte, 64)}
}

// Hub tracks the WebSocket connections of this instance. With Redis every
// message is also published so users connected elsewhere receive it.
type Hub struct {
	connections map[int64]map[*Connection]bool
	mu          sync.RWMutex

	redis  *redis.Client
	pubsub *redis.PubSub

	ctx    context.Context
	cancel context.CancelFunc

	instanceID string
}

// NewHub creates a hub. redisClient may be nil.
func NewHub(redisClient *redis.Client) *Hub {
	return NewHubWithInstanceID(redisClient, uuid.NewString())
}

// NewHubWithInstanceID creates a hub with explicit instance identifier.
func NewHubWithInstanceID(redisClient *redis.Client, instanceID string) *Hub {
	ctx, cancel := context.WithCancel(context.Background())

	h := &Hub{
		connections: make(map[int64]map[*Connection]bool),
		redis:       redisClient,
		ctx:         ctx,
		cancel:      cancel,
		instanceID:  instanceID,
	}

	if redisClient != nil {
		h.pubsub = redisClient.Subscribe(ctx, userEventsChannel)
		// Wait for the subscription so nothing published right after start is lost
		waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
		if _, err := h.pubsub.Receive(waitCtx); err != nil {
			log.Warn().Err(err).Msg("Redis subscription not confirmed")
		}
		waitCancel()
	}

	return h
}

// Run relays messages from other instances until Shutdown (call in goroutine)
func (h *Hub) Run() {
	if h.pubsub == nil {
		<-h.ctx.Done()
		return
	}

	ch := h.pubsub.Channel()
	for {
		select {
		case <-h.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.handleUserEventPayload(msg.Payload)
		}
	}
}

func (h *Hub) handleUserEventPayload(payload string) {
	var event userEventMessage
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return
	}
	if event.SenderInstanceID == h.instanceID {
		return
	}
	h.sendLocal(event.UserID, event.Payload)
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.mu.Lock()
	if h.connections[conn.UserID] == nil {
		h.connections[conn.UserID] = make(map[*Connection]bool)
	}
	h.connections[conn.UserID][conn] = true
	h.mu.Unlock()

	metrics.AddRealtimeConnections(1)
	log.Debug().Int64("user_id", conn.UserID).Msg("User connected to WebSocket")
}

// Unregister removes a connection and closes its send queue
func (h *Hub) Unregister(conn *Connection) {
	h.mu.Lock()
	conns, ok := h.connections[conn.UserID]
	if ok && conns[conn] {
		delete(conns, conn)
		close(conn.Send)
		metrics.AddRealtimeConnections(-1)
		if len(conns) == 0 {
			delete(h.connections, conn.UserID)
		}
	}
	h.mu.Unlock()

	log.Debug().Int64("user_id", conn.UserID).Msg("User disconnected from WebSocket")
}

// SendToUser delivers payload as JSON to every connection of userID on any instance.
func (h *Hub) SendToUser(userID int64, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	h.sendLocal(userID, data)
	return h.publish(userID, data)
}

func (h *Hub) sendLocal(userID int64, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for conn := range h.connections[userID] {
		select {
		case conn.Send <- data:
		default:
			log.Warn().Int64("user_id", userID).Msg("WebSocket send buffer full")
		}
	}
}

func (h *Hub) publish(userID int64, data []byte) error {
	if h.redis == nil {
		return nil
	}

	payload, err := json.Marshal(userEventMessage{
		UserID:           userID,
		Payload:          data,
		SenderInstanceID: h.instanceID,
	})
	if err != nil {
		return err
	}
	return h.redis.Publish(h.ctx, userEventsChannel, payload).Err()
}

// ConnectionCount returns number of local connections
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.connections {
		total += len(conns)
	}
	return total
}

// Shutdown stops Run and drops the Redis subscription
func (h *Hub) Shutdown() {
	h.cancel()
	if h.pubsub != nil {
		h.pubsub.Close()
	}
}
