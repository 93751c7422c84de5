package notifications

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"stagepass/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	clientBufSize  = 16
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The API is served behind CORS middleware; the websocket handshake
	// repeats the check there, not here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans realtime messages out to websocket subscribers grouped by topic
// (one topic per event seat map, plus the admin dashboard). Slow clients are
// dropped rather than allowed to stall a publish.
type Hub struct {
	mu     sync.RWMutex
	topics map[string]map[*wsClient]struct{}
	closed bool
	log    *logger.Logger
}

type wsClient struct {
	hub   *Hub
	topic string
	conn  *websocket.Conn
	send  chan []byte
}

func NewHub() *Hub {
	return &Hub{
		topics: make(map[string]map[*wsClient]struct{}),
		log:    logger.GetDefault(),
	}
}

// Publish marshals v and delivers it to every subscriber of topic. It never
// blocks: clients whose buffers are full are disconnected.
func (h *Hub) Publish(topic string, v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		h.log.Warn("failed to marshal realtime message", "topic", topic, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*wsClient, 0, len(h.topics[topic]))
	for client := range h.topics[topic] {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		select {
		case client.send <- payload:
		default:
			h.unsubscribe(client)
			client.conn.Close()
		}
	}
}

// SubscriberCount reports the current subscriber count for a topic.
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

// ServeWS upgrades the request and subscribes the connection to topic until
// either side disconnects.
func (h *Hub) ServeWS(c *gin.Context, topic string) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "topic", topic, "error", err)
		return
	}

	client := &wsClient{
		hub:   h,
		topic: topic,
		conn:  conn,
		send:  make(chan []byte, clientBufSize),
	}

	if !h.subscribe(client) {
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

func (h *Hub) subscribe(client *wsClient) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	if h.topics[client.topic] == nil {
		h.topics[client.topic] = make(map[*wsClient]struct{})
	}
	h.topics[client.topic][client] = struct{}{}
	return true
}

func (h *Hub) unsubscribe(client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if clients, ok := h.topics[client.topic]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.topics, client.topic)
		}
	}
}

// Close disconnects every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	h.closed = true
	var all []*wsClient
	for _, clients := range h.topics {
		for client := range clients {
			all = append(all, client)
		}
	}
	h.topics = make(map[string]map[*wsClient]struct{})
	h.mu.Unlock()

	for _, client := range all {
		client.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		client.conn.Close()
	}
}

// readPump drains inbound frames so pings and close frames are handled. The
// stream is publish-only, client payloads are discarded.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.unsubscribe(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
