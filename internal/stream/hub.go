// Package stream broadcasts fixture predictions to WebSocket subscribers.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/nba-oracle/internal/config"
	"github.com/yourusername/nba-oracle/internal/metrics"
	"github.com/yourusername/nba-oracle/internal/models"
)

const (
	defaultWriteTimeout = 10 * time.Second
	defaultBufferSize   = 64
	pongWait            = 60 * time.Second
	pingPeriod          = (pongWait * 9) / 10
)

// Message is the envelope sent to subscribers
type Message struct {
	Type       string                    `json:"type"`
	Prediction *models.FixturePrediction `json:"prediction"`
	SentAt     time.Time                 `json:"sent_at"`
}

// Hub fans predictions out to connected clients
type Hub struct {
	clients    map[*client]bool
	broadcast  chan *models.FixturePrediction
	register   chan *client
	unregister chan *client
	done       chan struct{}
	mu         sync.RWMutex

	upgrader     websocket.Upgrader
	writeTimeout time.Duration
	bufferSize   int
	logger       *logrus.Entry
}

type client struct {
	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	teams map[string]bool
}

// NewHub creates a hub from the stream configuration
func NewHub(cfg config.StreamConfig, logger *logrus.Logger) *Hub {
	if logger == nil {
		logger = logrus.New()
	}
	writeTimeout := time.Duration(cfg.WriteTimeoutSeconds) * time.Second
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	bufferSize := cfg.BufferSize
	if bufferSize <= 0 {
		bufferSize = defaultBufferSize
	}

	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan *models.FixturePrediction, bufferSize),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		writeTimeout: writeTimeout,
		bufferSize:   bufferSize,
		logger:       logger.WithField("component", "stream"),
	}
}

// Run serves registrations and broadcasts until ctx is cancelled
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			metrics.SetStreamSubscribers(0)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			metrics.SetStreamSubscribers(n)
			h.logger.WithField("subscribers", n).Debug("Subscriber connected")

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			metrics.SetStreamSubscribers(n)
			h.logger.WithField("subscribers", n).Debug("Subscriber disconnected")

		case p := <-h.broadcast:
			h.fanOut(p)
		}
	}
}

// Publish queues a prediction for broadcast. When the queue is full the prediction is dropped.
func (h *Hub) Publish(p *models.FixturePrediction) {
	select {
	case h.broadcast <- p:
	default:
		h.logger.WithField("game_id", p.GameID).Warn("Broadcast queue full, dropping prediction")
	}
}

// ClientCount returns the number of connected subscribers
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a WebSocket subscription. The optional "team" query
// parameter, a comma separated list of team IDs, limits the feed to fixtures involving them.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	c := &client{
		hub:   h,
		conn:  conn,
		send:  make(chan []byte, h.bufferSize),
		teams: parseTeams(r.URL.Query().Get("team")),
	}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

func (h *Hub) fanOut(p *models.FixturePrediction) {
	data, err := json.Marshal(Message{Type: "prediction", Prediction: p, SentAt: time.Now().UTC()})
	if err != nil {
		h.logger.WithError(err).Error("Failed to marshal prediction")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if !c.wants(p) {
			continue
		}
		select {
		case c.send <- data:
		default:
			close(c.send)
			delete(h.clients, c)
		}
	}
	metrics.SetStreamSubscribers(len(h.clients))
}

func (c *client) wants(p *models.FixturePrediction) bool {
	if len(c.teams) == 0 {
		return true
	}
	return c.teams[p.HomeTeamID] || c.teams[p.AwayTeamID]
}

// readPump drains client frames so control messages are processed
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.WithError(err).Warn("WebSocket read error")
			}
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(c.hub.writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func parseTeams(raw string) map[string]bool {
	if raw == "" {
		return nil
	}
	teams := make(map[string]bool)
	for _, t := range strings.Split(raw, ",") {
		if t = strings.TrimSpace(t); t != "" {
			teams[t] = true
		}
	}
	return teams
}
