// Package websocket streams claim status changes to WebSocket clients.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/garyjia/claimdesk/internal/application/dispatcher"
	"github.com/garyjia/claimdesk/internal/application/service"
	"github.com/garyjia/claimdesk/internal/domain/event"
	"github.com/garyjia/claimdesk/internal/domain/workflow"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	gorillaWS "github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

var upgrader = gorillaWS.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StatusMessage is one frame on a watch stream
type StatusMessage struct {
	ClaimID   string    `json:"claim_id"`
	Position  int       `json:"position"`
	Previous  string    `json:"previous,omitempty"`
	Status    string    `json:"status"`
	Label     string    `json:"label"`
	Timestamp time.Time `json:"timestamp"`
}

// Watcher upgrades watch requests and forwards status changes of one claim
type Watcher struct {
	claims service.ClaimService
	events dispatcher.Dispatcher
	logger *zap.Logger

	mu      sync.Mutex
	clients map[string]*Client
}

// NewWatcher creates a Watcher
func NewWatcher(claims service.ClaimService, events dispatcher.Dispatcher, logger *zap.Logger) *Watcher {
	return &Watcher{
		claims:  claims,
		events:  events,
		logger:  logger,
		clients: make(map[string]*Client),
	}
}

// Handler serves GET /claims/:id/watch. The status binding is registered
// before the current status is read, so a change racing the handshake is
// never lost. The first frame carries the status read after binding.
func (w *Watcher) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if _, err := w.claims.Get(c.Request.Context(), id); err != nil {
			w.respondError(c, err)
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			w.logger.Error("WebSocket upgrade failed", zap.String("claim_id", id), zap.Error(err))
			return
		}

		client := newClient(uuid.NewString(), id, conn)

		// changes wait on primed until the current status frame is queued
		client.primed.Lock()
		unbind := w.events.Bind(event.TypeClaimStatusChanged, func(ctx context.Context, evt *event.Event) error {
			if evt.ClaimID != client.claimID {
				return nil
			}
			client.primed.Lock()
			defer client.primed.Unlock()

			state := workflow.State(evt.GetPayloadString(event.KeyStatus))
			if !client.enqueue(StatusMessage{
				ClaimID:   evt.ClaimID,
				Position:  int(evt.GetPayloadInt(event.KeyPosition)),
				Previous:  evt.GetPayloadString(event.KeyPrevious),
				Status:    state.String(),
				Label:     state.Label(),
				Timestamp: evt.Timestamp,
			}) {
				w.logger.Warn("Dropped status frame for slow watcher",
					zap.String("client_id", client.id),
					zap.String("claim_id", evt.ClaimID))
			}
			return nil
		})

		claim, err := w.claims.Get(c.Request.Context(), id)
		if err != nil {
			client.primed.Unlock()
			unbind()
			w.logger.Error("Failed to read claim for watcher", zap.String("claim_id", id), zap.Error(err))
			client.close()
			return
		}
		client.enqueue(StatusMessage{
			ClaimID:   claim.ID,
			Position:  claim.Position,
			Status:    claim.Status.String(),
			Label:     claim.StatusLabel(),
			Timestamp: claim.UpdatedAt,
		})
		client.primed.Unlock()

		w.register(client)
		w.logger.Info("Watcher connected", zap.String("client_id", client.id), zap.String("claim_id", claim.ID))

		go client.writePump()
		go func() {
			client.readPump()
			unbind()
			w.unregister(client)
			w.logger.Info("Watcher disconnected", zap.String("client_id", client.id))
		}()
	}
}

func (w *Watcher) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, service.ErrClaimNotFound) {
		status = http.StatusNotFound
	}
	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}

// Count returns the number of connected watchers
func (w *Watcher) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.clients)
}

// Close disconnects every watcher
func (w *Watcher) Close() {
	w.mu.Lock()
	clients := make([]*Client, 0, len(w.clients))
	for _, client := range w.clients {
		clients = append(clients, client)
	}
	w.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
}

func (w *Watcher) register(client *Client) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.clients[client.id] = client
}

func (w *Watcher) unregister(client *Client) {
	w.mu.Lock()
	delete(w.clients, client.id)
	w.mu.Unlock()
	client.close()
}

// Client is one watch connection
type Client struct {
	id      string
	claimID string
	conn    *gorillaWS.Conn

	primed sync.Mutex

	mu     sync.Mutex
	send   chan StatusMessage
	done   chan struct{}
	closed bool
}

func newClient(id, claimID string, conn *gorillaWS.Conn) *Client {
	return &Client{
		id:      id,
		claimID: claimID,
		conn:    conn,
		send:    make(chan StatusMessage, sendBuffer),
		done:    make(chan struct{}),
	}
}

// enqueue never blocks the dispatching goroutine; a full buffer drops the frame
func (c *Client) enqueue(msg StatusMessage) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.done)
	_ = c.conn.Close()
}

// readPump discards client frames and returns when the connection ends
func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case msg := <-c.send:
			payload, err := json.Marshal(msg)
			if err != nil {
				return
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(gorillaWS.TextMessage, payload); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(gorillaWS.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(gorillaWS.CloseMessage,
				gorillaWS.FormatCloseMessage(gorillaWS.CloseNormalClosure, ""))
			return
		}
	}
}
