package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/infrastructure/logging"
	"github.com/AnaSofiaFigueiroaPinto/SmartHome-sub002/internal/measurement"
)

// WebSocket message types.
const (
	WSTypeSubscribe   = "subscribe"
	WSTypeUnsubscribe = "unsubscribe"
	WSTypePing        = "ping"
	WSTypePong        = "pong"
	WSTypeEvent       = "event"
	WSTypeResponse    = "response"
	WSTypeError       = "error"
)

// ChannelReadingCreated carries accepted readings.
const ChannelReadingCreated = "reading.created"

const (
	wsSendBufferSize = 256
	wsMaxMessageSize = 8192
	wsPingInterval   = 30 * time.Second
	wsPongTimeout    = 10 * time.Second
)

// WSMessage is a message sent to or from a WebSocket client.
type WSMessage struct {
	Type      string `json:"type"`
	ID        string `json:"id,omitempty"`
	EventType string `json:"event_type,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Payload   any    `json:"payload,omitempty"`
}

// WSSubscribePayload is the payload of subscribe and unsubscribe messages.
//
// The ID lists narrow the reading feed: a reading is delivered when it
// matches every non-empty list. A subscribe replaces the client's previous
// filter.
type WSSubscribePayload struct {
	Channels        []string `json:"channels"`
	DeviceIDs       []string `json:"device_ids,omitempty"`
	SensorIDs       []string `json:"sensor_ids,omitempty"`
	Functionalities []string `json:"functionalities,omitempty"`
}

// readingFilter selects the readings a client receives.
type readingFilter struct {
	devices         map[string]struct{}
	sensors         map[string]struct{}
	functionalities map[string]struct{}
}

func newReadingFilter(p WSSubscribePayload) readingFilter {
	return readingFilter{
		devices:         toSet(p.DeviceIDs),
		sensors:         toSet(p.SensorIDs),
		functionalities: toSet(p.Functionalities),
	}
}

func (f readingFilter) matches(e measurement.Event) bool {
	return inSet(f.devices, e.DeviceID) &&
		inSet(f.sensors, e.Reading.SensorID) &&
		inSet(f.functionalities, e.Functionality)
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// inSet reports whether v is in set. A nil set holds everything.
func inSet(set map[string]struct{}, v string) bool {
	if set == nil {
		return true
	}
	_, ok := set[v]
	return ok
}

// ReadingHub fans accepted readings out to subscribed WebSocket clients.
type ReadingHub struct {
	logger  *logging.Logger
	clients map[*WSClient]struct{}
	mu      sync.RWMutex

	sent    atomic.Uint64
	dropped atomic.Uint64
}

// WSClient is a connected WebSocket client.
type WSClient struct {
	hub  *ReadingHub
	conn *websocket.Conn
	send chan []byte

	mu         sync.RWMutex
	subscribed bool
	filter     readingFilter
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(_ *http.Request) bool {
		// Origins are checked by the CORS middleware.
		return true
	},
}

// NewReadingHub creates an empty hub.
func NewReadingHub(logger *logging.Logger) *ReadingHub {
	return &ReadingHub{
		logger:  logger,
		clients: make(map[*WSClient]struct{}),
	}
}

// Run blocks until ctx is cancelled, then disconnects every client.
func (h *ReadingHub) Run(ctx context.Context) {
	<-ctx.Done()
	h.closeAll()
}

func (h *ReadingHub) register(client *WSClient) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	h.logger.Debug("websocket client connected", "clients", h.ClientCount())
}

// unregister removes client. Only the caller that removes it from the map
// closes its send channel.
func (h *ReadingHub) unregister(client *WSClient) {
	h.mu.Lock()
	_, existed := h.clients[client]
	delete(h.clients, client)
	h.mu.Unlock()

	if existed {
		close(client.send)
	}
	h.logger.Debug("websocket client disconnected", "clients", h.ClientCount())
}

// Publish delivers e to every client whose subscription matches it. A
// client with a full send buffer misses the event.
func (h *ReadingHub) Publish(e measurement.Event) {
	data, err := json.Marshal(WSMessage{
		Type:      WSTypeEvent,
		EventType: ChannelReadingCreated,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   e,
	})
	if err != nil {
		h.logger.Error("encoding reading event", "reading_id", e.Reading.ID, "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*WSClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	recipients := 0
	for _, client := range clients {
		if !client.wants(e) {
			continue
		}
		if client.trySend(data) {
			h.sent.Add(1)
			recipients++
		} else {
			h.dropped.Add(1)
		}
	}
	if recipients > 0 {
		h.logger.Debug("reading event sent", "device_id", e.DeviceID, "recipients", recipients)
	}
}

// ClientCount returns the number of connected clients.
func (h *ReadingHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// SubscriberCount returns the number of clients subscribed to the feed.
func (h *ReadingHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for client := range h.clients {
		client.mu.RLock()
		if client.subscribed {
			n++
		}
		client.mu.RUnlock()
	}
	return n
}

// Delivered returns how many events were queued for clients and how many
// were dropped on full buffers.
func (h *ReadingHub) Delivered() (sent, dropped uint64) {
	return h.sent.Load(), h.dropped.Load()
}

func (h *ReadingHub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
		if client.conn != nil {
			client.conn.Close()
		}
		delete(h.clients, client)
	}
}

// handleWebSocket upgrades the connection to the reading feed. Nothing is
// delivered until the client subscribes to ChannelReadingCreated.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, wsSendBufferSize),
	}
	s.hub.register(client)

	go client.writePump()
	go client.readPump()
}

func (c *WSClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(wsMaxMessageSize)
	//nolint:errcheck // best-effort deadline
	c.conn.SetReadDeadline(time.Now().Add(wsPingInterval + wsPongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(wsPingInterval + wsPongTimeout))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("websocket read error", "error", err)
			}
			return
		}
		// Browsers do not always answer protocol pings, so any message counts.
		//nolint:errcheck // best-effort deadline
		c.conn.SetReadDeadline(time.Now().Add(wsPingInterval + wsPongTimeout))
		c.handleMessage(message)
	}
}

func (c *WSClient) writePump() {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if !ok {
				//nolint:errcheck // best-effort close frame
				c.conn.WriteMessage(websocket.CloseMessage, nil)
				return
			}
			//nolint:errcheck // write error caught below
			c.conn.SetWriteDeadline(time.Now().Add(wsPongTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			//nolint:errcheck // ping error caught below
			c.conn.SetWriteDeadline(time.Now().Add(wsPongTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *WSClient) handleMessage(data []byte) {
	var msg struct {
		Type    string             `json:"type"`
		ID      string             `json:"id"`
		Payload WSSubscribePayload `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("", "invalid message")
		return
	}

	switch msg.Type {
	case WSTypeSubscribe:
		if !onlyReadingChannel(msg.Payload.Channels) {
			c.sendError(msg.ID, "unknown channel; only "+ChannelReadingCreated+" is available")
			return
		}
		c.mu.Lock()
		c.subscribed = true
		c.filter = newReadingFilter(msg.Payload)
		c.mu.Unlock()
		c.hub.logger.Debug("websocket client subscribed",
			"devices", msg.Payload.DeviceIDs, "sensors", msg.Payload.SensorIDs,
			"functionalities", msg.Payload.Functionalities)
		c.sendResponse(msg.ID, WSTypeResponse, map[string]any{"subscribed": msg.Payload})
	case WSTypeUnsubscribe:
		c.mu.Lock()
		c.subscribed = false
		c.filter = readingFilter{}
		c.mu.Unlock()
		c.sendResponse(msg.ID, WSTypeResponse, map[string]any{"unsubscribed": []string{ChannelReadingCreated}})
	case WSTypePing:
		c.sendResponse(msg.ID, WSTypePong, nil)
	default:
		c.sendError(msg.ID, "unknown message type: "+msg.Type)
	}
}

// onlyReadingChannel accepts an empty list as the reading channel.
func onlyReadingChannel(channels []string) bool {
	for _, ch := range channels {
		if ch != ChannelReadingCreated {
			return false
		}
	}
	return true
}

func (c *WSClient) wants(e measurement.Event) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.subscribed && c.filter.matches(e)
}

// trySend queues data without blocking. It reports false when the buffer
// is full or the client is already gone.
func (c *WSClient) trySend(data []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

func (c *WSClient) sendResponse(id, msgType string, payload any) {
	data, err := json.Marshal(WSMessage{
		Type:      msgType,
		ID:        id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Payload:   payload,
	})
	if err != nil {
		return
	}
	c.trySend(data)
}

func (c *WSClient) sendError(id, message string) {
	c.sendResponse(id, WSTypeError, map[string]string{"message": message})
}
