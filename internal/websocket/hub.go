package websocket

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/cerita/server/internal/audio"
	"github.com/satriahrh/cerita/server/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 16 * 1024

	// Per-request synthesis timeout.
	speakTimeout = 90 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// TODO: Implement proper origin checking
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Hub maintains the set of active clients.
type Hub struct {
	// Registered clients keyed by connection ID.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	speech *usecase.SpeechService

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(speech *usecase.SpeechService, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		speech:     speech,
		logger:     logger,
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.id] = client
			h.mu.Unlock()
			h.logger.Info("Client registered",
				zap.String("connectionID", client.id),
				zap.String("clientID", client.clientID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				close(client.send)
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered",
				zap.String("connectionID", client.id),
				zap.String("clientID", client.clientID))
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// WriteData is one outbound websocket message.
type WriteData struct {
	// Type is the websocket message type.
	// Expect websocket.TextMessage or websocket.BinaryMessage
	Type    int
	Payload []byte
}

// Client is a middleman between the websocket connection and the hub.
type Client struct {
	hub *Hub

	// The websocket connection.
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan WriteData

	// Connection ID, unique per socket.
	id string

	// Authenticated client ID, shared across a client's sockets.
	clientID string

	validator *MessageValidator

	logger *zap.Logger
}

// HandleWebSocketWithAuth handles websocket requests with a
// pre-authenticated client ID.
func HandleWebSocketWithAuth(hub *Hub, c echo.Context, clientID string, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	client := &Client{
		hub:       hub,
		conn:      conn,
		send:      make(chan WriteData, 256),
		id:        uuid.NewString(),
		clientID:  clientID,
		validator: NewMessageValidator(),
		logger:    logger,
	}

	client.hub.register <- client

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", zap.Error(err))
			}
			break
		}

		switch messageType {
		case websocket.TextMessage:
			c.processMessage(message)
		default:
			c.logger.Warn("Received unexpected message type", zap.Int("type", messageType))
		}
	}
}

// writePump pumps messages from the hub to the websocket connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(message.Type, message.Payload); err != nil {
				c.logger.Error("Failed to write message", zap.Error(err))
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

// processMessage processes incoming messages from the client
func (c *Client) processMessage(message []byte) {
	parsed, err := c.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Rejected invalid message",
			zap.String("clientID", c.clientID),
			zap.Error(err))
		c.sendJSON(newErrorMessage("", "invalid_message", err.Error()))
		return
	}

	switch msg := parsed.(type) {
	case *SpeakMessage:
		c.handleSpeak(msg)
	case *BaseMessage:
		if msg.Type == MessageTypePing {
			c.sendJSON(BaseMessage{
				Type:      MessageTypePong,
				Timestamp: time.Now().Format(time.RFC3339),
				RequestID: msg.RequestID,
			})
		}
	}
}

// handleSpeak synthesizes speech for the requested text and streams the
// decoded utterance: a speech_info frame, one binary frame per channel
// of little-endian float32 samples, then a speech_end frame.
func (c *Client) handleSpeak(msg *SpeakMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), speakTimeout)
	defer cancel()

	c.logger.Info("Processing speak request",
		zap.String("clientID", c.clientID),
		zap.String("requestID", msg.RequestID),
		zap.Int("textLength", len(msg.Text)))

	result, err := c.hub.speech.Speak(ctx, msg.Text)
	if err != nil {
		code := "synthesis_failed"
		if errors.Is(err, audio.ErrMalformedPayload) {
			code = "decode_failed"
		}
		c.logger.Error("Speak request failed",
			zap.String("clientID", c.clientID),
			zap.String("requestID", msg.RequestID),
			zap.Error(err))
		c.sendJSON(newErrorMessage(msg.RequestID, code, "failed to synthesize speech"))
		return
	}

	buffer := result.Buffer
	c.sendJSON(SpeechInfoMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeSpeechInfo,
			Timestamp: time.Now().Format(time.RFC3339),
			RequestID: msg.RequestID,
		},
		SampleRate: buffer.SampleRate(),
		Channels:   buffer.NumChannels(),
		FrameCount: buffer.FrameCount(),
		DurationMs: buffer.Duration().Milliseconds(),
	})

	for ch := 0; ch < buffer.NumChannels(); ch++ {
		c.enqueue(WriteData{
			Type:    websocket.BinaryMessage,
			Payload: encodeChannel(buffer.Channel(ch)),
		})
	}

	c.sendJSON(SpeechEndMessage{
		BaseMessage: BaseMessage{
			Type:      MessageTypeSpeechEnd,
			Timestamp: time.Now().Format(time.RFC3339),
			RequestID: msg.RequestID,
		},
	})
}

// sendJSON marshals a message onto the outbound queue.
func (c *Client) sendJSON(message interface{}) {
	payload, err := json.Marshal(message)
	if err != nil {
		c.logger.Error("Failed to marshal outbound message", zap.Error(err))
		return
	}
	c.enqueue(WriteData{
		Type:    websocket.TextMessage,
		Payload: payload,
	})
}

// enqueue adds an outbound frame, dropping the connection if the
// client cannot keep up.
func (c *Client) enqueue(data WriteData) {
	select {
	case c.send <- data:
	default:
		c.logger.Warn("Outbound buffer full, dropping client",
			zap.String("connectionID", c.id))
		c.conn.Close()
	}
}

// encodeChannel packs one channel of samples as little-endian float32.
func encodeChannel(samples []float32) []byte {
	payload := make([]byte, len(samples)*4)
	for i, sample := range samples {
		binary.LittleEndian.PutUint32(payload[i*4:], math.Float32bits(sample))
	}
	return payload
}
