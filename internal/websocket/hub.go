package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/satriahrh/cat-translator/domain/entities"
	"github.com/satriahrh/cat-translator/usecase"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512 * 1024 // 512KB for audio frames

	// A log snapshot is pushed to the browser every this many frames.
	logEveryFrames = 50
)

var upgrader = websocket.Upgrader{
	// The capture page is served by this same process; the relay is a local demo tool.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// Relayer turns a finished recording into a translation
type Relayer interface {
	Relay(ctx context.Context, sessionID string, samples []int16, sampleRate int, dropped int64) (*usecase.RelayResult, error)
}

// Hub maintains the set of active capture clients.
type Hub struct {
	// Registered clients keyed by session ID.
	clients map[string]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	quit chan struct{}

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex

	relay          Relayer
	sessionConfig  entities.SessionConfig
	requestTimeout time.Duration
	validator      *MessageValidator

	logger *zap.Logger
}

// NewHub creates a new WebSocket hub
func NewHub(relay Relayer, sessionConfig entities.SessionConfig, requestTimeout time.Duration, logger *zap.Logger) *Hub {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &Hub{
		clients:        make(map[string]*Client),
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		quit:           make(chan struct{}),
		relay:          relay,
		sessionConfig:  sessionConfig,
		requestTimeout: requestTimeout,
		validator:      NewMessageValidator(),
		logger:         logger,
	}
}

// Run starts the hub's main loop. It returns after Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.session.ID] = client
			h.mu.Unlock()
			h.logger.Info("Client registered", zap.String("sessionID", client.session.ID))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client.session.ID]; ok {
				delete(h.clients, client.session.ID)
				client.closeSend()
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered", zap.String("sessionID", client.session.ID))

		case <-h.quit:
			h.mu.Lock()
			for id, client := range h.clients {
				delete(h.clients, id)
				client.closeSend()
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop disconnects every client and ends Run
func (h *Hub) Stop() {
	close(h.quit)
}

// ActiveSessions returns the number of connected capture clients
func (h *Hub) ActiveSessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Session returns the capture session bound to the given ID
func (h *Hub) Session(sessionID string) (*entities.CaptureSession, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	client, ok := h.clients[sessionID]
	if !ok {
		return nil, false
	}
	return client.session, true
}

type WriteData struct {
	// MessageType is the type of the websocket message.
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

	// Cancels in-flight translations when the connection goes away.
	ctx    context.Context
	cancel context.CancelFunc

	logger *zap.Logger

	session *entities.CaptureSession

	// Channel count announced by the last recording_start.
	channels int

	mutex  sync.Mutex
	closed bool
}

// HandleWebSocket upgrades the request and binds a fresh capture session to it.
func HandleWebSocket(hub *Hub, c echo.Context, logger *zap.Logger) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	session := entities.NewCaptureSession(hub.sessionConfig)
	client := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan WriteData, 256),
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger.With(zap.String("sessionID", session.ID)),
		session:  session,
		channels: 1,
	}

	select {
	case hub.register <- client:
	case <-hub.quit:
		cancel()
		conn.Close()
		return nil
	}

	client.sendJSON(&SessionMessage{
		BaseMessage: newBase(MessageTypeSession),
		SessionID:   session.ID,
		State:       session.CurrentState(),
	})

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.writePump()
	go client.readPump()

	return nil
}

// readPump pumps messages from the websocket connection to the hub.
func (c *Client) readPump() {
	defer func() {
		c.cancel()
		select {
		case c.hub.unregister <- c:
		case <-c.hub.quit:
		}
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
		case websocket.BinaryMessage:
			c.processBinaryFrame(message)
		default:
			c.logger.Warn("Received unknown message type", zap.Int("type", messageType))
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

// processMessage processes control messages from the browser
func (c *Client) processMessage(message []byte) {
	msg, err := c.hub.validator.ValidateMessage(message)
	if err != nil {
		c.logger.Warn("Invalid message", zap.Error(err))
		c.sendJSON(CreateErrorMessage(ErrorCodeInvalidMessage, "Invalid message", err.Error()))
		return
	}

	switch m := msg.(type) {
	case *RecordingStartMessage:
		c.handleRecordingStart(m)
	case *RecordingStopMessage:
		c.handleRecordingStop()
	case *PingMessage:
		c.sendJSON(CreatePongMessage(m.Data))
	}
}

// processBinaryFrame decodes one PCM frame and appends it to the recording.
// A frame that cannot be decoded is reported and skipped.
func (c *Client) processBinaryFrame(data []byte) {
	c.mutex.Lock()
	channels := c.channels
	c.mutex.Unlock()

	frame, err := entities.NewFrameFromPCM(data, c.session.SampleRate(), channels)
	if err == nil {
		err = c.session.AddFrame(frame)
	}

	switch {
	case err == nil:
		if n := c.session.FrameCount(); n%logEveryFrames == 0 {
			c.logger.Debug("Recording in progress",
				zap.Int("frames", n),
				zap.Duration("elapsed", c.session.RecordingDuration()))
			c.sendLog()
		}

	case errors.Is(err, entities.ErrNotRecording):
		c.logger.Debug("Dropping frame received outside of a recording", zap.Int("size", len(data)))

	default:
		c.logger.Error("Failed to convert audio frame", zap.Int("size", len(data)), zap.Error(err))
		c.session.AddLog("Error: " + err.Error())
		c.sendJSON(CreateErrorMessage(ErrorCodeFrameConversionFailed, "Failed to process audio frame", err.Error()))
		c.sendLog()
	}
}

// handleRecordingStart begins a new recording on the session
func (c *Client) handleRecordingStart(msg *RecordingStartMessage) {
	if err := c.session.Start(msg.SampleRate); err != nil {
		c.logger.Warn("Cannot start recording", zap.Error(err))
		c.sendJSON(CreateErrorMessage(ErrorCodeSessionBusy, "Still processing the previous recording", err.Error()))
		return
	}

	c.mutex.Lock()
	c.channels = msg.Channels
	c.mutex.Unlock()

	c.logger.Info("Recording started",
		zap.Int("sampleRate", c.session.SampleRate()),
		zap.Int("channels", msg.Channels))

	c.sendJSON(&RecordingStartedMessage{
		BaseMessage: newBase(MessageTypeRecordingStarted),
		SessionID:   c.session.ID,
		SampleRate:  c.session.SampleRate(),
	})
	c.sendLog()
}

// handleRecordingStop ends the recording and relays it off the read loop
func (c *Client) handleRecordingStop() {
	samples, dropped, err := c.session.Stop()
	switch {
	case errors.Is(err, entities.ErrNoAudio):
		c.logger.Info("Recording stopped without audio")
		c.sendJSON(CreateWarningMessage(usecase.MessageNoAudio))
		c.sendLog()
		return
	case err != nil:
		c.logger.Warn("Cannot stop recording", zap.Error(err))
		c.sendJSON(CreateErrorMessage(ErrorCodeNotRecording, "No recording in progress", err.Error()))
		return
	}

	c.logger.Info("Recording stopped",
		zap.Int("samples", len(samples)),
		zap.Int64("droppedSamples", dropped),
		zap.Int("frames", c.session.FrameCount()))

	c.sendJSON(&ProcessingMessage{
		BaseMessage: newBase(MessageTypeProcessing),
		SessionID:   c.session.ID,
		SampleCount: len(samples),
	})
	c.sendLog()

	go c.relayRecording(samples, c.session.SampleRate(), dropped)
}

// relayRecording uploads the recording and reports the outcome to the browser
func (c *Client) relayRecording(samples []int16, sampleRate int, dropped int64) {
	ctx, cancel := context.WithTimeout(c.ctx, c.hub.requestTimeout)
	defer cancel()

	result, err := c.hub.relay.Relay(ctx, c.session.ID, samples, sampleRate, dropped)
	if err != nil {
		message := usecase.UserMessage(err)
		c.session.Finish("")
		c.session.AddLog("Error: " + message)
		c.sendJSON(CreateErrorMessage(ErrorCodeTranslationFailed, message, err.Error()))
		c.sendLog()
		return
	}

	c.session.Finish(result.Translation)
	c.session.AddLog(fmt.Sprintf("Translation: %s", result.Translation))
	c.sendJSON(&TranslationMessage{
		BaseMessage: newBase(MessageTypeTranslation),
		SessionID:   c.session.ID,
		Text:        result.Translation,
		DurationMs:  result.Artifact.Duration().Milliseconds(),
	})
	c.sendLog()
}

func (c *Client) sendLog() {
	c.sendJSON(CreateLogMessage(c.session.Log()))
}

// sendJSON queues a text message. Messages for a closed or saturated client are dropped.
func (c *Client) sendJSON(v interface{}) {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal message", zap.Error(err))
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()
	if c.closed {
		return
	}

	select {
	case c.send <- WriteData{Type: websocket.TextMessage, Payload: payload}:
	default:
		c.logger.Warn("Send buffer full, dropping message")
	}
}

func (c *Client) closeSend() {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
