package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/landlord/landlord-server/internal/game"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

const (
	sendBufferSize = 256
	maxMessageSize = 64 * 1024
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
)

// Message types exchanged with WebSocket clients.
const (
	MessageAction       = "action"
	MessageGetState     = "get_state"
	MessagePing         = "ping"
	MessageGameState    = "game_state"
	MessageActionResult = "action_result"
	MessageEvent        = "event"
	MessagePong         = "pong"
	MessageError        = "error"
)

// WSMessage is the envelope for every frame in both directions.
type WSMessage struct {
	Type     string       `json:"type"`
	GameID   string       `json:"game_id,omitempty"`
	PlayerID string       `json:"player_id,omitempty"`
	Action   *game.Action `json:"action,omitempty"`
	Data     any          `json:"data,omitempty"`
}

// Client is one connection bound to a game seat for its lifetime.
type Client struct {
	conn     *websocket.Conn
	send     chan []byte
	playerID string
	gameID   string
}

type gameMessage struct {
	gameID string
	data   []byte
}

type clientMessage struct {
	client *Client
	data   []byte
}

// Hub fans game notifications out to the connections watching each game and
// feeds client actions into the manager.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan gameMessage
	direct     chan clientMessage
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	manager *game.Manager
	auth    *TokenIssuer
	logger  *zap.Logger
}

// NewHub creates a hub. Call Run before serving connections.
func NewHub(manager *game.Manager, auth *TokenIssuer, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan gameMessage, sendBufferSize),
		direct:     make(chan clientMessage, sendBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		manager:    manager,
		auth:       auth,
		logger:     logger,
	}
}

// Run owns the client set until ctx is done, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("client registered",
				zap.String("game_id", client.gameID),
				zap.String("player_id", client.playerID),
			)

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				if !h.seatWatched(client.gameID, client.playerID) {
					go h.setConnected(client.gameID, client.playerID, false)
				}
				h.logger.Debug("client unregistered",
					zap.String("game_id", client.gameID),
					zap.String("player_id", client.playerID),
				)
			}

		case message := <-h.direct:
			if h.clients[message.client] {
				select {
				case message.client.send <- message.data:
				default:
				}
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				if client.gameID != message.gameID {
					continue
				}
				select {
				case client.send <- message.data:
				default:
					close(client.send)
					delete(h.clients, client)
				}
			}
		}
	}
}

// seatWatched reports whether another connection still holds the seat.
// Only called from Run.
func (h *Hub) seatWatched(gameID, playerID string) bool {
	for client := range h.clients {
		if client.gameID == gameID && client.playerID == playerID {
			return true
		}
	}
	return false
}

func (h *Hub) setConnected(gameID, playerID string, connected bool) {
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	if _, err := h.manager.SetConnected(ctx, gameID, playerID, connected); err != nil {
		h.logger.Warn("failed to update connection state",
			zap.String("game_id", gameID),
			zap.String("player_id", playerID),
			zap.Error(err),
		)
	}
}

// Notify is a game.NotificationHandler. Full views go out as game_state,
// everything else as event.
func (h *Hub) Notify(n game.GameNotification) {
	msg := WSMessage{Type: MessageEvent, GameID: n.GameID, PlayerID: n.PlayerID}
	if n.Type == game.NotificationGameState {
		msg.Type = MessageGameState
		msg.Data = n.Data["view"]
	} else {
		msg.Data = map[string]any{"event": n.Type, "timestamp": n.Timestamp, "data": n.Data}
	}
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to encode notification", zap.String("game_id", n.GameID), zap.Error(err))
		return
	}
	select {
	case h.broadcast <- gameMessage{gameID: n.GameID, data: data}:
	case <-h.done:
	}
}

func (h *Hub) handleMessage(ctx context.Context, client *Client, msg WSMessage) {
	switch msg.Type {
	case MessageAction:
		if msg.Action == nil {
			h.reply(client, MessageError, map[string]string{"message": "action is required"})
			return
		}
		action := *msg.Action
		action.PlayerID = client.playerID
		res, view, err := h.manager.Execute(ctx, client.gameID, action)
		if err != nil {
			h.logger.Warn("websocket action failed",
				zap.String("game_id", client.gameID),
				zap.String("player_id", client.playerID),
				zap.String("action", string(action.Type)),
				zap.Error(err),
			)
			h.reply(client, MessageError, map[string]string{"message": err.Error()})
			return
		}
		h.reply(client, MessageActionResult, actionResponse{Result: res, View: view})

	case MessageGetState:
		view, err := h.manager.View(ctx, client.gameID)
		if err != nil {
			h.reply(client, MessageError, map[string]string{"message": err.Error()})
			return
		}
		h.reply(client, MessageGameState, view)

	case MessagePing:
		h.reply(client, MessagePong, nil)

	default:
		h.reply(client, MessageError, map[string]string{"message": "unknown message type " + msg.Type})
	}
}

// reply queues a message for one client. Messages are dropped when the
// client is gone or not keeping up.
func (h *Hub) reply(c *Client, msgType string, data any) {
	payload, err := json.Marshal(WSMessage{Type: msgType, GameID: c.gameID, PlayerID: c.playerID, Data: data})
	if err != nil {
		h.logger.Error("failed to encode reply", zap.String("game_id", c.gameID), zap.Error(err))
		return
	}
	select {
	case h.direct <- clientMessage{client: c, data: payload}:
	case <-h.done:
	}
}

func (c *Client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			h.reply(c, MessageError, map[string]string{"message": "invalid message"})
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), writeWait)
		h.handleMessage(ctx, c, msg)
		cancel()
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWS upgrades /ws?game_id=..&token=.. (or &player_id=.. without auth)
// and binds the connection to that seat.
func (h *Hub) ServeWS(upgrader *websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	gameID := query.Get("game_id")
	if gameID == "" {
		http.Error(w, "game_id is required", http.StatusBadRequest)
		return
	}
	token := query.Get("token")
	if token == "" {
		token = bearerToken(r.Header.Get("Authorization"))
	}
	playerID, err := h.auth.Resolve(token, gameID, query.Get("player_id"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}
	// Spectators are not seated, so only a missing game is fatal here.
	if _, err := h.manager.SetConnected(r.Context(), gameID, playerID, true); err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, game.ErrGameNotFound) {
			code = http.StatusNotFound
		}
		http.Error(w, err.Error(), code)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		playerID: playerID,
		gameID:   gameID,
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h)

	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	h.handleMessage(ctx, client, WSMessage{Type: MessageGetState})
}

// NewWebSocketHandler routes path to the hub behind CORS. An origin list of
// "*" accepts any origin.
func NewWebSocketHandler(h *Hub, path string, allowedOrigins []string, readBuffer, writeBuffer int) http.Handler {
	upgrader := &websocket.Upgrader{
		ReadBufferSize:  readBuffer,
		WriteBufferSize: writeBuffer,
		CheckOrigin:     originChecker(allowedOrigins),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		h.ServeWS(upgrader, w, r)
	})
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(mux)
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range allowed {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}
