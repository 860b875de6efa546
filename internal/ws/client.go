package ws

import (
	"errors"
	"net/http"
	"time"

	"human-ai-chat/backend/internal/models"
	"human-ai-chat/backend/internal/service"

	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	HandshakeTimeout: 10 * time.Second,
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
}

// Client is one connected channel peer. The identity established at upgrade
// time decides whether submit-reply is allowed.
type Client struct {
	ID     string
	UserID int64
	Role   string

	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// submitMessageContent is the inbound payload creating a new message.
type submitMessageContent struct {
	CharID int64  `json:"charId"`
	Text   string `json:"text"`
}

// submitReplyContent is the inbound payload attaching a privileged reply.
type submitReplyContent struct {
	ID    int64   `json:"id"`
	Text  string  `json:"text"`
	Audio *string `json:"audio"`
}

// ServeWS upgrades an authenticated request to a channel connection. The
// session middleware must have resolved the user into the gin context.
func ServeWS(hub *Hub, c *gin.Context) {
	userValue, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}
	user := userValue.(models.User)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		hub.log.LogError(err, "websocket upgrade failed")
		return
	}

	client := &Client{
		ID:     uuid.New().String(),
		UserID: user.ID,
		Role:   user.Role,
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

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
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("channel read error", "client", c.ID, "error", err.Error())
			}
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			c.hub.log.Warn("unreadable channel frame", "client", c.ID, "error", err.Error())
			continue
		}

		c.handleMessage(msg)
	}
}

func (c *Client) handleMessage(msg Message) {
	switch msg.Type {
	case "submit-message":
		c.handleSubmitMessage(msg.Content)
	case "submit-reply":
		c.handleSubmitReply(msg.Content)
	case "ping":
		c.sendMessage("pong", nil)
	default:
		c.hub.log.Warn("unknown channel event", "client", c.ID, "type", msg.Type)
	}
}

func (c *Client) handleSubmitMessage(content json.RawMessage) {
	var payload submitMessageContent
	if err := json.Unmarshal(content, &payload); err != nil {
		c.sendError("malformed submit-message payload")
		return
	}

	if _, err := c.hub.chatService.PostMessage(payload.CharID, payload.Text); err != nil {
		c.sendError(err.Error())
	}
}

// handleSubmitReply enforces the privileged role on the channel surface,
// matching the HTTP reply endpoint. An unknown message identifier is
// logged and dropped without an error frame.
func (c *Client) handleSubmitReply(content json.RawMessage) {
	if c.Role != models.RoleUltimate {
		c.sendError("only the ultimate user may reply")
		return
	}

	var payload submitReplyContent
	if err := json.Unmarshal(content, &payload); err != nil {
		c.sendError("malformed submit-reply payload")
		return
	}

	if _, err := c.hub.chatService.AttachReply(payload.ID, payload.Text, payload.Audio); err != nil {
		if errors.Is(err, service.ErrMessageNotFound) {
			c.hub.log.Warn("reply to unknown message dropped", "client", c.ID, "message_id", payload.ID)
			return
		}
		c.sendError(err.Error())
	}
}

func (c *Client) sendMessage(messageType string, content any) {
	var raw json.RawMessage
	if content != nil {
		data, err := json.Marshal(content)
		if err != nil {
			c.hub.log.LogError(err, "marshal channel frame", "type", messageType)
			return
		}
		raw = data
	}

	frame, err := json.Marshal(Message{Type: messageType, Content: raw})
	if err != nil {
		c.hub.log.LogError(err, "marshal channel envelope", "type", messageType)
		return
	}

	select {
	case c.send <- frame:
	default:
	}
}

func (c *Client) sendError(text string) {
	c.sendMessage("error", gin.H{"message": text})
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
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

			// Drain anything already queued as separate frames.
			n := len(c.send)
			for i := 0; i < n; i++ {
				if err := c.conn.WriteMessage(websocket.TextMessage, <-c.send); err != nil {
					return
				}
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
