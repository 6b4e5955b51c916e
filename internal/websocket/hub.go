package chatws

import (
	"context"
	"encoding/json"
	"log"
	"strconv"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/sabirama/tutorial-hub-sub000/internal/models"
	"github.com/sabirama/tutorial-hub-sub000/internal/services"
)

// Hub fans chat messages out to the connected sockets of both conversation
// participants. All client bookkeeping happens on the Run goroutine, so the
// maps need no locking.
type Hub struct {
	clients    map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	outbound   chan *Event
}

type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	accountID int64
	role      string
	send      chan []byte
}

type sender interface {
	SendMessage(ctx context.Context, actorID int64, role string, conversationID int64, content string) (*services.ChatDelivery, error)
}

// Event is the wire format for everything the hub pushes to a socket.
type Event struct {
	Type           string `json:"type"`
	MessageID      int64  `json:"message_id,omitempty"`
	ConversationID int64  `json:"conversation_id,omitempty"`
	SenderID       int64  `json:"sender_id,omitempty"`
	Content        string `json:"content"`
	Timestamp      string `json:"timestamp"`

	recipientID int64
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan *Event, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, accountID int64, role string) *Client {
	return &Client{
		hub:       hub,
		conn:      conn,
		accountID: accountID,
		role:      role,
		send:      make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.accountID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.accountID] = set
			}
			set[client] = struct{}{}
		case client := <-h.unregister:
			set, ok := h.clients[client.accountID]
			if !ok {
				continue
			}
			if _, exists := set[client]; exists {
				delete(set, client)
				close(client.send)
			}
			if len(set) == 0 {
				delete(h.clients, client.accountID)
			}
		case event := <-h.outbound:
			h.push(event)
		}
	}
}

func (h *Hub) Register(client *Client)   { h.register <- client }
func (h *Hub) Unregister(client *Client) { h.unregister <- client }

// DeliverMessage lets the REST send path reach sockets too, so a recipient
// with an open connection sees messages posted over HTTP without polling.
func (h *Hub) DeliverMessage(recipientID, conversationID int64, message *models.ChatMessage) {
	if message == nil {
		return
	}
	h.outbound <- &Event{
		Type:           "message",
		MessageID:      message.ID,
		ConversationID: conversationID,
		SenderID:       message.SenderID,
		Content:        message.Content,
		Timestamp:      services.FormatChatTimestamp(message.CreatedAt),
		recipientID:    recipientID,
	}
}

func (h *Hub) push(event *Event) {
	encoded, err := json.Marshal(event)
	if err != nil {
		log.Printf("chat hub encode event: %v", err)
		return
	}

	h.sendToAccount(event.SenderID, encoded)
	if event.recipientID != 0 && event.recipientID != event.SenderID {
		h.sendToAccount(event.recipientID, encoded)
	}
}

func (h *Hub) sendToAccount(accountID int64, payload []byte) {
	set, ok := h.clients[accountID]
	if !ok {
		return
	}

	for client := range set {
		select {
		case client.send <- payload:
		default:
			delete(set, client)
			close(client.send)
		}
	}
	if len(set) == 0 {
		delete(h.clients, accountID)
	}
}

// ReadPump consumes frames from the socket until it closes. Each inbound
// "message" frame goes through the chat service, so the same participant and
// length checks apply as on the REST path.
func (c *Client) ReadPump(service sender) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming struct {
			Type           string          `json:"type"`
			ConversationID json.RawMessage `json:"conversation_id"`
			Content        string          `json:"content"`
		}
		if err := json.Unmarshal(payload, &incoming); err != nil {
			c.writeError("invalid message payload")
			continue
		}
		if incoming.Type != "message" {
			c.writeError("unsupported message type")
			continue
		}

		conversationID, ok := parseID(incoming.ConversationID)
		if !ok {
			c.writeError("invalid conversation id")
			continue
		}

		delivery, err := service.SendMessage(context.Background(), c.accountID, c.role, conversationID, incoming.Content)
		if err != nil {
			c.writeError("failed to send message")
			continue
		}

		c.hub.outbound <- &Event{
			Type:           "message",
			MessageID:      delivery.Message.ID,
			ConversationID: delivery.Message.ConversationID,
			SenderID:       delivery.Message.SenderID,
			Content:        delivery.Message.Content,
			Timestamp:      services.FormatChatTimestamp(delivery.Message.CreatedAt),
			recipientID:    delivery.RecipientID,
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (c *Client) writeError(message string) {
	payload, err := json.Marshal(Event{Type: "error", Content: message})
	if err != nil {
		return
	}
	select {
	case c.send <- payload:
	default:
		c.hub.Unregister(c)
	}
}

// parseID accepts the conversation id either as a JSON number or as a string,
// since browser clients tend to send whichever is handy.
func parseID(raw json.RawMessage) (int64, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var numeric int64
	if err := json.Unmarshal(raw, &numeric); err == nil {
		return numeric, numeric > 0
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, false
	}
	value, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return 0, false
	}
	return value, value > 0
}
