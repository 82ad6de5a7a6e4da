package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// MessageType discriminates frames on the wire
type MessageType string

const (
	MessageTypeSubscribe   MessageType = "subscribe"
	MessageTypeUnsubscribe MessageType = "unsubscribe"
	MessageTypeNewMessage  MessageType = "new_message"
	MessageTypeError       MessageType = "error"
)

// WSMessage is the frame envelope in both directions
type WSMessage struct {
	Type      MessageType `json:"type"`
	MailboxID uint        `json:"mailbox_id,omitempty"`
	Message   interface{} `json:"message,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// NewMessagePayload represents the payload for new message notifications.
// ThreadID and the spam verdict are included so clients can place the
// message in the right conversation without a follow-up fetch.
type NewMessagePayload struct {
	ID          uint    `json:"id"`
	ThreadID    string  `json:"thread_id,omitempty"`
	SenderEmail string  `json:"sender_email"`
	SenderName  string  `json:"sender_name,omitempty"`
	Subject     string  `json:"subject,omitempty"`
	IsSpam      bool    `json:"is_spam"`
	SpamScore   float64 `json:"spam_score"`
	ReceivedAt  string  `json:"received_at"`
}

// Hub tracks connected clients and their per-mailbox subscriptions, and
// fans broadcast frames out to subscribers. All state changes go through
// the Run loop's channels.
type Hub struct {
	clients       map[*Client]bool
	subscriptions map[uint]map[*Client]bool

	register           chan *Client
	unregister         chan *Client
	subscribe          chan *subscriptionRequest
	unsubscribeMailbox chan *subscriptionRequest
	broadcast          chan *broadcastMessage

	mu     sync.RWMutex
	logger *slog.Logger
}

type subscriptionRequest struct {
	client    *Client
	mailboxID uint
}

type broadcastMessage struct {
	mailboxID uint
	message   []byte
}

// NewHub creates a new Hub instance
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:            make(map[*Client]bool),
		subscriptions:      make(map[uint]map[*Client]bool),
		register:           make(chan *Client),
		unregister:         make(chan *Client),
		subscribe:          make(chan *subscriptionRequest),
		unsubscribeMailbox: make(chan *subscriptionRequest),
		broadcast:          make(chan *broadcastMessage, 256),
		logger:             logger,
	}
}

// Run processes hub events until the process exits. Call it from its own
// goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.dropClient(client)
		case req := <-h.subscribe:
			h.addSubscription(req)
		case req := <-h.unsubscribeMailbox:
			h.dropSubscription(req)
		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	if h.logger != nil {
		h.logger.Debug("client registered")
	}
}

// dropClient closes the client's send channel and clears every
// subscription it held
func (h *Hub) dropClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		for mailboxID, subscribers := range h.subscriptions {
			delete(subscribers, client)
			if len(subscribers) == 0 {
				delete(h.subscriptions, mailboxID)
			}
		}
	}
	h.mu.Unlock()

	if h.logger != nil {
		h.logger.Debug("client unregistered")
	}
}

func (h *Hub) addSubscription(req *subscriptionRequest) {
	h.mu.Lock()
	if h.subscriptions[req.mailboxID] == nil {
		h.subscriptions[req.mailboxID] = make(map[*Client]bool)
	}
	h.subscriptions[req.mailboxID][req.client] = true
	h.mu.Unlock()

	if h.logger != nil {
		h.logger.Debug("client subscribed to mailbox", slog.Uint64("mailbox_id", uint64(req.mailboxID)))
	}
}

func (h *Hub) dropSubscription(req *subscriptionRequest) {
	h.mu.Lock()
	if subscribers, ok := h.subscriptions[req.mailboxID]; ok {
		delete(subscribers, req.client)
		if len(subscribers) == 0 {
			delete(h.subscriptions, req.mailboxID)
		}
	}
	h.mu.Unlock()

	if h.logger != nil {
		h.logger.Debug("client unsubscribed from mailbox", slog.Uint64("mailbox_id", uint64(req.mailboxID)))
	}
}

// fanOut delivers a frame to every subscriber of the mailbox. A client
// whose buffer is full misses the frame rather than blocking the hub.
func (h *Hub) fanOut(msg *broadcastMessage) {
	h.mu.RLock()
	for client := range h.subscriptions[msg.mailboxID] {
		select {
		case client.send <- msg.message:
		default:
		}
	}
	h.mu.RUnlock()
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Subscribe subscribes a client to a mailbox
func (h *Hub) Subscribe(client *Client, mailboxID uint) {
	h.subscribe <- &subscriptionRequest{client: client, mailboxID: mailboxID}
}

// Unsubscribe unsubscribes a client from a mailbox
func (h *Hub) Unsubscribe(client *Client, mailboxID uint) {
	h.unsubscribeMailbox <- &subscriptionRequest{client: client, mailboxID: mailboxID}
}

// BroadcastNewMessage pushes a new-message notification to every client
// subscribed to the mailbox
func (h *Hub) BroadcastNewMessage(mailboxID uint, payload *NewMessagePayload) {
	data, err := json.Marshal(WSMessage{
		Type:      MessageTypeNewMessage,
		MailboxID: mailboxID,
		Message:   payload,
	})
	if err != nil {
		if h.logger != nil {
			h.logger.Error("failed to marshal broadcast message", slog.Any("error", err))
		}
		return
	}

	h.broadcast <- &broadcastMessage{mailboxID: mailboxID, message: data}
}
