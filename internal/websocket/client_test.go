package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// expectErrorFrame pulls the next frame off the client's send channel and
// asserts it is an error message containing fragment
func expectErrorFrame(t *testing.T, client *Client, fragment string) {
	t.Helper()
	select {
	case data := <-client.send:
		var msg WSMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		assert.Equal(t, MessageTypeError, msg.Type)
		assert.Contains(t, msg.Error, fragment)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("expected an error frame")
	}
}

// waitForSubscription polls the hub until mailboxID has (or lacks) a
// subscriber entry for the client
func waitForSubscription(t *testing.T, hub *Hub, mailboxID uint, client *Client, want bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		hub.mu.RLock()
		subscribers := hub.subscriptions[mailboxID]
		_, subscribed := subscribers[client]
		hub.mu.RUnlock()
		if subscribed == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("subscription state for mailbox %d never became %v", mailboxID, want)
}

func TestNewClient(t *testing.T) {
	hub := NewHub(nil)

	client := NewClient(hub, nil, nil)

	require.NotNil(t, client)
	assert.Equal(t, hub, client.hub)
	assert.NotNil(t, client.send)
	assert.Equal(t, sendBufferSize, cap(client.send))
}

func TestClient_HandleMessage_Subscribe(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := NewClient(hub, nil, nil)
	hub.Register(client)

	data, err := json.Marshal(WSMessage{Type: MessageTypeSubscribe, MailboxID: 123})
	require.NoError(t, err)

	client.handleMessage(data)

	waitForSubscription(t, hub, 123, client, true)
}

func TestClient_HandleMessage_Unsubscribe(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	client := NewClient(hub, nil, nil)
	hub.Register(client)
	hub.Subscribe(client, 123)
	waitForSubscription(t, hub, 123, client, true)

	data, err := json.Marshal(WSMessage{Type: MessageTypeUnsubscribe, MailboxID: 123})
	require.NoError(t, err)

	client.handleMessage(data)

	waitForSubscription(t, hub, 123, client, false)
}

func TestClient_HandleMessage_BadFrames(t *testing.T) {
	tests := []struct {
		name      string
		frame     []byte
		wantError string
	}{
		{"malformed json", []byte("not json"), "invalid message format"},
		{"unknown type", []byte(`{"type":"dance"}`), "unknown message type"},
		{"subscribe without mailbox", []byte(`{"type":"subscribe"}`), "mailbox_id is required"},
		{"unsubscribe without mailbox", []byte(`{"type":"unsubscribe"}`), "mailbox_id is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(NewHub(nil), nil, nil)

			client.handleMessage(tt.frame)

			expectErrorFrame(t, client, tt.wantError)
		})
	}
}

func TestClient_SendError(t *testing.T) {
	client := NewClient(NewHub(nil), nil, nil)

	client.sendError("test error")

	expectErrorFrame(t, client, "test error")
}

func TestClient_SendError_DropsWhenBufferFull(t *testing.T) {
	client := &Client{send: make(chan []byte, 2)}

	// Third frame has nowhere to go and must not block
	for i := 0; i < 3; i++ {
		client.sendError("overflow")
	}

	assert.Len(t, client.send, 2)
}

func TestNewMessagePayload_CarriesClassification(t *testing.T) {
	payload := NewMessagePayload{
		ID:          1,
		ThreadID:    "thread-abc",
		SenderEmail: "test@example.com",
		Subject:     "Test Subject",
		IsSpam:      true,
		SpamScore:   0.88,
		ReceivedAt:  "2026-01-01T00:00:00Z",
	}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"thread_id":"thread-abc"`)
	assert.Contains(t, string(data), `"is_spam":true`)
	assert.Contains(t, string(data), `"spam_score":0.88`)
}

func TestMessageTypes(t *testing.T) {
	assert.Equal(t, MessageType("subscribe"), MessageTypeSubscribe)
	assert.Equal(t, MessageType("unsubscribe"), MessageTypeUnsubscribe)
	assert.Equal(t, MessageType("new_message"), MessageTypeNewMessage)
	assert.Equal(t, MessageType("error"), MessageTypeError)
}
