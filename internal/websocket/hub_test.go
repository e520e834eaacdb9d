package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(zap.NewNop())
	go h.Run()
	t.Cleanup(h.Stop)
	return h
}

// nextMessage reads the next queued frame for a client without a connection.
func nextMessage(t *testing.T, c *Client) *Message {
	t.Helper()
	select {
	case data, ok := <-c.send:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return &msg
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for message")
	}
	return nil
}

func TestHub_RegisterSendsConnected(t *testing.T) {
	h := startHub(t)
	userID := uuid.New()
	c := NewClient(h, nil, userID)

	h.Register(c)

	msg := nextMessage(t, c)
	assert.Equal(t, MessageTypeConnected, msg.Type)

	var payload ConnectedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, userID.String(), payload.UserID)
	assert.Equal(t, 1, h.ConnectedClients(userID))
}

func TestHub_NotifyOnlyReachesOwner(t *testing.T) {
	h := startHub(t)
	owner, other := uuid.New(), uuid.New()

	first := NewClient(h, nil, owner)
	second := NewClient(h, nil, owner)
	stranger := NewClient(h, nil, other)
	for _, c := range []*Client{first, second, stranger} {
		h.Register(c)
		nextMessage(t, c) // CONNECTED
	}

	noteID := uuid.New()
	h.NotifyNotesChanged(owner, "updated", []uuid.UUID{noteID})

	for _, c := range []*Client{first, second} {
		msg := nextMessage(t, c)
		assert.Equal(t, MessageTypeNotesChanged, msg.Type)

		var payload NotesChangedPayload
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "updated", payload.Reason)
		assert.Equal(t, []string{noteID.String()}, payload.NoteIDs)
	}

	select {
	case data := <-stranger.send:
		t.Fatalf("unexpected message for other user: %s", data)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesClient(t *testing.T) {
	h := startHub(t)
	userID := uuid.New()
	c := NewClient(h, nil, userID)
	h.Register(c)
	nextMessage(t, c)

	h.Unregister(c)

	require.Eventually(t, func() bool { return h.ConnectedClients(userID) == 0 }, time.Second, 10*time.Millisecond)
	_, ok := <-c.send
	assert.False(t, ok, "send channel should be closed")
	assert.False(t, c.Send(&Message{Type: MessageTypePong}))
}

func TestHub_DropsSlowClient(t *testing.T) {
	h := startHub(t)
	userID := uuid.New()
	c := NewClient(h, nil, userID)
	h.Register(c)

	// CONNECTED is already queued; fill the rest of the buffer.
	for i := 1; i < sendBufferSize; i++ {
		require.True(t, c.Send(&Message{Type: MessageTypePong}))
	}

	h.NotifyNotesChanged(userID, "created", []uuid.UUID{uuid.New()})

	require.Eventually(t, func() bool { return h.ConnectedClients(userID) == 0 }, time.Second, 10*time.Millisecond)
}

func TestHub_StopClosesClientsAndIsIdempotent(t *testing.T) {
	h := NewHub(zap.NewNop())
	go h.Run()

	c := NewClient(h, nil, uuid.New())
	h.Register(c)
	nextMessage(t, c)

	h.Stop()
	h.Stop()

	_, ok := <-c.send
	assert.False(t, ok)

	// Calls after shutdown must not block.
	h.NotifyNotesChanged(uuid.New(), "deleted", nil)
	late := NewClient(h, nil, uuid.New())
	h.Register(late)
	_, ok = <-late.send
	assert.False(t, ok)
}

func TestHub_StopWithoutRun(t *testing.T) {
	h := NewHub(zap.NewNop())

	stopped := make(chan struct{})
	go func() {
		h.Stop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on a hub that never ran")
	}

	// Run after Stop returns without serving.
	h.Run()

	c := NewClient(h, nil, uuid.New())
	h.Register(c)
	_, ok := <-c.send
	assert.False(t, ok)
}
