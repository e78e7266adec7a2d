package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()

	client := &Client{Send: make(chan []byte, 4)}
	h.Register <- client

	h.BroadcastJSON(map[string]string{"symbol": "XYZ", "price": "101.5"})

	select {
	case msg := <-client.Send:
		var decoded map[string]string
		require.NoError(t, json.Unmarshal(msg, &decoded))
		assert.Equal(t, "XYZ", decoded["symbol"])
	case <-time.After(time.Second):
		t.Fatal("client never received the broadcast")
	}

	h.Unregister <- client

	// The hub closes Send on unregister.
	select {
	case _, open := <-client.Send:
		assert.False(t, open, "Send must be closed after unregister")
	case <-time.After(time.Second):
		t.Fatal("Send was not closed after unregister")
	}
}

func TestHubDropsClientWithFullBuffer(t *testing.T) {
	h := NewHub(zerolog.Nop())
	go h.Run()

	// Unbuffered Send with no reader: the first broadcast cannot be
	// delivered, so the hub drops the client.
	stuck := &Client{Send: make(chan []byte)}
	h.Register <- stuck

	h.BroadcastJSON(map[string]string{"symbol": "XYZ"})

	select {
	case _, open := <-stuck.Send:
		assert.False(t, open, "hub must close Send when dropping a client")
	case <-time.After(time.Second):
		t.Fatal("stuck client was not dropped")
	}
}

func TestBroadcastJSONNeverBlocks(t *testing.T) {
	h := NewHub(zerolog.Nop())
	// No Run goroutine: the broadcast buffer fills up and further messages
	// must be dropped, not block the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			h.BroadcastJSON(map[string]int{"i": i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("BroadcastJSON blocked on a saturated hub")
	}
}

func TestBroadcastJSONSkipsUnmarshalableValues(t *testing.T) {
	h := NewHub(zerolog.Nop())
	h.BroadcastJSON(make(chan int)) // not JSON-serializable
	assert.Empty(t, h.broadcast)
}
