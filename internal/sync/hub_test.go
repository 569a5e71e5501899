package sync

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastEvent(t *testing.T) {
	hub := NewHub()

	server, client := net.Pipe()
	defer client.Close()
	hub.Add(server)
	assert.Equal(t, 1, hub.Count())

	lines := make(chan string, 1)
	go func() {
		sc := bufio.NewScanner(client)
		if sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	hub.BroadcastEvent(ImportEvent{
		Type:  EventImportGame,
		RunID: "run-1",
		Name:  "Example",
		New:   true,
	})

	line, ok := <-lines
	require.True(t, ok)

	var ev ImportEvent
	require.NoError(t, json.Unmarshal([]byte(line), &ev))
	assert.Equal(t, EventImportGame, ev.Type)
	assert.Equal(t, "run-1", ev.RunID)
	assert.True(t, ev.New)
	assert.False(t, ev.At.IsZero())
}

func TestHubDropsDeadClient(t *testing.T) {
	hub := NewHub()

	server, client := net.Pipe()
	hub.Add(server)
	_ = client.Close()
	_ = server.Close()

	hub.BroadcastEvent(ImportEvent{Type: EventImportStarted, RunID: "run-2"})
	assert.Equal(t, 0, hub.Count())
}

func TestHubStats(t *testing.T) {
	hub := NewHub()
	stats := hub.Stats()
	assert.Equal(t, 0, stats.TCPClients)
	assert.Equal(t, 0, stats.WSClients)
}
