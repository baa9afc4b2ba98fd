package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

func TestTickStreamBroadcast(t *testing.T) {
	stream := NewTickStream(logger.Nop())
	server := httptest.NewServer(http.HandlerFunc(stream.Handle))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	waitForClients(t, stream, 1)

	snap := contracts.Snapshot{
		ItemID:    7,
		Date:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		PriceUSD:  42.5,
		Volume24h: 120,
		Source:    contracts.SourceMock,
	}
	stream.Broadcast(snap)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var tick Tick
	if err := conn.ReadJSON(&tick); err != nil {
		t.Fatalf("read tick: %v", err)
	}

	if tick.ItemID != 7 || tick.PriceUSD != 42.5 || tick.Date != "2026-03-10" {
		t.Errorf("tick = %+v", tick)
	}
	if tick.Source != string(contracts.SourceMock) {
		t.Errorf("tick source = %q", tick.Source)
	}
}

func TestTickStreamDisconnectCleansUp(t *testing.T) {
	stream := NewTickStream(logger.Nop())
	server := httptest.NewServer(http.HandlerFunc(stream.Handle))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	waitForClients(t, stream, 1)
	conn.Close()
	waitForClients(t, stream, 0)

	// Broadcasting with no subscribers must not block or panic.
	stream.Broadcast(contracts.Snapshot{ItemID: 1, PriceUSD: 1, Source: contracts.SourceMock})
}

func waitForClients(t *testing.T, stream *TickStream, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if stream.Clients() == want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("clients = %d, want %d", stream.Clients(), want)
}
