package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/skinfolio/skinfolio/internal/contracts"
	"github.com/skinfolio/skinfolio/pkg/logger"
)

const (
	streamWriteTimeout = 5 * time.Second
	streamPingInterval = 30 * time.Second
)

// Tick is one snapshot write pushed to stream subscribers.
type Tick struct {
	ItemID    int64   `json:"item_id"`
	Date      string  `json:"date"`
	PriceUSD  float64 `json:"price_usd"`
	Volume24h int64   `json:"volume_24h"`
	Source    string  `json:"source"`
}

// TickStream fans snapshot writes out to connected websocket clients. Slow
// clients are dropped rather than allowed to stall the broadcast.
type TickStream struct {
	logger   *logger.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*websocket.Conn]chan Tick
}

// NewTickStream creates the stream hub.
func NewTickStream(log *logger.Logger) *TickStream {
	return &TickStream{
		logger: log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Read-only public feed, no cross-origin state to protect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*websocket.Conn]chan Tick),
	}
}

// Broadcast queues a snapshot for every connected client. Satisfies
// ingest.Notifier.
func (s *TickStream) Broadcast(snap contracts.Snapshot) {
	tick := Tick{
		ItemID:    snap.ItemID,
		Date:      snap.Date.Format("2006-01-02"),
		PriceUSD:  snap.PriceUSD,
		Volume24h: snap.Volume24h,
		Source:    string(snap.Source),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, ch := range s.clients {
		select {
		case ch <- tick:
		default:
			s.logger.Warn("dropping slow tick stream client")
			delete(s.clients, conn)
			close(ch)
		}
	}
}

// Handle upgrades the request and serves the tick feed until the client
// disconnects.
// GET /ws/ticks
func (s *TickStream) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.WithError(err).Warn("websocket upgrade failed")
		return
	}

	ch := make(chan Tick, 64)
	s.mu.Lock()
	s.clients[conn] = ch
	s.mu.Unlock()

	go s.writeLoop(conn, ch)
	s.readLoop(conn)
}

// readLoop discards inbound frames; its only job is to notice the close.
func (s *TickStream) readLoop(conn *websocket.Conn) {
	defer s.drop(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *TickStream) writeLoop(conn *websocket.Conn, ch chan Tick) {
	pinger := time.NewTicker(streamPingInterval)
	defer pinger.Stop()
	defer conn.Close()

	for {
		select {
		case tick, ok := <-ch:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteJSON(tick); err != nil {
				s.drop(conn)
				return
			}
		case <-pinger.C:
			conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.drop(conn)
				return
			}
		}
	}
}

func (s *TickStream) drop(conn *websocket.Conn) {
	s.mu.Lock()
	if ch, ok := s.clients[conn]; ok {
		delete(s.clients, conn)
		close(ch)
	}
	s.mu.Unlock()
	conn.Close()
}

// Clients reports the current subscriber count.
func (s *TickStream) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}
