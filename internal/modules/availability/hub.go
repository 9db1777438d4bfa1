package availability

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"playerhire/internal/domain"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBuffer = 256
)

type subscriber struct {
	conn *websocket.Conn
	game string
	send chan []byte
}

func newSubscriber(conn *websocket.Conn, game string) *subscriber {
	return &subscriber{
		conn: conn,
		game: game,
		send: make(chan []byte, sendBuffer),
	}
}

func (s *subscriber) wants(ev domain.ListingEvent) bool {
	if s.game == "" || ev.Listing == nil {
		return true
	}
	return ev.Listing.GameName == s.game
}

// writePump is the only writer on the connection. It exits when send is
// closed or a write fails.
func (s *subscriber) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = s.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = s.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := s.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub fans listing events out to websocket subscribers. It satisfies the
// leasing event publisher contract and never blocks on a subscriber.
type Hub struct {
	subscribers map[*subscriber]struct{}
	mutex       sync.RWMutex
	log         *zap.SugaredLogger
}

func NewHub(log *zap.SugaredLogger) *Hub {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Hub{
		subscribers: make(map[*subscriber]struct{}),
		log:         log,
	}
}

func (h *Hub) register(s *subscriber) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.subscribers[s] = struct{}{}
}

func (h *Hub) unregister(s *subscriber) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if _, ok := h.subscribers[s]; ok {
		delete(h.subscribers, s)
		close(s.send)
	}
}

// Publish broadcasts ListingEvent payloads; other payloads are ignored.
// Subscribers whose buffer is full are dropped.
func (h *Hub) Publish(_ context.Context, _ string, data interface{}) error {
	ev, ok := data.(domain.ListingEvent)
	if !ok {
		return nil
	}

	msg, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	var slow []*subscriber
	h.mutex.RLock()
	for s := range h.subscribers {
		if !s.wants(ev) {
			continue
		}
		select {
		case s.send <- msg:
		default:
			slow = append(slow, s)
		}
	}
	h.mutex.RUnlock()

	for _, s := range slow {
		h.log.Debugw("dropping slow availability subscriber", "game", s.game)
		h.unregister(s)
	}
	return nil
}

func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for s := range h.subscribers {
		delete(h.subscribers, s)
		close(s.send)
	}
}
