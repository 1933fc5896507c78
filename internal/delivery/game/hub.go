package game

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quantum_gomoku/internal/domain/game"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 16
)

const (
	EventTurn   = "turn"
	EventWinner = "winner"
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Client is one websocket watching a game. Only its writer goroutine writes
// to Conn.
type Client struct {
	Conn   *websocket.Conn
	GameID string

	send chan Event
	done chan struct{}
	once sync.Once
	code int
}

func newClient(gameID string, conn *websocket.Conn) *Client {
	return &Client{
		Conn:   conn,
		GameID: gameID,
		send:   make(chan Event, sendBuffer),
		done:   make(chan struct{}),
		code:   websocket.CloseNormalClosure,
	}
}

// stop ends the writer; the first call decides the close code.
func (c *Client) stop(code int) {
	c.once.Do(func() {
		c.code = code
		close(c.done)
	})
}

// Done is closed once the client is stopped.
func (c *Client) Done() <-chan struct{} { return c.done }

// Hub fans game events out to the websocket clients watching each game.
// mu only guards the subscriber map; writes happen in each client's writer.
type Hub struct {
	log         *zap.SugaredLogger
	mu          sync.Mutex
	subscribers map[string]map[*Client]struct{}
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{
		log:         log,
		subscribers: make(map[string]map[*Client]struct{}),
	}
}

// Subscribe registers conn for gameID, queues the greeting ahead of any
// broadcast and starts the client's writer.
func (h *Hub) Subscribe(gameID string, conn *websocket.Conn, greeting Event) *Client {
	c := newClient(gameID, conn)
	c.send <- greeting

	h.mu.Lock()
	conns, ok := h.subscribers[gameID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.subscribers[gameID] = conns
	}
	conns[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	return c
}

func (h *Hub) Unsubscribe(c *Client) {
	h.mu.Lock()
	h.remove(c)
	h.mu.Unlock()
	c.stop(websocket.CloseNormalClosure)
}

func (h *Hub) remove(c *Client) {
	conns, ok := h.subscribers[c.GameID]
	if !ok {
		return
	}
	delete(conns, c)
	if len(conns) == 0 {
		delete(h.subscribers, c.GameID)
	}
}

func (h *Hub) Subscribers(gameID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[gameID])
}

func (h *Hub) NotifyTurn(gameID string, info game.TurnInfo) {
	h.broadcast(gameID, Event{Type: EventTurn, Payload: info})
}

func (h *Hub) NotifyWinner(gameID string, info game.WinnerInfo) {
	h.broadcast(gameID, Event{Type: EventWinner, Payload: info})
}

// NotifyClosed disconnects every client of a closed game.
func (h *Hub) NotifyClosed(gameID string) {
	h.mu.Lock()
	conns := h.subscribers[gameID]
	delete(h.subscribers, gameID)
	h.mu.Unlock()

	for c := range conns {
		c.stop(websocket.CloseGoingAway)
	}
}

// broadcast never blocks on a client: one whose queue is full is dropped.
func (h *Hub) broadcast(gameID string, event Event) {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.subscribers[gameID]))
	for c := range h.subscribers[gameID] {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		select {
		case c.send <- event:
		default:
			h.log.Warnf("dropping slow subscriber of game %s", gameID)
			h.mu.Lock()
			h.remove(c)
			h.mu.Unlock()
			c.stop(websocket.ClosePolicyViolation)
		}
	}
}

func (h *Hub) writePump(c *Client) {
	defer c.Conn.Close()
	for {
		select {
		case event := <-c.send:
			if err := writeEvent(c.Conn, event); err != nil {
				h.log.Errorf("write %s event to game %s subscriber: %v", event.Type, c.GameID, err)
				h.mu.Lock()
				h.remove(c)
				h.mu.Unlock()
				c.stop(websocket.CloseAbnormalClosure)
				return
			}
		case <-c.done:
			h.drain(c)
			msg := websocket.FormatCloseMessage(c.code, "")
			_ = c.Conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return
		}
	}
}

// drain writes what is still queued so a closing client sees the last events.
func (h *Hub) drain(c *Client) {
	for {
		select {
		case event := <-c.send:
			if err := writeEvent(c.Conn, event); err != nil {
				return
			}
		default:
			return
		}
	}
}

func writeEvent(conn *websocket.Conn, event Event) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(event)
}
