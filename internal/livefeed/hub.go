// Package livefeed streams engine snapshots to WebSocket spectators.
package livefeed

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verte-zerg/typeroo/internal/engine"
	"github.com/verte-zerg/typeroo/internal/model"
)

// Path is where the feed is served.
const Path = "/live"

const (
	sendBuffer   = 16
	writeTimeout = 5 * time.Second
)

// Message types.
const (
	TypeSnapshot = "snapshot"
	TypeResult   = "result"
)

// Message is the envelope written to every spectator.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans engine output out to connected clients. It implements
// engine.Observer and never blocks the caller: a client whose buffer is full
// is disconnected.
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	last    []byte
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[*client]struct{})}
}

var _ engine.Observer = (*Hub)(nil)

// OnSnapshot broadcasts a live snapshot.
func (h *Hub) OnSnapshot(s engine.Snapshot) {
	h.broadcast(TypeSnapshot, s)
}

// OnFinish broadcasts the final result.
func (h *Hub) OnFinish(res model.Result) {
	h.broadcast(TypeResult, res)
}

// Clients returns the number of connected spectators.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) broadcast(kind string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	frame, err := json.Marshal(Message{Type: kind, Data: data})
	if err != nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if kind == TypeSnapshot {
		h.last = frame
	}
	for c := range h.clients {
		select {
		case c.send <- frame:
		default:
			h.dropLocked(c)
		}
	}
}

func (h *Hub) dropLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropLocked(c)
}

// ServeHTTP upgrades the request and registers the connection. New clients
// receive the latest snapshot first.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	if h.last != nil {
		c.send <- h.last
	}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// readPump discards client frames and notices disconnects.
func (h *Hub) readPump(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer func() {
		if cerr := c.conn.Close(); cerr != nil {
			// Best-effort close.
			_ = cerr
		}
	}()
	for frame := range c.send {
		if err := c.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
			h.remove(c)
			return
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			h.remove(c)
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.dropLocked(c)
	}
}

// Server serves a Hub on its own listener.
type Server struct {
	hub *Hub
	srv *http.Server
	ln  net.Listener
}

// Listen binds addr and starts serving hub at Path in the background.
func Listen(addr string, hub *Hub) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	mux := http.NewServeMux()
	mux.Handle(Path, hub)
	s := &Server{
		hub: hub,
		ln:  ln,
		srv: &http.Server{Handler: mux, ReadHeaderTimeout: writeTimeout},
	}
	go func() {
		// Serve returns ErrServerClosed after Shutdown.
		_ = s.srv.Serve(ln)
	}()
	return s, nil
}

// Addr returns the bound address.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Shutdown stops accepting connections and disconnects spectators.
func (s *Server) Shutdown(ctx context.Context) error {
	s.hub.Close()
	return s.srv.Shutdown(ctx)
}
