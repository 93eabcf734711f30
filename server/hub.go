package main

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/vmihailenco/msgpack/v5"
)

const maxConnsPerIP = 5

// Hub owns the single process-wide arena and fans its broadcasts out to
// every connected socket (SPEC_FULL §5, §9 "global mutable state passed
// explicitly"). There is no SessionManager: one process holds one Game.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client

	game *Game
	db   *DB

	// Connection limiting (mutex-protected, accessed from HTTP handlers).
	connMu        sync.Mutex
	ipConns       map[string]int
	totalConns    int
	maxTotalConns int
}

// NewHub creates a Hub wired to the given arena and terrain map store.
func NewHub(game *Game, db *DB) *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		register:      make(chan *Client, 64),
		unregister:    make(chan *Client, 64),
		game:          game,
		db:            db,
		ipConns:       make(map[string]int),
		maxTotalConns: DefaultServerConfig().MaxTotalConns,
	}
}

// SetMaxTotalConns overrides the process-wide connection cap (defaults to
// ServerConfig.MaxTotalConns, itself overridable via TANKSERVER_MAX_CONNS).
func (h *Hub) SetMaxTotalConns(n int) {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	h.maxTotalConns = n
}

func (h *Hub) CanAccept(ip string) bool {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	if h.totalConns >= h.maxTotalConns {
		return false
	}
	if h.ipConns[ip] >= maxConnsPerIP {
		return false
	}
	return true
}

func (h *Hub) TrackConnect(ip string) {
	h.connMu.Lock()
	h.ipConns[ip]++
	h.totalConns++
	n := h.totalConns
	h.connMu.Unlock()
	UpdateWSConnections(n)
}

func (h *Hub) TrackDisconnect(ip string) {
	h.connMu.Lock()
	h.ipConns[ip]--
	if h.ipConns[ip] <= 0 {
		delete(h.ipConns, ip)
	}
	h.totalConns--
	n := h.totalConns
	h.connMu.Unlock()
	UpdateWSConnections(n)
}

// Run processes register/unregister events until ctx is canceled.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			if client.playerID != "" {
				h.game.RemovePlayer(client.playerID)
			}
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TotalConns returns the tracked connection count.
func (h *Hub) TotalConns() int {
	h.connMu.Lock()
	defer h.connMu.Unlock()
	return h.totalConns
}

// --- Broadcaster implementation (Game -> Hub -> sockets) ----------------

// encodeFor picks msgpack or JSON per the client's negotiated sub-protocol
// (SPEC_FULL §11 domain stack: msgpack binary path) and reports whether
// the bytes are binary.
func encodeFor(c *Client, env Envelope) ([]byte, bool) {
	if c.binary {
		b, err := msgpack.Marshal(env)
		if err != nil {
			log.Error("msgpack encode failed", err, map[string]interface{}{"event": env.Type})
			return nil, false
		}
		return b, true
	}
	b, err := json.Marshal(env)
	if err != nil {
		log.Error("json encode failed", err, map[string]interface{}{"event": env.Type})
		return nil, false
	}
	return b, false
}

// Broadcast sends env to every registered socket, encoding per-socket
// since binary and text clients can be mixed on the same arena.
func (h *Hub) Broadcast(env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		data, binary := encodeFor(c, env)
		if data == nil {
			continue
		}
		if binary {
			c.SendBinary(data)
		} else {
			c.SendRaw(data)
		}
	}
}

// SendTo delivers env only to the socket currently bound to playerID, if
// any (SPEC_FULL §4.8 per-socket `playerState`/`damageFeedback` pushes).
func (h *Hub) SendTo(playerID string, env Envelope) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if c.playerID != playerID {
			continue
		}
		data, binary := encodeFor(c, env)
		if data == nil {
			continue
		}
		if binary {
			c.SendBinary(data)
		} else {
			c.SendRaw(data)
		}
	}
}
