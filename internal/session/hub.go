// Package session serves one page controller per browser tab over a
// websocket. The hub owns the set of live clients; each client runs a read
// pump that feeds events to its controller and a write pump that delivers
// the resulting patches.
package session

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"github.com/conneroisu/ciclowiki/internal/browser"
	"github.com/conneroisu/ciclowiki/internal/logging"
)

const (
	// Time allowed to write a message, or get a pong back, from the peer.
	writeWait = 10 * time.Second

	// Send pings to peer with this period. A failed ping ends the session,
	// so idle tabs stay connected as long as they answer.
	pingPeriod = 30 * time.Second

	// Maximum message size allowed from peer.
	maxMessageSize = 1024

	sendQueueSize = 64
)

// Tracker is notified when sessions open and close.
type Tracker interface {
	SessionOpened()
	SessionClosed()
}

// Config configures a Hub.
type Config struct {
	// Host and Port are the server's listen address, always accepted as
	// origins together with their localhost equivalents.
	Host string
	Port int
	// AllowedOrigins lists further origins, as URLs or bare host:port.
	AllowedOrigins []string
	// Controller is the template for every session's controller.
	Controller browser.Options
	Tracker    Tracker
	Logger     logging.Logger
}

// Hub tracks connected sessions.
type Hub struct {
	content browser.Content
	config  Config
	logger  logging.Logger
	allowed map[string]bool

	clients    map[string]*Client
	closed     bool
	mutex      sync.RWMutex
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	running    sync.WaitGroup
}

// NewHub creates a hub whose sessions render content.
func NewHub(content browser.Content, config Config) *Hub {
	if config.Logger == nil {
		config.Logger = logging.Discard()
	}
	h := &Hub{
		content:    content,
		config:     config,
		logger:     config.Logger.WithComponent("session"),
		allowed:    make(map[string]bool),
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}

	for _, host := range []string{config.Host, "localhost", "127.0.0.1"} {
		if host != "" {
			h.allowed[fmt.Sprintf("%s:%d", host, config.Port)] = true
		}
	}
	for _, origin := range config.AllowedOrigins {
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			h.allowed[u.Host] = true
			continue
		}
		h.allowed[origin] = true
	}
	return h
}

// Run processes registrations until ctx is cancelled, then closes every
// remaining session.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			h.closed = true
			clients := h.clients
			h.clients = make(map[string]*Client)
			h.mutex.Unlock()

			for _, client := range clients {
				client.shutdown()
				if h.config.Tracker != nil {
					h.config.Tracker.SessionClosed()
				}
			}
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client.id] = client
			count := len(h.clients)
			h.mutex.Unlock()

			if h.config.Tracker != nil {
				h.config.Tracker.SessionOpened()
			}
			h.logger.Debug(ctx, "Session connected", "id", client.id, "total", count)

		case client := <-h.unregister:
			h.mutex.Lock()
			_, ok := h.clients[client.id]
			if ok {
				delete(h.clients, client.id)
			}
			count := len(h.clients)
			h.mutex.Unlock()

			if ok {
				client.shutdown()
				if h.config.Tracker != nil {
					h.config.Tracker.SessionClosed()
				}
				h.logger.Debug(ctx, "Session disconnected", "id", client.id, "total", count)
			}
		}
	}
}

// Wait blocks until Run has returned and every client goroutine exited.
func (h *Hub) Wait() {
	<-h.done
	h.running.Wait()
}

// Count returns the number of connected sessions.
func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// RefreshAll re-renders the current page of every session.
func (h *Hub) RefreshAll(ctx context.Context) {
	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for _, client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.RUnlock()

	for _, client := range clients {
		client.controller.Refresh(ctx)
	}
}

// ServeHTTP upgrades the request to a websocket session.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !h.checkOrigin(r) {
		http.Error(w, "Origin not allowed", http.StatusForbidden)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		// The origin was checked above against a wider list than the
		// library's same-host rule.
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.logger.Warn(r.Context(), err, "WebSocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	client := newClient(h, conn)

	// Register before the pumps start so an early disconnect cannot reach
	// the hub ahead of its registration.
	select {
	case h.register <- client:
	case <-h.done:
		client.shutdown()
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	h.mutex.Lock()
	if h.closed {
		h.mutex.Unlock()
		conn.CloseNow()
		return
	}
	h.running.Add(2)
	h.mutex.Unlock()

	go client.writePump()
	go client.readPump()
}

// checkOrigin validates the request origin for security
func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Reject connections without origin header for security
		return false
	}

	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if originURL.Scheme != "http" && originURL.Scheme != "https" {
		return false
	}

	if originURL.Host == r.Host {
		return true
	}
	return h.allowed[originURL.Host]
}

func newID() string {
	return uuid.NewString()
}
