package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/conneroisu/ciclowiki/internal/browser"
	"github.com/conneroisu/ciclowiki/internal/logging"
)

// Inbound message types sent by the browser runtime.
const (
	MessageInit             = "init"
	MessageNavigate         = "navigate"
	MessageResize           = "resize"
	MessageToggleSidebar    = "toggle_sidebar"
	MessageToggleMobileMenu = "toggle_mobile_menu"
	MessageDismissOverlay   = "dismiss_overlay"
)

// MessagePatch is the type of every outbound message.
const MessagePatch = "patch"

// Message is an event from the browser.
type Message struct {
	Type  string `json:"type"`
	Page  string `json:"page,omitempty"`
	Width int    `json:"width,omitempty"`
}

// Update carries patches to the browser.
type Update struct {
	Type    string          `json:"type"`
	Patches []browser.Patch `json:"patches"`
}

// Client is one browser tab and its page controller.
type Client struct {
	id         string
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	controller *browser.Controller
	logger     logging.Logger

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

func newClient(h *Hub, conn *websocket.Conn) *Client {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Client{
		id:     newID(),
		hub:    h,
		conn:   conn,
		send:   make(chan []byte, sendQueueSize),
		ctx:    ctx,
		cancel: cancel,
	}
	c.logger = h.logger.With("session", c.id)

	opts := h.config.Controller
	opts.Logger = c.logger
	c.controller = browser.New(h.content, c, opts)
	return c
}

// ID returns the session id.
func (c *Client) ID() string {
	return c.id
}

// Apply queues patches for the write pump. It runs under the controller's
// lock, so a full queue ends the session rather than blocking; the runtime
// reconnects and starts over from init.
func (c *Client) Apply(patches []browser.Patch) {
	data, err := json.Marshal(Update{Type: MessagePatch, Patches: patches})
	if err != nil {
		c.logger.Error(c.ctx, err, "Failed to encode patches")
		return
	}

	select {
	case <-c.ctx.Done():
		return
	default:
	}

	select {
	case c.send <- data:
	default:
		c.logger.Warn(c.ctx, nil, "Send queue full, dropping session")
		c.cancel()
	}
}

// shutdown stops the pumps and any pending content swap.
func (c *Client) shutdown() {
	c.once.Do(func() {
		c.cancel()
		c.controller.Close()
	})
}

// readPump feeds browser events to the controller until the connection or
// the session ends.
func (c *Client) readPump() {
	defer c.hub.running.Done()
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.shutdown()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		typ, data, err := c.conn.Read(c.ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status != websocket.StatusNormalClosure &&
				status != websocket.StatusGoingAway &&
				!errors.Is(err, context.Canceled) &&
				c.ctx.Err() == nil {
				c.logger.Warn(c.ctx, err, "WebSocket read failed")
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}
		c.handle(data)
	}
}

func (c *Client) handle(data []byte) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		c.logger.Debug(c.ctx, "Ignoring malformed message", "error", err.Error())
		return
	}

	switch msg.Type {
	case MessageInit:
		c.controller.Init(c.ctx, msg.Width, msg.Page)
	case MessageNavigate:
		c.controller.Navigate(c.ctx, msg.Page)
	case MessageResize:
		c.controller.Resize(c.ctx, msg.Width)
	case MessageToggleSidebar:
		c.controller.ToggleSidebar(c.ctx)
	case MessageToggleMobileMenu:
		c.controller.ToggleMobileMenu(c.ctx)
	case MessageDismissOverlay:
		c.controller.DismissOverlay(c.ctx)
	default:
		c.logger.Debug(c.ctx, "Ignoring unknown message", "type", msg.Type)
	}
}

// writePump delivers queued patches and keeps the connection alive with
// pings.
func (c *Client) writePump() {
	defer c.hub.running.Done()
	defer c.cancel()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return

		case message := <-c.send:
			writeCtx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				if c.ctx.Err() == nil {
					c.logger.Warn(c.ctx, err, "WebSocket write failed")
				}
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(c.ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}
		}
	}
}
