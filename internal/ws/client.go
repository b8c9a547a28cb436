package ws

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	maxRoomIDLen   = 50
)

// Inbound events and their per-connection, per-minute caps. Anything not
// listed here is dropped.
var eventCaps = map[string]int{
	"join-user-room":     5,
	"join-content-room":  10,
	"leave-content-room": 10,
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // cross-origin policy is enforced by the CORS middleware
	},
}

type inboundEvent struct {
	Event string `json:"event"`
	Data  string `json:"data"`
}

// Client is one websocket connection. The rooms set is owned by the hub
// goroutine; limiter state dies with the connection.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	rooms    map[string]bool
	limiters map[string]*rate.Limiter
}

// ServeWs upgrades the request and starts the read/write pumps.
func ServeWs(hub *Hub, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade: %v", err)
		return
	}
	client := &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 64),
		rooms:    make(map[string]bool),
		limiters: make(map[string]*rate.Limiter),
	}
	hub.register <- client

	go client.writePump()
	go client.readPump()
}

// allow enforces the per-minute cap for one event name with a token
// bucket: burst of cap, refilled at cap per minute. Sustained throughput
// is held to the cap; a transient burst after a quiet minute can pass up
// to 2x cap inside a single rolling window.
func (c *Client) allow(event string) bool {
	max, ok := eventCaps[event]
	if !ok {
		return false
	}
	lim, ok := c.limiters[event]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(max)), max)
		c.limiters[event] = lim
	}
	return lim.Allow()
}

func (c *Client) handleEvent(ev inboundEvent) {
	if ev.Data == "" || len(ev.Data) > maxRoomIDLen {
		log.Printf("[ws] dropping %s with invalid room id", ev.Event)
		return
	}
	if !c.allow(ev.Event) {
		log.Printf("[ws] rate limit exceeded for %s, dropping", ev.Event)
		return
	}

	switch ev.Event {
	case "join-user-room":
		c.hub.joins <- membership{client: c, room: "user:" + ev.Data}
	case "join-content-room":
		c.hub.joins <- membership{client: c, room: ContentRoom(ev.Data)}
	case "leave-content-room":
		c.hub.leaves <- membership{client: c, room: ContentRoom(ev.Data)}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[ws] read: %v", err)
			}
			return
		}
		var ev inboundEvent
		if err := json.Unmarshal(message, &ev); err != nil {
			log.Printf("[ws] dropping malformed client event: %v", err)
			continue
		}
		c.handleEvent(ev)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
