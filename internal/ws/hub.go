package ws

import (
	"encoding/json"
	"fmt"
	"log"
)

// Event is the JSON frame sent to clients.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

type membership struct {
	client *Client
	room   string
}

type roomMessage struct {
	room string
	data []byte
}

// Hub tracks connected clients and their room memberships. All map access
// happens on the Run goroutine; handlers talk to it through channels.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	joins      chan membership
	leaves     chan membership
	broadcast  chan roomMessage
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		joins:      make(chan membership),
		leaves:     make(chan membership),
		broadcast:  make(chan roomMessage, 256),
	}
}

// UserRoom is the private room key for one user.
func UserRoom(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

// ContentRoom is the broadcast room key for one content item.
func ContentRoom(contentID string) string {
	return "content:" + contentID
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			// Nothing to do until the client joins a room.
			_ = client
		case client := <-h.unregister:
			for room := range client.rooms {
				h.dropFromRoom(client, room)
			}
			close(client.send)
		case m := <-h.joins:
			if h.rooms[m.room] == nil {
				h.rooms[m.room] = make(map[*Client]bool)
			}
			h.rooms[m.room][m.client] = true
			m.client.rooms[m.room] = true
		case m := <-h.leaves:
			h.dropFromRoom(m.client, m.room)
		case msg := <-h.broadcast:
			for client := range h.rooms[msg.room] {
				select {
				case client.send <- msg.data:
				default:
					// Slow consumer, drop the frame rather than block the hub.
					log.Printf("[ws] dropping frame for slow client in room %s", msg.room)
				}
			}
		}
	}
}

func (h *Hub) dropFromRoom(client *Client, room string) {
	if members, ok := h.rooms[room]; ok {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	delete(client.rooms, room)
}

// EmitToRoom marshals an event frame and queues it for every client in the
// room. Best effort: failures are logged and never returned to the caller.
func (h *Hub) EmitToRoom(room, event string, data interface{}) {
	payload, err := json.Marshal(Event{Event: event, Data: data})
	if err != nil {
		log.Printf("[ws] marshal %s: %v", event, err)
		return
	}
	select {
	case h.broadcast <- roomMessage{room: room, data: payload}:
	default:
		log.Printf("[ws] broadcast queue full, dropping %s for room %s", event, room)
	}
}
