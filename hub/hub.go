package hub

import (
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/restaurant-console/store"
	"github.com/yeremiapane/restaurant-console/utils"
)

const writeWait = 5 * time.Second

type Message struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data"`
}

// Hub menampung koneksi view (denah meja, daftar reservasi) per sesi dan meneruskan event store ke sana.
type Hub struct {
	clients map[*websocket.Conn]string // conn -> session key
	mutex   sync.Mutex
}

func New() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]string)}
}

// Register -> menambahkan connection untuk sesi key
func (h *Hub) Register(conn *websocket.Conn, key string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = key
}

// Unregister -> melepaskan connection
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; !ok {
		return
	}
	delete(h.clients, conn)
	conn.Close()
}

func (h *Hub) Count(key string) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	n := 0
	for _, k := range h.clients {
		if k == key {
			n++
		}
	}
	return n
}

// Attach forwards every event of s to the connections of session key. Call the returned
// function to stop forwarding.
func (h *Hub) Attach(key string, s *store.ReservationStore) (detach func()) {
	return s.Subscribe(func(ev store.Event) {
		h.Broadcast(key, Message{Event: ev.Type, Data: ev})
	})
}

// Broadcast sends msg to the connections of session key. A connection that cannot be written
// is dropped.
func (h *Hub) Broadcast(key string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		utils.ErrorLogger.Errorf("Error marshaling message: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	sent := 0
	for conn, k := range h.clients {
		if k != key {
			continue
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Warnf("Error sending message to client: %v", err)
			delete(h.clients, conn)
			conn.Close()
			continue
		}
		sent++
	}
	utils.InfoLogger.Debugf("Broadcast %s to %d clients", msg.Event, sent)
}

// CloseAll disconnects every client, used on shutdown.
func (h *Hub) CloseAll() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		conn.Close()
		delete(h.clients, conn)
	}
}
