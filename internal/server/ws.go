package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ayusman/physioduel/internal/app"
	"github.com/ayusman/physioduel/internal/game"
	"github.com/ayusman/physioduel/internal/pose"
)

// Socket timing constants.
const (
	writeWait = 5 * time.Second
	// eventBuffer is the number of pending results kept for slow clients.
	eventBuffer = 64
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

type socketError struct {
	Error string `json:"error"`
}

// FramesHandler ingests landmark frames over a WebSocket. Every text
// message is one JSON frame; the reply is the resulting game.FrameResult.
type FramesHandler struct {
	app *app.App
}

// NewFramesHandler creates a new FramesHandler feeding the given app.
func NewFramesHandler(a *app.App) *FramesHandler {
	return &FramesHandler{app: a}
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *FramesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("frame socket read error: %v", err)
			}
			return
		}

		var reply any
		frame, err := pose.DecodeFrame(data)
		if err != nil {
			reply = socketError{Error: err.Error()}
		} else {
			reply = h.app.ProcessFrame(frame)
		}

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(reply); err != nil {
			log.Printf("frame socket write error: %v", err)
			return
		}
	}
}

// EventsHandler broadcasts every frame result that carries events to all
// connected WebSocket clients.
type EventsHandler struct {
	clients     map[string]*websocket.Conn
	mu          sync.RWMutex
	results     chan game.FrameResult
	unsubscribe func()
	done        chan struct{}
	closeOnce   sync.Once
}

// NewEventsHandler creates a new EventsHandler subscribed to the given app.
func NewEventsHandler(a *app.App) *EventsHandler {
	h := &EventsHandler{
		clients: make(map[string]*websocket.Conn),
		results: make(chan game.FrameResult, eventBuffer),
		done:    make(chan struct{}),
	}
	h.unsubscribe = a.Subscribe(h.enqueue)
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	id := uuid.NewString()
	h.mu.Lock()
	h.clients[id] = conn
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, id)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// Clients returns the number of connected clients.
func (h *EventsHandler) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close unsubscribes from the app and stops broadcasting.
func (h *EventsHandler) Close() {
	h.closeOnce.Do(func() {
		h.unsubscribe()
		close(h.done)
	})
}

// enqueue never blocks the frame path; results are dropped when the buffer
// is full.
func (h *EventsHandler) enqueue(r game.FrameResult) {
	select {
	case h.results <- r:
	default:
		log.Println("event buffer full, dropping frame result")
	}
}

// broadcast sends queued results to all connected clients.
func (h *EventsHandler) broadcast() {
	for {
		select {
		case <-h.done:
			return
		case r := <-h.results:
			msg, err := json.Marshal(r)
			if err != nil {
				log.Printf("failed to encode frame result: %v", err)
				continue
			}

			h.mu.RLock()
			for id, conn := range h.clients {
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.Printf("event socket %s write error: %v", id, err)
				}
			}
			h.mu.RUnlock()
		}
	}
}
