package relay

import "sync"

// Hub fans snapshot updates out to connected live-feed clients. It is
// independent of gorilla/websocket so tests can subscribe with plain
// channels. Slow clients are skipped rather than blocking the hub.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]chan []byte
	register   chan hubRegistration
	unregister chan string
	broadcast  chan []byte
	shutdown   chan struct{}
	once       sync.Once
}

type hubRegistration struct {
	id string
	ch chan []byte
}

// NewHub creates and starts a Hub.
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[string]chan []byte),
		register:   make(chan hubRegistration),
		unregister: make(chan string),
		broadcast:  make(chan []byte, 16),
		shutdown:   make(chan struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case reg := <-h.register:
			h.mu.Lock()
			h.clients[reg.id] = reg.ch
			h.mu.Unlock()
		case id := <-h.unregister:
			h.mu.Lock()
			if ch, ok := h.clients[id]; ok {
				close(ch)
				delete(h.clients, id)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for _, ch := range h.clients {
				select {
				case ch <- msg:
				default:
					// client buffer full, drop rather than block
				}
			}
			h.mu.RUnlock()
		case <-h.shutdown:
			h.mu.Lock()
			for id, ch := range h.clients {
				close(ch)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Register adds a client channel under the given id. The channel should be
// buffered; unbuffered channels will miss bursts. After Stop the
// registration is dropped.
func (h *Hub) Register(id string, ch chan []byte) {
	select {
	case h.register <- hubRegistration{id: id, ch: ch}:
	case <-h.shutdown:
	}
}

// Unregister removes and closes the client channel with the given id. After
// Stop the channels are already closed and the call returns immediately.
func (h *Hub) Unregister(id string) {
	select {
	case h.unregister <- id:
	case <-h.shutdown:
	}
}

// Broadcast queues a message for all registered clients, dropping it if the
// hub queue is full.
func (h *Hub) Broadcast(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

// Stop shuts down the hub and closes all client channels.
func (h *Hub) Stop() {
	h.once.Do(func() { close(h.shutdown) })
}
