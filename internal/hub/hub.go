package hub

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Hub keeps the registry of live subscribers and fans events out to
// them. Registration, deregistration, and broadcast all funnel through
// the Run loop; the mutex covers the snapshot reads publish needs.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	feed       FeedSource
	feedLimit  int
	mutex      sync.RWMutex
	wg         sync.WaitGroup
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

// New creates a hub that serves feed snapshots of at most feedLimit
// posts from the given source. Call Run in its own goroutine.
func New(feed FeedSource, feedLimit int) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		feed:       feed,
		feedLimit:  feedLimit,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Register hands a new client to the Run loop, which starts its pumps.
func (h *Hub) Register(c *Client) {
	h.register <- c
}

// Publish marshals an event and fans it out to every live subscriber.
// Failures are logged and swallowed: by the time Publish runs, the post
// is already committed, and a subscriber that misses the event can pull
// a fresh snapshot.
func (h *Hub) Publish(event string, data any) {
	raw, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		log.Printf("hub: marshal %s event: %v", event, err)
		return
	}

	select {
	case h.broadcast <- raw:
	case <-h.ctx.Done():
	}
}

// ClientCount reports how many subscribers are currently registered.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Run is the hub's event loop. It owns all mutation of the client
// registry and must be running before any client connects.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.closeAllClients()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}

			h.mutex.Lock()
			client.closed = false
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			log.Printf("hub: subscriber %s (%s) connected, %d online", client.identity.Username, client.addr, count)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closed = true
				count := len(h.clients)
				h.mutex.Unlock()
				close(client.send)
				log.Printf("hub: subscriber %s (%s) disconnected, %d online", client.identity.Username, client.addr, count)
			} else {
				h.mutex.Unlock()
			}

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

func (h *Hub) fanOut(message []byte) {
	clients := h.snapshot()

	var failed []*Client
	for _, client := range clients {
		if !h.trySend(client, message) {
			failed = append(failed, client)
		}
	}

	h.dropFailed(failed)
}

func (h *Hub) snapshot() []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

// trySend queues a message without blocking. A full buffer or a client
// mid-disconnect counts as a failed delivery. Holding the registry
// lock orders the send against channel close: closers mark the client
// closed under the write lock before closing, so a send that sees
// closed == false finishes before the close can happen.
func (h *Hub) trySend(client *Client, message []byte) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if _, exists := h.clients[client]; !exists || client.closed {
		return false
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// queue is trySend for a client the hub may not know yet: the connect
// acknowledgment is buffered before registration, when nothing can
// close the channel. A client the hub has already dropped is skipped.
func (h *Hub) queue(client *Client, message []byte) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if client.closed {
		return false
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

func (h *Hub) dropFailed(failed []*Client) {
	if len(failed) == 0 {
		return
	}

	h.mutex.Lock()
	var channels []chan []byte
	for _, client := range failed {
		if _, exists := h.clients[client]; exists {
			delete(h.clients, client)
			client.closed = true
			channels = append(channels, client.send)
			log.Printf("hub: dropped %s (%s), send buffer full", client.identity.Username, client.addr)
		}
	}
	h.mutex.Unlock()

	for _, ch := range channels {
		close(ch)
	}
}

// closeAllClients empties the registry and tears every client down.
// Closing the send channel wakes the write pump; closing the
// connection wakes the read pump.
func (h *Hub) closeAllClients() {
	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		delete(h.clients, client)
		client.closed = true
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		close(client.send)
		if client.conn != nil {
			if err := client.conn.Close(); err != nil && !isExpectedCloseError(err) {
				log.Printf("hub: closing %s: %v", client.addr, err)
			}
		}
	}
}

// Shutdown stops the event loop, closes every connection, and waits for
// the pump goroutines up to the timeout.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.cancel()
	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}
