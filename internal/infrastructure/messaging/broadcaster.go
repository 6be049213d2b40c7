// Package messaging provides the websocket live engagement feed for
// dashboard clients.
package messaging

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/caching/manager"
	"github.com/PulsePath/pulsetrack-go/internal/infrastructure/observability/logging"
	"github.com/gorilla/websocket"
)

// statsInterval is the cadence of the periodic cache stats push, independent
// of event-driven broadcasts
const statsInterval = 20 * time.Second

// Client represents a single connected dashboard client
type Client struct {
	Conn *websocket.Conn
	Send chan []byte
}

// EngagementBroadcaster fans engagement updates out to connected clients.
// Slow clients are skipped rather than blocking the engine.
type EngagementBroadcaster struct {
	clients      map[*Client]bool
	register     chan *Client
	unregister   chan *Client
	broadcast    chan []byte
	cacheManager *manager.Manager
	maxClients   int
	logger       *logging.ChanneledLogger
	done         chan struct{}
	mu           sync.RWMutex
}

// NewEngagementBroadcaster creates a new broadcaster instance
func NewEngagementBroadcaster(cacheManager *manager.Manager, maxClients int, logger *logging.ChanneledLogger) *EngagementBroadcaster {
	return &EngagementBroadcaster{
		clients:      make(map[*Client]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		broadcast:    make(chan []byte, 64),
		cacheManager: cacheManager,
		maxClients:   maxClients,
		logger:       logger,
		done:         make(chan struct{}),
	}
}

// Run starts the broadcaster's main loop. Run it as a goroutine; it exits
// when ctx is cancelled.
func (b *EngagementBroadcaster) Run(ctx context.Context) {
	defer close(b.done)

	ticker := time.NewTicker(statsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.closeAll()
			return

		case client := <-b.register:
			b.mu.Lock()
			if len(b.clients) >= b.maxClients {
				b.mu.Unlock()
				close(client.Send)
				b.logger.Live().Warn("Live feed client rejected, limit reached", "maxClients", b.maxClients)
				continue
			}
			b.clients[client] = true
			b.mu.Unlock()
			b.logger.Live().Info("Live feed client registered", "clients", b.ClientCount())

		case client := <-b.unregister:
			b.mu.Lock()
			if _, ok := b.clients[client]; ok {
				delete(b.clients, client)
				close(client.Send)
			}
			b.mu.Unlock()
			b.logger.Live().Info("Live feed client unregistered", "clients", b.ClientCount())

		case message := <-b.broadcast:
			b.fanOut(message)

		case <-ticker.C:
			b.pushStats()
		}
	}
}

// Register queues a client for registration. After the run loop has exited
// nothing drains the channel; the client is turned away instead of blocking
// its pump goroutine.
func (b *EngagementBroadcaster) Register(client *Client) {
	select {
	case b.register <- client:
	case <-b.done:
		close(client.Send)
	}
}

// Unregister queues a client for unregistration. A no-op once the run loop
// has exited; shutdown already closed every client.
func (b *EngagementBroadcaster) Unregister(client *Client) {
	select {
	case b.unregister <- client:
	case <-b.done:
	}
}

// ClientCount returns the number of connected clients
func (b *EngagementBroadcaster) ClientCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// BroadcastEngagement queues an engagement payload for all clients. Drops
// the payload when the broadcast queue is full.
func (b *EngagementBroadcaster) BroadcastEngagement(payload map[string]any) {
	message, err := json.Marshal(payload)
	if err != nil {
		b.logger.Live().Error("Failed to marshal engagement payload", "error", err)
		return
	}

	select {
	case b.broadcast <- message:
	default:
		b.logger.Live().Warn("Broadcast queue full, dropping payload")
	}
}

func (b *EngagementBroadcaster) pushStats() {
	message, err := json.Marshal(map[string]any{
		"type":  "stats",
		"stats": b.cacheManager.GetStats(),
	})
	if err != nil {
		return
	}
	b.fanOut(message)
}

func (b *EngagementBroadcaster) fanOut(message []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for client := range b.clients {
		select {
		case client.Send <- message:
		default:
		}
	}
}

func (b *EngagementBroadcaster) closeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for client := range b.clients {
		close(client.Send)
		delete(b.clients, client)
	}
	b.logger.Shutdown().Info("Live feed broadcaster stopped")
}
