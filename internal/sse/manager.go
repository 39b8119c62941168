package sse

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pinshelf/pinshelf-server/internal/id"
)

const (
	queueSize         = 1000
	clientBufferSize  = 100
	heartbeatInterval = 30 * time.Second
)

// Subscription selects the events a client receives. Owner-scoped events go
// to that owner only; with RecipeID set, events about other recipes are
// skipped, which is what the pin editor's live preview wants.
type Subscription struct {
	UserID   string
	RecipeID string
}

func (s Subscription) wants(e Event) bool {
	if e.UserID != "" && e.UserID != s.UserID {
		return false
	}
	if s.RecipeID != "" && e.RecipeID != "" && e.RecipeID != s.RecipeID {
		return false
	}
	return true
}

// Client is a connected subscriber. Events and Done are closed together when
// the client is disconnected or the manager shuts down.
type Client struct {
	ID           string
	Subscription Subscription
	ConnectedAt  time.Time
	Events       chan Event
	Done         chan struct{}
}

func (c *Client) close() {
	close(c.Done)
	close(c.Events)
}

// Manager fans catalog events out to connected clients. Emit never blocks:
// a full queue or a slow client loses events.
type Manager struct {
	logger    *slog.Logger
	heartbeat time.Duration
	queue     chan Event

	mu      sync.RWMutex
	clients map[string]*Client
	closed  bool

	startOnce sync.Once
	running   chan struct{}
	finished  chan struct{}
}

// NewManager creates a Manager. Start must run before events are delivered.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		logger:    logger,
		heartbeat: heartbeatInterval,
		queue:     make(chan Event, queueSize),
		clients:   make(map[string]*Client),
		running:   make(chan struct{}),
		finished:  make(chan struct{}),
	}
}

// Start delivers queued events until ctx is canceled or Shutdown drains the
// queue. Only the first call runs; later calls return immediately.
func (m *Manager) Start(ctx context.Context) {
	first := false
	m.startOnce.Do(func() { first = true })
	if !first {
		return
	}
	close(m.running)
	defer close(m.finished)
	defer m.dropClients()

	ticker := time.NewTicker(m.heartbeat)
	defer ticker.Stop()

	m.logger.Info("event stream started")
	for {
		select {
		case e, ok := <-m.queue:
			if !ok {
				return
			}
			m.deliver(e)
		case <-ticker.C:
			m.deliver(NewHeartbeatEvent())
		case <-ctx.Done():
			m.logger.Info("event stream stopping", "reason", ctx.Err())
			return
		}
	}
}

// Shutdown stops accepting events and waits for the queue to drain. Clients
// are disconnected either way; the error is ctx's if draining outlives it.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.queue)
	m.mu.Unlock()

	select {
	case <-m.running:
	default:
		m.dropClients()
		return nil
	}

	select {
	case <-m.finished:
		return nil
	case <-ctx.Done():
		m.logger.Warn("event queue not drained before shutdown deadline")
		return ctx.Err()
	}
}

// Emit queues e for delivery. It is a no-op after Shutdown.
func (m *Manager) Emit(e Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return
	}
	select {
	case m.queue <- e:
	default:
		m.logger.Error("event queue full, dropping event", "event_type", e.Type)
	}
}

// Connect registers a client for sub.
func (m *Manager) Connect(sub Subscription) (*Client, error) {
	clientID, err := id.Generate("sse")
	if err != nil {
		return nil, err
	}
	c := &Client{
		ID:           clientID,
		Subscription: sub,
		ConnectedAt:  time.Now(),
		Events:       make(chan Event, clientBufferSize),
		Done:         make(chan struct{}),
	}

	m.mu.Lock()
	m.clients[c.ID] = c
	n := len(m.clients)
	m.mu.Unlock()

	m.logger.Info("event client connected",
		"client_id", c.ID,
		"user_id", sub.UserID,
		"recipe_id", sub.RecipeID,
		"clients", n,
	)
	return c, nil
}

// Disconnect removes a client. Unknown IDs are ignored.
func (m *Manager) Disconnect(clientID string) {
	m.mu.Lock()
	c, ok := m.clients[clientID]
	if ok {
		delete(m.clients, clientID)
		c.close()
	}
	n := len(m.clients)
	m.mu.Unlock()

	if ok {
		m.logger.Info("event client disconnected",
			"client_id", clientID,
			"duration", time.Since(c.ConnectedAt),
			"clients", n,
		)
	}
}

// ClientCount returns the number of connected clients.
func (m *Manager) ClientCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients)
}

func (m *Manager) deliver(e Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sent, dropped := 0, 0
	for _, c := range m.clients {
		if e.Type != EventHeartbeat && !c.Subscription.wants(e) {
			continue
		}
		select {
		case c.Events <- e:
			sent++
		default:
			dropped++
		}
	}

	if dropped > 0 {
		m.logger.Warn("slow event clients skipped", "event_type", e.Type, "dropped", dropped)
	}
	if e.Type != EventHeartbeat {
		m.logger.Debug("event delivered", "event_type", e.Type, "recipe_id", e.RecipeID, "sent", sent)
	}
}

func (m *Manager) dropClients() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.clients {
		c.close()
	}
	clear(m.clients)
}
