package broker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/koru-editor/koru/internal/logging"
)

// DefaultCapacity is the default size of every inbox.
const DefaultCapacity = 100

// Spawner runs a session on client until ctx is cancelled or the session
// ends. display is the client the session draws to.
type Spawner func(ctx context.Context, client *Client, display ClientID) error

// Option configures a Broker.
type Option func(*Broker)

// WithCapacity sets the inbox capacity.
func WithCapacity(n int) Option {
	return func(b *Broker) {
		if n > 0 {
			b.capacity = n
		}
	}
}

// WithSpawner sets how ConnectToSession starts sessions.
func WithSpawner(s Spawner) Option {
	return func(b *Broker) {
		b.spawn = s
	}
}

// WithLogger sets the broker's logger.
func WithLogger(l *logging.Logger) Option {
	return func(b *Broker) {
		b.logger = l
	}
}

// Stats holds broker counters.
type Stats struct {
	Routed  uint64
	Dropped uint64
	Clients int
}

// Broker owns the client slots and the routing loop.
type Broker struct {
	inbox    chan Message
	capacity int
	spawn    Spawner
	logger   *logging.Logger

	// mu guards the slots. Only the Run goroutine frees slots and closes
	// client channels.
	mu      sync.Mutex
	clients []chan Message
	free    []ClientID

	running atomic.Bool
	stopped bool
	done    chan struct{}

	routed  atomic.Uint64
	dropped atomic.Uint64
}

// New creates a broker. Call Run to start routing.
func New(opts ...Option) *Broker {
	b := &Broker{
		capacity: DefaultCapacity,
		logger:   logging.Discard(),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.inbox = make(chan Message, b.capacity)
	return b
}

// NewClient allocates a client slot. It may be called before or during Run.
func (b *Broker) NewClient() *Client {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stopped {
		in := make(chan Message)
		close(in)
		return &Client{id: -1, out: b.inbox, in: in, done: b.done}
	}

	var id ClientID
	if len(b.free) > 0 {
		id = b.free[0]
		b.free = b.free[1:]
	} else {
		id = ClientID(len(b.clients))
		b.clients = append(b.clients, nil)
	}
	in := make(chan Message, b.capacity)
	b.clients[id] = in
	b.logger.Debugf("client %d created", id)
	return &Client{id: id, out: b.inbox, in: in, done: b.done}
}

// Stats returns a snapshot of the broker's counters.
func (b *Broker) Stats() Stats {
	b.mu.Lock()
	live := len(b.clients) - len(b.free)
	b.mu.Unlock()
	return Stats{Routed: b.routed.Load(), Dropped: b.dropped.Load(), Clients: live}
}

// Run routes messages until ctx is cancelled or a spawned session fails.
// On return every client inbox is closed and every session has ended.
func (b *Broker) Run(ctx context.Context) error {
	if b.running.Swap(true) {
		return ErrAlreadyRunning
	}

	g, gctx := errgroup.WithContext(ctx)
	for {
		select {
		case <-gctx.Done():
			b.stop()
			if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		case m := <-b.inbox:
			b.handle(gctx, g, m)
		}
	}
}

func (b *Broker) handle(ctx context.Context, g *errgroup.Group, m Message) {
	switch k := m.Kind.(type) {
	case Shutdown:
		b.release(m.Source, k.in)

	case CreateClient:
		c := b.NewClient()
		b.deliver(ctx, m.Response(CreateClientResponse{Client: c}))

	case ConnectToSession:
		if b.spawn == nil {
			b.logger.Warnf("client %d asked for a session, but no spawner is set", m.Source)
			b.undeliverable(ctx, m)
			return
		}
		c := b.NewClient()
		display := m.Source
		g.Go(func() error {
			defer func() { _ = c.Shutdown(context.Background()) }()
			return b.spawn(ctx, c, display)
		})
		b.logger.Infof("session %d started for client %d", c.id, display)
		b.deliver(ctx, Message{Destination: display, Source: c.id, Kind: ConnectedToSession{Session: c.id}})

	case General:
		b.deliver(ctx, m)

	default:
		b.logger.Warnf("ignoring %s", m)
	}
}

// slot returns the inbox of id, or nil when the slot is free.
func (b *Broker) slot(id ClientID) chan Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	if id < 0 || int(id) >= len(b.clients) {
		return nil
	}
	return b.clients[id]
}

// deliver forwards m to its destination, waiting while the inbox is full.
func (b *Broker) deliver(ctx context.Context, m Message) {
	ch := b.slot(m.Destination)
	if ch == nil {
		b.undeliverable(ctx, m)
		return
	}
	select {
	case ch <- m:
		b.routed.Add(1)
	case <-ctx.Done():
	}
}

// undeliverable drops m and tells its source, if the source is still live.
func (b *Broker) undeliverable(ctx context.Context, m Message) {
	b.dropped.Add(1)
	b.logger.Warnf("dropped %s: no client %d", m, m.Destination)

	if _, ok := m.Kind.(Undeliverable); ok {
		return
	}
	src := b.slot(m.Source)
	if src == nil {
		return
	}
	notice := Message{Destination: m.Source, Source: m.Destination, Kind: Undeliverable{Destination: m.Destination}}
	select {
	case src <- notice:
	case <-ctx.Done():
	}
}

// release frees slot id. A non-nil in must match the slot's inbox, which
// keeps a late Shutdown from freeing a reused slot.
func (b *Broker) release(id ClientID, in <-chan Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if id < 0 || int(id) >= len(b.clients) {
		return
	}
	ch := b.clients[id]
	if ch == nil || (in != nil && ch != in) {
		return
	}
	close(ch)
	b.clients[id] = nil
	b.free = append(b.free, id)
	b.logger.Debugf("client %d freed", id)
}

// stop closes every inbox and releases clients blocked in Send.
func (b *Broker) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.stopped = true
	for i, ch := range b.clients {
		if ch != nil {
			close(ch)
			b.clients[i] = nil
			b.free = append(b.free, ClientID(i))
		}
	}
	close(b.done)
}
