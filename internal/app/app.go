// Package app wires the editor's process-wide services together: the
// buffer table, the undo store, the file watcher and the broker that
// spawns a session for every connecting frontend.
package app

import (
	"context"
	"errors"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/koru-editor/koru/internal/broker"
	"github.com/koru-editor/koru/internal/config"
	"github.com/koru-editor/koru/internal/engine/buffer"
	"github.com/koru-editor/koru/internal/engine/table"
	"github.com/koru-editor/koru/internal/logging"
	"github.com/koru-editor/koru/internal/session"
	"github.com/koru-editor/koru/internal/store"
	"github.com/koru-editor/koru/internal/watcher"
)

// Option configures an Application.
type Option func(*Application)

// WithLogger sets the root logger. Components log through children of it.
func WithLogger(l *logging.Logger) Option {
	return func(a *Application) {
		a.logger = l
	}
}

// Application owns the services shared by every session.
type Application struct {
	cfg    *config.Config
	logger *logging.Logger

	table   *table.Table
	store   *store.Bolt
	watcher *watcher.Watcher
	broker  *broker.Broker

	// sessions is set once the services it needs exist.
	sessions broker.Spawner

	running atomic.Bool
}

// New builds the application from cfg. Nothing runs until Run.
func New(cfg *config.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	a := &Application{cfg: cfg, logger: logging.New("koru")}
	for _, opt := range opts {
		opt(a)
	}

	bufferOpts := []buffer.Option{buffer.WithEditDelay(cfg.Undo.EditDelay.Std())}
	a.table = table.New(
		table.WithBufferOptions(bufferOpts...),
		table.WithLogger(a.logger.WithComponent("table")),
	)

	if cfg.Undo.Store != "" {
		s, err := store.Open(cfg.Undo.Store, store.WithLogger(a.logger.WithComponent("store")))
		if err != nil {
			return nil, &InitError{Component: "undo store", Err: err}
		}
		a.store = s
	}

	a.broker = broker.New(
		broker.WithCapacity(cfg.Broker.ChannelCapacity),
		broker.WithLogger(a.logger.WithComponent("broker")),
		broker.WithSpawner(a.spawn),
	)

	w, err := watcher.New(a.broker.NewClient(), watcher.WithLogger(a.logger.WithComponent("watcher")))
	if err != nil {
		a.closeStore()
		return nil, &InitError{Component: "file watcher", Err: err}
	}
	a.watcher = w

	sessionCfg := session.Config{
		Table:         a.table,
		Watcher:       a.watcher,
		BufferOptions: bufferOpts,
		Palette:       cfg.Palette(),
		TabWidth:      cfg.Session.TabWidth,
		InitScript:    cfg.Session.InitScript,
		Logger:        a.logger.WithComponent("session"),
	}
	if a.store != nil {
		sessionCfg.Store = a.store
	}
	a.sessions = session.Spawner(sessionCfg)
	return a, nil
}

func (a *Application) spawn(ctx context.Context, client *broker.Client, display broker.ClientID) error {
	return a.sessions(ctx, client, display)
}

// Table returns the buffer table shared by all sessions.
func (a *Application) Table() *table.Table { return a.table }

// Broker returns the message broker.
func (a *Application) Broker() *broker.Broker { return a.broker }

// Run routes messages and watches files until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.running.Swap(true) {
		return ErrAlreadyRunning
	}
	a.logger.Infof("running, channel capacity %d", a.cfg.Broker.ChannelCapacity)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.broker.Run(gctx) })
	g.Go(func() error { return a.watcher.Run(gctx) })
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	a.logger.Infof("stopped")
	return err
}

// Connect creates a frontend client and asks the broker for a session that
// draws to it. It returns the client and the session's id.
func (a *Application) Connect(ctx context.Context) (*broker.Client, broker.ClientID, error) {
	c := a.broker.NewClient()
	if err := c.Send(ctx, broker.ConnectToSession{}, c.ID()); err != nil {
		_ = c.Shutdown(context.Background())
		return nil, 0, err
	}

	m, err := c.Recv(ctx)
	if err != nil {
		_ = c.Shutdown(context.Background())
		return nil, 0, err
	}
	switch k := m.Kind.(type) {
	case broker.ConnectedToSession:
		a.logger.Debugf("client %d connected to session %d", c.ID(), k.Session)
		return c, k.Session, nil
	case broker.Undeliverable:
		_ = c.Shutdown(context.Background())
		return nil, 0, ErrNoSession
	default:
		_ = c.Shutdown(context.Background())
		return nil, 0, &ConnectError{Got: m}
	}
}

// Close releases the watcher and the undo store. Call it after Run returns.
func (a *Application) Close() error {
	err := a.watcher.Close()
	return errors.Join(err, a.closeStore())
}

func (a *Application) closeStore() error {
	if a.store == nil {
		return nil
	}
	return a.store.Close()
}
