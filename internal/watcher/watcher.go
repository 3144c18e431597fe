// Package watcher tells sessions when files they have open change on disk.
//
// Files are watched through their parent directory, so a save that replaces
// the file by renaming a temporary over it is still seen. Bursts of events
// for one path are debounced into a single FileChanged message per
// interested session.
package watcher

import (
	"context"
	"errors"
	"maps"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/errgroup"

	"github.com/koru-editor/koru/internal/broker"
	"github.com/koru-editor/koru/internal/logging"
)

// DefaultDelay is how long a path must stay quiet before sessions hear of it.
const DefaultDelay = 100 * time.Millisecond

// ErrClosed is returned after Close.
var ErrClosed = errors.New("watcher is closed")

// Option configures a Watcher.
type Option func(*Watcher)

// WithDelay sets the debounce delay.
func WithDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithLogger sets the watcher's logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// Watcher maps watched files to the sessions that have them open.
type Watcher struct {
	fs     *fsnotify.Watcher
	client *broker.Client
	delay  time.Duration
	logger *logging.Logger

	mu     sync.Mutex
	files  map[string]map[broker.ClientID]struct{}
	dirs   map[string]int
	closed bool
}

// New creates a watcher that sends FileChanged messages from client.
func New(client *broker.Client, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fs:     fsw,
		client: client,
		delay:  DefaultDelay,
		logger: logging.Discard(),
		files:  make(map[string]map[broker.ClientID]struct{}),
		dirs:   make(map[string]int),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Watch reports changes of path to session. path should be canonical.
func (w *Watcher) Watch(path string, session broker.ClientID) error {
	path = filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrClosed
	}

	sessions, ok := w.files[path]
	if !ok {
		dir := filepath.Dir(path)
		if w.dirs[dir] == 0 {
			if err := w.fs.Add(dir); err != nil {
				return err
			}
		}
		w.dirs[dir]++
		sessions = make(map[broker.ClientID]struct{})
		w.files[path] = sessions
	}
	sessions[session] = struct{}{}
	return nil
}

// Unwatch stops reporting changes of path to session.
func (w *Watcher) Unwatch(path string, session broker.ClientID) {
	path = filepath.Clean(path)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.unwatch(path, session)
}

func (w *Watcher) unwatch(path string, session broker.ClientID) {
	sessions, ok := w.files[path]
	if !ok {
		return
	}
	delete(sessions, session)
	if len(sessions) > 0 {
		return
	}
	delete(w.files, path)

	dir := filepath.Dir(path)
	w.dirs[dir]--
	if w.dirs[dir] > 0 {
		return
	}
	delete(w.dirs, dir)
	if !w.closed {
		if err := w.fs.Remove(dir); err != nil {
			w.logger.Debugf("remove watch on %s: %v", dir, err)
		}
	}
}

// forget drops every watch held by session.
func (w *Watcher) forget(session broker.ClientID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path := range w.files {
		w.unwatch(path, session)
	}
}

// Watching returns the sessions watching path in id order.
func (w *Watcher) Watching(path string) []broker.ClientID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return slices.Sorted(maps.Keys(w.files[filepath.Clean(path)]))
}

// Run forwards file changes until ctx is cancelled or the watcher is closed.
// It also drains the watcher's inbox: a FileChanged that could not be
// delivered means the session is gone, and its watches are dropped.
func (w *Watcher) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.receive(gctx) })
	g.Go(func() error {
		defer cancel()
		return w.loop(gctx)
	})
	return g.Wait()
}

func (w *Watcher) receive(ctx context.Context) error {
	for {
		m, err := w.client.Recv(ctx)
		if err != nil {
			if errors.Is(err, broker.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		if k, ok := m.Kind.(broker.Undeliverable); ok {
			w.logger.Debugf("session %d is gone", k.Destination)
			w.forget(k.Destination)
		}
	}
}

func (w *Watcher) loop(ctx context.Context) error {
	timer := time.NewTimer(w.delay)
	timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			path := filepath.Clean(ev.Name)
			if len(w.Watching(path)) == 0 {
				continue
			}
			pending[path] = struct{}{}
			timer.Reset(w.delay)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnf("watch error: %v", err)

		case <-timer.C:
			for _, path := range slices.Sorted(maps.Keys(pending)) {
				if err := w.notify(ctx, path); err != nil {
					return nil
				}
			}
			clear(pending)
		}
	}
}

// notify sends FileChanged for path to each watching session. It only fails
// when the client can no longer send.
func (w *Watcher) notify(ctx context.Context, path string) error {
	for _, session := range w.Watching(path) {
		err := w.client.Send(ctx, broker.FileChanged{Path: path}, session)
		if err != nil {
			return err
		}
		w.logger.Debugf("%s changed, told session %d", path, session)
	}
	return nil
}

// Close stops watching. Run returns once its loops see the closed watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	return w.fs.Close()
}
