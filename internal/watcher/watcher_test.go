package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/koru-editor/koru/internal/broker"
)

type fixture struct {
	broker  *broker.Broker
	watcher *Watcher
	dir     string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	b := broker.New()
	ctx, cancel := context.WithCancel(context.Background())

	w, err := New(b.NewClient(), WithDelay(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	brokerDone := make(chan struct{})
	go func() {
		defer close(brokerDone)
		_ = b.Run(ctx)
	}()
	watcherDone := make(chan error, 1)
	go func() { watcherDone <- w.Run(ctx) }()

	t.Cleanup(func() {
		cancel()
		if err := <-watcherDone; err != nil {
			t.Errorf("Run() error = %v", err)
		}
		<-brokerDone
		_ = w.Close()
	})

	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return &fixture{broker: b, watcher: w, dir: dir}
}

func (f *fixture) file(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(f.dir, name)
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func expectChanged(t *testing.T, c *broker.Client, path string) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	m, err := c.Recv(ctx)
	if err != nil {
		t.Fatalf("Recv() error = %v", err)
	}
	k, ok := m.Kind.(broker.FileChanged)
	if !ok {
		t.Fatalf("got %s, want FileChanged", m)
	}
	if k.Path != path {
		t.Errorf("FileChanged path = %q, want %q", k.Path, path)
	}
}

func expectQuiet(t *testing.T, c *broker.Client, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	if m, err := c.Recv(ctx); err == nil {
		t.Fatalf("unexpected %s", m)
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not reached")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestChangeReachesEverySession(t *testing.T) {
	f := newFixture(t)
	path := f.file(t, "a.txt", "one\n")
	s1, s2 := f.broker.NewClient(), f.broker.NewClient()

	for _, s := range []*broker.Client{s1, s2} {
		if err := f.watcher.Watch(path, s.ID()); err != nil {
			t.Fatalf("Watch() error = %v", err)
		}
	}
	if got, want := f.watcher.Watching(path), []broker.ClientID{s1.ID(), s2.ID()}; !slices.Equal(got, want) {
		t.Fatalf("Watching() = %v, want %v", got, want)
	}

	f.file(t, "a.txt", "two\n")
	expectChanged(t, s1, path)
	expectChanged(t, s2, path)
}

func TestBurstIsDebounced(t *testing.T) {
	f := newFixture(t)
	path := f.file(t, "a.txt", "")
	s := f.broker.NewClient()
	if err := f.watcher.Watch(path, s.ID()); err != nil {
		t.Fatal(err)
	}

	for _, text := range []string{"a", "ab", "abc"} {
		f.file(t, "a.txt", text)
	}
	expectChanged(t, s, path)
	expectQuiet(t, s, 200*time.Millisecond)
}

func TestOtherFilesInDirectoryAreIgnored(t *testing.T) {
	f := newFixture(t)
	path := f.file(t, "watched.txt", "")
	s := f.broker.NewClient()
	if err := f.watcher.Watch(path, s.ID()); err != nil {
		t.Fatal(err)
	}

	f.file(t, "other.txt", "noise")
	expectQuiet(t, s, 200*time.Millisecond)
}

func TestUnwatch(t *testing.T) {
	f := newFixture(t)
	a := f.file(t, "a.txt", "")
	b := f.file(t, "b.txt", "")
	s1, s2 := f.broker.NewClient(), f.broker.NewClient()

	for _, w := range []struct {
		path    string
		session *broker.Client
	}{{a, s1}, {a, s2}, {b, s1}} {
		if err := f.watcher.Watch(w.path, w.session.ID()); err != nil {
			t.Fatal(err)
		}
	}
	if got := f.watcher.fs.WatchList(); len(got) != 1 {
		t.Fatalf("WatchList() = %v, want the one directory", got)
	}

	f.watcher.Unwatch(a, s1.ID())
	if got := f.watcher.Watching(a); !slices.Equal(got, []broker.ClientID{s2.ID()}) {
		t.Errorf("Watching(a) = %v, want [%d]", got, s2.ID())
	}

	f.watcher.Unwatch(a, s2.ID())
	f.watcher.Unwatch(b, s1.ID())
	if got := f.watcher.fs.WatchList(); len(got) != 0 {
		t.Errorf("WatchList() = %v after last Unwatch, want none", got)
	}

	// Unknown pairs are ignored.
	f.watcher.Unwatch(a, s1.ID())
}

func TestGoneSessionIsForgotten(t *testing.T) {
	f := newFixture(t)
	path := f.file(t, "a.txt", "")
	live, gone := f.broker.NewClient(), f.broker.NewClient()
	for _, s := range []*broker.Client{live, gone} {
		if err := f.watcher.Watch(path, s.ID()); err != nil {
			t.Fatal(err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := gone.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return f.broker.Stats().Clients == 2 })

	f.file(t, "a.txt", "changed")
	expectChanged(t, live, path)
	waitFor(t, func() bool { return slices.Equal(f.watcher.Watching(path), []broker.ClientID{live.ID()}) })
}

func TestWatchErrors(t *testing.T) {
	f := newFixture(t)
	s := f.broker.NewClient()

	if err := f.watcher.Watch(filepath.Join(f.dir, "missing", "a.txt"), s.ID()); err == nil {
		t.Error("Watch() in a missing directory succeeded")
	}
	if got := f.watcher.Watching(filepath.Join(f.dir, "missing", "a.txt")); len(got) != 0 {
		t.Errorf("Watching() = %v after failed Watch", got)
	}

	if err := f.watcher.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := f.watcher.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := f.watcher.Watch(filepath.Join(f.dir, "a.txt"), s.ID()); !errors.Is(err, ErrClosed) {
		t.Errorf("Watch() after Close error = %v, want ErrClosed", err)
	}
}
