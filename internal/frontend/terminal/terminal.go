// Package terminal is a tcell frontend. It turns terminal key events into
// KeyEvent messages for its session and draws whatever the session sends
// back: the styled buffer, a status line and the message bar.
package terminal

import (
	"context"
	"errors"
	"strconv"

	"github.com/gdamore/tcell/v2"

	"github.com/koru-editor/koru/internal/broker"
	"github.com/koru-editor/koru/internal/logging"
	"github.com/koru-editor/koru/internal/styled"
)

// ErrSessionGone is returned by Run when the session stops answering.
var ErrSessionGone = errors.New("session is gone")

const defaultTabWidth = 4

// Option configures a Frontend.
type Option func(*Frontend)

// WithLogger sets the frontend's logger.
func WithLogger(l *logging.Logger) Option {
	return func(f *Frontend) {
		f.logger = l
	}
}

// Frontend draws one session on a tcell screen.
type Frontend struct {
	screen  tcell.Screen
	client  *broker.Client
	session broker.ClientID
	logger  *logging.Logger

	theme    *styled.Theme
	tabWidth int

	buffer  string
	mode    string
	file    styled.File
	message string
	top     int
}

// New creates a frontend that talks to session through client.
func New(screen tcell.Screen, client *broker.Client, session broker.ClientID, opts ...Option) *Frontend {
	f := &Frontend{
		screen:   screen,
		client:   client,
		session:  session,
		logger:   logging.Discard(),
		theme:    styled.NewTheme(),
		tabWidth: defaultTabWidth,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Run initializes the screen and serves it until the session quits or ctx
// is cancelled. The screen is finalized on return.
func (f *Frontend) Run(ctx context.Context) error {
	if err := f.screen.Init(); err != nil {
		return err
	}
	defer f.screen.Fini()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan tcell.Event)
	go f.pollEvents(ctx, events)
	messages := make(chan broker.Message)
	recvErr := make(chan error, 1)
	go f.receive(ctx, messages, recvErr)

	f.render()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-events:
			if err := f.handleEvent(ctx, ev); err != nil {
				return err
			}

		case m := <-messages:
			quit, err := f.handleMessage(m)
			if quit || err != nil {
				return err
			}

		case err := <-recvErr:
			if errors.Is(err, broker.ErrClosed) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
	}
}

func (f *Frontend) pollEvents(ctx context.Context, out chan<- tcell.Event) {
	for {
		ev := f.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case out <- ev:
		case <-ctx.Done():
			return
		}
	}
}

func (f *Frontend) receive(ctx context.Context, out chan<- broker.Message, errc chan<- error) {
	for {
		m, err := f.client.Recv(ctx)
		if err != nil {
			errc <- err
			return
		}
		select {
		case out <- m:
		case <-ctx.Done():
			return
		}
	}
}

func (f *Frontend) handleEvent(ctx context.Context, ev tcell.Event) error {
	switch e := ev.(type) {
	case *tcell.EventKey:
		key, ok := convertKey(e)
		if !ok {
			f.logger.Debugf("ignoring key %s", e.Name())
			return nil
		}
		err := f.client.Send(ctx, broker.KeyEvent{Key: key}, f.session)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err

	case *tcell.EventResize:
		f.screen.Sync()
		f.render()
	}
	return nil
}

// handleMessage applies m. It reports true once the session has ended.
func (f *Frontend) handleMessage(m broker.Message) (bool, error) {
	switch k := m.Kind.(type) {
	case broker.Draw:
		f.buffer = k.Buffer
		f.mode = k.Mode
		f.file = k.File
	case broker.SetColorDef:
		f.theme.Set(k.Def.Color, k.Def.Value)
	case broker.SetUiAttrs:
		if v, ok := k.Attrs["tab-width"]; ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				f.tabWidth = n
			}
		}
	case broker.UpdateMessageBar:
		f.message = k.Text
	case broker.Quit:
		f.logger.Infof("session %d quit", m.Source)
		return true, nil
	case broker.Undeliverable:
		if k.Destination == f.session {
			return true, ErrSessionGone
		}
	default:
		f.logger.Debugf("ignoring %s", m)
		return false, nil
	}
	f.render()
	return false, nil
}
