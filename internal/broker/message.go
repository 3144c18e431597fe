package broker

import (
	"fmt"

	"github.com/koru-editor/koru/internal/input"
	"github.com/koru-editor/koru/internal/styled"
)

// ClientID identifies a client slot.
type ClientID int

// Message is the envelope every client sends and receives.
type Message struct {
	Destination ClientID
	Source      ClientID
	Kind        Kind
}

// Response returns a message carrying kind back to m's source.
func (m Message) Response(kind Kind) Message {
	return Message{Destination: m.Source, Source: m.Destination, Kind: kind}
}

func (m Message) String() string {
	return fmt.Sprintf("%d->%d %T", m.Source, m.Destination, m.Kind)
}

// Kind is the payload of a message. General kinds are forwarded to the
// destination; the others are requests to the broker.
type Kind interface {
	kind()
}

// General marks kinds that the broker forwards verbatim.
type General interface {
	Kind
	general()
}

type generalKind struct{}

func (generalKind) kind()    {}
func (generalKind) general() {}

type brokerKind struct{}

func (brokerKind) kind() {}

// IsGeneral reports whether k is forwarded rather than handled by the broker.
func IsGeneral(k Kind) bool {
	_, ok := k.(General)
	return ok
}

// KeyEvent carries a key press from a frontend to its session.
type KeyEvent struct {
	generalKind
	Key input.KeyPress
}

// Draw carries a rendered buffer and its major mode to a frontend.
type Draw struct {
	generalKind
	Buffer string
	Mode   string
	File   styled.File
}

// SetColorDef binds one palette entry in a frontend's theme.
type SetColorDef struct {
	generalKind
	Def styled.ColorDef
}

// SetUiAttrs passes frontend settings such as the tab width.
type SetUiAttrs struct {
	generalKind
	Attrs map[string]string
}

// UpdateMessageBar replaces the frontend's message bar text.
type UpdateMessageBar struct {
	generalKind
	Text string
}

// FlushKeyBuffer drops the session's pending key sequence.
type FlushKeyBuffer struct {
	generalKind
}

// Command runs a command-bar line in the session, as if typed after M-x.
type Command struct {
	generalKind
	Line string
}

// FileChanged reports that a file open in the session changed on disk.
type FileChanged struct {
	generalKind
	Path string
}

// Quit tells a frontend that its session has ended.
type Quit struct {
	generalKind
}

// Undeliverable tells a sender that its message to Destination was dropped
// because no client holds that slot.
type Undeliverable struct {
	generalKind
	Destination ClientID
}

// Shutdown frees the sender's slot.
type Shutdown struct {
	brokerKind

	// in identifies the sending client when sent through Client.Shutdown.
	in <-chan Message
}

// CreateClient asks for a new client. The reply is CreateClientResponse.
type CreateClient struct {
	brokerKind
}

// CreateClientResponse carries a client created on request.
type CreateClientResponse struct {
	generalKind
	Client *Client
}

// ConnectToSession asks the broker to start a session that draws to the
// sender. The reply is ConnectedToSession.
type ConnectToSession struct {
	brokerKind
}

// ConnectedToSession carries the id of a newly started session.
type ConnectedToSession struct {
	generalKind
	Session ClientID
}
