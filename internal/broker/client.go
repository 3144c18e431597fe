package broker

import "context"

// Client is one participant's connection to the broker.
type Client struct {
	id   ClientID
	out  chan<- Message
	in   <-chan Message
	done <-chan struct{}
}

// ID returns the client's slot id.
func (c *Client) ID() ClientID { return c.id }

// Inbox returns the channel messages arrive on. It is closed when the
// client's slot is freed or the broker stops.
func (c *Client) Inbox() <-chan Message { return c.in }

// Send sends kind to dest, waiting while the broker's inbox is full.
func (c *Client) Send(ctx context.Context, kind Kind, dest ClientID) error {
	return c.post(ctx, Message{Destination: dest, Source: c.id, Kind: kind})
}

// Respond replies to m with kind.
func (c *Client) Respond(ctx context.Context, m Message, kind Kind) error {
	return c.post(ctx, Message{Destination: m.Source, Source: c.id, Kind: kind})
}

// Shutdown asks the broker to free the client's slot. It is a no-op when
// the slot was already freed, even if another client now holds the id.
func (c *Client) Shutdown(ctx context.Context) error {
	return c.post(ctx, Message{Destination: c.id, Source: c.id, Kind: Shutdown{in: c.in}})
}

func (c *Client) post(ctx context.Context, m Message) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.out <- m:
		return nil
	case <-c.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Recv waits for the next message.
func (c *Client) Recv(ctx context.Context) (Message, error) {
	select {
	case m, ok := <-c.in:
		if !ok {
			return Message{}, ErrClosed
		}
		return m, nil
	case <-ctx.Done():
		return Message{}, ctx.Err()
	}
}
