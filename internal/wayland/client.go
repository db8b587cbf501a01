// Package wayland is a pure Go Wayland client: object registry, global
// discovery and binding, the protocol objects shmpaper uses, and the
// surface lifecycle built on top of them.
package wayland

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/matjam/shmpaper/internal/metrics"
	"github.com/matjam/shmpaper/internal/wire"
	"github.com/pkg/errors"
)

// Transport is the duplex channel to the compositor. *wire.Conn is the
// production implementation.
type Transport interface {
	// WriteMessage queues a request.
	WriteMessage(m *wire.Message) error
	// Flush sends queued requests in issue order.
	Flush() error
	// ReadMessages blocks until at least one event is available.
	ReadMessages() ([]*wire.Message, error)
	// FDs holds descriptors received out of band.
	FDs() *wire.FDQueue
	// Interrupt wakes a blocked ReadMessages from another goroutine.
	Interrupt() error
	Close() error
}

// Client owns the connection, allocates object ids and routes events.
// All methods except Wake must be called from the goroutine running
// Dispatch.
type Client struct {
	t       Transport
	objects objectMap
	lastID  uint32
	err     error

	registry *Registry
	globals  []Global

	// OnGlobal runs for every global announced after it is set, including
	// hot-plugged ones.
	OnGlobal func(Global)
	// OnGlobalRemove runs when a global disappears.
	OnGlobalRemove func(Global)
}

// Connect dials the compositor named by name (see wire.SocketPath).
func Connect(name string) (*Client, error) {
	conn, err := wire.Dial(name)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

func NewClient(t Transport) *Client {
	return &Client{
		t:       t,
		objects: newObjectMap(),
		lastID:  displayID,
	}
}

// newID hands out the next object id. Ids are never reused.
func (c *Client) newID() uint32 {
	c.lastID++
	return c.lastID
}

func (c *Client) register(obj Object) {
	c.objects.register(obj)
}

func (c *Client) send(iface string, msg *wire.Message) {
	if c.err != nil {
		return
	}
	if err := c.t.WriteMessage(msg); err != nil {
		c.fail(errors.Wrapf(err, "send %s request %d", iface, msg.Opcode))
		return
	}
	metrics.RequestsSent.WithLabelValues(iface).Inc()
}

// fail records the first fatal error. Every later call reports it.
func (c *Client) fail(err error) error {
	if c.err == nil {
		c.err = err
		log.Error("wayland connection failed", "err", err)
	}
	return c.err
}

// Err returns the fatal error that ended the session, if any.
func (c *Client) Err() error {
	return c.err
}

// Flush sends every queued request.
func (c *Client) Flush() error {
	if c.err != nil {
		return c.err
	}
	if err := c.t.Flush(); err != nil {
		return c.fail(err)
	}
	return nil
}

// Dispatch flushes pending requests, blocks until events arrive and routes
// all of them in wire order. Requests issued by handlers are flushed before
// it returns. A cancelled ctx or Wake interrupts the wait; the former
// returns ctx.Err(), the latter nil.
func (c *Client) Dispatch(ctx context.Context) error {
	if err := c.Flush(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, func() { _ = c.t.Interrupt() })
	msgs, err := c.t.ReadMessages()
	stop()
	if err != nil {
		if errors.Is(err, wire.ErrInterrupted) {
			return ctx.Err()
		}
		return c.fail(errors.Wrap(err, "read events"))
	}

	for _, msg := range msgs {
		if err := c.route(msg); err != nil {
			return c.fail(err)
		}
	}
	metrics.DispatchCycles.Inc()
	return c.Flush()
}

// Wake interrupts a blocked Dispatch. Safe from any goroutine.
func (c *Client) Wake() error {
	return c.t.Interrupt()
}

// Sync asks the compositor to fire the returned callback once every
// request sent so far has been processed.
func (c *Client) Sync() *Callback {
	cb := &Callback{proxy: proxy{id: c.newID(), version: 1, client: c}}
	c.register(cb)
	c.send(InterfaceDisplay, wire.NewMessage(displayID, opDisplaySync).PutNewID(cb.id))
	return cb
}

// Roundtrip blocks until the compositor has handled every request sent so
// far and all events it produced in response have been dispatched.
func (c *Client) Roundtrip(ctx context.Context) error {
	done := false
	cb := c.Sync()
	cb.Done = func(uint32) { done = true }
	for !done {
		if err := c.Dispatch(ctx); err != nil {
			return err
		}
	}
	return nil
}

// ObjectCount reports how many live objects the client tracks.
func (c *Client) ObjectCount() int {
	return c.objects.len()
}

func (c *Client) Close() error {
	return c.t.Close()
}

func (c *Client) route(msg *wire.Message) error {
	if msg.Object == displayID {
		return c.handleDisplayEvent(msg)
	}
	return c.objects.route(msg, c.t.FDs())
}

func (c *Client) handleDisplayEvent(msg *wire.Message) error {
	r := wire.NewReader(msg, nil)
	switch msg.Opcode {
	case evDisplayError:
		id := r.Object()
		code := r.Uint()
		text := r.String()
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode wl_display.error")
		}
		iface := "unknown"
		if id == displayID {
			iface = InterfaceDisplay
		} else if name, ok := c.objects.interfaceOf(id); ok {
			iface = name
		}
		return &ProtocolError{ObjectID: id, Interface: iface, Code: code, Message: text}
	case evDisplayDeleteID:
		id := r.Uint()
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode wl_display.delete_id")
		}
		c.objects.remove(id)
	default:
		log.Debug("unknown wl_display event", "opcode", msg.Opcode)
	}
	return nil
}

// Callback fires Done once and is then destroyed by the compositor.
type Callback struct {
	proxy
	Done func(data uint32)
}

func (cb *Callback) Interface() string {
	return InterfaceCallback
}

func (cb *Callback) dispatch(msg *wire.Message) error {
	if msg.Opcode != evCallbackDone {
		return nil
	}
	r := wire.NewReader(msg, nil)
	data := r.Uint()
	if err := r.Err(); err != nil {
		return errors.Wrap(err, "decode wl_callback.done")
	}
	if cb.Done != nil {
		cb.Done(data)
	}
	return nil
}
