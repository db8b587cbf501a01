package wayland

import (
	"context"
	"io"
	"testing"

	"github.com/matjam/shmpaper/internal/wire"
	"github.com/stretchr/testify/require"
)

// fakeCompositor is an in-memory Transport. It answers get_registry with
// its globals and every sync with a done event; all other events are
// queued by the test.
type fakeCompositor struct {
	t       *testing.T
	globals []Global

	sent        []*wire.Message
	pending     []*wire.Message
	fds         wire.FDQueue
	interrupted bool
	registry    uint32

	// flushed counts the sent requests covered by the last Flush;
	// unflushedReads counts reads that began with requests still queued.
	flushed        int
	unflushedReads int
}

func newFake(t *testing.T, globals ...Global) (*fakeCompositor, *Client) {
	f := &fakeCompositor{t: t, globals: globals}
	return f, NewClient(f)
}

func (f *fakeCompositor) WriteMessage(m *wire.Message) error {
	f.sent = append(f.sent, m)
	if m.Object != displayID {
		return nil
	}
	id := wire.NewReader(m, nil).Uint()
	switch m.Opcode {
	case opDisplayGetRegistry:
		f.registry = id
		for _, g := range f.globals {
			f.queue(f.globalEvent(g))
		}
	case opDisplaySync:
		f.queue(wire.NewMessage(id, evCallbackDone).PutUint(0))
		f.queue(wire.NewMessage(displayID, evDisplayDeleteID).PutUint(id))
	}
	return nil
}

func (f *fakeCompositor) globalEvent(g Global) *wire.Message {
	return wire.NewMessage(f.registry, evRegistryGlobal).PutUint(g.Name).PutString(g.Interface).PutUint(g.Version)
}

func (f *fakeCompositor) Flush() error {
	f.flushed = len(f.sent)
	return nil
}

func (f *fakeCompositor) ReadMessages() ([]*wire.Message, error) {
	if f.flushed < len(f.sent) {
		f.unflushedReads++
	}
	if f.interrupted {
		f.interrupted = false
		return nil, wire.ErrInterrupted
	}
	if len(f.pending) == 0 {
		return nil, io.EOF
	}
	msgs := f.pending
	f.pending = nil
	return msgs, nil
}

func (f *fakeCompositor) FDs() *wire.FDQueue {
	return &f.fds
}

func (f *fakeCompositor) Interrupt() error {
	f.interrupted = true
	return nil
}

func (f *fakeCompositor) Close() error {
	return nil
}

func (f *fakeCompositor) queue(msgs ...*wire.Message) {
	f.pending = append(f.pending, msgs...)
}

// requests returns the requests sent to object with opcode, in order.
func (f *fakeCompositor) requests(object uint32, opcode uint16) []*wire.Message {
	var out []*wire.Message
	for _, m := range f.sent {
		if m.Object == object && m.Opcode == opcode {
			out = append(out, m)
		}
	}
	return out
}

// bound returns the new object id of the bind request for iface.
func (f *fakeCompositor) bound(iface string) (id, version uint32, ok bool) {
	for _, m := range f.requests(f.registry, opRegistryBind) {
		r := wire.NewReader(m, nil)
		_ = r.Uint()
		name := r.String()
		version = r.Uint()
		id = r.Uint()
		if name == iface {
			return id, version, true
		}
	}
	return 0, 0, false
}

// dispatch routes whatever is queued.
func (f *fakeCompositor) dispatch(c *Client) {
	f.t.Helper()
	require.NoError(f.t, c.Dispatch(testContext(f.t)))
}

func (f *fakeCompositor) reset() {
	f.sent = nil
	f.flushed = 0
}

func firstUint(m *wire.Message) uint32 {
	return wire.NewReader(m, nil).Uint()
}

// testContext stands in for testing.T.Context (Go 1.24+): it is cancelled
// when the test finishes.
func testContext(t testing.TB) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return ctx
}
