package wayland

import (
	"github.com/charmbracelet/log"
	"golang.org/x/sys/unix"
	"github.com/matjam/shmpaper/internal/metrics"
	"github.com/matjam/shmpaper/internal/wire"
)

// Object is a client-side proxy for a protocol object. The set of
// implementations is closed: only the proxies in this package can be
// registered, and each decodes its own events into typed values.
type Object interface {
	ID() uint32
	Interface() string
	Version() uint32
	dispatch(msg *wire.Message) error
}

// proxy carries the identity shared by every protocol object.
type proxy struct {
	id      uint32
	version uint32
	client  *Client
}

func (p *proxy) ID() uint32 {
	return p.id
}

func (p *proxy) Version() uint32 {
	return p.version
}

// fdEvents lists, per interface, the events that carry file descriptors and
// how many.
var fdEvents = map[string]map[uint16]int{
	InterfaceKeyboard: {evKeyboardKeymap: 1},
}

// zombie stands in for an object the client destroyed until the compositor
// confirms with delete_id. Fds on its in-flight events are claimed and
// closed.
type zombie struct {
	iface string
}

// objectMap routes events by object id. It is only touched from the
// dispatching goroutine.
type objectMap struct {
	byID    map[uint32]Object
	zombies map[uint32]zombie
}

func newObjectMap() objectMap {
	return objectMap{
		byID:    make(map[uint32]Object),
		zombies: make(map[uint32]zombie),
	}
}

func (m *objectMap) register(obj Object) {
	m.byID[obj.ID()] = obj
}

func (m *objectMap) get(id uint32) Object {
	return m.byID[id]
}

func (m *objectMap) live(id uint32) bool {
	_, ok := m.byID[id]
	return ok
}

// interfaceOf names the object behind id, live or destroyed.
func (m *objectMap) interfaceOf(id uint32) (string, bool) {
	if obj := m.byID[id]; obj != nil {
		return obj.Interface(), true
	}
	z, ok := m.zombies[id]
	return z.iface, ok
}

// retire stops routing events to obj after the client destroyed it. The id
// stays reserved until delete_id.
func (m *objectMap) retire(obj Object) {
	if _, ok := m.byID[obj.ID()]; !ok {
		return
	}
	delete(m.byID, obj.ID())
	m.zombies[obj.ID()] = zombie{iface: obj.Interface()}
}

// remove forgets id for good; it is called for delete_id.
func (m *objectMap) remove(id uint32) {
	delete(m.byID, id)
	delete(m.zombies, id)
}

func (m *objectMap) len() int {
	return len(m.byID)
}

// route hands msg to its object. Events for destroyed or unknown ids are
// expected when the compositor races a destroy, so they are dropped; any fds
// they carried are closed.
func (m *objectMap) route(msg *wire.Message, fds *wire.FDQueue) error {
	obj := m.get(msg.Object)
	if obj == nil {
		z, ok := m.zombies[msg.Object]
		if ok {
			for i := 0; i < fdEvents[z.iface][msg.Opcode]; i++ {
				if fd, ok := fds.Pop(); ok {
					_ = unix.Close(fd)
				}
			}
		}
		log.Debug("dropping event for destroyed object", "id", msg.Object, "interface", z.iface, "opcode", msg.Opcode)
		metrics.EventsDropped.Inc()
		return nil
	}
	metrics.EventsDispatched.WithLabelValues(obj.Interface()).Inc()

	return obj.dispatch(msg)
}
