package wayland

import (
	"github.com/matjam/shmpaper/internal/wire"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Capability is a wl_seat capability bitmask.
type Capability uint32

const (
	CapabilityPointer  Capability = 1
	CapabilityKeyboard Capability = 2
	CapabilityTouch    Capability = 4
)

func (c Capability) Has(bit Capability) bool {
	return c&bit != 0
}

// Seat is a wl_seat.
type Seat struct {
	proxy
	Name         string
	capabilities Capability

	// OnCapabilities receives the previous and the new capability mask.
	OnCapabilities func(old, caps Capability)
}

func (s *Seat) Interface() string {
	return InterfaceSeat
}

func (s *Seat) Capabilities() Capability {
	return s.capabilities
}

// GetKeyboard creates the keyboard object for this seat.
func (s *Seat) GetKeyboard() *Keyboard {
	cl := s.client
	k := &Keyboard{proxy: proxy{id: cl.newID(), version: s.version, client: cl}}
	cl.register(k)
	cl.send(InterfaceSeat, wire.NewMessage(s.id, opSeatGetKeyboard).PutNewID(k.id))
	return k
}

// Release destroys the seat. Only seat v5 has the request; older seats are
// dropped locally.
func (s *Seat) Release() {
	if !s.client.objects.live(s.id) {
		return
	}
	if s.version >= 5 {
		s.client.send(InterfaceSeat, wire.NewMessage(s.id, opSeatRelease))
	}
	s.client.objects.retire(s)
}

func (s *Seat) dispatch(msg *wire.Message) error {
	r := wire.NewReader(msg, nil)
	switch msg.Opcode {
	case evSeatCapabilities:
		caps := Capability(r.Uint())
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode wl_seat.capabilities")
		}
		old := s.capabilities
		s.capabilities = caps
		if s.OnCapabilities != nil {
			s.OnCapabilities(old, caps)
		}
	case evSeatName:
		s.Name = r.String()
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode wl_seat.name")
		}
	}
	return nil
}

// KeyState is pressed or released.
type KeyState uint32

const (
	KeyReleased KeyState = 0
	KeyPressed  KeyState = 1
)

func (s KeyState) String() string {
	if s == KeyPressed {
		return "pressed"
	}
	return "released"
}

// KeyEvent is a decoded wl_keyboard.key. Code is the evdev scancode.
type KeyEvent struct {
	Serial uint32
	Time   uint32
	Code   uint32
	State  KeyState
}

// Modifiers is a decoded wl_keyboard.modifiers.
type Modifiers struct {
	Serial                           uint32
	Depressed, Latched, Locked, Group uint32
}

// Keyboard is a wl_keyboard. Keymaps are not parsed; the fd is closed on
// arrival.
type Keyboard struct {
	proxy
	released bool

	Focus      uint32
	Modifiers  Modifiers
	RepeatRate int32
	RepeatWait int32

	OnKey   func(KeyEvent)
	OnEnter func(serial, surface uint32)
	OnLeave func(serial, surface uint32)
}

func (k *Keyboard) Interface() string {
	return InterfaceKeyboard
}

// Release drops the keyboard. The release request exists from v3; older
// keyboards are only forgotten locally.
func (k *Keyboard) Release() {
	if k.released {
		return
	}
	k.released = true
	if k.version >= 3 {
		k.client.send(InterfaceKeyboard, wire.NewMessage(k.id, opKeyboardRelease))
	}
	k.client.objects.retire(k)
}

func (k *Keyboard) dispatch(msg *wire.Message) error {
	r := wire.NewReader(msg, k.client.t.FDs())
	switch msg.Opcode {
	case evKeyboardKeymap:
		_ = r.Uint()
		fd := r.FD()
		_ = r.Uint()
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode wl_keyboard.keymap")
		}
		_ = unix.Close(fd)
	case evKeyboardEnter:
		serial, surface := r.Uint(), r.Object()
		_ = r.Array()
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode wl_keyboard.enter")
		}
		k.Focus = surface
		if k.OnEnter != nil {
			k.OnEnter(serial, surface)
		}
	case evKeyboardLeave:
		serial, surface := r.Uint(), r.Object()
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode wl_keyboard.leave")
		}
		k.Focus = 0
		if k.OnLeave != nil {
			k.OnLeave(serial, surface)
		}
	case evKeyboardKey:
		ev := KeyEvent{Serial: r.Uint(), Time: r.Uint(), Code: r.Uint(), State: KeyState(r.Uint())}
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode wl_keyboard.key")
		}
		if k.OnKey != nil {
			k.OnKey(ev)
		}
	case evKeyboardModifiers:
		k.Modifiers = Modifiers{
			Serial:    r.Uint(),
			Depressed: r.Uint(),
			Latched:   r.Uint(),
			Locked:    r.Uint(),
			Group:     r.Uint(),
		}
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode wl_keyboard.modifiers")
		}
	case evKeyboardRepeatInfo:
		k.RepeatRate, k.RepeatWait = r.Int(), r.Int()
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode wl_keyboard.repeat_info")
		}
	}
	return nil
}
