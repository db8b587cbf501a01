package wayland

import (
	"github.com/charmbracelet/log"
)

// KeyEscape is the evdev code for Escape.
const KeyEscape uint32 = 1

// InputRouter owns the keyboard of one seat and the running flag. A press
// or release of the stop key clears the flag.
type InputRouter struct {
	seat     *Seat
	keyboard *Keyboard
	stopKey  uint32
	running  bool

	// OnKey sees every key event, including the stop key.
	OnKey func(KeyEvent)
}

// NewInputRouter subscribes to seat's capability changes. The keyboard is
// only requested once the seat announces one.
func NewInputRouter(seat *Seat, stopKey uint32) *InputRouter {
	ir := &InputRouter{seat: seat, stopKey: stopKey, running: true}
	seat.OnCapabilities = ir.capabilities
	return ir
}

// Running is false once the stop key was seen or Stop was called.
func (ir *InputRouter) Running() bool {
	return ir.running
}

func (ir *InputRouter) Stop() {
	ir.running = false
}

// Keyboard returns the current keyboard, nil when the seat has none.
func (ir *InputRouter) Keyboard() *Keyboard {
	return ir.keyboard
}

func (ir *InputRouter) capabilities(old, caps Capability) {
	hasKeyboard := caps.Has(CapabilityKeyboard)
	switch {
	case hasKeyboard && ir.keyboard == nil:
		log.Debug("seat gained a keyboard", "seat", ir.seat.Name)
		ir.keyboard = ir.seat.GetKeyboard()
		ir.keyboard.OnKey = ir.key
	case !hasKeyboard && ir.keyboard != nil:
		log.Debug("seat lost its keyboard", "seat", ir.seat.Name)
		ir.keyboard.Release()
		ir.keyboard = nil
	}
}

func (ir *InputRouter) key(ev KeyEvent) {
	log.Debug("key", "code", ev.Code, "state", ev.State)
	if ir.OnKey != nil {
		ir.OnKey(ev)
	}
	if ev.Code == ir.stopKey {
		log.Info("stop key received", "code", ev.Code)
		ir.running = false
	}
}
