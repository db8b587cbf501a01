package wayland

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/shmpaper/internal/metrics"
	"github.com/matjam/shmpaper/internal/wire"
	"github.com/pkg/errors"
)

// XdgWmBase is the xdg_wm_base global. It answers pings on its own.
type XdgWmBase struct {
	proxy
	pongs int
}

// Pongs counts answered pings.
func (w *XdgWmBase) Pongs() int {
	return w.pongs
}

func (w *XdgWmBase) Interface() string {
	return InterfaceXdgWmBase
}

func (w *XdgWmBase) getXdgSurface(s *Surface) *XdgSurface {
	cl := w.client
	xs := &XdgSurface{proxy: proxy{id: cl.newID(), version: w.version, client: cl}}
	cl.register(xs)
	cl.send(InterfaceXdgWmBase, wire.NewMessage(w.id, opXdgWmBaseGetXdgSurface).PutNewID(xs.id).PutObject(s.id))
	return xs
}

// Destroy must follow the destruction of every xdg_surface created from w.
func (w *XdgWmBase) Destroy() {
	if !w.client.objects.live(w.id) {
		return
	}
	w.client.send(InterfaceXdgWmBase, wire.NewMessage(w.id, opXdgWmBaseDestroy))
	w.client.objects.retire(w)
}

func (w *XdgWmBase) dispatch(msg *wire.Message) error {
	if msg.Opcode != evXdgWmBasePing {
		return nil
	}
	r := wire.NewReader(msg, nil)
	serial := r.Uint()
	if err := r.Err(); err != nil {
		return errors.Wrap(err, "decode xdg_wm_base.ping")
	}
	log.Debug("ping", "serial", serial)
	w.client.send(InterfaceXdgWmBase, wire.NewMessage(w.id, opXdgWmBasePong).PutUint(serial))
	w.pongs++
	metrics.PingsAnswered.Inc()
	return nil
}

// XdgSurface is the xdg_surface half of a toplevel window.
type XdgSurface struct {
	proxy
	onConfigure func(serial uint32)
}

func (s *XdgSurface) Interface() string {
	return InterfaceXdgSurface
}

func (s *XdgSurface) getToplevel() *XdgToplevel {
	cl := s.client
	t := &XdgToplevel{proxy: proxy{id: cl.newID(), version: s.version, client: cl}}
	cl.register(t)
	cl.send(InterfaceXdgSurface, wire.NewMessage(s.id, opXdgSurfaceGetToplevel).PutNewID(t.id))
	return t
}

func (s *XdgSurface) ackConfigure(serial uint32) {
	s.client.send(InterfaceXdgSurface, wire.NewMessage(s.id, opXdgSurfaceAckConfigure).PutUint(serial))
}

func (s *XdgSurface) destroy() {
	s.client.send(InterfaceXdgSurface, wire.NewMessage(s.id, opXdgSurfaceDestroy))
}

func (s *XdgSurface) dispatch(msg *wire.Message) error {
	if msg.Opcode != evXdgSurfaceConfigure {
		return nil
	}
	r := wire.NewReader(msg, nil)
	serial := r.Uint()
	if err := r.Err(); err != nil {
		return errors.Wrap(err, "decode xdg_surface.configure")
	}
	if s.onConfigure != nil {
		s.onConfigure(serial)
	}
	return nil
}

// XdgToplevel carries the size hint and close request of a toplevel.
type XdgToplevel struct {
	proxy
	width, height int32
	states        []byte
	onClose       func()
}

func (t *XdgToplevel) Interface() string {
	return InterfaceXdgToplevel
}

func (t *XdgToplevel) setTitle(title string) {
	t.client.send(InterfaceXdgToplevel, wire.NewMessage(t.id, opXdgToplevelSetTitle).PutString(title))
}

func (t *XdgToplevel) setAppID(id string) {
	t.client.send(InterfaceXdgToplevel, wire.NewMessage(t.id, opXdgToplevelSetAppID).PutString(id))
}

func (t *XdgToplevel) destroy() {
	t.client.send(InterfaceXdgToplevel, wire.NewMessage(t.id, opXdgToplevelDestroy))
}

func (t *XdgToplevel) dispatch(msg *wire.Message) error {
	r := wire.NewReader(msg, nil)
	switch msg.Opcode {
	case evXdgToplevelConfigure:
		t.width, t.height = r.Int(), r.Int()
		t.states = r.Array()
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode xdg_toplevel.configure")
		}
	case evXdgToplevelClose:
		if t.onClose != nil {
			t.onClose()
		}
	}
	return nil
}
