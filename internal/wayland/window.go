package wayland

import (
	"github.com/charmbracelet/log"
	"github.com/matjam/shmpaper/internal/metrics"
	"github.com/pkg/errors"
)

// State is a step in a window's lifecycle.
type State int

const (
	StateCreated State = iota
	StateShellAttached
	StateAwaitingConfigure
	StateConfigured
	StatePresenting
	StateDestroyed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateShellAttached:
		return "shell-attached"
	case StateAwaitingConfigure:
		return "awaiting-configure"
	case StateConfigured:
		return "configured"
	case StatePresenting:
		return "presenting"
	case StateDestroyed:
		return "destroyed"
	}
	return "unknown"
}

// Role is the shell overlay a window is placed with. It is either a
// LayerRole or a ToplevelRole.
type Role interface {
	attach(w *Window) error
}

// LayerRole places the window with wlr layer-shell.
type LayerRole struct {
	Shell *LayerShell
	// Output may be nil to let the compositor choose.
	Output                *Output
	Layer                 Layer
	Namespace             string
	Anchor                Anchor
	Width, Height         uint32
	Margins               Margins
	ExclusiveZone         int32
	KeyboardInteractivity KeyboardInteractivity
}

func (r LayerRole) attach(w *Window) error {
	if r.Shell == nil {
		return errors.New("layer role without a layer shell")
	}
	ls := r.Shell.getLayerSurface(w.surface, r.Output, r.Layer, r.Namespace)
	ls.setSize(r.Width, r.Height)
	ls.setAnchor(r.Anchor)
	if r.Margins != (Margins{}) {
		ls.setMargin(r.Margins)
	}
	if r.ExclusiveZone != 0 {
		ls.setExclusiveZone(r.ExclusiveZone)
	}
	ls.setKeyboardInteractivity(r.KeyboardInteractivity)

	ls.onConfigure = w.configure
	ls.onClosed = w.closed
	w.layer = ls
	return nil
}

// ToplevelRole places the window as an xdg-shell toplevel.
type ToplevelRole struct {
	WmBase *XdgWmBase
	Title  string
	AppID  string
}

func (r ToplevelRole) attach(w *Window) error {
	if r.WmBase == nil {
		return errors.New("toplevel role without xdg_wm_base")
	}
	xs := r.WmBase.getXdgSurface(w.surface)
	tl := xs.getToplevel()
	if r.Title != "" {
		tl.setTitle(r.Title)
	}
	if r.AppID != "" {
		tl.setAppID(r.AppID)
	}

	xs.onConfigure = func(serial uint32) {
		w.configure(serial, uint32(max(tl.width, 0)), uint32(max(tl.height, 0)))
	}
	tl.onClose = w.closed
	w.xdgSurface, w.toplevel = xs, tl
	return nil
}

// Window is a surface with exactly one shell overlay. It owns the surface
// and decides when content may be attached: never before the first
// configure has been acknowledged.
type Window struct {
	surface *Surface
	state   State

	layer      *LayerSurface
	xdgSurface *XdgSurface
	toplevel   *XdgToplevel

	buffer        *Buffer
	configures    int
	width, height uint32

	// OnConfigure runs after each configure has been acknowledged.
	OnConfigure func(width, height uint32)
	// OnClose runs when the compositor asks the window to go away.
	OnClose func()
}

// NewWindow creates a surface and gives it role.
func NewWindow(comp *Compositor, role Role) (*Window, error) {
	if role == nil {
		return nil, errors.New("window needs a role")
	}
	w := &Window{surface: comp.CreateSurface(), state: StateCreated}
	if err := role.attach(w); err != nil {
		w.surface.Destroy()
		w.state = StateDestroyed
		return nil, err
	}
	w.state = StateShellAttached
	return w, nil
}

func (w *Window) State() State {
	return w.state
}

func (w *Window) Surface() *Surface {
	return w.surface
}

// Size returns the last size hint from the compositor. Zero means the
// client picks.
func (w *Window) Size() (width, height uint32) {
	return w.width, w.height
}

// Configures counts acknowledged configure events.
func (w *Window) Configures() int {
	return w.configures
}

// Map performs the initial bufferless commit that makes the compositor send
// the first configure.
func (w *Window) Map() error {
	if w.state != StateShellAttached {
		return errors.Errorf("map in state %s", w.state)
	}
	w.surface.Commit()
	w.state = StateAwaitingConfigure
	return nil
}

// Present shows buf. Before the first configure it is only held and gets
// attached once the compositor has configured the window.
func (w *Window) Present(buf *Buffer) error {
	if w.state == StateDestroyed {
		return errors.Wrap(ErrDestroyed, "present")
	}
	if buf == nil {
		return errors.New("present without a buffer")
	}
	w.buffer = buf
	if w.configures > 0 {
		w.commitBuffer()
	}
	return nil
}

func (w *Window) commitBuffer() {
	b := w.buffer
	w.surface.attach(b, 0, 0)
	w.surface.DamageBuffer(0, 0, b.Width, b.Height)
	w.surface.Commit()
	w.state = StatePresenting
}

func (w *Window) configure(serial, width, height uint32) {
	if w.state == StateDestroyed {
		return
	}
	if w.layer != nil {
		w.layer.ackConfigure(serial)
	} else {
		w.xdgSurface.ackConfigure(serial)
	}
	w.configures++
	metrics.ConfiguresAcked.Inc()
	w.width, w.height = width, height
	log.Debug("configure acknowledged", "serial", serial, "width", width, "height", height)

	if w.buffer != nil {
		w.commitBuffer()
	} else {
		w.state = StateConfigured
	}
	if w.OnConfigure != nil {
		w.OnConfigure(width, height)
	}
}

func (w *Window) closed() {
	log.Info("compositor closed the window")
	if w.OnClose != nil {
		w.OnClose()
	}
}

// Destroy tears down the overlay and then the surface.
func (w *Window) Destroy() {
	if w.state == StateDestroyed {
		return
	}
	if w.layer != nil {
		w.layer.destroy()
	}
	if w.toplevel != nil {
		w.toplevel.destroy()
		w.xdgSurface.destroy()
	}
	w.surface.Destroy()
	w.state = StateDestroyed
}
