package wayland

import (
	"fmt"
	"strings"

	"github.com/matjam/shmpaper/internal/wire"
	"github.com/pkg/errors"
)

// Layer is the stacking layer of a layer surface.
type Layer uint32

const (
	LayerBackground Layer = 0
	LayerBottom     Layer = 1
	LayerTop        Layer = 2
	LayerOverlay    Layer = 3
)

var layerNames = []string{"background", "bottom", "top", "overlay"}

func (l Layer) String() string {
	if int(l) < len(layerNames) {
		return layerNames[l]
	}
	return fmt.Sprintf("layer(%d)", uint32(l))
}

// ParseLayer accepts the names printed by Layer.String.
func ParseLayer(s string) (Layer, error) {
	for i, n := range layerNames {
		if strings.EqualFold(s, n) {
			return Layer(i), nil
		}
	}
	return 0, errors.Errorf("unknown layer %q", s)
}

// Anchor is a bitmask of the edges a layer surface is attached to.
type Anchor uint32

const (
	AnchorTop    Anchor = 1
	AnchorBottom Anchor = 2
	AnchorLeft   Anchor = 4
	AnchorRight  Anchor = 8

	AnchorAll = AnchorTop | AnchorBottom | AnchorLeft | AnchorRight
)

// ParseAnchor reads a list such as "top,left" or "all".
func ParseAnchor(s string) (Anchor, error) {
	var a Anchor
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == '|' || r == ' ' }) {
		switch strings.ToLower(part) {
		case "top":
			a |= AnchorTop
		case "bottom":
			a |= AnchorBottom
		case "left":
			a |= AnchorLeft
		case "right":
			a |= AnchorRight
		case "all":
			a |= AnchorAll
		case "none":
		default:
			return 0, errors.Errorf("unknown anchor %q", part)
		}
	}
	return a, nil
}

// KeyboardInteractivity controls whether a layer surface takes keyboard
// focus.
type KeyboardInteractivity uint32

const (
	KeyboardNone      KeyboardInteractivity = 0
	KeyboardExclusive KeyboardInteractivity = 1
	KeyboardOnDemand  KeyboardInteractivity = 2
)

func ParseKeyboardInteractivity(s string) (KeyboardInteractivity, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "-", "_")) {
	case "none":
		return KeyboardNone, nil
	case "exclusive":
		return KeyboardExclusive, nil
	case "on_demand", "ondemand":
		return KeyboardOnDemand, nil
	}
	return 0, errors.Errorf("unknown keyboard interactivity %q", s)
}

// Margins are in surface-local coordinates.
type Margins struct {
	Top, Right, Bottom, Left int32
}

// LayerShell is the zwlr_layer_shell_v1 global.
type LayerShell struct {
	proxy
}

func (l *LayerShell) Interface() string {
	return InterfaceLayerShell
}

func (l *LayerShell) getLayerSurface(s *Surface, output *Output, layer Layer, namespace string) *LayerSurface {
	cl := l.client
	ls := &LayerSurface{proxy: proxy{id: cl.newID(), version: l.version, client: cl}}
	cl.register(ls)
	var out uint32
	if output != nil {
		out = output.id
	}
	cl.send(InterfaceLayerShell, wire.NewMessage(l.id, opLayerShellGetLayerSurface).
		PutNewID(ls.id).
		PutObject(s.id).
		PutObject(out).
		PutUint(uint32(layer)).
		PutString(namespace))
	return ls
}

// Destroy needs v3; the shell object itself is otherwise kept until
// disconnect.
func (l *LayerShell) Destroy() {
	if !l.client.objects.live(l.id) {
		return
	}
	if l.version >= 3 {
		l.client.send(InterfaceLayerShell, wire.NewMessage(l.id, opLayerShellDestroy))
	}
	l.client.objects.retire(l)
}

func (l *LayerShell) dispatch(*wire.Message) error {
	return nil
}

// LayerSurface is a zwlr_layer_surface_v1.
type LayerSurface struct {
	proxy
	onConfigure func(serial uint32, width, height uint32)
	onClosed    func()
}

func (s *LayerSurface) Interface() string {
	return InterfaceLayerSurface
}

func (s *LayerSurface) setSize(w, h uint32) {
	s.client.send(InterfaceLayerSurface, wire.NewMessage(s.id, opLayerSurfaceSetSize).PutUint(w).PutUint(h))
}

func (s *LayerSurface) setAnchor(a Anchor) {
	s.client.send(InterfaceLayerSurface, wire.NewMessage(s.id, opLayerSurfaceSetAnchor).PutUint(uint32(a)))
}

func (s *LayerSurface) setExclusiveZone(z int32) {
	s.client.send(InterfaceLayerSurface, wire.NewMessage(s.id, opLayerSurfaceSetExclusiveZone).PutInt(z))
}

func (s *LayerSurface) setMargin(m Margins) {
	s.client.send(InterfaceLayerSurface, wire.NewMessage(s.id, opLayerSurfaceSetMargin).
		PutInt(m.Top).PutInt(m.Right).PutInt(m.Bottom).PutInt(m.Left))
}

func (s *LayerSurface) setKeyboardInteractivity(k KeyboardInteractivity) {
	// on_demand arrived in v4; v3 only knows a boolean
	if k == KeyboardOnDemand && s.version < 4 {
		k = KeyboardExclusive
	}
	s.client.send(InterfaceLayerSurface, wire.NewMessage(s.id, opLayerSurfaceSetKeyboardInteractivity).PutUint(uint32(k)))
}

func (s *LayerSurface) ackConfigure(serial uint32) {
	s.client.send(InterfaceLayerSurface, wire.NewMessage(s.id, opLayerSurfaceAckConfigure).PutUint(serial))
}

func (s *LayerSurface) destroy() {
	s.client.send(InterfaceLayerSurface, wire.NewMessage(s.id, opLayerSurfaceDestroy))
}

func (s *LayerSurface) dispatch(msg *wire.Message) error {
	r := wire.NewReader(msg, nil)
	switch msg.Opcode {
	case evLayerSurfaceConfigure:
		serial, w, h := r.Uint(), r.Uint(), r.Uint()
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode zwlr_layer_surface_v1.configure")
		}
		if s.onConfigure != nil {
			s.onConfigure(serial, w, h)
		}
	case evLayerSurfaceClosed:
		if s.onClosed != nil {
			s.onClosed()
		}
	}
	return nil
}
