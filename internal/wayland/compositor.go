package wayland

import (
	"github.com/matjam/shmpaper/internal/wire"
	"github.com/pkg/errors"
)

// Compositor creates surfaces.
type Compositor struct {
	proxy
}

func (c *Compositor) Interface() string {
	return InterfaceCompositor
}

func (c *Compositor) CreateSurface() *Surface {
	cl := c.client
	s := &Surface{proxy: proxy{id: cl.newID(), version: c.version, client: cl}}
	cl.register(s)
	cl.send(InterfaceCompositor, wire.NewMessage(c.id, opCompositorCreateSurface).PutNewID(s.id))
	return s
}

func (c *Compositor) dispatch(*wire.Message) error {
	return nil
}

// Surface is a wl_surface. Content is attached only by the Window that owns
// it.
type Surface struct {
	proxy
	destroyed bool

	// Outputs lists the ids of outputs the surface is currently shown on.
	Outputs []uint32
}

func (s *Surface) Interface() string {
	return InterfaceSurface
}

func (s *Surface) attach(b *Buffer, x, y int32) {
	var id uint32
	if b != nil {
		id = b.id
		b.busy = true
	}
	s.client.send(InterfaceSurface, wire.NewMessage(s.id, opSurfaceAttach).PutObject(id).PutInt(x).PutInt(y))
}

// Damage marks a region in surface coordinates as changed.
func (s *Surface) Damage(x, y, w, h int32) {
	s.client.send(InterfaceSurface, wire.NewMessage(s.id, opSurfaceDamage).
		PutInt(x).PutInt(y).PutInt(w).PutInt(h))
}

// DamageBuffer marks a region in buffer coordinates as changed. It needs
// wl_surface v4; older surfaces fall back to Damage.
func (s *Surface) DamageBuffer(x, y, w, h int32) {
	if s.version < 4 {
		s.Damage(x, y, w, h)
		return
	}
	s.client.send(InterfaceSurface, wire.NewMessage(s.id, opSurfaceDamageBuffer).
		PutInt(x).PutInt(y).PutInt(w).PutInt(h))
}

func (s *Surface) Commit() {
	s.client.send(InterfaceSurface, wire.NewMessage(s.id, opSurfaceCommit))
}

func (s *Surface) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.client.send(InterfaceSurface, wire.NewMessage(s.id, opSurfaceDestroy))
}

func (s *Surface) dispatch(msg *wire.Message) error {
	r := wire.NewReader(msg, nil)
	switch msg.Opcode {
	case evSurfaceEnter:
		out := r.Object()
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode wl_surface.enter")
		}
		s.Outputs = append(s.Outputs, out)
	case evSurfaceLeave:
		out := r.Object()
		if err := r.Err(); err != nil {
			return errors.Wrap(err, "decode wl_surface.leave")
		}
		for i, id := range s.Outputs {
			if id == out {
				s.Outputs = append(s.Outputs[:i], s.Outputs[i+1:]...)
				break
			}
		}
	}
	return nil
}
