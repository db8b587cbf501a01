package wayland

import (
	"fmt"

	"github.com/charmbracelet/log"
)

// VersionRange is the span of interface versions a caller can speak.
type VersionRange struct {
	Min, Max uint32
}

func (r VersionRange) String() string {
	return fmt.Sprintf("[%d,%d]", r.Min, r.Max)
}

// clamp returns the version to bind for an advertised one.
func (r VersionRange) clamp(advertised uint32) uint32 {
	return min(advertised, r.Max)
}

// selectGlobal picks the first global for iface whose version reaches
// r.Min.
func (c *Client) selectGlobal(iface string, r VersionRange) (Global, error) {
	if r.Min > r.Max {
		return Global{}, &CapabilityError{Interface: iface, Range: r, Err: ErrInvalidVersionRange}
	}
	var advertised []uint32
	for _, g := range c.globals {
		if g.Interface != iface {
			continue
		}
		if g.Version >= r.Min {
			return g, nil
		}
		advertised = append(advertised, g.Version)
	}
	if len(advertised) == 0 {
		return Global{}, &CapabilityError{Interface: iface, Range: r, Err: ErrCapabilityUnavailable}
	}
	return Global{}, &CapabilityError{Interface: iface, Range: r, Advertised: advertised, Err: ErrVersionUnsupported}
}

// bindGlobal sends wl_registry.bind for g and returns the id and version of
// the new object. The caller registers the proxy.
func (c *Client) bindGlobal(g Global, r VersionRange) proxy {
	p := proxy{id: c.newID(), version: r.clamp(g.Version), client: c}
	c.Registry().bind(g, p.version, p.id)
	log.Debug("bound global", "interface", g.Interface, "name", g.Name, "id", p.id, "version", p.version)
	return p
}

func (c *Client) bind(iface string, r VersionRange) (proxy, error) {
	g, err := c.selectGlobal(iface, r)
	if err != nil {
		return proxy{}, err
	}
	return c.bindGlobal(g, r), nil
}

// BindCompositor binds wl_compositor.
func (c *Client) BindCompositor(r VersionRange) (*Compositor, error) {
	p, err := c.bind(InterfaceCompositor, r)
	if err != nil {
		return nil, err
	}
	comp := &Compositor{proxy: p}
	c.register(comp)
	return comp, nil
}

// BindShm binds wl_shm. Format announcements follow on the next dispatch.
func (c *Client) BindShm(r VersionRange) (*Shm, error) {
	p, err := c.bind(InterfaceShm, r)
	if err != nil {
		return nil, err
	}
	shm := &Shm{proxy: p}
	c.register(shm)
	return shm, nil
}

func (c *Client) BindSeat(r VersionRange) (*Seat, error) {
	p, err := c.bind(InterfaceSeat, r)
	if err != nil {
		return nil, err
	}
	seat := &Seat{proxy: p}
	c.register(seat)
	return seat, nil
}

func (c *Client) BindXdgWmBase(r VersionRange) (*XdgWmBase, error) {
	p, err := c.bind(InterfaceXdgWmBase, r)
	if err != nil {
		return nil, err
	}
	wm := &XdgWmBase{proxy: p}
	c.register(wm)
	return wm, nil
}

func (c *Client) BindLayerShell(r VersionRange) (*LayerShell, error) {
	p, err := c.bind(InterfaceLayerShell, r)
	if err != nil {
		return nil, err
	}
	ls := &LayerShell{proxy: p}
	c.register(ls)
	return ls, nil
}

// BindOutput binds one specific wl_output global, typically one handed to
// OnGlobal.
func (c *Client) BindOutput(g Global, r VersionRange) (*Output, error) {
	if g.Interface != InterfaceOutput {
		return nil, &CapabilityError{Interface: InterfaceOutput, Range: r, Err: ErrCapabilityUnavailable}
	}
	if r.Min > r.Max {
		return nil, &CapabilityError{Interface: InterfaceOutput, Range: r, Err: ErrInvalidVersionRange}
	}
	if g.Version < r.Min {
		return nil, &CapabilityError{Interface: InterfaceOutput, Range: r, Advertised: []uint32{g.Version}, Err: ErrVersionUnsupported}
	}
	out := &Output{proxy: c.bindGlobal(g, r), Global: g.Name}
	c.register(out)
	return out, nil
}

// BindOutputs binds every output currently known that satisfies r.
// Outputs below r.Min are skipped with a warning.
func (c *Client) BindOutputs(r VersionRange) []*Output {
	var outs []*Output
	for _, g := range c.GlobalsFor(InterfaceOutput) {
		out, err := c.BindOutput(g, r)
		if err != nil {
			log.Warn("skipping output", "name", g.Name, "err", err)
			continue
		}
		outs = append(outs, out)
	}
	return outs
}
