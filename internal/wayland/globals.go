package wayland

import (
	"context"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/matjam/shmpaper/internal/wire"
	"github.com/pkg/errors"
)

// Global is a capability announced by the compositor. It is a discovery
// record only; binding it creates a separate proxy.
type Global struct {
	Name      uint32 `json:"name"`
	Interface string `json:"interface"`
	Version   uint32 `json:"version"`
}

// Registry receives global announcements and binds them.
type Registry struct {
	proxy
}

func (r *Registry) Interface() string {
	return InterfaceRegistry
}

// Registry returns the client's registry, creating it on first use.
func (c *Client) Registry() *Registry {
	if c.registry == nil {
		c.registry = &Registry{proxy: proxy{id: c.newID(), version: 1, client: c}}
		c.register(c.registry)
		c.send(InterfaceDisplay, wire.NewMessage(displayID, opDisplayGetRegistry).PutNewID(c.registry.id))
	}
	return c.registry
}

// Discover lists the globals. It creates the registry if needed and then
// waits for a full round trip, so the result holds every global the
// compositor had announced when it processed the sync. Globals announced
// later keep arriving through OnGlobal and Globals.
func (c *Client) Discover(ctx context.Context) ([]Global, error) {
	c.Registry()
	if err := c.Roundtrip(ctx); err != nil {
		return nil, errors.Wrap(err, "global discovery")
	}
	return c.Globals(), nil
}

// Globals returns a snapshot of the currently known globals in
// announcement order.
func (c *Client) Globals() []Global {
	return slices.Clone(c.globals)
}

// GlobalsFor returns every known global implementing iface, e.g. all
// outputs.
func (c *Client) GlobalsFor(iface string) []Global {
	var out []Global
	for _, g := range c.globals {
		if g.Interface == iface {
			out = append(out, g)
		}
	}
	return out
}

func (r *Registry) bind(g Global, version, id uint32) {
	r.client.send(InterfaceRegistry, wire.NewMessage(r.id, opRegistryBind).
		PutUint(g.Name).
		PutString(g.Interface).
		PutUint(version).
		PutNewID(id))
}

func (r *Registry) dispatch(msg *wire.Message) error {
	c := r.client
	rd := wire.NewReader(msg, nil)
	switch msg.Opcode {
	case evRegistryGlobal:
		g := Global{Name: rd.Uint(), Interface: rd.String(), Version: rd.Uint()}
		if err := rd.Err(); err != nil {
			return errors.Wrap(err, "decode wl_registry.global")
		}
		log.Debug("global announced", "name", g.Name, "interface", g.Interface, "version", g.Version)
		c.globals = append(c.globals, g)
		if c.OnGlobal != nil {
			c.OnGlobal(g)
		}
	case evRegistryGlobalRemove:
		name := rd.Uint()
		if err := rd.Err(); err != nil {
			return errors.Wrap(err, "decode wl_registry.global_remove")
		}
		i := slices.IndexFunc(c.globals, func(g Global) bool { return g.Name == name })
		if i < 0 {
			return nil
		}
		g := c.globals[i]
		c.globals = slices.Delete(c.globals, i, i+1)
		log.Debug("global removed", "name", g.Name, "interface", g.Interface)
		if c.OnGlobalRemove != nil {
			c.OnGlobalRemove(g)
		}
	}
	return nil
}
