// Package session runs shmpaper against a compositor: it binds the globals,
// maps the window, presents the gradient and dispatches events until the
// stop key, a stop command or the compositor ends it.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/matjam/shmpaper/internal/gradient"
	"github.com/matjam/shmpaper/internal/ipc"
	"github.com/matjam/shmpaper/internal/shm"
	"github.com/matjam/shmpaper/internal/wayland"
)

// Version ranges this client speaks.
var (
	CompositorVersions = wayland.VersionRange{Min: 1, Max: 5}
	ShmVersions        = wayland.VersionRange{Min: 1, Max: 1}
	SeatVersions       = wayland.VersionRange{Min: 1, Max: 5}
	LayerShellVersions = wayland.VersionRange{Min: 3, Max: 4}
	XdgWmBaseVersions  = wayland.VersionRange{Min: 1, Max: 2}
	OutputVersions     = wayland.VersionRange{Min: 1, Max: 4}
)

type Session struct {
	sync.Mutex
	opts   Options
	client *wayland.Client
	cmds   chan ipc.Command
	status ipc.SessionStatus

	// owned by the Run goroutine
	closed     bool
	compositor *wayland.Compositor
	shm        *wayland.Shm
	seat       *wayland.Seat
	wmBase     *wayland.XdgWmBase
	layerShell *wayland.LayerShell
	outputs    []*wayland.Output
	input      *wayland.InputRouter
	window     *wayland.Window
	backing    *shm.Backing
	pool       *wayland.ShmPool
	buffer     *wayland.Buffer
}

// New prepares a session. Nothing is connected until Run.
func New(opts Options) *Session {
	return &Session{
		opts: opts,
		cmds: make(chan ipc.Command, 8),
	}
}

// NewWithClient runs the session over an existing client.
func NewWithClient(client *wayland.Client, opts Options) *Session {
	s := New(opts)
	s.client = client
	return s
}

// Status returns the snapshot published after the last dispatch cycle.
func (s *Session) Status() ipc.SessionStatus {
	s.Lock()
	defer s.Unlock()
	return s.status
}

// EnqueueCommand hands cmd to the loop and wakes it. Safe from any
// goroutine.
func (s *Session) EnqueueCommand(cmd ipc.Command) error {
	s.Lock()
	defer s.Unlock()

	select {
	case s.cmds <- cmd:
	default:
		return fmt.Errorf("command queue full, dropping %s", cmd.Type)
	}
	if s.client != nil {
		return s.client.Wake()
	}
	return nil
}

// Run connects if needed, sets up the window and dispatches until the
// session ends. The connection is closed on return.
func (s *Session) Run(ctx context.Context) error {
	if err := s.opts.Validate(); err != nil {
		return err
	}
	if s.client == nil {
		client, err := wayland.Connect(s.opts.Display)
		if err != nil {
			return err
		}
		s.Lock()
		s.client = client
		s.Unlock()
	}
	defer s.client.Close()
	defer s.teardown()

	if err := s.setup(ctx); err != nil {
		return err
	}

	log.Info("Running, press the stop key or run `shmpaper stop` to exit", "stop_key", s.opts.StopKey)
	for !s.closed && s.input.Running() {
		s.handleCommands()
		if !s.input.Running() {
			break
		}
		if err := s.client.Dispatch(ctx); err != nil {
			if ctx.Err() != nil {
				log.Info("Interrupted")
				s.input.Stop()
				return nil
			}
			return err
		}
		s.publish()
	}
	log.Info("Session finished")
	return nil
}

func (s *Session) setup(ctx context.Context) error {
	c := s.client
	globals, err := c.Discover(ctx)
	if err != nil {
		return err
	}
	log.Infof("Compositor announced %d globals", len(globals))

	if s.compositor, err = c.BindCompositor(CompositorVersions); err != nil {
		return err
	}
	if s.shm, err = c.BindShm(ShmVersions); err != nil {
		return err
	}
	if s.seat, err = c.BindSeat(SeatVersions); err != nil {
		return err
	}
	s.input = wayland.NewInputRouter(s.seat, s.opts.StopKey)

	s.outputs = c.BindOutputs(OutputVersions)
	c.OnGlobal = s.globalAdded
	c.OnGlobalRemove = s.globalRemoved

	role, err := s.role()
	if err != nil {
		return err
	}
	if s.window, err = wayland.NewWindow(s.compositor, role); err != nil {
		return err
	}
	s.window.OnClose = func() { s.closed = true }
	if err := s.window.Map(); err != nil {
		return err
	}

	if err := s.createBuffer(); err != nil {
		return err
	}
	if err := s.window.Present(s.buffer); err != nil {
		return err
	}
	s.publish()
	return c.Flush()
}

func (s *Session) role() (wayland.Role, error) {
	var err error
	switch s.opts.Shell {
	case ShellXdg:
		if s.wmBase, err = s.client.BindXdgWmBase(XdgWmBaseVersions); err != nil {
			return nil, err
		}
		return wayland.ToplevelRole{WmBase: s.wmBase, Title: s.opts.Title, AppID: s.opts.AppID}, nil
	default:
		if s.layerShell, err = s.client.BindLayerShell(LayerShellVersions); err != nil {
			return nil, err
		}
		return wayland.LayerRole{
			Shell:                 s.layerShell,
			Layer:                 s.opts.Layer,
			Namespace:             s.opts.Namespace,
			Anchor:                s.opts.Anchor,
			Width:                 uint32(s.opts.Width),
			Height:                uint32(s.opts.Height),
			Margins:               s.opts.Margins,
			ExclusiveZone:         s.opts.ExclusiveZone,
			KeyboardInteractivity: s.opts.KeyboardInteractivity,
		}, nil
	}
}

func (s *Session) createBuffer() error {
	w, h := s.opts.Width, s.opts.Height
	stride := w * 4
	size := stride * h

	if !s.shm.Supports(wayland.FormatARGB8888) {
		return fmt.Errorf("compositor does not offer %s buffers", wayland.FormatARGB8888)
	}

	var err error
	if s.backing, err = shm.Allocate(size); err != nil {
		return err
	}
	if err := gradient.Fill(s.backing.Bytes(), w, h, stride); err != nil {
		return err
	}
	if s.pool, err = s.shm.CreatePool(s.backing, int32(size)); err != nil {
		return err
	}
	s.buffer, err = s.pool.CreateBuffer(0, int32(w), int32(h), int32(stride), wayland.FormatARGB8888)
	return err
}

func (s *Session) globalAdded(g wayland.Global) {
	if g.Interface != wayland.InterfaceOutput {
		return
	}
	out, err := s.client.BindOutput(g, OutputVersions)
	if err != nil {
		log.Warn("Ignoring new output", "name", g.Name, "err", err)
		return
	}
	log.Info("Output added", "name", g.Name)
	s.outputs = append(s.outputs, out)
}

func (s *Session) globalRemoved(g wayland.Global) {
	for i, out := range s.outputs {
		if out.Global == g.Name {
			log.Info("Output removed", "name", g.Name)
			out.Release()
			s.outputs = append(s.outputs[:i], s.outputs[i+1:]...)
			return
		}
	}
}

func (s *Session) handleCommands() {
	for {
		select {
		case cmd := <-s.cmds:
			switch cmd.Type {
			case ipc.CommandStop:
				log.Info("Received stop command")
				s.input.Stop()
			default:
				log.Errorf("Unknown command: %s", cmd.Type)
			}
		default:
			return
		}
	}
}

func (s *Session) publish() {
	st := ipc.SessionStatus{
		Shell:   string(s.opts.Shell),
		Globals: s.client.Globals(),
		Running: !s.closed && s.input != nil && s.input.Running(),
	}
	if s.window != nil {
		st.State = s.window.State().String()
		st.Configures = s.window.Configures()
		st.Width, st.Height = s.window.Size()
	}
	if s.wmBase != nil {
		st.Pings = s.wmBase.Pongs()
	}
	for _, out := range s.outputs {
		if info, ok := out.Info(); ok {
			st.Outputs = append(st.Outputs, info)
		}
	}

	s.Lock()
	s.status = st
	s.Unlock()
}

func (s *Session) teardown() {
	if s.window != nil {
		s.window.Destroy()
	}
	if s.buffer != nil {
		s.buffer.Destroy()
	}
	if s.pool != nil {
		s.pool.Destroy()
	}
	if s.backing != nil {
		if err := s.backing.Close(); err != nil {
			log.Warn("Failed to release shm backing", "err", err)
		}
	}
	// globals go last; xdg_wm_base must outlive its surfaces
	if s.input != nil {
		if kb := s.input.Keyboard(); kb != nil {
			kb.Release()
		}
	}
	if s.seat != nil {
		s.seat.Release()
	}
	for _, out := range s.outputs {
		out.Release()
	}
	if s.layerShell != nil {
		s.layerShell.Destroy()
	}
	if s.wmBase != nil {
		s.wmBase.Destroy()
	}
	if err := s.client.Flush(); err != nil {
		log.Debug("Final flush failed", "err", err)
	}
	s.publish()
}
