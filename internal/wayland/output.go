package wayland

import (
	"github.com/matjam/shmpaper/internal/wire"
	"github.com/pkg/errors"
)

// OutputInfo is what the compositor told us about a monitor. It is complete
// once Done has been seen.
type OutputInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Make        string `json:"make,omitempty"`
	Model       string `json:"model,omitempty"`
	X           int32  `json:"x"`
	Y           int32  `json:"y"`
	Width       int32  `json:"width"`
	Height      int32  `json:"height"`
	Refresh     int32  `json:"refresh_mhz"`
	Scale       int32  `json:"scale"`
}

// Output is a bound wl_output.
type Output struct {
	proxy
	// Global is the registry name the output was bound from.
	Global uint32

	pending OutputInfo
	info    OutputInfo
	done    bool

	OnDone func(OutputInfo)
}

func (o *Output) Interface() string {
	return InterfaceOutput
}

// Info returns the last complete description, and whether one exists.
func (o *Output) Info() (OutputInfo, bool) {
	return o.info, o.done
}

// Release destroys the output proxy. Only v3 has the request.
func (o *Output) Release() {
	if !o.client.objects.live(o.id) {
		return
	}
	if o.version >= 3 {
		o.client.send(InterfaceOutput, wire.NewMessage(o.id, opOutputRelease))
	}
	o.client.objects.retire(o)
}

func (o *Output) dispatch(msg *wire.Message) error {
	r := wire.NewReader(msg, nil)
	switch msg.Opcode {
	case evOutputGeometry:
		o.pending.X, o.pending.Y = r.Int(), r.Int()
		_, _, _ = r.Int(), r.Int(), r.Int()
		o.pending.Make, o.pending.Model = r.String(), r.String()
		_ = r.Int()
	case evOutputMode:
		flags := r.Uint()
		w, h, refresh := r.Int(), r.Int(), r.Int()
		// only the current mode matters
		if flags&1 != 0 {
			o.pending.Width, o.pending.Height, o.pending.Refresh = w, h, refresh
		}
	case evOutputScale:
		o.pending.Scale = r.Int()
	case evOutputName:
		o.pending.Name = r.String()
	case evOutputDescription:
		o.pending.Description = r.String()
	case evOutputDone:
		o.info = o.pending
		o.done = true
		if o.OnDone != nil {
			o.OnDone(o.info)
		}
	}
	return errors.Wrap(r.Err(), "decode wl_output event")
}
