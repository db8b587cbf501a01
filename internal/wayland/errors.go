package wayland

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrCapabilityUnavailable means the compositor never announced the
	// interface.
	ErrCapabilityUnavailable = errors.New("capability unavailable")

	// ErrVersionUnsupported means the interface is announced but only at
	// versions below the caller's minimum.
	ErrVersionUnsupported = errors.New("version unsupported")

	// ErrInvalidVersionRange means the caller asked for Min > Max.
	ErrInvalidVersionRange = errors.New("invalid version range")

	// ErrInvalidGeometry is wrapped by every GeometryError.
	ErrInvalidGeometry = errors.New("invalid buffer geometry")

	ErrDestroyed = errors.New("object destroyed")
)

// CapabilityError describes a failed bind.
type CapabilityError struct {
	Interface  string
	Range      VersionRange
	Advertised []uint32
	Err        error
}

func (e *CapabilityError) Error() string {
	if len(e.Advertised) == 0 {
		return fmt.Sprintf("%s %s: %v", e.Interface, e.Range, e.Err)
	}
	return fmt.Sprintf("%s %s: %v (advertised %v)", e.Interface, e.Range, e.Err, e.Advertised)
}

func (e *CapabilityError) Unwrap() error {
	return e.Err
}

// ProtocolError is a fatal wl_display.error sent by the compositor.
type ProtocolError struct {
	ObjectID  uint32
	Interface string
	Code      uint32
	Message   string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on %s@%d (code %d): %s", e.Interface, e.ObjectID, e.Code, e.Message)
}

// GeometryError rejects a buffer that would not fit its pool.
type GeometryError struct {
	Offset, Width, Height, Stride int32
	PoolSize                      int32
	Reason                        string
}

func (e *GeometryError) Error() string {
	return fmt.Sprintf("%v: %s (offset=%d width=%d height=%d stride=%d pool=%d)",
		ErrInvalidGeometry, e.Reason, e.Offset, e.Width, e.Height, e.Stride, e.PoolSize)
}

func (e *GeometryError) Unwrap() error {
	return ErrInvalidGeometry
}
