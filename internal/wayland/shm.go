package wayland

import (
	"fmt"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/matjam/shmpaper/internal/wire"
	"github.com/pkg/errors"
)

// Format is a wl_shm pixel format code.
type Format uint32

const (
	FormatARGB8888 Format = 0
	FormatXRGB8888 Format = 1
)

func (f Format) String() string {
	switch f {
	case FormatARGB8888:
		return "argb8888"
	case FormatXRGB8888:
		return "xrgb8888"
	}
	return fmt.Sprintf("format(%#x)", uint32(f))
}

// BytesPerPixel is 4 for both 32-bit formats.
func (f Format) BytesPerPixel() int32 {
	return 4
}

// Backing is the memory a pool is created over.
type Backing interface {
	Fd() int
	Size() int
}

// Shm is the wl_shm global.
type Shm struct {
	proxy
	formats []Format
}

func (s *Shm) Interface() string {
	return InterfaceShm
}

// Formats returns the formats the compositor announced so far.
func (s *Shm) Formats() []Format {
	return slices.Clone(s.formats)
}

// Supports reports whether f was announced. ARGB8888 and XRGB8888 are
// mandatory and always supported.
func (s *Shm) Supports(f Format) bool {
	return f == FormatARGB8888 || f == FormatXRGB8888 || slices.Contains(s.formats, f)
}

// CreatePool shares size bytes of b with the compositor.
func (s *Shm) CreatePool(b Backing, size int32) (*ShmPool, error) {
	if size <= 0 {
		return nil, errors.Errorf("pool size %d must be positive", size)
	}
	if int(size) > b.Size() {
		return nil, errors.Errorf("pool size %d exceeds backing size %d", size, b.Size())
	}
	cl := s.client
	p := &ShmPool{proxy: proxy{id: cl.newID(), version: s.version, client: cl}, size: size}
	cl.register(p)
	cl.send(InterfaceShm, wire.NewMessage(s.id, opShmCreatePool).PutNewID(p.id).PutFD(b.Fd()).PutInt(size))
	return p, nil
}

func (s *Shm) dispatch(msg *wire.Message) error {
	if msg.Opcode != evShmFormat {
		return nil
	}
	r := wire.NewReader(msg, nil)
	f := Format(r.Uint())
	if err := r.Err(); err != nil {
		return errors.Wrap(err, "decode wl_shm.format")
	}
	if !slices.Contains(s.formats, f) {
		s.formats = append(s.formats, f)
	}
	return nil
}

// ShmPool is a wl_shm_pool over a Backing.
type ShmPool struct {
	proxy
	size      int32
	destroyed bool
}

func (p *ShmPool) Interface() string {
	return InterfaceShmPool
}

func (p *ShmPool) Size() int32 {
	return p.size
}

// CreateBuffer carves a buffer out of the pool. Geometry that would reach
// outside the pool is rejected before anything is sent.
func (p *ShmPool) CreateBuffer(offset, width, height, stride int32, format Format) (*Buffer, error) {
	if err := p.checkGeometry(offset, width, height, stride, format); err != nil {
		return nil, err
	}
	cl := p.client
	b := &Buffer{
		proxy:  proxy{id: cl.newID(), version: 1, client: cl},
		Width:  width,
		Height: height,
		Stride: stride,
		Format: format,
	}
	cl.register(b)
	cl.send(InterfaceShmPool, wire.NewMessage(p.id, opShmPoolCreateBuffer).
		PutNewID(b.id).
		PutInt(offset).
		PutInt(width).
		PutInt(height).
		PutInt(stride).
		PutUint(uint32(format)))
	return b, nil
}

func (p *ShmPool) checkGeometry(offset, width, height, stride int32, format Format) error {
	ge := func(reason string) error {
		return &GeometryError{Offset: offset, Width: width, Height: height, Stride: stride, PoolSize: p.size, Reason: reason}
	}
	switch {
	case p.destroyed:
		return errors.Wrap(ErrDestroyed, "wl_shm_pool")
	case width <= 0 || height <= 0:
		return ge("dimensions must be positive")
	case offset < 0:
		return ge("negative offset")
	case int64(stride) < int64(width)*int64(format.BytesPerPixel()):
		return ge("stride shorter than a row")
	case int64(offset)+int64(stride)*int64(height) > int64(p.size):
		return ge("buffer extends past the pool")
	}
	return nil
}

// Destroy releases the pool. Buffers created from it stay valid.
func (p *ShmPool) Destroy() {
	if p.destroyed {
		return
	}
	p.destroyed = true
	p.client.send(InterfaceShmPool, wire.NewMessage(p.id, opShmPoolDestroy))
}

func (p *ShmPool) dispatch(*wire.Message) error {
	return nil
}

// Buffer is a wl_buffer. It is busy from attach until the compositor
// releases it.
type Buffer struct {
	proxy
	Width, Height, Stride int32
	Format                Format

	busy      bool
	destroyed bool

	OnRelease func()
}

func (b *Buffer) Interface() string {
	return InterfaceBuffer
}

// Busy reports whether the compositor may still read the buffer.
func (b *Buffer) Busy() bool {
	return b.busy
}

func (b *Buffer) Destroy() {
	if b.destroyed {
		return
	}
	b.destroyed = true
	b.client.send(InterfaceBuffer, wire.NewMessage(b.id, opBufferDestroy))
}

func (b *Buffer) dispatch(msg *wire.Message) error {
	if msg.Opcode != evBufferRelease {
		return nil
	}
	log.Debug("buffer released", "id", b.id)
	b.busy = false
	if b.OnRelease != nil {
		b.OnRelease()
	}
	return nil
}
