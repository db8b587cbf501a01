// Package wire implements the Wayland wire format and the unix socket
// connection that carries it.
package wire

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

const (
	// HeaderSize is the size of the object id + size/opcode header.
	HeaderSize = 8

	// MaxMessageSize is the largest message a compositor will accept.
	MaxMessageSize = 4096
)

// The protocol uses the host byte order for every word.
var byteOrder = binary.NativeEndian

// ErrMessageTooLarge is returned when an encoded message would not fit the
// 16 bit size field or the compositor's buffer.
var ErrMessageTooLarge = errors.New("wire: message too large")

// Message is a single request or event: the target object, the opcode and
// the already marshalled arguments. FDs travel out of band.
type Message struct {
	Object uint32
	Opcode uint16
	Body   []byte
	FDs    []int
}

// NewMessage starts a request for object with the given opcode.
func NewMessage(object uint32, opcode uint16) *Message {
	return &Message{Object: object, Opcode: opcode}
}

func (m *Message) PutUint(v uint32) *Message {
	m.Body = byteOrder.AppendUint32(m.Body, v)
	return m
}

func (m *Message) PutInt(v int32) *Message {
	return m.PutUint(uint32(v))
}

func (m *Message) PutFixed(v Fixed) *Message {
	return m.PutUint(uint32(v))
}

// PutObject writes an object reference; id 0 is the null object.
func (m *Message) PutObject(id uint32) *Message {
	return m.PutUint(id)
}

func (m *Message) PutNewID(id uint32) *Message {
	return m.PutUint(id)
}

// PutString writes a length prefixed, NUL terminated string padded to a
// word boundary.
func (m *Message) PutString(s string) *Message {
	n := len(s) + 1
	m.PutUint(uint32(n))
	m.Body = append(m.Body, s...)
	m.Body = append(m.Body, 0)
	m.Body = append(m.Body, make([]byte, padding(n))...)
	return m
}

func (m *Message) PutArray(b []byte) *Message {
	m.PutUint(uint32(len(b)))
	m.Body = append(m.Body, b...)
	m.Body = append(m.Body, make([]byte, padding(len(b)))...)
	return m
}

// PutFD attaches a file descriptor. Nothing is written to the body; the
// descriptor is sent as SCM_RIGHTS ancillary data with the message.
func (m *Message) PutFD(fd int) *Message {
	m.FDs = append(m.FDs, fd)
	return m
}

// Size returns the encoded size of the message including the header.
func (m *Message) Size() int {
	return HeaderSize + len(m.Body)
}

// AppendTo encodes the message onto dst.
func (m *Message) AppendTo(dst []byte) ([]byte, error) {
	size := m.Size()
	if size > MaxMessageSize {
		return dst, errors.Wrapf(ErrMessageTooLarge, "object %d opcode %d: %d bytes", m.Object, m.Opcode, size)
	}
	dst = byteOrder.AppendUint32(dst, m.Object)
	dst = byteOrder.AppendUint32(dst, uint32(size)<<16|uint32(m.Opcode))
	return append(dst, m.Body...), nil
}

// DecodeHeader splits a message header into its fields. buf must hold at
// least HeaderSize bytes.
func DecodeHeader(buf []byte) (object uint32, opcode uint16, size int) {
	object = byteOrder.Uint32(buf[:4])
	word := byteOrder.Uint32(buf[4:8])
	return object, uint16(word & 0xffff), int(word >> 16)
}

func padding(n int) int {
	return (4 - n%4) % 4
}

// Fixed is a signed 24.8 fixed point number.
type Fixed int32

func FixedFromFloat(v float64) Fixed {
	return Fixed(math.Round(v * 256))
}

func (f Fixed) Float() float64 {
	return float64(f) / 256
}

func (f Fixed) Int() int {
	return int(f) / 256
}
