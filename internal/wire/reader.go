package wire

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

var (
	ErrShortMessage = errors.New("wire: message shorter than its arguments")
	ErrMissingFD    = errors.New("wire: event expects a file descriptor that was not received")
)

// Reader decodes the arguments of an event in order. The first failure is
// sticky: later calls return zero values and Err reports it.
type Reader struct {
	msg *Message
	off int
	fds *FDQueue
	err error
}

func NewReader(msg *Message, fds *FDQueue) *Reader {
	return &Reader{msg: msg, fds: fds}
}

func (r *Reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.off+n > len(r.msg.Body) {
		r.err = errors.Wrapf(ErrShortMessage, "object %d opcode %d: need %d bytes at offset %d, have %d",
			r.msg.Object, r.msg.Opcode, n, r.off, len(r.msg.Body))
		return nil
	}
	b := r.msg.Body[r.off : r.off+n]
	r.off += n
	return b
}

func (r *Reader) Uint() uint32 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	return byteOrder.Uint32(b)
}

func (r *Reader) Int() int32 {
	return int32(r.Uint())
}

func (r *Reader) Fixed() Fixed {
	return Fixed(r.Uint())
}

func (r *Reader) Object() uint32 {
	return r.Uint()
}

func (r *Reader) String() string {
	n := int(r.Uint())
	if n == 0 {
		return ""
	}
	b := r.next(n + padding(n))
	if b == nil {
		return ""
	}
	// drop the terminating NUL
	return string(b[:n-1])
}

func (r *Reader) Array() []byte {
	n := int(r.Uint())
	b := r.next(n + padding(n))
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b[:n])
	return out
}

// FD takes the next received descriptor from the connection queue. The
// caller owns it.
func (r *Reader) FD() int {
	if r.err != nil {
		return -1
	}
	if r.fds == nil {
		r.err = ErrMissingFD
		return -1
	}
	fd, ok := r.fds.Pop()
	if !ok {
		r.err = errors.Wrapf(ErrMissingFD, "object %d opcode %d", r.msg.Object, r.msg.Opcode)
		return -1
	}
	return fd
}

func (r *Reader) Err() error {
	return r.err
}

// FDQueue holds descriptors received as ancillary data until an event
// argument claims them.
type FDQueue struct {
	fds []int
}

func (q *FDQueue) Push(fds ...int) {
	q.fds = append(q.fds, fds...)
}

func (q *FDQueue) Pop() (int, bool) {
	if len(q.fds) == 0 {
		return -1, false
	}
	fd := q.fds[0]
	q.fds = q.fds[1:]
	return fd, true
}

func (q *FDQueue) Len() int {
	return len(q.fds)
}

// Close closes every unclaimed descriptor.
func (q *FDQueue) Close() {
	for _, fd := range q.fds {
		_ = unix.Close(fd)
	}
	q.fds = nil
}
