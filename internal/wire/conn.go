package wire

import (
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// ErrInterrupted is returned by ReadMessages when Interrupt woke it before
// any message arrived.
var ErrInterrupted = errors.New("wire: read interrupted")

// maxFDsPerMessage mirrors libwayland's limit on descriptors per sendmsg.
const maxFDsPerMessage = 28

// ConnectError reports that no compositor could be reached.
type ConnectError struct {
	Path string
	Err  error
}

func (e *ConnectError) Error() string {
	return "cannot connect to compositor at " + e.Path + ": " + e.Err.Error()
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// Conn is a duplex connection to the compositor. Outgoing messages are
// buffered until Flush; incoming bytes are buffered until a whole message
// is available.
type Conn struct {
	c *net.UnixConn

	out    []byte
	outFDs []int

	in      []byte
	readBuf []byte
	oobBuf  []byte
	fds     FDQueue
}

// SocketPath resolves the compositor socket for name. An empty name falls
// back to WAYLAND_DISPLAY and then wayland-0; relative names live in the
// XDG runtime directory.
func SocketPath(name string) string {
	if name == "" {
		name = os.Getenv("WAYLAND_DISPLAY")
	}
	if name == "" {
		name = "wayland-0"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(xdg.RuntimeDir, name)
}

// Dial connects to the compositor. An inherited WAYLAND_SOCKET descriptor
// takes precedence over socket name resolution.
func Dial(name string) (*Conn, error) {
	if s := os.Getenv("WAYLAND_SOCKET"); s != "" {
		_ = os.Unsetenv("WAYLAND_SOCKET")
		fd, err := strconv.Atoi(s)
		if err != nil {
			return nil, &ConnectError{Path: "WAYLAND_SOCKET=" + s, Err: err}
		}
		unix.CloseOnExec(fd)
		f := os.NewFile(uintptr(fd), "wayland-socket")
		defer f.Close()
		fc, err := net.FileConn(f)
		if err != nil {
			return nil, &ConnectError{Path: "WAYLAND_SOCKET=" + s, Err: err}
		}
		uc, ok := fc.(*net.UnixConn)
		if !ok {
			fc.Close()
			return nil, &ConnectError{Path: "WAYLAND_SOCKET=" + s, Err: errors.New("not a unix socket")}
		}
		log.Debug("connected to inherited wayland socket", "fd", fd)
		return NewConn(uc), nil
	}

	path := SocketPath(name)
	uc, err := net.DialUnix("unix", nil, &net.UnixAddr{Name: path, Net: "unix"})
	if err != nil {
		return nil, &ConnectError{Path: path, Err: err}
	}
	log.Debug("connected to wayland socket", "path", path)
	return NewConn(uc), nil
}

// NewConn wraps an established unix socket.
func NewConn(c *net.UnixConn) *Conn {
	return &Conn{
		c:       c,
		readBuf: make([]byte, MaxMessageSize*4),
		oobBuf:  make([]byte, unix.CmsgSpace(maxFDsPerMessage*4)),
	}
}

// WriteMessage queues m. The buffer is flushed early when it would grow
// past what the compositor reads in one go.
func (c *Conn) WriteMessage(m *Message) error {
	if len(c.out)+m.Size() > MaxMessageSize || len(c.outFDs)+len(m.FDs) > maxFDsPerMessage {
		if err := c.Flush(); err != nil {
			return err
		}
	}
	var err error
	c.out, err = m.AppendTo(c.out)
	if err != nil {
		return err
	}
	c.outFDs = append(c.outFDs, m.FDs...)
	return nil
}

// Flush writes every queued message in issue order. Descriptors go out
// with the first chunk so they precede the requests that consume them.
func (c *Conn) Flush() error {
	for len(c.out) > 0 {
		var oob []byte
		if len(c.outFDs) > 0 {
			oob = unix.UnixRights(c.outFDs...)
		}
		n, _, err := c.c.WriteMsgUnix(c.out, oob, nil)
		if err != nil {
			return errors.Wrap(err, "write to compositor")
		}
		c.outFDs = c.outFDs[:0]
		c.out = c.out[n:]
	}
	c.out = c.out[:0]
	return nil
}

// ReadMessages blocks until at least one whole message is available and
// returns all buffered whole messages in wire order.
func (c *Conn) ReadMessages() ([]*Message, error) {
	for {
		if msgs := c.decode(); len(msgs) > 0 {
			return msgs, nil
		}

		n, oobn, _, _, err := c.c.ReadMsgUnix(c.readBuf, c.oobBuf)
		if oobn > 0 {
			if ferr := c.receiveFDs(c.oobBuf[:oobn]); ferr != nil {
				return nil, ferr
			}
		}
		if n > 0 {
			c.in = append(c.in, c.readBuf[:n]...)
		}
		if err != nil {
			// deadlines are only ever set by Interrupt
			if errors.Is(err, os.ErrDeadlineExceeded) {
				if derr := c.c.SetReadDeadline(time.Time{}); derr != nil {
					return nil, errors.Wrap(derr, "reset read deadline")
				}
				if msgs := c.decode(); len(msgs) > 0 {
					return msgs, nil
				}
				return nil, ErrInterrupted
			}
			return nil, errors.Wrap(err, "read from compositor")
		}
		if n == 0 && oobn == 0 {
			return nil, io.EOF
		}
	}
}

func (c *Conn) decode() []*Message {
	var msgs []*Message
	for len(c.in) >= HeaderSize {
		object, opcode, size := DecodeHeader(c.in)
		if size < HeaderSize {
			// A corrupt size would stall the stream forever; surface it as an
			// empty-bodied message and let the router reject it.
			size = HeaderSize
		}
		if len(c.in) < size {
			break
		}
		body := make([]byte, size-HeaderSize)
		copy(body, c.in[HeaderSize:size])
		msgs = append(msgs, &Message{Object: object, Opcode: opcode, Body: body})
		c.in = c.in[size:]
	}
	if len(c.in) == 0 {
		c.in = nil
	}
	return msgs
}

func (c *Conn) receiveFDs(oob []byte) error {
	scms, err := unix.ParseSocketControlMessage(oob)
	if err != nil {
		return errors.Wrap(err, "parse socket control message")
	}
	for i := range scms {
		fds, err := unix.ParseUnixRights(&scms[i])
		if err != nil {
			return errors.Wrap(err, "parse unix rights")
		}
		for _, fd := range fds {
			unix.CloseOnExec(fd)
		}
		c.fds.Push(fds...)
	}
	return nil
}

// FDs exposes the queue of received descriptors to event decoders.
func (c *Conn) FDs() *FDQueue {
	return &c.fds
}

// Interrupt wakes a blocked ReadMessages. Safe to call from any goroutine.
func (c *Conn) Interrupt() error {
	return c.c.SetReadDeadline(time.Now())
}

// Close closes the socket and any unclaimed received descriptors.
func (c *Conn) Close() error {
	c.fds.Close()
	return c.c.Close()
}
