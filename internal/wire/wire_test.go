package wire

import (
	"net"
	"os"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func socketPair(t *testing.T) (*net.UnixConn, *net.UnixConn) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	require.NoError(t, err)
	conv := func(fd int) *net.UnixConn {
		f := os.NewFile(uintptr(fd), "socketpair")
		defer f.Close()
		c, err := net.FileConn(f)
		require.NoError(t, err)
		return c.(*net.UnixConn)
	}
	return conv(fds[0]), conv(fds[1])
}

func TestStringPadding(t *testing.T) {
	for _, tc := range []struct {
		s    string
		size int
	}{
		{"", 4 + 4},
		{"abc", 4 + 4},
		{"abcd", 4 + 8},
		{"wl_compositor", 4 + 16},
	} {
		m := NewMessage(2, 0).PutString(tc.s)
		assert.Len(t, m.Body, tc.size, "string %q", tc.s)
		assert.Zero(t, len(m.Body)%4)

		r := NewReader(m, nil)
		assert.Equal(t, tc.s, r.String())
		assert.NoError(t, r.Err())
	}
}

func TestHeaderEncoding(t *testing.T) {
	m := NewMessage(7, 6).PutUint(42).PutInt(-3)
	buf, err := m.AppendTo(nil)
	require.NoError(t, err)
	require.Len(t, buf, 16)

	object, opcode, size := DecodeHeader(buf)
	assert.Equal(t, uint32(7), object)
	assert.Equal(t, uint16(6), opcode)
	assert.Equal(t, 16, size)
}

func TestMessageTooLarge(t *testing.T) {
	m := NewMessage(3, 0).PutArray(make([]byte, MaxMessageSize))
	_, err := m.AppendTo(nil)
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestReaderShortMessage(t *testing.T) {
	m := NewMessage(3, 1).PutUint(1)
	r := NewReader(m, nil)
	assert.Equal(t, uint32(1), r.Uint())
	assert.Equal(t, uint32(0), r.Uint())
	assert.ErrorIs(t, r.Err(), ErrShortMessage)
	// sticky
	assert.Equal(t, "", r.String())
	assert.ErrorIs(t, r.Err(), ErrShortMessage)
}

func TestReaderArrayAndFixed(t *testing.T) {
	m := NewMessage(3, 1).PutArray([]byte{1, 2, 3, 4, 5}).PutFixed(FixedFromFloat(1.5))
	r := NewReader(m, nil)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, r.Array())
	assert.InDelta(t, 1.5, r.Fixed().Float(), 0.001)
	assert.NoError(t, r.Err())
}

func TestConnRoundTripsMessages(t *testing.T) {
	a, b := socketPair(t)
	client, server := NewConn(a), NewConn(b)
	defer client.Close()
	defer server.Close()

	require.NoError(t, client.WriteMessage(NewMessage(1, 1).PutNewID(2)))
	require.NoError(t, client.WriteMessage(NewMessage(1, 0).PutNewID(3)))
	require.NoError(t, client.Flush())

	var got []*Message
	for len(got) < 2 {
		msgs, err := server.ReadMessages()
		require.NoError(t, err)
		got = append(got, msgs...)
	}
	require.Len(t, got, 2)
	assert.Equal(t, uint16(1), got[0].Opcode)
	assert.Equal(t, uint16(0), got[1].Opcode)
	assert.Equal(t, uint32(3), NewReader(got[1], nil).Uint())
}

func TestConnPassesFDs(t *testing.T) {
	a, b := socketPair(t)
	client, server := NewConn(a), NewConn(b)
	defer client.Close()
	defer server.Close()

	f, err := os.CreateTemp(t.TempDir(), "fd")
	require.NoError(t, err)
	defer f.Close()
	_, err = f.WriteString("pixels")
	require.NoError(t, err)

	require.NoError(t, client.WriteMessage(NewMessage(4, 0).PutNewID(5).PutFD(int(f.Fd())).PutInt(6)))
	require.NoError(t, client.Flush())

	msgs, err := server.ReadMessages()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	r := NewReader(msgs[0], server.FDs())
	assert.Equal(t, uint32(5), r.Uint())
	fd := r.FD()
	require.NoError(t, r.Err())
	defer unix.Close(fd)

	buf := make([]byte, 6)
	n, err := unix.Pread(fd, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(buf[:n]))
}

func TestConnInterrupt(t *testing.T) {
	a, b := socketPair(t)
	client := NewConn(a)
	defer client.Close()
	defer b.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = client.Interrupt()
	}()
	_, err := client.ReadMessages()
	assert.ErrorIs(t, err, ErrInterrupted)

	// the connection stays usable after an interrupt
	server := NewConn(b)
	require.NoError(t, server.WriteMessage(NewMessage(1, 1).PutUint(9)))
	require.NoError(t, server.Flush())
	msgs, err := client.ReadMessages()
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestSocketPath(t *testing.T) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_RUNTIME_DIR", "/run/user/1000")
	t.Setenv("WAYLAND_DISPLAY", "")
	xdg.Reload()

	assert.Equal(t, "/run/user/1000/wayland-0", SocketPath(""))
	assert.Equal(t, "/run/user/1000/wayland-1", SocketPath("wayland-1"))
	assert.Equal(t, "/tmp/wl.sock", SocketPath("/tmp/wl.sock"))

	t.Setenv("WAYLAND_DISPLAY", "wayland-5")
	assert.Equal(t, "/run/user/1000/wayland-5", SocketPath(""))
}

func TestDialUnreachable(t *testing.T) {
	t.Setenv("WAYLAND_SOCKET", "")
	_, err := Dial(t.TempDir() + "/missing")
	var ce *ConnectError
	assert.ErrorAs(t, err, &ce)
}
