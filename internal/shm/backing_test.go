package shm

import (
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestAllocateZeroed(t *testing.T) {
	b, err := Allocate(320 * 240 * 4)
	require.NoError(t, err)
	defer b.Close()

	assert.Equal(t, 320*240*4, b.Size())
	for _, v := range b.Bytes() {
		if v != 0 {
			t.Fatal("backing is not zeroed")
		}
	}

	var st unix.Stat_t
	require.NoError(t, unix.Fstat(b.Fd(), &st))
	assert.Equal(t, int64(b.Size()), st.Size)
}

func TestAllocateSharesMemoryWithFd(t *testing.T) {
	b, err := Allocate(4096)
	require.NoError(t, err)
	defer b.Close()

	copy(b.Bytes(), "pixels")
	buf := make([]byte, 6)
	_, err = unix.Pread(b.Fd(), buf, 0)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(buf))
}

func TestResizeKeepsContents(t *testing.T) {
	b, err := Allocate(16)
	require.NoError(t, err)
	defer b.Close()

	copy(b.Bytes(), "abcd")
	require.NoError(t, b.Resize(8192))
	assert.Equal(t, 8192, b.Size())
	assert.Equal(t, "abcd", string(b.Bytes()[:4]))
	assert.Error(t, b.Resize(16))
}

func TestAllocateInvalidSize(t *testing.T) {
	_, err := Allocate(0)
	assert.Error(t, err)
}

func TestTempFileFallback(t *testing.T) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	xdg.Reload()

	fd, err := tempFile()
	require.NoError(t, err)
	defer unix.Close(fd)

	var st unix.Stat_t
	require.NoError(t, unix.Fstat(fd, &st))
	assert.Zero(t, st.Nlink, "temp file is unlinked")
}

func TestTempFileWithoutRuntimeDir(t *testing.T) {
	t.Cleanup(xdg.Reload)
	t.Setenv("XDG_RUNTIME_DIR", filepath.Join(t.TempDir(), "missing"))
	xdg.Reload()

	fd, err := tempFile()
	require.NoError(t, err)
	defer unix.Close(fd)

	var st unix.Stat_t
	require.NoError(t, unix.Fstat(fd, &st))
	assert.Zero(t, st.Nlink)
}

func TestCloseTwice(t *testing.T) {
	b, err := Allocate(64)
	require.NoError(t, err)
	require.NoError(t, b.Close())
	assert.NoError(t, b.Close())
	assert.Error(t, b.Resize(128))
}
