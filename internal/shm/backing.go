// Package shm allocates the shared memory that wl_shm pools are created
// over.
package shm

import (
	"os"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Backing is a file descriptor mapped read/write into our address space.
type Backing struct {
	fd   int
	data []byte
}

// Allocate returns a zero-filled backing of size bytes. memfd is tried
// first; kernels without it get an unlinked temp file.
func Allocate(size int) (*Backing, error) {
	if size <= 0 {
		return nil, errors.Errorf("shm: invalid size %d", size)
	}
	fd, err := unix.MemfdCreate("shmpaper", unix.MFD_CLOEXEC)
	if err != nil {
		log.Debug("memfd_create unavailable, using a temp file", "err", err)
		if fd, err = tempFile(); err != nil {
			return nil, err
		}
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		_ = unix.Close(fd)
		return nil, errors.Wrap(err, "shm: ftruncate")
	}
	data, err := unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, errors.Wrap(err, "shm: mmap")
	}
	return &Backing{fd: fd, data: data}, nil
}

// tempFile creates an unlinked file in the runtime dir, or in the temp dir
// when the runtime dir is missing or not writable.
func tempFile() (int, error) {
	f, err := os.CreateTemp(xdg.RuntimeDir, "shmpaper-*")
	if err != nil {
		log.Debug("runtime dir unusable for shm", "dir", xdg.RuntimeDir, "err", err)
		if f, err = os.CreateTemp(os.TempDir(), "shmpaper-*"); err != nil {
			return -1, errors.Wrap(err, "shm: create temp file")
		}
	}
	defer f.Close()
	if err := os.Remove(f.Name()); err != nil {
		return -1, errors.Wrap(err, "shm: unlink temp file")
	}
	// keep our own descriptor past f.Close
	fd, err := unix.Dup(int(f.Fd()))
	if err != nil {
		return -1, errors.Wrap(err, "shm: dup")
	}
	unix.CloseOnExec(fd)
	return fd, nil
}

// Bytes is the mapped memory. It is invalid after Resize or Close.
func (b *Backing) Bytes() []byte {
	return b.data
}

func (b *Backing) Fd() int {
	return b.fd
}

func (b *Backing) Size() int {
	return len(b.data)
}

// Resize grows the backing and remaps it. Existing contents are kept.
func (b *Backing) Resize(size int) error {
	if b.data == nil {
		return errors.New("shm: backing closed")
	}
	if size < len(b.data) {
		return errors.Errorf("shm: cannot shrink from %d to %d", len(b.data), size)
	}
	if size == len(b.data) {
		return nil
	}
	if err := unix.Ftruncate(b.fd, int64(size)); err != nil {
		return errors.Wrap(err, "shm: ftruncate")
	}
	data, err := unix.Mmap(b.fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return errors.Wrap(err, "shm: mmap")
	}
	if err := unix.Munmap(b.data); err != nil {
		_ = unix.Munmap(data)
		return errors.Wrap(err, "shm: munmap")
	}
	b.data = data
	return nil
}

// Close unmaps the memory and closes the descriptor. The compositor keeps
// its own reference to the pool.
func (b *Backing) Close() error {
	if b.data == nil {
		return nil
	}
	err := unix.Munmap(b.data)
	b.data = nil
	if cerr := unix.Close(b.fd); err == nil {
		err = cerr
	}
	return errors.Wrap(err, "shm: close")
}
