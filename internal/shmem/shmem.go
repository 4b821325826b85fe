// Package shmem maps the scaler's physical memory region into the
// process and hands out bounds-checked views of it.
package shmem

import (
	"fmt"
	"os"
	"syscall"

	"github.com/pkg/errors"
)

const devMemPath = "/dev/mem"

// AccessError reports a failure to obtain or map the physical memory
// handle, most commonly a privilege problem. It is fatal: callers are
// expected to surface it and exit non-zero.
type AccessError struct {
	Op  string
	Err error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("physical memory access: %s: %v", e.Op, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }

// Window owns a mapped view of a physical address range. The mapping
// starts at the page boundary below the requested base; off recovers
// the caller-requested address. Exactly one Window exists per process
// and it must be closed on every exit path.
type Window struct {
	mapped []byte
	off    int
	size   int
}

// Open maps size bytes of physical memory starting at base. The scaler
// writes this region by DMA with no synchronization, so all reads
// through the window are unsynchronized snapshots.
func Open(base uint64, size int) (*Window, error) {
	f, err := os.OpenFile(devMemPath, os.O_RDONLY|syscall.O_SYNC, 0)
	if err != nil {
		return nil, &AccessError{Op: "open " + devMemPath, Err: err}
	}
	defer f.Close()

	page := uint64(os.Getpagesize())
	aligned := base &^ (page - 1)
	off := int(base - aligned)

	mapped, err := syscall.Mmap(int(f.Fd()), int64(aligned), size+off,
		syscall.PROT_READ, syscall.MAP_SHARED)
	if err != nil {
		return nil, &AccessError{
			Op:  fmt.Sprintf("mmap 0x%X+%d", aligned, size+off),
			Err: err,
		}
	}

	return &Window{mapped: mapped, off: off, size: size}, nil
}

// Bytes returns a view of length n at off, relative to the requested
// (unaligned) base. The view aliases the live mapping; the hardware may
// rewrite it at any time.
func (w *Window) Bytes(off, n int) ([]byte, error) {
	if w.mapped == nil {
		return nil, errors.New("window is closed")
	}
	if off < 0 || n < 0 || off+n > w.size {
		return nil, errors.Errorf("read [%d,%d) outside window of %d bytes", off, off+n, w.size)
	}
	return w.mapped[w.off+off : w.off+off+n], nil
}

// ByteAt reads a single byte at off relative to the requested base.
func (w *Window) ByteAt(off int) (byte, error) {
	b, err := w.Bytes(off, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Size returns the usable window size in bytes.
func (w *Window) Size() int { return w.size }

// Close unmaps the window. Safe to call more than once; the mapping is
// released unconditionally.
func (w *Window) Close() error {
	if w.mapped == nil {
		return nil
	}
	m := w.mapped
	w.mapped = nil
	if err := syscall.Munmap(m); err != nil {
		return errors.Wrap(err, "munmap scaler window")
	}
	return nil
}
