package mmap

import (
	"os"
	"sync/atomic"
	"unsafe"
)

// Mapping is a live virtual-memory region. It owns the mapped address
// range and, if file-backed, the backing file handle, for its lifetime.
// The range becomes invalid the instant Close returns; any use of the
// raw address after that is undefined behavior.
type Mapping struct {
	data        []byte
	file        *os.File
	jit         bool
	copyOnWrite bool
	closed      atomic.Bool
}

// Addr returns the base address of the mapping, or 0 after Close.
func (m *Mapping) Addr() uintptr {
	if m.closed.Load() {
		return 0
	}
	return uintptr(unsafe.Pointer(&m.data[0]))
}

// Bytes returns the mapped region as a byte slice.
// The slice is valid only until Close is called; afterwards Bytes
// returns nil. Writing through the slice while the mapping is not
// writable faults at the OS level.
func (m *Mapping) Bytes() []byte {
	if m.closed.Load() {
		return nil
	}
	return m.data
}

// Size returns the size of the mapping in bytes.
func (m *Mapping) Size() int {
	return len(m.data)
}

// File returns the backing file, or nil for anonymous mappings. The
// mapping owns the handle; callers must not close it.
func (m *Mapping) File() *os.File {
	if m.closed.Load() {
		return nil
	}
	return m.file
}

// Lock pins the mapped pages into physical memory. Exceeding a resource
// limit surfaces as the OS error.
func (m *Mapping) Lock() error {
	if m.closed.Load() {
		return ErrClosed
	}
	return osLock(m)
}

// Unlock releases pages pinned by Lock.
func (m *Mapping) Unlock() error {
	if m.closed.Load() {
		return ErrClosed
	}
	return osUnlock(m)
}

// Flush synchronously writes the half-open byte range [from, to) back
// to the backing file, blocking until the data is durable. An empty or
// inverted range succeeds without a syscall. On POSIX platforms from
// should be page-aligned.
func (m *Mapping) Flush(from, to int) error {
	return m.flush(from, to, true)
}

// FlushAsync schedules write-back of the half-open byte range [from, to)
// without waiting for it to complete. An empty or inverted range
// succeeds without a syscall.
func (m *Mapping) FlushAsync(from, to int) error {
	return m.flush(from, to, false)
}

func (m *Mapping) flush(from, to int, sync bool) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if to <= from {
		return nil
	}
	if from < 0 || to > len(m.data) {
		return ErrOutOfBounds
	}
	return osFlush(m, from, to, sync)
}

// FlushICache invalidates the instruction cache for the whole mapping.
// Call it after writing code into an executable region and before
// executing it. On architectures with hardware I/D cache coherency this
// is a no-op success.
func (m *Mapping) FlushICache() error {
	if m.closed.Load() {
		return ErrClosed
	}
	return flushICache(m.data)
}

// MakeNone removes all access permissions from the mapping.
func (m *Mapping) MakeNone() error {
	return m.protect(protKindNone)
}

// MakeReadOnly transitions the mapping to read-only access.
func (m *Mapping) MakeReadOnly() error {
	return m.protect(protKindRead)
}

// MakeExec transitions the mapping to read and execute access.
func (m *Mapping) MakeExec() error {
	return m.protect(protKindExec)
}

// MakeMut transitions the mapping to read and write access.
func (m *Mapping) MakeMut() error {
	return m.protect(protKindReadWrite)
}

// MakeExecMut transitions the mapping to read, write and execute
// access. It fails with *ErrUnsafeFlagNeeded unless the mapping was
// created with UnsafeJIT.
func (m *Mapping) MakeExecMut() error {
	if !m.jit {
		return &ErrUnsafeFlagNeeded{Flag: UnsafeJIT}
	}
	return m.protect(protKindFull)
}

func (m *Mapping) protect(kind protKind) error {
	if m.closed.Load() {
		return ErrClosed
	}
	return osProtect(m, kind)
}

// Close releases the mapping and the owned file handle. It is
// idempotent. Release failures are not reported: the resources are
// leaving scope and no recovery action exists at this point.
func (m *Mapping) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	osRelease(m)
	if m.file != nil {
		m.file.Close()
		m.file = nil
	}
	return nil
}
