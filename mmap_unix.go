//go:build linux || darwin || freebsd

package mmap

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// PageSizes returns the platform's page size and allocation granularity.
// On POSIX platforms the two are the same value.
func PageSizes() (pageSize, granularity int) {
	size := unix.Getpagesize()
	return size, size
}

func unixProt(kind protKind) int {
	switch kind {
	case protKindNone:
		return unix.PROT_NONE
	case protKindRead:
		return unix.PROT_READ
	case protKindExec:
		return unix.PROT_READ | unix.PROT_EXEC
	case protKindReadWrite:
		return unix.PROT_READ | unix.PROT_WRITE
	default:
		return unix.PROT_READ | unix.PROT_WRITE | unix.PROT_EXEC
	}
}

// unixCreateFlags translates the portable flag sets into the native
// mmap flag word. Options without a platform primitive are dropped.
func unixCreateFlags(o *Options) int {
	flags := 0

	if o.file == nil {
		flags |= unix.MAP_ANON
	}

	if o.flags&CopyOnWrite != 0 {
		flags |= unix.MAP_PRIVATE
	} else {
		flags |= unix.MAP_SHARED
	}

	if o.unsafeFlags&UnsafeMapFixed != 0 {
		flags |= unix.MAP_FIXED
	}

	return flags | platformCreateFlags(o.flags, o.unsafeFlags, o.pageSize)
}

func osMap(o *Options, kind protKind) (*Mapping, error) {
	fd := -1
	var offset int64
	if o.file != nil {
		fd = int(o.file.Fd())
		offset = o.offset
	}

	var hint unsafe.Pointer
	if o.addr != 0 {
		hint = unsafe.Pointer(o.addr)
	}

	size := uintptr(o.size)
	ptr, err := unix.MmapPtr(fd, offset, hint, size, unixProt(kind), unixCreateFlags(o))
	if err != nil {
		return nil, err
	}
	data := unsafe.Slice((*byte)(ptr), o.size)

	if o.flags&NoCoreDump != 0 {
		if err := adviseNoCoreDump(data); err != nil {
			unix.MunmapPtr(ptr, size)
			return nil, err
		}
	}

	// Platforms without a lock-on-map flag lock the fresh region here.
	if o.flags&Locked != 0 && !lockedByMapFlag {
		if err := unix.Mlock(data); err != nil {
			unix.MunmapPtr(ptr, size)
			return nil, err
		}
	}

	return &Mapping{
		data:        data,
		file:        o.file,
		jit:         o.unsafeFlags&UnsafeJIT != 0,
		copyOnWrite: o.flags&CopyOnWrite != 0,
	}, nil
}

func osProtect(m *Mapping, kind protKind) error {
	return unix.Mprotect(m.data, unixProt(kind))
}

func osLock(m *Mapping) error {
	return unix.Mlock(m.data)
}

func osUnlock(m *Mapping) error {
	return unix.Munlock(m.data)
}

func osFlush(m *Mapping, from, to int, sync bool) error {
	flags := unix.MS_ASYNC
	if sync {
		flags = unix.MS_SYNC
	}
	return unix.Msync(m.data[from:to], flags)
}

func osRelease(m *Mapping) {
	unix.MunmapPtr(unsafe.Pointer(&m.data[0]), uintptr(len(m.data)))
}
