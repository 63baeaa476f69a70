package mmap

import "golang.org/x/sys/unix"

// No MAP_LOCKED equivalent; Locked is applied through mlock after the map.
const lockedByMapFlag = false

func platformCreateFlags(flags Flags, unsafeFlags UnsafeFlags, pageSize PageSize) int {
	native := 0

	if flags&HugePages != 0 || pageSize != 0 {
		// Superpage alignment is the closest primitive; there is no
		// per-class selection.
		native |= unix.MAP_ALIGNED_SUPER
	}

	if flags&Stack != 0 {
		native |= unix.MAP_STACK
	}

	// Populate and NoReserve have no primitive here and are dropped.

	return native
}

func adviseNoCoreDump(data []byte) error {
	return unix.Madvise(data, unix.MADV_NOCORE)
}
