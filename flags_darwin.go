package mmap

// No MAP_LOCKED equivalent; Locked is applied through mlock after the map.
const lockedByMapFlag = false

func platformCreateFlags(flags Flags, unsafeFlags UnsafeFlags, pageSize PageSize) int {
	native := 0

	if flags&NoReserve != 0 {
		native |= mapNoReserve
	}

	// Populate, HugePages, Stack and explicit size classes have no
	// primitive here and are dropped.

	if unsafeFlags&UnsafeJIT != 0 {
		native |= mapJIT
	}

	return native
}

// golang.org/x/sys/unix does not export these for darwin.
const (
	mapNoReserve = 0x0040 // MAP_NORESERVE
	mapJIT       = 0x0800 // MAP_JIT
)

// No MADV_DONTDUMP equivalent; exclusion from core dumps is best effort.
func adviseNoCoreDump(data []byte) error {
	return nil
}
