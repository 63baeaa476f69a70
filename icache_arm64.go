//go:build !windows

package mmap

import "unsafe"

// arm64 does not keep the instruction cache coherent with the data
// cache; freshly written code must be cleaned out of the data cache and
// invalidated from the instruction cache before it can be executed.
func flushICache(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	begin := uintptr(unsafe.Pointer(&data[0]))
	flushICacheRange(begin, begin+uintptr(len(data)))
	return nil
}

// flushICacheRange is implemented in icache_arm64.s.
//
//go:noescape
func flushICacheRange(begin, end uintptr)
