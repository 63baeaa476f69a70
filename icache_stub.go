//go:build !windows && !arm64

package mmap

// The x86 family keeps the L1 instruction cache coherent with the data
// cache in hardware, so invalidation is a callable no-op here.
func flushICache(data []byte) error {
	return nil
}
