package mmap

import "strings"

// Flags configures optional behavior of a mapping. Options that a
// platform does not support are silently dropped during translation;
// they never cause a creation failure.
type Flags uint32

const (
	// CopyOnWrite maps the region privately: writes are redirected to
	// process-private pages instead of the backing file.
	CopyOnWrite Flags = 1 << iota
	// Populate prefaults the page tables so that first accesses do not
	// take minor faults (Linux only).
	Populate
	// NoReserve skips swap-space reservation for the mapping.
	NoReserve
	// HugePages requests huge-page backing for the mapping. Combine
	// with Options.WithPageSize to select a specific size class.
	HugePages
	// Locked locks the pages into physical memory as part of creation.
	Locked
	// Stack hints that the mapping will be used as a stack.
	Stack
	// NoCoreDump excludes the mapping from core dumps. Best effort: on
	// platforms without the advisory primitive this is a no-op.
	NoCoreDump
)

var flagNames = []struct {
	flag Flags
	name string
}{
	{CopyOnWrite, "COPY_ON_WRITE"},
	{Populate, "POPULATE"},
	{NoReserve, "NO_RESERVE"},
	{HugePages, "HUGE_PAGES"},
	{Locked, "LOCKED"},
	{Stack, "STACK"},
	{NoCoreDump, "NO_CORE_DUMP"},
}

func (f Flags) String() string {
	var names []string
	for _, fn := range flagNames {
		if f&fn.flag != 0 {
			names = append(names, fn.name)
		}
	}
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, "|")
}

// UnsafeFlags configures behavior that can violate memory safety. They
// are deliberately kept apart from Flags: passing them through
// Options.WithUnsafeFlags is the caller's explicit acknowledgement of
// the risk.
type UnsafeFlags uint32

const (
	// UnsafeMapFixed places the mapping at exactly the requested
	// address, replacing any existing mappings in that range.
	UnsafeMapFixed UnsafeFlags = 1 << iota
	// UnsafeJIT permits the mapping to hold write and execute
	// permission at the same time.
	UnsafeJIT
)

func (f UnsafeFlags) String() string {
	var names []string
	if f&UnsafeMapFixed != 0 {
		names = append(names, "MAP_FIXED")
	}
	if f&UnsafeJIT != 0 {
		names = append(names, "JIT")
	}
	if len(names) == 0 {
		return "0"
	}
	return strings.Join(names, "|")
}

// PageSize selects a huge-page size class. The value is the base-2
// logarithm of the page size in bytes; the zero value means no explicit
// size class. Size classes the platform does not understand contribute
// no size sub-flag, leaving the system default huge-page size in effect.
type PageSize uint8

const (
	PageSize64KB  PageSize = 16
	PageSize512KB PageSize = 19
	PageSize1MB   PageSize = 20
	PageSize2MB   PageSize = 21
	PageSize8MB   PageSize = 23
	PageSize16MB  PageSize = 24
	PageSize32MB  PageSize = 25
	PageSize256MB PageSize = 28
	PageSize512MB PageSize = 29
	PageSize1GB   PageSize = 30
	PageSize2GB   PageSize = 31
	PageSize16GB  PageSize = 34
)

// Bytes returns the page size in bytes.
func (p PageSize) Bytes() uint64 {
	return 1 << p
}
