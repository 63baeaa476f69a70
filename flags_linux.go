package mmap

import "golang.org/x/sys/unix"

// MAP_LOCKED covers the Locked flag at map time.
const lockedByMapFlag = true

func platformCreateFlags(flags Flags, unsafeFlags UnsafeFlags, pageSize PageSize) int {
	native := 0

	if flags&Populate != 0 {
		native |= unix.MAP_POPULATE
	}

	if flags&NoReserve != 0 {
		native |= unix.MAP_NORESERVE
	}

	if flags&HugePages != 0 {
		native |= unix.MAP_HUGETLB
	}

	if pageSize != 0 {
		native |= unix.MAP_HUGETLB | hugePageFlag(pageSize)
	}

	if flags&Locked != 0 {
		native |= unix.MAP_LOCKED
	}

	if flags&Stack != 0 {
		native |= unix.MAP_STACK
	}

	return native
}

// hugePageFlag encodes a size class as the kernel's MAP_HUGE_* value.
// Classes outside the known set contribute no sub-flag, leaving the
// default huge-page size in effect.
func hugePageFlag(pageSize PageSize) int {
	switch pageSize {
	case PageSize64KB, PageSize512KB, PageSize1MB, PageSize2MB,
		PageSize8MB, PageSize16MB, PageSize32MB, PageSize256MB,
		PageSize512MB, PageSize1GB, PageSize2GB, PageSize16GB:
		return int(pageSize) << unix.MAP_HUGE_SHIFT
	default:
		return 0
	}
}

func adviseNoCoreDump(data []byte) error {
	return unix.Madvise(data, unix.MADV_DONTDUMP)
}
