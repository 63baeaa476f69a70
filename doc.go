// Package mmap provides a portable abstraction over operating-system
// virtual-memory mapping primitives.
//
// # Overview
//
// The package creates anonymous or file-backed memory regions, changes
// their page protection, locks pages into physical memory, flushes dirty
// pages to backing files, and invalidates instruction caches after code
// has been written into an executable region. Three platform families
// are supported behind one API: POSIX mmap/mprotect (linux, darwin,
// freebsd), Windows VirtualAlloc/CreateFileMapping, and the Linux
// /proc/[pid]/maps introspection facility.
//
// # Usage
//
//	m, err := mmap.New(4096).MapMut()
//	if err != nil { ... }
//	defer m.Close()
//
//	copy(m.Bytes(), payload)
//	if err := m.MakeReadOnly(); err != nil { ... }
//
// File-backed mappings borrow the file handle and own it for the
// lifetime of the mapping:
//
//	f, _ := os.Open("segment.bin")
//	m, err := mmap.New(int(size)).WithFile(f, 0).Map()
//
// # Safety
//
// A mapping that is simultaneously writable and executable is a common
// code-injection primitive, so the package refuses to create or
// transition into read-write-execute protection unless the caller has
// explicitly acknowledged the risk through WithUnsafeFlags(UnsafeJIT).
// This gate is enforced by the library, not the operating system.
//
// After writing code into an executable mapping, call FlushICache before
// running it. On architectures without automatic instruction/data cache
// coherency (arm64) the call performs the required maintenance sequence;
// on x86 it is a no-op success.
//
// # Thread Safety
//
// A Mapping is owned by a single logical owner. Close is idempotent and
// protected by atomic operations, but protection transitions, locking,
// and flushes require external synchronization if shared across
// goroutines. The mapped bytes themselves are an uncontrolled shared
// resource once the slice escapes; the package performs no bounds or
// overlap checking beyond the initial mapping.
//
// # Introspection
//
// On Linux, OpenMemoryAreas parses the live memory map of a process into
// structured records:
//
//	areas, err := mmap.OpenMemoryAreas(0) // current process
//	if err != nil { ... }
//	defer areas.Close()
//	for areas.Next() {
//		a := areas.Area()
//		fmt.Printf("%x-%x %s %s\n", a.Start, a.End, a.Protection, a.Path)
//	}
//	if err := areas.Err(); err != nil { ... }
package mmap
