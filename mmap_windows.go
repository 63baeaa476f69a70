//go:build windows

package mmap

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procGetSystemInfo         = kernel32.NewProc("GetSystemInfo")
	procMapViewOfFileEx       = kernel32.NewProc("MapViewOfFileEx")
	procFlushInstructionCache = kernel32.NewProc("FlushInstructionCache")
)

// Not exported by golang.org/x/sys/windows.
const (
	secLargePages     = 0x80000000 // SEC_LARGE_PAGES
	fileMapLargePages = 0x20000000 // FILE_MAP_LARGE_PAGES
)

type systemInfo struct {
	processorArchitecture     uint16
	reserved                  uint16
	pageSize                  uint32
	minimumApplicationAddress uintptr
	maximumApplicationAddress uintptr
	activeProcessorMask       uintptr
	numberOfProcessors        uint32
	processorType             uint32
	allocationGranularity     uint32
	processorLevel            uint16
	processorRevision         uint16
}

// PageSizes returns the platform's page size and allocation granularity.
// Views must be placed and file offsets aligned on the allocation
// granularity, which is typically larger than the page size.
func PageSizes() (pageSize, granularity int) {
	var info systemInfo
	procGetSystemInfo.Call(uintptr(unsafe.Pointer(&info)))
	return int(info.pageSize), int(info.allocationGranularity)
}

// winProt translates a protection level to the native page protection.
// Write access on a copy-on-write mapping uses the WRITECOPY variants.
func winProt(kind protKind, copyOnWrite bool) uint32 {
	switch kind {
	case protKindNone:
		return windows.PAGE_NOACCESS
	case protKindRead:
		return windows.PAGE_READONLY
	case protKindExec:
		return windows.PAGE_EXECUTE_READ
	case protKindReadWrite:
		if copyOnWrite {
			return windows.PAGE_WRITECOPY
		}
		return windows.PAGE_READWRITE
	default:
		if copyOnWrite {
			return windows.PAGE_EXECUTE_WRITECOPY
		}
		return windows.PAGE_EXECUTE_READWRITE
	}
}

// checkProtection probes whether a file-mapping object can be created
// with the given protection by creating and immediately closing a
// throwaway mapping object. The probe is how the achievable access
// level is discovered: unlike POSIX, Windows refuses to escalate a
// mapping's protection beyond what the mapping object was created with.
func checkProtection(o *Options, protection uint32) bool {
	if o.file == nil {
		return false
	}
	h, err := windows.CreateFileMapping(windows.Handle(o.file.Fd()), nil, protection, 0, 0, nil)
	if err != nil {
		return false
	}
	windows.CloseHandle(h)
	return true
}

func osMap(o *Options, kind protKind) (*Mapping, error) {
	copyOnWrite := o.flags&CopyOnWrite != 0
	protection := winProt(kind, copyOnWrite)

	var addr uintptr
	if o.file == nil {
		allocType := uint32(windows.MEM_COMMIT | windows.MEM_RESERVE)
		if o.flags&HugePages != 0 || o.pageSize != 0 {
			allocType |= windows.MEM_LARGE_PAGES
		}
		var err error
		addr, err = windows.VirtualAlloc(o.addr, uintptr(o.size), allocType, protection)
		if err != nil {
			return nil, fmt.Errorf("virtual alloc: %w", err)
		}
	} else {
		var err error
		addr, err = mapFileView(o, protection)
		if err != nil {
			return nil, err
		}
	}

	return &Mapping{
		data:        unsafe.Slice((*byte)(unsafe.Pointer(addr)), o.size),
		file:        o.file,
		jit:         o.unsafeFlags&UnsafeJIT != 0,
		copyOnWrite: copyOnWrite,
	}, nil
}

// mapFileView runs the two-phase probe-then-commit protocol for
// file-backed mappings: probe the widest protection the file handle
// permits, create the mapping object at that protection, map the view,
// then narrow the pages down to the requested protection.
func mapFileView(o *Options, protection uint32) (uintptr, error) {
	write := checkProtection(o, windows.PAGE_READWRITE)
	execute := checkProtection(o, windows.PAGE_EXECUTE_READ)

	mapAccess := uint32(windows.FILE_MAP_READ)
	var mapProtection uint32
	switch {
	case write && execute:
		mapAccess |= windows.FILE_MAP_WRITE | windows.FILE_MAP_EXECUTE
		mapProtection = windows.PAGE_EXECUTE_READWRITE
	case write:
		mapAccess |= windows.FILE_MAP_WRITE
		mapProtection = windows.PAGE_READWRITE
	case execute:
		mapAccess |= windows.FILE_MAP_EXECUTE
		mapProtection = windows.PAGE_EXECUTE_READ
	default:
		mapProtection = windows.PAGE_READONLY
	}

	if o.flags&HugePages != 0 || o.pageSize != 0 {
		mapAccess |= fileMapLargePages
		mapProtection |= secLargePages
	}

	size := uint64(o.size)
	h, err := windows.CreateFileMapping(windows.Handle(o.file.Fd()), nil, mapProtection,
		uint32(size>>32), uint32(size), nil)
	if err != nil {
		return 0, fmt.Errorf("create file mapping: %w", err)
	}

	offset := uint64(o.offset)
	addr, _, callErr := procMapViewOfFileEx.Call(uintptr(h), uintptr(mapAccess),
		uintptr(offset>>32), uintptr(uint32(offset)), uintptr(o.size), o.addr)
	// The view holds its own reference to the mapping object.
	windows.CloseHandle(h)
	if addr == 0 {
		return 0, fmt.Errorf("map view of file: %w", callErr)
	}

	var old uint32
	if err := windows.VirtualProtect(addr, uintptr(o.size), protection, &old); err != nil {
		// The view must not leak when the narrowing step fails.
		windows.UnmapViewOfFile(addr)
		return 0, fmt.Errorf("virtual protect: %w", err)
	}

	return addr, nil
}

func osProtect(m *Mapping, kind protKind) error {
	var old uint32
	return windows.VirtualProtect(m.baseAddr(), uintptr(len(m.data)), winProt(kind, m.copyOnWrite), &old)
}

func osLock(m *Mapping) error {
	return windows.VirtualLock(m.baseAddr(), uintptr(len(m.data)))
}

func osUnlock(m *Mapping) error {
	return windows.VirtualUnlock(m.baseAddr(), uintptr(len(m.data)))
}

func osFlush(m *Mapping, from, to int, sync bool) error {
	if err := windows.FlushViewOfFile(m.baseAddr()+uintptr(from), uintptr(to-from)); err != nil {
		return err
	}
	if sync && m.file != nil {
		return windows.FlushFileBuffers(windows.Handle(m.file.Fd()))
	}
	return nil
}

func osRelease(m *Mapping) {
	if m.file != nil {
		windows.UnmapViewOfFile(m.baseAddr())
	} else {
		windows.VirtualFree(m.baseAddr(), 0, windows.MEM_RELEASE)
	}
}

func (m *Mapping) baseAddr() uintptr {
	return uintptr(unsafe.Pointer(&m.data[0]))
}

func flushICache(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	// Unconditional: tracking writes is not practical, and the call is
	// a cheap no-op on coherent architectures.
	ret, _, err := procFlushInstructionCache.Call(
		uintptr(windows.CurrentProcess()),
		uintptr(unsafe.Pointer(&data[0])),
		uintptr(len(data)))
	if ret == 0 {
		return err
	}
	return nil
}
