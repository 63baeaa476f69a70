package mmap

import "os"

// protKind enumerates the five protection levels a mapping can be
// created with or transitioned to. Translation to native protection
// constants happens in the platform backends.
type protKind int

const (
	protKindNone protKind = iota
	protKindRead
	protKindExec
	protKindReadWrite
	protKindFull
)

// Options accumulates the configuration of a mapping before one of the
// terminal map calls creates it. The zero Options is not usable; start
// with New.
//
// An Options value must not be reused after a terminal call: on success
// the returned Mapping takes ownership of the backing file handle.
type Options struct {
	addr        uintptr
	file        *os.File
	offset      int64
	size        int
	flags       Flags
	unsafeFlags UnsafeFlags
	pageSize    PageSize
}

// New returns an Options for a mapping of size bytes.
func New(size int) *Options {
	return &Options{size: size}
}

// WithAddress sets the address hint for the mapping. The kernel is free
// to place the mapping elsewhere unless UnsafeMapFixed is also set.
func (o *Options) WithAddress(addr uintptr) *Options {
	o.addr = addr
	return o
}

// WithFile backs the mapping with f starting at the given byte offset.
// Without a file the mapping is anonymous and zero-initialized. On
// success the Mapping owns f and closes it when the Mapping is closed;
// on failure ownership stays with the caller.
func (o *Options) WithFile(f *os.File, offset int64) *Options {
	o.file = f
	o.offset = offset
	return o
}

// WithFlags sets the mapping flags.
func (o *Options) WithFlags(flags Flags) *Options {
	o.flags = flags
	return o
}

// WithUnsafeFlags sets flags that can violate memory safety. Calling
// this setter is the explicit acknowledgement required before MapExecMut
// or Mapping.MakeExecMut will produce a writable and executable region,
// and before UnsafeMapFixed will clobber existing mappings.
func (o *Options) WithUnsafeFlags(flags UnsafeFlags) *Options {
	o.unsafeFlags = flags
	return o
}

// WithPageSize selects an explicit huge-page size class. Implies
// huge-page backing on platforms that support it.
func (o *Options) WithPageSize(size PageSize) *Options {
	o.pageSize = size
	return o
}

// MapNone creates the mapping with no access permissions.
func (o *Options) MapNone() (*Mapping, error) {
	return o.mapProt(protKindNone)
}

// Map creates the mapping with read-only access.
func (o *Options) Map() (*Mapping, error) {
	return o.mapProt(protKindRead)
}

// MapExec creates the mapping with read and execute access.
func (o *Options) MapExec() (*Mapping, error) {
	return o.mapProt(protKindExec)
}

// MapMut creates the mapping with read and write access.
func (o *Options) MapMut() (*Mapping, error) {
	return o.mapProt(protKindReadWrite)
}

// MapExecMut creates the mapping with read, write and execute access.
// It fails with *ErrUnsafeFlagNeeded unless UnsafeJIT was granted
// through WithUnsafeFlags.
func (o *Options) MapExecMut() (*Mapping, error) {
	if o.unsafeFlags&UnsafeJIT == 0 {
		return nil, &ErrUnsafeFlagNeeded{Flag: UnsafeJIT}
	}
	return o.mapProt(protKindFull)
}

func (o *Options) mapProt(kind protKind) (*Mapping, error) {
	if o.size <= 0 {
		return nil, ErrInvalidSize
	}
	return osMap(o, kind)
}
