package mmap

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
)

// Protection is the read/write/execute permission combination of a
// memory region.
type Protection uint8

const (
	ProtRead Protection = 1 << iota
	ProtWrite
	ProtExec
)

// String renders the permission bits in /proc/[pid]/maps style, e.g. "r-x".
func (p Protection) String() string {
	buf := []byte{'-', '-', '-'}
	if p&ProtRead != 0 {
		buf[0] = 'r'
	}
	if p&ProtWrite != 0 {
		buf[1] = 'w'
	}
	if p&ProtExec != 0 {
		buf[2] = 'x'
	}
	return string(buf)
}

// ShareMode describes how writes to a region interact with other
// processes and the backing file.
type ShareMode int

const (
	// SharePrivate is a private anonymous region.
	SharePrivate ShareMode = iota
	// ShareShared propagates writes to other mappings and the backing file.
	ShareShared
	// ShareCopyOnWrite is a private file-backed region: writes go to
	// process-private copies of the file's pages.
	ShareCopyOnWrite
)

func (s ShareMode) String() string {
	switch s {
	case ShareShared:
		return "shared"
	case ShareCopyOnWrite:
		return "copy-on-write"
	default:
		return "private"
	}
}

// MemoryArea describes one mapped region of a process. Offset is
// meaningful only when Path is non-empty.
type MemoryArea struct {
	Start      uintptr
	End        uintptr
	Protection Protection
	Share      ShareMode
	Path       string
	Offset     int64
}

// One maps line: start-end perms offset major:minor inode [path].
// The path is everything from the first non-blank character to the end
// of the line, embedded spaces included.
var areaPattern = regexp.MustCompile(
	`^([0-9a-fA-F]+)-([0-9a-fA-F]+)\s+([r-])([w-])([x-])([sp])\s+([0-9a-fA-F]+)\s+([0-9a-fA-F]+):([0-9a-fA-F]+)\s+([0-9]+)(?:\s+(\S.*?))?\s*$`)

// parseMemoryArea decodes a single maps line. Lines that do not match
// the grammar report ok=false and are skipped by the iterator: the
// introspection stream favors robustness over strict validation.
func parseMemoryArea(line string) (area MemoryArea, ok bool) {
	fields := areaPattern.FindStringSubmatch(line)
	if fields == nil {
		return MemoryArea{}, false
	}

	start, err := strconv.ParseUint(fields[1], 16, 64)
	if err != nil {
		return MemoryArea{}, false
	}
	end, err := strconv.ParseUint(fields[2], 16, 64)
	if err != nil {
		return MemoryArea{}, false
	}

	var prot Protection
	if fields[3] == "r" {
		prot |= ProtRead
	}
	if fields[4] == "w" {
		prot |= ProtWrite
	}
	if fields[5] == "x" {
		prot |= ProtExec
	}

	share := SharePrivate
	if fields[6] == "s" {
		share = ShareShared
	}

	offset, err := strconv.ParseUint(fields[7], 16, 64)
	if err != nil {
		return MemoryArea{}, false
	}

	// Device id and inode are validated but not kept.
	if _, err := strconv.ParseUint(fields[8], 16, 8); err != nil {
		return MemoryArea{}, false
	}
	if _, err := strconv.ParseUint(fields[9], 16, 8); err != nil {
		return MemoryArea{}, false
	}
	if _, err := strconv.ParseUint(fields[10], 10, 64); err != nil {
		return MemoryArea{}, false
	}

	path := fields[11]

	// A private file-backed mapping really is copy-on-write: the file's
	// pages are shared until written to.
	if path != "" && share == SharePrivate {
		share = ShareCopyOnWrite
	}

	area = MemoryArea{
		Start:      uintptr(start),
		End:        uintptr(end),
		Protection: prot,
		Share:      share,
		Path:       path,
	}
	if path != "" {
		area.Offset = int64(offset)
	}
	return area, true
}

// MemoryAreas is a lazy, forward-only iterator over the memory regions
// of a process. It follows the bufio.Scanner idiom:
//
//	for areas.Next() {
//		a := areas.Area()
//		...
//	}
//	if err := areas.Err(); err != nil { ... }
type MemoryAreas struct {
	sc     *bufio.Scanner
	closer io.Closer
	area   MemoryArea
	err    error
	done   bool
}

func newMemoryAreas(r io.Reader) *MemoryAreas {
	return &MemoryAreas{sc: bufio.NewScanner(r)}
}

// Next advances to the next parseable region. It returns false when the
// listing is exhausted or a read error occurred; Err distinguishes the
// two. Malformed lines are skipped.
func (r *MemoryAreas) Next() bool {
	if r.done {
		return false
	}
	for r.sc.Scan() {
		area, ok := parseMemoryArea(r.sc.Text())
		if !ok {
			continue
		}
		r.area = area
		return true
	}
	r.err = r.sc.Err()
	r.done = true
	return false
}

// Area returns the region produced by the last successful Next.
func (r *MemoryAreas) Area() MemoryArea {
	return r.area
}

// Err returns the first read error encountered, if any.
func (r *MemoryAreas) Err() error {
	return r.err
}

// Close releases the underlying listing.
func (r *MemoryAreas) Close() error {
	r.done = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}
