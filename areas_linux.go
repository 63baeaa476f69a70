package mmap

import (
	"fmt"
	"os"
)

// OpenMemoryAreas opens the memory-map listing of the process with the
// given pid, or of the current process when pid is 0. The returned
// iterator holds the listing open until Close.
func OpenMemoryAreas(pid int) (*MemoryAreas, error) {
	path := "/proc/self/maps"
	if pid > 0 {
		path = fmt.Sprintf("/proc/%d/maps", pid)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	areas := newMemoryAreas(f)
	areas.closer = f
	return areas, nil
}
