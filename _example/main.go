package main

import (
	"fmt"
	"log"

	mmap "github.com/TimLuq/go-mmap"
)

func main() {
	pageSize, granularity := mmap.PageSizes()
	fmt.Printf("page size: %d, allocation granularity: %d\n", pageSize, granularity)

	// Write a pattern into an anonymous mapping, then seal it.
	m, err := mmap.New(pageSize).MapMut()
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	copy(m.Bytes(), []byte("hello from a mapped page"))
	if err := m.MakeReadOnly(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("sealed %d bytes at %#x: %q\n", m.Size(), m.Addr(), m.Bytes()[:24])

	// A JIT-style region requires the explicit unsafe acknowledgement.
	jit, err := mmap.New(pageSize).WithUnsafeFlags(mmap.UnsafeJIT).MapMut()
	if err != nil {
		log.Fatal(err)
	}
	defer jit.Close()

	jit.Bytes()[0] = 0xc3
	if err := jit.MakeExecMut(); err != nil {
		log.Fatal(err)
	}
	if err := jit.FlushICache(); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("executable region ready at %#x\n", jit.Addr())

	// Walk our own memory map (Linux).
	areas, err := mmap.OpenMemoryAreas(0)
	if err != nil {
		log.Fatal(err)
	}
	defer areas.Close()

	for areas.Next() {
		a := areas.Area()
		fmt.Printf("%012x-%012x %s %-13s %s\n", a.Start, a.End, a.Protection, a.Share, a.Path)
	}
	if err := areas.Err(); err != nil {
		log.Fatal(err)
	}
}
