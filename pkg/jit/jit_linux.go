//go:build linux && amd64

// Package jit maps anonymous memory that emitted code can be linked
// into and executed from. Linux/amd64 only; other platforms get a
// stub that reports ErrUnsupported.
package jit

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// Region is a page-aligned anonymous mapping. It starts read-write
// for linking and becomes read-execute after Finalize.
type Region struct {
	mem []byte
}

// Alloc maps a read-write region of at least n bytes, rounded up to
// the page size.
func Alloc(n int) (*Region, error) {
	if n <= 0 {
		return nil, fmt.Errorf("jit: invalid region size %d", n)
	}
	page := unix.Getpagesize()
	size := (n + page - 1) / page * page
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		return nil, fmt.Errorf("jit: mmap: %w", err)
	}
	return &Region{mem: mem}, nil
}

// Bytes returns the mapped memory. Writable until Finalize.
func (r *Region) Bytes() []byte { return r.mem }

// Addr returns the region's base address.
func (r *Region) Addr() uintptr { return uintptr(unsafe.Pointer(&r.mem[0])) }

// Finalize switches the region to read-execute. No further writes are
// allowed after this.
func (r *Region) Finalize() error {
	if err := unix.Mprotect(r.mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return fmt.Errorf("jit: mprotect: %w", err)
	}
	return nil
}

// Close unmaps the region. The function values returned by Func1
// become invalid.
func (r *Region) Close() error {
	mem := r.mem
	r.mem = nil
	return unix.Munmap(mem)
}

// Func1 returns the region's entry point as a one-argument function.
// Go's internal ABI passes the first integer argument and the result
// in RAX; code emitted for the System V convention needs a
// `mov rdi, rax` bridge at the entry (see the factorial driver).
func (r *Region) Func1() func(int64) int64 {
	entry := unsafe.Pointer(&r.mem[0])
	fv := &entry
	return *(*func(int64) int64)(unsafe.Pointer(&fv))
}
