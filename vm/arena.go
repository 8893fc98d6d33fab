package vm

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// codeArena is the owning handle for a mapped executable code region. The
// region is an anonymous private mapping sized at construction and never
// resized. It is writable or executable, never both: the only permitted
// operations are the staged RW/RX transitions driven by the owning module
// and the final unmap.
type codeArena struct {
	mem []byte
}

// newCodeArena maps a read+write anonymous region of the given size. On
// hosts that require a JIT opt-in for later executable protection (Apple
// Silicon), the mapping is requested as JIT-capable up front; see
// arenaMapFlags in the per-OS files.
func newCodeArena(size int) (*codeArena, error) {
	mem, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, arenaMapFlags)
	if err != nil {
		return nil, err
	}
	return &codeArena{mem: mem}, nil
}

// makeWritable transitions the arena to read+write.
func (a *codeArena) makeWritable() error {
	return unix.Mprotect(a.mem, unix.PROT_READ|unix.PROT_WRITE)
}

// makeExecutable transitions the arena to read+execute.
func (a *codeArena) makeExecutable() error {
	return unix.Mprotect(a.mem, unix.PROT_READ|unix.PROT_EXEC)
}

// base returns the host-virtual address of the start of the arena.
func (a *codeArena) base() uintptr {
	return uintptr(unsafe.Pointer(&a.mem[0]))
}

// unmap releases the region. The arena must not be used afterwards.
func (a *codeArena) unmap() error {
	return unix.Munmap(a.mem)
}
