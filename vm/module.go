package vm

import (
	"encoding/binary"
	"log"

	"github.com/lookbusy1344/riscv-vm/decoder"
)

// Module owns one executable code arena, sized once from its engine's
// configuration. Native code is installed with SetNativeCode under W^X
// discipline: the arena is writable while the code is copied in and
// executable afterwards, never both at once.
type Module struct {
	engine  *Engine
	arena   *codeArena
	codeLen int
	gas     uint64
}

// NewModule constructs a module for the given engine, acquiring its code
// arena. Returns ErrMemoryAllocationFailed if the mapping cannot be
// obtained; no partial state is retained in that case.
func NewModule(engine *Engine) (*Module, error) {
	arena, err := newCodeArena(engine.Config().MaxNativeCodeSize())
	if err != nil {
		return nil, ErrMemoryAllocationFailed
	}
	return &Module{engine: engine, arena: arena}, nil
}

// Engine returns the engine this module was built from.
func (m *Module) Engine() *Engine {
	return m.engine
}

// SetNativeCode installs pre-compiled native code at offset 0 of the code
// arena. Bytes beyond len(code) retain their prior contents (zero on a
// fresh arena).
//
// Returns ErrInvalidCodeSize if the code exceeds the arena,
// ErrMemoryProtectionFailed if a permission transition fails, and
// ErrClearCacheFailed if instruction cache invalidation fails. After a
// failed transition the arena contents are unspecified; the module remains
// safe to close.
func (m *Module) SetNativeCode(code []byte) error {
	if len(code) > m.engine.Config().MaxNativeCodeSize() {
		return ErrInvalidCodeSize
	}

	if err := m.arena.makeWritable(); err != nil {
		return ErrMemoryProtectionFailed
	}

	copy(m.arena.mem, code)

	if err := m.arena.makeExecutable(); err != nil {
		return ErrMemoryProtectionFailed
	}

	if !clearCache(m.arena.base(), m.arena.base()+uintptr(len(code))) {
		return ErrClearCacheFailed
	}

	m.codeLen = len(code)
	return nil
}

// SetRISCVCode lowers a guest RISC-V image to native code and installs it.
//
// The validation pass is in place: the image must be whole 32-bit words
// within the configured guest code budget, and every word must decode to a
// supported instruction (ErrInvalidInstruction otherwise). No lowering is
// performed: an image that passes validation makes the call panic, and
// nothing is installed.
func (m *Module) SetRISCVCode(code []byte) error {
	if len(code) > m.engine.Config().MaxCodeSize {
		return ErrInvalidCodeSize
	}
	if len(code)%4 != 0 {
		return ErrInvalidInstruction
	}
	for off := 0; off < len(code); off += 4 {
		word := binary.LittleEndian.Uint32(code[off:])
		if decoder.Decode(word).Kind == decoder.KindUnsupported {
			return ErrInvalidInstruction
		}
	}
	panic("vm: SetRISCVCode: native lowering not implemented")
}

// NativeCode returns a read-only view of the installed native code. The
// returned slice aliases the arena and must not be modified or retained
// past the module's Close.
func (m *Module) NativeCode() []byte {
	return m.arena.mem[:m.codeLen]
}

// SetGas sets the gas allowance for the module's future executions. Gas is
// decremented by generated code; there is no enforcement site until the
// lowering exists, so the counter is carried but not consumed.
func (m *Module) SetGas(gas uint64) {
	m.gas = gas
}

// Gas returns the remaining gas allowance.
func (m *Module) Gas() uint64 {
	return m.gas
}

// Close unmaps the code arena. Failure to unmap is diagnostic only; the
// module is finished either way. Close is idempotent.
func (m *Module) Close() {
	if m.arena == nil {
		return
	}
	if err := m.arena.unmap(); err != nil {
		log.Printf("vm: munmap failed: %v", err)
	}
	m.arena = nil
	m.codeLen = 0
}
