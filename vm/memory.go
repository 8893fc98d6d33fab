package vm

// Memory is the guest data memory of an instance: a zero-initialised byte
// buffer sized by the engine's MaxInstanceMemory. Bounds-checked access is
// the obligation of the generated code that treats this buffer as the
// guest address space; this layer only allocates and carries it.
type Memory struct {
	engine *Engine
	bytes  []byte
}

// NewMemory constructs a zero-filled memory for the given engine.
func NewMemory(engine *Engine) *Memory {
	return &Memory{
		engine: engine,
		bytes:  make([]byte, engine.Config().MaxInstanceMemory),
	}
}

// Engine returns the engine this memory was built from.
func (m *Memory) Engine() *Engine {
	return m.engine
}

// Bytes returns the backing buffer.
func (m *Memory) Bytes() []byte {
	return m.bytes
}
