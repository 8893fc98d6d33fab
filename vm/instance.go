package vm

// Instance pairs a module with a memory and dispatches calls into the
// module's code arena. An instance exclusively owns its module and memory
// for its lifetime; Decompose returns them to the caller.
type Instance struct {
	module *Module
	memory *Memory
}

// NewInstance combines a module and a memory into an instance. Both must
// originate from the same engine allocation; equal configurations from
// distinct engines are rejected with ErrInvalidEngine.
func NewInstance(module *Module, memory *Memory) (*Instance, error) {
	if module.engine != memory.engine {
		return nil, ErrInvalidEngine
	}
	return &Instance{module: module, memory: memory}, nil
}

// Call invokes the native code at byte offset pc in the module's code
// arena as a C-ABI function of one 32-bit argument, returning its 32-bit
// result. The call is synchronous and blocks until the native code
// returns.
//
// The installed code is trusted by construction for this call: gas
// accounting, syscall dispatch and pc bounds are obligations of the code
// generator, not of the invocation site.
func (i *Instance) Call(pc uint32, arg uint32) (uint32, error) {
	return jitcall(i.module.arena.base()+uintptr(pc), arg), nil
}

// Module returns the instance's module. The instance retains ownership.
func (i *Instance) Module() *Module {
	return i.module
}

// Memory returns the instance's memory. The instance retains ownership.
func (i *Instance) Memory() *Memory {
	return i.memory
}

// Decompose dissolves the instance, returning its module and memory to the
// caller without destroying them.
func (i *Instance) Decompose() (*Module, *Memory) {
	return i.module, i.memory
}
