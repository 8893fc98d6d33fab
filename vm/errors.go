package vm

import "errors"

// The closed set of errors returned by VM operations. All failures are
// reported as one of these values (possibly wrapped); compare with
// errors.Is. Decoding never produces an error: malformed encodings decode
// to an Unsupported instruction instead.
var (
	// ErrClearCacheFailed indicates the instruction cache could not be
	// invalidated after installing native code.
	ErrClearCacheFailed = errors.New("clear cache failed")

	// ErrInvalidCodeSize indicates code submitted to a module exceeds the
	// size budget fixed by its engine's configuration.
	ErrInvalidCodeSize = errors.New("invalid code size")

	// ErrInvalidEngine indicates a module and memory from different engine
	// allocations were combined into an instance.
	ErrInvalidEngine = errors.New("invalid engine")

	// ErrInvalidInstruction indicates guest code contains an instruction
	// that is not valid or not supported.
	ErrInvalidInstruction = errors.New("invalid or unsupported instruction")

	// ErrMemoryAllocationFailed indicates the code arena mapping could not
	// be obtained.
	ErrMemoryAllocationFailed = errors.New("memory allocation failed")

	// ErrMemoryProtectionFailed indicates a permission transition on the
	// code arena failed.
	ErrMemoryProtectionFailed = errors.New("memory protection failed")

	// ErrOutOfGas indicates guest execution exhausted its gas allowance.
	// Reserved for generated code; no current operation raises it.
	ErrOutOfGas = errors.New("out of gas")
)
