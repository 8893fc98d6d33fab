//go:build arm64

package vm

// jitcall invokes the C-ABI function at the given code address with a
// single 32-bit argument and returns its 32-bit result. The callee receives
// the argument in w0 and returns in w0, per the AAPCS64; it runs on the
// calling goroutine's stack and must preserve the callee-saved register
// set. Implemented in jitcall_arm64.s.
//
//go:noescape
func jitcall(code uintptr, arg uint32) uint32
