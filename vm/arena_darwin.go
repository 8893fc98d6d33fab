//go:build darwin

package vm

import "golang.org/x/sys/unix"

// On Apple Silicon an anonymous mapping can only be transitioned to
// executable if it was requested with MAP_JIT at allocation time.
const arenaMapFlags = unix.MAP_ANON | unix.MAP_PRIVATE | unix.MAP_JIT
