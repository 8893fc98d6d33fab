//go:build unix && !darwin

package vm

import "golang.org/x/sys/unix"

const arenaMapFlags = unix.MAP_ANON | unix.MAP_PRIVATE
