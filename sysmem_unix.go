//go:build linux || darwin

package ministl

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// sysAlloc obtains size bytes of zeroed memory directly from the operating
// system, outside the Go heap. The returned slice must be released with
// sysFree; the garbage collector never reclaims it.
func sysAlloc(size uintptr) ([]byte, error) {
	b, err := unix.Mmap(-1, 0, int(size),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap %d bytes: %v", ErrOutOfMemory, size, err)
	}
	return b, nil
}

// sysFree returns memory obtained from sysAlloc to the operating system.
func sysFree(b []byte) {
	_ = unix.Munmap(b)
}
