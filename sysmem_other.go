//go:build !linux && !darwin

package ministl

// sysAlloc obtains size bytes of zeroed memory. On platforms without an mmap
// path the block comes from the Go heap and stays alive for as long as the
// caller references the slice.
func sysAlloc(size uintptr) ([]byte, error) {
	return make([]byte, size), nil
}

// sysFree releases memory obtained from sysAlloc. Heap-backed blocks are
// reclaimed by the garbage collector, so there is nothing to do.
func sysFree(b []byte) {}
