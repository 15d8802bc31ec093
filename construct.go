// SPDX-License-Identifier: Apache-2.0

package ministl

import (
	"unsafe"
)

// The construct/destroy protocol places values into raw storage and tears
// them down again, independent of where the storage came from. None of these
// functions allocate or free memory: buffer lifecycle and object lifecycle
// are deliberately decoupled so a container can grow a buffer, populate part
// of it, fail, and roll back only the constructed prefix without touching the
// buffer itself.

// Construct places v into the raw slot at p. p must point at raw,
// non-live memory.
func Construct[T any](p *T, v T) {
	*p = v
}

// Destroy tears down the element at p, leaving the slot raw again. Go has no
// destructors; teardown zeroes the slot so any references it holds are
// dropped and become collectable.
func Destroy[T any](p *T) {
	var zero T
	*p = zero
}

// DestroyRange destroys every element in [first, first+n) in forward order.
func DestroyRange[T any](first *T, n int) {
	for i := 0; i < n; i++ {
		Destroy(elemAt(first, i))
	}
}

// elemAt returns a pointer to the i-th slot of the buffer starting at base.
func elemAt[T any](base *T, i int) *T {
	return (*T)(unsafe.Add(unsafe.Pointer(base), uintptr(i)*unsafe.Sizeof(*base)))
}
