// SPDX-License-Identifier: Apache-2.0

package ministl

import (
	"fmt"
	"math"
	"unsafe"
)

// Allocator is the capability contract through which a Vector obtains and
// releases raw element storage. Implementations hand out uninitialized
// memory; object construction and teardown are a separate protocol (see
// Construct and Destroy).
type Allocator[T any] interface {
	// Allocate returns storage for exactly n elements of T, or an error when
	// the request cannot be satisfied (ErrOutOfMemory, ErrCapacityExceeded).
	// Allocate(0) returns (nil, nil).
	Allocate(n int) (*T, error)

	// Deallocate releases storage previously returned by Allocate on the same
	// allocator instance with the identical element count. Passing a nil
	// pointer is a no-op.
	Deallocate(p *T, n int)

	// MaxSize returns the largest n for which n * sizeof(T) does not overflow
	// the address-space size type.
	MaxSize() int
}

// ObjectLifecycle is optionally implemented by allocators that want to
// observe or customize element construction and teardown. When an allocator
// does not implement it, the package-level Construct and Destroy apply.
type ObjectLifecycle[T any] interface {
	// Construct places v into the raw slot at p.
	Construct(p *T, v T) error

	// Destroy tears down the element at p, leaving the slot raw again.
	Destroy(p *T)
}

// HeapAllocator is the pass-through allocator: every Allocate maps 1:1 to a
// Go heap allocation. It is stateless, and the returned storage carries T's
// pointer map, so any element type is safe to store.
type HeapAllocator[T any] struct{}

// Allocate satisfies the Allocator interface.
func (HeapAllocator[T]) Allocate(n int) (*T, error) {
	if n == 0 {
		return nil, nil
	}
	if n < 0 || n > (HeapAllocator[T]{}).MaxSize() {
		return nil, fmt.Errorf("%w: %d elements", ErrCapacityExceeded, n)
	}
	return unsafe.SliceData(make([]T, n)), nil
}

// Deallocate satisfies the Allocator interface. Heap buffers are reclaimed by
// the garbage collector once unreferenced, so this is a no-op kept for
// contract symmetry.
func (HeapAllocator[T]) Deallocate(p *T, n int) {}

// MaxSize satisfies the Allocator interface.
func (HeapAllocator[T]) MaxSize() int {
	size := unsafe.Sizeof(*new(T))
	if size == 0 {
		return math.MaxInt
	}
	return math.MaxInt / int(size)
}
