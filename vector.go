// SPDX-License-Identifier: Apache-2.0

package ministl

import (
	"fmt"
	"iter"
	"unsafe"
)

// Vector is a growable contiguous sequence of T. It owns a single buffer
// obtained through a pluggable Allocator and tracks the live length
// separately from the allocated capacity: slots in [0, Len()) hold
// constructed elements, slots in [Len(), Cap()) are raw memory.
//
// The zero value is an empty vector backed by the Go heap. A Vector is not
// safe for concurrent mutation; concurrent read-only access is fine.
type Vector[T any] struct {
	data  *T
	size  int
	cap   int
	alloc Allocator[T]
}

// New returns an empty vector backed by the Go heap.
func New[T any]() *Vector[T] {
	return NewWith[T](HeapAllocator[T]{})
}

// NewWith returns an empty vector that obtains all of its storage through a.
// The vector assumes exclusive ownership of every buffer a hands out; no
// other party may release them.
func NewWith[T any](a Allocator[T]) *Vector[T] {
	return &Vector[T]{alloc: a}
}

// Of returns a heap-backed vector holding the given values.
func Of[T any](values ...T) (*Vector[T], error) {
	v := New[T]()
	if err := v.AssignSlice(values); err != nil {
		return nil, err
	}
	return v, nil
}

// Repeat returns a heap-backed vector holding count copies of value.
func Repeat[T any](count int, value T) (*Vector[T], error) {
	v := New[T]()
	if err := v.Assign(count, value); err != nil {
		return nil, err
	}
	return v, nil
}

// allocator returns the vector's allocator, defaulting the zero value to the
// heap on first use.
func (v *Vector[T]) allocator() Allocator[T] {
	if v.alloc == nil {
		v.alloc = HeapAllocator[T]{}
	}
	return v.alloc
}

// Len returns the number of live elements.
func (v *Vector[T]) Len() int { return v.size }

// Cap returns the number of element slots backed by allocated memory.
func (v *Vector[T]) Cap() int { return v.cap }

// Empty reports whether the vector holds no elements.
func (v *Vector[T]) Empty() bool { return v.size == 0 }

// MaxSize returns the largest element count the allocator can represent.
func (v *Vector[T]) MaxSize() int { return v.allocator().MaxSize() }

// At returns the element at index i. It fails with ErrOutOfRange when i is
// not within [0, Len()).
func (v *Vector[T]) At(i int) (T, error) {
	if i < 0 || i >= v.size {
		var zero T
		return zero, fmt.Errorf("%w: index %d, len %d", ErrOutOfRange, i, v.size)
	}
	return *elemAt(v.data, i), nil
}

// Set replaces the element at index i. It fails with ErrOutOfRange when i is
// not within [0, Len()).
func (v *Vector[T]) Set(i int, value T) error {
	if i < 0 || i >= v.size {
		return fmt.Errorf("%w: index %d, len %d", ErrOutOfRange, i, v.size)
	}
	*elemAt(v.data, i) = value
	return nil
}

// Front returns the first element. It fails with ErrEmpty on an empty vector.
func (v *Vector[T]) Front() (T, error) {
	if v.size == 0 {
		var zero T
		return zero, fmt.Errorf("%w: front", ErrEmpty)
	}
	return *v.data, nil
}

// Back returns the last element. It fails with ErrEmpty on an empty vector.
func (v *Vector[T]) Back() (T, error) {
	if v.size == 0 {
		var zero T
		return zero, fmt.Errorf("%w: back", ErrEmpty)
	}
	return *elemAt(v.data, v.size-1), nil
}

// Slice returns a view over the live elements. The view is valid only until
// the next mutation that reallocates, shifts, or truncates the vector.
func (v *Vector[T]) Slice() []T {
	if v.data == nil {
		return nil
	}
	return unsafe.Slice(v.data, v.size)
}

// Data returns a pointer to the first element slot, or nil when no buffer is
// allocated. The same validity rules as Slice apply.
func (v *Vector[T]) Data() *T { return v.data }

// All returns an iterator over index/element pairs in order. The vector must
// not be mutated during iteration.
func (v *Vector[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for i := 0; i < v.size; i++ {
			if !yield(i, *elemAt(v.data, i)) {
				return
			}
		}
	}
}

// Values returns an iterator over the elements in order. The vector must not
// be mutated during iteration.
func (v *Vector[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for i := 0; i < v.size; i++ {
			if !yield(*elemAt(v.data, i)) {
				return
			}
		}
	}
}

// ensureCapacity grows the buffer so it can hold at least needed elements.
// Growth doubles the current capacity, with a floor of one slot so an empty
// vector makes progress and a ceiling raised to the request when one doubling
// step is not enough.
func (v *Vector[T]) ensureCapacity(needed int) error {
	if needed <= v.cap {
		return nil
	}
	maxSize := v.MaxSize()
	if needed > maxSize {
		return fmt.Errorf("%w: need %d elements, max %d", ErrCapacityExceeded, needed, maxSize)
	}
	newCap := v.cap * 2
	if v.cap == 0 {
		newCap = 1
	}
	if newCap < needed {
		newCap = needed
	}
	if newCap > maxSize {
		newCap = maxSize
	}
	return v.reallocate(newCap)
}

// reallocate relocates every live element into a fresh buffer of capacity
// newCap, then destroys the old elements and releases the old buffer. Growth
// is never performed in place. If relocation fails partway, the already-moved
// prefix in the new buffer is destroyed and the new buffer released; the old
// buffer still owns its elements and the vector is exactly as it was.
// reallocate(0) destroys everything and drops the buffer.
func (v *Vector[T]) reallocate(newCap int) error {
	a := v.allocator()
	if newCap == 0 {
		destroyRangeVia(a, v.data, v.size)
		a.Deallocate(v.data, v.cap)
		v.data, v.size, v.cap = nil, 0, 0
		return nil
	}

	newData, err := a.Allocate(newCap)
	if err != nil {
		return err
	}
	if err := uninitializedCopy(a, newData, v.data, v.size); err != nil {
		a.Deallocate(newData, newCap)
		return err
	}

	destroyRangeVia(a, v.data, v.size)
	a.Deallocate(v.data, v.cap)
	v.data = newData
	v.cap = newCap
	return nil
}

// PushBack appends value, growing the buffer when needed.
func (v *Vector[T]) PushBack(value T) error {
	if err := v.ensureCapacity(v.size + 1); err != nil {
		return err
	}
	if err := constructVia(v.allocator(), elemAt(v.data, v.size), value); err != nil {
		return err
	}
	v.size++
	return nil
}

// PopBack removes the last element. It is a no-op on an empty vector.
func (v *Vector[T]) PopBack() {
	if v.size == 0 {
		return
	}
	v.size--
	destroyVia(v.allocator(), elemAt(v.data, v.size))
}

// Insert places value before index i and returns the index of the inserted
// element. i may equal Len() to append.
func (v *Vector[T]) Insert(i int, value T) (int, error) {
	return v.insertAt(i, 1, func(int) T { return value })
}

// InsertN places count copies of value before index i and returns the index
// of the first inserted element.
func (v *Vector[T]) InsertN(i, count int, value T) (int, error) {
	if count < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrOutOfRange, count)
	}
	return v.insertAt(i, count, func(int) T { return value })
}

// InsertSlice places the given values before index i and returns the index of
// the first inserted element. values must not alias the vector's own storage.
func (v *Vector[T]) InsertSlice(i int, values []T) (int, error) {
	return v.insertAt(i, len(values), func(k int) T { return values[k] })
}

// insertAt opens a gap of count slots at index i and fills it with the values
// produced by valueAt. The insertion position is carried as an offset so it
// survives the reallocation a growth step may perform.
func (v *Vector[T]) insertAt(i, count int, valueAt func(int) T) (int, error) {
	if i < 0 || i > v.size {
		return 0, fmt.Errorf("%w: insert position %d, len %d", ErrOutOfRange, i, v.size)
	}
	if count == 0 {
		return i, nil
	}
	if err := v.ensureCapacity(v.size + count); err != nil {
		return 0, err
	}
	if err := v.openGap(i, count); err != nil {
		return 0, err
	}

	a := v.allocator()
	for k := 0; k < count; k++ {
		dst := elemAt(v.data, i+k)
		if i+k >= v.size {
			// Gap slot beyond the old live region: raw memory, construct.
			if err := constructVia(a, dst, valueAt(k)); err != nil {
				v.rollbackInsert(i, count, k)
				return 0, err
			}
		} else {
			// Gap slot inside the old live region: holds a moved-from
			// element, plain assignment.
			*dst = valueAt(k)
		}
	}
	v.size += count
	return i, nil
}

// openGap shifts the suffix [i, size) rightward by width slots, processed
// from the tail so no source slot is overwritten before it is read. Targets
// beyond the live region are raw memory and get constructed; targets inside
// it are move-assigned. On failure the constructed targets are destroyed and
// the vector's content is unchanged.
func (v *Vector[T]) openGap(i, width int) error {
	a := v.allocator()
	for j := v.size - 1; j >= i; j-- {
		src := elemAt(v.data, j)
		dst := elemAt(v.data, j+width)
		if j+width >= v.size {
			if err := constructVia(a, dst, *src); err != nil {
				for k := j + 1; k < v.size; k++ {
					destroyVia(a, elemAt(v.data, k+width))
				}
				return err
			}
		} else {
			*dst = *src
		}
	}
	return nil
}

// rollbackInsert destroys every slot a failed insertAt constructed beyond the
// live region: the gap fills in [size, i+k) and the relocated suffix in
// [max(size, i+width), size+width). Partially shifted elements inside the
// live region may be left moved-from; no slot is destroyed twice and nothing
// leaks.
func (v *Vector[T]) rollbackInsert(i, width, k int) {
	a := v.allocator()
	for idx := v.size; idx < i+k; idx++ {
		destroyVia(a, elemAt(v.data, idx))
	}
	lo := i + width
	if lo < v.size {
		lo = v.size
	}
	for idx := lo; idx < v.size+width; idx++ {
		destroyVia(a, elemAt(v.data, idx))
	}
}

// Erase removes the elements in [i, j) and returns the new index of the first
// element after the erased range. Erasing an empty range is a no-op.
func (v *Vector[T]) Erase(i, j int) (int, error) {
	if i < 0 || j > v.size || i > j {
		return 0, fmt.Errorf("%w: erase range [%d, %d), len %d", ErrOutOfRange, i, j, v.size)
	}
	if i == j {
		return i, nil
	}
	width := j - i

	// Shift the suffix leftward front-to-back, then destroy the duplicated
	// tail the shift vacated.
	for k := j; k < v.size; k++ {
		*elemAt(v.data, k-width) = *elemAt(v.data, k)
	}
	destroyRangeVia(v.allocator(), elemAt(v.data, v.size-width), width)
	v.size -= width
	return i, nil
}

// Assign replaces the contents with count copies of value. Capacity only
// grows, never shrinks.
func (v *Vector[T]) Assign(count int, value T) error {
	if count < 0 {
		return fmt.Errorf("%w: negative count %d", ErrOutOfRange, count)
	}
	v.Clear()
	if count == 0 {
		return nil
	}
	if err := v.ensureCapacity(count); err != nil {
		return err
	}
	if err := uninitializedFill(v.allocator(), v.data, count, value); err != nil {
		return err
	}
	v.size = count
	return nil
}

// AssignSlice replaces the contents with the given values. values must not
// alias the vector's own storage.
func (v *Vector[T]) AssignSlice(values []T) error {
	v.Clear()
	for _, val := range values {
		if err := v.PushBack(val); err != nil {
			return err
		}
	}
	return nil
}

// AssignSeq replaces the contents with the values produced by seq. The
// sequence length need not be known up front; the vector appends one element
// at a time and grows as it reads.
func (v *Vector[T]) AssignSeq(seq iter.Seq[T]) error {
	v.Clear()
	for val := range seq {
		if err := v.PushBack(val); err != nil {
			return err
		}
	}
	return nil
}

// Resize sets the length to count, constructing copies of value in the new
// tail slots when growing and destroying the excess tail when shrinking.
// Capacity never shrinks implicitly.
func (v *Vector[T]) Resize(count int, value T) error {
	switch {
	case count < 0:
		return fmt.Errorf("%w: negative count %d", ErrOutOfRange, count)
	case count > v.size:
		if err := v.ensureCapacity(count); err != nil {
			return err
		}
		if err := uninitializedFill(v.allocator(), elemAt(v.data, v.size), count-v.size, value); err != nil {
			return err
		}
		v.size = count
	case count < v.size:
		destroyRangeVia(v.allocator(), elemAt(v.data, count), v.size-count)
		v.size = count
	}
	return nil
}

// Reserve grows the capacity to at least n. It never shrinks the buffer and
// never changes the length.
func (v *Vector[T]) Reserve(n int) error {
	if n <= v.cap {
		return nil
	}
	if n > v.MaxSize() {
		return fmt.Errorf("%w: reserve %d elements, max %d", ErrCapacityExceeded, n, v.MaxSize())
	}
	return v.reallocate(n)
}

// ShrinkToFit reduces the capacity to the current length, releasing the
// excess storage. A zero-length vector drops its buffer entirely.
func (v *Vector[T]) ShrinkToFit() error {
	if v.size == v.cap {
		return nil
	}
	return v.reallocate(v.size)
}

// Clear destroys all live elements. Capacity is preserved.
func (v *Vector[T]) Clear() {
	destroyRangeVia(v.allocator(), v.data, v.size)
	v.size = 0
}

// Swap exchanges the contents and allocators of the two vectors in O(1)
// without touching any element.
func (v *Vector[T]) Swap(other *Vector[T]) {
	v.data, other.data = other.data, v.data
	v.size, other.size = other.size, v.size
	v.cap, other.cap = other.cap, v.cap
	v.alloc, other.alloc = other.alloc, v.alloc
}

// Release destroys all elements and returns the buffer to the allocator. The
// vector is empty and reusable afterwards. Vectors backed by a PoolAllocator
// should be released before the pool is.
func (v *Vector[T]) Release() {
	_ = v.reallocate(0)
}

// Clone returns a heap-backed copy of the vector's contents.
func (v *Vector[T]) Clone() (*Vector[T], error) {
	return v.CloneWith(HeapAllocator[T]{})
}

// CloneWith returns a copy of the vector's contents with storage obtained
// through a. Allocators are never shared between vectors: a PoolAllocator in
// particular is tied to the pointers it handed out and cannot be duplicated.
func (v *Vector[T]) CloneWith(a Allocator[T]) (*Vector[T], error) {
	c := NewWith(a)
	if err := c.AssignSlice(v.Slice()); err != nil {
		c.Release()
		return nil, err
	}
	return c, nil
}
