// SPDX-License-Identifier: Apache-2.0

package ministl

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errConstructFailed = errors.New("construct failed")

// countingAllocator wraps the heap allocator and tracks every allocation,
// construction and teardown. Setting failOn makes the Nth construction
// attempt fail, which is how the rollback paths are exercised.
type countingAllocator[T any] struct {
	HeapAllocator[T]
	allocElems   int
	deallocElems int
	constructs   int
	destroys     int
	attempts     int
	failOn       int
}

var (
	_ Allocator[int]       = &countingAllocator[int]{}
	_ ObjectLifecycle[int] = &countingAllocator[int]{}
)

func (a *countingAllocator[T]) Allocate(n int) (*T, error) {
	p, err := a.HeapAllocator.Allocate(n)
	if err == nil {
		a.allocElems += n
	}
	return p, err
}

func (a *countingAllocator[T]) Deallocate(p *T, n int) {
	if p != nil {
		a.deallocElems += n
	}
	a.HeapAllocator.Deallocate(p, n)
}

func (a *countingAllocator[T]) Construct(p *T, v T) error {
	a.attempts++
	if a.failOn > 0 && a.attempts == a.failOn {
		return errConstructFailed
	}
	a.constructs++
	Construct(p, v)
	return nil
}

func (a *countingAllocator[T]) Destroy(p *T) {
	a.destroys++
	Destroy(p)
}

func (a *countingAllocator[T]) live() int {
	return a.constructs - a.destroys
}

func TestVectorScenario(t *testing.T) {
	v := New[int]()
	for i := 1; i <= 5; i++ {
		require.NoError(t, v.PushBack(i))
	}
	require.Equal(t, 5, v.Len())
	require.GreaterOrEqual(t, v.Cap(), 5)
	require.Equal(t, []int{1, 2, 3, 4, 5}, v.Slice())

	idx, err := v.Insert(1, 99)
	require.NoError(t, err)
	require.Equal(t, 1, idx)
	require.Equal(t, []int{1, 99, 2, 3, 4, 5}, v.Slice())

	idx, err = v.Erase(0, 2)
	require.NoError(t, err)
	require.Equal(t, 0, idx)
	require.Equal(t, []int{2, 3, 4, 5}, v.Slice())

	capBefore := v.Cap()
	require.NoError(t, v.Resize(2, 0))
	require.Equal(t, []int{2, 3}, v.Slice())
	require.Equal(t, capBefore, v.Cap())

	require.NoError(t, v.ShrinkToFit())
	require.Equal(t, 2, v.Cap())
	require.Equal(t, []int{2, 3}, v.Slice())
}

func TestVectorGrowthMonotonic(t *testing.T) {
	v := New[int]()
	prevCap := 0
	for i := 0; i < 100; i++ {
		require.NoError(t, v.PushBack(i))
		require.LessOrEqual(t, v.Len(), v.Cap())
		require.GreaterOrEqual(t, v.Cap(), prevCap)
		prevCap = v.Cap()
	}
}

func TestVectorContentPreservedAcrossGrowth(t *testing.T) {
	v := New[int]()
	const n = 1000
	for i := 0; i < n; i++ {
		require.NoError(t, v.PushBack(i * 3))
	}
	require.Equal(t, n, v.Len())
	for i := 0; i < n; i++ {
		got, err := v.At(i)
		require.NoError(t, err)
		require.Equal(t, i*3, got)
	}
}

func TestVectorAssignRoundTrip(t *testing.T) {
	v := New[string]()
	require.NoError(t, v.PushBack("old"))

	in := []string{"a", "b", "c", "d"}
	require.NoError(t, v.AssignSlice(in))
	require.Equal(t, len(in), v.Len())
	require.Equal(t, in, v.Slice())

	require.NoError(t, v.Assign(3, "x"))
	require.Equal(t, []string{"x", "x", "x"}, v.Slice())

	require.NoError(t, v.AssignSeq(slices.Values([]string{"p", "q"})))
	require.Equal(t, []string{"p", "q"}, v.Slice())
}

func TestVectorInsertEraseInverse(t *testing.T) {
	v := New[int]()
	require.NoError(t, v.Reserve(16)) // no reallocation below
	require.NoError(t, v.AssignSlice([]int{10, 20, 30, 40}))
	original := slices.Clone(v.Slice())

	idx, err := v.Insert(2, 99)
	require.NoError(t, err)
	require.Equal(t, []int{10, 20, 99, 30, 40}, v.Slice())

	_, err = v.Erase(idx, idx+1)
	require.NoError(t, err)
	require.Equal(t, original, v.Slice())
}

func TestVectorGrowthRollback(t *testing.T) {
	alloc := &countingAllocator[int]{}
	v := NewWith[int](alloc)

	require.NoError(t, v.Reserve(4))
	for i := 1; i <= 4; i++ {
		require.NoError(t, v.PushBack(i * 10))
	}
	require.Equal(t, 4, v.Len())
	require.Equal(t, 4, v.Cap())
	require.Equal(t, 4, alloc.live())

	// Fail the second move-construction of the relocation the next push
	// triggers.
	alloc.failOn = alloc.attempts + 2
	err := v.PushBack(50)
	require.ErrorIs(t, err, errConstructFailed)

	// The vector is exactly as it was before the call.
	require.Equal(t, 4, v.Len())
	require.Equal(t, 4, v.Cap())
	require.Equal(t, []int{10, 20, 30, 40}, v.Slice())
	require.Equal(t, 4, alloc.live())
	// The rejected buffer was returned to the allocator.
	require.Equal(t, alloc.allocElems-alloc.deallocElems, v.Cap())
}

func TestVectorInsertRollback(t *testing.T) {
	newVec := func(t *testing.T) (*countingAllocator[int], *Vector[int]) {
		t.Helper()
		alloc := &countingAllocator[int]{}
		v := NewWith[int](alloc)
		require.NoError(t, v.Reserve(8)) // no reallocation during the insert
		for i := 1; i <= 4; i++ {
			require.NoError(t, v.PushBack(i * 10))
		}
		return alloc, v
	}

	t.Run("during suffix shift", func(t *testing.T) {
		alloc, v := newVec(t)

		// The gap shift of InsertN(1, 2, ...) constructs the two elements it
		// moves past the old end; fail the second one.
		alloc.failOn = alloc.attempts + 2
		_, err := v.InsertN(1, 2, 99)
		require.ErrorIs(t, err, errConstructFailed)

		require.Equal(t, 4, v.Len())
		require.Equal(t, 8, v.Cap())
		require.Equal(t, []int{10, 20, 30, 40}, v.Slice())
		require.Equal(t, 4, alloc.live())
	})

	t.Run("during gap fill", func(t *testing.T) {
		alloc, v := newVec(t)

		// Inserting two elements at index 3 relocates one element past the old
		// end and then constructs the gap slot at the old end; fail that
		// gap-fill construction.
		alloc.failOn = alloc.attempts + 2
		_, err := v.InsertN(3, 2, 99)
		require.ErrorIs(t, err, errConstructFailed)

		// Length and accounting are restored; elements the shift already moved
		// may be left in their moved-from state.
		require.Equal(t, 4, v.Len())
		require.Equal(t, 8, v.Cap())
		require.Equal(t, 4, alloc.live())
		require.Equal(t, []int{10, 20, 30}, v.Slice()[:3])
	})

	t.Run("during append fill", func(t *testing.T) {
		alloc, v := newVec(t)

		// Appending via insert at Len() constructs straight into raw slots;
		// fail the second of the two.
		alloc.failOn = alloc.attempts + 2
		_, err := v.InsertSlice(v.Len(), []int{99, 100})
		require.ErrorIs(t, err, errConstructFailed)

		require.Equal(t, 4, v.Len())
		require.Equal(t, []int{10, 20, 30, 40}, v.Slice())
		require.Equal(t, 4, alloc.live())
	})
}

func TestVectorLiveCountTracksLength(t *testing.T) {
	alloc := &countingAllocator[int]{}
	v := NewWith[int](alloc)

	check := func() {
		t.Helper()
		require.Equal(t, v.Len(), alloc.live())
	}

	for i := 0; i < 20; i++ {
		require.NoError(t, v.PushBack(i))
		check()
	}
	_, err := v.InsertN(5, 3, -1)
	require.NoError(t, err)
	check()
	_, err = v.Erase(2, 9)
	require.NoError(t, err)
	check()
	require.NoError(t, v.Resize(30, 7))
	check()
	require.NoError(t, v.Resize(4, 0))
	check()
	v.PopBack()
	check()
	v.Clear()
	check()
	require.Equal(t, 0, alloc.live())
}

func TestVectorBoundary(t *testing.T) {
	v := New[int]()

	_, err := v.Front()
	require.ErrorIs(t, err, ErrEmpty)
	_, err = v.Back()
	require.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, v.AssignSlice([]int{1, 2, 3}))

	_, err = v.At(3)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = v.At(-1)
	require.ErrorIs(t, err, ErrOutOfRange)

	got, err := v.At(2)
	require.NoError(t, err)
	require.Equal(t, 3, got)

	front, err := v.Front()
	require.NoError(t, err)
	require.Equal(t, 1, front)
	back, err := v.Back()
	require.NoError(t, err)
	require.Equal(t, 3, back)

	require.ErrorIs(t, v.Set(3, 0), ErrOutOfRange)
	require.NoError(t, v.Set(0, 9))
	require.Equal(t, []int{9, 2, 3}, v.Slice())
}

func TestVectorPopBackOnEmpty(t *testing.T) {
	v := New[int]()
	v.PopBack() // no-op
	require.Equal(t, 0, v.Len())
}

func TestVectorClearPreservesCapacity(t *testing.T) {
	v := New[int]()
	require.NoError(t, v.AssignSlice([]int{1, 2, 3, 4, 5}))
	capBefore := v.Cap()
	v.Clear()
	require.Equal(t, 0, v.Len())
	require.Equal(t, capBefore, v.Cap())
}

func TestVectorReserveAndShrink(t *testing.T) {
	v := New[int]()
	require.NoError(t, v.Reserve(32))
	require.Equal(t, 0, v.Len())
	require.Equal(t, 32, v.Cap())

	// Reserving less than the current capacity is a no-op.
	require.NoError(t, v.Reserve(8))
	require.Equal(t, 32, v.Cap())

	require.NoError(t, v.AssignSlice([]int{1, 2, 3}))
	require.NoError(t, v.ShrinkToFit())
	require.Equal(t, 3, v.Cap())
	require.Equal(t, []int{1, 2, 3}, v.Slice())

	// Shrinking an empty vector drops the buffer entirely.
	v.Clear()
	require.NoError(t, v.ShrinkToFit())
	require.Equal(t, 0, v.Cap())
	require.Nil(t, v.Data())
}

func TestVectorInsertVariants(t *testing.T) {
	v := New[int]()

	// Insert into empty at 0.
	idx, err := v.Insert(0, 1)
	require.NoError(t, err)
	require.Equal(t, 0, idx)

	// Append via insert at Len().
	idx, err = v.Insert(v.Len(), 4)
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	// Fill insert in the middle.
	idx, err = v.InsertN(1, 2, 7)
	require.NoError(t, err)
	require.Equal(t, 1, idx)
	require.Equal(t, []int{1, 7, 7, 4}, v.Slice())

	// Range insert.
	idx, err = v.InsertSlice(2, []int{8, 9})
	require.NoError(t, err)
	require.Equal(t, 2, idx)
	require.Equal(t, []int{1, 7, 8, 9, 7, 4}, v.Slice())

	// Zero-width insert is a no-op that reports the position.
	idx, err = v.InsertSlice(3, nil)
	require.NoError(t, err)
	require.Equal(t, 3, idx)

	_, err = v.Insert(v.Len()+1, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = v.Insert(-1, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = v.InsertN(0, -1, 0)
	require.ErrorIs(t, err, ErrOutOfRange)
}

func TestVectorEraseVariants(t *testing.T) {
	v := New[int]()
	require.NoError(t, v.AssignSlice([]int{1, 2, 3, 4, 5}))

	// Empty range is a no-op.
	idx, err := v.Erase(2, 2)
	require.NoError(t, err)
	require.Equal(t, 2, idx)
	require.Equal(t, 5, v.Len())

	idx, err = v.Erase(1, 4)
	require.NoError(t, err)
	require.Equal(t, 1, idx)
	require.Equal(t, []int{1, 5}, v.Slice())

	_, err = v.Erase(1, 3)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = v.Erase(2, 1)
	require.ErrorIs(t, err, ErrOutOfRange)

	// Erase everything.
	_, err = v.Erase(0, v.Len())
	require.NoError(t, err)
	require.Equal(t, 0, v.Len())
}

func TestVectorResize(t *testing.T) {
	v := New[int]()
	require.NoError(t, v.Resize(3, 9))
	require.Equal(t, []int{9, 9, 9}, v.Slice())

	require.NoError(t, v.Resize(5, 1))
	require.Equal(t, []int{9, 9, 9, 1, 1}, v.Slice())

	require.NoError(t, v.Resize(2, 0))
	require.Equal(t, []int{9, 9}, v.Slice())

	require.ErrorIs(t, v.Resize(-1, 0), ErrOutOfRange)
}

func TestVectorSwap(t *testing.T) {
	a := New[int]()
	b := New[int]()
	require.NoError(t, a.AssignSlice([]int{1, 2}))
	require.NoError(t, b.AssignSlice([]int{7, 8, 9}))

	aData, bData := a.Data(), b.Data()
	a.Swap(b)

	require.Equal(t, []int{7, 8, 9}, a.Slice())
	require.Equal(t, []int{1, 2}, b.Slice())
	// Buffers changed hands, no element was touched.
	require.Same(t, bData, a.Data())
	require.Same(t, aData, b.Data())
}

func TestVectorZeroValueUsable(t *testing.T) {
	var v Vector[int]
	require.NoError(t, v.PushBack(42))
	got, err := v.At(0)
	require.NoError(t, err)
	require.Equal(t, 42, got)
}

func TestVectorOfRepeatClone(t *testing.T) {
	v, err := Of(1, 2, 3)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, v.Slice())

	r, err := Repeat(4, "x")
	require.NoError(t, err)
	require.Equal(t, []string{"x", "x", "x", "x"}, r.Slice())

	c, err := v.Clone()
	require.NoError(t, err)
	require.Equal(t, v.Slice(), c.Slice())
	require.NoError(t, c.Set(0, 99))
	got, err := v.At(0)
	require.NoError(t, err)
	assert.Equal(t, 1, got) // clone does not share storage
}

func TestVectorIterators(t *testing.T) {
	v, err := Of(5, 6, 7)
	require.NoError(t, err)

	var idxs, vals []int
	for i, x := range v.All() {
		idxs = append(idxs, i)
		vals = append(vals, x)
	}
	require.Equal(t, []int{0, 1, 2}, idxs)
	require.Equal(t, []int{5, 6, 7}, vals)

	var first int
	for x := range v.Values() {
		first = x
		break
	}
	require.Equal(t, 5, first)
}

func TestVectorRelease(t *testing.T) {
	v := New[int]()
	require.NoError(t, v.AssignSlice([]int{1, 2, 3}))
	v.Release()
	require.Equal(t, 0, v.Len())
	require.Equal(t, 0, v.Cap())
	require.Nil(t, v.Data())

	// Usable again after release.
	require.NoError(t, v.PushBack(1))
	require.Equal(t, 1, v.Len())
}

func TestVectorWithPoolAllocator(t *testing.T) {
	pool := NewPoolAllocator[int]()
	v := NewWith[int](pool)

	const n = 200
	for i := 0; i < n; i++ {
		require.NoError(t, v.PushBack(i))
	}
	require.Equal(t, n, v.Len())
	for i := 0; i < n; i++ {
		got, err := v.At(i)
		require.NoError(t, err)
		require.Equal(t, i, got)
	}

	_, err := v.Insert(10, -1)
	require.NoError(t, err)
	got, err := v.At(10)
	require.NoError(t, err)
	require.Equal(t, -1, got)

	v.Release()
	pool.Release()
}

func TestEqualAndCompare(t *testing.T) {
	a, err := Of(1, 2, 3)
	require.NoError(t, err)
	b, err := Of(1, 2, 3)
	require.NoError(t, err)
	c, err := Of(1, 2, 4)
	require.NoError(t, err)
	short, err := Of(1, 2)
	require.NoError(t, err)

	assert.True(t, Equal(a, b))
	assert.False(t, Equal(a, c))
	assert.False(t, Equal(a, short))

	assert.Equal(t, 0, Compare(a, b))
	assert.Equal(t, -1, Compare(a, c))
	assert.Equal(t, 1, Compare(a, short))

	assert.True(t, EqualFunc(a, c, func(x, y int) bool { return y-x <= 1 && x-y <= 1 }))
}

func BenchmarkVectorPushBack(b *testing.B) {
	b.Run("heap", func(b *testing.B) {
		v := New[int]()
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = v.PushBack(i)
		}
	})
	b.Run("pool", func(b *testing.B) {
		pool := NewPoolAllocator[int](WithBlockSize(1 << 20))
		v := NewWith[int](pool)
		b.Cleanup(pool.Release)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_ = v.PushBack(i)
		}
	})
}
