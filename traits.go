// SPDX-License-Identifier: Apache-2.0

package ministl

// The helpers below are the seam between the container and whichever
// allocator it was given: construction and teardown resolve to the
// allocator's own methods when it implements ObjectLifecycle, and to the
// package protocol otherwise. The container is written once against these
// helpers and works with any Allocator.

func constructVia[T any](a Allocator[T], p *T, v T) error {
	if lc, ok := a.(ObjectLifecycle[T]); ok {
		return lc.Construct(p, v)
	}
	Construct(p, v)
	return nil
}

func destroyVia[T any](a Allocator[T], p *T) {
	if lc, ok := a.(ObjectLifecycle[T]); ok {
		lc.Destroy(p)
		return
	}
	Destroy(p)
}

func destroyRangeVia[T any](a Allocator[T], first *T, n int) {
	for i := 0; i < n; i++ {
		destroyVia(a, elemAt(first, i))
	}
}

// uninitializedFill constructs n copies of v into the raw slots starting at
// base. On failure the constructed prefix is destroyed before the error is
// returned, leaving all n slots raw again.
func uninitializedFill[T any](a Allocator[T], base *T, n int, v T) error {
	for i := 0; i < n; i++ {
		if err := constructVia(a, elemAt(base, i), v); err != nil {
			destroyRangeVia(a, base, i)
			return err
		}
	}
	return nil
}

// uninitializedCopy constructs copies of the n elements starting at src into
// the raw slots starting at dst, in index order. On failure the constructed
// prefix is destroyed before the error is returned; the source elements are
// left intact.
func uninitializedCopy[T any](a Allocator[T], dst, src *T, n int) error {
	for i := 0; i < n; i++ {
		if err := constructVia(a, elemAt(dst, i), *elemAt(src, i)); err != nil {
			destroyRangeVia(a, dst, i)
			return err
		}
	}
	return nil
}
