// SPDX-License-Identifier: Apache-2.0

package ministl

import (
	"cmp"
	"slices"
)

// Vectors expose their live elements as contiguous views, so the generic
// algorithms in the standard slices package apply directly. The comparisons
// below cover the common cases.

// Equal reports whether a and b hold the same elements in the same order.
func Equal[T comparable](a, b *Vector[T]) bool {
	return slices.Equal(a.Slice(), b.Slice())
}

// EqualFunc is like Equal but uses eq to compare elements.
func EqualFunc[T any](a, b *Vector[T], eq func(T, T) bool) bool {
	return slices.EqualFunc(a.Slice(), b.Slice(), eq)
}

// Compare lexicographically compares a and b, returning -1, 0 or 1. A shorter
// prefix-equal vector compares less.
func Compare[T cmp.Ordered](a, b *Vector[T]) int {
	return slices.Compare(a.Slice(), b.Slice())
}
