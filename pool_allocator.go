// SPDX-License-Identifier: Apache-2.0

package ministl

import (
	"fmt"
	"math"
	"unsafe"
)

const (
	defaultBlockSize = 4096

	// minBlockSize keeps a block large enough to hold at least one padded
	// slot; block sizes below it are raised to it.
	minBlockSize = 64
)

// freeSlot is the header written into a reclaimed slot while it sits on the
// pool's free-list. The links are plain addresses rather than Go pointers:
// they refer into memory outside the Go heap, which the collector must not
// trace. Carved slots are padded to at least this header size so every slot
// can be recycled.
type freeSlot struct {
	next uintptr // address of the next free slot, 0 at the tail
	size uintptr // usable bytes in this slot
}

// poolBlock is one fixed-size arena block. Blocks form a singly-linked list
// with the newest block at the head.
type poolBlock struct {
	next *poolBlock
	buf  []byte
}

// PoolAllocator serves small requests by carving slots out of fixed-size
// blocks obtained from the operating system, recycling reclaimed slots
// through a free-list. Requests above a quarter of the block size bypass the
// pool and go to the system allocator directly. Slots are never individually
// returned to a block; a block is released only when the pool itself is
// released.
//
// A PoolAllocator must not be copied or relocated after first use: its blocks
// are referenced through raw addresses handed out to callers. It is not safe
// for concurrent use.
//
// Pool memory lives outside the Go heap, so the collector does not trace it.
// Element types that contain Go pointers must use HeapAllocator instead.
type PoolAllocator[T any] struct {
	blocks    *poolBlock
	freeHead  uintptr // head of the free-list, 0 when empty
	cursor    uintptr // carve offset into the newest block
	blockSize uintptr
}

type poolConfig struct {
	blockSize uintptr
}

// PoolOption configures a PoolAllocator.
type PoolOption func(*poolConfig)

// WithBlockSize sets the size in bytes of each arena block. Requests above a
// quarter of this size bypass the pool. Sizes below the 64-byte minimum are
// raised to it.
func WithBlockSize(size int) PoolOption {
	return func(c *poolConfig) {
		c.blockSize = uintptr(size)
	}
}

// NewPoolAllocator returns an empty pool. Blocks are obtained lazily on the
// first allocation that needs one.
func NewPoolAllocator[T any](opts ...PoolOption) *PoolAllocator[T] {
	cfg := poolConfig{blockSize: defaultBlockSize}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.blockSize < minBlockSize {
		cfg.blockSize = minBlockSize
	}
	return &PoolAllocator[T]{blockSize: cfg.blockSize}
}

// Allocate satisfies the Allocator interface.
func (p *PoolAllocator[T]) Allocate(n int) (*T, error) {
	if n == 0 {
		return nil, nil
	}
	if n < 0 || n > p.MaxSize() {
		return nil, fmt.Errorf("%w: %d elements", ErrCapacityExceeded, n)
	}
	size := uintptr(n) * unsafe.Sizeof(*new(T))

	if size > p.blockSize/4 {
		// Large request: straight to the system allocator, not tracked in the
		// block list. Deallocate recognizes it by the address-range test.
		buf, err := sysAlloc(size)
		if err != nil {
			return nil, err
		}
		return (*T)(unsafe.Pointer(unsafe.SliceData(buf))), nil
	}

	slot := p.slotBytes(size)

	// Reuse a reclaimed slot when the head of the free-list fits the request.
	if p.freeHead != 0 {
		head := (*freeSlot)(unsafe.Pointer(p.freeHead))
		if head.size >= slot {
			ptr := unsafe.Pointer(p.freeHead)
			p.freeHead = head.next

			// Clear the stale header and old contents so the slot is raw again.
			b := unsafe.Slice((*byte)(ptr), slot)
			for i := range b {
				b[i] = 0
			}
			return (*T)(ptr), nil
		}
	}

	// Slots double as free-list nodes once reclaimed, so they are carved at
	// the header's alignment when the element type's is weaker.
	align := unsafe.Alignof(*new(T))
	if ha := unsafe.Alignof(freeSlot{}); align < ha {
		align = ha
	}
	if p.blocks == nil {
		if err := p.grow(); err != nil {
			return nil, err
		}
	}
	base := p.blockBase()
	off := alignUp(uintptr(base)+p.cursor, align) - uintptr(base)
	if off+slot > p.blockSize {
		if err := p.grow(); err != nil {
			return nil, err
		}
		base = p.blockBase()
		off = alignUp(uintptr(base), align) - uintptr(base)
	}

	ptr := unsafe.Add(base, off)
	p.cursor = off + slot
	return (*T)(ptr), nil
}

// Deallocate satisfies the Allocator interface. Slots carved from a block are
// pushed onto the free-list for reuse; the block memory itself is reclaimed
// only when the pool is released. Pointers outside every block are large
// allocations and go back to the system allocator.
func (p *PoolAllocator[T]) Deallocate(ptr *T, n int) {
	if ptr == nil {
		return
	}
	size := uintptr(n) * unsafe.Sizeof(*new(T))
	addr := uintptr(unsafe.Pointer(ptr))

	// Linear scan over the block list. O(blocks) per call; acceptable while
	// block counts stay small. TODO: switch to a sorted base-address lookup
	// if pools routinely grow past a handful of blocks.
	for blk := p.blocks; blk != nil; blk = blk.next {
		start := uintptr(unsafe.Pointer(unsafe.SliceData(blk.buf)))
		if addr >= start && addr < start+p.blockSize {
			node := (*freeSlot)(unsafe.Pointer(ptr))
			node.next = p.freeHead
			node.size = p.slotBytes(size)
			p.freeHead = addr
			return
		}
	}

	if size > p.blockSize/4 {
		sysFree(unsafe.Slice((*byte)(unsafe.Pointer(ptr)), size))
	}
}

// MaxSize satisfies the Allocator interface.
func (p *PoolAllocator[T]) MaxSize() int {
	size := unsafe.Sizeof(*new(T))
	if size == 0 {
		return math.MaxInt
	}
	return math.MaxInt / int(size)
}

// Release returns every block to the operating system. The free-list is not
// walked: reclaimed slots live inside blocks and go away with them. All
// pointers previously returned by Allocate become invalid; the pool itself is
// empty and usable again afterwards.
func (p *PoolAllocator[T]) Release() {
	for blk := p.blocks; blk != nil; blk = blk.next {
		sysFree(blk.buf)
	}
	p.blocks = nil
	p.freeHead = 0
	p.cursor = 0
}

// Cap returns the total number of bytes currently held in pool blocks. Large
// bypass allocations are not counted.
func (p *PoolAllocator[T]) Cap() int {
	var total int
	for blk := p.blocks; blk != nil; blk = blk.next {
		total += len(blk.buf)
	}
	return total
}

// grow prepends a fresh block and resets the carve cursor.
func (p *PoolAllocator[T]) grow() error {
	buf, err := sysAlloc(p.blockSize)
	if err != nil {
		return err
	}
	p.blocks = &poolBlock{next: p.blocks, buf: buf}
	p.cursor = 0
	return nil
}

// blockBase returns the start address of the newest block.
func (p *PoolAllocator[T]) blockBase() unsafe.Pointer {
	return unsafe.Pointer(unsafe.SliceData(p.blocks.buf))
}

// slotBytes pads a request up to the free-list header size and rounds it to
// the header's alignment, so a reclaimed slot can hold an aligned header and
// the slot after it starts header-aligned too.
func (p *PoolAllocator[T]) slotBytes(size uintptr) uintptr {
	if min := unsafe.Sizeof(freeSlot{}); size < min {
		size = min
	}
	return alignUp(size, unsafe.Alignof(freeSlot{}))
}

func alignUp(n, align uintptr) uintptr {
	return (n + align - 1) &^ (align - 1)
}
