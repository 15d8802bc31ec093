// SPDX-License-Identifier: Apache-2.0

package ministl

import (
	"io"
)

// Buffer is a bytes.Buffer-like type backed by a Vector[byte], so every byte
// it holds flows through the vector's allocator. It implements io.Reader,
// io.Writer, io.ReaderFrom and io.WriterTo.
type Buffer struct {
	vec     *Vector[byte]
	readBuf []byte // intermediate buffer for ReadFrom
}

// NewBuffer creates an empty heap-backed Buffer.
func NewBuffer() *Buffer {
	return &Buffer{vec: New[byte]()}
}

// NewBufferWith creates an empty Buffer whose storage comes from a.
func NewBufferWith(a Allocator[byte]) *Buffer {
	return &Buffer{vec: NewWith(a)}
}

// Write implements the io.Writer interface. It appends len(p) bytes from p to
// the buffer.
func (b *Buffer) Write(p []byte) (n int, err error) {
	if len(p) == 0 {
		return 0, nil
	}
	if _, err := b.vec.InsertSlice(b.vec.Len(), p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteByte appends a single byte to the buffer.
func (b *Buffer) WriteByte(c byte) error {
	return b.vec.PushBack(c)
}

// WriteString appends a string to the buffer.
func (b *Buffer) WriteString(s string) (n int, err error) {
	return b.Write([]byte(s))
}

// WriteTo implements the io.WriterTo interface. Written bytes are consumed
// from the front of the buffer.
func (b *Buffer) WriteTo(w io.Writer) (n int64, err error) {
	if b.vec.Len() == 0 {
		return 0, nil
	}
	m, err := w.Write(b.vec.Slice())
	if m > 0 {
		_, _ = b.vec.Erase(0, m)
	}
	return int64(m), err
}

// Read reads up to len(p) bytes from the front of the buffer into p. It
// returns io.EOF when the buffer is exhausted.
func (b *Buffer) Read(p []byte) (n int, err error) {
	if b.vec.Len() == 0 {
		return 0, io.EOF
	}
	n = copy(p, b.vec.Slice())
	_, _ = b.vec.Erase(0, n)
	if n < len(p) {
		err = io.EOF
	}
	return n, err
}

// ReadByte reads and returns the next byte from the buffer.
func (b *Buffer) ReadByte() (byte, error) {
	if b.vec.Len() == 0 {
		return 0, io.EOF
	}
	c := b.vec.Slice()[0]
	_, _ = b.vec.Erase(0, 1)
	return c, nil
}

// ReadFrom implements the io.ReaderFrom interface. It reads from r until EOF
// or error, appending everything to the buffer.
func (b *Buffer) ReadFrom(r io.Reader) (n int64, err error) {
	const readBufferSize = 4 * 1024
	if b.readBuf == nil {
		b.readBuf = make([]byte, readBufferSize)
	}

	for {
		nr, er := r.Read(b.readBuf)
		if nr > 0 {
			if _, ew := b.Write(b.readBuf[:nr]); ew != nil {
				return n, ew
			}
			n += int64(nr)
		}
		if er != nil {
			if er == io.EOF {
				break
			}
			return n, er
		}
	}
	return n, nil
}

// Bytes returns a view of the unread portion of the buffer. The view is valid
// only until the next buffer modification.
func (b *Buffer) Bytes() []byte {
	return b.vec.Slice()
}

// String returns the contents of the unread portion of the buffer.
func (b *Buffer) String() string {
	return string(b.vec.Slice())
}

// Len returns the number of unread bytes.
func (b *Buffer) Len() int {
	return b.vec.Len()
}

// Cap returns the capacity of the buffer's underlying storage.
func (b *Buffer) Cap() int {
	return b.vec.Cap()
}

// Reset discards all content. The underlying storage is kept for reuse.
func (b *Buffer) Reset() {
	b.vec.Clear()
}

// Truncate discards all but the first n unread bytes. It panics if n is
// negative or greater than the buffer length.
func (b *Buffer) Truncate(n int) {
	if n < 0 || n > b.vec.Len() {
		panic("ministl: buffer truncation out of range")
	}
	_ = b.vec.Resize(n, 0)
}

// Next returns a copy of the next n bytes, advancing the buffer as if the
// bytes had been returned by Read. Fewer bytes are returned when the buffer
// holds fewer.
func (b *Buffer) Next(n int) []byte {
	if n <= 0 {
		return []byte{}
	}
	if n > b.vec.Len() {
		n = b.vec.Len()
	}
	result := make([]byte, n)
	copy(result, b.vec.Slice())
	_, _ = b.vec.Erase(0, n)
	return result
}
