// Copyright 2026 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package ranged

import (
	"fmt"
	"io"
	"math"
	"slices"
)

// Stats counts the fetches issued by a reader.
type Stats struct {
	Fetches      int
	BytesFetched int64
}

// window is the buffering state shared by Reader and AsyncReader.  buf holds
// fetched bytes, of which the first off have been delivered.  next is the
// stream offset of the byte that follows buf.
type window struct {
	length   int64
	minChunk int

	next int64
	buf  []byte
	off  int

	stats Stats
}

func newWindow(length int64, minChunk int, buf []byte) window {
	if length < 0 {
		panic("ranged: negative stream length")
	}
	if minChunk < 0 {
		minChunk = 0
	}
	return window{length: length, minChunk: minChunk, buf: buf[:0]}
}

// buffered returns the number of fetched bytes not yet delivered.
func (w *window) buffered() int {
	return len(w.buf) - w.off
}

// position returns the stream offset of the next byte to be delivered.
func (w *window) position() int64 {
	return w.next - int64(w.buffered())
}

// available clamps n to the number of bytes left in the stream.
func (w *window) available(n int) int {
	if left := w.length - w.position(); left < int64(n) {
		return int(left)
	}
	return n
}

// plan returns the fetch needed so that at least n bytes are buffered.  The
// second result is false when no fetch is needed.  A request for exactly the
// buffered amount still refills.
//
// The fetch covers n, the minimum chunk, and at least as many bytes as were
// already delivered, which keeps the buffer size stable under steady reads.
// It never extends past the end of the stream.
func (w *window) plan(n int) (RangeRequest, bool) {
	remaining := w.buffered()
	if n < remaining {
		return RangeRequest{}, false
	}
	size := max(w.off, n, w.minChunk) - remaining
	if left := w.length - w.next; int64(size) > left {
		size = int(left)
	}
	if size <= 0 {
		return RangeRequest{}, false
	}
	return RangeRequest{Start: w.next, Length: size}, true
}

// reserve compacts the undelivered bytes to the front of buf and extends it
// by size bytes, returning the new tail for the fetch to fill.  Compaction
// does not move the logical position.
func (w *window) reserve(size int) []byte {
	remaining := copy(w.buf, w.buf[w.off:])
	w.off = 0
	w.buf = slices.Grow(w.buf[:remaining], size)[:remaining+size]
	return w.buf[remaining:]
}

// commit records a successful fetch of size bytes into the reserved tail.
func (w *window) commit(size int) {
	w.next += int64(size)
	w.stats.Fetches++
	w.stats.BytesFetched += int64(size)
}

// rollback discards a reserved tail of size bytes after a failed fetch.
func (w *window) rollback(size int) {
	w.buf = w.buf[:len(w.buf)-size]
}

// fill appends fetched data to the window.
func (w *window) fill(data []byte) {
	copy(w.reserve(len(data)), data)
	w.commit(len(data))
}

// take delivers len(p) buffered bytes into p.
func (w *window) take(p []byte) int {
	n := copy(p, w.buf[w.off:w.off+len(p)])
	w.off += n
	return n
}

// seek repositions the window and discards every buffered byte.  On error
// the window is left untouched.
func (w *window) seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = w.position()
	case io.SeekEnd:
		base = w.length
	default:
		return 0, fmt.Errorf("%w: %d", ErrWhence, whence)
	}

	// base is never negative, so only positive offsets can overflow.
	if offset > 0 && base > math.MaxInt64-offset {
		return 0, fmt.Errorf("%w: offset %d from %d overflows", ErrSeekRange, offset, base)
	}
	target := base + offset
	if target < 0 || target > w.length {
		return 0, fmt.Errorf("%w: offset %d not in [0, %d]", ErrSeekRange, target, w.length)
	}

	w.next = target
	w.buf = w.buf[:0]
	w.off = 0
	return target, nil
}
