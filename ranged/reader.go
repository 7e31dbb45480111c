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

import "io"

// Reader implements io.ReadSeeker over a blocking Fetcher.  A Reader is not
// safe for concurrent use.  Create one with NewReader or NewReaderBuffer.
type Reader struct {
	w       window
	fetcher Fetcher
}

var _ io.ReadSeeker = (*Reader)(nil)

// NewReader returns a Reader for a stream of length bytes served by f.  Each
// fetch requests at least minChunkSize bytes, unless fewer remain in the
// stream.
func NewReader(f Fetcher, length int64, minChunkSize int) *Reader {
	return &Reader{w: newWindow(length, minChunkSize, nil), fetcher: f}
}

// NewReaderBuffer is like NewReader but uses buf as the initial buffer and
// cap(buf) as the minimum chunk size.  The contents of buf are ignored.
func NewReaderBuffer(f Fetcher, length int64, buf []byte) *Reader {
	return &Reader{w: newWindow(length, cap(buf), buf), fetcher: f}
}

// Read reads exactly len(p) bytes into p, fetching from the underlying
// Fetcher when the buffer does not hold them.  If fewer than len(p) bytes
// remain in the stream, Read returns the remaining bytes and io.EOF.  A fetch
// error is returned unchanged and leaves the position where it was.
func (r *Reader) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n := r.w.available(len(p))
	if n == 0 {
		return 0, io.EOF
	}

	if req, ok := r.w.plan(n); ok {
		tail := r.w.reserve(req.Length)
		if err := r.fetcher.Fetch(req.Start, tail); err != nil {
			r.w.rollback(req.Length)
			return 0, err
		}
		r.w.commit(req.Length)
	}

	r.w.take(p[:n])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Seek sets the position for the next Read.  It discards the buffer and
// performs no I/O.  Offsets resolving outside [0, Len()] return ErrSeekRange.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	return r.w.seek(offset, whence)
}

// Len returns the length of the stream.
func (r *Reader) Len() int64 {
	return r.w.length
}

// Buffered returns the number of fetched bytes not yet read.
func (r *Reader) Buffered() int {
	return r.w.buffered()
}

// Stats returns the fetches issued so far.
func (r *Reader) Stats() Stats {
	return r.w.stats
}
