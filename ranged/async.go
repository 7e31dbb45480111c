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
	"context"
	"io"
)

// AsyncReader reads a stream through an AsyncFetcher.  A read that needs a
// fetch waits for the response or for its context, whichever comes first.
// Nothing about the reader changes until a response has arrived and been
// validated, so a read abandoned through its context behaves as if it never
// started.
//
// An abandoned fetch is kept in flight: the next read needing the same range
// picks up its result, while a read needing a different range cancels it and
// waits for it to finish before fetching again.  At most one fetch is ever
// outstanding.
//
// An AsyncReader must not be used from more than one goroutine at a time.
type AsyncReader struct {
	w       window
	fetcher AsyncFetcher

	pending *inflight
	closed  bool
}

type inflight struct {
	req       RangeRequest
	cancel    context.CancelFunc
	cancelled bool
	done      <-chan RangeResponse
}

var _ io.ReadSeekCloser = (*AsyncReader)(nil)

// NewAsyncReader returns an AsyncReader for a stream of length bytes served
// by f.  Each fetch requests at least minChunkSize bytes, unless fewer remain
// in the stream.
func NewAsyncReader(f AsyncFetcher, length int64, minChunkSize int) *AsyncReader {
	return &AsyncReader{w: newWindow(length, minChunkSize, nil), fetcher: f}
}

// Read calls ReadContext with a background context.
func (r *AsyncReader) Read(p []byte) (int, error) {
	return r.ReadContext(context.Background(), p)
}

// ReadContext reads exactly len(p) bytes into p, waiting for a fetch when the
// buffer does not hold them.  If fewer than len(p) bytes remain in the stream,
// it returns the remaining bytes and io.EOF.  Fetch errors are returned as
// delivered; a response that does not answer the request is reported as a
// *ProtocolError.  If ctx is done first, ctx.Err() is returned and the reader
// is unchanged.
func (r *AsyncReader) ReadContext(ctx context.Context, p []byte) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	n := r.w.available(len(p))
	if n == 0 {
		return 0, io.EOF
	}

	if req, ok := r.w.plan(n); ok {
		data, err := r.await(ctx, req)
		if err != nil {
			return 0, err
		}
		r.w.fill(data)
	}

	r.w.take(p[:n])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (r *AsyncReader) await(ctx context.Context, req RangeRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Only a live fetch for the same range can be resumed.
	if r.pending != nil && (r.pending.req != req || r.pending.cancelled) {
		if err := r.drain(ctx); err != nil {
			return nil, err
		}
	}
	if r.pending == nil {
		// The fetch outlives a cancelled read so that a retry can resume it.
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		r.pending = &inflight{
			req:    req,
			cancel: cancel,
			done:   r.fetcher.FetchAsync(fctx, req),
		}
	}

	select {
	case resp := <-r.pending.done:
		r.pending.cancel()
		r.pending = nil
		if resp.Err != nil {
			return nil, resp.Err
		}
		if resp.Start != req.Start || len(resp.Data) != req.Length {
			return nil, &ProtocolError{Request: req, Start: resp.Start, Length: len(resp.Data)}
		}
		return resp.Data, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// drain cancels the fetch in flight and waits for it to finish.  The fetch
// stays cancelled if ctx ends first.
func (r *AsyncReader) drain(ctx context.Context) error {
	r.pending.cancel()
	r.pending.cancelled = true
	select {
	case <-r.pending.done:
		r.pending = nil
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Seek sets the position for the next read.  It discards the buffer, never
// waits and performs no I/O.  A fetch still in flight is reconciled by the
// next read.  Offsets resolving outside [0, Len()] return ErrSeekRange.
func (r *AsyncReader) Seek(offset int64, whence int) (int64, error) {
	return r.w.seek(offset, whence)
}

// Close cancels any fetch in flight.  Subsequent reads return ErrClosed.
func (r *AsyncReader) Close() error {
	if r.pending != nil {
		r.pending.cancel()
		r.pending = nil
	}
	r.closed = true
	return nil
}

// Len returns the length of the stream.
func (r *AsyncReader) Len() int64 {
	return r.w.length
}

// Buffered returns the number of fetched bytes not yet read.
func (r *AsyncReader) Buffered() int {
	return r.w.buffered()
}

// Stats returns the fetches completed so far.
func (r *AsyncReader) Stats() Stats {
	return r.w.stats
}

// WithContext returns a view of r whose reads use ctx.  It lets consumers
// that only accept an io.ReadSeeker read with a deadline or cancellation.
func (r *AsyncReader) WithContext(ctx context.Context) io.ReadSeeker {
	return &contextReader{r: r, ctx: ctx}
}

type contextReader struct {
	r   *AsyncReader
	ctx context.Context
}

func (c *contextReader) Read(p []byte) (int, error) {
	return c.r.ReadContext(c.ctx, p)
}

func (c *contextReader) Seek(offset int64, whence int) (int64, error) {
	return c.r.Seek(offset, whence)
}
