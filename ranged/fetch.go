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

// Package ranged provides buffered, seekable readers over a range fetch
// primitive: a function that returns an arbitrary contiguous slice of a
// fixed-length byte stream, such as a byte range of an object in blob
// storage.
//
// Reader wraps a blocking Fetcher and implements io.ReadSeeker.  AsyncReader
// wraps an AsyncFetcher whose results are delivered on a channel, so that a
// read waiting on a fetch can be abandoned through its context.  Both readers
// batch small reads into fetches of at least a minimum chunk size and issue at
// most one fetch at a time.
package ranged

import (
	"context"
	"fmt"
)

// Fetcher is the blocking form of the range fetch capability.
//
// Fetch fills p with the len(p) bytes of the stream starting at start.  It
// must either fill p completely and return nil, or return an error.  The
// readers in this package never call Fetch for bytes at or beyond the length
// of the stream.
type Fetcher interface {
	Fetch(start int64, p []byte) error
}

// FetcherFunc adapts an ordinary function to the Fetcher interface.
type FetcherFunc func(start int64, p []byte) error

// Fetch calls f(start, p).
func (f FetcherFunc) Fetch(start int64, p []byte) error {
	return f(start, p)
}

// RangeRequest identifies Length bytes of a stream starting at Start.
type RangeRequest struct {
	Start  int64
	Length int
}

// End returns the offset of the byte following the requested range.
func (r RangeRequest) End() int64 {
	return r.Start + int64(r.Length)
}

func (r RangeRequest) String() string {
	return fmt.Sprintf("[%d-%d)", r.Start, r.End())
}

// RangeResponse is the result of an asynchronous fetch.  Start echoes the
// Start of the request it answers, and on success Data holds exactly the
// requested number of bytes.
type RangeResponse struct {
	Start int64
	Data  []byte
	Err   error
}

// AsyncFetcher is the non-blocking form of the range fetch capability.
//
// FetchAsync starts fetching req and returns a channel on which exactly one
// RangeResponse is delivered.  The fetch should stop early when ctx is
// cancelled, delivering a response carrying the context's error.
type AsyncFetcher interface {
	FetchAsync(ctx context.Context, req RangeRequest) <-chan RangeResponse
}

// AsyncFetcherFunc adapts an ordinary function to the AsyncFetcher interface.
type AsyncFetcherFunc func(ctx context.Context, req RangeRequest) <-chan RangeResponse

// FetchAsync calls f(ctx, req).
func (f AsyncFetcherFunc) FetchAsync(ctx context.Context, req RangeRequest) <-chan RangeResponse {
	return f(ctx, req)
}

// Async returns an AsyncFetcher that runs each fetch of f on its own
// goroutine.  Since f cannot observe the context, a cancelled fetch still runs
// to completion in the background; its result is discarded.
func Async(f Fetcher) AsyncFetcher {
	return AsyncFetcherFunc(func(ctx context.Context, req RangeRequest) <-chan RangeResponse {
		done := make(chan RangeResponse, 1)
		go func() {
			if err := ctx.Err(); err != nil {
				done <- RangeResponse{Start: req.Start, Err: err}
				return
			}
			data := make([]byte, req.Length)
			if err := f.Fetch(req.Start, data); err != nil {
				done <- RangeResponse{Start: req.Start, Err: err}
				return
			}
			done <- RangeResponse{Start: req.Start, Data: data}
		}()
		return done
	})
}
