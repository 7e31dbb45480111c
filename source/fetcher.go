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

package source

import (
	"context"
	"fmt"
	"io"

	"github.com/googlegenomics/ranged/ranged"
)

// Fetcher fetches byte ranges of an Object.  It implements ranged.Fetcher,
// using the context it was created with, and ranged.AsyncFetcher, using the
// context of each call.
type Fetcher struct {
	ctx context.Context
	obj Object
}

var (
	_ ranged.Fetcher      = (*Fetcher)(nil)
	_ ranged.AsyncFetcher = (*Fetcher)(nil)
)

// NewFetcher returns a Fetcher for obj.  Blocking fetches use ctx.
func NewFetcher(ctx context.Context, obj Object) *Fetcher {
	return &Fetcher{ctx: ctx, obj: obj}
}

// Fetch fills p with the bytes of the object starting at start.
func (f *Fetcher) Fetch(start int64, p []byte) error {
	return f.fetch(f.ctx, start, p)
}

// FetchAsync fetches req on a new goroutine.
func (f *Fetcher) FetchAsync(ctx context.Context, req ranged.RangeRequest) <-chan ranged.RangeResponse {
	done := make(chan ranged.RangeResponse, 1)
	go func() {
		data := make([]byte, req.Length)
		if err := f.fetch(ctx, req.Start, data); err != nil {
			done <- ranged.RangeResponse{Start: req.Start, Err: err}
			return
		}
		done <- ranged.RangeResponse{Start: req.Start, Data: data}
	}()
	return done
}

func (f *Fetcher) fetch(ctx context.Context, start int64, p []byte) error {
	r, err := f.obj.NewRangeReader(ctx, start, int64(len(p)))
	if err != nil {
		return err
	}
	defer r.Close()

	if _, err := io.ReadFull(r, p); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return fmt.Errorf("reading %d bytes at offset %d: %w", len(p), start, err)
	}
	return nil
}

// Open returns a Reader over all of obj.  It fetches at least minChunkSize
// bytes at a time.
func Open(ctx context.Context, obj Object, minChunkSize int) (*ranged.Reader, error) {
	size, err := obj.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting object size: %w", err)
	}
	return ranged.NewReader(NewFetcher(ctx, obj), size, minChunkSize), nil
}

// OpenAsync returns an AsyncReader over all of obj.  Reads take their
// context from the caller, so ctx is used only to read the object size.
func OpenAsync(ctx context.Context, obj Object, minChunkSize int) (*ranged.AsyncReader, error) {
	size, err := obj.Size(ctx)
	if err != nil {
		return nil, fmt.Errorf("getting object size: %w", err)
	}
	return ranged.NewAsyncReader(NewFetcher(ctx, obj), size, minChunkSize), nil
}
