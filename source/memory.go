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
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
)

// Bytes is an Object held in memory.
type Bytes []byte

// Size returns len(b).
func (b Bytes) Size(context.Context) (int64, error) {
	return int64(len(b)), nil
}

// NewRangeReader returns a reader over b[offset:offset+length], truncated at
// the end of b.
func (b Bytes) NewRangeReader(_ context.Context, offset, length int64) (io.ReadCloser, error) {
	size := int64(len(b))
	if offset < 0 || offset > size {
		return nil, fmt.Errorf("%w: offset %d in %d byte object", ErrInvalidRange, offset, size)
	}
	end := size
	if length >= 0 && length < size-offset {
		end = offset + length
	}
	return io.NopCloser(bytes.NewReader(b[offset:end])), nil
}

// Memory is a Client over in-memory objects keyed by "bucket/name".
type Memory map[string]Bytes

// Object returns the named object.  Reading an object that is not in m fails
// with ErrNotFound.
func (m Memory) Object(bucket, name string) Object {
	key := path.Join(bucket, name)
	if b, ok := m[key]; ok {
		return b
	}
	return missingObject(key)
}

type missingObject string

func (o missingObject) Size(context.Context) (int64, error) {
	return 0, fmt.Errorf("%w: %s", ErrNotFound, string(o))
}

func (o missingObject) NewRangeReader(context.Context, int64, int64) (io.ReadCloser, error) {
	return nil, fmt.Errorf("%w: %s", ErrNotFound, string(o))
}
