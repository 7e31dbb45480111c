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

// Package source connects storage backends to the readers in package ranged.
// A backend exposes its objects through the Object interface; NewFetcher turns
// an Object into both kinds of ranged fetcher, and Open and OpenAsync build a
// reader over the whole object.
package source

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrNotFound is returned when an object does not exist.
	ErrNotFound = errors.New("object does not exist")

	// ErrPermissionDenied is returned when the caller may not read an object.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrUnauthenticated is returned when the backend rejects the caller's
	// credentials.
	ErrUnauthenticated = errors.New("invalid authentication")

	// ErrInvalidRange is returned for a range that starts outside an object.
	ErrInvalidRange = errors.New("invalid range")
)

// Client is an interface to a storage backend.
type Client interface {
	// Object returns a handle to the named object.  It does not check that
	// the object exists.
	Object(bucket, name string) Object
}

// Object is a fixed-length object in a storage backend.
type Object interface {
	// Size returns the length of the object in bytes.
	Size(ctx context.Context) (int64, error)

	// NewRangeReader returns a reader for length bytes starting at offset.
	// Length of -1 means to capture everything until the end.
	NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error)
}
