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

// Package file provides source objects backed by local files.
package file

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/googlegenomics/ranged/source"
	"github.com/pkg/errors"
)

// Client is a source.Client over a directory tree.  Buckets are the
// directories directly below Root.
type Client struct {
	Root string
}

// Object returns the file Root/bucket/name.  Names that would escape the
// bucket directory cannot be read.
func (c Client) Object(bucket, name string) source.Object {
	if !filepath.IsLocal(bucket) || !filepath.IsLocal(filepath.FromSlash(name)) {
		return &Object{path: name, err: errors.Wrapf(source.ErrPermissionDenied, "%s/%s is not a local path", bucket, name)}
	}
	return New(filepath.Join(c.Root, bucket, filepath.FromSlash(name)))
}

// Object is a source.Object backed by a file.  Every range reader opens the
// file separately, so readers may be used concurrently.
type Object struct {
	path string
	err  error
}

// New returns an Object for the file at path.
func New(path string) *Object {
	return &Object{path: path}
}

// Size returns the size of the file.
func (o *Object) Size(context.Context) (int64, error) {
	if o.err != nil {
		return 0, o.err
	}
	info, err := os.Stat(o.path)
	if err != nil {
		return 0, translateError(err)
	}
	return info.Size(), nil
}

// NewRangeReader returns a reader for length bytes of the file starting at
// offset.
func (o *Object) NewRangeReader(_ context.Context, offset, length int64) (io.ReadCloser, error) {
	if o.err != nil {
		return nil, o.err
	}
	f, err := os.Open(o.path)
	if err != nil {
		return nil, translateError(err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, translateError(err)
	}
	if offset < 0 || offset > info.Size() {
		f.Close()
		return nil, errors.Wrapf(source.ErrInvalidRange, "offset %d in %s", offset, o.path)
	}
	if length < 0 || length > info.Size()-offset {
		length = info.Size() - offset
	}
	return &sectionReader{io.NewSectionReader(f, offset, length), f}, nil
}

type sectionReader struct {
	*io.SectionReader
	file *os.File
}

func (r *sectionReader) Close() error {
	return r.file.Close()
}

func translateError(err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return errors.Wrap(source.ErrNotFound, err.Error())
	case errors.Is(err, fs.ErrPermission):
		return errors.Wrap(source.ErrPermissionDenied, err.Error())
	}
	return err
}
