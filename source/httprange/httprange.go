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

// Package httprange provides source objects served over HTTP with Range
// requests.
package httprange

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/googlegenomics/ranged/source"
	"github.com/pkg/errors"
)

// Client is a source.Client for objects under a base URL.  The object
// "name" in bucket "b" is served at BaseURL/b/name.
type Client struct {
	HTTP    *http.Client
	BaseURL string
}

// Object returns a handle to the named object.
func (c Client) Object(bucket, name string) source.Object {
	return New(c.HTTP, strings.TrimSuffix(c.BaseURL, "/")+"/"+url.PathEscape(bucket)+"/"+name)
}

// Object is a source.Object at a single URL.
type Object struct {
	client *http.Client
	url    string
}

// New returns an Object for rawURL fetched with client, or with
// http.DefaultClient if client is nil.
func New(client *http.Client, rawURL string) *Object {
	if client == nil {
		client = http.DefaultClient
	}
	return &Object{client: client, url: rawURL}
}

// Size returns the Content-Length reported for a HEAD request.
func (o *Object) Size(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, o.url, nil)
	if err != nil {
		return 0, errors.Wrap(err, "creating request")
	}
	resp, err := o.client.Do(req)
	if err != nil {
		return 0, errors.Wrapf(err, "HEAD %s", o.url)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, o.statusError(resp)
	}
	if resp.ContentLength < 0 {
		return 0, errors.Errorf("HEAD %s: unknown content length", o.url)
	}
	return resp.ContentLength, nil
}

// NewRangeReader issues a GET with a Range header.  A server that ignores the
// header is tolerated by skipping to offset in the full body.
func (o *Object) NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	if offset < 0 {
		return nil, errors.Wrapf(source.ErrInvalidRange, "negative offset %d", offset)
	}
	if length == 0 {
		return io.NopCloser(strings.NewReader("")), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Range", rangeHeader(offset, length))
	resp, err := o.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "GET %s", o.url)
	}

	switch resp.StatusCode {
	case http.StatusPartialContent:
		start, err := contentRangeStart(resp.Header.Get("Content-Range"))
		if err == nil && start != offset {
			err = errors.Errorf("got range starting at %d, want %d", start, offset)
		}
		if err != nil {
			resp.Body.Close()
			return nil, errors.Wrapf(err, "GET %s", o.url)
		}
		return resp.Body, nil
	case http.StatusOK:
		if _, err := io.CopyN(io.Discard, resp.Body, offset); err != nil {
			resp.Body.Close()
			return nil, errors.Wrapf(err, "skipping to offset %d of %s", offset, o.url)
		}
		if length < 0 {
			return resp.Body, nil
		}
		return limitedBody{io.LimitReader(resp.Body, length), resp.Body}, nil
	default:
		resp.Body.Close()
		return nil, o.statusError(resp)
	}
}

func rangeHeader(offset, length int64) string {
	if length < 0 {
		return fmt.Sprintf("bytes=%d-", offset)
	}
	return fmt.Sprintf("bytes=%d-%d", offset, offset+length-1)
}

// contentRangeStart returns the first byte position of a Content-Range
// header of the form "bytes first-last/size".
func contentRangeStart(header string) (int64, error) {
	spec, ok := strings.CutPrefix(header, "bytes ")
	if !ok {
		return 0, errors.Errorf("invalid Content-Range %q", header)
	}
	first, _, ok := strings.Cut(spec, "-")
	if !ok {
		return 0, errors.Errorf("invalid Content-Range %q", header)
	}
	start, err := strconv.ParseInt(strings.TrimSpace(first), 10, 64)
	if err != nil || start < 0 {
		return 0, errors.Errorf("invalid Content-Range %q", header)
	}
	return start, nil
}

type limitedBody struct {
	io.Reader
	io.Closer
}

func (o *Object) statusError(resp *http.Response) error {
	where := resp.Request.Method + " " + o.url
	switch resp.StatusCode {
	case http.StatusNotFound:
		return errors.Wrap(source.ErrNotFound, where)
	case http.StatusUnauthorized:
		return errors.Wrap(source.ErrUnauthenticated, where)
	case http.StatusForbidden:
		return errors.Wrap(source.ErrPermissionDenied, where)
	case http.StatusRequestedRangeNotSatisfiable:
		return errors.Wrap(source.ErrInvalidRange, where)
	}
	return errors.Errorf("%s: unexpected status %s", where, resp.Status)
}
