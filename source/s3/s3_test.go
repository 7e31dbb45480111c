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

package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/googlegenomics/ranged/source"
	"github.com/minio/minio-go/v7"
)

// fakeS3 serves path-style object requests from memory.
type fakeS3 map[string][]byte

func (fake fakeS3) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	data, ok := fake[strings.TrimPrefix(req.URL.Path, "/")]
	if !ok {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`)
		return
	}
	w.Header().Set("ETag", `"fake"`)
	http.ServeContent(w, req, req.URL.Path, time.Unix(1500000000, 0), bytes.NewReader(data))
}

func newTestClient(t *testing.T, objects fakeS3) Client {
	server := httptest.NewServer(objects)
	t.Cleanup(server.Close)

	client, err := NewClient(Options{
		Endpoint: strings.TrimPrefix(server.URL, "http://"),
		Region:   "us-east-1",
		Insecure: true,
	})
	if err != nil {
		t.Fatalf("NewClient returned unexpected error: %v", err)
	}
	return client
}

func TestObject(t *testing.T) {
	data := []byte("0123456789abcdefghijklmnopqrstuvwxyz")
	client := newTestClient(t, fakeS3{"bucket/dir/object": data})
	obj := client.Object("bucket", "dir/object")
	ctx := context.Background()

	size, err := obj.Size(ctx)
	if err != nil {
		t.Fatalf("Size returned unexpected error: %v", err)
	}
	if got, want := size, int64(len(data)); got != want {
		t.Errorf("Wrong size: got %d, want %d", got, want)
	}

	testCases := []struct {
		name           string
		offset, length int64
		want           []byte
	}{
		{"prefix", 0, 4, data[:4]},
		{"middle", 10, 5, data[10:15]},
		{"to end", 30, -1, data[30:]},
		{"whole", 0, -1, data},
		{"empty", 7, 0, nil},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := obj.NewRangeReader(ctx, tc.offset, tc.length)
			if err != nil {
				t.Fatalf("NewRangeReader returned unexpected error: %v", err)
			}
			defer r.Close()
			got, err := io.ReadAll(r)
			if err != nil {
				t.Fatalf("ReadAll returned unexpected error: %v", err)
			}
			if !bytes.Equal(got, tc.want) {
				t.Errorf("Wrong data: got %q, want %q", got, tc.want)
			}
		})
	}

	r, err := source.Open(ctx, obj, 8)
	if err != nil {
		t.Fatalf("Open returned unexpected error: %v", err)
	}
	got, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("ReadAll returned unexpected error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Wrong data through reader: got %q, want %q", got, data)
	}
}

func TestMissingObject(t *testing.T) {
	client := newTestClient(t, fakeS3{})
	obj := client.Object("bucket", "missing")
	ctx := context.Background()

	if _, err := obj.Size(ctx); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("Wrong Size error: got %v, want %v", err, source.ErrNotFound)
	}
	if _, err := obj.NewRangeReader(ctx, 0, 10); !errors.Is(err, source.ErrNotFound) {
		t.Errorf("Wrong NewRangeReader error: got %v, want %v", err, source.ErrNotFound)
	}
}

func TestTranslateError(t *testing.T) {
	obj := object{bucket: "bucket", name: "object"}
	testCases := []struct {
		name string
		err  error
		want error
	}{
		{"no such key", minio.ErrorResponse{Code: "NoSuchKey"}, source.ErrNotFound},
		{"access denied", minio.ErrorResponse{Code: "AccessDenied"}, source.ErrPermissionDenied},
		{"bad key", minio.ErrorResponse{Code: "InvalidAccessKeyId"}, source.ErrUnauthenticated},
		{"range code", minio.ErrorResponse{Code: "InvalidRange"}, source.ErrInvalidRange},
		{"range status", minio.ErrorResponse{StatusCode: http.StatusRequestedRangeNotSatisfiable}, source.ErrInvalidRange},
		{"forbidden status", minio.ErrorResponse{StatusCode: http.StatusForbidden}, source.ErrPermissionDenied},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := obj.translateError(tc.err); !errors.Is(got, tc.want) {
				t.Errorf("Wrong error: got %v, want %v", got, tc.want)
			}
		})
	}
}
