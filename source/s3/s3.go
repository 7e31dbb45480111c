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

// Package s3 provides source objects backed by S3-compatible storage.
package s3

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/googlegenomics/ranged/source"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/pkg/errors"
)

// Options configures the connection to an S3-compatible endpoint.
type Options struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Insecure        bool
}

// Client is a source.Client for S3-compatible storage.
type Client struct {
	*minio.Client
}

// NewClient returns a Client for the endpoint in opts.  Without an access
// key, requests are sent anonymously.
func NewClient(opts Options) (Client, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Region: opts.Region,
		Secure: !opts.Insecure,
		Creds:  credentials.NewStaticV4(opts.AccessKeyID, opts.SecretAccessKey, ""),
	})
	if err != nil {
		return Client{}, errors.Wrapf(err, "creating client for %s", opts.Endpoint)
	}
	return Client{client}, nil
}

// Object returns a handle to the named object.
func (c Client) Object(bucket, name string) source.Object {
	return object{client: c.Client, bucket: bucket, name: name}
}

type object struct {
	client       *minio.Client
	bucket, name string
}

func (o object) Size(ctx context.Context) (int64, error) {
	info, err := o.client.StatObject(ctx, o.bucket, o.name, minio.StatObjectOptions{})
	if err != nil {
		return 0, o.translateError(err)
	}
	return info.Size, nil
}

func (o object) NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	if length == 0 {
		return io.NopCloser(strings.NewReader("")), nil
	}

	var opts minio.GetObjectOptions
	var err error
	switch {
	case length > 0:
		err = opts.SetRange(offset, offset+length-1)
	case offset > 0:
		err = opts.SetRange(offset, 0)
	}
	if err != nil {
		return nil, errors.Wrap(source.ErrInvalidRange, err.Error())
	}

	obj, err := o.client.GetObject(ctx, o.bucket, o.name, opts)
	if err != nil {
		return nil, o.translateError(err)
	}
	// GetObject is lazy; Stat sends the request so that failures surface here.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, o.translateError(err)
	}
	return obj, nil
}

func (o object) translateError(err error) error {
	name := "s3://" + o.bucket + "/" + o.name
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "NoSuchKey", "NoSuchBucket":
		return errors.Wrap(source.ErrNotFound, name)
	case "AccessDenied":
		return errors.Wrapf(source.ErrPermissionDenied, "%s: %s", name, resp.Message)
	case "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return errors.Wrapf(source.ErrUnauthenticated, "%s: %s", name, resp.Message)
	case "InvalidRange":
		return errors.Wrap(source.ErrInvalidRange, name)
	}
	switch resp.StatusCode {
	case http.StatusNotFound:
		return errors.Wrap(source.ErrNotFound, name)
	case http.StatusForbidden:
		return errors.Wrapf(source.ErrPermissionDenied, "%s: %v", name, err)
	case http.StatusUnauthorized:
		return errors.Wrapf(source.ErrUnauthenticated, "%s: %v", name, err)
	case http.StatusRequestedRangeNotSatisfiable:
		return errors.Wrap(source.ErrInvalidRange, name)
	}
	return errors.Wrapf(err, "reading %s", name)
}
