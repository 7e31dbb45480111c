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

// Package gcs provides source objects backed by Google Cloud Storage.
package gcs

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/googlegenomics/ranged/source"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// Client is a source.Client for accessing Google Cloud Storage.
type Client struct {
	*storage.Client
}

// NewClient returns a Client configured with opts.
func NewClient(ctx context.Context, opts ...option.ClientOption) (Client, error) {
	gcs, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return Client{}, errors.Wrap(err, "creating storage client")
	}
	return Client{gcs}, nil
}

// Object returns a handle to the named object.
func (c Client) Object(bucket, name string) source.Object {
	return object{c.Bucket(bucket).Object(name)}
}

type object struct {
	handle *storage.ObjectHandle
}

func (o object) Size(ctx context.Context) (int64, error) {
	attrs, err := o.handle.Attrs(ctx)
	if err != nil {
		return 0, o.translateError(err)
	}
	return attrs.Size, nil
}

func (o object) NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	r, err := o.handle.NewRangeReader(ctx, offset, length)
	if err != nil {
		return nil, o.translateError(err)
	}
	return r, nil
}

func (o object) translateError(err error) error {
	name := "gs://" + o.handle.BucketName() + "/" + o.handle.ObjectName()
	if errors.Is(err, storage.ErrObjectNotExist) || errors.Is(err, storage.ErrBucketNotExist) {
		return errors.Wrap(source.ErrNotFound, name)
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized:
			return errors.Wrapf(source.ErrUnauthenticated, "%s: %v", name, apiErr)
		case http.StatusForbidden:
			return errors.Wrapf(source.ErrPermissionDenied, "%s: %v", name, apiErr)
		case http.StatusNotFound:
			return errors.Wrap(source.ErrNotFound, name)
		case http.StatusRequestedRangeNotSatisfiable:
			return errors.Wrap(source.ErrInvalidRange, name)
		}
	}
	return errors.Wrapf(err, "reading %s", name)
}

var (
	defaultClient     Client
	defaultClientErr  error
	initDefaultClient sync.Once

	publicClient     Client
	publicClientErr  error
	initPublicClient sync.Once
)

// NewDefaultClient returns a storage client that uses the application default
// credentials.  It caches the storage client for efficiency.
func NewDefaultClient(_ *http.Request) (source.Client, error) {
	initDefaultClient.Do(func() {
		defaultClient, defaultClientErr = NewClient(context.Background())
	})
	return defaultClient, defaultClientErr
}

// NewPublicClient returns a storage client that does not use any form of
// client authorization.  It can only be used to read publicly-readable
// objects.  It caches the storage client for efficiency.
func NewPublicClient(_ *http.Request) (source.Client, error) {
	initPublicClient.Do(func() {
		publicClient, publicClientErr = NewClient(context.Background(), option.WithHTTPClient(http.DefaultClient))
	})
	return publicClient, publicClientErr
}

// NewClientFromBearerToken constructs a storage client that uses the OAuth2
// bearer token found in req to make storage requests.
func NewClientFromBearerToken(req *http.Request) (source.Client, error) {
	token, err := BearerToken(req)
	if err != nil {
		return nil, err
	}
	return NewClient(req.Context(), option.WithTokenSource(oauth2.StaticTokenSource(token)))
}

// BearerToken extracts the OAuth2 bearer token from the Authorization header
// of req.
func BearerToken(req *http.Request) (*oauth2.Token, error) {
	fields := strings.Split(req.Header.Get("Authorization"), " ")
	if len(fields) != 2 || fields[0] != "Bearer" || fields[1] == "" {
		return nil, errors.Wrap(source.ErrUnauthenticated, "missing or invalid token")
	}
	return &oauth2.Token{
		TokenType:   fields[0],
		AccessToken: fields[1],
	}, nil
}
