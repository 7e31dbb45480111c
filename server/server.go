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

// Package server implements an HTTP proxy that serves byte ranges of objects
// in a storage backend.
//
// A range is requested with
//
//	GET /objects/<bucket>/<object>?offset=N&length=M
//
// where a negative offset counts back from the end of the object and a
// missing length extends the range to the end.  HEAD on the same path
// reports the object size.  Errors are returned as JSON objects of the form
// {"error": name, "message": text}.
package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/googlegenomics/ranged/source"
)

const objectsPath = "/objects"

var (
	errInvalidOrUnspecifiedID = errors.New("invalid or unspecified ID")
	errNegativeLength         = errors.New("negative length")
)

// NewClientFunc is the type of function that constructs the appropriate
// source.Client to satisfy the incoming request.
type NewClientFunc func(*http.Request) (source.Client, error)

// Server serves object ranges.  Must be created with New.
type Server struct {
	newClient NewClientFunc
	backend   string
	minChunk  int
	whitelist map[string]bool
}

// New returns a Server that calls newClient on each request to determine
// which storage client to use.  Objects are read in chunks of at least
// minChunkSize bytes, and fetches are recorded in the metrics under backend.
func New(newClient NewClientFunc, backend string, minChunkSize int) *Server {
	return &Server{newClient, backend, minChunkSize, make(map[string]bool)}
}

// Whitelist adds buckets to the set of buckets which the server is allowed to
// access.  If Whitelist is never called for a given Server then reads from any
// bucket are allowed.
func (server *Server) Whitelist(buckets []string) {
	for _, bucket := range buckets {
		if bucket = strings.TrimSpace(bucket); bucket != "" {
			server.whitelist[bucket] = true
		}
	}
}

// Register adds the object routes to router.
func (server *Server) Register(router gin.IRouter) {
	objects := router.Group(objectsPath, forwardOrigin)
	objects.GET("/:bucket/*object", server.serveRange)
	objects.HEAD("/:bucket/*object", server.serveSize)
}

// Handler returns a gin engine serving only the object routes.
func (server *Server) Handler() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger)
	server.Register(engine)
	return engine
}

func (server *Server) serveRange(c *gin.Context) {
	ctx := c.Request.Context()

	obj, err := server.object(c)
	if err != nil {
		writeError(c, err)
		return
	}

	offset, length, err := parseRange(c.Query("offset"), c.Query("length"))
	if err != nil {
		writeError(c, newInvalidInputError("parsing range", err))
		return
	}

	r, err := source.OpenAsync(ctx, obj, server.minChunk)
	if err != nil {
		writeError(c, newStorageError("opening object", err))
		return
	}
	defer r.Close()

	whence := io.SeekStart
	if offset < 0 {
		whence = io.SeekEnd
	}
	start, err := r.Seek(offset, whence)
	if err != nil {
		writeError(c, newStorageError("seeking", err))
		return
	}
	n := r.Len() - start
	if length >= 0 && length < n {
		n = length
	}

	// Read the first chunk before committing to a status code.
	body := r.WithContext(ctx)
	head := make([]byte, min(n, int64(max(server.minChunk, 1))))
	if _, err := io.ReadFull(body, head); err != nil {
		writeError(c, newStorageError("reading object", err))
		return
	}

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Length", strconv.FormatInt(n, 10))
	c.Header("X-Object-Size", strconv.FormatInt(r.Len(), 10))
	c.Status(http.StatusOK)
	if _, err := c.Writer.Write(head); err != nil {
		logger(c).WithError(err).Warn("Failed to write response")
		return
	}
	if _, err := io.CopyN(c.Writer, body, n-int64(len(head))); err != nil {
		logger(c).WithError(err).Warn("Failed to copy response")
		return
	}
	logger(c).WithField("fetches", r.Stats().Fetches).Debug("Range copied")
}

func (server *Server) serveSize(c *gin.Context) {
	obj, err := server.object(c)
	if err != nil {
		writeError(c, err)
		return
	}

	size, err := obj.Size(c.Request.Context())
	if err != nil {
		writeError(c, newStorageError("getting size", err))
		return
	}
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Length", strconv.FormatInt(size, 10))
	c.Status(http.StatusOK)
}

// object resolves the object named by the request path.
func (server *Server) object(c *gin.Context) (source.Object, error) {
	bucket, name, err := parseID(c.Param("bucket"), c.Param("object"))
	if err != nil {
		return nil, newInvalidInputError("parsing object ID", err)
	}
	if err := server.checkWhitelist(bucket); err != nil {
		return nil, newPermissionDeniedError("checking whitelist", err)
	}
	client, err := server.newClient(c.Request)
	if err != nil {
		return nil, newStorageError("creating client", err)
	}
	return source.Instrument(client.Object(bucket, name), server.backend), nil
}

func (server *Server) checkWhitelist(bucket string) error {
	if len(server.whitelist) == 0 || server.whitelist[bucket] {
		return nil
	}
	return fmt.Errorf("access to bucket %s is not allowed", bucket)
}

// parseID returns the bucket and object named by the route parameters, or an
// error.
func parseID(bucket, object string) (string, string, error) {
	object = strings.TrimPrefix(object, "/")
	if bucket == "" || object == "" {
		return "", "", errInvalidOrUnspecifiedID
	}
	return bucket, object, nil
}

// parseRange parses the offset and length query parameters.  A missing
// length is returned as -1.
func parseRange(offset, length string) (int64, int64, error) {
	var start int64
	if offset != "" {
		n, err := strconv.ParseInt(offset, 10, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("parsing offset: %w", err)
		}
		start = n
	}

	if length == "" {
		return start, -1, nil
	}
	n, err := strconv.ParseInt(length, 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing length: %w", err)
	}
	if n < 0 {
		return 0, 0, errNegativeLength
	}
	return start, n, nil
}
