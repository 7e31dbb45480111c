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

package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/googlegenomics/ranged/ranged"
	"github.com/googlegenomics/ranged/source"
)

// apiError is used to capture errors that are reported to clients by name.
type apiError struct {
	name  string
	code  int
	cause error
}

func (err *apiError) Error() string {
	return fmt.Sprintf("%s (%d): %v", err.name, err.code, err.cause)
}

func (err *apiError) Unwrap() error {
	return err.cause
}

func newAPIError(name string, code int, context string, err error) error {
	return &apiError{name, code, fmt.Errorf("%s: %w", context, err)}
}

func newInvalidAuthenticationError(context string, err error) error {
	return newAPIError("InvalidAuthentication", http.StatusUnauthorized, context, err)
}

func newInvalidInputError(context string, err error) error {
	return newAPIError("InvalidInput", http.StatusBadRequest, context, err)
}

func newInvalidRangeError(context string, err error) error {
	return newAPIError("InvalidRange", http.StatusRequestedRangeNotSatisfiable, context, err)
}

func newPermissionDeniedError(context string, err error) error {
	return newAPIError("PermissionDenied", http.StatusForbidden, context, err)
}

func newNotFoundError(context string, err error) error {
	return newAPIError("NotFound", http.StatusNotFound, context, err)
}

// newStorageError converts the errors of the source packages into the named
// errors understood by clients.
func newStorageError(context string, err error) error {
	switch {
	case errors.Is(err, source.ErrNotFound):
		return newNotFoundError(context, err)
	case errors.Is(err, source.ErrPermissionDenied):
		return newPermissionDeniedError(context, err)
	case errors.Is(err, source.ErrUnauthenticated):
		return newInvalidAuthenticationError(context, err)
	case errors.Is(err, source.ErrInvalidRange), errors.Is(err, ranged.ErrSeekRange):
		return newInvalidRangeError(context, err)
	}
	return fmt.Errorf("%s: %w", context, err)
}

// writeError writes either a JSON object or a bare HTTP error describing err.
// A JSON object is written only for errors that have a name.
func writeError(c *gin.Context, err error) {
	logger(c).WithError(err).Warn("Request failed")

	var apiErr *apiError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.code, gin.H{
			"error":   apiErr.name,
			"message": fmt.Sprintf("%s: %v", http.StatusText(apiErr.code), apiErr.cause),
		})
		return
	}
	c.String(http.StatusInternalServerError, "%s: %v", http.StatusText(http.StatusInternalServerError), err)
}
