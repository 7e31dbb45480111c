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

package ranged

import (
	"errors"
	"fmt"
)

var (
	// ErrSeekRange is returned by Seek when the resolved offset is negative,
	// past the end of the stream, or not representable.
	ErrSeekRange = errors.New("ranged: seek outside of stream")

	// ErrWhence is returned by Seek for an unknown whence value.
	ErrWhence = errors.New("ranged: invalid whence")

	// ErrProtocol is matched (with errors.Is) by every *ProtocolError.
	ErrProtocol = errors.New("ranged: fetch protocol violation")

	// ErrClosed is returned by reads on a closed AsyncReader.
	ErrClosed = errors.New("ranged: reader closed")
)

// ProtocolError reports an asynchronous fetch whose response does not answer
// the outstanding request: either the echoed start differs from the requested
// one, or the payload length differs from the requested length.
type ProtocolError struct {
	Request RangeRequest
	Start   int64
	Length  int
}

func (e *ProtocolError) Error() string {
	if e.Start != e.Request.Start {
		return fmt.Sprintf("ranged: response for offset %d does not answer request %s", e.Start, e.Request)
	}
	return fmt.Sprintf("ranged: response carries %d bytes for request %s", e.Length, e.Request)
}

// Is reports whether target is ErrProtocol.
func (e *ProtocolError) Is(target error) bool {
	return target == ErrProtocol
}
