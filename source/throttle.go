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
	"context"
	"io"

	"golang.org/x/time/rate"
)

// Throttle returns an Object that reads obj at no more than bytesPerSecond.
// All range readers of the returned Object share one limit.  A
// non-positive rate returns obj unchanged.
func Throttle(obj Object, bytesPerSecond int) Object {
	if bytesPerSecond <= 0 {
		return obj
	}
	return &throttledObject{
		Object:  obj,
		limiter: rate.NewLimiter(rate.Limit(bytesPerSecond), bytesPerSecond),
	}
}

type throttledObject struct {
	Object
	limiter *rate.Limiter
}

func (o *throttledObject) NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	r, err := o.Object.NewRangeReader(ctx, offset, length)
	if err != nil {
		return nil, err
	}
	return &throttledReader{ctx: ctx, ReadCloser: r, limiter: o.limiter}, nil
}

type throttledReader struct {
	io.ReadCloser
	ctx     context.Context
	limiter *rate.Limiter
}

func (r *throttledReader) Read(p []byte) (int, error) {
	// WaitN fails for more than the burst.
	if burst := r.limiter.Burst(); len(p) > burst {
		p = p[:burst]
	}
	if err := r.limiter.WaitN(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.ReadCloser.Read(p)
}
