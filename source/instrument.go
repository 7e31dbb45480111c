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
	"time"

	"github.com/googlegenomics/ranged/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Instrument returns an Object that records every range read of obj in the
// fetch metrics under the given backend label, and logs it at debug level.
func Instrument(obj Object, backend string) Object {
	return &instrumentedObject{Object: obj, labels: prometheus.Labels{"backend": backend}}
}

type instrumentedObject struct {
	Object
	labels prometheus.Labels
}

func (o *instrumentedObject) NewRangeReader(ctx context.Context, offset, length int64) (io.ReadCloser, error) {
	metrics.FetchRequests.With(o.labels).Inc()
	log := logrus.WithFields(logrus.Fields{
		"backend": o.labels["backend"],
		"offset":  offset,
		"length":  length,
	})

	r, err := o.Object.NewRangeReader(ctx, offset, length)
	if err != nil {
		metrics.FetchErrors.With(o.labels).Inc()
		log.WithError(err).Debug("Range read failed")
		return nil, err
	}
	log.Debug("Range read started")
	return &instrumentedReader{ReadCloser: r, labels: o.labels, log: log, started: time.Now()}, nil
}

type instrumentedReader struct {
	io.ReadCloser
	labels  prometheus.Labels
	log     *logrus.Entry
	started time.Time
	read    int64
	failed  bool
}

func (r *instrumentedReader) Read(p []byte) (int, error) {
	n, err := r.ReadCloser.Read(p)
	r.read += int64(n)
	if err != nil && err != io.EOF && !r.failed {
		r.failed = true
		metrics.FetchErrors.With(r.labels).Inc()
		r.log.WithError(err).Debug("Range read interrupted")
	}
	return n, err
}

func (r *instrumentedReader) Close() error {
	elapsed := time.Since(r.started)
	metrics.FetchBytes.With(r.labels).Add(float64(r.read))
	metrics.FetchDuration.With(r.labels).Observe(elapsed.Seconds())
	r.log.WithFields(logrus.Fields{
		"bytes":   r.read,
		"elapsed": elapsed,
	}).Debug("Range read finished")
	return r.ReadCloser.Close()
}
