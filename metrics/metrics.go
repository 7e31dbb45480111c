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

// Package metrics holds the prometheus collectors shared by the range fetch
// sources and the range server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var FetchRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "ranged_fetch_requests_total",
	Help: "Range reads started against a storage backend.",
}, []string{"backend"})
var FetchErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "ranged_fetch_errors_total",
	Help: "Range reads that failed to start or to complete.",
}, []string{"backend"})
var FetchBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "ranged_fetch_bytes_total",
	Help: "Bytes read from storage backends.",
}, []string{"backend"})
var FetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
	Name: "ranged_fetch_duration_seconds",
	Help: "Time from starting a range read until it is closed.",
}, []string{"backend"})

var HttpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "ranged_http_requests_total",
}, []string{"method"})
var HttpResponses = prometheus.NewCounterVec(prometheus.CounterOpts{
	Name: "ranged_http_responses_total",
}, []string{"method", "statusCode"})
var HttpBytesServed = prometheus.NewCounter(prometheus.CounterOpts{
	Name: "ranged_http_bytes_served_total",
})

func init() {
	prometheus.MustRegister(FetchRequests)
	prometheus.MustRegister(FetchErrors)
	prometheus.MustRegister(FetchBytes)
	prometheus.MustRegister(FetchDuration)
	prometheus.MustRegister(HttpRequests)
	prometheus.MustRegister(HttpResponses)
	prometheus.MustRegister(HttpBytesServed)
}
