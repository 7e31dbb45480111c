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
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/googlegenomics/ranged/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

const (
	requestIDHeader = "X-Request-Id"
	loggerKey       = "ranged.logger"
)

// requestLogger tags each request with a fresh ID, records it in the HTTP
// metrics and logs it once served.
func requestLogger(c *gin.Context) {
	id := uuid.New().String()
	c.Header(requestIDHeader, id)

	method := c.Request.Method
	log := logrus.WithFields(logrus.Fields{
		"request_id": id,
		"method":     method,
		"path":       c.Request.URL.Path,
	})
	c.Set(loggerKey, log)
	metrics.HttpRequests.With(prometheus.Labels{"method": method}).Inc()

	start := time.Now()
	c.Next()

	status := c.Writer.Status()
	metrics.HttpResponses.With(prometheus.Labels{"method": method, "statusCode": strconv.Itoa(status)}).Inc()
	if size := c.Writer.Size(); size > 0 {
		metrics.HttpBytesServed.Add(float64(size))
	}
	log.WithFields(logrus.Fields{
		"status":  status,
		"bytes":   c.Writer.Size(),
		"elapsed": time.Since(start),
	}).Info("Request served")
}

func logger(c *gin.Context) *logrus.Entry {
	if log, ok := c.Get(loggerKey); ok {
		return log.(*logrus.Entry)
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func forwardOrigin(c *gin.Context) {
	if origin := c.GetHeader("Origin"); origin != "" {
		c.Header("Access-Control-Allow-Origin", origin)
	}
}
