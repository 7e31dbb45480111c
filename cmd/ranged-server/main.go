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

// This binary serves byte ranges of objects in GCS, S3 or a local directory.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/googlegenomics/ranged/internal/logging"
	"github.com/googlegenomics/ranged/server"
	"github.com/googlegenomics/ranged/source"
	"github.com/googlegenomics/ranged/source/file"
	"github.com/googlegenomics/ranged/source/gcs"
	"github.com/googlegenomics/ranged/source/s3"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

var (
	port      = flag.Int("port", 80, "HTTP service port")
	chunkSize = flag.Int("chunk_size", 1024*1024, "minimum number of bytes fetched from storage at a time")
	backend   = flag.String("backend", "gcs", "storage backend: gcs, s3 or file")

	secure    = flag.Bool("secure", false, "serve in HTTPS-only mode and forward client bearer tokens to GCS")
	httpsCert = flag.String("https_cert", "", "HTTPS certificate file")
	httpsKey  = flag.String("https_key", "", "HTTPS key file")

	buckets = flag.String("buckets", "", "if set, restricts reads to a comma-separated list of buckets")

	directory = flag.String("directory", "", "root directory for the file backend; buckets are its subdirectories")

	s3Endpoint = flag.String("s3_endpoint", "s3.amazonaws.com", "S3 endpoint host")
	s3Region   = flag.String("s3_region", "", "S3 region")
	s3Insecure = flag.Bool("s3_insecure", false, "connect to the S3 endpoint over plain HTTP")

	metricsPath = flag.String("metrics_path", "/metrics", "path serving prometheus metrics, empty to disable")

	logDir    = flag.String("log_dir", "", "directory for rotated log files")
	logLevel  = flag.String("log_level", "info", "log level")
	logJSON   = flag.Bool("log_json", false, "log as JSON")
	logColors = flag.Bool("log_colors", false, "colorize text logs")
)

func main() {
	flag.Parse()

	if err := logging.Setup(logging.Options{
		Level:  *logLevel,
		JSON:   *logJSON,
		Colors: *logColors,
		Dir:    *logDir,
		Name:   "ranged-server",
	}); err != nil {
		logrus.Fatalf("Failed to set up logging: %v", err)
	}

	if *secure && (*httpsCert == "" || *httpsKey == "") {
		logrus.Fatal("You must specify both -https_cert and -https_key in secure mode.")
	}

	newClient, err := newClientFunc()
	if err != nil {
		logrus.Fatalf("Failed to configure %s backend: %v", *backend, err)
	}

	srv := server.New(newClient, *backend, *chunkSize)

	whitelist := *buckets
	if whitelist == "" {
		whitelist = os.Getenv("BUCKET_WHITELIST")
	}
	if whitelist != "" {
		srv.Whitelist(strings.Split(whitelist, ","))
		logrus.WithField("buckets", whitelist).Info("Restricting reads to whitelisted buckets")
	}

	gin.SetMode(gin.ReleaseMode)
	router := srv.Handler()
	if *metricsPath != "" {
		router.GET(*metricsPath, gin.WrapH(promhttp.Handler()))
	}

	address := fmt.Sprintf(":%d", *port)
	logrus.WithFields(logrus.Fields{
		"address": address,
		"backend": *backend,
		"secure":  *secure,
	}).Info("Serving object ranges")
	if *secure {
		if err := http.ListenAndServeTLS(address, *httpsCert, *httpsKey, router); err != nil {
			logrus.Fatalf("HTTPS server returned an error: %v", err)
		}
	} else {
		if err := http.ListenAndServe(address, router); err != nil {
			logrus.Fatalf("HTTP server returned an error: %v", err)
		}
	}
}

func newClientFunc() (server.NewClientFunc, error) {
	switch *backend {
	case "gcs":
		if *secure {
			return gcs.NewClientFromBearerToken, nil
		}
		return gcs.NewPublicClient, nil
	case "s3":
		client, err := s3.NewClient(s3.Options{
			Endpoint:        *s3Endpoint,
			Region:          *s3Region,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Insecure:        *s3Insecure,
		})
		if err != nil {
			return nil, err
		}
		return fixedClient(client), nil
	case "file":
		if *directory == "" {
			return nil, fmt.Errorf("-directory is required")
		}
		return fixedClient(file.Client{Root: *directory}), nil
	}
	return nil, fmt.Errorf("unknown backend %q", *backend)
}

func fixedClient(client source.Client) server.NewClientFunc {
	return func(*http.Request) (source.Client, error) {
		return client, nil
	}
}
