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

// This binary copies a byte range of one or more objects to standard output.
// Targets are gs://bucket/object, s3://bucket/object, http(s) URLs or local
// paths.
package main

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/googlegenomics/ranged/internal/logging"
	"github.com/googlegenomics/ranged/source"
	"github.com/googlegenomics/ranged/source/file"
	"github.com/googlegenomics/ranged/source/gcs"
	"github.com/googlegenomics/ranged/source/httprange"
	"github.com/googlegenomics/ranged/source/s3"
	"github.com/pkg/profile"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	scope = "https://www.googleapis.com/auth/devstorage.read_only"
)

var (
	offset = flag.Int64("offset", 0, "first byte to copy")
	length = flag.Int64("length", -1, "number of bytes to copy, or -1 for all remaining")
	tail   = flag.Int64("tail", 0, "if set, copy the last N bytes instead of starting at -offset")
	chunk  = flag.Int("chunk", 256*1024, "minimum fetch size in bytes")
	async  = flag.Bool("async", false, "read through the asynchronous reader")
	limit  = flag.Int("rate", 0, "if set, limits reads to this many bytes per second")
	output = flag.String("o", "", "output filename")

	googleAuth = flag.Bool("google_auth", false, "authenticate http(s) requests with Google application default credentials")

	s3Endpoint = flag.String("s3_endpoint", "s3.amazonaws.com", "S3 endpoint host")
	s3Region   = flag.String("s3_region", "", "S3 region")
	s3Insecure = flag.Bool("s3_insecure", false, "connect to the S3 endpoint over plain HTTP")

	profileMode = flag.String("profile", "", "write a cpu or mem profile to the current directory")

	logLevel = flag.String("log_level", "info", "log level")
	logJSON  = flag.Bool("log_json", false, "log as JSON")
)

func main() {
	flag.Parse()

	if err := logging.Setup(logging.Options{Level: *logLevel, JSON: *logJSON}); err != nil {
		logrus.Fatalf("Failed to set up logging: %v", err)
	}
	if flag.NArg() == 0 {
		logrus.Fatal("No targets specified")
	}

	w := io.Writer(os.Stdout)
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			logrus.Fatalf("Failed to open output file: %v", err)
		}
		defer f.Close()

		w = f
	}

	var stop interface{ Stop() }
	switch *profileMode {
	case "":
	case "cpu":
		stop = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		stop = profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		logrus.Fatalf("Unknown profile mode %q", *profileMode)
	}

	ctx := context.Background()
	var err error
	for _, target := range flag.Args() {
		if err = copyTarget(ctx, w, target); err != nil {
			err = fmt.Errorf("%s: %w", target, err)
			break
		}
	}

	if stop != nil {
		stop.Stop()
	}
	if err != nil {
		logrus.Fatal(err)
	}
}

func copyTarget(ctx context.Context, w io.Writer, target string) error {
	obj, backend, err := open(ctx, target)
	if err != nil {
		return err
	}
	obj = source.Instrument(source.Throttle(obj, *limit), backend)

	start, whence := *offset, io.SeekStart
	if *tail > 0 {
		start, whence = -*tail, io.SeekEnd
	}

	var (
		r     io.ReadSeeker
		stats func() string
	)
	if *async {
		ar, err := source.OpenAsync(ctx, obj, *chunk)
		if err != nil {
			return err
		}
		defer ar.Close()
		r = ar.WithContext(ctx)
		stats = func() string { return fmt.Sprintf("%+v", ar.Stats()) }
	} else {
		sr, err := source.Open(ctx, obj, *chunk)
		if err != nil {
			return err
		}
		r = sr
		stats = func() string { return fmt.Sprintf("%+v", sr.Stats()) }
	}

	if _, err := r.Seek(start, whence); err != nil {
		return err
	}

	var copied int64
	if *length >= 0 {
		copied, err = io.CopyN(w, r, *length)
		if err == io.EOF {
			err = nil
		}
	} else {
		copied, err = io.Copy(w, r)
	}
	logrus.WithFields(logrus.Fields{
		"target": target,
		"bytes":  copied,
		"stats":  stats(),
	}).Info("Copied range")
	return err
}

// open resolves target to an object and the name of its backend.
func open(ctx context.Context, target string) (source.Object, string, error) {
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Local paths, including Windows drive letters.
		return file.New(target), "file", nil
	}

	name := strings.TrimPrefix(u.Path, "/")
	switch u.Scheme {
	case "gs":
		client, err := gcs.NewClient(ctx)
		if err != nil {
			return nil, "", err
		}
		return client.Object(u.Host, name), "gcs", nil
	case "s3":
		client, err := s3.NewClient(s3.Options{
			Endpoint:        *s3Endpoint,
			Region:          *s3Region,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Insecure:        *s3Insecure,
		})
		if err != nil {
			return nil, "", err
		}
		return client.Object(u.Host, name), "s3", nil
	case "http", "https":
		client, err := httpClient(ctx)
		if err != nil {
			return nil, "", err
		}
		return httprange.New(client, target), "http", nil
	}
	return nil, "", fmt.Errorf("unsupported scheme %q", u.Scheme)
}

func httpClient(ctx context.Context) (*http.Client, error) {
	// For compatibility with other tools, read the standard cURL certificate
	// authority override from the environment.
	if bundle := os.Getenv("CURL_CA_BUNDLE"); bundle != "" {
		pem, err := os.ReadFile(bundle)
		if err != nil {
			return nil, fmt.Errorf("reading CA override file %q: %w", bundle, err)
		}
		pool, err := x509.SystemCertPool()
		if err != nil {
			return nil, fmt.Errorf("initializing system certificate pool: %w", err)
		}
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("adding certificates from bundle %q", bundle)
		}
		ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					RootCAs: pool,
				}},
		})
		logrus.Debugf("Using CA override bundle from %q", bundle)
	}

	if !*googleAuth {
		if client, ok := ctx.Value(oauth2.HTTPClient).(*http.Client); ok {
			return client, nil
		}
		return http.DefaultClient, nil
	}
	return google.DefaultClient(ctx, scope)
}
