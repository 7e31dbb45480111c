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

// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat/go-file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

const timestampFormat = "2006-01-02 15:04:05.000 Z07:00"

// Options controls Setup.  The zero value logs text at info level to stderr.
type Options struct {
	// Level is a logrus level name, "info" if empty.
	Level  string
	JSON   bool
	Colors bool

	// Dir, when set and not "-", also receives Name.log, rotated every
	// Rotation and pruned after MaxAge.
	Dir      string
	Name     string
	Rotation time.Duration
	MaxAge   time.Duration
}

// Setup configures the standard logrus logger from opts.
func Setup(opts Options) error {
	return setup(os.Stderr, opts)
}

func setup(out io.Writer, opts Options) error {
	if opts.Level == "" {
		opts.Level = "info"
	}
	level, err := logrus.ParseLevel(opts.Level)
	if err != nil {
		return err
	}

	formatter := newFormatter(opts)
	logrus.SetLevel(level)
	logrus.SetFormatter(formatter)
	logrus.SetOutput(out)

	if opts.Dir == "" || opts.Dir == "-" {
		return nil
	}
	writer, err := rotatingWriter(opts)
	if err != nil {
		return err
	}
	logrus.AddHook(lfshook.NewHook(enabledLevels(level, writer), formatter))
	return nil
}

// inUTC reports entry times in UTC whatever the local zone.
type inUTC struct {
	logrus.Formatter
}

func (f inUTC) Format(entry *logrus.Entry) ([]byte, error) {
	entry.Time = entry.Time.UTC()
	return f.Formatter.Format(entry)
}

func newFormatter(opts Options) logrus.Formatter {
	if opts.JSON {
		return inUTC{&logrus.JSONFormatter{TimestampFormat: timestampFormat}}
	}
	return inUTC{&logrus.TextFormatter{
		TimestampFormat:  timestampFormat,
		FullTimestamp:    true,
		ForceColors:      opts.Colors,
		DisableColors:    !opts.Colors,
		QuoteEmptyFields: true,
	}}
}

func rotatingWriter(opts Options) (io.Writer, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, err
	}
	name := opts.Name
	if name == "" {
		name = filepath.Base(os.Args[0])
	}
	rotation := opts.Rotation
	if rotation <= 0 {
		rotation = 24 * time.Hour
	}
	maxAge := opts.MaxAge
	if maxAge <= 0 {
		maxAge = 14 * 24 * time.Hour
	}

	path := filepath.Join(opts.Dir, name+".log")
	return rotatelogs.New(
		path+".%Y%m%d%H%M",
		rotatelogs.WithLinkName(path),
		rotatelogs.WithRotationTime(rotation),
		rotatelogs.WithMaxAge(maxAge),
	)
}

// enabledLevels maps every level at or above level's severity to w.
func enabledLevels(level logrus.Level, w io.Writer) lfshook.WriterMap {
	levels := make(lfshook.WriterMap)
	for _, l := range logrus.AllLevels {
		if l <= level {
			levels[l] = w
		}
	}
	return levels
}
