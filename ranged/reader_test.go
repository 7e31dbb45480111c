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
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"testing"
)

const testLength = 100

// testData returns the stream used throughout these tests, where the byte at
// offset x is x % 255.
func testData(length int) []byte {
	data := make([]byte, length)
	for i := range data {
		data[i] = byte(i % 255)
	}
	return data
}

// sliceFetcher serves a byte slice and records every request.  A request
// reaching outside the slice is an error.
type sliceFetcher struct {
	data  []byte
	calls []RangeRequest
	fail  error
}

func (f *sliceFetcher) Fetch(start int64, p []byte) error {
	f.calls = append(f.calls, RangeRequest{Start: start, Length: len(p)})
	if f.fail != nil {
		return f.fail
	}
	if start < 0 || start+int64(len(p)) > int64(len(f.data)) {
		return fmt.Errorf("fetch %d bytes at %d outside of %d byte stream", len(p), start, len(f.data))
	}
	copy(p, f.data[start:])
	return nil
}

func TestReaderSequential(t *testing.T) {
	testCases := []struct{ calls, callSize, minChunk int }{
		{10, 5, 10},
		{5, 20, 10},
		{10, 7, 10},
	}
	data := testData(testLength)
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%dx%d/%d", tc.calls, tc.callSize, tc.minChunk), func(t *testing.T) {
			r := NewReaderBuffer(&sliceFetcher{data: data}, testLength, make([]byte, tc.minChunk))
			var result []byte
			to := make([]byte, tc.callSize)
			for i := 0; i < tc.calls; i++ {
				n, err := r.Read(to)
				if err != nil {
					t.Fatalf("Read returned unexpected error: %v", err)
				}
				if got, want := n, tc.callSize; got != want {
					t.Fatalf("Wrong read size: got %d, want %d", got, want)
				}
				result = append(result, to...)
				if !bytes.Equal(result, data[:len(result)]) {
					t.Fatalf("Wrong data after %d reads: got %v, want %v", i+1, result, data[:len(result)])
				}
			}
		})
	}
}

func TestReaderReadsWholeStream(t *testing.T) {
	data := testData(testLength)
	for minChunk := 0; minChunk <= testLength+20; minChunk++ {
		for callSize := 1; callSize <= 33; callSize++ {
			f := &sliceFetcher{data: data}
			r := NewReader(f, testLength, minChunk)
			got, err := io.ReadAll(readerOnly{r, callSize})
			if err != nil {
				t.Fatalf("chunk %d, call %d: ReadAll returned unexpected error: %v", minChunk, callSize, err)
			}
			if !bytes.Equal(got, data) {
				t.Fatalf("chunk %d, call %d: wrong data: got %v, want %v", minChunk, callSize, got, data)
			}
			var fetched int64
			for _, c := range f.calls {
				if c.Length <= 0 {
					t.Errorf("chunk %d, call %d: empty fetch %v", minChunk, callSize, c)
				}
				fetched += int64(c.Length)
			}
			if got, want := r.Stats(), (Stats{Fetches: len(f.calls), BytesFetched: fetched}); got != want {
				t.Errorf("chunk %d, call %d: wrong stats: got %+v, want %+v", minChunk, callSize, got, want)
			}
		}
	}
}

// readerOnly caps each Read at size bytes.
type readerOnly struct {
	r    io.Reader
	size int
}

func (r readerOnly) Read(p []byte) (int, error) {
	if len(p) > r.size {
		p = p[:r.size]
	}
	return r.r.Read(p)
}

func TestReaderFetchSizes(t *testing.T) {
	testCases := []struct {
		name      string
		minChunk  int
		callSize  int
		calls     int
		wantCalls []RangeRequest
	}{
		{"one chunk covers everything", 100, 10, 10, []RangeRequest{{0, 100}}},
		{"draining the buffer refills", 10, 5, 3, []RangeRequest{{0, 10}, {10, 5}, {15, 5}}},
		{"read larger than chunk", 10, 20, 2, []RangeRequest{{0, 20}, {20, 20}}},
		{"chunk clamped at end", 30, 25, 4, []RangeRequest{{0, 30}, {30, 25}, {55, 25}, {80, 20}}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := &sliceFetcher{data: testData(testLength)}
			r := NewReader(f, testLength, tc.minChunk)
			p := make([]byte, tc.callSize)
			for i := 0; i < tc.calls; i++ {
				if _, err := r.Read(p); err != nil {
					t.Fatalf("Read returned unexpected error: %v", err)
				}
			}
			if got, want := fmt.Sprint(f.calls), fmt.Sprint(tc.wantCalls); got != want {
				t.Errorf("Wrong fetches: got %s, want %s", got, want)
			}
		})
	}
}

func TestReaderEOF(t *testing.T) {
	data := testData(testLength)
	r := NewReader(&sliceFetcher{data: data}, testLength, 10)
	if _, err := r.Seek(80, io.SeekStart); err != nil {
		t.Fatalf("Seek returned unexpected error: %v", err)
	}

	p := make([]byte, 30)
	n, err := r.Read(p)
	if err != io.EOF {
		t.Errorf("Wrong error reading across the end: got %v, want %v", err, io.EOF)
	}
	if got, want := p[:n], data[80:]; !bytes.Equal(got, want) {
		t.Errorf("Wrong data: got %v, want %v", got, want)
	}

	if n, err := r.Read(p); n != 0 || err != io.EOF {
		t.Errorf("Read at end: got (%d, %v), want (0, EOF)", n, err)
	}
	if n, err := r.Read(nil); n != 0 || err != nil {
		t.Errorf("Empty read: got (%d, %v), want (0, nil)", n, err)
	}
}

func TestReaderEmptyStream(t *testing.T) {
	f := &sliceFetcher{}
	r := NewReader(f, 0, 10)
	if n, err := r.Read(make([]byte, 4)); n != 0 || err != io.EOF {
		t.Errorf("Read: got (%d, %v), want (0, EOF)", n, err)
	}
	if len(f.calls) != 0 {
		t.Errorf("Unexpected fetches: %v", f.calls)
	}
}

func TestReaderFetchErrorKeepsPosition(t *testing.T) {
	data := testData(testLength)
	f := &sliceFetcher{data: data}
	r := NewReader(f, testLength, 10)

	p := make([]byte, 5)
	if _, err := r.Read(p); err != nil {
		t.Fatalf("Read returned unexpected error: %v", err)
	}

	failure := errors.New("unavailable")
	f.fail = failure
	big := make([]byte, 10)
	if n, err := r.Read(big); n != 0 || err != failure {
		t.Fatalf("Read with failing fetcher: got (%d, %v), want (0, %v)", n, err, failure)
	}
	if got, want := r.Buffered(), 5; got != want {
		t.Errorf("Wrong buffered count after failure: got %d, want %d", got, want)
	}
	if got, want := r.Stats().Fetches, 1; got != want {
		t.Errorf("Wrong fetch count after failure: got %d, want %d", got, want)
	}

	f.fail = nil
	if _, err := r.Read(big); err != nil {
		t.Fatalf("Read returned unexpected error: %v", err)
	}
	if got, want := big, data[5:15]; !bytes.Equal(got, want) {
		t.Errorf("Wrong data after recovery: got %v, want %v", got, want)
	}
}

func TestReaderSeekInside(t *testing.T) {
	data := testData(testLength)
	r := NewReader(&sliceFetcher{data: data}, testLength, 100)
	for seek := 0; seek < 99; seek++ {
		if _, err := r.Seek(int64(seek), io.SeekStart); err != nil {
			t.Fatalf("Seek(%d) returned unexpected error: %v", seek, err)
		}
		result := make([]byte, testLength-seek)
		if _, err := io.ReadFull(r, result); err != nil {
			t.Fatalf("ReadFull after Seek(%d) returned unexpected error: %v", seek, err)
		}
		if !bytes.Equal(result, data[seek:]) {
			t.Fatalf("Wrong data after Seek(%d): got %v, want %v", seek, result, data[seek:])
		}
	}
}

func TestReaderSeekNew(t *testing.T) {
	data := testData(testLength)
	for seek := 0; seek < 99; seek++ {
		f := &sliceFetcher{data: data}
		r := NewReader(f, testLength, 100)
		if _, err := r.Seek(int64(seek), io.SeekStart); err != nil {
			t.Fatalf("Seek(%d) returned unexpected error: %v", seek, err)
		}
		result := make([]byte, testLength-seek)
		if _, err := io.ReadFull(r, result); err != nil {
			t.Fatalf("ReadFull after Seek(%d) returned unexpected error: %v", seek, err)
		}
		if !bytes.Equal(result, data[seek:]) {
			t.Fatalf("Wrong data after Seek(%d): got %v, want %v", seek, result, data[seek:])
		}
		if got, want := fmt.Sprint(f.calls), fmt.Sprint([]RangeRequest{{int64(seek), testLength - seek}}); got != want {
			t.Errorf("Wrong fetches after Seek(%d): got %s, want %s", seek, got, want)
		}
	}
}

func TestReaderSeekSplit(t *testing.T) {
	data := testData(testLength)
	r := NewReader(&sliceFetcher{data: data}, testLength, 2)

	result := make([]byte, 20)
	if _, err := io.ReadFull(r, result); err != nil {
		t.Fatalf("ReadFull returned unexpected error: %v", err)
	}
	if !bytes.Equal(result, data[:20]) {
		t.Errorf("Wrong data: got %v, want %v", result, data[:20])
	}

	if _, err := r.Seek(10, io.SeekStart); err != nil {
		t.Fatalf("Seek returned unexpected error: %v", err)
	}
	if _, err := io.ReadFull(r, result); err != nil {
		t.Fatalf("ReadFull returned unexpected error: %v", err)
	}
	if !bytes.Equal(result, data[10:30]) {
		t.Errorf("Wrong data after seek: got %v, want %v", result, data[10:30])
	}
}

func TestSeek(t *testing.T) {
	testCases := []struct {
		name    string
		offset  int64
		whence  int
		want    int64
		wantErr error
	}{
		{"start", 0, io.SeekStart, 0, nil},
		{"start middle", 42, io.SeekStart, 42, nil},
		{"start at end", testLength, io.SeekStart, testLength, nil},
		{"start past end", testLength + 1, io.SeekStart, 0, ErrSeekRange},
		{"start negative", -1, io.SeekStart, 0, ErrSeekRange},
		{"current", 0, io.SeekCurrent, 10, nil},
		{"current backward", -5, io.SeekCurrent, 5, nil},
		{"current before start", -11, io.SeekCurrent, 0, ErrSeekRange},
		{"current overflow", math.MaxInt64, io.SeekCurrent, 0, ErrSeekRange},
		{"end", 0, io.SeekEnd, testLength, nil},
		{"end backward", -1, io.SeekEnd, testLength - 1, nil},
		{"end past end", 1, io.SeekEnd, 0, ErrSeekRange},
		{"end overflow", math.MaxInt64, io.SeekEnd, 0, ErrSeekRange},
		{"end most negative", math.MinInt64, io.SeekEnd, 0, ErrSeekRange},
		{"bad whence", 0, 3, 0, ErrWhence},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			f := &sliceFetcher{data: testData(testLength)}
			r := NewReader(f, testLength, 10)
			if _, err := r.Seek(10, io.SeekStart); err != nil {
				t.Fatalf("Seek returned unexpected error: %v", err)
			}

			got, err := r.Seek(tc.offset, tc.whence)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("Wrong error: got %v, want %v", err, tc.wantErr)
			}
			if err == nil {
				if got != tc.want {
					t.Errorf("Wrong offset: got %d, want %d", got, tc.want)
				}
				return
			}
			if pos, _ := r.Seek(0, io.SeekCurrent); pos != 10 {
				t.Errorf("Failed seek moved the position to %d", pos)
			}
			if len(f.calls) != 0 {
				t.Errorf("Seek fetched: %v", f.calls)
			}
		})
	}
}

func TestSeekDiscardsBuffer(t *testing.T) {
	data := testData(testLength)
	f := &sliceFetcher{data: data}
	r := NewReader(f, testLength, 50)

	p := make([]byte, 10)
	if _, err := r.Read(p); err != nil {
		t.Fatalf("Read returned unexpected error: %v", err)
	}
	for i := 0; i < 2; i++ {
		pos, err := r.Seek(0, io.SeekCurrent)
		if err != nil {
			t.Fatalf("Seek returned unexpected error: %v", err)
		}
		if got, want := pos, int64(10); got != want {
			t.Errorf("Wrong position: got %d, want %d", got, want)
		}
		if got := r.Buffered(); got != 0 {
			t.Errorf("Seek kept %d buffered bytes", got)
		}
	}
	if got, want := len(f.calls), 1; got != want {
		t.Errorf("Wrong fetch count: got %d, want %d", got, want)
	}

	if _, err := r.Read(p); err != nil {
		t.Fatalf("Read returned unexpected error: %v", err)
	}
	if !bytes.Equal(p, data[10:20]) {
		t.Errorf("Wrong data: got %v, want %v", p, data[10:20])
	}
	if got, want := f.calls[len(f.calls)-1], (RangeRequest{10, 50}); got != want {
		t.Errorf("Wrong refetch: got %v, want %v", got, want)
	}
}

func TestNewReaderBufferReusesStorage(t *testing.T) {
	buf := make([]byte, 0, 64)
	r := NewReaderBuffer(&sliceFetcher{data: testData(testLength)}, testLength, buf)
	if _, err := r.Read(make([]byte, 8)); err != nil {
		t.Fatalf("Read returned unexpected error: %v", err)
	}
	if got, want := r.Buffered(), 56; got != want {
		t.Errorf("Wrong buffered count: got %d, want %d", got, want)
	}
	if got, want := buf[:8], testData(8); !bytes.Equal(got, want) {
		t.Errorf("Buffer not reused: got %v, want %v", got, want)
	}
	if got, want := r.Len(), int64(testLength); got != want {
		t.Errorf("Wrong length: got %d, want %d", got, want)
	}
}

func TestRangeRequestString(t *testing.T) {
	if got, want := (RangeRequest{Start: 5, Length: 10}).String(), "[5-15)"; got != want {
		t.Errorf("Wrong string: got %q, want %q", got, want)
	}
}
