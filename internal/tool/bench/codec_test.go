// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package bench

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"testing"
)

// TestCodecs tests that the output of each registered encoder is a valid
// input for each registered decoder of the same format. This test runs in
// O(n^2) where n is the number of registered codecs.
func TestCodecs(t *testing.T) {
	for _, name := range CorpusNames {
		data := LoadCorpus(name, 1e5)
		t.Run(fmt.Sprintf("Corpus:%v", name), func(t *testing.T) { testFormats(t, data) })
	}
}

func testFormats(t *testing.T, data []byte) {
	for ft := range Encoders {
		if len(Decoders[ft]) == 0 {
			continue
		}
		t.Run(fmt.Sprintf("Format:%v", ft), func(t *testing.T) {
			for encName, enc := range Encoders[ft] {
				for decName, dec := range Decoders[ft] {
					t.Run(fmt.Sprintf("%s_to_%s", encName, decName), func(t *testing.T) {
						testRoundTrip(t, enc, dec, data)
					})
				}
			}
		})
	}
}

func testRoundTrip(t *testing.T, enc Encoder, dec Decoder, data []byte) {
	var buf bytes.Buffer
	zw := enc(&buf, 6)
	if _, err := io.Copy(zw, bytes.NewReader(data)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	zr := dec(bytes.NewReader(buf.Bytes()))
	out, err := ioutil.ReadAll(zr)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := zr.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, data) {
		t.Fatalf("output data mismatch: got %d bytes, want %d bytes", len(out), len(data))
	}
}
