// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// +build !no_ds_lib

package bench

import (
	"io"

	"github.com/dsnet/lz77"
)

// The compression level maps to the window size: level 1 uses a 128-byte
// window and each level doubles it, saturating at the format maximum.
func windowSize(lvl int) int {
	if lvl <= 0 {
		lvl = 6
	}
	n := 64 << uint(lvl)
	if n > lz77.MaxWindowSize {
		n = lz77.MaxWindowSize
	}
	return n
}

func init() {
	RegisterEncoder(FormatLZ77, "ds",
		func(w io.Writer, lvl int) io.WriteCloser {
			zw, err := lz77.NewWriter(w, &lz77.WriterConfig{
				WindowSize:    windowSize(lvl),
				LookaheadSize: lz77.DefaultLookaheadSize,
			})
			if err != nil {
				panic(err)
			}
			return zw
		})
	RegisterDecoder(FormatLZ77, "ds",
		func(r io.Reader) io.ReadCloser {
			zr, err := lz77.NewReader(r, nil)
			if err != nil {
				panic(err)
			}
			return zr
		})
}
