// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package lz77 implements an LZ77 sliding-window compressed data format.
//
// The format replaces repeated byte sequences with back-references into a
// bounded sliding window. A stream starts with a fixed 12-byte header that
// records the window and look-ahead sizes, followed by a sequence of tokens
// packed MSB-first:
//
//	Symbol:     0 ++ byte(8)
//	Phrase:     1 ++ offset(winBits) ++ length-code
//	Terminator: 1 ++ offset(winBits)=0 ++ length-code for 0
//
// Match lengths are transmitted with a static prefix code whose alphabet is
// derived from the window and look-ahead parameters (see lengthCode). The
// terminator is a phrase-shaped token with length zero and marks the end of
// the stream.
package lz77

import (
	"fmt"
	"math/bits"

	"github.com/dsnet/lz77/internal/errors"
)

// The wire header is byte-exact across implementations:
//
//	offset  0: magic "LZ77"
//	offset  4: version (high nibble major, low nibble minor)
//	offset  5: reserved, must be written as zero
//	offset  8: window size     (uint16, big-endian)
//	offset 10: look-ahead size (uint16, big-endian)
const (
	hdrMagic   = "LZ77"
	hdrVersion = 0x10
	hdrSize    = 12
)

// Limits on the window and look-ahead sizes. The look-ahead may never exceed
// the window.
const (
	MinWindowSize    = 4
	MaxWindowSize    = 1<<16 - 1
	MinLookaheadSize = 2

	DefaultWindowSize    = 4096
	DefaultLookaheadSize = 32
)

// defaultBufSize is the minimum size of the internal byte buffers and also
// the minimum step of the max(1024, size*1.1) reallocation rule.
const defaultBufSize = 1024

var errClosed = errorf(errors.Closed, "")

func errorf(c int, f string, v ...interface{}) error {
	return errors.Error{Code: c, Pkg: "lz77", Msg: fmt.Sprintf(f, v...)}
}

func panicf(c int, f string, v ...interface{}) {
	errors.Panic(errorf(c, f, v...))
}

// errWrap converts a lower-level errors.Error to be one from this package.
// The replaceCode passed in is used to replace the code for any errors with
// the Internal code.
func errWrap(err error, replaceCode int) error {
	if cerr, ok := err.(errors.Error); ok {
		if errors.IsInternal(cerr) {
			cerr.Code = replaceCode
		}
		cerr.Pkg = "lz77"
		err = cerr
	}
	return err
}

// params holds the stream parameters and the values derived from them that
// the compressor and decompressor must agree upon.
type params struct {
	window    int  // Maximum size of the sliding window
	lookahead int  // Maximum length of a match
	winBits   uint // Bits used to transmit a window offset
	minLen    int  // Shortest match length worth encoding as a phrase
	code      lengthCode
}

func (p *params) init(window, lookahead int) error {
	if window < MinWindowSize || window > MaxWindowSize {
		return errorf(errors.Invalid, "window size %d outside [%d, %d]", window, MinWindowSize, MaxWindowSize)
	}
	if lookahead < MinLookaheadSize || lookahead > window {
		return errorf(errors.Invalid, "look-ahead size %d outside [%d, %d]", lookahead, MinLookaheadSize, window)
	}
	p.window = window
	p.lookahead = lookahead
	p.winBits = uint(bits.Len(uint(window - 1)))

	// A run of n symbol tokens costs 9n bits, while a phrase token costs at
	// least 1+winBits+2 bits. Matches shorter than minLen are cheaper to
	// transmit as symbols. The length code additionally requires its minimum
	// value to be at least 2.
	p.minLen = (1+int(p.winBits)+2)/9 + 1
	if p.minLen < 2 {
		p.minLen = 2
	}
	p.code.Init(p.minLen, lookahead)
	return nil
}
