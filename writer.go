// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77

import (
	"io"

	"github.com/dsnet/lz77/internal/errors"
)

type Writer struct {
	InputOffset  int64 // Total number of bytes issued to Write
	OutputOffset int64 // Total number of bytes written to underlying io.Writer

	bw    bitWriter
	win   window
	prm   params
	wrHdr bool
	err   error
}

type WriterConfig struct {
	// WindowSize is the maximum size of the sliding window in bytes.
	// It must be in [MinWindowSize, MaxWindowSize].
	// If zero, DefaultWindowSize is used.
	WindowSize int

	// LookaheadSize is the maximum match length in bytes.
	// It must be in [MinLookaheadSize, WindowSize].
	// If zero, DefaultLookaheadSize is used.
	LookaheadSize int

	_ struct{} // Blank field to prevent unkeyed struct literals
}

func NewWriter(w io.Writer, conf *WriterConfig) (*Writer, error) {
	prm, err := newParams(conf)
	if err != nil {
		return nil, err
	}
	zw := new(Writer)
	zw.prm = prm
	zw.Reset(w)
	return zw, nil
}

func (zw *Writer) Reset(w io.Writer) {
	*zw = Writer{
		bw:  zw.bw,
		win: zw.win,
		prm: zw.prm,
	}
	zw.bw.Init(w)
	zw.win.initCompressStream(&zw.prm)
	return
}

// BitsWritten reports the number of bits of the compressed stream produced
// so far, excluding byte-alignment padding.
func (zw *Writer) BitsWritten() int64 { return zw.bw.BitsWritten() }

func (zw *Writer) Write(buf []byte) (int, error) {
	if zw.err != nil {
		return 0, zw.err
	}

	var cnt int
	func() {
		defer errors.Recover(&zw.err)
		if !zw.wrHdr {
			writeStreamHeader(&zw.bw, &zw.prm)
			zw.wrHdr = true
		}
		for len(buf) > 0 {
			n := zw.win.push(buf)
			buf = buf[n:]
			cnt += n

			// Tokenize only while a full look-ahead remains buffered beyond
			// every position the token scan may link into the tree.
			for zw.win.end-zw.win.head() >= 2*zw.prm.lookahead {
				writeToken(&zw.bw, &zw.prm, zw.win.nextToken())
			}
		}
	}()
	zw.InputOffset += int64(cnt)
	zw.OutputOffset = zw.bw.wrCnt
	if zw.err != nil {
		return cnt, zw.err
	}
	return cnt, nil
}

func (zw *Writer) Close() error {
	if zw.err == errClosed {
		return nil
	}
	if zw.err != nil {
		return zw.err
	}

	func() {
		defer errors.Recover(&zw.err)
		if !zw.wrHdr {
			writeStreamHeader(&zw.bw, &zw.prm)
			zw.wrHdr = true
		}
		// Drain the remaining look-ahead now that no more input will arrive.
		for zw.win.end > zw.win.head() {
			writeToken(&zw.bw, &zw.prm, zw.win.nextToken())
		}
		writeTerminator(&zw.bw, &zw.prm)
		zw.bw.Flush()
	}()
	zw.OutputOffset = zw.bw.wrCnt
	if zw.err != nil {
		return zw.err
	}
	zw.err = errClosed
	return nil
}

func writeStreamHeader(bw *bitWriter, prm *params) {
	var hdr [hdrSize]byte
	copy(hdr[:4], hdrMagic)
	hdr[4] = hdrVersion
	hdr[8] = byte(prm.window >> 8)
	hdr[9] = byte(prm.window)
	hdr[10] = byte(prm.lookahead >> 8)
	hdr[11] = byte(prm.lookahead)
	for _, c := range hdr {
		bw.WriteBits(uint64(c), 8)
	}
}

func writeToken(bw *bitWriter, prm *params, t token) {
	if t.n == 0 {
		bw.WriteBits(0, 1)
		bw.WriteBits(uint64(t.lit), 8)
		return
	}
	bw.WriteBits(1, 1)
	bw.WriteBits(uint64(t.off), prm.winBits)
	code, nbits := prm.code.Encode(t.n)
	bw.WriteBits(uint64(code), nbits)
}

// writeTerminator emits the phrase-shaped token with length zero that marks
// the end of the stream.
func writeTerminator(bw *bitWriter, prm *params) {
	bw.WriteBits(1, 1)
	bw.WriteBits(0, prm.winBits)
	code, nbits := prm.code.Encode(0)
	bw.WriteBits(uint64(code), nbits)
}
