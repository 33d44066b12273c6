// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77

import (
	"io"

	"github.com/dsnet/lz77/internal/errors"
)

// bitWriter writes a stream of bits packed MSB-first. Pending bits accumulate
// in a 64-bit cache; completed bytes move into a byte buffer that is either
// owned memory (growable or fixed) or flushed to an underlying writer
// whenever it fills up.
type bitWriter struct {
	wr     io.Writer // Underlying writer; nil when writing to memory
	buf    []byte    // Completed bytes
	cache  uint64    // Pending bits, right-aligned
	cnt    uint      // Number of pending bits in cache
	offset int64     // Total number of bits written, excluding padding
	wrCnt  int64     // Total number of bytes flushed to wr
	fixed  bool      // Memory buffer may not grow
}

func (bw *bitWriter) Init(w io.Writer) {
	buf := bw.buf
	if cap(buf) < defaultBufSize {
		buf = make([]byte, 0, defaultBufSize)
	}
	*bw = bitWriter{wr: w, buf: buf[:0]}
}

// InitBytes sets up the writer to append to an in-memory buffer. The buffer
// must have a length of zero; its capacity is the limit when fixed.
func (bw *bitWriter) InitBytes(buf []byte, fixed bool) {
	*bw = bitWriter{buf: buf, fixed: fixed}
}

// BitsWritten reports the total number of bits written, excluding padding.
func (bw *bitWriter) BitsWritten() int64 { return bw.offset }

// Bytes returns the memory buffer owned by the writer.
func (bw *bitWriter) Bytes() []byte { return bw.buf }

// WriteBits appends the low nb bits of v to the stream, MSB-first.
func (bw *bitWriter) WriteBits(v uint64, nb uint) {
	if nb > 32 {
		bw.WriteBits(v>>32, nb-32)
		v &= 1<<32 - 1
		nb = 32
	}
	bw.flushCache()
	bw.cache = bw.cache<<nb | v&(1<<nb-1)
	bw.cnt += nb
	bw.offset += int64(nb)
	bw.flushCache()
}

// Flush pads any pending bits up to a byte boundary with zeros and, for
// descriptor-backed writers, writes out the byte buffer.
func (bw *bitWriter) Flush() {
	if bw.cnt > 0 {
		bw.writeByte(byte(bw.cache << (8 - bw.cnt)))
		bw.cache, bw.cnt = 0, 0
	}
	if bw.wr != nil {
		bw.flushBuf()
	}
}

func (bw *bitWriter) flushCache() {
	for bw.cnt >= 8 {
		bw.writeByte(byte(bw.cache >> (bw.cnt - 8)))
		bw.cnt -= 8
	}
	bw.cache &= 1<<bw.cnt - 1
}

func (bw *bitWriter) writeByte(c byte) {
	if len(bw.buf) == cap(bw.buf) {
		switch {
		case bw.wr != nil:
			bw.flushBuf()
		case bw.fixed:
			panicf(errors.OutOfMemory, "output buffer is full")
		default:
			bw.grow(1)
		}
	}
	bw.buf = append(bw.buf, c)
}

// grow reallocates the memory buffer under the max(1024, size*1.1) rule.
func (bw *bitWriter) grow(n int) {
	size := cap(bw.buf) + cap(bw.buf)/10
	if size < cap(bw.buf)+n {
		size = cap(bw.buf) + n
	}
	if size < defaultBufSize {
		size = defaultBufSize
	}
	buf := make([]byte, len(bw.buf), size)
	copy(buf, bw.buf)
	bw.buf = buf
}

func (bw *bitWriter) flushBuf() {
	if len(bw.buf) == 0 {
		return
	}
	n, err := bw.wr.Write(bw.buf)
	bw.wrCnt += int64(n)
	if err != nil {
		errors.Panic(err)
	}
	bw.buf = bw.buf[:0]
}
