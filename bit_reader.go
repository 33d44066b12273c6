// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77

import (
	"io"

	"github.com/dsnet/lz77/internal/errors"
)

// bitReader reads a stream of bits packed MSB-first: bit 0 of the first byte
// is the highest-order bit. It maintains a byte buffer with a bit cursor into
// it. Peeks never consume; refills compact the consumed whole bytes to the
// front of the buffer before reading from the underlying reader.
type bitReader struct {
	rd     io.Reader // Underlying reader; nil when draining a fixed buffer
	buf    []byte    // Buffered bytes; buf[pos:] not yet fully consumed
	pos    int       // Index of the next unconsumed byte
	nbit   uint      // Bits of buf[pos] already consumed (0..7)
	offset int64     // Total number of bits consumed
	rdCnt  int64     // Total number of bytes read from rd
	eof    bool      // The underlying reader is exhausted
}

func (br *bitReader) Init(r io.Reader) {
	buf := br.buf
	if cap(buf) < defaultBufSize {
		buf = make([]byte, 0, defaultBufSize)
	}
	*br = bitReader{rd: r, buf: buf[:0]}
}

// InitBytes sets up the reader to drain a fixed in-memory buffer.
func (br *bitReader) InitBytes(buf []byte) {
	*br = bitReader{buf: buf, eof: true}
}

// BitsRead reports the total number of bits consumed from the stream.
func (br *bitReader) BitsRead() int64 { return br.offset }

func (br *bitReader) avail() uint {
	return 8*uint(len(br.buf)-br.pos) - br.nbit
}

// fill obtains more bytes from the underlying reader, first compacting the
// consumed prefix of the buffer. It panics on read errors.
func (br *bitReader) fill() {
	if br.pos > 0 {
		n := copy(br.buf, br.buf[br.pos:])
		br.buf = br.buf[:n]
		br.pos = 0
	}
	for i := 0; len(br.buf) < cap(br.buf); i++ {
		n, err := br.rd.Read(br.buf[len(br.buf):cap(br.buf)])
		br.buf = br.buf[:len(br.buf)+n]
		br.rdCnt += int64(n)
		if err == io.EOF {
			br.eof = true
			return
		}
		if err != nil {
			errors.Panic(err)
		}
		if n > 0 {
			return
		}
		if i >= 100 {
			errors.Panic(io.ErrNoProgress)
		}
	}
}

// Peek16 returns up to the next 16 bits without consuming them. The bits are
// left-aligned in the returned value: the next bit of the stream is bit 15.
// Fewer than 16 bits are returned only at the end of the stream.
func (br *bitReader) Peek16() (v uint, nb uint) {
	for br.avail() < 16 && !br.eof {
		br.fill()
	}
	nb = br.avail()
	if nb > 16 {
		nb = 16
	}
	var x uint32
	for i := 0; i < 3; i++ {
		x <<= 8
		if br.pos+i < len(br.buf) {
			x |= uint32(br.buf[br.pos+i])
		}
	}
	x <<= br.nbit
	return uint(uint16(x >> 8)), nb
}

// Consume advances past nb bits, clipped to the number available.
func (br *bitReader) Consume(nb uint) {
	if a := br.avail(); nb > a {
		nb = a
	}
	br.offset += int64(nb)
	br.nbit += nb
	br.pos += int(br.nbit / 8)
	br.nbit %= 8
}

// ReadBits reads the next nb bits, MSB-first, for nb up to 16.
// It panics with io.ErrUnexpectedEOF if the stream ends early.
func (br *bitReader) ReadBits(nb uint) uint {
	v, n := br.Peek16()
	if n < nb {
		errors.Panic(io.ErrUnexpectedEOF)
	}
	br.Consume(nb)
	return v >> (16 - nb)
}
