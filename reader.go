// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77

import (
	"io"

	"github.com/dsnet/lz77/internal/errors"
)

type Reader struct {
	InputOffset  int64 // Total number of bytes read from underlying io.Reader
	OutputOffset int64 // Total number of bytes emitted from Read

	br    bitReader
	win   window
	prm   params
	rdPos int  // Offset into win.data of the next byte to emit
	rdHdr bool // Have we read the stream header?
	done  bool // Have we seen the terminator token?
	err   error
}

type ReaderConfig struct {
	_ struct{} // Blank field to prevent unkeyed struct literals
}

func NewReader(r io.Reader, conf *ReaderConfig) (*Reader, error) {
	zr := new(Reader)
	zr.Reset(r)
	return zr, nil
}

func (zr *Reader) Reset(r io.Reader) {
	*zr = Reader{
		br:  zr.br,
		win: window{data: zr.win.data, tree: zr.win.tree},
	}
	zr.br.Init(r)
	return
}

// BitsRead reports the number of bits of the compressed stream consumed so
// far, excluding byte-alignment padding.
func (zr *Reader) BitsRead() int64 { return zr.br.BitsRead() }

func (zr *Reader) Read(buf []byte) (int, error) {
	for {
		// Serve any bytes already reconstructed.
		if zr.rdPos < zr.win.end {
			n := copy(buf, zr.win.data[zr.rdPos:zr.win.end])
			zr.rdPos += n
			zr.OutputOffset += int64(n)
			return n, nil
		}
		if zr.err != nil {
			return 0, zr.err
		}
		if len(buf) == 0 {
			return 0, nil
		}
		if zr.done {
			zr.err = io.EOF
			return 0, zr.err
		}

		// Reconstruct the next chunk.
		func() {
			defer errors.Recover(&zr.err)
			if !zr.rdHdr {
				readStreamHeader(&zr.br, &zr.prm)
				n := zr.prm.window + 2*zr.prm.lookahead
				if n < defaultBufSize {
					n = defaultBufSize
				}
				zr.win.initDecompress(&zr.prm, resizeBytes(zr.win.data, n), false)
				zr.rdHdr = true
			}
			zr.compact()
			zr.decodeTokens()
		}()
		zr.InputOffset = zr.br.rdCnt
		if zr.err != nil {
			zr.err = errWrap(zr.err, errors.Corrupted)
			return 0, zr.err
		}
	}
}

func (zr *Reader) Close() error {
	if zr.err == io.EOF || zr.err == errClosed {
		zr.rdPos = zr.win.end // Make sure future reads fail
		zr.err = errClosed
		return nil
	}
	return zr.err // Return the persistent error
}

// compact drops the emitted bytes that are no longer part of the window.
func (zr *Reader) compact() {
	drop := zr.rdPos
	if drop > zr.win.start {
		drop = zr.win.start
	}
	if drop == 0 {
		return
	}
	copy(zr.win.data, zr.win.data[drop:zr.win.end])
	zr.win.start -= drop
	zr.win.end -= drop
	zr.rdPos -= drop
}

// decodeTokens reconstructs tokens until a chunk of output is available or
// the terminator is seen.
func (zr *Reader) decodeTokens() {
	for !zr.done && zr.win.end-zr.rdPos < defaultBufSize {
		if zr.br.ReadBits(1) == 0 {
			zr.win.appendLiteral(byte(zr.br.ReadBits(8)))
			continue
		}
		off := int(zr.br.ReadBits(zr.prm.winBits))
		n := zr.prm.code.Decode(&zr.br)
		if n == 0 {
			zr.done = true
			return
		}
		zr.win.appendMatch(off, n)
	}
}

func readStreamHeader(br *bitReader, prm *params) {
	var hdr [hdrSize]byte
	for i := range hdr {
		hdr[i] = byte(br.ReadBits(8))
	}
	if string(hdr[:4]) != hdrMagic {
		panicf(errors.Corrupted, "invalid stream magic")
	}
	if hdr[4] != hdrVersion {
		panicf(errors.Corrupted, "unsupported version: %#02x", hdr[4])
	}
	window := int(hdr[8])<<8 | int(hdr[9])
	lookahead := int(hdr[10])<<8 | int(hdr[11])
	if window < MinWindowSize || lookahead < MinLookaheadSize || lookahead > window {
		panicf(errors.Corrupted, "invalid stream parameters: %d, %d", window, lookahead)
	}
	if err := prm.init(window, lookahead); err != nil {
		errors.Panic(err)
	}
}
