// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77

import (
	"github.com/dsnet/lz77/internal/errors"
)

// Compress compresses src into a stream appended to dst[:0], reusing dst's
// capacity and growing it as needed. It returns the resulting buffer.
func Compress(dst, src []byte, conf *WriterConfig) (out []byte, err error) {
	defer errors.Recover(&err)
	prm, err := newParams(conf)
	if err != nil {
		return nil, err
	}
	var bw bitWriter
	bw.InitBytes(dst[:0], false)
	compressStream(&bw, &prm, src)
	return bw.Bytes(), nil
}

// CompressInto compresses src into dst and reports the number of bytes
// written. It fails with an OutOfMemory error if dst is too small.
func CompressInto(dst, src []byte, conf *WriterConfig) (n int, err error) {
	defer errors.Recover(&err)
	prm, err := newParams(conf)
	if err != nil {
		return 0, err
	}
	var bw bitWriter
	bw.InitBytes(dst[:0:len(dst)], true)
	compressStream(&bw, &prm, src)
	return len(bw.Bytes()), nil
}

// Decompress decompresses a whole stream into a buffer appended to dst[:0],
// reusing dst's capacity and growing it as needed. It returns the resulting
// buffer.
func Decompress(dst, src []byte) (out []byte, err error) {
	defer errors.Recover(&err)
	var win window
	decompressStream(&win, src, dst[:cap(dst)], false)
	return win.data[:win.end], nil
}

// DecompressInto decompresses a whole stream into dst and reports the number
// of bytes written. It fails with an OutOfMemory error if dst is too small.
func DecompressInto(dst, src []byte) (n int, err error) {
	defer errors.Recover(&err)
	var win window
	decompressStream(&win, src, dst[:len(dst)], true)
	return win.end, nil
}

func newParams(conf *WriterConfig) (prm params, err error) {
	window, lookahead := DefaultWindowSize, DefaultLookaheadSize
	if conf != nil {
		if conf.WindowSize != 0 {
			window = conf.WindowSize
		}
		if conf.LookaheadSize != 0 {
			lookahead = conf.LookaheadSize
		}
	}
	err = prm.init(window, lookahead)
	return prm, err
}

func compressStream(bw *bitWriter, prm *params, src []byte) {
	var win window
	win.initCompress(prm, src)
	writeStreamHeader(bw, prm)
	for win.end > win.head() {
		writeToken(bw, prm, win.nextToken())
	}
	writeTerminator(bw, prm)
	bw.Flush()
}

func decompressStream(win *window, src, dst []byte, fixed bool) {
	var br bitReader
	br.InitBytes(src)
	var prm params
	readStreamHeader(&br, &prm)
	win.initDecompress(&prm, dst, fixed)
	for {
		if br.ReadBits(1) == 0 {
			win.appendLiteral(byte(br.ReadBits(8)))
			continue
		}
		off := int(br.ReadBits(prm.winBits))
		n := prm.code.Decode(&br)
		if n == 0 {
			return
		}
		win.appendMatch(off, n)
	}
}
