// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77

import (
	"github.com/dsnet/lz77/internal/errors"
)

// token is the unit of the compressed stream: either a single literal byte
// (n == 0) or a back-reference phrase of n bytes starting offset bytes into
// the window.
type token struct {
	off int
	n   int
	lit byte
}

// window is the uncompressed side of a stream: a sliding dictionary of up to
// prm.window bytes directly followed by a look-ahead region, both views into
// one backing buffer. During compression it scans the input into tokens;
// during decompression it reconstructs the output from them.
//
// Invariants: 0 <= start, start+wsize <= end <= len(data), wsize <= window.
// The look-ahead head is the byte at start+wsize.
type window struct {
	prm       *params
	data      []byte // Backing buffer; data[:end] holds valid bytes
	start     int    // Offset of the first window byte in data
	wsize     int    // Current window size
	end       int    // Offset past the last valid byte
	fixed     bool   // Decompression: data may not grow
	processed int64  // Bytes consumed (compression) or produced (decompression)
	tree      searchTree
}

// initCompress sets up tokenization over a complete in-memory input.
func (w *window) initCompress(prm *params, src []byte) {
	tree := w.tree
	*w = window{prm: prm, data: src, end: len(src), tree: tree}
	w.tree.Init(prm.window)
}

// initCompressStream sets up tokenization over input arriving through push.
func (w *window) initCompressStream(prm *params) {
	n := 2 * (prm.window + prm.lookahead)
	if n < defaultBufSize {
		n = defaultBufSize
	}
	buf := resizeBytes(w.data, n)
	tree := w.tree
	*w = window{prm: prm, data: buf, tree: tree}
	w.tree.Init(prm.window)
}

// initDecompress sets up reconstruction into dst. A fixed destination fails
// with OutOfMemory once full instead of growing.
func (w *window) initDecompress(prm *params, dst []byte, fixed bool) {
	tree := w.tree
	*w = window{prm: prm, data: dst, fixed: fixed, tree: tree}
}

// head returns the buffer offset of the look-ahead head.
func (w *window) head() int { return w.start + w.wsize }

// push copies as much of p as currently fits into the buffer, compacting the
// bytes that have slid out of the window first when needed, and reports how
// much of p was taken.
func (w *window) push(p []byte) int {
	if w.end == len(w.data) && w.start > 0 {
		copy(w.data, w.data[w.start:w.end])
		w.tree.rotate(w.start)
		w.end -= w.start
		w.start = 0
	}
	n := copy(w.data[w.end:], p)
	w.end += n
	return n
}

// nextToken scans the token at the look-ahead head and advances past the
// bytes it covers. At least one look-ahead byte must remain.
func (w *window) nextToken() token {
	pos := w.head()
	length, offset := w.tree.findInsert(w, pos)
	if length == 0 || !w.prm.code.CanEncode(length) {
		t := token{lit: w.data[pos]}
		w.advance(1)
		return t
	}
	t := token{off: offset, n: length}
	w.advance(length)
	return t
}

// advance slides the window over cnt consumed bytes. Before each step it
// evicts the slot that the next head position must occupy, and it keeps the
// tree populated with every intermediate position so that later searches see
// the full window.
func (w *window) advance(cnt int) {
	wnd := w.prm.window
	for i := 0; i < cnt; i++ {
		pos := w.head()
		w.tree.remove(int32((pos + 1) % wnd))
		if w.wsize < wnd {
			w.wsize++
		} else {
			w.start++
		}
		if i < cnt-1 {
			w.tree.findInsert(w, pos+1)
		}
	}
	w.processed += int64(cnt)
}

// appendLiteral reconstructs a symbol token.
func (w *window) appendLiteral(c byte) {
	w.ensure(1)
	w.data[w.end] = c
	w.end++
	w.slide(1)
}

// appendMatch reconstructs a phrase token by copying n bytes starting off
// bytes into the window. A match may run into the bytes it is producing;
// that overlap is the run-length corner and is copied byte-by-byte.
func (w *window) appendMatch(off, n int) {
	if off >= w.wsize {
		panicf(errors.Corrupted, "phrase offset %d outside window of size %d", off, w.wsize)
	}
	w.ensure(n)
	src := w.start + off
	if off+n > w.wsize {
		for i := 0; i < n; i++ {
			w.data[w.end+i] = w.data[src+i]
		}
	} else {
		copy(w.data[w.end:w.end+n], w.data[src:src+n])
	}
	w.end += n
	w.slide(n)
}

func (w *window) slide(n int) {
	w.wsize += n
	if w.wsize > w.prm.window {
		w.wsize = w.prm.window
	}
	w.start = w.end - w.wsize
	w.processed += int64(n)
}

// ensure makes room for n more bytes, growing the buffer under the
// max(1024, size*1.1) reallocation rule unless the buffer is fixed.
func (w *window) ensure(n int) {
	if w.end+n <= len(w.data) {
		return
	}
	if w.fixed {
		panicf(errors.OutOfMemory, "output buffer is full")
	}
	size := len(w.data) + len(w.data)/10
	if size < w.end+n {
		size = w.end + n
	}
	if size < defaultBufSize {
		size = defaultBufSize
	}
	data := make([]byte, size)
	copy(data, w.data[:w.end])
	w.data = data
}

func resizeBytes(s []byte, n int) []byte {
	if cap(s) < n {
		return make([]byte, n)
	}
	return s[:n]
}
