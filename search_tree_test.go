// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/dsnet/lz77/internal/testutil"
	"github.com/stretchr/testify/assert"
)

// checkTree verifies the structural invariants of the search tree: link
// symmetry, single linkage, and lexicographic ordering of the keys currently
// bound to the slots.
func checkTree(t *testing.T, w *window) {
	tree := &w.tree
	wnd := w.prm.window
	sentinel := int32(wnd)
	pos := w.head()

	keyOf := func(node int32) []byte {
		np := pos - (int(int32(pos%wnd)-node)+wnd)%wnd
		key := w.data[np:w.end]
		if len(key) > w.prm.lookahead {
			key = key[:w.prm.lookahead]
		}
		return key
	}

	// Ordering can only be asserted while every key is still full-length:
	// near the end of the stream, merges of shortened keys may leave stale
	// longer keys on either side.
	fullKeys := w.end-w.head() >= w.prm.lookahead

	var last []byte
	var haveLast bool
	var walk func(node int32)
	var cnt int
	walk = func(node int32) {
		if node == noNode {
			return
		}
		cnt++
		if cnt > wnd {
			t.Fatal("tree contains a cycle")
		}
		if c := tree.smaller[node]; c != noNode && tree.parent[c] != node {
			t.Fatalf("slot %d: broken parent link to smaller child %d", node, c)
		}
		if c := tree.larger[node]; c != noNode && tree.parent[c] != node {
			t.Fatalf("slot %d: broken parent link to larger child %d", node, c)
		}
		walk(tree.smaller[node])
		key := keyOf(node)
		if fullKeys && haveLast && bytes.Compare(last, key) >= 0 {
			t.Fatalf("slot %d: keys out of order: %q >= %q", node, last, key)
		}
		last, haveLast = key, true
		walk(tree.larger[node])
	}
	walk(tree.larger[sentinel])

	// Every linked slot must be reachable from the root.
	linked := 0
	for i := 0; i < wnd; i++ {
		if tree.parent[i] != noNode {
			linked++
		}
	}
	if linked != cnt {
		t.Fatalf("linked slot count mismatch: reachable %d, linked %d", cnt, linked)
	}
}

func TestSearchTreeInvariants(t *testing.T) {
	rand := testutil.NewRand(0)
	data := make([]byte, 200)
	for i := range data {
		data[i] = 'a' + byte(rand.Intn(3))
	}

	var prm params
	assert.Nil(t, prm.init(16, 4))
	var w window
	w.initCompress(&prm, data)

	for w.end > w.head() {
		tok := w.nextToken()
		if tok.n > 0 {
			assert.True(t, tok.off >= 0 && tok.off < prm.window)
			assert.True(t, tok.n >= prm.minLen && tok.n <= prm.lookahead)
		}
		checkTree(t, &w)
	}
	assert.Equal(t, int64(len(data)), w.processed)
}

func TestSearchTreeDuplicates(t *testing.T) {
	// Identical keys must merge: after tokenizing a run of a repeated
	// pattern, the number of linked slots stays below the number of
	// processed positions.
	data := bytes.Repeat([]byte("abcd"), 16)

	var prm params
	assert.Nil(t, prm.init(32, 4))
	var w window
	w.initCompress(&prm, data)

	for w.end > w.head() {
		w.nextToken()
		checkTree(t, &w)
	}

	linked := 0
	for i := 0; i < prm.window; i++ {
		if w.tree.parent[i] != noNode {
			linked++
		}
	}
	// Only 4 distinct keys exist near the stream tail; far fewer than the
	// 32 positions the window covers.
	assert.True(t, linked <= 8, fmt.Sprintf("linked slots: %d", linked))
}

func TestSearchTreeRotate(t *testing.T) {
	rand := testutil.NewRand(1)
	data := make([]byte, 64)
	for i := range data {
		data[i] = 'a' + byte(rand.Intn(4))
	}

	var prm params
	assert.Nil(t, prm.init(8, 4))
	var w window
	w.initCompress(&prm, data)
	for i := 0; i < 24 && w.end > w.head(); i++ {
		w.nextToken()
	}

	// Rotating by the window size must be an identity.
	parent := append([]int32(nil), w.tree.parent...)
	smaller := append([]int32(nil), w.tree.smaller...)
	larger := append([]int32(nil), w.tree.larger...)
	w.tree.rotate(prm.window)
	assert.Equal(t, parent, w.tree.parent)
	assert.Equal(t, smaller, w.tree.smaller)
	assert.Equal(t, larger, w.tree.larger)

	// Rotating by x relabels slot k to (k-x) mod window.
	const x = 3
	adjust := func(v int32) int32 {
		if v == noNode || v == int32(prm.window) {
			return v
		}
		return int32((int(v) - x + prm.window) % prm.window)
	}
	w.tree.rotate(x)
	for k := 0; k < prm.window; k++ {
		kk := (k - x + prm.window) % prm.window
		assert.Equal(t, adjust(parent[k]), w.tree.parent[kk])
		assert.Equal(t, adjust(smaller[k]), w.tree.smaller[kk])
		assert.Equal(t, adjust(larger[k]), w.tree.larger[kk])
	}
	assert.Equal(t, adjust(larger[prm.window]), w.tree.larger[prm.window])
}
