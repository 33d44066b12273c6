// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77

// searchTree finds the longest match for the look-ahead head among the
// window positions. It is an unbalanced binary search tree stored as an
// arena of parent/smaller/larger links. Slot k is bound to the window
// position p with p == k (mod window); the extra slot at index window is a
// sentinel whose larger child is the real root.
//
// Keys are the look-ahead-length byte sequences starting at each position,
// compared lexicographically. A position whose whole key matches a resident
// slot replaces that slot in place, so every distinct key appears at most
// once. When the backing buffer is compacted, the slot binding rotates and
// the arena must be rotated along with it.
const noNode = -1

type searchTree struct {
	parent  []int32
	smaller []int32
	larger  []int32
	scratch []int32
}

func (t *searchTree) Init(window int) {
	n := window + 1
	t.parent = resizeInt32(t.parent, n)
	t.smaller = resizeInt32(t.smaller, n)
	t.larger = resizeInt32(t.larger, n)
	for i := range t.parent {
		t.parent[i] = noNode
		t.smaller[i] = noNode
		t.larger[i] = noNode
	}
}

// findInsert searches the tree for the longest match of the key starting at
// pos and links pos's slot into the tree in the same traversal. It reports
// the best match length found and its offset from the window start.
func (t *searchTree) findInsert(w *window, pos int) (length, offset int) {
	wnd := w.prm.window
	sentinel := int32(wnd)
	i := int32(pos % wnd)

	key := w.data[pos:w.end]
	if len(key) > w.prm.lookahead {
		key = key[:w.prm.lookahead]
	}

	node := t.larger[sentinel]
	if node == noNode {
		t.attach(i, sentinel, t.larger)
		return 0, 0
	}
	for {
		if node == i {
			return length, offset
		}
		np := pos - (int(i-node)+wnd)%wnd

		n := 0
		for n < len(key) && key[n] == w.data[np+n] {
			n++
		}
		if n > length {
			length, offset = n, np-w.start
		}
		if n == len(key) {
			// The whole key matches: merge by replacing the resident slot.
			t.replace(node, i)
			return length, offset
		}

		child := t.smaller
		if key[n] > w.data[np+n] {
			child = t.larger
		}
		next := child[node]
		if next == noNode {
			// Unlink i before attaching it; the removal may splice another
			// slot into the chosen child, so check it again.
			t.remove(i)
			if next = child[node]; next == noNode {
				t.attach(i, node, child)
				return length, offset
			}
		}
		node = next
	}
}

func (t *searchTree) attach(i, p int32, child []int32) {
	child[p] = i
	t.parent[i] = p
	t.smaller[i] = noNode
	t.larger[i] = noNode
}

// replace splices slot j into the tree position currently held by slot k.
func (t *searchTree) replace(k, j int32) {
	p := t.parent[k]
	t.parent[j] = p
	t.smaller[j] = t.smaller[k]
	t.larger[j] = t.larger[k]
	if c := t.smaller[j]; c != noNode {
		t.parent[c] = j
	}
	if c := t.larger[j]; c != noNode {
		t.parent[c] = j
	}
	if t.smaller[p] == k {
		t.smaller[p] = j
	} else {
		t.larger[p] = j
	}
	t.clear(k)
}

// remove unlinks slot i if it is in the tree.
func (t *searchTree) remove(i int32) {
	if t.parent[i] == noNode {
		return
	}
	switch {
	case t.smaller[i] == noNode:
		t.splice(i, t.larger[i])
	case t.larger[i] == noNode:
		t.splice(i, t.smaller[i])
	default:
		// Two children: lift the in-order predecessor into i's place.
		q := t.smaller[i]
		for t.larger[q] != noNode {
			q = t.larger[q]
		}
		t.splice(q, t.smaller[q])
		t.replace(i, q)
	}
}

// splice contracts slot i out of the tree, attaching its only child (which
// may be noNode) to its parent.
func (t *searchTree) splice(i, child int32) {
	p := t.parent[i]
	if child != noNode {
		t.parent[child] = p
	}
	if t.smaller[p] == i {
		t.smaller[p] = child
	} else {
		t.larger[p] = child
	}
	t.clear(i)
}

func (t *searchTree) clear(i int32) {
	t.parent[i] = noNode
	t.smaller[i] = noNode
	t.larger[i] = noNode
}

// rotate relabels every slot k to (k-x) mod window after the backing buffer
// was shifted left by x bytes, preserving the tree structure.
func (t *searchTree) rotate(x int) {
	wnd := len(t.parent) - 1
	x %= wnd
	if x == 0 {
		return
	}
	t.scratch = resizeInt32(t.scratch, wnd+1)
	adjust := func(v int32) int32 {
		if v == noNode || v == int32(wnd) {
			return v
		}
		return int32((int(v) - x + wnd) % wnd)
	}
	for _, links := range [][]int32{t.parent, t.smaller, t.larger} {
		for k := 0; k < wnd; k++ {
			t.scratch[(k-x+wnd)%wnd] = adjust(links[k])
		}
		t.scratch[wnd] = adjust(links[wnd])
		copy(links, t.scratch)
	}
}

func resizeInt32(s []int32, n int) []int32 {
	if cap(s) < n {
		return make([]int32, n)
	}
	return s[:n]
}
