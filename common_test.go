// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77

import (
	"testing"

	"github.com/dsnet/lz77/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestParams(t *testing.T) {
	vectors := []struct {
		window, lookahead int
		winBits           uint
		minLen            int
		diffBits          uint
		fail              bool
	}{
		{window: 4, lookahead: 2, winBits: 2, minLen: 2, diffBits: 0},
		{window: 4, lookahead: 4, winBits: 2, minLen: 2, diffBits: 0},
		{window: 8, lookahead: 4, winBits: 3, minLen: 2, diffBits: 0},
		{window: 256, lookahead: 16, winBits: 8, minLen: 2, diffBits: 4},
		{window: 512, lookahead: 32, winBits: 9, minLen: 2, diffBits: 5},
		{window: 4096, lookahead: 32, winBits: 12, minLen: 2, diffBits: 5},
		{window: 65535, lookahead: 65535, winBits: 16, minLen: 3, diffBits: 16},
		{window: 65535, lookahead: 300, winBits: 16, minLen: 3, diffBits: 9},

		{window: 3, lookahead: 2, fail: true},
		{window: 65536, lookahead: 32, fail: true},
		{window: 16, lookahead: 1, fail: true},
		{window: 16, lookahead: 17, fail: true},
		{window: -1, lookahead: 2, fail: true},
	}

	for i, v := range vectors {
		var prm params
		err := prm.init(v.window, v.lookahead)
		if v.fail {
			assert.True(t, errors.IsInvalid(err), "test %d", i)
			continue
		}
		assert.Nil(t, err, "test %d", i)
		assert.Equal(t, v.winBits, prm.winBits, "test %d", i)
		assert.Equal(t, v.minLen, prm.minLen, "test %d", i)
		assert.Equal(t, v.diffBits, prm.code.diffBits, "test %d", i)
	}
}
