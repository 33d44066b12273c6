// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

// Package testutil is a collection of testing helper methods.
package testutil

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"encoding/hex"
)

// MustDecodeHex must decode a hexadecimal string or else panics.
func MustDecodeHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(err)
	}
	return b
}

// MustDecodeBitGen must decode a BitGen formatted string or else panics.
func MustDecodeBitGen(s string) []byte {
	b, err := DecodeBitGen(s)
	if err != nil {
		panic(err)
	}
	return b
}

// Rand is a deterministic pseudo-random source whose output is stable across
// Go releases, unlike math/rand, so golden tests and synthesized corpora
// never drift between toolchains. It runs AES in counter mode over a key
// derived from the seed.
type Rand struct {
	blk cipher.Block
	ctr uint64
	buf [aes.BlockSize]byte
	pos int // Index of the next unconsumed byte in buf
}

func NewRand(seed int) *Rand {
	var key [aes.BlockSize]byte
	binary.BigEndian.PutUint64(key[:8], uint64(seed))
	blk, _ := aes.NewCipher(key[:])
	return &Rand{blk: blk, pos: aes.BlockSize}
}

// refill encrypts the next counter block into the output buffer.
func (r *Rand) refill() {
	var ctr [aes.BlockSize]byte
	binary.BigEndian.PutUint64(ctr[8:], r.ctr)
	r.ctr++
	r.blk.Encrypt(r.buf[:], ctr[:])
	r.pos = 0
}

// Int returns a non-negative random integer that fits in 31 bits, so that
// its value is identical on 32-bit and 64-bit platforms.
func (r *Rand) Int() int {
	if r.pos+8 > len(r.buf) {
		r.refill()
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return int(v & (1<<31 - 1))
}

// Intn returns a random integer in [0, n).
func (r *Rand) Intn(n int) int {
	return r.Int() % n
}

// Bytes returns a slice of n random bytes.
func (r *Rand) Bytes(n int) []byte {
	b := make([]byte, n)
	for i := 0; i < n; i += aes.BlockSize {
		r.refill()
		copy(b[i:], r.buf[:])
	}
	r.pos = len(r.buf) // The tail of the last block is consumed as well
	return b
}
