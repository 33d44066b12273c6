// Copyright 2017, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package lz77

import (
	"bytes"
	"io"
	"io/ioutil"
	"testing"
	"testing/iotest"

	"github.com/dsnet/lz77/internal/errors"
	"github.com/dsnet/lz77/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestReader(t *testing.T) {
	rand := testutil.NewRand(0)
	input := make([]byte, 1<<13)
	for i := range input {
		input[i] = 'a' + byte(rand.Intn(4))
	}
	comp, err := Compress(nil, input, &WriterConfig{WindowSize: 128, LookaheadSize: 16})
	assert.Nil(t, err)

	// The reader must behave identically regardless of how the underlying
	// reader chunks its data or how small the destination buffers are.
	for _, wrap := range []func(io.Reader) io.Reader{
		func(r io.Reader) io.Reader { return r },
		iotest.OneByteReader,
		iotest.HalfReader,
	} {
		zr, err := NewReader(wrap(bytes.NewReader(comp)), nil)
		assert.Nil(t, err)

		var out []byte
		buf := make([]byte, 997)
		for {
			n, err := zr.Read(buf)
			out = append(out, buf[:n]...)
			if err == io.EOF {
				break
			}
			assert.Nil(t, err)
		}
		assert.Equal(t, input, out)
		assert.Equal(t, int64(len(input)), zr.OutputOffset)
		assert.Nil(t, zr.Close())

		// Reads after Close fail.
		_, err = zr.Read(buf)
		assert.True(t, errors.IsClosed(err))
	}
}

func TestReaderReset(t *testing.T) {
	zr := new(Reader)
	for i := 0; i < 3; i++ {
		input := bytes.Repeat([]byte{'a' + byte(i)}, 100*(i+1))
		comp, err := Compress(nil, input, &WriterConfig{WindowSize: 64, LookaheadSize: 8})
		assert.Nil(t, err)

		zr.Reset(bytes.NewReader(comp))
		out, err := ioutil.ReadAll(zr)
		assert.Nil(t, err)
		assert.Equal(t, input, out)
		assert.Nil(t, zr.Close())
	}
}

func TestReaderCorruptHeaders(t *testing.T) {
	vectors := []struct {
		name   string
		stream string
		errf   func(error) bool
	}{{
		name:   "BadMagic",
		stream: `>>> > X:4c5a3738 X:10 X:000000 H16:0010 H16:0004 1 D4:0 000000`,
		errf:   errors.IsCorrupted,
	}, {
		name:   "BadVersion",
		stream: `>>> > X:4c5a3737 X:20 X:000000 H16:0010 H16:0004 1 D4:0 000000`,
		errf:   errors.IsCorrupted,
	}, {
		name:   "WindowTooSmall",
		stream: `>>> > X:4c5a3737 X:10 X:000000 H16:0003 H16:0002 1 D2:0 000000`,
		errf:   errors.IsCorrupted,
	}, {
		name:   "LookaheadTooSmall",
		stream: `>>> > X:4c5a3737 X:10 X:000000 H16:0010 H16:0001 1 D4:0 000000`,
		errf:   errors.IsCorrupted,
	}, {
		name:   "LookaheadOverWindow",
		stream: `>>> > X:4c5a3737 X:10 X:000000 H16:0010 H16:0011 1 D4:0 000000`,
		errf:   errors.IsCorrupted,
	}, {
		name:   "EmptyStream",
		stream: `>>> >`,
		errf:   func(err error) bool { return err == io.ErrUnexpectedEOF },
	}, {
		name:   "ShortHeader",
		stream: `>>> > X:4c5a373710`,
		errf:   func(err error) bool { return err == io.ErrUnexpectedEOF },
	}, {
		name:   "MissingTerminator",
		stream: `>>> > X:4c5a3737 X:10 X:000000 H16:0010 H16:0004 0 H8:61`,
		errf:   func(err error) bool { return err == io.ErrUnexpectedEOF },
	}}

	for _, v := range vectors {
		t.Run(v.name, func(t *testing.T) {
			data := testutil.MustDecodeBitGen(v.stream)
			zr, err := NewReader(bytes.NewReader(data), nil)
			assert.Nil(t, err)
			_, err = ioutil.ReadAll(zr)
			if !v.errf(err) {
				t.Errorf("unexpected error: %v", err)
			}
			assert.Equal(t, err, zr.Close())
		})
	}
}

func TestReaderEmptyPayload(t *testing.T) {
	comp, err := Compress(nil, nil, &WriterConfig{WindowSize: 16, LookaheadSize: 4})
	assert.Nil(t, err)

	zr, err := NewReader(bytes.NewReader(comp), nil)
	assert.Nil(t, err)
	out, err := ioutil.ReadAll(zr)
	assert.Nil(t, err)
	assert.Equal(t, 0, len(out))
	assert.Equal(t, int64(0), zr.OutputOffset)
	assert.Nil(t, zr.Close())
}
