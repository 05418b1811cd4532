package io

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type errReader struct {
	data []byte
}

var errBroken = errors.New("broken reader")

func (er *errReader) Read(p []byte) (n int, err error) {
	if len(er.data) == 0 {
		err = errBroken
		return
	}
	n = copy(p, er.data)
	er.data = er.data[n:]
	return
}

func TestRom(t *testing.T) {
	assert := assert.New(t)

	rom := &Rom{Data: []uint8{0x50, 0x2f, 0xe0}}

	assert.Equal([]uint8{0x50, 0x2f, 0xe0}, slices.Collect(rom.Receive()))

	rom.Rewind()
	assert.Equal([]uint8{0x50, 0x2f, 0xe0}, slices.Collect(rom.Receive()))

	assert.ErrorIs(rom.Send(1), ErrChannelFull)
	assert.Equal([]uint8{0x50, 0x2f, 0xe0}, rom.Data)

	empty := &Rom{}
	assert.Empty(slices.Collect(empty.Receive()))
}

func TestTape_Receive(t *testing.T) {
	assert := assert.New(t)

	tape := &Tape{Input: bytes.NewReader([]byte{1, 2, 0xff})}
	assert.Equal([]uint8{1, 2, 0xff}, slices.Collect(tape.Receive()))
	assert.NoError(tape.Err())

	// Exhausted.
	assert.Empty(slices.Collect(tape.Receive()))

	tape = &Tape{}
	assert.Empty(slices.Collect(tape.Receive()))

	tape = &Tape{Input: &errReader{data: []byte{7}}}
	assert.Equal([]uint8{7}, slices.Collect(tape.Receive()))
	assert.ErrorIs(tape.Err(), errBroken)
}

func TestTape_Send(t *testing.T) {
	assert := assert.New(t)

	var buff bytes.Buffer
	tape := &Tape{Output: &buff}

	assert.NoError(SendAll(tape, []uint8{0x61, 0x62, 0}))
	assert.Equal([]byte{'a', 'b', 0}, buff.Bytes())

	tape = &Tape{}
	assert.ErrorIs(tape.Send(1), ErrChannelClosed)
}

func TestHex_Receive(t *testing.T) {
	assert := assert.New(t)

	text := strings.Join([]string{
		"; counter",
		"50 2F  ; ldi 0, add 15",
		"0xE0 0x61",
		"",
		"   ff",
	}, "\n")

	hex := &Hex{Input: strings.NewReader(text)}
	assert.Equal([]uint8{0x50, 0x2f, 0xe0, 0x61, 0xff}, slices.Collect(hex.Receive()))
	assert.NoError(hex.Err())
}

func TestHex_ReceiveError(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		text   string
		data   []uint8
		lineno int
		word   string
	}){
		{"01 02\n03 zz 04", []uint8{1, 2, 3}, 2, "zz"},
		{"100", nil, 1, "100"},
		{"12\n\n0x", []uint8{0x12}, 3, "0x"},
	}

	for _, entry := range table {
		hex := &Hex{Input: strings.NewReader(entry.text)}
		data := slices.Collect(hex.Receive())
		assert.Equal(entry.data, data, entry.text)

		var hexErr *ErrHexByte
		if assert.ErrorAs(hex.Err(), &hexErr, entry.text) {
			assert.Equal(entry.lineno, hexErr.LineNo, entry.text)
			assert.Equal(entry.word, hexErr.Word, entry.text)
		}
	}
}

func TestHex_Send(t *testing.T) {
	assert := assert.New(t)

	var buff bytes.Buffer
	hex := &Hex{Output: &buff}

	assert.NoError(SendAll(hex, []uint8{0x50, 0x0a}))
	assert.Equal("50\n0A\n", buff.String())

	// What is written can be read back.
	readback := &Hex{Input: &buff}
	assert.Equal([]uint8{0x50, 0x0a}, slices.Collect(readback.Receive()))

	hex = &Hex{}
	assert.ErrorIs(hex.Send(1), ErrChannelClosed)
}

func TestDisplay(t *testing.T) {
	assert := assert.New(t)

	var buff bytes.Buffer
	display := &Display{Output: &buff}

	assert.Empty(slices.Collect(display.Receive()))

	assert.NoError(SendAll(display, []uint8{0, 5, 5, 10}))
	assert.Equal("0\n5\n5\n10\n", buff.String())
	assert.Equal(uint8(10), display.Last)
	assert.Equal(4, display.Count)
	assert.Equal([]uint8{10}, slices.Collect(display.Receive()))

	display.Rewind()
	assert.Equal(0, display.Count)
	assert.Empty(slices.Collect(display.Receive()))

	latch := &Display{}
	assert.NoError(latch.Send(255))
	assert.Equal(uint8(255), latch.Last)
}

func TestReceiveAll(t *testing.T) {
	assert := assert.New(t)

	data, err := ReceiveAll(&Rom{Data: []uint8{1, 2, 3}}, 3)
	assert.NoError(err)
	assert.Equal([]uint8{1, 2, 3}, data)

	data, err = ReceiveAll(&Rom{Data: []uint8{1, 2, 3, 4}}, 3)
	assert.ErrorIs(err, ErrChannelOverrun)
	assert.Equal([]uint8{1, 2, 3}, data)

	data, err = ReceiveAll(&Hex{Input: strings.NewReader("01 0g")}, 16)
	var hexErr *ErrHexByte
	assert.ErrorAs(err, &hexErr)
	assert.Equal([]uint8{1}, data)
}

func TestSendAll(t *testing.T) {
	assert := assert.New(t)

	err := SendAll(&Rom{}, []uint8{1})
	assert.ErrorIs(err, ErrChannelFull)

	assert.NoError(SendAll(&Rom{}, nil))
}
