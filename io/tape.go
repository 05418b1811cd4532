package io

import (
	"errors"
	"io"
	"iter"
)

// Tape provides sequential I/O of raw bytes.
// It wraps an io.Reader for input and io.Writer for output.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	err error
}

var _ Channel = (*Tape)(nil)
var _ Failer = (*Tape)(nil)

// Rewind is not possible on a tape.
func (tc *Tape) Rewind() {
}

// Err returns the first non-EOF read error.
func (tc *Tape) Err() error {
	return tc.err
}

// Receive returns an iterator that yields bytes from the input stream
// until end of input or a read error.
func (tc *Tape) Receive() iter.Seq[uint8] {
	return func(yield func(value uint8) bool) {
		if tc.Input == nil {
			return
		}
		var one [1]byte
		for {
			n, err := tc.Input.Read(one[:])
			if n == 1 {
				if !yield(one[0]) {
					return
				}
			}
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				tc.err = err
				return
			}
		}
	}
}

// Send writes a byte to the output stream.
func (tc *Tape) Send(value uint8) (err error) {
	if tc.Output == nil {
		err = ErrChannelClosed
		return
	}

	_, err = tc.Output.Write([]byte{value})
	return
}
