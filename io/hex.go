package io

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"
)

// Hex reads and writes memory images as hex text.
//
// Input has one or more whitespace separated hex bytes per line, with an
// optional 0x prefix. Anything after a ';' is a comment. Output is one
// byte per line.
type Hex struct {
	Input  io.Reader
	Output io.Writer

	err error
}

var _ Channel = (*Hex)(nil)
var _ Failer = (*Hex)(nil)

// Rewind is not possible on a hex stream.
func (hc *Hex) Rewind() {
}

// Err returns the first scan or parse error.
func (hc *Hex) Err() error {
	return hc.err
}

// Receive yields each byte parsed from the input, stopping at the first
// malformed word.
func (hc *Hex) Receive() iter.Seq[uint8] {
	return func(yield func(value uint8) bool) {
		if hc.Input == nil {
			return
		}

		scanner := bufio.NewScanner(hc.Input)
		var lineno int
		for scanner.Scan() {
			lineno++
			line, _, _ := strings.Cut(scanner.Text(), ";")
			for _, word := range strings.Fields(line) {
				digits := strings.TrimPrefix(strings.ToLower(word), "0x")
				value, err := strconv.ParseUint(digits, 16, 8)
				if err != nil {
					hc.err = &ErrHexByte{LineNo: lineno, Word: word}
					return
				}
				if !yield(uint8(value)) {
					return
				}
			}
		}

		hc.err = scanner.Err()
	}
}

// Send writes a byte as a line of two hex digits.
func (hc *Hex) Send(value uint8) (err error) {
	if hc.Output == nil {
		err = ErrChannelClosed
		return
	}

	_, err = fmt.Fprintf(hc.Output, "%02X\n", value)
	return
}
