package io

import (
	"fmt"
	"io"
	"iter"
)

// Display shows the output register, one decimal value per line.
type Display struct {
	Output io.Writer // If nil, values are only latched.

	Last  uint8 // Last value shown.
	Count int   // Number of values shown since the last Rewind.
}

var _ Channel = (*Display)(nil)

// Rewind clears the display.
func (dc *Display) Rewind() {
	dc.Last = 0
	dc.Count = 0
}

// Receive yields the last value shown, if any.
func (dc *Display) Receive() iter.Seq[uint8] {
	return func(yield func(value uint8) bool) {
		if dc.Count > 0 {
			yield(dc.Last)
		}
	}
}

// Send shows a value.
func (dc *Display) Send(value uint8) (err error) {
	dc.Last = value
	dc.Count++

	if dc.Output == nil {
		return
	}

	_, err = fmt.Fprintf(dc.Output, "%d\n", value)
	return
}
