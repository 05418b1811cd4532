package io

import (
	"errors"

	"github.com/ezrec/sap1/translate"
)

var f = translate.From

var (
	// Channel errors
	ErrChannelFull    = errors.New(f("channel full"))
	ErrChannelClosed  = errors.New(f("channel closed"))
	ErrChannelOverrun = errors.New(f("channel overrun"))
)

// ErrHexByte indicates a malformed byte in a hex image.
type ErrHexByte struct {
	LineNo int
	Word   string
}

func (err *ErrHexByte) Error() string {
	return f("line %d '%v' is not a hex byte", err.LineNo, err.Word)
}
