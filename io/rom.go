package io

import (
	"iter"
	"slices"
)

// Rom is a read-only channel holding a memory image.
type Rom struct {
	Data []uint8
}

var _ Channel = (*Rom)(nil)

// Rewind has no effect, as a ROM always reads from the start.
func (rc *Rom) Rewind() {
}

// Receive yields each byte of the ROM image.
func (rc *Rom) Receive() iter.Seq[uint8] {
	return slices.Values(rc.Data)
}

// Send returns ErrChannelFull, as a ROM cannot be written.
func (rc *Rom) Send(value uint8) error {
	return ErrChannelFull
}
